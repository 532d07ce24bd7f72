package watcher

import (
	"path/filepath"
	"strings"
)

// Common file filters

// GoFilter accepts Go source files.
func GoFilter(path string) bool {
	return filepath.Ext(path) == ".go"
}

// NoTestFilter rejects Go test files.
func NoTestFilter(path string) bool {
	return !strings.HasSuffix(filepath.Base(path), "_test.go")
}

// NoGeneratedFilter rejects files whose names end with suffix, so that
// writing generated output does not trigger another run.
func NoGeneratedFilter(suffix string) FileFilter {
	return func(path string) bool {
		return !strings.HasSuffix(filepath.Base(path), suffix)
	}
}

// NoVendorFilter rejects paths inside a vendor directory.
func NoVendorFilter(path string) bool {
	return !hasDir(path, "vendor")
}

// NoGitFilter rejects paths inside a .git directory.
func NoGitFilter(path string) bool {
	return !hasDir(path, ".git")
}

// SkipDir reports whether a directory with the given name is ignored, as
// the go tool ignores it.
func SkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "vendor" || name == "testdata"
}

func hasDir(path, dir string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == dir {
			return true
		}
	}
	return false
}
