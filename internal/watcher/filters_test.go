package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter FileFilter
		path   string
		want   bool
	}{
		{"go file", GoFilter, "pkg/a.go", true},
		{"non go file", GoFilter, "pkg/a.txt", false},
		{"test file", NoTestFilter, "pkg/a_test.go", false},
		{"regular file", NoTestFilter, "pkg/a.go", true},
		{"generated", NoGeneratedFilter("_splice.go"), "pkg/a_splice.go", false},
		{"not generated", NoGeneratedFilter("_splice.go"), "pkg/splice.go", true},
		{"vendor root", NoVendorFilter, "vendor/x/a.go", false},
		{"vendor nested", NoVendorFilter, "/src/app/vendor/x/a.go", false},
		{"vendor-ish name", NoVendorFilter, "/src/vendored/a.go", true},
		{"git", NoGitFilter, "/src/.git/config", false},
		{"gitignore file", NoGitFilter, "/src/.gitignore", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter(tt.path))
		})
	}
}

func TestSkipDir(t *testing.T) {
	for _, name := range []string{".git", ".cache", "_examples", "vendor", "testdata"} {
		assert.True(t, SkipDir(name), name)
	}
	for _, name := range []string{".", "internal", "cmd", "pkg"} {
		assert.False(t, SkipDir(name), name)
	}
}
