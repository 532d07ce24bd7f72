// Package testutils holds helpers shared by splicer tests.
package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/splicer/internal/config"
)

// GreetingSource is a Go file with one block defining Greeting as
// "FirstSecond" on line 3.
const GreetingSource = `package demo

//splicer:block
// let first = "First";
// let second = "Second";
// const Greeting: &str = concat(first, second);
//splicer:end
`

// Binding is one let statement of a generated block.
type Binding struct {
	Name  string
	Value string
}

// BlockSource renders a Go file in package pkg with one block binding
// bindings and concatenating refs into output.
func BlockSource(pkg, output string, bindings []Binding, refs ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s\n\n//splicer:block\n", pkg)
	for _, binding := range bindings {
		fmt.Fprintf(&b, "// let %s = %s;\n", binding.Name, strconv.Quote(binding.Value))
	}
	fmt.Fprintf(&b, "// const %s: &str = concat(%s);\n", output, strings.Join(refs, ", "))
	b.WriteString("//splicer:end\n")
	return b.String()
}

// CreateTempProject creates a temporary module with a go.mod and returns
// its directory.
func CreateTempProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, filepath.Join(dir, "go.mod"), "module example.com/demo\n\ngo 1.24\n")
	return dir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// CreateTestConfig returns the default configuration scanning projectDir.
func CreateTestConfig(projectDir string) *config.Config {
	cfg := config.Default()
	cfg.Scan.Paths = []string{projectDir}
	cfg.Watch.Debounce = 50 * time.Millisecond
	return cfg
}

// WaitForContent waits until the file at path exists and contains want.
func WaitForContent(t *testing.T, path, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		content, err := os.ReadFile(path)
		if err == nil && strings.Contains(string(content), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s did not contain %q within %v", path, want, timeout)
}
