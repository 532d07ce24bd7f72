package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/splicer/internal/splice"
)

func TestCreateTempProject(t *testing.T) {
	dir := CreateTempProject(t)
	assert.FileExists(t, filepath.Join(dir, "go.mod"))
}

func TestBlockSource(t *testing.T) {
	src := BlockSource("demo", "Greeting",
		[]Binding{{Name: "first", Value: "First"}, {Name: "second", Value: "Second"}},
		"first", "second")
	assert.Equal(t, GreetingSource, src)
}

func TestBlockSource_Expands(t *testing.T) {
	src := BlockSource("demo", "Quoted",
		[]Binding{{Name: "q", Value: "say \"hi\"\n"}}, "q", "q")

	// Strip the comment markers the way the scanner does for a line block.
	body := ""
	for _, line := range splitLines(src)[3:5] {
		body += line[2:] + "\n"
	}

	res, err := splice.Expand(body, splice.Options{})
	require.NoError(t, err)
	assert.Equal(t, "say \"hi\"\nsay \"hi\"\n", res.Value.Value)
}

func TestCreateTestConfig(t *testing.T) {
	cfg := CreateTestConfig("/project")
	assert.Equal(t, []string{"/project"}, cfg.Paths())
	assert.Equal(t, "_splice.go", cfg.Generate.Suffix)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
}

func TestWaitForContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(path, []byte("ready"), 0o644)
	}()

	WaitForContent(t, path, "ready", time.Second)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}
