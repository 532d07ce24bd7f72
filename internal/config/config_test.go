package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/splice"
)

func TestLoadDefaults(t *testing.T) {
	config, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, Default(), config)
	assert.Equal(t, splice.DuplicateError, config.DuplicatePolicy())
	assert.Equal(t, []string{"."}, config.Paths())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(v *viper.Viper)
		expectError bool
		check       func(t *testing.T, c *Config)
	}{
		{
			name: "custom scan paths",
			setup: func(v *viper.Viper) {
				v.Set("scan.paths", []string{"./internal", "./cmd"})
				v.Set("scan.exclude", []string{"*_gen.go"})
				v.Set("scan.workers", 4)
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"./internal", "./cmd"}, c.Scan.Paths)
				assert.Equal(t, []string{"*_gen.go"}, c.Scan.Exclude)
				assert.Equal(t, 4, c.Scan.Workers)
			},
		},
		{
			name: "comma separated list",
			setup: func(v *viper.Viper) {
				v.Set("scan.paths", "a, b,,c")
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"a", "b", "c"}, c.Scan.Paths)
			},
		},
		{
			name: "duration from string",
			setup: func(v *viper.Viper) {
				v.Set("watch.debounce", "750ms")
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 750*time.Millisecond, c.Watch.Debounce)
			},
		},
		{
			name: "duplicate policy",
			setup: func(v *viper.Viper) {
				v.Set("expand.duplicates", "last")
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, splice.DuplicateLast, c.DuplicatePolicy())
			},
		},
		{
			name:        "unknown duplicate policy",
			setup:       func(v *viper.Viper) { v.Set("expand.duplicates", "merge") },
			expectError: true,
		},
		{
			name:        "suffix without .go",
			setup:       func(v *viper.Viper) { v.Set("generate.suffix", "_splice") },
			expectError: true,
		},
		{
			name:        "suffix producing tests",
			setup:       func(v *viper.Viper) { v.Set("generate.suffix", "_splice_test.go") },
			expectError: true,
		},
		{
			name:        "suffix with separator",
			setup:       func(v *viper.Viper) { v.Set("generate.suffix", "/x.go") },
			expectError: true,
		},
		{
			name:        "dangerous scan path",
			setup:       func(v *viper.Viper) { v.Set("scan.paths", []string{"./a;rm -rf"}) },
			expectError: true,
		},
		{
			name:        "bad exclude pattern",
			setup:       func(v *viper.Viper) { v.Set("scan.exclude", []string{"[a-"}) },
			expectError: true,
		},
		{
			name:        "negative workers",
			setup:       func(v *viper.Viper) { v.Set("scan.workers", -1) },
			expectError: true,
		},
		{
			name:        "debounce too long",
			setup:       func(v *viper.Viper) { v.Set("watch.debounce", "2m") },
			expectError: true,
		},
		{
			name:        "bad log level",
			setup:       func(v *viper.Viper) { v.Set("log.level", "loud") },
			expectError: true,
		},
		{
			name:        "bad log format",
			setup:       func(v *viper.Viper) { v.Set("log.format", "xml") },
			expectError: true,
		},
		{
			name:        "undecodable workers",
			setup:       func(v *viper.Viper) { v.Set("scan.workers", "many") },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setup(v)

			config, err := LoadFrom(v)
			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, config)
				assert.Equal(t, serrors.ErrorTypeConfig, serrors.GetErrorType(err))
				return
			}

			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `scan:
  paths: [internal, cmd]
  exclude: ["*_gen.go"]
generate:
  suffix: _consts.go
  header: Regenerate with go generate.
expand:
  duplicates: first
watch:
  debounce: 1s
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"internal", "cmd"}, config.Scan.Paths)
	assert.Equal(t, "_consts.go", config.Generate.Suffix)
	assert.Equal(t, "Regenerate with go generate.", config.Generate.Header)
	assert.Equal(t, splice.DuplicateFirst, config.DuplicatePolicy())
	assert.Equal(t, time.Second, config.Watch.Debounce)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SPLICER_EXPAND_DUPLICATES", "last")
	t.Setenv("SPLICER_SCAN_PATHS", "one,two")

	v := viper.New()
	v.SetEnvPrefix("SPLICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, splice.DuplicateLast, config.DuplicatePolicy())
	assert.Equal(t, []string{"one", "two"}, config.Scan.Paths)
}

func TestTargetPathsOverride(t *testing.T) {
	config := Default()
	config.TargetPaths = []string{"./pkg"}
	assert.Equal(t, []string{"./pkg"}, config.Paths())
}

func TestMarshalRoundTrip(t *testing.T) {
	config := Default()
	config.Scan.Exclude = []string{"*_gen.go"}
	config.Generate.Header = "Owned by the build team."

	out, err := Marshal(config)
	require.NoError(t, err)
	assert.Contains(t, string(out), "debounce: 300ms")
	assert.NotContains(t, string(out), "output_dir")

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &raw))
	assert.Contains(t, raw, "scan")
	assert.Contains(t, raw, "log")

	// The marshalled file loads back to the same configuration.
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, out, 0o644))
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	loaded, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestValidateWithDetails(t *testing.T) {
	dir := t.TempDir()

	config := Default()
	config.Scan.Paths = []string{dir, filepath.Join(dir, "missing")}
	config.Scan.Workers = 100000
	config.Watch.Debounce = 10 * time.Millisecond
	config.Generate.OutputDir = "gen"

	result := ValidateWithDetails(config)
	assert.False(t, result.Valid, "100000 workers is out of range")
	assert.True(t, result.HasErrors())
	assert.True(t, result.HasWarnings())

	fields := map[string]int{}
	for _, w := range result.Warnings {
		fields[w.Field]++
	}
	assert.Equal(t, 1, fields["scan.paths"])
	assert.Equal(t, 1, fields["scan.workers"])
	assert.Equal(t, 1, fields["watch.debounce"])
	assert.Equal(t, 1, fields["generate.output_dir"])

	text := result.String()
	assert.Contains(t, text, "Validation errors:")
	assert.Contains(t, text, "Validation warnings:")
	assert.Contains(t, text, "hint: Try 300ms")

	clean := Default()
	clean.Scan.Paths = []string{dir}
	result = ValidateWithDetails(clean)
	assert.True(t, result.Valid)
	assert.False(t, result.HasWarnings())
	assert.Empty(t, result.String())
}
