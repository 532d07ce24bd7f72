// Package config provides configuration management for splicer using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration system supports a .splicer.yml file, environment
// variable overrides with the SPLICER_ prefix, defaults and validation. It
// covers which directories are scanned, how generated files are named and
// placed, how duplicate bindings are treated, watch debouncing, and logging.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/logging"
	"github.com/conneroisu/splicer/internal/splice"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".splicer.yml"

type Config struct {
	Scan     ScanConfig     `mapstructure:"scan" yaml:"scan"`
	Generate GenerateConfig `mapstructure:"generate" yaml:"generate"`
	Expand   ExpandConfig   `mapstructure:"expand" yaml:"expand"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	// TargetPaths holds CLI arguments, not read from the config file
	TargetPaths []string `mapstructure:"-" yaml:"-"`
}

type ScanConfig struct {
	Paths   []string `mapstructure:"paths" yaml:"paths"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	Workers int      `mapstructure:"workers" yaml:"workers"`
}

type GenerateConfig struct {
	Suffix    string `mapstructure:"suffix" yaml:"suffix"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`
	Header    string `mapstructure:"header" yaml:"header,omitempty"`
}

type ExpandConfig struct {
	// Duplicates is one of error, first or last.
	Duplicates string `mapstructure:"duplicates" yaml:"duplicates"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Paths:   []string{"."},
			Exclude: []string{},
		},
		Generate: GenerateConfig{
			Suffix: "_splice.go",
		},
		Expand: ExpandConfig{
			Duplicates: string(splice.DuplicateError),
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SetDefaults registers the default values with v so that Unmarshal and
// environment lookups see every key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("scan.paths", d.Scan.Paths)
	v.SetDefault("scan.exclude", d.Scan.Exclude)
	v.SetDefault("scan.workers", d.Scan.Workers)
	v.SetDefault("generate.suffix", d.Generate.Suffix)
	v.SetDefault("generate.output_dir", d.Generate.OutputDir)
	v.SetDefault("generate.header", d.Generate.Header)
	v.SetDefault("expand.duplicates", d.Expand.Duplicates)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v. Keys that are
// not set fall back to Default.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, serrors.Wrap(err, serrors.ErrorTypeConfig, serrors.ErrCodeConfigInvalid,
			"cannot decode configuration")
	}

	// Viper leaves comma separated environment values as a single element.
	config.Scan.Paths = splitList(config.Scan.Paths)
	config.Scan.Exclude = splitList(config.Scan.Exclude)
	if len(config.Scan.Paths) == 0 {
		config.Scan.Paths = Default().Scan.Paths
	}

	if err := validateConfig(config); err != nil {
		return nil, serrors.Wrap(err, serrors.ErrorTypeConfig, serrors.ErrCodeConfigInvalid,
			"invalid configuration")
	}

	return config, nil
}

// DuplicatePolicy returns the parsed expand.duplicates setting.
func (c *Config) DuplicatePolicy() splice.DuplicatePolicy {
	p, err := splice.ParseDuplicatePolicy(c.Expand.Duplicates)
	if err != nil {
		return splice.DuplicateError
	}
	return p
}

// Paths returns the CLI target paths when given, otherwise scan.paths.
func (c *Config) Paths() []string {
	if len(c.TargetPaths) > 0 {
		return c.TargetPaths
	}
	return c.Scan.Paths
}

// Marshal renders the configuration as YAML, as written by splicer init.
func Marshal(c *Config) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return out, nil
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateScanConfig(&config.Scan); err != nil {
		return fmt.Errorf("scan config: %w", err)
	}

	if err := validateGenerateConfig(&config.Generate); err != nil {
		return fmt.Errorf("generate config: %w", err)
	}

	if _, err := splice.ParseDuplicatePolicy(config.Expand.Duplicates); err != nil {
		return fmt.Errorf("expand config: %w", err)
	}

	if config.Watch.Debounce < 0 || config.Watch.Debounce > time.Minute {
		return fmt.Errorf("watch config: debounce %s is not in range 0s-1m", config.Watch.Debounce)
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	switch config.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log config: unknown format %q (want json or console)", config.Log.Format)
	}

	return nil
}

func validateScanConfig(config *ScanConfig) error {
	for _, path := range config.Paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid scan path '%s': %w", path, err)
		}
	}

	for _, pattern := range config.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	if config.Workers < 0 || config.Workers > 256 {
		return fmt.Errorf("workers %d is not in range 0-256", config.Workers)
	}

	return nil
}

func validateGenerateConfig(config *GenerateConfig) error {
	suffix := config.Suffix
	if !strings.HasSuffix(suffix, ".go") || suffix == ".go" {
		return fmt.Errorf("suffix %q must end in .go and add to the source name", suffix)
	}
	if strings.HasSuffix(suffix, "_test.go") {
		return fmt.Errorf("suffix %q would produce test files", suffix)
	}
	if strings.ContainsAny(suffix, `/\`) {
		return fmt.Errorf("suffix %q must not contain a path separator", suffix)
	}

	if config.OutputDir != "" {
		if err := validatePath(config.OutputDir); err != nil {
			return fmt.Errorf("invalid output_dir '%s': %w", config.OutputDir, err)
		}
	}

	return nil
}

// validatePath rejects empty paths and characters that have no place in a
// source path.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path")
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">", "\"", "'", "\x00"}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %q", char)
		}
	}

	return nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
