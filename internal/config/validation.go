package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// ValidationError represents a configuration problem with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title)
		builder.WriteString(":\n")
		for _, issue := range issues {
			fmt.Fprintf(&builder, "  - %s: %s\n", issue.Field, issue.Message)
			for _, suggestion := range issue.Suggestions {
				fmt.Fprintf(&builder, "    hint: %s\n", suggestion)
			}
		}
	}

	write("Validation errors", vr.Errors)
	write("Validation warnings", vr.Warnings)

	return builder.String()
}

// ValidateWithDetails checks a loaded configuration for settings that are
// legal but probably unintended. Load has already rejected invalid values;
// anything it would reject is reported here as an error as well.
func ValidateWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	if err := validateConfig(config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "config",
			Message: err.Error(),
		})
	}

	for _, path := range config.Paths() {
		info, err := os.Stat(path)
		switch {
		case err != nil:
			result.Warnings = append(result.Warnings, ValidationError{
				Field:       "scan.paths",
				Value:       path,
				Message:     fmt.Sprintf("path %s does not exist", path),
				Suggestions: []string{"Remove it from scan.paths or create the directory"},
			})
		case !info.IsDir() && !strings.HasSuffix(path, ".go"):
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "scan.paths",
				Value:   path,
				Message: fmt.Sprintf("path %s is neither a directory nor a Go file", path),
			})
		}
	}

	if config.Scan.Workers > runtime.NumCPU()*4 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:       "scan.workers",
			Value:       config.Scan.Workers,
			Message:     fmt.Sprintf("%d workers is far more than the %d available CPUs", config.Scan.Workers, runtime.NumCPU()),
			Suggestions: []string{"Use 0 to pick a worker count automatically"},
		})
	}

	if config.Watch.Debounce > 0 && config.Watch.Debounce < 50*time.Millisecond {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:       "watch.debounce",
			Value:       config.Watch.Debounce,
			Message:     "a very short debounce may regenerate several times per save",
			Suggestions: []string{"Try 300ms"},
		})
	}

	if config.Generate.OutputDir != "" {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "generate.output_dir",
			Value:   config.Generate.OutputDir,
			Message: "all blocks must then belong to the package in that directory",
		})
	}

	result.Valid = !result.HasErrors()
	return result
}
