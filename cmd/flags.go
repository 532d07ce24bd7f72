package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/logging"
	"github.com/conneroisu/splicer/internal/splice"
)

// Output formats accepted by --format.
var (
	textFormats  = []string{"text", "json"}
	tableFormats = []string{"table", "json", "yaml"}
)

// AddLogFlags adds the logging flags shared by every command.
func AddLogFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "console", "log format (console, json)")

	addFlagValidation(fs, "log-level", func(s string) error {
		_, err := logging.ParseLevel(s)
		return err
	})
	addFlagValidation(fs, "log-format", func(s string) error {
		return ValidateFormat(s, []string{"console", "json"})
	})
}

// AddExpandFlags adds the flags that change how blocks are found and
// expanded.
func AddExpandFlags(fs *pflag.FlagSet) {
	fs.String("duplicates", string(splice.DuplicateError),
		"policy for a name bound twice in one block (error, first, last)")
	fs.StringSlice("exclude", nil, "glob patterns of files or directories to skip")

	addFlagValidation(fs, "duplicates", func(s string) error {
		_, err := splice.ParseDuplicatePolicy(s)
		return err
	})
}

// AddFormatFlag adds --format/-f restricted to formats.
func AddFormatFlag(cmd *cobra.Command, target *string, formats []string) {
	cmd.Flags().StringVarP(target, "format", "f", formats[0],
		fmt.Sprintf("output format (%s)", strings.Join(formats, "|")))
	addFlagValidation(cmd.Flags(), "format", func(s string) error {
		return ValidateFormat(s, formats)
	})
}

// ValidateFormat checks format against the allowed values and suggests the
// closest one when it does not match.
func ValidateFormat(format string, allowed []string) error {
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}

	msg := fmt.Sprintf("invalid format %q, must be one of: %s", format, strings.Join(allowed, ", "))
	if hint := serrors.DidYouMean(format, allowed); hint != "" {
		msg += " (" + hint + ")"
	}
	return fmt.Errorf("%s", msg)
}

// addFlagValidation wraps a flag's value so Set rejects bad input while the
// command line is parsed.
func addFlagValidation(fs *pflag.FlagSet, name string, validator func(string) error) {
	flag := fs.Lookup(name)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// flagBinding ties a viper key to a flag so a set flag overrides the
// config file and environment.
type flagBinding struct {
	key  string
	flag *pflag.Flag
}

var flagBindings []flagBinding

func bindFlag(key string, flag *pflag.Flag) {
	if flag == nil {
		panic("splicer: binding unknown flag for " + key)
	}
	flagBindings = append(flagBindings, flagBinding{key: key, flag: flag})
	_ = viper.BindPFlag(key, flag)
}

// applyBindings binds every registered flag again, after viper.Reset.
func applyBindings() {
	for _, b := range flagBindings {
		_ = viper.BindPFlag(b.key, b.flag)
	}
}
