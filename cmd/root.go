// Package cmd provides the command-line interface for splicer with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports configuration through several sources with clear precedence:
//	1. Command-line flags (--config, --duplicates, etc.) - highest priority
//	2. Individual environment variables (SPLICER_SCAN_PATHS, etc.)
//	3. Configuration file (.splicer.yml, or SPLICER_CONFIG_FILE)
//	4. Built-in defaults - lowest priority
//
// Environment Variables:
//
//	SPLICER_CONFIG_FILE: Path to custom configuration file
//	SPLICER_SCAN_PATHS: Comma separated directories to scan
//	SPLICER_EXPAND_DUPLICATES: Duplicate binding policy (error, first, last)
//	SPLICER_LOG_LEVEL: Log level
//	And every other key following the SPLICER_<SECTION>_<OPTION> pattern
package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/splicer/internal/config"
	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "splicer",
	Short: "Compile-time string constant splicing for Go",
	Long: `Splicer turns annotated comment blocks into generated Go string constants.

A block binds string literals to names and concatenates them, in order, into
one constant:

  //splicer:block
  // let first = "First";
  // let second = "Second";
  // const Greeting: &str = concat(first, second);
  //splicer:end

Running "splicer generate" writes greeting_splice.go next to the source with
const Greeting string = "FirstSecond".

Quick Start:
  splicer init                    Write a default .splicer.yml
  splicer generate                Generate constants for every block
  splicer check                   Report block errors without writing
  splicer list                    List all blocks
  splicer watch                   Regenerate on change

Documentation: https://github.com/conneroisu/splicer`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .splicer.yml, can also use SPLICER_CONFIG_FILE env var)")
	AddLogFlags(flags)
	AddExpandFlags(flags)

	bindFlag("log.level", flags.Lookup("log-level"))
	bindFlag("log.format", flags.Lookup("log-format"))
	bindFlag("expand.duplicates", flags.Lookup("duplicates"))
	bindFlag("scan.exclude", flags.Lookup("exclude"))
}

// initConfig initializes the configuration system.
//
// Configuration file lookup (highest to lowest):
//  1. --config flag
//  2. SPLICER_CONFIG_FILE environment variable
//  3. .splicer.yml in the current directory
//
// Every key can also be set through a SPLICER_ prefixed environment
// variable, e.g. SPLICER_GENERATE_SUFFIX=_const.go.
func initConfig() {
	explicit := true
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SPLICER_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		explicit = false
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.FileName, ".yml"))
	}

	viper.SetEnvPrefix("SPLICER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.SetDefaults(viper.GetViper())

	// A missing default config file is fine; defaults apply. An unreadable
	// one, or a missing file that was asked for, is reported when a command
	// loads the configuration.
	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			configErr = err
		}
	}
}

// configErr holds the error from reading the config file, if any.
var configErr error

// loadConfig returns the validated configuration with args as target paths.
func loadConfig(args []string) (*config.Config, error) {
	if configErr != nil {
		return nil, serrors.Wrap(configErr, serrors.ErrorTypeConfig, serrors.ErrCodeConfigInvalid,
			"cannot read config file")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.TargetPaths = args
	}
	return cfg, nil
}

// newLogger builds the command logger from the log section.
func newLogger(cmd *cobra.Command, cfg *config.Config) *logging.SplicerLogger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: "cli",
	})
}
