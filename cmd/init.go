package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/splicer/internal/config"
	serrors "github.com/conneroisu/splicer/internal/errors"
)

var initCmd = &cobra.Command{
	Use:     "init [directory]",
	Aliases: []string{"i"},
	Short:   "Write a default .splicer.yml",
	Long: `Write a .splicer.yml holding the default configuration into the given
directory, or the current one. An existing file is kept unless --force is
given.

Examples:
  splicer init                    # Configure the current directory
  splicer init ./service          # Configure another directory
  splicer init --example          # Also add an example block`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initForce   bool
	initExample bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
	initCmd.Flags().BoolVar(&initExample, "example", false, "add splice_example.go with a sample block")
}

const exampleSource = `package %s

//splicer:block
// let greeting = "Hello, ";
// let subject = "splicer";
// const Welcome: &str = concat(greeting, subject);
//splicer:end
`

func runInit(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
		if err := os.MkdirAll(projectDir, 0o755); err != nil {
			return serrors.WrapIO(err, serrors.ErrCodeWriteFailed, projectDir)
		}
	}

	path := filepath.Join(projectDir, config.FileName)
	if _, err := os.Stat(path); err == nil && !initForce {
		return serrors.NewConfigError(path + " already exists").
			WithSuggestion("use --force to overwrite it")
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return serrors.WrapIO(err, serrors.ErrCodeInvalidPath, path)
	}

	content, err := config.Marshal(config.Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return serrors.WrapIO(err, serrors.ErrCodeWriteFailed, path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

	if initExample {
		examplePath := filepath.Join(projectDir, "splice_example.go")
		if _, err := os.Stat(examplePath); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "kept existing %s\n", examplePath)
		} else {
			src := fmt.Sprintf(exampleSource, packageName(projectDir))
			if err := os.WriteFile(examplePath, []byte(src), 0o644); err != nil {
				return serrors.WrapIO(err, serrors.ErrCodeWriteFailed, examplePath)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", examplePath)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "  splicer check")
	fmt.Fprintln(cmd.OutOrStdout(), "  splicer generate")
	return nil
}

// packageName derives a package clause from the directory name, falling
// back to main.
func packageName(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "main"
	}

	name := []rune{}
	for _, r := range filepath.Base(abs) {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			name = append(name, r)
		case r >= 'A' && r <= 'Z':
			name = append(name, r-'A'+'a')
		case r >= '0' && r <= '9' && len(name) > 0:
			name = append(name, r)
		}
	}
	if len(name) == 0 {
		return "main"
	}
	return string(name)
}
