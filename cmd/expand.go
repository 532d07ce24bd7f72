package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/registry"
	"github.com/conneroisu/splicer/internal/scanner"
	"github.com/conneroisu/splicer/internal/splice"
)

var expandCmd = &cobra.Command{
	Use:     "expand [file|-]",
	Aliases: []string{"x"},
	Short:   "Expand a block and print the declaration",
	Long: `Expand a block body read from a file or from standard input and print the
resulting Go declaration. Nothing is written to disk.

A .go file is scanned for //splicer:block comments and every block in it is
expanded. Any other input is treated as a bare block body:

  let first = "First";
  let second = "Second";
  const Greeting: &str = concat(first, second);

Examples:
  splicer expand block.txt
  splicer expand internal/names.go
  echo 'let a = "x"; const A: &str = concat(a, a);' | splicer expand -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	opts := splice.Options{Duplicates: cfg.DuplicatePolicy()}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	if strings.HasSuffix(source, ".go") {
		return expandGoFile(cmd, source, opts)
	}

	var content []byte
	if source == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(source)
	}
	if err != nil {
		return serrors.WrapIO(err, serrors.ErrCodeFileNotFound, source)
	}

	result, err := splice.Expand(string(content), opts)
	if err != nil {
		var se *serrors.SplicerError
		if errors.As(err, &se) && source != "-" {
			se.Remap(source, nil)
		}
		return reportErrors(cmd.ErrOrStderr(), err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Declaration)
	return nil
}

// expandGoFile prints the declaration of every block in a Go source file.
func expandGoFile(cmd *cobra.Command, path string, opts splice.Options) error {
	reg := registry.NewBlockRegistry()
	sc := scanner.NewBlockScanner(reg, nil, scanner.Options{Duplicates: opts.Duplicates})

	if _, err := os.Stat(path); err != nil {
		return serrors.WrapIO(err, serrors.ErrCodeFileNotFound, path)
	}
	if _, err := sc.ScanFile(path); err != nil {
		return reportErrors(cmd.ErrOrStderr(), err)
	}

	blocks := reg.GetAll()
	if len(blocks) == 0 {
		return serrors.NewMalformedDeclarationError("no //splicer:block comments found").
			WithLocation(path, 0, 0)
	}

	collector := serrors.NewErrorCollector()
	for _, b := range blocks {
		if !b.Valid() {
			collector.Add(b.Err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), b.Declaration)
	}
	if collector.HasErrors() {
		return reportErrors(cmd.ErrOrStderr(), collector.Err())
	}
	return nil
}
