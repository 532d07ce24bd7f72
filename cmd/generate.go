package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/conneroisu/splicer/internal/build"
)

var generateCmd = &cobra.Command{
	Use:     "generate [paths...]",
	Aliases: []string{"gen", "g"},
	Short:   "Generate Go constants from splice blocks",
	Long: `Scan Go sources for //splicer:block comments, expand each block and write
one generated file per source file that contains blocks.

Generated files are only rewritten when their content changes. Generated
files whose source no longer has blocks are removed. Nothing is written when
any block has an error.

Examples:
  splicer generate                    # Use scan.paths from the config
  splicer generate ./internal ./cmd   # Scan specific directories
  splicer generate -n                 # Show what would change
  splicer generate -o ./consts        # Write into one directory
  splicer generate -f json            # Machine readable summary`,
	RunE: runGenerate,
}

var (
	generateDryRun bool
	generateFormat string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringP("output", "o", "", "directory for generated files (default is next to each source)")
	flags.String("suffix", "", "generated file name suffix (default _splice.go)")
	flags.String("header", "", "comment placed under the generated-code header")
	flags.BoolVarP(&generateDryRun, "dry-run", "n", false, "report changes without writing files")
	AddFormatFlag(generateCmd, &generateFormat, textFormats)

	bindFlag("generate.output_dir", flags.Lookup("output"))
	bindFlag("generate.suffix", flags.Lookup("suffix"))
	bindFlag("generate.header", flags.Lookup("header"))
}

// generateSummary is the JSON form of a generation result.
type generateSummary struct {
	ID         string   `json:"id"`
	Blocks     int      `json:"blocks"`
	Written    []string `json:"written"`
	Unchanged  []string `json:"unchanged"`
	Removed    []string `json:"removed"`
	DryRun     bool     `json:"dry_run"`
	DurationMS int64    `json:"duration_ms"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd, args)
	if err != nil {
		return err
	}
	defer ws.close()

	ctx := cmd.Context()
	if err := ws.scan(ctx); err != nil {
		return reportErrors(cmd.ErrOrStderr(), err)
	}

	result, err := ws.generate(ctx, ws.pipeline(generateDryRun))
	if err != nil {
		return reportErrors(cmd.ErrOrStderr(), err)
	}

	if generateFormat == "json" {
		return outputGenerateJSON(cmd.OutOrStdout(), result)
	}
	outputGenerateText(cmd.OutOrStdout(), result)
	return nil
}

func outputGenerateJSON(out io.Writer, result *build.Result) error {
	summary := generateSummary{
		ID:         result.ID.String(),
		Blocks:     result.Blocks,
		Written:    nonNil(result.Written),
		Unchanged:  nonNil(result.Unchanged),
		Removed:    nonNil(result.Removed),
		DryRun:     result.DryRun,
		DurationMS: result.Duration.Milliseconds(),
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

func outputGenerateText(out io.Writer, result *build.Result) {
	p := message.NewPrinter(language.English)

	write, remove := "wrote", "removed"
	if result.DryRun {
		write, remove = "would write", "would remove"
	}
	for _, path := range result.Written {
		fmt.Fprintf(out, "%s %s\n", write, path)
	}
	for _, path := range result.Removed {
		fmt.Fprintf(out, "%s %s\n", remove, path)
	}

	p.Fprintf(out, "%d blocks: %d files written, %d unchanged, %d removed\n",
		result.Blocks, len(result.Written), len(result.Unchanged), len(result.Removed))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
