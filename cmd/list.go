package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/splicer/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list [paths...]",
	Aliases: []string{"l", "ls"},
	Short:   "List all discovered splice blocks",
	Long: `List every splice block with the constant it defines, its package, its
location and the names it concatenates.

Examples:
  splicer list                    # Table output
  splicer list -f json            # Output as JSON
  splicer list -f yaml ./internal # YAML for one directory
  splicer list --values           # Include the expanded values`,
	RunE: runList,
}

var (
	listFormat     string
	listWithValues bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	AddFormatFlag(listCmd, &listFormat, tableFormats)
	listCmd.Flags().BoolVarP(&listWithValues, "values", "v", false, "include expanded values in table output")
}

// blockEntry is the listed form of a block.
type blockEntry struct {
	Output  string   `json:"output" yaml:"output"`
	Package string   `json:"package" yaml:"package"`
	File    string   `json:"file" yaml:"file"`
	Line    int      `json:"line" yaml:"line"`
	Inputs  []string `json:"inputs" yaml:"inputs"`
	Value   string   `json:"value,omitempty" yaml:"value,omitempty"`
	Tags    string   `json:"build_tags,omitempty" yaml:"build_tags,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd, args)
	if err != nil {
		return err
	}
	defer ws.close()

	// Files that fail to parse are reported; blocks elsewhere are still listed.
	if err := ws.scan(cmd.Context()); err != nil {
		ws.logger.Warn(cmd.Context(), err, "Some files could not be scanned")
	}

	entries := toEntries(ws.registry.GetAll())
	out := cmd.OutOrStdout()

	switch strings.ToLower(listFormat) {
	case "json":
		return outputListJSON(out, entries)
	case "yaml":
		return outputListYAML(out, entries)
	default:
		return outputListTable(out, entries)
	}
}

func toEntries(blocks []*types.BlockInfo) []blockEntry {
	entries := make([]blockEntry, 0, len(blocks))
	for _, b := range blocks {
		entry := blockEntry{
			Output:  b.Output,
			Package: b.Package,
			File:    b.FilePath,
			Line:    b.Line,
			Inputs:  b.Inputs,
			Tags:    b.BuildTags,
		}
		if entry.Inputs == nil {
			entry.Inputs = []string{}
		}
		if b.Valid() {
			entry.Value = b.Value
		} else {
			entry.Error = b.Err.Error()
		}
		entries = append(entries, entry)
	}
	return entries
}

func outputListJSON(out io.Writer, entries []blockEntry) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func outputListYAML(out io.Writer, entries []blockEntry) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(entries); err != nil {
		return err
	}
	return encoder.Close()
}

func outputListTable(out io.Writer, entries []blockEntry) error {
	p := message.NewPrinter(language.English)
	if len(entries) == 0 {
		p.Fprintln(out, "No splice blocks found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := "OUTPUT\tPACKAGE\tLOCATION\tINPUTS\tSTATUS"
	if listWithValues {
		header += "\tVALUE"
	}
	fmt.Fprintln(w, header)

	for _, e := range entries {
		output := e.Output
		if output == "" {
			output = "-"
		}
		status := "ok"
		if e.Error != "" {
			status = "error"
		}

		row := fmt.Sprintf("%s\t%s\t%s:%d\t%s\t%s",
			output, e.Package, e.File, e.Line, strings.Join(e.Inputs, ","), status)
		if listWithValues {
			row += "\t" + fmt.Sprintf("%q", e.Value)
		}
		fmt.Fprintln(w, row)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	p.Fprintf(out, "\nTotal: %d blocks\n", len(entries))
	return nil
}
