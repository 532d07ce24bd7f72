package cmd

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/conneroisu/splicer/internal/build"
	"github.com/conneroisu/splicer/internal/config"
	serrors "github.com/conneroisu/splicer/internal/errors"
)

var checkCmd = &cobra.Command{
	Use:     "check [paths...]",
	Aliases: []string{"c"},
	Short:   "Report splice block errors without writing files",
	Long: `Scan and expand every block, then report malformed blocks, unresolved
names, non-literal values, duplicate bindings and constants defined twice in
one package. Configuration warnings are printed as well.

The command exits non-zero when any error is found, which makes it suitable
for CI.

Examples:
  splicer check
  splicer check ./internal -f json`,
	RunE: runCheck,
}

var checkFormat string

func init() {
	rootCmd.AddCommand(checkCmd)
	AddFormatFlag(checkCmd, &checkFormat, textFormats)
}

// diagnostic is the JSON form of one problem.
type diagnostic struct {
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

type checkReport struct {
	Files       int          `json:"files"`
	Blocks      int          `json:"blocks"`
	Errors      []diagnostic `json:"errors"`
	Warnings    []diagnostic `json:"warnings"`
	ConfigValid bool         `json:"config_valid"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd, args)
	if err != nil {
		return err
	}
	defer ws.close()

	report := checkReport{Errors: []diagnostic{}, Warnings: []diagnostic{}}

	validation := config.ValidateWithDetails(ws.cfg)
	report.ConfigValid = validation.Valid
	for _, w := range validation.Warnings {
		report.Warnings = append(report.Warnings, diagnostic{Message: w.Field + ": " + w.Message})
	}

	collector := serrors.NewErrorCollector()
	if err := ws.scan(cmd.Context()); err != nil {
		for _, e := range flatten(err) {
			collector.Add(e)
		}
	}

	blocks := ws.registry.GetAll()
	report.Blocks = len(blocks)
	report.Files = len(ws.registry.Files())
	if err := build.Validate(blocks); err != nil {
		for _, e := range flatten(err) {
			collector.Add(e)
		}
	}

	for _, d := range collector.Diagnostics() {
		report.Errors = append(report.Errors, toDiagnostic(d))
	}
	if err := collector.Err(); err != nil {
		// Errors without structure still count.
		for _, e := range flatten(err) {
			var se *serrors.SplicerError
			if !errors.As(e, &se) {
				report.Errors = append(report.Errors, diagnostic{Message: e.Error()})
			}
		}
	}

	if checkFormat == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return err
		}
	} else {
		outputCheckText(cmd.OutOrStdout(), report, validation)
	}

	if len(report.Errors) > 0 {
		return &errProblems{count: len(report.Errors)}
	}
	return nil
}

func toDiagnostic(se *serrors.SplicerError) diagnostic {
	d := diagnostic{
		File:       se.FilePath,
		Line:       se.Line,
		Column:     se.Column,
		Code:       se.Code,
		Message:    se.Message,
		Suggestion: se.Suggestion,
	}
	if se.Cause != nil {
		d.Message += ": " + se.Cause.Error()
	}
	return d
}

func outputCheckText(out io.Writer, report checkReport, validation *config.ValidationResult) {
	p := message.NewPrinter(language.English)

	if validation.HasWarnings() {
		p.Fprint(out, validation.String())
	}

	for _, d := range report.Errors {
		p.Fprintln(out, formatDiagnostic(d))
	}

	if len(report.Errors) == 0 {
		p.Fprintf(out, "ok: %d blocks in %d files\n", report.Blocks, report.Files)
		return
	}
	p.Fprintf(out, "%d errors in %d blocks\n", len(report.Errors), report.Blocks)
}

func formatDiagnostic(d diagnostic) string {
	se := &serrors.SplicerError{
		Code:       d.Code,
		Message:    d.Message,
		FilePath:   d.File,
		Line:       d.Line,
		Column:     d.Column,
		Suggestion: d.Suggestion,
	}
	return se.Error()
}
