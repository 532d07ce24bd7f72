package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/splicer/internal/build"
	"github.com/conneroisu/splicer/internal/config"
	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/logging"
	"github.com/conneroisu/splicer/internal/registry"
	"github.com/conneroisu/splicer/internal/scanner"
)

// workspace wires the scanner, registry and build pipeline for one command
// invocation.
type workspace struct {
	cfg      *config.Config
	logger   *logging.SplicerLogger
	registry *registry.BlockRegistry
	scanner  *scanner.BlockScanner
}

func newWorkspace(cmd *cobra.Command, args []string) (*workspace, error) {
	cfg, err := loadConfig(args)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd, cfg)
	reg := registry.NewBlockRegistry()
	sc := scanner.NewBlockScanner(reg, logger, scanner.Options{
		Exclude:    cfg.Scan.Exclude,
		Workers:    cfg.Scan.Workers,
		Duplicates: cfg.DuplicatePolicy(),
		Suffix:     cfg.Generate.Suffix,
	})

	return &workspace{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		scanner:  sc,
	}, nil
}

// scan reads every configured path into the registry.
func (w *workspace) scan(ctx context.Context) error {
	w.logger.Debug(ctx, "Scanning", "paths", w.cfg.Paths())
	if err := w.scanner.ScanPaths(ctx, w.cfg.Paths()); err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	return nil
}

func (w *workspace) pipeline(dryRun bool) *build.Pipeline {
	return build.NewPipeline(build.Options{
		Suffix:    w.cfg.Generate.Suffix,
		OutputDir: w.cfg.Generate.OutputDir,
		Header:    w.cfg.Generate.Header,
		DryRun:    dryRun,
	}, w.logger)
}

// generate runs the pipeline over everything scanned so far.
func (w *workspace) generate(ctx context.Context, p *build.Pipeline) (*build.Result, error) {
	return p.Run(ctx, w.registry.GetAll(), w.scanner.Sources())
}

func (w *workspace) close() {
	_ = w.logger.Sync()
}

// errProblems is returned after diagnostics have been printed, so cobra
// does not print them a second time.
type errProblems struct {
	count int
}

func (e *errProblems) Error() string {
	if e.count == 1 {
		return "1 problem found"
	}
	return fmt.Sprintf("%d problems found", e.count)
}

// reportErrors prints one line per error held by err, which may be joined,
// and returns a short summary error.
func reportErrors(out io.Writer, err error) error {
	if err == nil {
		return nil
	}

	collector := serrors.NewErrorCollector()
	for _, e := range flatten(err) {
		collector.Add(e)
	}
	fmt.Fprintln(out, collector.Summary())
	return &errProblems{count: collector.Count()}
}

// flatten expands joined and wrapped-joined errors into their parts.
func flatten(err error) []error {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []error{err}
	}

	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, flatten(e)...)
	}
	return out
}
