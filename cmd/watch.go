package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/splicer/internal/build"
	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch [paths...]",
	Aliases: []string{"w"},
	Short:   "Watch for file changes and regenerate",
	Long: `Generate once, then watch the scan paths and regenerate whenever a Go
source file changes. Only changed files are parsed again. Errors are logged
and the watcher keeps running until interrupted.

Examples:
  splicer watch                   # Watch all configured paths
  splicer watch ./internal        # Watch one directory
  splicer watch --log-level debug # Show every scanned file`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd, args)
	if err != nil {
		return err
	}
	defer ws.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileWatcher, err := watcher.NewFileWatcher(ws.cfg.Watch.Debounce, ws.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.GoFilter)
	fileWatcher.AddFilter(watcher.NoTestFilter)
	fileWatcher.AddFilter(watcher.NoGeneratedFilter(ws.cfg.Generate.Suffix))
	fileWatcher.AddFilter(watcher.NoVendorFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)

	pipeline := ws.pipeline(false)
	handler := serrors.NewErrorHandler(ws.logger)

	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		return regenerate(ctx, ws, pipeline, handler, events)
	})

	for _, path := range ws.cfg.Paths() {
		info, err := os.Stat(path)
		if err != nil {
			ws.logger.Warn(ctx, err, "Cannot watch path", "path", path)
			continue
		}
		if info.IsDir() {
			err = fileWatcher.AddRecursive(path)
		} else {
			err = fileWatcher.AddPath(path)
		}
		if err != nil {
			ws.logger.Warn(ctx, err, "Cannot watch path", "path", path)
			continue
		}
		ws.logger.Debug(ctx, "Watching", "path", path)
	}

	// The first run may fail; the watcher still starts so fixes are picked up.
	if err := ws.scan(ctx); err != nil {
		logFailures(ctx, handler, err)
	}
	if _, err := ws.generate(ctx, pipeline); err != nil {
		logFailures(ctx, handler, err)
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes... (Press Ctrl+C to stop)")
	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "Stopping file watcher...")

	metrics := pipeline.GetMetrics()
	stats := pipeline.GetCacheStats()
	ws.logger.Info(cmd.Context(), "Watch session finished",
		"runs", metrics.Runs,
		"success_rate", metrics.SuccessRate(),
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses)

	return nil
}

// regenerate rescans the changed files and runs the pipeline again when any
// of them changed.
func regenerate(ctx context.Context, ws *workspace, pipeline *build.Pipeline, handler *serrors.ErrorHandler, events []watcher.ChangeEvent) error {
	changed := false
	for _, event := range events {
		ws.logger.Debug(ctx, "File changed", "path", event.Path, "type", event.Type.String())

		if !ws.scanner.IsCandidate(event.Path) {
			continue
		}

		switch event.Type {
		case watcher.EventTypeDeleted, watcher.EventTypeRenamed:
			if ws.scanner.Forget(event.Path) {
				changed = true
			}
		default:
			fileChanged, err := ws.scanner.ScanFile(event.Path)
			if err != nil {
				handler.Handle(ctx, err)
			}
			changed = changed || fileChanged
		}
	}

	if !changed {
		return nil
	}

	result, err := ws.generate(ctx, pipeline)
	if err != nil {
		logFailures(ctx, handler, err)
		return nil
	}
	if result.Changed() {
		ws.logger.Info(ctx, "Regenerated",
			"written", len(result.Written),
			"removed", len(result.Removed))
	}
	return nil
}

func logFailures(ctx context.Context, handler *serrors.ErrorHandler, err error) {
	for _, e := range flatten(err) {
		handler.Handle(ctx, e)
	}
}
