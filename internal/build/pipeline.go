package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/logging"
	"github.com/conneroisu/splicer/internal/scanner"
	"github.com/conneroisu/splicer/internal/splice"
	"github.com/conneroisu/splicer/internal/types"
)

// Options configure a Pipeline.
type Options struct {
	// Suffix replaces ".go" in the source name to form the generated name.
	Suffix string
	// OutputDir, when set, receives every generated file. All blocks must
	// then come from a single package directory.
	OutputDir string
	// Header is extra comment text written under the generated-code line.
	Header string
	// DryRun reports what would change without touching the filesystem.
	DryRun bool
	// CacheSize bounds the rendered-file cache in bytes.
	CacheSize int64
}

// Result describes one pipeline run. Paths are generated file paths.
type Result struct {
	ID        uuid.UUID
	Written   []string
	Unchanged []string
	Removed   []string
	Blocks    int
	DryRun    bool
	Duration  time.Duration
}

// Changed reports whether the run wrote or removed anything.
func (r *Result) Changed() bool {
	return len(r.Written) > 0 || len(r.Removed) > 0
}

// Pipeline renders generated files from expanded blocks.
type Pipeline struct {
	opts    Options
	cache   *Cache
	metrics *Metrics
	logger  logging.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(opts Options, logger logging.Logger) *Pipeline {
	if opts.Suffix == "" {
		opts.Suffix = scanner.DefaultSuffix
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16 * 1024 * 1024 // 16MB
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Pipeline{
		opts:    opts,
		cache:   NewCache(opts.CacheSize, 0),
		metrics: NewMetrics(),
		logger:  logger.WithComponent("build"),
	}
}

// GetMetrics returns a snapshot of the accumulated run metrics.
func (p *Pipeline) GetMetrics() Metrics {
	return p.metrics.GetSnapshot()
}

// GetCacheStats returns the rendered-file cache statistics.
func (p *Pipeline) GetCacheStats() CacheStats {
	return p.cache.Stats()
}

// GeneratedPath returns where the file generated for source is written.
func (p *Pipeline) GeneratedPath(source string) string {
	dir := filepath.Dir(source)
	if p.opts.OutputDir != "" {
		dir = p.opts.OutputDir
	}
	base := strings.TrimSuffix(filepath.Base(source), ".go")
	return filepath.Join(dir, base+p.opts.Suffix)
}

// Run validates blocks, renders one generated file per source file and
// brings the filesystem in line with it. sources lists the source files
// that were scanned; the generated file of a source that no longer has
// blocks is removed. Generated files of other sources are left alone.
//
// Nothing is written when any block carries a diagnostic or when a package
// defines the same constant twice. All such problems are returned together.
func (p *Pipeline) Run(ctx context.Context, blocks []*types.BlockInfo, sources []string) (*Result, error) {
	result := &Result{ID: uuid.New(), DryRun: p.opts.DryRun, Blocks: len(blocks)}
	ctx = logging.WithRunID(ctx, result.ID.String())
	start := time.Now()

	res, err := p.run(ctx, result, blocks, sources)
	result.Duration = time.Since(start)
	p.metrics.RecordRun(res, err)

	if err != nil {
		p.logger.Error(ctx, err, "Generation failed", "blocks", len(blocks))
		return nil, err
	}

	p.logger.Info(ctx, "Generation finished",
		"written", len(result.Written),
		"unchanged", len(result.Unchanged),
		"removed", len(result.Removed),
		"dry_run", result.DryRun,
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, result *Result, blocks []*types.BlockInfo, sources []string) (*Result, error) {
	if err := Validate(blocks); err != nil {
		return nil, err
	}
	if err := p.checkOutputDir(blocks); err != nil {
		return nil, err
	}

	planned := make(map[string]bool)
	for _, group := range groupByFile(blocks) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		target := p.GeneratedPath(group[0].FilePath)
		planned[target] = true

		content, err := p.render(group)
		if err != nil {
			return nil, err
		}

		written, err := p.write(target, content)
		if err != nil {
			return nil, err
		}
		if written {
			result.Written = append(result.Written, target)
		} else {
			result.Unchanged = append(result.Unchanged, target)
		}
	}

	removed, err := p.removeStale(sources, planned)
	if err != nil {
		return nil, err
	}
	result.Removed = removed

	return result, nil
}

// Validate reports every block diagnostic and every constant defined more
// than once in a package directory.
func Validate(blocks []*types.BlockInfo) error {
	collector := serrors.NewErrorCollector()
	seen := make(map[string]*types.BlockInfo)

	for _, b := range sortedBlocks(blocks) {
		if !b.Valid() {
			collector.Add(b.Err)
			continue
		}

		first, dup := seen[b.OutputKey()]
		if !dup {
			seen[b.OutputKey()] = b
			continue
		}
		collector.Add(serrors.NewDuplicateOutputError(b.Output, b.Package).
			WithLocation(b.FilePath, b.Line, 0).
			WithContext("first", first.ID()))
	}

	return collector.Err()
}

func (p *Pipeline) checkOutputDir(blocks []*types.BlockInfo) error {
	if p.opts.OutputDir == "" {
		return nil
	}

	var dir string
	for _, b := range blocks {
		if dir == "" {
			dir = b.Dir
		} else if b.Dir != dir {
			return serrors.NewConfigError(fmt.Sprintf(
				"output directory %s cannot hold blocks from more than one package (%s and %s)",
				p.opts.OutputDir, dir, b.Dir))
		}
	}
	return nil
}

func (p *Pipeline) render(group []*types.BlockInfo) ([]byte, error) {
	first := group[0]
	key := fmt.Sprintf("%s@%s@%s", first.FilePath, first.Hash, p.opts.Header)
	if content, ok := p.cache.Get(key); ok && first.Hash != "" {
		return content, nil
	}

	spec := splice.FileSpec{
		Package:   first.Package,
		Source:    filepath.Base(first.FilePath),
		Comment:   p.opts.Header,
		BuildTags: first.BuildTags,
	}
	for _, b := range group {
		spec.Decls = append(spec.Decls, splice.Decl{
			Result: splice.ConcatenationResult{Output: b.Output, Value: b.Value},
			Inputs: b.Inputs,
			Line:   b.Line,
		})
	}

	content, err := splice.RenderFile(spec)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.ErrorTypeInternal, serrors.ErrCodeInternalError,
			"rendering "+first.FilePath)
	}

	if first.Hash != "" {
		p.cache.Set(key, content)
	}
	return content, nil
}

// write stores content at target unless it is already there. Files without
// the generated-code header are never overwritten.
func (p *Pipeline) write(target string, content []byte) (bool, error) {
	existing, err := os.ReadFile(target)
	switch {
	case err == nil:
		if bytes.Equal(existing, content) {
			return false, nil
		}
		if !splice.IsGenerated(existing) {
			return false, serrors.NewIOError(serrors.ErrCodeWriteFailed,
				"refusing to overwrite a file that splicer did not generate", nil).
				WithLocation(target, 0, 0)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return false, serrors.WrapIO(err, serrors.ErrCodeWriteFailed, target)
	}

	if p.opts.DryRun {
		return true, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, serrors.WrapIO(err, serrors.ErrCodeWriteFailed, target)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return false, serrors.WrapIO(err, serrors.ErrCodeWriteFailed, target)
	}
	return true, nil
}

// removeStale deletes the generated files of sources that no longer have
// blocks.
func (p *Pipeline) removeStale(sources []string, planned map[string]bool) ([]string, error) {
	targets := make(map[string]bool)
	for _, src := range sources {
		if target := p.GeneratedPath(src); !planned[target] {
			targets[target] = true
		}
	}

	var removed []string
	for _, path := range sortedKeys(targets) {
		content, err := os.ReadFile(path)
		if err != nil || !splice.IsGenerated(content) {
			continue
		}

		if !p.opts.DryRun {
			if err := os.Remove(path); err != nil {
				return nil, serrors.WrapIO(err, serrors.ErrCodeWriteFailed, path)
			}
		}
		removed = append(removed, path)
	}
	return removed, nil
}

func sortedBlocks(blocks []*types.BlockInfo) []*types.BlockInfo {
	sorted := make([]*types.BlockInfo, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FilePath != sorted[j].FilePath {
			return sorted[i].FilePath < sorted[j].FilePath
		}
		return sorted[i].Line < sorted[j].Line
	})
	return sorted
}

// groupByFile returns blocks grouped by source file, in file then line order.
func groupByFile(blocks []*types.BlockInfo) [][]*types.BlockInfo {
	var groups [][]*types.BlockInfo
	for _, b := range sortedBlocks(blocks) {
		n := len(groups)
		if n > 0 && groups[n-1][0].FilePath == b.FilePath {
			groups[n-1] = append(groups[n-1], b)
			continue
		}
		groups = append(groups, []*types.BlockInfo{b})
	}
	return groups
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
