// Package scanner discovers splice blocks in Go source trees.
//
// The scanner walks directories for Go files, parses them with go/parser to
// reach their comments, extracts //splicer:block regions and expands each one.
// Results, including diagnostics translated to file positions, are stored in
// the block registry, which broadcasts change events. File hashes provide
// change detection so unchanged files are not parsed again.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/conneroisu/splicer/internal/logging"
	"github.com/conneroisu/splicer/internal/registry"
	"github.com/conneroisu/splicer/internal/splice"
	"github.com/conneroisu/splicer/internal/types"
)

// DefaultSuffix names generated files: foo.go produces foo_splice.go.
const DefaultSuffix = "_splice.go"

// Options control which files are scanned and how blocks are expanded.
type Options struct {
	// Exclude holds glob patterns matched against base names and against
	// slash-separated paths relative to the scan root.
	Exclude []string
	// Workers bounds the number of files parsed concurrently.
	Workers int
	// Duplicates is the policy for names bound twice in a block.
	Duplicates splice.DuplicatePolicy
	// Suffix identifies generated files, which are never scanned.
	Suffix string
}

// BlockScanner discovers and expands splice blocks.
type BlockScanner struct {
	registry *registry.BlockRegistry
	logger   logging.Logger
	opts     Options
	// fileSet is shared by all parses; token.FileSet is safe for concurrent use
	fileSet *token.FileSet

	hashMu sync.RWMutex
	hashes map[string]string
	// sources records every file scanned, including files later forgotten,
	// and the missing sources of orphaned generated files.
	sources map[string]bool
}

// NewBlockScanner creates a scanner that records blocks in reg.
func NewBlockScanner(reg *registry.BlockRegistry, logger logging.Logger, opts Options) *BlockScanner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
		if opts.Workers > 8 {
			opts.Workers = 8 // Cap at 8 workers for diminishing returns
		}
	}

	return &BlockScanner{
		registry: reg,
		logger:   logger.WithComponent("scanner"),
		opts:     opts,
		fileSet:  token.NewFileSet(),
		hashes:   make(map[string]string),
		sources:  make(map[string]bool),
	}
}

// ScanPaths scans every path, which may name directories or single files.
func (s *BlockScanner) ScanPaths(ctx context.Context, paths []string) error {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return serrors.WrapIO(err, serrors.ErrCodeFileNotFound, p)
		}

		if !info.IsDir() {
			files = append(files, filepath.Clean(p))
			continue
		}

		found, err := s.CollectFiles(p)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}

	return s.ScanFiles(ctx, files)
}

// CollectFiles walks root and returns the Go files that may contain blocks.
func (s *BlockScanner) CollectFiles(root string) ([]string, error) {
	root = filepath.Clean(root)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && s.skipDir(root, path, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.IsCandidate(path) && !s.excluded(root, path) {
			files = append(files, path)
		} else if source, ok := s.orphanSource(path); ok {
			s.addSource(source)
		}
		return nil
	})
	if err != nil {
		return nil, serrors.WrapIO(err, serrors.ErrCodeInvalidPath, root)
	}

	return files, nil
}

// ScanFiles scans files concurrently. Per-file failures are collected and
// returned together once every file has been processed. Block diagnostics
// are not failures; they are recorded on the registered blocks.
func (s *BlockScanner) ScanFiles(ctx context.Context, files []string) error {
	perf := logging.StartOperation(s.logger, "scan")

	collector := serrors.NewErrorCollector()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.ScanFile(file); err != nil {
				collector.Add(err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		perf.EndWithError(ctx, err)
		return fmt.Errorf("scan cancelled: %w", err)
	}

	perf.End(ctx, "files", len(files), "blocks", s.registry.Count())
	return collector.Err()
}

// ScanFile scans one file and reports whether its content changed since the
// previous scan. A file that no longer exists is forgotten.
func (s *BlockScanner) ScanFile(path string) (bool, error) {
	path = filepath.Clean(path)
	s.addSource(path)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.Forget(path), nil
	}
	if err != nil {
		return false, serrors.WrapIO(err, serrors.ErrCodeFileNotFound, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false, serrors.WrapIO(err, serrors.ErrCodeFileNotFound, path)
	}

	hash := fmt.Sprintf("%08x", crc32.ChecksumIEEE(content))
	if s.hashFor(path) == hash {
		return false, nil
	}

	// Files without a marker need no parse.
	if !bytes.Contains(content, []byte(blockMarker)) && !bytes.Contains(content, []byte(endMarker)) {
		s.registry.ReplaceFile(path, nil)
		s.setHash(path, hash)
		return true, nil
	}

	astFile, err := parser.ParseFile(s.fileSet, path, content, parser.ParseComments)
	if err != nil {
		s.registry.RemoveFile(path)
		s.clearHash(path)
		se := serrors.Wrap(err, serrors.ErrorTypeIO, serrors.ErrCodeParseFailed, "cannot parse Go source")
		se.FilePath = path
		return true, se
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return false, serrors.WrapIO(err, serrors.ErrCodeInvalidPath, path)
	}

	tags := buildConstraint(astFile)
	raws := ExtractBlocks(s.fileSet, astFile)
	blocks := make([]*types.BlockInfo, 0, len(raws))
	for _, raw := range raws {
		block := &types.BlockInfo{
			Package:   astFile.Name.Name,
			Dir:       dir,
			FilePath:  path,
			Line:      raw.Line,
			Hash:      hash,
			LastMod:   info.ModTime(),
			BuildTags: tags,
		}
		s.expand(block, raw)
		blocks = append(blocks, block)
	}

	s.registry.ReplaceFile(path, blocks)
	s.setHash(path, hash)

	s.logger.Debug(context.Background(), "Scanned file", "file", path, "blocks", len(blocks))
	return true, nil
}

func (s *BlockScanner) expand(block *types.BlockInfo, raw RawBlock) {
	if raw.Err != nil {
		block.Err = locate(raw.Err, block.FilePath, nil)
		return
	}

	parsed, err := splice.Parse(raw.Source)
	if err != nil {
		block.Err = locate(err, block.FilePath, raw.Position)
		return
	}
	block.Output = parsed.Request.Output
	block.Inputs = parsed.Request.InputNames()

	if block.Package == "main" && block.Output == "main" {
		err := serrors.NewMalformedDeclarationError(`constant name "main" clashes with func main in package main`).
			WithLocation("", parsed.Request.Pos.Line, parsed.Request.Pos.Column)
		block.Err = locate(err, block.FilePath, raw.Position)
		return
	}

	res, err := splice.ExpandBlock(parsed, splice.Options{Duplicates: s.opts.Duplicates})
	if err != nil {
		block.Err = locate(err, block.FilePath, raw.Position)
		return
	}
	block.Value = res.Value.Value
	block.Declaration = res.Declaration
}

// locate moves a block-relative diagnostic to file coordinates.
func locate(err error, path string, mapper func(line, col int) (int, int)) error {
	var se *serrors.SplicerError
	if errors.As(err, &se) {
		return se.Remap(path, mapper)
	}
	wrapped := serrors.Wrap(err, serrors.ErrorTypeInternal, serrors.ErrCodeInternalError, "expanding block")
	wrapped.FilePath = path
	return wrapped
}

// Forget drops everything known about path. It reports whether the file had
// been seen before.
func (s *BlockScanner) Forget(path string) bool {
	path = filepath.Clean(path)
	s.hashMu.Lock()
	_, known := s.hashes[path]
	delete(s.hashes, path)
	s.hashMu.Unlock()

	removed := s.registry.RemoveFile(path)
	return known || removed > 0
}

// Reset clears the change-detection hashes so the next scan parses every file.
func (s *BlockScanner) Reset() {
	s.hashMu.Lock()
	defer s.hashMu.Unlock()
	s.hashes = make(map[string]string)
}

// Sources returns the sorted source files seen so far. Only their generated
// files are candidates for stale removal.
func (s *BlockScanner) Sources() []string {
	s.hashMu.RLock()
	defer s.hashMu.RUnlock()

	sources := make([]string, 0, len(s.sources))
	for src := range s.sources {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources
}

func (s *BlockScanner) addSource(path string) {
	s.hashMu.Lock()
	defer s.hashMu.Unlock()
	s.sources[path] = true
}

// orphanSource maps a generated file to its source and reports whether that
// source is gone.
func (s *BlockScanner) orphanSource(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, s.opts.Suffix) {
		return "", false
	}
	source := filepath.Join(filepath.Dir(path), strings.TrimSuffix(base, s.opts.Suffix)+".go")
	if _, err := os.Stat(source); !errors.Is(err, fs.ErrNotExist) {
		return "", false
	}
	return source, true
}

// IsCandidate reports whether path is a Go source file that may hold blocks.
// Test files and generated files are skipped.
func (s *BlockScanner) IsCandidate(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".go") &&
		!strings.HasSuffix(base, "_test.go") &&
		!strings.HasSuffix(base, s.opts.Suffix)
}

// skipDir follows the go tool: hidden, underscore-prefixed, vendor and
// testdata directories are ignored.
func (s *BlockScanner) skipDir(root, path, name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	if name == "vendor" || name == "testdata" {
		return true
	}
	return s.excluded(root, path)
}

func (s *BlockScanner) excluded(root, path string) bool {
	if len(s.opts.Exclude) == 0 {
		return false
	}

	base := filepath.Base(path)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range s.opts.Exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *BlockScanner) hashFor(path string) string {
	s.hashMu.RLock()
	defer s.hashMu.RUnlock()
	return s.hashes[path]
}

func (s *BlockScanner) setHash(path, hash string) {
	s.hashMu.Lock()
	defer s.hashMu.Unlock()
	s.hashes[path] = hash
}

func (s *BlockScanner) clearHash(path string) {
	s.hashMu.Lock()
	defer s.hashMu.Unlock()
	delete(s.hashes, path)
}

// buildConstraint returns the expression of the file's //go:build line.
func buildConstraint(file *ast.File) string {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if expr, ok := strings.CutPrefix(c.Text, "//go:build "); ok {
				return strings.TrimSpace(expr)
			}
		}
	}
	return ""
}
