package scanner

import (
	"go/ast"
	"go/token"
	"strings"

	serrors "github.com/conneroisu/splicer/internal/errors"
)

const (
	blockMarker = "splicer:block"
	endMarker   = "splicer:end"
)

// RawBlock is the body of one splice block as written in a Go file, before
// expansion.
type RawBlock struct {
	// Source is the block body with comment markers removed.
	Source string
	// Line and Column locate the opening marker in the file.
	Line   int
	Column int
	// Err is set when the block markers themselves are malformed.
	Err error

	origins []lineOrigin
}

// lineOrigin records where a line of Source starts in the file.
type lineOrigin struct {
	line int
	col  int
}

// Position maps a line and column inside Source to file coordinates.
func (b RawBlock) Position(line, col int) (int, int) {
	if len(b.origins) == 0 {
		return b.Line, b.Column
	}
	if line < 1 {
		line = 1
	}
	if line > len(b.origins) {
		last := b.origins[len(b.origins)-1]
		return last.line + line - len(b.origins), col
	}

	o := b.origins[line-1]
	return o.line, o.col + col - 1
}

// ExtractBlocks finds every splice block in the comments of file. The file
// must have been parsed with parser.ParseComments.
//
// CommentGroup.Text drops directive lines such as //splicer:block, so the
// raw comment text is inspected instead.
func ExtractBlocks(fset *token.FileSet, file *ast.File) []RawBlock {
	var blocks []RawBlock
	for _, group := range file.Comments {
		blocks = append(blocks, extractFromGroup(fset, group)...)
	}
	return blocks
}

type blockBuilder struct {
	block RawBlock
	lines []string
}

func (bb *blockBuilder) add(text string, line, col int) {
	for i, l := range strings.Split(text, "\n") {
		bb.lines = append(bb.lines, l)
		if i == 0 {
			bb.block.origins = append(bb.block.origins, lineOrigin{line: line, col: col})
		} else {
			bb.block.origins = append(bb.block.origins, lineOrigin{line: line + i, col: 1})
		}
	}
}

func (bb *blockBuilder) finish() RawBlock {
	bb.block.Source = strings.Join(bb.lines, "\n")
	return bb.block
}

func extractFromGroup(fset *token.FileSet, group *ast.CommentGroup) []RawBlock {
	var (
		blocks  []RawBlock
		current *blockBuilder
	)

	for _, c := range group.List {
		pos := fset.Position(c.Slash)

		if strings.HasPrefix(c.Text, "/*") {
			body := strings.TrimSuffix(c.Text[2:], "*/")
			switch {
			case current != nil:
				// A general comment inside a line block is left for the
				// block lexer to skip.
				current.add(c.Text, pos.Line, pos.Column)
			case isMarker(body, blockMarker):
				bb := &blockBuilder{block: RawBlock{Line: pos.Line, Column: pos.Column}}
				bb.add(body[len(blockMarker):], pos.Line, pos.Column+2+len(blockMarker))
				blocks = append(blocks, bb.finish())
			}
			continue
		}

		text := c.Text[2:]
		switch strings.TrimSpace(text) {
		case blockMarker:
			if current != nil {
				b := current.finish()
				b.Err = serrors.NewMalformedDeclarationError("splicer:block inside another block").
					WithLocation("", pos.Line, pos.Column)
				blocks = append(blocks, b)
			}
			current = &blockBuilder{block: RawBlock{Line: pos.Line, Column: pos.Column}}
		case endMarker:
			if current == nil {
				blocks = append(blocks, RawBlock{
					Line:   pos.Line,
					Column: pos.Column,
					Err: serrors.NewMalformedDeclarationError("splicer:end without splicer:block").
						WithLocation("", pos.Line, pos.Column),
				})
				continue
			}
			blocks = append(blocks, current.finish())
			current = nil
		default:
			if current != nil {
				current.add(text, pos.Line, pos.Column+2)
			}
		}
	}

	// The end of the comment group also closes a block.
	if current != nil {
		blocks = append(blocks, current.finish())
	}
	return blocks
}

// isMarker reports whether body starts with marker followed by white space
// or nothing.
func isMarker(body, marker string) bool {
	if !strings.HasPrefix(body, marker) {
		return false
	}
	rest := body[len(marker):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r'
}
