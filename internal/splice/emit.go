package splice

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"

	serrors "github.com/conneroisu/splicer/internal/errors"
)

// GeneratedHeader marks files written by splicer, following the convention
// recognised by Go tooling.
const GeneratedHeader = "// Code generated by splicer. DO NOT EDIT."

// Declaration renders the Go constant declaration for res.
func Declaration(res ConcatenationResult) string {
	return fmt.Sprintf("const %s string = %s", res.Output, strconv.Quote(res.Value))
}

// Decl is one constant to place in a generated file.
type Decl struct {
	Result ConcatenationResult
	Inputs []string
	// Line is the line of the block in the source file.
	Line int
}

// FileSpec describes a generated file.
type FileSpec struct {
	Package string
	// Source is the file name the blocks were read from, as shown in
	// comments.
	Source string
	// Comment is extra text placed under the generated-code header, one
	// comment line per line of text.
	Comment string
	// BuildTags, when set, is emitted as a //go:build line.
	BuildTags string
	Decls     []Decl
}

// RenderFile produces the gofmt-formatted contents of a generated file. The
// declarations appear in the order given.
func RenderFile(spec FileSpec) ([]byte, error) {
	if spec.Package == "" {
		return nil, serrors.NewInternalError("generated file needs a package name", nil)
	}

	var buf bytes.Buffer
	buf.WriteString(GeneratedHeader)
	buf.WriteByte('\n')
	if spec.Source != "" {
		fmt.Fprintf(&buf, "// Source: %s\n", spec.Source)
	}
	if spec.Comment != "" {
		for _, line := range strings.Split(strings.TrimRight(spec.Comment, "\n"), "\n") {
			buf.WriteString(strings.TrimRight("// "+line, " "))
			buf.WriteByte('\n')
		}
	}
	if spec.BuildTags != "" {
		fmt.Fprintf(&buf, "\n//go:build %s\n", spec.BuildTags)
	}
	fmt.Fprintf(&buf, "\npackage %s\n", spec.Package)

	for _, d := range spec.Decls {
		buf.WriteByte('\n')
		fmt.Fprintf(&buf, "// %s is spliced from %s.\n", d.Result.Output, describeOrigin(spec.Source, d))
		buf.WriteString(Declaration(d.Result))
		buf.WriteByte('\n')
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, serrors.NewInternalError("formatting generated source", err)
	}
	return out, nil
}

func describeOrigin(source string, d Decl) string {
	var b strings.Builder
	if source != "" {
		b.WriteString(source)
		if d.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Line)
		}
	} else {
		b.WriteString("a splice block")
	}

	if len(d.Inputs) == 0 {
		b.WriteString(" (no inputs)")
	} else {
		fmt.Fprintf(&b, " (%s)", strings.Join(d.Inputs, ", "))
	}
	return b.String()
}

// IsGenerated reports whether content starts with the splicer header.
func IsGenerated(content []byte) bool {
	return bytes.HasPrefix(content, []byte(GeneratedHeader))
}
