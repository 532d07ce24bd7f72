package splice

import (
	goparser "go/parser"
	gotoken "go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclaration(t *testing.T) {
	tests := []struct {
		res  ConcatenationResult
		want string
	}{
		{ConcatenationResult{"Greeting", "FirstSecond"}, `const Greeting string = "FirstSecond"`},
		{ConcatenationResult{"Empty", ""}, `const Empty string = ""`},
		{ConcatenationResult{"Quoted", "say \"hi\"\n"}, `const Quoted string = "say \"hi\"\n"`},
		{ConcatenationResult{"Bytes", "\xff"}, `const Bytes string = "\xff"`},
	}

	for _, tt := range tests {
		t.Run(tt.res.Output, func(t *testing.T) {
			assert.Equal(t, tt.want, Declaration(tt.res))
		})
	}
}

func TestRenderFile(t *testing.T) {
	out, err := RenderFile(FileSpec{
		Package: "demo",
		Source:  "greeting.go",
		Decls: []Decl{
			{Result: ConcatenationResult{"Greeting", "FirstSecond"}, Inputs: []string{"first", "second"}, Line: 12},
			{Result: ConcatenationResult{"Nothing", ""}, Inputs: []string{}, Line: 30},
		},
	})
	require.NoError(t, err)

	want := `// Code generated by splicer. DO NOT EDIT.
// Source: greeting.go

package demo

// Greeting is spliced from greeting.go:12 (first, second).
const Greeting string = "FirstSecond"

// Nothing is spliced from greeting.go:30 (no inputs).
const Nothing string = ""
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("RenderFile() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, IsGenerated(out))

	// The output must be a valid Go file.
	_, err = goparser.ParseFile(gotoken.NewFileSet(), "greeting_splice.go", out, goparser.ParseComments)
	require.NoError(t, err)
}

func TestRenderFileBuildTags(t *testing.T) {
	out, err := RenderFile(FileSpec{
		Package:   "demo",
		BuildTags: "linux && amd64",
		Decls:     []Decl{{Result: ConcatenationResult{"A", "a"}, Inputs: []string{"x"}}},
	})
	require.NoError(t, err)

	want := `// Code generated by splicer. DO NOT EDIT.

//go:build linux && amd64

package demo

// A is spliced from a splice block (x).
const A string = "a"
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("RenderFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFileComment(t *testing.T) {
	out, err := RenderFile(FileSpec{
		Package: "demo",
		Source:  "a.go",
		Comment: "Regenerate with: go generate ./...\n\nOwned by the build team.\n",
		Decls:   []Decl{{Result: ConcatenationResult{"A", "a"}, Inputs: []string{"x"}, Line: 3}},
	})
	require.NoError(t, err)

	want := `// Code generated by splicer. DO NOT EDIT.
// Source: a.go
// Regenerate with: go generate ./...
//
// Owned by the build team.

package demo

// A is spliced from a.go:3 (x).
const A string = "a"
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("RenderFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFileErrors(t *testing.T) {
	_, err := RenderFile(FileSpec{})
	assert.Error(t, err)

	_, err = RenderFile(FileSpec{
		Package: "demo",
		Decls:   []Decl{{Result: ConcatenationResult{"not valid", "x"}}},
	})
	assert.Error(t, err)
}

func TestIsGenerated(t *testing.T) {
	assert.True(t, IsGenerated([]byte(GeneratedHeader+"\n\npackage x\n")))
	assert.False(t, IsGenerated([]byte("package x\n")))
	assert.False(t, IsGenerated(nil))
}
