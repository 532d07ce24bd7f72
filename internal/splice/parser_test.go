package splice

import (
	"errors"
	"testing"

	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlock(t *testing.T) {
	src := `
		let first = "First";
		let second: &str = "Second";
		const GREETING: &str = concat(first, second);
	`

	block, err := Parse(src)
	require.NoError(t, err)

	require.Len(t, block.Bindings, 2)
	assert.Equal(t, Binding{Name: "first", Value: "First", Pos: Position{2, 7}}, block.Bindings[0])
	assert.Equal(t, "second", block.Bindings[1].Name)
	assert.Equal(t, "Second", block.Bindings[1].Value)

	assert.Equal(t, "GREETING", block.Request.Output)
	assert.Equal(t, "&str", block.Request.Type)
	assert.Equal(t, []string{"first", "second"}, block.Request.InputNames())
	assert.Equal(t, Position{4, 3}, block.Request.Pos)
}

func TestParseAcceptedForms(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		typ    string
		inputs []string
	}{
		{"static str", `const A: &'static str = concat();`, "&'static str", []string{}},
		{"go string", `let a = "x"; const A: string = concat(a);`, "string", []string{"a"}},
		{"String", `let a = "x"; const A: String = concat(a,);`, "String", []string{"a"}},
		{"str", `let a = "x"; const A: str = concat(a, a);`, "str", []string{"a", "a"}},
		{"qualified rust path", `let a = "x"; const A: &str = string::concat(a);`, "&str", []string{"a"}},
		{"qualified go path", `let a = "x"; const A: &str = strings.concat(a);`, "&str", []string{"a"}},
		{"comments", "// header\nlet a = \"x\"; /* c */ const A: &str = concat(a);", "&str", []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, block.Request.Type)
			assert.Equal(t, tt.inputs, block.Request.InputNames())
		})
	}
}

func TestParseLiteralForms(t *testing.T) {
	tests := []struct {
		name string
		lit  string
		want string
	}{
		{"plain", `"hello"`, "hello"},
		{"escapes", `"a\tb\n\"c\"\u00e9"`, "a\tb\n\"c\"é"},
		{"hex byte", `"\x41"`, "A"},
		{"empty", `""`, ""},
		{"backtick", "`C:\\path\\n`", `C:\path\n`},
		{"rust raw", `r"no \n escape"`, `no \n escape`},
		{"rust raw hashes", `r#"say "hi""#`, `say "hi"`},
		{"unicode", `"ünïcödé ✓"`, "ünïcödé ✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := Parse("let v = " + tt.lit + "; const V: &str = concat(v);")
			require.NoError(t, err)
			assert.Equal(t, tt.want, block.Bindings[0].Value)
		})
	}
}

func TestParseNonLiteralValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		found string
	}{
		{"number", `42`, "numeric literal 42"},
		{"float", `1.5`, "numeric literal 1.5"},
		{"number then letter", `1.é`, "numeric literal 1"},
		{"number then emoji", `1.😀`, "numeric literal 1"},
		{"char", `'a'`, "character literal 'a'"},
		{"bool", `true`, "boolean literal true"},
		{"identifier", `other`, `an expression starting with "other"`},
		{"macro call", `format!("{}", x)`, `an expression starting with "format"`},
		{"method call", `"a".to_string()`, "an expression"},
		{"addition", `"a" + "b"`, "an expression"},
		{"negative", `-1`, "an expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("let v = " + tt.value + "; const V: &str = concat(v);")
			require.Error(t, err)
			assert.True(t, errors.Is(err, serrors.ErrNonLiteralValue), err.Error())

			var se *serrors.SplicerError
			require.True(t, errors.As(err, &se))
			assert.Contains(t, se.Message, tt.found)
			assert.Equal(t, 1, se.Line)
			assert.Equal(t, 9, se.Column)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
		line    int
		column  int
	}{
		{"empty block", ``, "missing concat declaration", 1, 1},
		{"no const", `let a = "x";`, "missing concat declaration", 1, 13},
		{"unknown statement", `var a = "x";`, "expected `let` or `const` statement", 1, 1},
		{"missing semicolon", "let a = \"x\"\nlet b = \"y\";", "expected ';' after binding value", 2, 1},
		{"missing semicolon at end", `let a = "x"`, "expected ';' after binding value", 1, 12},
		{"missing value", `let a = ;`, `missing value for binding "a"`, 1, 9},
		{"missing name", `let = "x";`, "binding name after `let`", 1, 5},
		{"mut", `let mut a = "x";`, "mutable bindings", 1, 5},
		{"no type", `const A = concat();`, "':'", 1, 9},
		{"bad type", `const A: i32 = concat();`, "output type must be a string type", 1, 10},
		{"bad ref type", `const A: &i32 = concat();`, `expected str after "&"`, 1, 11},
		{"unknown function", `const A: &str = join();`, `unknown function "join"`, 1, 17},
		{"literal instead of call", `const A: &str = "x";`, "const value must be a concat(...) call", 1, 17},
		{"literal argument", `const A: &str = concat("x");`, "concat arguments must be binding names", 1, 24},
		{"missing comma", `let a = "x"; const A: &str = concat(a a);`, "expected ',' or ')'", 1, 39},
		{"unterminated args", `let a = "x"; const A: &str = concat(a,`, "unterminated concat argument list", 1, 39},
		{"no const semicolon", `const A: &str = concat()`, "after the concat declaration", 1, 25},
		{"statement after const", `const A: &str = concat(); let b = "y";`, "must be the last statement", 1, 27},
		{"keyword output", `const func: &str = concat();`, "Go keyword", 1, 7},
		{"blank output", `const _: &str = concat();`, `constant name "_" cannot be declared`, 1, 7},
		{"init output", `const init: &str = concat();`, `constant name "init" cannot be declared`, 1, 7},
		{"lexer error", `let a = "x`, "unterminated string literal", 1, 9},
		{"invalid escape", `let a = "\q"; const A: &str = concat(a);`, "invalid string literal", 1, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, serrors.ErrMalformedDeclaration), err.Error())

			var se *serrors.SplicerError
			require.True(t, errors.As(err, &se))
			assert.Contains(t, se.Message, tt.message)
			assert.Equal(t, tt.line, se.Line, "line")
			assert.Equal(t, tt.column, se.Column, "column")
		})
	}
}
