package splice

import (
	"errors"
	"testing"

	serrors "github.com/conneroisu/splicer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandScenarios(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		value string
		decl  string
	}{
		{
			name: "first second",
			src: `let first = "First";
let second = "Second";
const GREETING: &str = concat(first, second);`,
			value: "FirstSecond",
			decl:  `const GREETING string = "FirstSecond"`,
		},
		{
			name: "request order",
			src: `let x = "a";
let y = "b";
let z = "c";
const OUT: &str = concat(z, x, y);`,
			value: "cab",
			decl:  `const OUT string = "cab"`,
		},
		{
			name:  "zero references",
			src:   `const EMPTY: &str = concat();`,
			value: "",
			decl:  `const EMPTY string = ""`,
		},
		{
			name:  "identity",
			src:   `let only = "  Keep As Is\t"; const ONLY: &str = concat(only);`,
			value: "  Keep As Is\t",
			decl:  `const ONLY string = "  Keep As Is\t"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Expand(tt.src, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.value, res.Value.Value)
			assert.Equal(t, tt.decl, res.Declaration)
			assert.NotNil(t, res.Block)
		})
	}
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		opts   Options
		target error
	}{
		{"malformed", `let a "x";`, Options{}, serrors.ErrMalformedDeclaration},
		{"unresolved", `let a = "x"; const A: &str = concat(a, b);`, Options{}, serrors.ErrUnresolvedReference},
		{"non literal", `let a = some_fn(); const A: &str = concat(a);`, Options{}, serrors.ErrNonLiteralValue},
		{"numeric", `let n = 7; const A: &str = concat(n);`, Options{}, serrors.ErrNonLiteralValue},
		{"duplicate", `let a = "x"; let a = "y"; const A: &str = concat(a);`, Options{}, serrors.ErrDuplicateBinding},
		{
			"duplicate explicit error policy",
			`let a = "x"; let a = "y"; const A: &str = concat(a);`,
			Options{Duplicates: DuplicateError},
			serrors.ErrDuplicateBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Expand(tt.src, tt.opts)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.target), err.Error())
			assert.True(t, serrors.IsExpansionError(err))
		})
	}
}

func TestExpandDuplicatePolicies(t *testing.T) {
	src := `let a = "x"; let a = "y"; const A: &str = concat(a, a);`

	res, err := Expand(src, Options{Duplicates: DuplicateFirst})
	require.NoError(t, err)
	assert.Equal(t, "xx", res.Value.Value)

	res, err = Expand(src, Options{Duplicates: DuplicateLast})
	require.NoError(t, err)
	assert.Equal(t, "yy", res.Value.Value)
}

func TestExpandIsolation(t *testing.T) {
	// Bindings from one expansion are not visible to the next.
	_, err := Expand(`let shared = "x"; const A: &str = concat(shared);`, Options{})
	require.NoError(t, err)

	_, err = Expand(`const B: &str = concat(shared);`, Options{})
	assert.True(t, errors.Is(err, serrors.ErrUnresolvedReference))
}
