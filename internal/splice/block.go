// Package splice expands declarative splice blocks into Go string constants.
//
// A block binds names to string literals and ends with a single concat
// declaration:
//
//	let first = "First";
//	let second = "Second";
//	const Greeting: &str = concat(first, second);
//
// Expanding it yields the Go declaration
//
//	const Greeting string = "FirstSecond"
//
// Expansion is a pure, single-pass pipeline: parse, register bindings,
// resolve references, concatenate, emit. Any error aborts the expansion and
// no partial output is produced.
package splice

import (
	"fmt"
	"strings"
)

// Binding associates a name with a string literal inside one block.
type Binding struct {
	Name  string
	Value string
	Pos   Position
}

// Reference is one argument of the concat call.
type Reference struct {
	Name string
	Pos  Position
}

// ConcatenationRequest lists the bindings to join, in order, and the name of
// the constant that receives the result.
type ConcatenationRequest struct {
	Inputs []Reference
	Output string
	// Type is the string type as written in the block, e.g. "&str".
	Type string
	Pos  Position
}

// InputNames returns the referenced binding names in request order.
func (r ConcatenationRequest) InputNames() []string {
	names := make([]string, len(r.Inputs))
	for i, in := range r.Inputs {
		names[i] = in.Name
	}
	return names
}

// ConcatenationResult is the value bound to the output constant.
type ConcatenationResult struct {
	Output string
	Value  string
}

// Block is the parsed form of one declarative block.
type Block struct {
	Bindings []Binding
	Request  ConcatenationRequest
}

// DuplicatePolicy decides what happens when a block binds a name twice.
type DuplicatePolicy string

const (
	// DuplicateError rejects the block.
	DuplicateError DuplicatePolicy = "error"
	// DuplicateFirst keeps the first binding.
	DuplicateFirst DuplicatePolicy = "first"
	// DuplicateLast keeps the last binding.
	DuplicateLast DuplicatePolicy = "last"
)

// ParseDuplicatePolicy converts a flag or config value into a policy. The
// empty string selects DuplicateError.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateError, nil
	case DuplicateError, DuplicateFirst, DuplicateLast:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want error, first or last)", s)
	}
}
