package splice

import (
	serrors "github.com/conneroisu/splicer/internal/errors"
)

// LiteralRegistry holds the bindings of one block. It is built and discarded
// within a single expansion.
type LiteralRegistry struct {
	policy   DuplicatePolicy
	bindings map[string]Binding
	order    []string
}

// NewLiteralRegistry creates an empty registry applying policy to repeated
// names.
func NewLiteralRegistry(policy DuplicatePolicy) *LiteralRegistry {
	if policy == "" {
		policy = DuplicateError
	}
	return &LiteralRegistry{
		policy:   policy,
		bindings: make(map[string]Binding),
	}
}

// Declare records b. Under DuplicateError a second declaration of the same
// name fails.
func (r *LiteralRegistry) Declare(b Binding) error {
	if _, exists := r.bindings[b.Name]; exists {
		switch r.policy {
		case DuplicateFirst:
			return nil
		case DuplicateLast:
			r.bindings[b.Name] = b
			return nil
		default:
			return serrors.NewDuplicateBindingError(b.Name).
				WithLocation("", b.Pos.Line, b.Pos.Column)
		}
	}

	r.bindings[b.Name] = b
	r.order = append(r.order, b.Name)
	return nil
}

// Lookup returns the binding for name.
func (r *LiteralRegistry) Lookup(name string) (Binding, bool) {
	b, ok := r.bindings[name]
	return b, ok
}

// Names returns bound names in declaration order.
func (r *LiteralRegistry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Bindings returns the effective bindings in declaration order.
func (r *LiteralRegistry) Bindings() []Binding {
	out := make([]Binding, len(r.order))
	for i, name := range r.order {
		out[i] = r.bindings[name]
	}
	return out
}

// Len returns the number of distinct names.
func (r *LiteralRegistry) Len() int {
	return len(r.order)
}
