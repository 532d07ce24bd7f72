package splice

import (
	"strings"

	serrors "github.com/conneroisu/splicer/internal/errors"
)

// Concatenate resolves every input of req against reg and joins the values
// in request order. No separator is inserted and values are not altered. The
// first unresolved name aborts with an UnresolvedReferenceError.
func Concatenate(reg *LiteralRegistry, req ConcatenationRequest) (ConcatenationResult, error) {
	values := make([]string, 0, len(req.Inputs))
	size := 0

	for _, ref := range req.Inputs {
		b, ok := reg.Lookup(ref.Name)
		if !ok {
			return ConcatenationResult{}, serrors.NewUnresolvedReferenceError(ref.Name).
				WithLocation("", ref.Pos.Line, ref.Pos.Column).
				WithSuggestion(serrors.DidYouMean(ref.Name, reg.Names()))
		}
		values = append(values, b.Value)
		size += len(b.Value)
	}

	var sb strings.Builder
	sb.Grow(size)
	for _, v := range values {
		sb.WriteString(v)
	}

	return ConcatenationResult{Output: req.Output, Value: sb.String()}, nil
}
