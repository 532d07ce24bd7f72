//go:build property

package splice

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestExpandProperties round-trips generated block sources through the full
// pipeline.
func TestExpandProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("expansion equals ordered concatenation", prop.ForAll(
		func(values []string, picks []int) bool {
			var src strings.Builder
			for i, v := range values {
				fmt.Fprintf(&src, "let v%d = %s;\n", i, strconv.Quote(v))
			}

			var want strings.Builder
			args := []string{}
			if len(values) > 0 {
				for _, p := range picks {
					i := p % len(values)
					args = append(args, fmt.Sprintf("v%d", i))
					want.WriteString(values[i])
				}
			}
			fmt.Fprintf(&src, "const OUT: &str = concat(%s);\n", strings.Join(args, ", "))

			res, err := Expand(src.String(), Options{})
			if err != nil {
				t.Logf("source:\n%s\nerror: %v", src.String(), err)
				return false
			}
			return res.Value.Value == want.String() &&
				res.Declaration == "const OUT string = "+strconv.Quote(want.String())
		},
		gen.SliceOfN(8, gen.AnyString()),
		gen.SliceOf(gen.IntRange(0, 64)),
	))

	properties.Property("numeric bindings are rejected", prop.ForAll(
		func(n int64) bool {
			src := fmt.Sprintf("let n = %d; const OUT: &str = concat(n);", n)
			_, err := Expand(src, Options{})
			return err != nil
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
