//go:build property

package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestErrorCollectorProperties validates error collection and ordering properties
func TestErrorCollectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("concurrent error addition loses nothing", prop.ForAll(
		func(goroutineCount int, errorsPerGoroutine int) bool {
			collector := NewErrorCollector()

			var wg sync.WaitGroup
			for g := 0; g < goroutineCount; g++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for e := 0; e < errorsPerGoroutine; e++ {
						collector.Add(NewUnresolvedReferenceError(fmt.Sprintf("n%d", e)).
							WithLocation(fmt.Sprintf("file_%d.go", id), e+1, 1))
					}
				}(g)
			}
			wg.Wait()

			return collector.Count() == goroutineCount*errorsPerGoroutine &&
				len(collector.Diagnostics()) == goroutineCount*errorsPerGoroutine
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 50),
	))

	properties.Property("diagnostics are ordered by file, line and column", prop.ForAll(
		func(lines []int) bool {
			collector := NewErrorCollector()
			for i, line := range lines {
				file := fmt.Sprintf("f%d.go", i%3)
				collector.Add(NewMalformedDeclarationError("bad").WithLocation(file, line, i%5+1))
			}

			diags := collector.Diagnostics()
			for i := 1; i < len(diags); i++ {
				a, b := diags[i-1], diags[i]
				if a.FilePath > b.FilePath {
					return false
				}
				if a.FilePath == b.FilePath && a.Line > b.Line {
					return false
				}
				if a.FilePath == b.FilePath && a.Line == b.Line && a.Column > b.Column {
					return false
				}
			}
			return len(diags) == len(lines)
		},
		gen.SliceOf(gen.IntRange(1, 500)),
	))

	properties.Property("Err is nil exactly when nothing was collected", prop.ForAll(
		func(n int) bool {
			collector := NewErrorCollector()
			for i := 0; i < n; i++ {
				collector.Add(NewDuplicateBindingError(fmt.Sprintf("v%d", i)))
			}
			return (collector.Err() == nil) == (n == 0) && collector.HasErrors() == (n > 0)
		},
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}

// TestSuggestProperties validates edit-distance suggestions
func TestSuggestProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("levenshtein is symmetric", prop.ForAll(
		func(a, b string) bool {
			return levenshtein(a, b) == levenshtein(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("levenshtein is zero only for equal strings", prop.ForAll(
		func(a, b string) bool {
			return (levenshtein(a, b) == 0) == (a == b)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("one dropped letter is always suggested", prop.ForAll(
		func(name string) bool {
			if len(name) < 2 {
				return true
			}
			typo := name[1:]
			return Suggest(typo, []string{name}) == name
		},
		gen.AlphaString(),
	))

	properties.Property("a name is never suggested for itself", prop.ForAll(
		func(name string) bool {
			return Suggest(name, []string{name}) == ""
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
