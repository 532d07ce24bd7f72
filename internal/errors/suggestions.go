package errors

import (
	"fmt"
	"strings"
)

// maxSuggestionDistance bounds how different a candidate may be before it is
// no longer offered as a "did you mean".
const maxSuggestionDistance = 2

// Suggest returns the candidate closest to name by edit distance, or "" when
// none is close enough. Ties go to the earliest candidate.
func Suggest(name string, candidates []string) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1

	for _, candidate := range candidates {
		if candidate == name {
			continue
		}

		d := levenshtein(strings.ToLower(name), strings.ToLower(candidate))
		if d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}

	return best
}

// DidYouMean formats a suggestion for name, or returns "" if nothing fits.
func DidYouMean(name string, candidates []string) string {
	if s := Suggest(name, candidates); s != "" {
		return fmt.Sprintf("did you mean %q?", s)
	}

	return ""
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
