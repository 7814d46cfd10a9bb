// Case-insensitive text matching for rule patterns against recognized text.
package keyword

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizes text for case-insensitive comparison: NFC normalization followed by Unicode case folding.
//
// Folding is done with a fresh Caser each call; a Caser holds state and must not be shared between goroutines.
func Fold(text string) string {
	folder := transform.Chain(norm.NFC, cases.Fold())
	out, _, err := transform.String(folder, text)
	if err != nil {
		slog.Warn("unicode folding error", "err", err)
		return strings.ToLower(text)
	}
	return out
}

// Reports whether needle occurs in haystack, ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// Returns the index of the first pattern found in folded text, or -1. Patterns must already be folded.
func FirstMatch(folded string, patterns []string) int {
	for i, p := range patterns {
		if strings.Contains(folded, p) {
			return i
		}
	}
	return -1
}

// Folds every entry of a list.
func FoldAll(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = Fold(v)
	}
	return out
}
