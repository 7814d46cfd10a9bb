package helpers

import (
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"
)

func DedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range in {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// returns a fast, compact hash of a string
//
// current implementation uses murmur3, default seed, and hex encoding
func HashOfString(s string) string {
	val := murmur3.Sum64([]byte(s))
	return fmt.Sprintf("%016x", val)
}

// Drops blank fragments and fragments which are duplicates after whitespace cleanup. Order of first occurrence is kept, and kept fragments are returned unmodified.
//
// Recognizers frequently return the same text for overlapping regions or successive video frames; dedupe is keyed on a hash of the cleaned text.
func DedupeFragments(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, frag := range in {
		clean := strings.Join(strings.Fields(frag), " ")
		if clean == "" {
			continue
		}
		h := HashOfString(clean)
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, frag)
	}
	return out
}
