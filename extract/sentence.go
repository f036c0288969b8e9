// Package extract turns obituary prose into raw relationship mentions using
// ordered regular-expression tables.
package extract

import (
	"regexp"
	"strings"
)

// sentenceBoundary finds a terminator followed by whitespace and an
// upper-case opener. RE2 has no lookbehind, so the boundary is located via
// submatch indexes and the text cut just after the terminator.
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+([A-Z"(])`)

// abbreviations that end with a period mid-sentence and must not split.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "rev": true,
	"fr": true, "jr": true, "sr": true, "st": true,
}

// SplitSentences splits obituary text into sentences. Terminators following
// a known abbreviation are kept inside the sentence.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for _, m := range sentenceBoundary.FindAllStringSubmatchIndex(text, -1) {
		end := m[3] // just after the terminator
		if end <= start {
			continue
		}
		if isAbbreviation(text[start:m[2]]) {
			continue
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = m[4] // the upper-case opener begins the next sentence
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// isAbbreviation reports whether the text before the terminator ends in an
// abbreviation token.
func isAbbreviation(before string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.TrimRight(fields[len(fields)-1], "."))
	return abbreviations[last]
}
