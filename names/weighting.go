// Package names handles parsing and normalization of name mentions pulled
// out of obituary narratives: honorifics, nicknames, maiden-name markers,
// generational suffixes, and frequency-based surname correction.
package names

import (
	"log/slog"
	"strings"
)

// defaultFrequencyFactor is the multiplier the dominant surname must exceed
// before a candidate surname is corrected. Inherited behaviour; tune via
// NewWeighting rather than editing here.
const defaultFrequencyFactor = 2

// Weighting tracks last-name frequency across the known population. It is
// updated incrementally as persons are created so correction decisions always
// reflect the current population rather than a snapshot.
type Weighting struct {
	counts map[string]int
	factor int
}

// NewWeighting returns an empty frequency table. A factor <= 0 falls back to
// the default of 2.
func NewWeighting(factor int) *Weighting {
	if factor <= 0 {
		factor = defaultFrequencyFactor
	}
	return &Weighting{
		counts: make(map[string]int),
		factor: factor,
	}
}

// Observe records one occurrence of a last name. Case-insensitive.
func (w *Weighting) Observe(lastName string) {
	lastName = strings.ToLower(strings.TrimSpace(lastName))
	if lastName == "" {
		return
	}
	w.counts[lastName]++
}

// Count returns the number of observed occurrences for a last name.
func (w *Weighting) Count(lastName string) int {
	return w.counts[strings.ToLower(strings.TrimSpace(lastName))]
}

// mostFrequent returns the dominant last name and its count.
func (w *Weighting) mostFrequent() (string, int) {
	best, bestCount := "", 0
	for name, count := range w.counts {
		if count > bestCount {
			best, bestCount = name, count
		}
	}
	return best, bestCount
}

// CorrectLastName fixes likely scanning slips in a surname using population
// frequency. The correction is conservative and asymmetric: it never fires
// when the original surname appears verbatim in the source text, and only
// replaces when the dominant surname occurs more than factor times as often
// as the candidate's own count.
func (w *Weighting) CorrectLastName(lastName, sourceText string) string {
	if sourceText != "" && strings.Contains(strings.ToLower(sourceText), strings.ToLower(lastName)) {
		return lastName
	}
	candidate := strings.ToLower(lastName)
	count, known := w.counts[candidate]
	if !known {
		return lastName
	}
	best, bestCount := w.mostFrequent()
	if best == candidate {
		return lastName
	}
	if bestCount > count*w.factor {
		slog.Info("names: corrected last name by frequency",
			"from", lastName, "to", best, "candidate_count", count, "dominant_count", bestCount)
		return capitalize(best)
	}
	return lastName
}

// capitalize upper-cases the first letter of each space-separated token.
// Frequency keys are stored lowercase; corrected surnames go back into
// person records in display form.
func capitalize(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
