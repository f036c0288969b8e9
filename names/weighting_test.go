package names

import "testing"

func seedWeighting(t *testing.T, factor int, counts map[string]int) *Weighting {
	t.Helper()
	w := NewWeighting(factor)
	for name, n := range counts {
		for i := 0; i < n; i++ {
			w.Observe(name)
		}
	}
	return w
}

func TestObserveAndCount(t *testing.T) {
	w := NewWeighting(0)
	w.Observe("Smith")
	w.Observe("smith")
	w.Observe("  SMITH ")
	w.Observe("")
	if got := w.Count("Smith"); got != 3 {
		t.Errorf("Count(Smith) = %d, want 3 (case-insensitive)", got)
	}
	if got := w.Count("Jones"); got != 0 {
		t.Errorf("Count(Jones) = %d, want 0", got)
	}
}

func TestCorrectLastName_DominantWins(t *testing.T) {
	w := seedWeighting(t, 2, map[string]int{"paradowski": 5, "paradowsky": 1})

	got := w.CorrectLastName("Paradowsky", "survived by his brother")
	if got != "Paradowski" {
		t.Errorf("got %q, want correction to Paradowski", got)
	}
}

func TestCorrectLastName_VerbatimGuard(t *testing.T) {
	w := seedWeighting(t, 2, map[string]int{"paradowski": 5, "paradowsky": 1})

	// The candidate surname appears verbatim in the source text, so it is
	// trusted as written.
	got := w.CorrectLastName("Paradowsky", "his cousin John Paradowsky of Chicago")
	if got != "Paradowsky" {
		t.Errorf("got %q, want Paradowsky kept", got)
	}
}

func TestCorrectLastName_BelowThreshold(t *testing.T) {
	// 4 is not more than 2*2, so no correction.
	w := seedWeighting(t, 2, map[string]int{"paradowski": 4, "paradowsky": 2})

	if got := w.CorrectLastName("Paradowsky", ""); got != "Paradowsky" {
		t.Errorf("got %q, want Paradowsky kept below threshold", got)
	}
}

func TestCorrectLastName_UnknownCandidate(t *testing.T) {
	w := seedWeighting(t, 2, map[string]int{"paradowski": 5})

	// Never-observed surnames are left alone regardless of dominance.
	if got := w.CorrectLastName("Nowak", ""); got != "Nowak" {
		t.Errorf("got %q, want Nowak kept", got)
	}
}

func TestCorrectLastName_ConfigurableFactor(t *testing.T) {
	// With factor 3, 5 > 1*3 still corrects but 5 > 2*3 does not.
	w := seedWeighting(t, 3, map[string]int{"paradowski": 5, "paradowsky": 2})
	if got := w.CorrectLastName("Paradowsky", ""); got != "Paradowsky" {
		t.Errorf("factor 3: got %q, want no correction at count 2", got)
	}

	w = seedWeighting(t, 3, map[string]int{"paradowski": 5, "paradowsky": 1})
	if got := w.CorrectLastName("Paradowsky", ""); got != "Paradowski" {
		t.Errorf("factor 3: got %q, want correction at count 1", got)
	}
}
