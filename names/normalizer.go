package names

import (
	"regexp"
	"strings"
)

// Parsed holds the components of a normalized name mention.
type Parsed struct {
	First    string
	Last     string
	Maiden   string
	Nickname string
	Suffix   string
	Raw      string // the original span, before cleaning
}

// ---------------------------------------------------------------------------
// Cleaning patterns. Ordered: quoted nicknames first, then parentheticals,
// then honorifics, then trailing suffixes.
// ---------------------------------------------------------------------------
var (
	reQuotedNickname = regexp.MustCompile(`"([^"]+)"`)
	reParenthetical  = regexp.MustCompile(`\(([^)]*)\)`)
	reMaidenMarker   = regexp.MustCompile(`(?i)^(?:n[ée]e|formerly|maiden name)[.:]?\s+(.+)$`)
	reHonorific      = regexp.MustCompile(`^(?:Mr\.|Mrs\.|Ms\.|Dr\.|Rev\.|Fr\.)\s+`)
	reSuffix         = regexp.MustCompile(`,?\s+(Jr\.?|Sr\.?|II|III|IV|V|VI|VII|VIII|IX|X)\.?$`)
	reConjunction    = regexp.MustCompile(`(?i)\b(and|or|but|with)\b`)
	reTrailingConj   = regexp.MustCompile(`(?i)[\s,]+(?:and|or|but|with|&)\s*$`)
)

// Normalizer cleans a raw name span into Parsed components and applies
// frequency-based surname correction against the source narrative.
type Normalizer struct {
	weighting *Weighting
}

// NewNormalizer returns a Normalizer. The weighting may be nil, in which case
// surname correction is skipped.
func NewNormalizer(w *Weighting) *Normalizer {
	return &Normalizer{weighting: w}
}

// Normalize cleans raw into its components. sourceText is the narrative the
// span came from (correction guard), fallbackLast is the current subject's
// last name used when only a single token remains. Returns false when the
// span does not yield a usable (first, last) pair; the caller drops the
// mention without error.
func (n *Normalizer) Normalize(raw, sourceText, fallbackLast string) (Parsed, bool) {
	p := Parsed{Raw: raw}
	name := strings.TrimSpace(raw)
	if name == "" {
		return p, false
	}

	name = reTrailingConj.ReplaceAllString(name, "")

	// Quoted nickname: Robert "Bob" Smith.
	if m := reQuotedNickname.FindStringSubmatch(name); m != nil {
		p.Nickname = strings.TrimSpace(m[1])
		name = strings.TrimSpace(reQuotedNickname.ReplaceAllString(name, " "))
	}

	// Parenthetical: maiden name when it carries a recognized marker,
	// otherwise a nickname.
	if m := reParenthetical.FindStringSubmatch(name); m != nil {
		inner := strings.TrimSpace(m[1])
		if mm := reMaidenMarker.FindStringSubmatch(inner); mm != nil {
			p.Maiden = strings.TrimSpace(mm[1])
		} else if p.Nickname == "" {
			p.Nickname = inner
		}
		name = strings.TrimSpace(reParenthetical.ReplaceAllString(name, " "))
	}

	name = reHonorific.ReplaceAllString(name, "")

	if m := reSuffix.FindStringSubmatch(name); m != nil {
		p.Suffix = strings.TrimSuffix(m[1], ".")
		name = strings.TrimSpace(reSuffix.ReplaceAllString(name, ""))
	}

	name = strings.Join(strings.Fields(name), " ")
	if name == "" || reConjunction.MatchString(name) {
		return p, false
	}

	tokens := strings.Fields(name)
	p.First = strings.Trim(tokens[0], ".,")
	rest := dropInitials(tokens[1:])
	if len(rest) > 0 {
		p.Last = strings.Trim(strings.Join(rest, " "), ".,")
	} else {
		if fallbackLast == "" {
			return p, false
		}
		p.Last = fallbackLast
	}
	if len(p.First) < 2 || p.Last == "" {
		return p, false
	}
	// Free-text list entries can lead with role words ("uncle Fred"); a
	// first token that is not capitalized is not a name.
	if p.First[0] < 'A' || p.First[0] > 'Z' {
		return p, false
	}

	if n.weighting != nil {
		p.Last = n.weighting.CorrectLastName(p.Last, sourceText)
	}
	return p, true
}

// reInitial matches a middle initial token like "A." or "A".
var reInitial = regexp.MustCompile(`^[A-Z]\.?$`)

// dropInitials removes middle-initial tokens so "John A. Smith" and
// "John Smith" resolve to the same identity.
func dropInitials(tokens []string) []string {
	out := tokens[:0]
	for i, t := range tokens {
		if reInitial.MatchString(t) && i < len(tokens)-1 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// reSuffixFold is the case-insensitive form of reSuffix, for comparing
// lowercased registry keys.
var reSuffixFold = regexp.MustCompile(`(?i),?\s+(Jr\.?|Sr\.?|II|III|IV|V|VI|VII|VIII|IX|X)\.?$`)

// StripSuffixTokens removes trailing generational suffix tokens from a
// surname so that "Paradowski Jr." and "Paradowski" compare equal during
// variant matching. Case-insensitive, since registry keys are lowercased.
func StripSuffixTokens(last string) string {
	for {
		stripped := reSuffixFold.ReplaceAllString(last, "")
		stripped = strings.TrimSpace(strings.TrimSuffix(stripped, ","))
		if stripped == last {
			return last
		}
		last = stripped
	}
}

// SuffixWeight counts generational suffix qualifiers carried by a parsed
// name. Used to decide which of two variant records keeps the canonical
// spelling.
func SuffixWeight(p Parsed) int {
	w := 0
	if p.Suffix != "" {
		w++
	}
	if reSuffix.MatchString(p.Last) {
		w++
	}
	return w
}
