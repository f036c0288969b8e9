package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/kindredgraph/kindred/graph"
)

// Narrative context tags attached to mentions based on the sentence they
// appear in.
const (
	ContextSurvived = "survived_by"
	ContextPreceded = "preceded_by"
)

// Mention is one raw relationship mention located in the text. Orientation
// is relative to the obituary subject: a KindParent mention names the
// subject's parent, a KindChild mention names the subject's child.
type Mention struct {
	Kind graph.Kind

	// Role is the parent slot in play: the named parent's own slot on a
	// parent mention, or the subject's slot on a child mention when the
	// possessive pronoun decides it.
	Role string

	Name string // raw name text, still to be normalized

	// SpouseName is the first name found in an inline parenthetical next to
	// a child, sibling, or niece entry: "Tom (Ann) Smith".
	SpouseName string

	Maiden       string
	Context      string
	SelfReported bool

	// CoupleID groups the father and mother captured by one parent-couple
	// match, so the pair can also be linked as spouses.
	CoupleID int

	// PersonOnly marks names from preceded-in-death lists that carry no
	// relationship claim of their own.
	PersonOnly bool
}

var (
	reContextPreceded = regexp.MustCompile(`(?i)preceded in death|reunited with|the late`)
	reContextSurvived = regexp.MustCompile(`(?i)survived by`)

	// reListSep splits enumeration text into entries.
	reListSep = regexp.MustCompile(`,\s*|\s+(?i:and)\s+|\s*&\s*`)

	// reInlineSpouse matches "First [M.] (Spouse) rest" entries.
	reInlineSpouse = regexp.MustCompile(`^(` + short + `) \(([^)]+)\)( .*)?$`)

	// reEntryNoise strips leading pronouns and late-markers from list entries.
	reEntryNoise = regexp.MustCompile(`^(?i:his|her|their|the late|late)\s+`)

	reNee = regexp.MustCompile(`^(?i)n[ée]e\b`)

	// reSuffixToken matches a bare generational suffix left over after list
	// splitting.
	reSuffixToken = regexp.MustCompile(`^(?i:Jr|Sr|II|III|IV|V|VI|VII|VIII|IX|X)\.?$`)
)

// Matcher runs the ordered pattern tables over obituary text.
type Matcher struct {
	cats   []compiledCategory
	couple int
}

// NewMatcher compiles the tables into a matcher.
func NewMatcher(t Tables) (*Matcher, error) {
	cats, err := t.compile()
	if err != nil {
		return nil, err
	}
	return &Matcher{cats: cats}, nil
}

type span struct{ start, end int }

func overlaps(a, b span) bool { return a.start < b.end && b.start < a.end }

func claimed(claims []span, s span) bool {
	for _, c := range claims {
		if overlaps(c, s) {
			return true
		}
	}
	return false
}

// Extract runs every category over every sentence in order. Within a
// sentence, a name span claimed by an earlier category is skipped by later
// ones, so "his father John Smith and mother Jane" is not re-read as a
// bare father match after the couple pattern consumed it.
func (m *Matcher) Extract(text string) []Mention {
	var mentions []Mention
	for _, sentence := range SplitSentences(text) {
		mentions = append(mentions, m.extractSentence(sentence)...)
	}
	slog.Debug("extract: matched mentions", "count", len(mentions))
	return mentions
}

func (m *Matcher) extractSentence(sentence string) []Mention {
	context := ""
	switch {
	case reContextPreceded.MatchString(sentence):
		context = ContextPreceded
	case reContextSurvived.MatchString(sentence):
		context = ContextSurvived
	}

	var mentions []Mention
	var claims []span
	for _, cat := range m.cats {
		for _, re := range cat.patterns {
			for _, idx := range re.FindAllStringSubmatchIndex(sentence, -1) {
				mentions = append(mentions, m.matchMentions(cat, re, sentence, idx, context, &claims)...)
			}
		}
	}
	return mentions
}

// group returns a named capture's text and absolute span, or ok=false when
// the pattern has no such group or it did not participate.
func group(re *regexp.Regexp, text string, idx []int, name string) (string, span, bool) {
	n := re.SubexpIndex(name)
	if n < 0 || idx[2*n] < 0 {
		return "", span{}, false
	}
	s := span{idx[2*n], idx[2*n+1]}
	return text[s.start:s.end], s, true
}

func (m *Matcher) matchMentions(cat compiledCategory, re *regexp.Regexp, sentence string, idx []int, context string, claims *[]span) []Mention {
	maiden, _, _ := group(re, sentence, idx, "maiden")

	switch cat.kind {
	case CatParentCouple:
		father, fs, okF := group(re, sentence, idx, "father")
		mother, ms, okM := group(re, sentence, idx, "mother")
		if !okF || !okM || claimed(*claims, fs) || claimed(*claims, ms) {
			return nil
		}
		*claims = append(*claims, fs, ms)
		m.couple++
		return []Mention{
			{Kind: graph.KindParent, Role: "father", Name: father, Context: context, CoupleID: m.couple},
			{Kind: graph.KindParent, Role: "mother", Name: mother, Maiden: maiden, Context: context, CoupleID: m.couple},
		}

	case CatFather, CatMother:
		name, s, ok := group(re, sentence, idx, "name")
		if !ok || claimed(*claims, s) {
			return nil
		}
		*claims = append(*claims, s)
		role := "father"
		if cat.kind == CatMother {
			role = "mother"
		}
		return []Mention{{Kind: graph.KindParent, Role: role, Name: name, Maiden: maiden, Context: context}}

	case CatSpouse, CatCompanion:
		name, s, ok := group(re, sentence, idx, "name")
		if !ok || claimed(*claims, s) {
			return nil
		}
		*claims = append(*claims, s)
		kind := graph.KindSpouse
		if cat.kind == CatCompanion {
			kind = graph.KindCompanion
		}
		return []Mention{{Kind: kind, Name: name, Maiden: maiden, Context: context, SelfReported: cat.selfReported}}

	default:
		list, s, ok := group(re, sentence, idx, "list")
		if !ok || len(strings.TrimSpace(list)) == 0 {
			return nil
		}
		pronoun, _, _ := group(re, sentence, idx, "pron")
		return m.listMentions(cat, list, s.start, pronoun, maiden, context, claims)
	}
}

// listMentions splits an enumeration capture into entries and emits one
// mention per unclaimed entry. The pronoun that introduced a child list tells
// which parent slot the subject fills: "her children" makes the subject the
// mother.
func (m *Matcher) listMentions(cat compiledCategory, list string, base int, pronoun, maiden, context string, claims *[]span) []Mention {
	var mentions []Mention
	for _, seg := range splitList(list, base) {
		if claimed(*claims, seg.span) {
			continue
		}
		entry := reEntryNoise.ReplaceAllString(seg.text, "")
		name, spouse := splitInlineSpouse(entry)
		if name == "" {
			continue
		}
		*claims = append(*claims, seg.span)

		mention := Mention{Name: name, SpouseName: spouse, Maiden: maiden, Context: context, SelfReported: cat.selfReported}
		switch cat.kind {
		case CatParentList:
			mention.Kind = graph.KindParent
		case CatChild, CatChildList:
			mention.Kind = graph.KindChild
			mention.Role = roleFromPronoun(pronoun)
		case CatSibling, CatSiblingList:
			mention.Kind = graph.KindSibling
		case CatNieceNephew:
			mention.Kind = graph.KindNieceNephew
		case CatGreatNieceNephew:
			mention.Kind = graph.KindGreatNieceNephew
		case CatPreceded:
			mention.PersonOnly = true
			mention.Context = ContextPreceded
		default:
			slog.Warn("extract: unknown pattern category", "kind", cat.kind)
			continue
		}
		mentions = append(mentions, mention)
	}
	return mentions
}

// roleFromPronoun maps a gendered possessive onto the parent slot the
// subject occupies; "their" stays undecided.
func roleFromPronoun(pronoun string) string {
	switch strings.ToLower(pronoun) {
	case "his":
		return "father"
	case "her":
		return "mother"
	}
	return ""
}

type segment struct {
	text string
	span span
}

// splitList cuts enumeration text at separators, keeping absolute spans so
// entries can participate in claim checks.
func splitList(list string, base int) []segment {
	var segs []segment
	start := 0
	cut := func(end int) {
		raw := list[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := strings.Index(raw, trimmed)
			segs = append(segs, segment{
				text: trimmed,
				span: span{base + start + lead, base + start + lead + len(trimmed)},
			})
		}
	}
	for _, sep := range reListSep.FindAllStringIndex(list, -1) {
		cut(sep[0])
		start = sep[1]
	}
	cut(len(list))

	// The comma rule splits generational suffixes off their name
	// ("Robert Paradowski, Jr."); fold them back into the previous entry.
	merged := segs[:0]
	for _, s := range segs {
		if len(merged) > 0 && reSuffixToken.MatchString(s.text) {
			prev := &merged[len(merged)-1]
			prev.text = list[prev.span.start-base : s.span.end-base]
			prev.span.end = s.span.end
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// splitInlineSpouse pulls the inline spouse first name out of an entry like
// "Tom (Ann) Smith". A parenthetical carrying a maiden-name marker is left
// in place for the normalizer.
func splitInlineSpouse(entry string) (name, spouse string) {
	m := reInlineSpouse.FindStringSubmatch(entry)
	if m == nil {
		return entry, ""
	}
	if reNee.MatchString(m[2]) {
		return entry, ""
	}
	name = m[1]
	if m[3] != "" {
		name += m[3]
	}
	return name, strings.TrimSpace(m[2])
}
