package extract

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Category kinds understood by the matcher. YAML-supplied tables must use
// these values; the matcher decides what each kind means for the graph.
const (
	CatSpouse           = "spouse"
	CatCompanion        = "companion"
	CatParentCouple     = "parent_couple"
	CatFather           = "father"
	CatMother           = "mother"
	CatParentList       = "parent_list"
	CatChild            = "child"
	CatChildList        = "child_list"
	CatSibling          = "sibling"
	CatSiblingList      = "sibling_list"
	CatGreatNieceNephew = "great_niece_nephew"
	CatNieceNephew      = "niece_nephew"
	CatPreceded         = "preceded"
)

// Category is one ordered group of patterns sharing a relationship meaning.
// Earlier categories claim text spans first, so specific patterns must come
// before general ones.
type Category struct {
	Kind         string   `yaml:"kind"`
	SelfReported bool     `yaml:"self_reported,omitempty"`
	Patterns     []string `yaml:"patterns"`
}

// Tables is the full swappable pattern configuration.
type Tables struct {
	Categories []Category `yaml:"categories"`
}

// Building blocks shared by the default patterns. Keyword fragments are
// wrapped in (?i:...) groups; name atoms stay case-sensitive so sentence
// words do not match as names.
const (
	atom    = `[A-Z][a-z]+`
	middle  = `(?: [A-Z](?:\.|[a-z]+)?)?`
	nameSfx = `(?:,? (?:Jr\.?|Sr\.?|II|III|IV|V|VI|VII|VIII|IX|X))?`
	pron    = `(?i:his|her|their)`
	pronCap = `(?P<pron>` + pron + `)`
	neeOpt  = `(?: \((?i:n[ée]e) (?P<maiden>[^)]+)\))?`
)

var (
	short = atom + middle               // First [M.]
	full  = short + ` ` + atom          // First [M.] Last
	loose = atom + `(?: ` + atom + `)?` // First [Last]

	// listBody captures enumeration text. An abbreviation period inside a
	// list ("Jr. and ...") resumes on a lowercase word; a sentence-ending
	// period does not.
	listBody = `[^.;]+(?:\. [a-z][^.;]*)*`
)

// DefaultTables returns the built-in pattern set. The same structure can be
// loaded from YAML to swap the tables without a rebuild.
func DefaultTables() Tables {
	return Tables{Categories: []Category{
		{Kind: CatParentCouple, Patterns: []string{
			pron + ` (?i:parents),? (?P<father>` + loose + `)` + nameSfx + ` and (?P<mother>` + loose + `)` + nameSfx + neeOpt,
			pron + ` (?i:father),? (?P<father>` + loose + `)` + nameSfx + ` and (?i:mother),? (?P<mother>` + loose + `)` + nameSfx + neeOpt,
			pron + ` (?i:mother),? (?P<mother>` + loose + `)` + nameSfx + neeOpt + ` and (?i:father),? (?P<father>` + loose + `)` + nameSfx,
		}},
		{Kind: CatFather, Patterns: []string{
			pron + ` (?i:father),? (?P<name>` + loose + `)` + nameSfx,
		}},
		{Kind: CatMother, Patterns: []string{
			pron + ` (?i:mother),? (?P<name>` + loose + `)` + nameSfx + neeOpt,
		}},
		{Kind: CatParentList, Patterns: []string{
			`(?i:son|daughter) of (?P<list>` + listBody + `)`,
		}},
		{Kind: CatSpouse, SelfReported: true, Patterns: []string{
			`(?i:beloved )?(?i:wife|husband|spouse) (?i:of )?(?P<name>` + full + `)` + nameSfx + neeOpt,
			`(?i:married to|married) (?P<name>` + full + `)` + nameSfx + neeOpt,
			`(?i:wife|husband|spouse),? (?P<name>` + short + `)` + nameSfx + neeOpt,
			`(?i:married to|married) (?P<name>` + short + `)` + nameSfx + neeOpt,
		}},
		{Kind: CatCompanion, SelfReported: true, Patterns: []string{
			`(?i:companion of|partner of|companion|partner),? (?P<name>` + full + `)` + nameSfx + neeOpt,
			`(?P<name>` + full + `)` + nameSfx + `, ` + pron + ` (?i:constant )?(?i:companion|partner)`,
		}},
		{Kind: CatChildList, Patterns: []string{
			pronCap + ` (?i:children|sons|daughters),? (?P<list>` + listBody + `)`,
		}},
		{Kind: CatChild, Patterns: []string{
			pronCap + ` (?i:son|daughter),? (?P<list>` + atom + `(?: \([^)]+\))?(?: ` + atom + `)?` + nameSfx + `)`,
		}},
		{Kind: CatSiblingList, Patterns: []string{
			pron + ` (?i:brothers|sisters|siblings):? (?P<list>` + listBody + `)`,
			`(?i:brothers|sisters|siblings):? (?P<list>` + listBody + `)`,
		}},
		{Kind: CatSibling, Patterns: []string{
			`(?i:brother|sister),? (?P<list>` + atom + `(?: \([^)]+\))?(?: ` + atom + `(?: ` + atom + `)?)?` + nameSfx + `)` + neeOpt,
		}},
		{Kind: CatGreatNieceNephew, Patterns: []string{
			`(?i:great niece|great nephew),? (?P<list>` + atom + `(?: \([^)]+\))?(?: ` + atom + `)?` + nameSfx + `)`,
		}},
		{Kind: CatNieceNephew, Patterns: []string{
			`(?i:niece|nephew),? (?P<list>` + atom + `(?: \([^)]+\))?(?: ` + atom + `)?` + nameSfx + `)`,
		}},
		{Kind: CatPreceded, Patterns: []string{
			`(?i:preceded in death by) ` + pron + `?\s*(?P<list>` + listBody + `)`,
			`(?i:reunited with) ` + pron + `?\s*(?P<list>` + listBody + `)`,
			`(?i:the late) (?P<list>` + loose + `)`,
		}},
	}}
}

// LoadTables reads a pattern table from a YAML file.
func LoadTables(path string) (Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("extract: reading pattern tables: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tables{}, fmt.Errorf("extract: parsing pattern tables: %w", err)
	}
	if len(t.Categories) == 0 {
		return Tables{}, fmt.Errorf("extract: pattern tables %q define no categories", path)
	}
	return t, nil
}

type compiledCategory struct {
	kind         string
	selfReported bool
	patterns     []*regexp.Regexp
}

// compile validates every expression up front so a bad table fails at load,
// not mid-batch.
func (t Tables) compile() ([]compiledCategory, error) {
	out := make([]compiledCategory, 0, len(t.Categories))
	for _, c := range t.Categories {
		cc := compiledCategory{kind: c.Kind, selfReported: c.SelfReported}
		for _, expr := range c.Patterns {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("extract: compiling pattern %q in category %q: %w", expr, c.Kind, err)
			}
			cc.patterns = append(cc.patterns, re)
		}
		out = append(out, cc)
	}
	return out, nil
}
