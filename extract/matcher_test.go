package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kindredgraph/kindred/graph"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultTables())
	if err != nil {
		t.Fatalf("compiling default tables: %v", err)
	}
	return m
}

func findMention(mentions []Mention, kind graph.Kind, name string) *Mention {
	for i := range mentions {
		if mentions[i].Kind == kind && mentions[i].Name == name {
			return &mentions[i]
		}
	}
	return nil
}

func TestExtract_SpouseAndSibling(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("He is survived by his beloved wife Mary Smith and his brother James Smith.")

	sp := findMention(mentions, graph.KindSpouse, "Mary Smith")
	if sp == nil {
		t.Fatalf("no spouse mention for Mary Smith in %+v", mentions)
	}
	if !sp.SelfReported {
		t.Error("spouse stated in the subject's narrative should be self-reported")
	}
	if sp.Context != ContextSurvived {
		t.Errorf("spouse context = %q, want %q", sp.Context, ContextSurvived)
	}
	if findMention(mentions, graph.KindSibling, "James Smith") == nil {
		t.Errorf("no sibling mention for James Smith in %+v", mentions)
	}
}

func TestExtract_ParentCouple(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("He was preceded in death by his parents Stanley and Agnes Kowalski.")

	father := findMention(mentions, graph.KindParent, "Stanley")
	mother := findMention(mentions, graph.KindParent, "Agnes Kowalski")
	if father == nil || mother == nil {
		t.Fatalf("missing parent mentions in %+v", mentions)
	}
	if father.Role != "father" || mother.Role != "mother" {
		t.Errorf("roles = (%q, %q), want (father, mother)", father.Role, mother.Role)
	}
	if father.CoupleID == 0 || father.CoupleID != mother.CoupleID {
		t.Error("couple capture should share a couple id")
	}
	if father.Context != ContextPreceded {
		t.Errorf("context = %q, want %q", father.Context, ContextPreceded)
	}
}

func TestExtract_ChildList(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("Survived by his children Mary and John Brown.")

	if findMention(mentions, graph.KindChild, "Mary") == nil {
		t.Errorf("no child mention for Mary in %+v", mentions)
	}
	if findMention(mentions, graph.KindChild, "John Brown") == nil {
		t.Errorf("no child mention for John Brown in %+v", mentions)
	}
}

func TestExtract_ChildListPronounRole(t *testing.T) {
	m := newTestMatcher(t)

	his := m.Extract("Survived by his children Mary and John Brown.")
	if got := findMention(his, graph.KindChild, "Mary"); got == nil || got.Role != "father" {
		t.Errorf("\"his children\" should mark the subject as father, got %+v", got)
	}

	her := m.Extract("Survived by her daughters Ann and Sue Walsh.")
	if got := findMention(her, graph.KindChild, "Ann"); got == nil || got.Role != "mother" {
		t.Errorf("\"her daughters\" should mark the subject as mother, got %+v", got)
	}

	their := m.Extract("Survived by their children Tim and Pat Walsh.")
	if got := findMention(their, graph.KindChild, "Tim"); got == nil || got.Role != "" {
		t.Errorf("\"their children\" decides no slot, got %+v", got)
	}
}

func TestExtract_SuffixStaysWithListEntry(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("She is survived by her children, Robert Paradowski, Jr. and Susan Kowalski.")

	if findMention(mentions, graph.KindChild, "Robert Paradowski, Jr.") == nil {
		t.Fatalf("suffixed entry was split, got %+v", mentions)
	}
	if findMention(mentions, graph.KindChild, "Susan Kowalski") == nil {
		t.Errorf("missing second child mention in %+v", mentions)
	}
	for _, mn := range mentions {
		if mn.Name == "Jr." || mn.Name == "Jr" {
			t.Errorf("bare suffix emitted as a mention: %+v", mn)
		}
	}
}

func TestExtract_InlineSpouse(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("Survived by his brother Tom (Ann) Walsh.")

	sib := findMention(mentions, graph.KindSibling, "Tom Walsh")
	if sib == nil {
		t.Fatalf("no sibling mention for Tom Walsh in %+v", mentions)
	}
	if sib.SpouseName != "Ann" {
		t.Errorf("inline spouse = %q, want Ann", sib.SpouseName)
	}
}

func TestExtract_MaidenParenthesisKept(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("Survived by his sister Carol (nee Walsh) Boyle.")

	// A nee parenthetical is not an inline spouse; it stays in the name for
	// the normalizer to classify.
	sib := findMention(mentions, graph.KindSibling, "Carol (nee Walsh) Boyle")
	if sib == nil {
		t.Fatalf("missing sibling mention in %+v", mentions)
	}
	if sib.SpouseName != "" {
		t.Errorf("spouse = %q, want empty for maiden parenthetical", sib.SpouseName)
	}
}

func TestExtract_GreatNieceClaimsBeforeNiece(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("Also survived by his great niece Karen (Mark) Miller.")

	if findMention(mentions, graph.KindGreatNieceNephew, "Karen Miller") == nil {
		t.Fatalf("no great-niece mention in %+v", mentions)
	}
	for _, mm := range mentions {
		if mm.Kind == graph.KindNieceNephew {
			t.Errorf("plain niece mention should be claimed away, got %+v", mm)
		}
	}
}

func TestExtract_PrecededListPersonOnly(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("He was preceded in death by William Nowak and Helen Nowak.")

	w := findMention(mentions, "", "William Nowak")
	if w == nil || !w.PersonOnly {
		t.Fatalf("expected person-only mention for William Nowak, got %+v", mentions)
	}
	if h := findMention(mentions, "", "Helen Nowak"); h == nil {
		t.Errorf("expected person-only mention for Helen Nowak in %+v", mentions)
	}
}

func TestExtract_ClaimedSpanNotReread(t *testing.T) {
	m := newTestMatcher(t)
	mentions := m.Extract("He was preceded in death by his father John Doyle and mother Jane Doyle.")

	var parents, personOnly int
	for _, mm := range mentions {
		switch {
		case mm.Kind == graph.KindParent:
			parents++
		case mm.PersonOnly:
			personOnly++
		}
	}
	if parents != 2 {
		t.Errorf("parent mentions = %d, want 2: %+v", parents, mentions)
	}
	if personOnly != 0 {
		t.Errorf("claimed parent names should not also surface as person-only mentions: %+v", mentions)
	}
}

func TestSubject_Headlines(t *testing.T) {
	tests := []struct {
		text   string
		first  string
		last   string
		maiden string
	}{
		{text: "PARADOWSKI, Robert J. (NEE Kowalski)\n\nRobert passed away.", first: "Robert", last: "Paradowski", maiden: "Kowalski"},
		{text: "Mary Walsh\n\nMary passed away peacefully.", first: "Mary", last: "Walsh"},
	}
	for _, tt := range tests {
		first, last, maiden, ok := Subject(tt.text)
		if !ok {
			t.Errorf("%q: expected subject", tt.text)
			continue
		}
		if first != tt.first || maiden != tt.maiden {
			t.Errorf("%q: got (%s, %s, %s)", tt.text, first, last, maiden)
		}
	}
}

func TestSubject_ProseFallback(t *testing.T) {
	first, last, _, ok := Subject("beloved and devoted, Frank Malone passed away on Tuesday.")
	if !ok || first != "Frank" || last != "Malone" {
		t.Errorf("got (%q, %q, ok=%v), want Frank Malone", first, last, ok)
	}
}

func TestLoadTables_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	doc := `categories:
  - kind: spouse
    self_reported: true
    patterns:
      - '(?i:wife|husband) (?P<name>[A-Z][a-z]+ [A-Z][a-z]+)'
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("loading tables: %v", err)
	}
	m, err := NewMatcher(tables)
	if err != nil {
		t.Fatalf("compiling tables: %v", err)
	}
	mentions := m.Extract("Survived by his wife Mary Smith.")
	if findMention(mentions, graph.KindSpouse, "Mary Smith") == nil {
		t.Errorf("custom table produced %+v", mentions)
	}
}

func TestLoadTables_Errors(t *testing.T) {
	if _, err := LoadTables(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("categories:\n  - kind: spouse\n    patterns:\n      - '(unclosed'\n"), 0644)
	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("load should succeed, compile should fail: %v", err)
	}
	if _, err := NewMatcher(tables); err == nil {
		t.Error("expected compile error for invalid pattern")
	}
}
