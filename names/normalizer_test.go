package names

import "testing"

func TestNormalize_Basic(t *testing.T) {
	n := NewNormalizer(nil)

	p, ok := n.Normalize("Mary Smith", "", "")
	if !ok {
		t.Fatal("expected Mary Smith to normalize")
	}
	if p.First != "Mary" || p.Last != "Smith" {
		t.Errorf("got (%q, %q), want (Mary, Smith)", p.First, p.Last)
	}
}

func TestNormalize_Components(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		raw      string
		first    string
		last     string
		maiden   string
		nickname string
		suffix   string
	}{
		{raw: `Robert "Bob" Smith`, first: "Robert", last: "Smith", nickname: "Bob"},
		{raw: "Jane Doe (nee Brown)", first: "Jane", last: "Doe", maiden: "Brown"},
		{raw: "Jane Doe (née Brown)", first: "Jane", last: "Doe", maiden: "Brown"},
		{raw: "Margaret (Peggy) Jones", first: "Margaret", last: "Jones", nickname: "Peggy"},
		{raw: "Mrs. Helen Carter", first: "Helen", last: "Carter"},
		{raw: "Robert Paradowski, Jr.", first: "Robert", last: "Paradowski", suffix: "Jr"},
		{raw: "Henry Ford III", first: "Henry", last: "Ford", suffix: "III"},
		{raw: "John A. Smith", first: "John", last: "Smith"},
		{raw: "Mary Smith and", first: "Mary", last: "Smith"},
	}
	for _, tt := range tests {
		p, ok := n.Normalize(tt.raw, "", "")
		if !ok {
			t.Errorf("%q: expected ok", tt.raw)
			continue
		}
		if p.First != tt.first || p.Last != tt.last {
			t.Errorf("%q: got (%q, %q), want (%q, %q)", tt.raw, p.First, p.Last, tt.first, tt.last)
		}
		if p.Maiden != tt.maiden {
			t.Errorf("%q: maiden = %q, want %q", tt.raw, p.Maiden, tt.maiden)
		}
		if p.Nickname != tt.nickname {
			t.Errorf("%q: nickname = %q, want %q", tt.raw, p.Nickname, tt.nickname)
		}
		if p.Suffix != tt.suffix {
			t.Errorf("%q: suffix = %q, want %q", tt.raw, p.Suffix, tt.suffix)
		}
	}
}

func TestNormalize_FallbackSurname(t *testing.T) {
	n := NewNormalizer(nil)

	p, ok := n.Normalize("Mary", "", "Smith")
	if !ok {
		t.Fatal("expected single token with fallback to normalize")
	}
	if p.Last != "Smith" {
		t.Errorf("last = %q, want fallback Smith", p.Last)
	}

	if _, ok := n.Normalize("Mary", "", ""); ok {
		t.Error("single token without fallback should be rejected")
	}
}

func TestNormalize_Rejections(t *testing.T) {
	n := NewNormalizer(nil)

	for _, raw := range []string{
		"",
		"   ",
		"Mary and John",       // embedded conjunction
		"J Smith",             // first name too short
		"and",
	} {
		if _, ok := n.Normalize(raw, "", ""); ok {
			t.Errorf("%q: expected rejection", raw)
		}
	}
}

func TestStripSuffixTokens(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Paradowski", "Paradowski"},
		{"Paradowski Jr.", "Paradowski"},
		{"Paradowski, Jr.", "Paradowski"},
		{"Ford III", "Ford"},
	}
	for _, tt := range tests {
		if got := StripSuffixTokens(tt.in); got != tt.want {
			t.Errorf("StripSuffixTokens(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSuffixWeight(t *testing.T) {
	plain := Parsed{First: "Robert", Last: "Paradowski"}
	suffixed := Parsed{First: "Robert", Last: "Paradowski", Suffix: "Jr"}
	if SuffixWeight(suffixed) <= SuffixWeight(plain) {
		t.Error("suffixed name should outweigh the plain variant")
	}
}
