package extract

import "testing"

func TestSplitSentences(t *testing.T) {
	text := "John passed away peacefully. He is survived by his wife Mary Smith. Services were held Tuesday."
	got := SplitSentences(text)
	if len(got) != 3 {
		t.Fatalf("got %d sentences, want 3: %q", len(got), got)
	}
	if got[1] != "He is survived by his wife Mary Smith." {
		t.Errorf("second sentence = %q", got[1])
	}
}

func TestSplitSentences_Abbreviations(t *testing.T) {
	text := "Services by Rev. Thomas Kelly. Burial followed."
	got := SplitSentences(text)
	if len(got) != 2 {
		t.Fatalf("got %d sentences, want 2: %q", len(got), got)
	}
	if got[0] != "Services by Rev. Thomas Kelly." {
		t.Errorf("first sentence = %q", got[0])
	}
}

func TestSplitSentences_NoTerminator(t *testing.T) {
	got := SplitSentences("survived by his wife Mary")
	if len(got) != 1 || got[0] != "survived by his wife Mary" {
		t.Errorf("got %q", got)
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	if got := SplitSentences(""); got != nil {
		t.Errorf("got %q, want nil", got)
	}
}
