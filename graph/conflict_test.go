package graph

import (
	"testing"
)

func applyAll(b *Builder, edges ...Edge) {
	for _, e := range edges {
		b.Apply(e)
	}
}

func TestResolve_SamePairKindConflict(t *testing.T) {
	reg, p := testRegistry(t, "John Smith", "Mary Smith")
	b := NewBuilder(reg)
	john, mary := p["John Smith"], p["Mary Smith"]

	applyAll(b,
		Edge{Kind: KindCompanion, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindCompanion}},
		Edge{Kind: KindSpouse, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindSpouse}},
	)

	discarded := NewResolver(nil).Resolve(b)
	if len(discarded) != 1 {
		t.Fatalf("discarded = %v, want one entry", discarded)
	}
	d := discarded[0]
	if d.Edge.Kind != KindCompanion {
		t.Errorf("discarded kind = %q, want companion", d.Edge.Kind)
	}
	if d.KeptBy.Kind != KindSpouse {
		t.Errorf("kept-by kind = %q, want spouse", d.KeptBy.Kind)
	}
	if john.SpouseID != mary.ID || john.CompanionID != "" {
		t.Error("winning spouse claim should hold the partner slot")
	}
	for _, e := range b.Edges() {
		if e.Kind == KindCompanion {
			t.Error("losing edge must be removed from the edge list")
		}
	}
}

func TestResolve_SelfReportedBeatsThirdParty(t *testing.T) {
	reg, p := testRegistry(t, "John Smith", "Mary Smith")
	b := NewBuilder(reg)
	john, mary := p["John Smith"], p["Mary Smith"]

	applyAll(b,
		Edge{Kind: KindSpouse, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindSpouse}},
		Edge{Kind: KindCompanion, PersonA: john.ID, PersonB: mary.ID, SelfReported: true, Rel: Direct{Kind: KindCompanion}},
	)

	discarded := NewResolver(nil).Resolve(b)
	if len(discarded) != 1 || discarded[0].Edge.Kind != KindSpouse {
		t.Fatalf("discarded = %v, want the third-party spouse edge", discarded)
	}
	if john.CompanionID != mary.ID {
		t.Error("self-reported companion claim should win the slot")
	}
}

func TestResolve_PartnerSlotContention(t *testing.T) {
	reg, p := testRegistry(t, "John Smith", "Mary Smith", "Ann Jones")
	b := NewBuilder(reg)
	john, mary, ann := p["John Smith"], p["Mary Smith"], p["Ann Jones"]

	applyAll(b,
		Edge{Kind: KindSpouse, PersonA: john.ID, PersonB: mary.ID, SelfReported: true, Rel: Direct{Kind: KindSpouse}},
		Edge{Kind: KindSpouse, PersonA: john.ID, PersonB: ann.ID, Rel: Direct{Kind: KindSpouse}},
	)

	discarded := NewResolver(nil).Resolve(b)
	if len(discarded) != 1 {
		t.Fatalf("discarded = %v, want one entry", discarded)
	}
	if got := discarded[0].Edge.PersonB; got != ann.ID {
		t.Errorf("discarded partner = %q, want %q", got, ann.ID)
	}
	if john.SpouseID != mary.ID || mary.SpouseID != john.ID {
		t.Error("winner should hold both slots")
	}
	if ann.SpouseID != "" {
		t.Error("loser's slot must be cleared")
	}
}

func TestResolve_DroppedSiblingUnlinked(t *testing.T) {
	reg, p := testRegistry(t, "John Smith", "Mary Smith")
	b := NewBuilder(reg)
	john, mary := p["John Smith"], p["Mary Smith"]

	applyAll(b,
		Edge{Kind: KindSibling, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindSibling}},
		Edge{Kind: KindSpouse, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindSpouse}},
	)

	discarded := NewResolver(nil).Resolve(b)
	if len(discarded) != 1 || discarded[0].Edge.Kind != KindSibling {
		t.Fatalf("discarded = %v, want the sibling edge", discarded)
	}
	if john.HasSibling(mary.ID) || mary.HasSibling(john.ID) {
		t.Error("dropped sibling edge must be unlinked from both lists")
	}
}

func TestResolve_DroppedSiblingStaysOutOfClosure(t *testing.T) {
	reg, p := testRegistry(t, "John Smith", "Mary Smith")
	b := NewBuilder(reg)
	john, mary := p["John Smith"], p["Mary Smith"]

	applyAll(b,
		Edge{Kind: KindSibling, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindSibling}},
		Edge{Kind: KindSpouse, PersonA: john.ID, PersonB: mary.ID, SelfReported: true, Rel: Direct{Kind: KindSpouse}},
	)

	discarded := NewResolver(nil).Resolve(b)
	if len(discarded) != 1 || discarded[0].Edge.Kind != KindSibling {
		t.Fatalf("discarded = %v, want the sibling edge", discarded)
	}

	// Closure runs after resolution; the dropped pair must not come back.
	b.CloseSiblings()
	if john.HasSibling(mary.ID) || mary.HasSibling(john.ID) {
		t.Error("discarded sibling pair resurfaced in sibling closure")
	}
	if john.SpouseID != mary.ID {
		t.Error("winning spouse claim should survive closure")
	}
}

func TestResolve_CustomPrecedence(t *testing.T) {
	reg, p := testRegistry(t, "John Smith", "Mary Smith")
	b := NewBuilder(reg)
	john, mary := p["John Smith"], p["Mary Smith"]

	applyAll(b,
		Edge{Kind: KindSpouse, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindSpouse}},
		Edge{Kind: KindCompanion, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindCompanion}},
	)

	prec := DefaultPrecedence()
	prec[KindCompanion] = 5
	discarded := NewResolver(prec).Resolve(b)
	if len(discarded) != 1 || discarded[0].Edge.Kind != KindSpouse {
		t.Fatalf("discarded = %v, want the spouse edge under inverted precedence", discarded)
	}
	if john.CompanionID != mary.ID {
		t.Error("companion claim should win under inverted precedence")
	}
}

func TestResolve_NoConflicts(t *testing.T) {
	reg, p := testRegistry(t, "John Smith", "Mary Smith", "Tim Smith")
	b := NewBuilder(reg)
	john, mary, tim := p["John Smith"], p["Mary Smith"], p["Tim Smith"]

	applyAll(b,
		Edge{Kind: KindSpouse, PersonA: john.ID, PersonB: mary.ID, Rel: Direct{Kind: KindSpouse}},
		Edge{Kind: KindParent, PersonA: john.ID, PersonB: tim.ID, Role: "father", Rel: Direct{Kind: KindParent}},
	)

	if discarded := NewResolver(nil).Resolve(b); len(discarded) != 0 {
		t.Errorf("discarded = %v, want none", discarded)
	}
	if len(b.Edges()) != 2 {
		t.Errorf("edges = %d, want 2", len(b.Edges()))
	}
	if _, ok := reg.Get(john.ID); !ok {
		t.Fatal("registry lookup failed")
	}
}
