package graph

import "fmt"

// Kind identifies the relationship type carried by an edge.
type Kind string

const (
	KindSpouse           Kind = "spouse"
	KindCompanion        Kind = "companion"
	KindParent           Kind = "parent"
	KindChild            Kind = "child"
	KindSibling          Kind = "sibling"
	KindNieceNephew      Kind = "niece_nephew"
	KindGreatNieceNephew Kind = "great_niece_nephew"
	// KindDerivedChildSpouse links the subject's child to the spouse named
	// inline in a child list entry. It carries the lowest precedence: it is
	// an inference from punctuation, not a stated relationship.
	KindDerivedChildSpouse Kind = "derived_child_spouse"
)

// Relationship describes how an edge was established. Direct relationships
// were stated in the narrative; derived ones were inferred through an anchor
// person (for example a spouse mentioned inline in a sibling entry).
type Relationship interface {
	RelKind() Kind
}

// Direct is a relationship stated outright in the obituary text.
type Direct struct {
	Kind Kind
}

func (d Direct) RelKind() Kind { return d.Kind }

// Derived is a relationship inferred via an anchor person rather than stated
// about the pair directly.
type Derived struct {
	Kind     Kind
	AnchorID string
}

func (d Derived) RelKind() Kind { return d.Kind }

// Edge is one extracted relationship between two persons. For parent edges
// PersonA is the parent and PersonB the child; for child edges PersonA is the
// child. Symmetric kinds (spouse, companion, sibling) carry no orientation.
type Edge struct {
	Kind    Kind
	PersonA string
	PersonB string

	// Role distinguishes father from mother on parent and child edges.
	Role string

	// SelfReported marks relationships asserted in the subject's own
	// narrative, which outrank third-party inferences during conflict
	// resolution.
	SelfReported bool

	// Context records the narrative section the edge was found in, such as
	// "survived_by" or "preceded_by". Informational only.
	Context string

	Rel Relationship
}

func (e Edge) String() string {
	return fmt.Sprintf("%s(%s,%s)", e.Kind, e.PersonA, e.PersonB)
}

// pairKey returns an unordered identity for the edge's endpoints, so the
// same pair claimed in either direction dedupes to one key.
func (e Edge) pairKey() string {
	a, b := e.PersonA, e.PersonB
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// dedupKey identifies an edge for duplicate suppression. Parent and child
// edges assert the same fact from opposite ends, so both collapse to the
// parent orientation.
func (e Edge) dedupKey() string {
	kind := e.Kind
	a, b := e.PersonA, e.PersonB
	if kind == KindChild {
		kind = KindParent
		a, b = b, a
	}
	switch kind {
	case KindSpouse, KindCompanion, KindSibling, KindDerivedChildSpouse:
		if b < a {
			a, b = b, a
		}
	}
	return string(kind) + "|" + a + "|" + b
}
