package graph

import (
	"log/slog"

	"github.com/kindredgraph/kindred/people"
)

// Builder applies extracted relationship edges to the person registry while
// maintaining the structural invariants: spouse and companion links are
// symmetric and mutually exclusive, parent links are mirrored in the parent's
// child list, and sibling groups close into cliques.
type Builder struct {
	reg      *people.Registry
	edges    []Edge
	seen     map[string]bool
	siblings *unionFind
}

// NewBuilder returns a builder over the given registry.
func NewBuilder(reg *people.Registry) *Builder {
	return &Builder{
		reg:      reg,
		seen:     make(map[string]bool),
		siblings: newUnionFind(),
	}
}

// Edges returns every accepted edge in application order.
func (b *Builder) Edges() []Edge { return b.edges }

// Replace swaps the accepted edge list, used after conflict resolution has
// filtered it.
func (b *Builder) Replace(edges []Edge) { b.edges = edges }

// Canonicalize rewrites the edge list after a registry merge: endpoints are
// remapped through the alias chain, edges the merge turned self-referencing
// are dropped, and edges that collapsed onto an existing one are removed.
func (b *Builder) Canonicalize() {
	seen := make(map[string]bool)
	kept := b.edges[:0]
	for _, e := range b.edges {
		e.PersonA = b.reg.Canonical(e.PersonA)
		e.PersonB = b.reg.Canonical(e.PersonB)
		if e.PersonA == e.PersonB || seen[e.dedupKey()] {
			continue
		}
		seen[e.dedupKey()] = true
		kept = append(kept, e)
	}
	b.edges = kept
	b.seen = seen
}

// Apply validates an edge and materializes it onto the person records.
// Self-referencing edges, edges naming unknown persons, and duplicates are
// skipped. Reapplying an already-applied edge is a no-op.
func (b *Builder) Apply(e Edge) {
	e.PersonA = b.reg.Canonical(e.PersonA)
	e.PersonB = b.reg.Canonical(e.PersonB)

	if e.PersonA == e.PersonB {
		slog.Warn("graph: skipping self-referencing edge", "kind", e.Kind, "person", e.PersonA)
		return
	}
	a, okA := b.reg.Get(e.PersonA)
	pb, okB := b.reg.Get(e.PersonB)
	if !okA || !okB {
		slog.Warn("graph: skipping edge with unknown person", "kind", e.Kind, "a", e.PersonA, "b", e.PersonB)
		return
	}
	if b.seen[e.dedupKey()] {
		return
	}
	b.seen[e.dedupKey()] = true

	switch e.Kind {
	case KindSpouse:
		b.linkSpouse(a, pb)
	case KindCompanion:
		b.linkCompanion(a, pb)
	case KindParent:
		b.linkParent(a, pb, e.Role)
	case KindChild:
		b.linkParent(pb, a, e.Role)
	case KindSibling:
		// The union-find is seeded from the sibling lists at closure time,
		// after conflict resolution has had a chance to remove entries.
		a.AddSibling(pb.ID)
		pb.AddSibling(a.ID)
	case KindDerivedChildSpouse:
		// Lowest-confidence inference: only fills slots no stronger
		// relationship has claimed.
		if a.SpouseID == "" && a.CompanionID == "" && pb.SpouseID == "" && pb.CompanionID == "" {
			a.SpouseID = pb.ID
			pb.SpouseID = a.ID
		}
	case KindNieceNephew, KindGreatNieceNephew:
		// Recorded for the edge list only; no person slot encodes them.
	default:
		slog.Warn("graph: unknown edge kind", "kind", e.Kind)
		return
	}

	b.edges = append(b.edges, e)
}

// linkSpouse sets the symmetric spouse link, clearing any companion links and
// any previous spouse's mirror pointer on both sides.
func (b *Builder) linkSpouse(a, c *people.Person) {
	b.clearPartner(a)
	b.clearPartner(c)
	a.SpouseID = c.ID
	c.SpouseID = a.ID
}

// linkCompanion mirrors linkSpouse for the companion slot.
func (b *Builder) linkCompanion(a, c *people.Person) {
	b.clearPartner(a)
	b.clearPartner(c)
	a.CompanionID = c.ID
	c.CompanionID = a.ID
}

// clearPartner removes p's spouse or companion link along with the partner's
// mirror pointer, so a new link never leaves a dangling back-reference.
func (b *Builder) clearPartner(p *people.Person) {
	if p.SpouseID != "" {
		if old, ok := b.reg.Get(p.SpouseID); ok && old.SpouseID == p.ID {
			old.SpouseID = ""
		}
		p.SpouseID = ""
	}
	if p.CompanionID != "" {
		if old, ok := b.reg.Get(p.CompanionID); ok && old.CompanionID == p.ID {
			old.CompanionID = ""
		}
		p.CompanionID = ""
	}
}

// linkParent records parent as the child's father or mother per role and adds
// the child to the parent's child list. When the text never stated a role the
// slot choice is deferred to AssignParentSlots, which can use evidence that
// only exists once the whole batch is applied.
func (b *Builder) linkParent(parent, child *people.Person, role string) {
	switch role {
	case "father":
		child.FatherID = parent.ID
	case "mother":
		child.MotherID = parent.ID
	}
	parent.AddChild(child.ID)
}

// AssignParentSlots places parents whose role was never stated into their
// children's father or mother slots. Evidence is tried in order: a slot the
// parent already holds on another child, the opposite of the slot the
// parent's partner holds on the same child, then the first free slot. A slot
// claimed by a stated role is never overwritten.
func (b *Builder) AssignParentSlots() {
	role := make(map[string]string)
	for _, p := range b.reg.All() {
		if p.FatherID != "" {
			role[p.FatherID] = "father"
		}
		if p.MotherID != "" {
			role[p.MotherID] = "mother"
		}
	}
	for _, p := range b.reg.All() {
		for _, childID := range p.Children {
			child, ok := b.reg.Get(childID)
			if !ok || child.FatherID == p.ID || child.MotherID == p.ID {
				continue
			}
			slot := role[p.ID]
			if slot == "" {
				partner := p.SpouseID
				if partner == "" {
					partner = p.CompanionID
				}
				switch {
				case partner != "" && child.FatherID == partner:
					slot = "mother"
				case partner != "" && child.MotherID == partner:
					slot = "father"
				case child.FatherID == "":
					slot = "father"
				case child.MotherID == "":
					slot = "mother"
				}
			}
			switch {
			case slot == "father" && child.FatherID == "":
				child.FatherID = p.ID
				role[p.ID] = "father"
			case slot == "mother" && child.MotherID == "":
				child.MotherID = p.ID
				role[p.ID] = "mother"
			}
		}
	}
}

// record appends a derived edge to the audit trail under the same duplicate
// suppression as applied edges, without touching the person records.
func (b *Builder) record(e Edge) {
	if b.seen[e.dedupKey()] {
		return
	}
	b.seen[e.dedupKey()] = true
	b.edges = append(b.edges, e)
}

// DeriveSpouseParentage fills the second parent slot of every child whose
// known parent has a spouse, and mirrors the child into the spouse's child
// list. Existing parent assignments are never overwritten; each fill is
// recorded as a derived edge anchored on the known parent.
func (b *Builder) DeriveSpouseParentage() {
	for _, p := range b.reg.All() {
		if p.SpouseID == "" || len(p.Children) == 0 {
			continue
		}
		spouse, ok := b.reg.Get(p.SpouseID)
		if !ok {
			continue
		}
		for _, childID := range p.Children {
			child, ok := b.reg.Get(childID)
			if !ok || childID == spouse.ID {
				continue
			}
			role := ""
			switch {
			case child.FatherID == p.ID && child.MotherID == "":
				child.MotherID = spouse.ID
				role = "mother"
			case child.MotherID == p.ID && child.FatherID == "":
				child.FatherID = spouse.ID
				role = "father"
			default:
				continue
			}
			spouse.AddChild(childID)
			b.record(Edge{
				Kind: KindParent, PersonA: spouse.ID, PersonB: childID, Role: role,
				Rel: Derived{Kind: KindParent, AnchorID: p.ID},
			})
		}
	}
}

// DeriveSiblingsFromParents unions children that share a known parent, so
// they land in one clique when sibling closure runs. Each inferred pair is
// recorded as a derived edge anchored on the shared parent.
func (b *Builder) DeriveSiblingsFromParents() {
	for _, p := range b.reg.All() {
		if len(p.Children) < 2 {
			continue
		}
		first := p.Children[0]
		for _, other := range p.Children[1:] {
			b.siblings.union(first, other)
			b.record(Edge{
				Kind: KindSibling, PersonA: first, PersonB: other,
				Rel: Derived{Kind: KindSibling, AnchorID: p.ID},
			})
		}
	}
}

// CloseSiblings materializes sibling transitivity: every component of the
// sibling relation becomes a complete clique in each member's sibling list.
// Sibling lists stated on the records seed the components, so closure holds
// even across separately processed obituaries.
func (b *Builder) CloseSiblings() {
	var order []string
	for _, p := range b.reg.All() {
		order = append(order, p.ID)
		for _, sib := range p.Siblings {
			b.siblings.union(p.ID, b.reg.Canonical(sib))
		}
	}
	for _, group := range b.siblings.components(order) {
		for _, id := range group {
			p, ok := b.reg.Get(id)
			if !ok {
				continue
			}
			for _, other := range group {
				if other != id {
					p.AddSibling(other)
				}
			}
		}
	}
}

// Unapply reverses the person-slot effects of a partner edge so a losing
// conflict candidate leaves no trace. Only spouse, companion, and derived
// child-spouse edges materialize into slots that need reversal; other kinds
// are additive and survive in the lists.
func (b *Builder) Unapply(e Edge) {
	a, okA := b.reg.Get(e.PersonA)
	c, okB := b.reg.Get(e.PersonB)
	if !okA || !okB {
		return
	}
	switch e.Kind {
	case KindSpouse, KindDerivedChildSpouse:
		if a.SpouseID == c.ID {
			a.SpouseID = ""
		}
		if c.SpouseID == a.ID {
			c.SpouseID = ""
		}
	case KindCompanion:
		if a.CompanionID == c.ID {
			a.CompanionID = ""
		}
		if c.CompanionID == a.ID {
			c.CompanionID = ""
		}
	}
}

// Reapply rematerializes a kept partner edge after conflict resolution has
// unapplied the whole contested group.
func (b *Builder) Reapply(e Edge) {
	a, okA := b.reg.Get(e.PersonA)
	c, okB := b.reg.Get(e.PersonB)
	if !okA || !okB {
		return
	}
	switch e.Kind {
	case KindSpouse, KindDerivedChildSpouse:
		b.linkSpouse(a, c)
	case KindCompanion:
		b.linkCompanion(a, c)
	}
}
