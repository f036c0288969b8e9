package graph

import (
	"log/slog"
	"sort"
)

// DefaultPrecedence ranks relationship kinds for conflict resolution. Stated
// spouse and parent claims outrank sibling and companion claims, which
// outrank punctuation-derived child-spouse inferences.
func DefaultPrecedence() map[Kind]int {
	return map[Kind]int{
		KindSpouse:             3,
		KindParent:             3,
		KindChild:              3,
		KindSibling:            2,
		KindCompanion:          2,
		KindNieceNephew:        2,
		KindGreatNieceNephew:   2,
		KindDerivedChildSpouse: 1,
	}
}

// Discarded is an audit record for an edge removed during conflict
// resolution. Nothing is silently dropped: every loser names the edge that
// beat it.
type Discarded struct {
	Edge   Edge
	Reason string
	KeptBy Edge
}

// Resolver arbitrates between contradictory edges once all obituaries in a
// batch have been applied.
type Resolver struct {
	precedence map[Kind]int
}

// NewResolver returns a resolver with the given precedence table; nil means
// DefaultPrecedence.
func NewResolver(precedence map[Kind]int) *Resolver {
	if precedence == nil {
		precedence = DefaultPrecedence()
	}
	return &Resolver{precedence: precedence}
}

func (r *Resolver) rank(e Edge) int { return r.precedence[e.Kind] }

// better reports whether a should win over b. Self-reported claims beat
// third-party inference, then precedence decides, then the earlier-seen
// edge wins.
func (r *Resolver) better(a Edge, ai int, b Edge, bi int) bool {
	if a.SelfReported != b.SelfReported {
		return a.SelfReported
	}
	if r.rank(a) != r.rank(b) {
		return r.rank(a) > r.rank(b)
	}
	return ai < bi
}

// isPartner reports whether the kind occupies the exclusive spouse or
// companion slot.
func isPartner(k Kind) bool {
	return k == KindSpouse || k == KindCompanion || k == KindDerivedChildSpouse
}

// Resolve filters the builder's edge list down to a consistent set and
// rematerializes the partner slots from the winners. Two passes: first,
// edges claiming the same pair with different kinds are reduced to the
// strongest claim; second, partner edges contend per person, since each
// person holds at most one spouse or companion.
func (r *Resolver) Resolve(b *Builder) []Discarded {
	edges := b.Edges()
	var discarded []Discarded
	drop := make(map[int]bool)

	// Pass 1: same pair, conflicting kinds.
	byPair := make(map[string][]int)
	var pairOrder []string
	for i, e := range edges {
		k := e.pairKey()
		if _, ok := byPair[k]; !ok {
			pairOrder = append(pairOrder, k)
		}
		byPair[k] = append(byPair[k], i)
	}
	for _, k := range pairOrder {
		idxs := byPair[k]
		if len(idxs) < 2 {
			continue
		}
		best := idxs[0]
		for _, i := range idxs[1:] {
			if r.better(edges[i], i, edges[best], best) {
				best = i
			}
		}
		for _, i := range idxs {
			if i == best || edges[i].Kind == edges[best].Kind {
				continue
			}
			drop[i] = true
			discarded = append(discarded, Discarded{
				Edge:   edges[i],
				Reason: "conflicting relationship claim for the same pair",
				KeptBy: edges[best],
			})
		}
	}

	// Pass 2: partner edges contend for each person's single slot.
	var partners []int
	for i, e := range edges {
		if !drop[i] && isPartner(e.Kind) {
			partners = append(partners, i)
		}
	}
	ranked := append([]int(nil), partners...)
	sort.SliceStable(ranked, func(x, y int) bool {
		return r.better(edges[ranked[x]], ranked[x], edges[ranked[y]], ranked[y])
	})
	claimed := make(map[string]int)
	for _, i := range ranked {
		e := edges[i]
		wa, okA := claimed[e.PersonA]
		wb, okB := claimed[e.PersonB]
		if okA || okB {
			winner := wa
			if !okA {
				winner = wb
			}
			drop[i] = true
			discarded = append(discarded, Discarded{
				Edge:   e,
				Reason: "person already holds a higher-precedence partner",
				KeptBy: edges[winner],
			})
			continue
		}
		claimed[e.PersonA] = i
		claimed[e.PersonB] = i
	}

	if len(discarded) == 0 {
		return nil
	}

	// Rebuild the partner slots from scratch so losers leave no trace, then
	// unwind any sibling entries the dropped edges contributed.
	for _, i := range partners {
		b.Unapply(edges[i])
	}
	var kept []Edge
	for i, e := range edges {
		if drop[i] {
			if e.Kind == KindSibling {
				r.unlinkSibling(b, e)
			}
			continue
		}
		if isPartner(e.Kind) {
			b.Reapply(e)
		}
		kept = append(kept, e)
	}
	b.Replace(kept)

	for _, d := range discarded {
		slog.Info("graph: discarded conflicting edge",
			"edge", d.Edge.String(), "kept", d.KeptBy.String(), "reason", d.Reason)
	}
	return discarded
}

func (r *Resolver) unlinkSibling(b *Builder, e Edge) {
	if a, ok := b.reg.Get(e.PersonA); ok {
		a.RemoveSibling(e.PersonB)
	}
	if c, ok := b.reg.Get(e.PersonB); ok {
		c.RemoveSibling(e.PersonA)
	}
}
