package people

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kindredgraph/kindred/names"
)

// Registry is the entity resolver: it owns the person collection, the
// (first, last) lookup index, and the monotonic id sequence for one
// resolution session. It is not safe for concurrent use; each batch owns its
// own Registry.
type Registry struct {
	persons map[string]*Person
	index   map[nameKey]string
	order   []string // creation order, preserved in output
	aliases map[string]string
	seq     int

	// OnCreate is invoked for every newly created person. The session wires
	// this to the frequency table so surname weighting tracks the current
	// population.
	OnCreate func(*Person)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		persons: make(map[string]*Person),
		index:   make(map[nameKey]string),
		aliases: make(map[string]string),
	}
}

// Len returns the number of live person records.
func (r *Registry) Len() int { return len(r.order) }

// Get returns the person for an id, following variant-merge aliases.
func (r *Registry) Get(id string) (*Person, bool) {
	p, ok := r.persons[r.Canonical(id)]
	return p, ok
}

// Canonical resolves an id through the alias chain left behind by variant
// merges. Ids are never reused, so absorbed ids keep resolving forever.
func (r *Registry) Canonical(id string) string {
	for {
		next, ok := r.aliases[id]
		if !ok {
			return id
		}
		id = next
	}
}

// All returns the live person records in creation order.
func (r *Registry) All() []*Person {
	out := make([]*Person, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.persons[id])
	}
	return out
}

// Lookup finds a person id by exact (first, last) key.
func (r *Registry) Lookup(first, last string) (string, bool) {
	id, ok := r.index[keyOf(first, last)]
	return id, ok
}

// Resolve maps a normalized name to a person identity: an exact index hit, a
// suffix-stripped variant match, or a freshly created record. On a hit,
// newly observed components fill fields that were previously unknown.
func (r *Registry) Resolve(parsed names.Parsed) (*Person, bool) {
	key := keyOf(parsed.First, parsed.Last)

	if id, ok := r.index[key]; ok {
		p := r.persons[id]
		r.mergeFields(p, parsed)
		return p, false
	}

	if p := r.matchVariant(key); p != nil {
		r.mergeVariant(p, parsed, key)
		return p, false
	}

	return r.create(parsed), true
}

// create allocates a new person with the next id in the session sequence.
func (r *Registry) create(parsed names.Parsed) *Person {
	r.seq++
	p := &Person{
		ID:         fmt.Sprintf("P%d", r.seq),
		FirstName:  parsed.First,
		LastName:   parsed.Last,
		MaidenName: parsed.Maiden,
		Nickname:   parsed.Nickname,
		Suffix:     parsed.Suffix,
	}
	r.persons[p.ID] = p
	r.order = append(r.order, p.ID)
	r.index[keyOf(p.FirstName, p.LastName)] = p.ID
	if r.OnCreate != nil {
		r.OnCreate(p)
	}
	slog.Debug("people: created person", "id", p.ID, "name", p.FullName())
	return p
}

// mergeFields fills previously unknown components from a new observation.
// Known fields are never overwritten: absence means unknown, and an earlier
// corroborated value wins over a later guess.
func (r *Registry) mergeFields(p *Person, parsed names.Parsed) {
	if p.MaidenName == "" {
		p.MaidenName = parsed.Maiden
	}
	if p.Nickname == "" {
		p.Nickname = parsed.Nickname
	}
	if p.Suffix == "" {
		p.Suffix = parsed.Suffix
	}
}

// matchVariant recompares the candidate key against every registered key
// after stripping generational suffix tokens from both sides. A match means
// the two names are variants of the same individual.
func (r *Registry) matchVariant(key nameKey) *Person {
	strippedLast := strings.ToLower(names.StripSuffixTokens(key.last))
	for existing, id := range r.index {
		if existing.first != key.first {
			continue
		}
		if strings.ToLower(names.StripSuffixTokens(existing.last)) == strippedLast {
			return r.persons[r.Canonical(id)]
		}
	}
	return nil
}

// mergeVariant consolidates a variant observation into an existing record.
// The name with more suffix qualifiers becomes canonical; the new key is
// redirected to the surviving record.
func (r *Registry) mergeVariant(p *Person, parsed names.Parsed, key nameKey) {
	existing := names.Parsed{First: p.FirstName, Last: p.LastName, Suffix: p.Suffix}
	if names.SuffixWeight(parsed) > names.SuffixWeight(existing) {
		delete(r.index, keyOf(p.FirstName, p.LastName))
		p.FirstName = parsed.First
		p.LastName = parsed.Last
		p.Suffix = parsed.Suffix
		r.index[keyOf(p.FirstName, p.LastName)] = p.ID
	}
	r.mergeFields(p, parsed)
	r.index[key] = p.ID
	slog.Debug("people: merged name variant", "id", p.ID, "canonical", p.FullName(), "variant", parsed.Raw)
}

// Absorb merges record from into record into: relationship sets are unioned,
// unknown fields filled, every reference across the registry redirected, and
// the absorbed id aliased to the survivor. Used when two separately created
// records are later recognized as the same individual.
func (r *Registry) Absorb(into, from *Person) {
	if into.ID == from.ID {
		return
	}
	for _, c := range from.Children {
		into.AddChild(c)
	}
	for _, s := range from.Siblings {
		if s != into.ID {
			into.AddSibling(s)
		}
	}
	fillUnknown(&into.MaidenName, from.MaidenName)
	fillUnknown(&into.Nickname, from.Nickname)
	fillUnknown(&into.Suffix, from.Suffix)
	fillUnknown(&into.BirthDate, from.BirthDate)
	fillUnknown(&into.DeathDate, from.DeathDate)
	fillUnknown(&into.URL, from.URL)
	fillUnknown(&into.ObituaryText, from.ObituaryText)
	fillUnknown(&into.SpouseID, from.SpouseID)
	fillUnknown(&into.CompanionID, from.CompanionID)
	fillUnknown(&into.FatherID, from.FatherID)
	fillUnknown(&into.MotherID, from.MotherID)

	r.redirect(from.ID, into.ID)

	delete(r.persons, from.ID)
	r.order = removeFromSet(r.order, from.ID)
	for k, id := range r.index {
		if id == from.ID {
			r.index[k] = into.ID
		}
	}
	r.aliases[from.ID] = into.ID
	slog.Info("people: absorbed duplicate record", "kept", into.ID, "absorbed", from.ID, "name", into.FullName())
}

// redirect rewrites every reference to old across the registry to new.
func (r *Registry) redirect(old, new string) {
	for _, p := range r.persons {
		if p.SpouseID == old {
			p.SpouseID = new
		}
		if p.CompanionID == old {
			p.CompanionID = new
		}
		if p.FatherID == old {
			p.FatherID = new
		}
		if p.MotherID == old {
			p.MotherID = new
		}
		if inSet(p.Children, old) {
			p.Children = addToSet(removeFromSet(p.Children, old), new)
		}
		if inSet(p.Siblings, old) {
			p.Siblings = removeFromSet(p.Siblings, old)
			if p.ID != new {
				p.Siblings = addToSet(p.Siblings, new)
			}
		}
	}
}

func fillUnknown(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}
