// Package people holds the resolved person model and the registry that maps
// name mentions to stable person identities.
package people

import "strings"

// Person is a resolved identity in the family graph. Relationship fields use
// the empty string / empty set to mean "unknown", never "not applicable".
// JSON fields are always emitted so absence stays explicit in persisted
// batches.
type Person struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MaidenName string `json:"maiden_name"`
	Nickname   string `json:"nickname"`
	Suffix     string `json:"suffix"`

	// Attributes supplied by external collaborators, passed through untouched.
	BirthDate    string `json:"birth_date"`
	DeathDate    string `json:"death_date"`
	URL          string `json:"url"`
	ObituaryText string `json:"obituary_text"`

	// SpouseID and CompanionID are mutually exclusive: at most one is set.
	SpouseID    string `json:"spouse_id"`
	CompanionID string `json:"companion_id"`

	FatherID string `json:"father_id"`
	MotherID string `json:"mother_id"`

	// Duplicate-free, order-irrelevant id sets. Siblings is symmetric and
	// maintained as a clique over its connected component.
	Children []string `json:"children"`
	Siblings []string `json:"siblings"`
}

// FullName renders the person's display name.
func (p *Person) FullName() string {
	name := p.FirstName + " " + p.LastName
	if p.Suffix != "" {
		name += " " + p.Suffix
	}
	return name
}

// AddChild appends a child id if not already present.
func (p *Person) AddChild(id string) {
	p.Children = addToSet(p.Children, id)
}

// AddSibling appends a sibling id if not already present.
func (p *Person) AddSibling(id string) {
	p.Siblings = addToSet(p.Siblings, id)
}

// RemoveSibling drops a sibling id if present.
func (p *Person) RemoveSibling(id string) {
	p.Siblings = removeFromSet(p.Siblings, id)
}

// HasChild reports whether id is in the children set.
func (p *Person) HasChild(id string) bool {
	return inSet(p.Children, id)
}

// HasSibling reports whether id is in the siblings set.
func (p *Person) HasSibling(id string) bool {
	return inSet(p.Siblings, id)
}

func addToSet(set []string, id string) []string {
	if id == "" || inSet(set, id) {
		return set
	}
	return append(set, id)
}

func inSet(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

func removeFromSet(set []string, id string) []string {
	out := set[:0]
	for _, s := range set {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}

// nameKey is the case-insensitive (first, last) lookup key.
type nameKey struct {
	first string
	last  string
}

func keyOf(first, last string) nameKey {
	return nameKey{
		first: strings.ToLower(strings.TrimSpace(first)),
		last:  strings.ToLower(strings.TrimSpace(last)),
	}
}
