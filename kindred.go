// Package kindred extracts family relationships from obituary text and
// resolves the mentioned names into a consistent family graph.
package kindred

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kindredgraph/kindred/extract"
	"github.com/kindredgraph/kindred/gedcom"
	"github.com/kindredgraph/kindred/graph"
	"github.com/kindredgraph/kindred/names"
	"github.com/kindredgraph/kindred/people"
	"github.com/kindredgraph/kindred/store"
)

// Engine is the main entry point for batch obituary processing.
type Engine interface {
	// ProcessBatch runs a full batch through extraction, resolution, and
	// the global consistency pass, then persists the result atomically.
	ProcessBatch(ctx context.Context, subjects []Subject, overrides []Override) (*Result, error)

	// Persons returns every stored person in creation order.
	Persons(ctx context.Context) ([]*people.Person, error)

	// ExportGEDCOM writes the stored graph as a GEDCOM document.
	ExportGEDCOM(ctx context.Context, w io.Writer) error

	// Store returns the underlying store for diagnostic access.
	Store() *store.Store

	// Close cleanly shuts down the engine.
	Close() error
}

// Subject is one obituary input. Name fields are optional: when empty, the
// subject is parsed from the text's headline. Dates and URL are collaborator
// data passed through untouched.
type Subject struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
	DeathDate string `json:"death_date"`
	URL       string `json:"url"`
	Text      string `json:"text"`
}

// Override is a caller-supplied correction applied after conflict
// resolution. PersonA and PersonB are "First Last" names; Drop removes the
// relationship instead of asserting it, and Merge declares the two names to
// be the same individual (Kind is ignored for merges).
type Override struct {
	Kind    graph.Kind `json:"kind" yaml:"kind"`
	PersonA string     `json:"person_a" yaml:"person_a"`
	PersonB string     `json:"person_b" yaml:"person_b"`
	Drop    bool       `json:"drop,omitempty" yaml:"drop,omitempty"`
	Merge   bool       `json:"merge,omitempty" yaml:"merge,omitempty"`
}

// Result is the outcome of a finalized batch.
type Result struct {
	Persons   []*people.Person  `json:"persons"`
	Edges     []graph.Edge      `json:"edges"`
	Discarded []graph.Discarded `json:"discarded,omitempty"`
}

// Session accumulates the state of one batch: the person registry, the
// surname frequency table, and every accepted edge. Sessions are not safe
// for concurrent use and are discarded after Finalize.
type Session struct {
	cfg        Config
	matcher    *extract.Matcher
	weighting  *names.Weighting
	normalizer *names.Normalizer
	reg        *people.Registry
	builder    *graph.Builder
	finalized  bool
}

// NewSession builds a fresh session from the configuration. Pattern tables
// come from cfg.PatternPath when set, otherwise the built-in defaults.
func NewSession(cfg Config) (*Session, error) {
	tables := extract.DefaultTables()
	if cfg.PatternPath != "" {
		t, err := extract.LoadTables(cfg.PatternPath)
		if err != nil {
			return nil, err
		}
		tables = t
	}
	matcher, err := extract.NewMatcher(tables)
	if err != nil {
		return nil, err
	}

	weighting := names.NewWeighting(cfg.FrequencyFactor)
	reg := people.NewRegistry()
	reg.OnCreate = func(p *people.Person) {
		weighting.Observe(p.LastName)
	}
	return &Session{
		cfg:        cfg,
		matcher:    matcher,
		weighting:  weighting,
		normalizer: names.NewNormalizer(weighting),
		reg:        reg,
		builder:    graph.NewBuilder(reg),
	}, nil
}

// Registry exposes the session's person registry.
func (s *Session) Registry() *people.Registry { return s.reg }

// Process extracts one obituary into the session and returns the subject's
// person id. Processing the same obituary twice yields the same graph.
func (s *Session) Process(sub Subject) (string, error) {
	if s.finalized {
		return "", ErrSessionFinalized
	}

	subject, err := s.resolveSubject(sub)
	if err != nil {
		return "", err
	}

	start := time.Now()
	mentions := s.matcher.Extract(sub.Text)
	n := &narrative{couples: make(map[int]string)}
	for _, m := range mentions {
		s.applyMention(subject, m, sub.Text, n)
	}
	s.assignNarrativeParents(subject, n)
	slog.Info("kindred: processed obituary",
		"subject", subject.FullName(), "id", subject.ID,
		"mentions", len(mentions), "elapsed", time.Since(start).Round(time.Millisecond))
	return subject.ID, nil
}

// resolveSubject identifies the obituary's subject and attaches the
// collaborator-supplied attributes to the record.
func (s *Session) resolveSubject(sub Subject) (*people.Person, error) {
	first, last, maiden := sub.FirstName, sub.LastName, ""
	if first == "" || last == "" {
		var ok bool
		first, last, maiden, ok = extract.Subject(sub.Text)
		if !ok {
			return nil, fmt.Errorf("%w (id=%q)", ErrNoSubject, sub.ID)
		}
	}

	parsed, ok := s.normalizer.Normalize(first+" "+last, sub.Text, "")
	if !ok {
		return nil, fmt.Errorf("%w (id=%q)", ErrNoSubject, sub.ID)
	}
	if parsed.Maiden == "" {
		parsed.Maiden = maiden
	}
	subject, _ := s.reg.Resolve(parsed)
	fill(&subject.BirthDate, sub.BirthDate)
	fill(&subject.DeathDate, sub.DeathDate)
	fill(&subject.URL, sub.URL)
	fill(&subject.ObituaryText, sub.Text)
	return subject, nil
}

// narrative accumulates cross-mention state while one obituary is applied:
// couples captured together, the father and mother the text names, and the
// subject's children, so relationships spanning mentions can be drawn after
// the whole text is read.
type narrative struct {
	couples  map[int]string
	father   *people.Person
	mother   *people.Person
	children []*people.Person
}

// applyMention resolves a mention's names and turns it into graph edges.
// The subject's surname backs single-token names; couples captured together
// are additionally linked as spouses.
func (s *Session) applyMention(subject *people.Person, m extract.Mention, text string, n *narrative) {
	parsed, ok := s.normalizer.Normalize(m.Name, text, subject.LastName)
	if !ok {
		return
	}
	if parsed.Maiden == "" {
		parsed.Maiden = m.Maiden
	}
	p, _ := s.reg.Resolve(parsed)

	if m.PersonOnly {
		return
	}

	switch m.Kind {
	case graph.KindSpouse, graph.KindCompanion:
		s.builder.Apply(graph.Edge{
			Kind: m.Kind, PersonA: subject.ID, PersonB: p.ID,
			SelfReported: m.SelfReported, Context: m.Context,
			Rel: graph.Direct{Kind: m.Kind},
		})

	case graph.KindParent:
		s.builder.Apply(graph.Edge{
			Kind: graph.KindParent, PersonA: p.ID, PersonB: subject.ID,
			Role: m.Role, Context: m.Context,
			Rel: graph.Direct{Kind: graph.KindParent},
		})
		switch m.Role {
		case "father":
			if n.father == nil {
				n.father = p
			}
		case "mother":
			if n.mother == nil {
				n.mother = p
			}
		}
		if m.CoupleID > 0 {
			if otherID, ok := n.couples[m.CoupleID]; ok {
				s.builder.Apply(graph.Edge{
					Kind: graph.KindSpouse, PersonA: otherID, PersonB: p.ID,
					Context: m.Context,
					Rel:     graph.Direct{Kind: graph.KindSpouse},
				})
			} else {
				n.couples[m.CoupleID] = p.ID
			}
		}

	case graph.KindChild:
		s.builder.Apply(graph.Edge{
			Kind: graph.KindParent, PersonA: subject.ID, PersonB: p.ID,
			Role: m.Role, Context: m.Context,
			Rel: graph.Direct{Kind: graph.KindParent},
		})
		n.children = append(n.children, p)
		s.applyInlineSpouse(p, m, text, graph.KindDerivedChildSpouse)

	case graph.KindSibling:
		s.builder.Apply(graph.Edge{
			Kind: graph.KindSibling, PersonA: subject.ID, PersonB: p.ID,
			Context: m.Context,
			Rel:     graph.Direct{Kind: graph.KindSibling},
		})
		s.applyInlineSpouse(p, m, text, graph.KindSpouse)

	case graph.KindNieceNephew, graph.KindGreatNieceNephew:
		s.builder.Apply(graph.Edge{
			Kind: m.Kind, PersonA: subject.ID, PersonB: p.ID,
			Context: m.Context,
			Rel:     graph.Direct{Kind: m.Kind},
		})
		s.applyInlineSpouse(p, m, text, graph.KindSpouse)
	}
}

// assignNarrativeParents carries the father and mother named in an obituary
// onto the children listed in the same text. The pairing crosses mention
// boundaries, so it runs once the whole narrative has been read.
func (s *Session) assignNarrativeParents(subject *people.Person, n *narrative) {
	if len(n.children) == 0 || (n.father == nil && n.mother == nil) {
		return
	}
	for _, child := range n.children {
		if n.father != nil {
			s.builder.Apply(graph.Edge{
				Kind: graph.KindParent, PersonA: n.father.ID, PersonB: child.ID,
				Role: "father",
				Rel:  graph.Derived{Kind: graph.KindParent, AnchorID: subject.ID},
			})
		}
		if n.mother != nil {
			s.builder.Apply(graph.Edge{
				Kind: graph.KindParent, PersonA: n.mother.ID, PersonB: child.ID,
				Role: "mother",
				Rel:  graph.Derived{Kind: graph.KindParent, AnchorID: subject.ID},
			})
		}
	}
}

// applyInlineSpouse materializes the "(Ann)" next to a child or sibling
// entry: the spouse takes the entry's surname and the edge records that it
// was derived through the anchor person.
func (s *Session) applyInlineSpouse(anchor *people.Person, m extract.Mention, text string, kind graph.Kind) {
	if m.SpouseName == "" {
		return
	}
	parsed, ok := s.normalizer.Normalize(m.SpouseName, text, anchor.LastName)
	if !ok {
		return
	}
	sp, _ := s.reg.Resolve(parsed)
	s.builder.Apply(graph.Edge{
		Kind: kind, PersonA: anchor.ID, PersonB: sp.ID,
		Context: m.Context,
		Rel:     graph.Derived{Kind: kind, AnchorID: anchor.ID},
	})
}

// Finalize runs the global consistency pass: conflict resolution, caller
// overrides, spouse-parentage derivation, and sibling clique closure. The
// session cannot accept further obituaries afterwards.
func (s *Session) Finalize(overrides []Override) (*Result, error) {
	if s.finalized {
		return nil, ErrSessionFinalized
	}
	s.finalized = true

	resolver := graph.NewResolver(s.cfg.Precedence)
	discarded := resolver.Resolve(s.builder)

	for _, o := range overrides {
		if err := s.applyOverride(o); err != nil {
			return nil, err
		}
	}

	s.builder.AssignParentSlots()
	s.builder.DeriveSpouseParentage()
	s.builder.DeriveSiblingsFromParents()
	s.builder.CloseSiblings()

	res := &Result{
		Persons:   s.reg.All(),
		Edges:     s.builder.Edges(),
		Discarded: discarded,
	}
	slog.Info("kindred: finalized batch",
		"persons", len(res.Persons), "edges", len(res.Edges), "discarded", len(res.Discarded))
	return res, nil
}

// applyOverride asserts or drops one caller-supplied relationship, or merges
// two records into one. Names must resolve against the session's registry.
func (s *Session) applyOverride(o Override) error {
	a, err := s.lookupName(o.PersonA)
	if err != nil {
		return err
	}
	b, err := s.lookupName(o.PersonB)
	if err != nil {
		return err
	}

	if o.Merge {
		s.reg.Absorb(a, b)
		s.builder.Canonicalize()
		slog.Info("kindred: override merged records", "kept", a.ID, "absorbed", b.ID)
		return nil
	}

	if o.Drop {
		var kept []graph.Edge
		for _, e := range s.builder.Edges() {
			if e.Kind == o.Kind && samePair(e, a.ID, b.ID) {
				s.builder.Unapply(e)
				if e.Kind == graph.KindSibling {
					a.RemoveSibling(b.ID)
					b.RemoveSibling(a.ID)
				}
				slog.Info("kindred: override dropped edge", "edge", e.String())
				continue
			}
			kept = append(kept, e)
		}
		s.builder.Replace(kept)
		return nil
	}

	e := graph.Edge{
		Kind: o.Kind, PersonA: a.ID, PersonB: b.ID,
		SelfReported: true,
		Rel:          graph.Direct{Kind: o.Kind},
	}
	s.builder.Apply(e)
	s.builder.Reapply(e)
	return nil
}

func (s *Session) lookupName(name string) (*people.Person, error) {
	parsed, ok := s.normalizer.Normalize(name, "", "")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPersonNotFound, name)
	}
	id, ok := s.reg.Lookup(parsed.First, parsed.Last)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPersonNotFound, name)
	}
	p, _ := s.reg.Get(id)
	return p, nil
}

func samePair(e graph.Edge, a, b string) bool {
	return (e.PersonA == a && e.PersonB == b) || (e.PersonA == b && e.PersonB == a)
}

func fill(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg   Config
	store *store.Store
}

// New creates an engine with the given configuration and opens its store.
func New(cfg Config) (Engine, error) {
	if cfg.FrequencyFactor < 0 {
		return nil, fmt.Errorf("%w: frequency factor must not be negative", ErrInvalidConfig)
	}
	st, err := store.New(cfg.resolveDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &engine{cfg: cfg, store: st}, nil
}

func (e *engine) ProcessBatch(ctx context.Context, subjects []Subject, overrides []Override) (*Result, error) {
	if len(subjects) == 0 {
		return nil, ErrEmptyBatch
	}
	sess, err := NewSession(e.cfg)
	if err != nil {
		return nil, err
	}
	for _, sub := range subjects {
		if _, err := sess.Process(sub); err != nil {
			return nil, fmt.Errorf("processing obituary %q: %w", sub.ID, err)
		}
	}
	res, err := sess.Finalize(overrides)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveBatch(ctx, res.Persons, res.Edges, res.Discarded); err != nil {
		return nil, fmt.Errorf("persisting batch: %w", err)
	}
	return res, nil
}

func (e *engine) Persons(ctx context.Context) ([]*people.Person, error) {
	return e.store.LoadPersons(ctx)
}

func (e *engine) ExportGEDCOM(ctx context.Context, w io.Writer) error {
	persons, err := e.store.LoadPersons(ctx)
	if err != nil {
		return err
	}
	return gedcom.Render(w, persons, time.Now())
}

func (e *engine) Store() *store.Store { return e.store }

func (e *engine) Close() error { return e.store.Close() }
