// Package store persists resolved family graphs in SQLite. A batch is saved
// atomically: either every person and edge lands, or none do.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kindredgraph/kindred/graph"
	"github.com/kindredgraph/kindred/people"
)

// Store wraps the SQLite database for all kindred persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and initialises
// the schema.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveBatch replaces the stored graph with a finalized batch result in a
// single transaction.
func (s *Store) SaveBatch(ctx context.Context, persons []*people.Person, edges []graph.Edge, discarded []graph.Discarded) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	// Persons are inserted in creation order, so partner and parent columns
	// can point at rows that arrive later in the same batch. Defer the
	// foreign key checks to commit, when every row exists.
	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return fmt.Errorf("deferring foreign keys: %w", err)
	}

	for _, table := range []string{"discarded_edges", "edges", "person_siblings", "person_children", "persons"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for pos, p := range persons {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO persons (id, position, first_name, last_name, maiden_name,
				nickname, suffix, birth_date, death_date, url, obituary_text,
				spouse_id, companion_id, father_id, mother_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, pos, p.FirstName, nullable(p.LastName), nullable(p.MaidenName),
			nullable(p.Nickname), nullable(p.Suffix), nullable(p.BirthDate),
			nullable(p.DeathDate), nullable(p.URL), nullable(p.ObituaryText),
			nullable(p.SpouseID), nullable(p.CompanionID),
			nullable(p.FatherID), nullable(p.MotherID)); err != nil {
			return fmt.Errorf("inserting person %s: %w", p.ID, err)
		}
		for i, c := range p.Children {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO person_children (person_id, child_id, ordinal) VALUES (?, ?, ?)",
				p.ID, c, i); err != nil {
				return fmt.Errorf("inserting child of %s: %w", p.ID, err)
			}
		}
		for i, sib := range p.Siblings {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO person_siblings (person_id, sibling_id, ordinal) VALUES (?, ?, ?)",
				p.ID, sib, i); err != nil {
				return fmt.Errorf("inserting sibling of %s: %w", p.ID, err)
			}
		}
	}

	for _, e := range edges {
		anchor := ""
		if d, ok := e.Rel.(graph.Derived); ok {
			anchor = d.AnchorID
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO edges (kind, person_a, person_b, role, self_reported, context, derived_anchor)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, string(e.Kind), e.PersonA, e.PersonB, nullable(e.Role),
			boolInt(e.SelfReported), nullable(e.Context), nullable(anchor)); err != nil {
			return fmt.Errorf("inserting edge %s: %w", e, err)
		}
	}

	for _, d := range discarded {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO discarded_edges (kind, person_a, person_b, reason, kept_kind, kept_a, kept_b)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, string(d.Edge.Kind), d.Edge.PersonA, d.Edge.PersonB, d.Reason,
			string(d.KeptBy.Kind), d.KeptBy.PersonA, d.KeptBy.PersonB); err != nil {
			return fmt.Errorf("inserting discarded edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// LoadPersons returns every stored person in creation order, with child and
// sibling sets attached.
func (s *Store) LoadPersons(ctx context.Context) ([]*people.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, maiden_name, nickname, suffix,
			birth_date, death_date, url, obituary_text,
			spouse_id, companion_id, father_id, mother_id
		FROM persons ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying persons: %w", err)
	}
	defer rows.Close()

	var persons []*people.Person
	byID := make(map[string]*people.Person)
	for rows.Next() {
		var p people.Person
		var last, maiden, nick, suffix, birth, death, url, obit sql.NullString
		var spouse, companion, father, mother sql.NullString
		if err := rows.Scan(&p.ID, &p.FirstName, &last, &maiden, &nick, &suffix,
			&birth, &death, &url, &obit, &spouse, &companion, &father, &mother); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		p.LastName = last.String
		p.MaidenName = maiden.String
		p.Nickname = nick.String
		p.Suffix = suffix.String
		p.BirthDate = birth.String
		p.DeathDate = death.String
		p.URL = url.String
		p.ObituaryText = obit.String
		p.SpouseID = spouse.String
		p.CompanionID = companion.String
		p.FatherID = father.String
		p.MotherID = mother.String
		persons = append(persons, &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating persons: %w", err)
	}

	if err := s.loadSet(ctx, "person_children", "child_id", byID, func(p *people.Person, id string) {
		p.Children = append(p.Children, id)
	}); err != nil {
		return nil, err
	}
	if err := s.loadSet(ctx, "person_siblings", "sibling_id", byID, func(p *people.Person, id string) {
		p.Siblings = append(p.Siblings, id)
	}); err != nil {
		return nil, err
	}
	return persons, nil
}

func (s *Store) loadSet(ctx context.Context, table, col string, byID map[string]*people.Person, add func(*people.Person, string)) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT person_id, %s FROM %s ORDER BY person_id, ordinal", col, table))
	if err != nil {
		return fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid, other string
		if err := rows.Scan(&pid, &other); err != nil {
			return fmt.Errorf("scanning %s: %w", table, err)
		}
		if p, ok := byID[pid]; ok {
			add(p, other)
		}
	}
	return rows.Err()
}

// LoadEdges returns the stored edges in application order.
func (s *Store) LoadEdges(ctx context.Context) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, person_a, person_b, role, self_reported, context, derived_anchor
		FROM edges ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var kind string
		var role, context, anchor sql.NullString
		var selfReported int
		if err := rows.Scan(&kind, &e.PersonA, &e.PersonB, &role, &selfReported, &context, &anchor); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		e.Kind = graph.Kind(kind)
		e.Role = role.String
		e.SelfReported = selfReported != 0
		e.Context = context.String
		if anchor.String != "" {
			e.Rel = graph.Derived{Kind: e.Kind, AnchorID: anchor.String}
		} else {
			e.Rel = graph.Direct{Kind: e.Kind}
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
