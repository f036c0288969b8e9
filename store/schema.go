package store

// schemaSQL is the DDL for all tables. Relationship columns are nullable:
// NULL means the relationship is unknown, never "not applicable".
const schemaSQL = `
-- Resolved persons. position preserves creation order across batches.
CREATE TABLE IF NOT EXISTS persons (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT,
    maiden_name TEXT,
    nickname TEXT,
    suffix TEXT,
    birth_date TEXT,
    death_date TEXT,
    url TEXT,
    obituary_text TEXT,
    spouse_id TEXT REFERENCES persons(id),
    companion_id TEXT REFERENCES persons(id),
    father_id TEXT REFERENCES persons(id),
    mother_id TEXT REFERENCES persons(id)
);

-- Child sets, one row per (parent, child), insertion order kept.
CREATE TABLE IF NOT EXISTS person_children (
    person_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
    child_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (person_id, child_id)
);

-- Sibling cliques, stored per member for symmetric reads.
CREATE TABLE IF NOT EXISTS person_siblings (
    person_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
    sibling_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (person_id, sibling_id)
);

-- Accepted relationship edges in application order.
CREATE TABLE IF NOT EXISTS edges (
    id INTEGER PRIMARY KEY,
    kind TEXT NOT NULL,
    person_a TEXT NOT NULL,
    person_b TEXT NOT NULL,
    role TEXT,
    self_reported INTEGER NOT NULL DEFAULT 0,
    context TEXT,
    derived_anchor TEXT
);

-- Audit trail of edges removed by conflict resolution.
CREATE TABLE IF NOT EXISTS discarded_edges (
    id INTEGER PRIMARY KEY,
    kind TEXT NOT NULL,
    person_a TEXT NOT NULL,
    person_b TEXT NOT NULL,
    reason TEXT NOT NULL,
    kept_kind TEXT,
    kept_a TEXT,
    kept_b TEXT
);

CREATE INDEX IF NOT EXISTS idx_persons_name ON persons(last_name, first_name);
CREATE INDEX IF NOT EXISTS idx_edges_pair ON edges(person_a, person_b);
`
