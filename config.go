package kindred

import (
	"os"
	"path/filepath"

	"github.com/kindredgraph/kindred/graph"
)

// Config holds all configuration for the extraction engine.
type Config struct {
	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.kindred/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "kindred".
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath is not
	// explicitly set: "home" (default) uses ~/.kindred/, "local" uses the
	// current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// PatternPath points at a YAML pattern-table file. Empty means the
	// built-in tables.
	PatternPath string `json:"pattern_path" yaml:"pattern_path"`

	// FrequencyFactor is the dominance multiple a surname must exceed before
	// a rarer candidate surname is corrected to it. Zero means the default.
	FrequencyFactor int `json:"frequency_factor" yaml:"frequency_factor"`

	// Precedence overrides the conflict-resolution ranking per relationship
	// kind. Nil means the default ranking.
	Precedence map[graph.Kind]int `json:"precedence,omitempty" yaml:"precedence,omitempty"`
}

// DefaultConfig returns a Config with defaults for local use. The database
// is stored in ~/.kindred/kindred.db.
func DefaultConfig() Config {
	return Config{
		DBName:          "kindred",
		StorageDir:      "home",
		FrequencyFactor: 2,
	}
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "kindred"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		return filepath.Join(home, ".kindred", name+".db")
	}
}
