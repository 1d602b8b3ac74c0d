package vector

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
)

const (
	BackendMemory   = "memory"
	BackendPgVector = "pgvector"
	BackendSQLite   = "sqlite"
)

// Config selects and parameterizes the vector backend.
type Config struct {
	Backend    string `toml:"backend"`
	Collection string `toml:"collection"`
	Dimension  int    `toml:"dimension"`
	Path       string `toml:"path"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend    string
	Collection string
	Dimension  string
	Path       string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Collection != "" {
		c.Collection = overlay.Collection
	}
	if overlay.Dimension != 0 {
		c.Dimension = overlay.Dimension
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendPgVector
	}
	if c.Collection == "" {
		c.Collection = "tax_categories"
	}
	if c.Dimension == 0 {
		c.Dimension = 1536
	}
	if c.Path == "" {
		c.Path = "data/vectors.db"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}
	if env.Collection != "" {
		if v := os.Getenv(env.Collection); v != "" {
			c.Collection = v
		}
	}
	if env.Dimension != "" {
		if v := os.Getenv(env.Dimension); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Dimension = n
			}
		}
	}
	if env.Path != "" {
		if v := os.Getenv(env.Path); v != "" {
			c.Path = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory, BackendPgVector, BackendSQLite:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBackend, c.Backend)
	}
	if err := ValidateCollection(c.Collection); err != nil {
		return err
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("dimension must be positive")
	}
	return nil
}

// New opens the configured backend. The pgvector backend requires db.
func New(cfg *Config, db *sql.DB) (Index, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendPgVector:
		if db == nil {
			return nil, fmt.Errorf("pgvector backend requires a database connection")
		}
		return NewPgVector(db), nil
	case BackendSQLite:
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
