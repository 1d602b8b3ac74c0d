package index

import (
	"fmt"
	"os"
	"strconv"
)

// Config controls how records are uploaded.
type Config struct {
	BatchSize   int `toml:"batch_size"`
	Concurrency int `toml:"concurrency"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BatchSize   string
	Concurrency string
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
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
}

func (c *Config) loadDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BatchSize != "" {
		if v := os.Getenv(env.BatchSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.BatchSize = n
			}
		}
	}
	if env.Concurrency != "" {
		if v := os.Getenv(env.Concurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Concurrency = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	return nil
}
