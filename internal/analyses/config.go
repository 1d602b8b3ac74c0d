package analyses

import (
	"fmt"
	"os"
	"strconv"
)

// Config bounds batch analysis.
type Config struct {
	BatchConcurrency int `toml:"batch_concurrency"`
	MaxBatchSize     int `toml:"max_batch_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BatchConcurrency string
	MaxBatchSize     string
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
	if overlay.BatchConcurrency != 0 {
		c.BatchConcurrency = overlay.BatchConcurrency
	}
	if overlay.MaxBatchSize != 0 {
		c.MaxBatchSize = overlay.MaxBatchSize
	}
}

func (c *Config) loadDefaults() {
	if c.BatchConcurrency == 0 {
		c.BatchConcurrency = 4
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 50
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BatchConcurrency != "" {
		if v := os.Getenv(env.BatchConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.BatchConcurrency = n
			}
		}
	}
	if env.MaxBatchSize != "" {
		if v := os.Getenv(env.MaxBatchSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxBatchSize = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be positive")
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max_batch_size must be positive")
	}
	return nil
}
