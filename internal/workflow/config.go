package workflow

import (
	"fmt"
	"os"
	"strconv"
)

// Topology names accepted by Config.Topology.
const (
	TopologyFine     = "fine"
	TopologyCombined = "combined"
)

// DefaultTemperature applies when no temperature is configured.
const DefaultTemperature = 0.3

// Config holds the generation and retrieval parameters every analysis uses.
// Temperature is a pointer so an explicit 0 stays distinct from unset.
type Config struct {
	Topology    string   `toml:"topology"`
	Collection  string   `toml:"collection"`
	TopK        int      `toml:"top_k"`
	Temperature *float64 `toml:"temperature"`
	MaxTokens   int64    `toml:"max_tokens"`
	KeywordMin  int      `toml:"keyword_min"`
	KeywordMax  int      `toml:"keyword_max"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Topology    string
	Collection  string
	TopK        string
	Temperature string
	MaxTokens   string
	KeywordMin  string
	KeywordMax  string
}

// SamplingTemperature returns the configured temperature or
// DefaultTemperature when none is set.
func (c *Config) SamplingTemperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
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
	if overlay.Topology != "" {
		c.Topology = overlay.Topology
	}
	if overlay.Collection != "" {
		c.Collection = overlay.Collection
	}
	if overlay.TopK != 0 {
		c.TopK = overlay.TopK
	}
	if overlay.Temperature != nil {
		t := *overlay.Temperature
		c.Temperature = &t
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.KeywordMin != 0 {
		c.KeywordMin = overlay.KeywordMin
	}
	if overlay.KeywordMax != 0 {
		c.KeywordMax = overlay.KeywordMax
	}
}

func (c *Config) loadDefaults() {
	if c.Topology == "" {
		c.Topology = TopologyFine
	}
	if c.Collection == "" {
		c.Collection = "tax_categories"
	}
	if c.TopK == 0 {
		c.TopK = 5
	}
	if c.Temperature == nil {
		c.Temperature = new(float64(DefaultTemperature))
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2000
	}
	if c.KeywordMin == 0 {
		c.KeywordMin = 15
	}
	if c.KeywordMax == 0 {
		c.KeywordMax = 30
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Topology != "" {
		if v := os.Getenv(env.Topology); v != "" {
			c.Topology = v
		}
	}
	if env.Collection != "" {
		if v := os.Getenv(env.Collection); v != "" {
			c.Collection = v
		}
	}
	if env.TopK != "" {
		if v := os.Getenv(env.TopK); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.TopK = n
			}
		}
	}
	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Temperature = &f
			}
		}
	}
	if env.MaxTokens != "" {
		if v := os.Getenv(env.MaxTokens); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				c.MaxTokens = n
			}
		}
	}
	if env.KeywordMin != "" {
		if v := os.Getenv(env.KeywordMin); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.KeywordMin = n
			}
		}
	}
	if env.KeywordMax != "" {
		if v := os.Getenv(env.KeywordMax); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.KeywordMax = n
			}
		}
	}
}

func (c *Config) validate() error {
	if _, err := TopologyFor(c.Topology); err != nil {
		return err
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive")
	}
	if t := c.SamplingTemperature(); t < 0 || t > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.KeywordMin < 1 {
		return fmt.Errorf("keyword_min must be positive")
	}
	if c.KeywordMax < c.KeywordMin {
		return fmt.Errorf("keyword_max (%d) must be >= keyword_min (%d)", c.KeywordMax, c.KeywordMin)
	}
	return nil
}
