package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"
	ProviderAnthropic = "anthropic"

	AuthAPIKey            = "api_key"
	AuthDefaultCredential = "default_credential"
)

// Config holds generation service connection parameters.
type Config struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	APIVersion string `toml:"api_version"`
	AuthType   string `toml:"auth_type"`
	MaxRetries int    `toml:"max_retries"`
	Timeout    string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	APIVersion string
	AuthType   string
	MaxRetries string
	Timeout    string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.AuthType != "" {
		c.AuthType = overlay.AuthType
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.AuthType == "" {
		c.AuthType = AuthAPIKey
	}
	if c.APIVersion == "" && c.Provider == ProviderAzure {
		c.APIVersion = "2024-10-21"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if c.Timeout == "" {
		c.Timeout = "120s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIVersion != "" {
		if v := os.Getenv(env.APIVersion); v != "" {
			c.APIVersion = v
		}
	}
	if env.AuthType != "" {
		if v := os.Getenv(env.AuthType); v != "" {
			c.AuthType = v
		}
	}
	if env.MaxRetries != "" {
		if v := os.Getenv(env.MaxRetries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxRetries = n
			}
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	case ProviderAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("base_url required for azure provider")
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}
	if c.AuthType != AuthAPIKey && c.AuthType != AuthDefaultCredential {
		return fmt.Errorf("invalid auth_type: %s", c.AuthType)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// EmbeddingConfig holds embedding service parameters. Empty APIKey and
// BaseURL fall back to the generation service values when the provider is
// OpenAI compatible.
type EmbeddingConfig struct {
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	MaxRetries int    `toml:"max_retries"`
}

// EmbeddingEnv maps embedding config fields to environment variable names.
type EmbeddingEnv struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EmbeddingConfig) Finalize(env *EmbeddingEnv) error {
	if c.Model == "" {
		c.Model = "text-embedding-ada-002"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if env != nil {
		if v := os.Getenv(env.Model); env.Model != "" && v != "" {
			c.Model = v
		}
		if v := os.Getenv(env.APIKey); env.APIKey != "" && v != "" {
			c.APIKey = v
		}
		if v := os.Getenv(env.BaseURL); env.BaseURL != "" && v != "" {
			c.BaseURL = v
		}
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *EmbeddingConfig) Merge(overlay *EmbeddingConfig) {
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
}
