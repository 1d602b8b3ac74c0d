// Package config loads the service configuration from config.toml, an
// optional per-environment overlay, and CATALYST_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/catalyst/internal/analyses"
	"github.com/JaimeStill/catalyst/internal/index"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/internal/workflow"
	"github.com/JaimeStill/catalyst/pkg/cache"
	"github.com/JaimeStill/catalyst/pkg/database"
	"github.com/JaimeStill/catalyst/pkg/llm"
	"github.com/JaimeStill/catalyst/pkg/storage"
	"github.com/JaimeStill/catalyst/pkg/telemetry"
	"github.com/JaimeStill/catalyst/pkg/vector"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCatalystEnv             = "CATALYST_ENV"
	EnvCatalystShutdownTimeout = "CATALYST_SHUTDOWN_TIMEOUT"
	EnvCatalystVersion         = "CATALYST_VERSION"
)

// Config is the root configuration for the Catalyst service.
type Config struct {
	Server     ServerConfig        `toml:"server"`
	Logging    LoggingConfig       `toml:"logging"`
	Database   database.Config     `toml:"database"`
	Storage    storage.Config      `toml:"storage"`
	API        APIConfig           `toml:"api"`
	Generation llm.Config          `toml:"generation"`
	Embedding  llm.EmbeddingConfig `toml:"embedding"`
	Vector     vector.Config       `toml:"vector"`
	Index      index.Config        `toml:"index"`
	Pipeline   workflow.Config     `toml:"pipeline"`
	Reference  taxonomy.Config     `toml:"reference"`
	Cache      cache.Config        `toml:"cache"`
	Telemetry  telemetry.Config    `toml:"telemetry"`
	Analyses   analyses.Config     `toml:"analyses"`

	ShutdownTimeout string `toml:"shutdown_timeout"`
	Version         string `toml:"version"`
}

// Env returns the CATALYST_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCatalystEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile is Load with an explicit base config path. The overlay is looked
// up next to the working directory as config.<env>.toml.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Generation.Merge(&overlay.Generation)
	c.Embedding.Merge(&overlay.Embedding)
	c.Vector.Merge(&overlay.Vector)
	c.Index.Merge(&overlay.Index)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Reference.Merge(&overlay.Reference)
	c.Cache.Merge(&overlay.Cache)
	c.Telemetry.Merge(&overlay.Telemetry)
	c.Analyses.Merge(&overlay.Analyses)
}

// Finalize applies defaults, environment variable overrides, and validation
// to the root config and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Finalize},
		{"logging", c.Logging.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"generation", func() error { return c.Generation.Finalize(generationEnv) }},
		{"embedding", func() error { return c.Embedding.Finalize(embeddingEnv) }},
		{"vector", func() error { return c.Vector.Finalize(vectorEnv) }},
		{"index", func() error { return c.Index.Finalize(indexEnv) }},
		{"pipeline", c.finalizePipeline},
		{"reference", func() error { return c.Reference.Finalize(referenceEnv) }},
		{"cache", func() error { return c.Cache.Finalize(cacheEnv) }},
		{"telemetry", func() error { return c.Telemetry.Finalize(telemetryEnv) }},
		{"analyses", func() error { return c.Analyses.Finalize(analysesEnv) }},
	}

	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// The pipeline searches the collection the vector section names unless it
// sets its own.
func (c *Config) finalizePipeline() error {
	if c.Pipeline.Collection == "" {
		c.Pipeline.Collection = c.Vector.Collection
	}
	return c.Pipeline.Finalize(pipelineEnv)
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCatalystShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCatalystVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCatalystEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
