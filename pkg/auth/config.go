package auth

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config enables bearer-token verification against an OIDC issuer.
type Config struct {
	Enabled   bool     `toml:"enabled"`
	IssuerURL string   `toml:"issuer_url"`
	ClientID  string   `toml:"client_id"`
	Public    []string `toml:"public"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Enabled   string
	IssuerURL string
	ClientID  string
	Public    string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.Public != nil {
		c.Public = overlay.Public
	}
}

func (c *Config) loadDefaults() {
	if c.Public == nil {
		c.Public = []string{"/health", "/openapi.json"}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Enabled = b
			}
		}
	}
	if env.IssuerURL != "" {
		if v := os.Getenv(env.IssuerURL); v != "" {
			c.IssuerURL = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.Public != "" {
		if v := os.Getenv(env.Public); v != "" {
			c.Public = nil
			for p := range strings.SplitSeq(v, ",") {
				if p = strings.TrimSpace(p); p != "" {
					c.Public = append(c.Public, p)
				}
			}
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.IssuerURL == "" {
		return fmt.Errorf("issuer_url required when auth is enabled")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}
