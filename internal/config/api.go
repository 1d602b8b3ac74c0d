package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/catalyst/pkg/auth"
	"github.com/JaimeStill/catalyst/pkg/formatting"
	"github.com/JaimeStill/catalyst/pkg/middleware"
	"github.com/JaimeStill/catalyst/pkg/openapi"
	"github.com/JaimeStill/catalyst/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CATALYST_CORS_ENABLED",
	Origins:          "CATALYST_CORS_ORIGINS",
	AllowedMethods:   "CATALYST_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CATALYST_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CATALYST_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CATALYST_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "CATALYST_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "CATALYST_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "CATALYST_OPENAPI_TITLE",
	Description: "CATALYST_OPENAPI_DESCRIPTION",
}

var authEnv = &auth.Env{
	Enabled:   "CATALYST_AUTH_ENABLED",
	IssuerURL: "CATALYST_AUTH_ISSUER_URL",
	ClientID:  "CATALYST_AUTH_CLIENT_ID",
	Public:    "CATALYST_AUTH_PUBLIC",
}

// APIConfig holds API routing, CORS, pagination, documentation, and
// authentication settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
	OpenAPI     openapi.Config        `toml:"openapi"`
	Auth        auth.Config           `toml:"auth"`
}

// MaxBodySizeBytes returns the request body limit for batch analysis.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 16 * 1024 * 1024 // 16MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Auth.Merge(&overlay.Auth)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "16MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("CATALYST_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("CATALYST_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}
