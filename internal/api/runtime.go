package api

import (
	"github.com/JaimeStill/catalyst/internal/config"
	"github.com/JaimeStill/catalyst/internal/infrastructure"
	"github.com/JaimeStill/catalyst/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination   pagination.Config
	MaxBodyBytes int64
	Collection   string
	Version      string
}

// NewRuntime creates an API runtime with a module-scoped logger. The shared
// clients are reused, not rebuilt.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		MaxBodyBytes:   cfg.API.MaxBodySizeBytes(),
		Collection:     cfg.Pipeline.Collection,
		Version:        cfg.Version,
	}
}
