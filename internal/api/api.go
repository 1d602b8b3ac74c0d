// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JaimeStill/catalyst/internal/config"
	"github.com/JaimeStill/catalyst/internal/infrastructure"
	"github.com/JaimeStill/catalyst/pkg/auth"
	"github.com/JaimeStill/catalyst/pkg/middleware"
	"github.com/JaimeStill/catalyst/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When auth is enabled the OIDC issuer is discovered here, so ctx bounds
// that request.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime, cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}

	m.Use(
		middleware.WithRequestID,
		middleware.Recover(runtime.Logger),
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
	)

	if cfg.API.Auth.Enabled {
		verifier, err := auth.NewVerifier(ctx, &cfg.API.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth init failed: %w", err)
		}
		m.Use(auth.Middleware(verifier, cfg.API.Auth.Public, runtime.Logger))
	}

	return m, nil
}
