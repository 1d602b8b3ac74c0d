package main

import (
	"context"
	"time"

	"github.com/JaimeStill/catalyst/internal/api"
	"github.com/JaimeStill/catalyst/internal/config"
	"github.com/JaimeStill/catalyst/internal/infrastructure"
)

// Server wires the infrastructure, the API module, and the HTTP listener.
type Server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

// NewServer builds every subsystem but starts none of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(ctx, cfg, infra)
	if err != nil {
		infra.Close()
		return nil, err
	}

	router := buildRouter(infra)
	if err := router.Mount(apiModule); err != nil {
		infra.Close()
		return nil, err
	}

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"topology", cfg.Pipeline.Topology,
	)

	return &Server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start runs startup hooks and begins serving. Listener failures arrive on errs.
func (s *Server) Start(errs chan<- error) error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	s.http.Start(s.infra.Lifecycle, errs)

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown cancels the lifecycle and waits for shutdown hooks.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
