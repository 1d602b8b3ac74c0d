package api

import (
	"database/sql"
	"fmt"

	"github.com/JaimeStill/catalyst/internal/analyses"
	"github.com/JaimeStill/catalyst/internal/config"
	"github.com/JaimeStill/catalyst/internal/prompts"
	"github.com/JaimeStill/catalyst/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Analyses     analyses.System
	Prompts      prompts.System
	Orchestrator *workflow.Orchestrator
}

// NewDomain creates all domain systems from the API runtime. Without a
// database, prompt overrides fall back to the built-in instructions and
// analyses are returned unsaved.
func NewDomain(runtime *Runtime, cfg *config.Config) (*Domain, error) {
	var (
		conn          *sql.DB
		promptsSystem prompts.System
	)
	if runtime.Database != nil {
		conn = runtime.Database.Connection()
		promptsSystem = prompts.New(conn, runtime.Logger, runtime.Pagination)
	} else {
		promptsSystem = prompts.NewDefaults(runtime.Logger, runtime.Pagination)
	}

	orchestrator, err := workflow.New(&workflow.Runtime{
		Generator:  runtime.Generator,
		Searcher:   runtime.Index,
		Prompts:    promptsSystem,
		Categories: runtime.Reference.Categories,
		Config:     cfg.Pipeline,
		Logger:     runtime.Logger,
		Tracer:     runtime.Telemetry.Tracer("github.com/JaimeStill/catalyst/internal/workflow"),
	})
	if err != nil {
		return nil, fmt.Errorf("workflow init failed: %w", err)
	}

	analysesSystem := analyses.New(
		conn,
		orchestrator,
		cfg.Analyses,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Analyses:     analysesSystem,
		Prompts:      promptsSystem,
		Orchestrator: orchestrator,
	}, nil
}
