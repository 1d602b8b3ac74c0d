package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/catalyst/internal/config"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/pkg/openapi"
	"github.com/JaimeStill/catalyst/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		NewHealthHandler(
			runtime.Index,
			runtime.Collection,
			runtime.Version,
			domain.Orchestrator.Topology(),
			runtime.Logger,
		).Routes(),
		domain.Analyses.Handler(runtime.MaxBodyBytes).Routes(),
		taxonomy.NewHandler(runtime.Reference, runtime.Logger).Routes(),
		newReferenceHandler(
			runtime.Storage,
			[]string{cfg.Reference.CategoriesFile, cfg.Reference.TaxCategoriesFile},
			runtime.Logger,
		).routes(),
		domain.Prompts.Handler().Routes(),
	}

	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	routes.Document(spec, "", groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
