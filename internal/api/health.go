package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/catalyst/pkg/handlers"
	"github.com/JaimeStill/catalyst/pkg/openapi"
	"github.com/JaimeStill/catalyst/pkg/routes"
)

// IndexChecker reports whether a vector collection exists.
type IndexChecker interface {
	Connected(ctx context.Context, collection string) (bool, error)
}

// Health is the body of the health endpoint.
type Health struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	IndexConnected bool   `json:"index_connected"`
	Topology       string `json:"topology"`
	Error          string `json:"error,omitempty"`
}

// HealthHandler serves the service health endpoint.
type HealthHandler struct {
	index      IndexChecker
	collection string
	version    string
	topology   string
	logger     *slog.Logger
}

// NewHealthHandler creates a HealthHandler that checks collection on index.
func NewHealthHandler(index IndexChecker, collection, version, topology string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		index:      index,
		collection: collection,
		version:    version,
		topology:   topology,
		logger:     logger.With("handler", "health"),
	}
}

// Routes returns the route group for the health endpoint.
func (h *HealthHandler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"Health"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/health", Handler: h.Health, OpenAPI: &openapi.Operation{
				Summary:     "Service health",
				Description: "Reports the running version, pipeline topology, and whether the tax category collection exists.",
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Healthy", "Health"),
					503: openapi.ResponseJSON("Index check failed", "Health"),
				},
			}},
		},
		Schemas: map[string]*openapi.Schema{
			"Health": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"status":          {Type: "string", Enum: []any{"healthy", "unhealthy"}},
					"version":         {Type: "string"},
					"index_connected": {Type: "boolean"},
					"topology":        {Type: "string"},
					"error":           {Type: "string"},
				},
			},
		},
	}
}

// Health reports service health. A failed index check responds 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := Health{
		Status:   "healthy",
		Version:  h.version,
		Topology: h.topology,
	}

	ok, err := h.index.Connected(r.Context(), h.collection)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "index check failed", "collection", h.collection, "error", err)
		body.Status = "unhealthy"
		body.Error = err.Error()
		handlers.RespondJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	body.IndexConnected = ok
	handlers.RespondJSON(w, http.StatusOK, body)
}
