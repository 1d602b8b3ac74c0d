package taxonomy

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/catalyst/pkg/handlers"
	"github.com/JaimeStill/catalyst/pkg/openapi"
	"github.com/JaimeStill/catalyst/pkg/routes"
)

// Handler serves the reference data read-only.
type Handler struct {
	ref    *Reference
	logger *slog.Logger
}

// CategoriesResponse wraps the taxonomy for the categories endpoint.
type CategoriesResponse struct {
	Categories Categories `json:"categories"`
}

// NewHandler creates a Handler over ref.
func NewHandler(ref *Reference, logger *slog.Logger) *Handler {
	return &Handler{
		ref:    ref,
		logger: logger.With("handler", "taxonomy"),
	}
}

// Routes returns the route group for reference data endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"Reference"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "/categories", Handler: h.Categories,
				OpenAPI: &openapi.Operation{
					Summary: "Category taxonomy",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Main categories mapped to subcategories", "CategoriesResponse"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/tax-categories", Handler: h.TaxCategories,
				OpenAPI: &openapi.Operation{
					Summary: "Tax category reference list",
					Responses: map[int]*openapi.Response{
						200: {Description: "Tax category records"},
					},
				},
			},
		},
		Schemas: map[string]*openapi.Schema{
			"CategoriesResponse": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"categories": openapi.MapOf(
						&openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}},
						"Main category name to subcategory names",
					),
				},
			},
		},
	}
}

// Categories returns the category taxonomy.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, CategoriesResponse{Categories: h.ref.Categories})
}

// TaxCategories returns the tax category records.
func (h *Handler) TaxCategories(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.ref.TaxCategories)
}
