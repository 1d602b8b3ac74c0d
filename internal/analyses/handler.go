package analyses

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/catalyst/pkg/handlers"
	"github.com/JaimeStill/catalyst/pkg/openapi"
	"github.com/JaimeStill/catalyst/pkg/pagination"
	"github.com/JaimeStill/catalyst/pkg/routes"
)

const maxBodyBytes = 1 << 20

// Handler provides HTTP endpoints for analysis operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxBatchBytes int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// BatchResponse wraps the per-product outcomes of a batch analysis.
type BatchResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
// maxBatchBytes limits batch request bodies.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBatchBytes int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "analyses"),
		pagination:    pagination,
		maxBatchBytes: maxBatchBytes,
	}
}

// Routes returns the route group definition for analysis endpoints.
// The single-product endpoint sits at the root of the group so it keeps
// its /analyze-product path alongside the /analyses history routes.
func (h *Handler) Routes() routes.Group {
	id := []*openapi.Parameter{openapi.PathParam("id", "Analysis UUID")}

	return routes.Group{
		Tags:        []string{"Analyses"},
		Description: "Product analysis and analysis history",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/analyze-product", Handler: h.AnalyzeProduct, OpenAPI: &openapi.Operation{
				Summary:     "Analyze a catalog record",
				Description: "Runs the enrichment pipeline and returns its output with the processing time.",
				RequestBody: openapi.RequestBodyJSON("Product", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Product analysis", "ProductAnalysis"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
		},
		Children: []routes.Group{{
			Prefix: "/analyses",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
					Summary: "List stored analyses",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("page", "integer", "Page number", false),
						openapi.QueryParam("page_size", "integer", "Results per page", false),
						openapi.QueryParam("search", "string", "Search item number, name pattern and tax code name", false),
						openapi.QueryParam("sort", "string", "Sort fields, e.g. -CreatedAt", false),
						openapi.QueryParam("item_number", "string", "Filter by item number (contains)", false),
						openapi.QueryParam("tax_code", "string", "Filter by tax code", false),
						openapi.QueryParam("main_category", "string", "Filter by main category", false),
						openapi.QueryParam("topology", "string", "Filter by pipeline topology", false),
						openapi.QueryParam("min_confidence", "number", "Minimum tax code confidence", false),
					},
					Responses: map[int]*openapi.Response{
						200: {Description: "Page of analyses"},
						503: openapi.ResponseRef("ServiceUnavailable"),
					},
				}},
				{Method: "POST", Pattern: "", Handler: h.Analyze, OpenAPI: &openapi.Operation{
					Summary:     "Analyze and store a catalog record",
					RequestBody: openapi.RequestBodyJSON("Product", true),
					Responses: map[int]*openapi.Response{
						201: openapi.ResponseJSON("Stored analysis", "Analysis"),
						400: openapi.ResponseRef("BadRequest"),
					},
				}},
				{Method: "POST", Pattern: "/batch", Handler: h.AnalyzeBatch, OpenAPI: &openapi.Operation{
					Summary:     "Analyze a batch of catalog records",
					RequestBody: openapi.RequestBodyJSON("BatchRequest", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Per-product outcomes", "BatchResponse"),
						400: openapi.ResponseRef("BadRequest"),
					},
				}},
				{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
					Summary:    "Find a stored analysis",
					Parameters: id,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Analysis", "Analysis"),
						404: openapi.ResponseRef("NotFound"),
						503: openapi.ResponseRef("ServiceUnavailable"),
					},
				}},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
					Summary:    "Delete a stored analysis",
					Parameters: id,
					Responses: map[int]*openapi.Response{
						204: {Description: "Deleted"},
						404: openapi.ResponseRef("NotFound"),
						503: openapi.ResponseRef("ServiceUnavailable"),
					},
				}},
				{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
					Summary:     "Search stored analyses",
					RequestBody: openapi.RequestBodyJSON("PageRequest", true),
					Responses:   map[int]*openapi.Response{200: {Description: "Page of analyses"}},
				}},
			},
		}},
		Schemas: schemas(),
	}
}

// AnalyzeProduct runs the pipeline for the posted record and returns the
// output projection with the processing time.
func (h *Handler) AnalyzeProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyze(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ProductAnalysis{
		Result:                a.Result(),
		ProcessingTimeSeconds: a.ProcessingTimeSeconds,
	})
}

// Analyze runs the pipeline for the posted record and returns the stored analysis.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyze(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, a)
}

// AnalyzeBatch analyzes every product in the request body.
func (h *Handler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := handlers.DecodeJSON(r, h.maxBatchBytes, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	items, err := h.sys.AnalyzeBatch(r.Context(), req.Products)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	resp := BatchResponse{Items: items}
	for _, item := range items {
		if item.Error != "" {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

// List returns a paginated list of analyses with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single analysis by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	a, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Delete removes an analysis by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching analyses.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(r, maxBodyBytes, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) (*Analysis, bool) {
	var product map[string]any
	if err := handlers.DecodeJSON(r, maxBodyBytes, &product); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return nil, false
	}

	a, err := h.sys.Analyze(r.Context(), product)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return a, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func schemas() map[string]*openapi.Schema {
	strs := &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}
	result := map[string]*openapi.Schema{
		"name_pattern":        {Type: "string"},
		"product_summary":     {Type: "string"},
		"product_description": {Type: "string"},
		"keywords":            strs,
		"category":            openapi.SchemaRef("Category"),
		"tax_code":            {Type: "string"},
		"tax_code_name":       {Type: "string"},
		"tax_code_confidence": {Type: "number"},
		"tax_code_reasoning":  {Type: "string"},
		"total_tokens":        {Type: "integer"},
		"processing_steps":    strs,
		"errors":              strs,
		"topology":            {Type: "string"},
	}

	product := map[string]*openapi.Schema{"processing_time_seconds": {Type: "number"}}
	analysis := map[string]*openapi.Schema{
		"id":                      {Type: "string", Format: "uuid"},
		"item_number":             {Type: "string"},
		"product":                 {Type: "object"},
		"processing_time_seconds": {Type: "number"},
		"created_at":              {Type: "string", Format: "date-time"},
		"persisted":               {Type: "boolean"},
	}
	for k, v := range result {
		product[k] = v
		analysis[k] = v
	}

	return map[string]*openapi.Schema{
		"Product": openapi.MapOf(
			&openapi.Schema{},
			"Catalog record; field names in either \"Item Num\" or \"Item_Num\" form",
		),
		"ProductAnalysis": {Type: "object", Properties: product},
		"Analysis":        {Type: "object", Properties: analysis},
		"BatchRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"products": {Type: "array", Items: openapi.SchemaRef("Product")},
			},
			Required: []string{"products"},
		},
		"BatchResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"items": {Type: "array", Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"index":    {Type: "integer"},
						"analysis": openapi.SchemaRef("Analysis"),
						"error":    {Type: "string"},
					},
				}},
				"succeeded": {Type: "integer"},
				"failed":    {Type: "integer"},
			},
		},
	}
}
