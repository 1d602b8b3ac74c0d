package prompts

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

// Handler provides HTTP endpoints for prompt operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// StageText is the response type for stage-scoped content endpoints.
type StageText struct {
	Stage   Stage  `json:"stage"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	id := []*openapi.Parameter{openapi.PathParam("id", "Prompt UUID")}
	stage := []*openapi.Parameter{openapi.PathParam("stage", "Generation stage")}

	return routes.Group{
		Prefix:      "/prompts",
		Tags:        []string{"Prompts"},
		Description: "Runtime overrides of stage instructions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List prompt overrides",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("page", "integer", "Page number", false),
					openapi.QueryParam("page_size", "integer", "Results per page", false),
					openapi.QueryParam("search", "string", "Search name and description", false),
					openapi.QueryParam("sort", "string", "Sort fields, e.g. -Name", false),
					openapi.QueryParam("stage", "string", "Filter by stage", false),
					openapi.QueryParam("active", "boolean", "Filter by active flag", false),
				},
				Responses: map[int]*openapi.Response{
					200: {Description: "Page of prompts"},
					503: openapi.ResponseRef("ServiceUnavailable"),
				},
			}},
			{Method: "GET", Pattern: "/stages", Handler: h.Stages, OpenAPI: &openapi.Operation{
				Summary:   "List generation stages",
				Responses: map[int]*openapi.Response{200: {Description: "Stage names"}},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Find a prompt override",
				Parameters: id,
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Prompt", "Prompt"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "GET", Pattern: "/{stage}/instructions", Handler: h.Instructions, OpenAPI: &openapi.Operation{
				Summary:    "Effective instructions for a stage",
				Parameters: stage,
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Stage instructions", "StageText"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
			{Method: "GET", Pattern: "/{stage}/spec", Handler: h.Spec, OpenAPI: &openapi.Operation{
				Summary:    "Output contract for a stage",
				Parameters: stage,
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Stage output contract", "StageText"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: &openapi.Operation{
				Summary:     "Create a prompt override",
				RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Created prompt", "Prompt"),
					400: openapi.ResponseRef("BadRequest"),
					409: openapi.ResponseRef("Conflict"),
					503: openapi.ResponseRef("ServiceUnavailable"),
				},
			}},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: &openapi.Operation{
				Summary:     "Update a prompt override",
				Parameters:  id,
				RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Updated prompt", "Prompt"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
				Summary:    "Delete a prompt override",
				Parameters: id,
				Responses: map[int]*openapi.Response{
					204: {Description: "Deleted"},
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search prompt overrides",
				RequestBody: openapi.RequestBodyJSON("PageRequest", true),
				Responses:   map[int]*openapi.Response{200: {Description: "Page of prompts"}},
			}},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.Activate, OpenAPI: &openapi.Operation{
				Summary:    "Make a prompt the active override for its stage",
				Parameters: id,
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Activated prompt", "Prompt"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.Deactivate, OpenAPI: &openapi.Operation{
				Summary:    "Revert a stage to its default instructions",
				Parameters: id,
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Deactivated prompt", "Prompt"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
		Schemas: map[string]*openapi.Schema{
			"Prompt": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"id":           {Type: "string", Format: "uuid"},
					"name":         {Type: "string"},
					"stage":        {Type: "string"},
					"instructions": {Type: "string"},
					"description":  {Type: "string"},
					"active":       {Type: "boolean"},
				},
			},
			"PromptCommand": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"name":         {Type: "string"},
					"stage":        {Type: "string", Example: "keywords"},
					"instructions": {Type: "string"},
					"description":  {Type: "string"},
				},
				Required: []string{"name", "stage", "instructions"},
			},
			"StageText": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"stage":   {Type: "string"},
					"role":    {Type: "string"},
					"content": {Type: "string"},
				},
			},
		},
	}
}

// List returns a paginated list of prompts with optional query parameter filters.
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

// Stages returns the generation stages.
func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

// Find returns a single prompt by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	prompt, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, prompt)
}

// Instructions returns the effective instructions for a stage along with
// its system role.
func (h *Handler) Instructions(w http.ResponseWriter, r *http.Request) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	text, err := h.sys.Instructions(r.Context(), stage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	role, _ := Role(stage)
	handlers.RespondJSON(w, http.StatusOK, StageText{Stage: stage, Role: role, Content: text})
}

// Spec returns the fixed output contract for a stage.
func (h *Handler) Spec(w http.ResponseWriter, r *http.Request) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	text, err := h.sys.Spec(r.Context(), stage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, StageText{Stage: stage, Content: text})
}

// Create processes a JSON body to create a new prompt override.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, maxBodyBytes, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	prompt, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, prompt)
}

// Update processes a JSON body to update an existing prompt override.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd UpdateCommand
	if err := handlers.DecodeJSON(r, maxBodyBytes, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	prompt, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, prompt)
}

// Delete removes a prompt by its UUID path parameter.
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

// Search accepts a JSON body with pagination and filter criteria and returns matching prompts.
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

// Activate sets a prompt as the active override for its stage,
// deactivating any other active prompt for the same stage.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	prompt, err := h.sys.Activate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, prompt)
}

// Deactivate clears the active flag on a prompt so its stage falls back
// to the built-in instructions.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	prompt, err := h.sys.Deactivate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, prompt)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
