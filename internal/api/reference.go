package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"slices"

	"github.com/JaimeStill/catalyst/pkg/handlers"
	"github.com/JaimeStill/catalyst/pkg/openapi"
	"github.com/JaimeStill/catalyst/pkg/routes"
	"github.com/JaimeStill/catalyst/pkg/storage"
)

// referenceHandler serves the raw reference data blobs the service loaded at
// startup. Only the configured keys are exposed.
type referenceHandler struct {
	store  storage.System
	keys   []string
	logger *slog.Logger
}

func newReferenceHandler(
	store storage.System,
	keys []string,
	logger *slog.Logger,
) *referenceHandler {
	return &referenceHandler{
		store:  store,
		keys:   keys,
		logger: logger.With("handler", "reference"),
	}
}

func (h *referenceHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/reference",
		Tags:   []string{"Reference"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download, OpenAPI: &openapi.Operation{
				Summary:    "Download a reference data file",
				Parameters: []*openapi.Parameter{openapi.KeyParam("key", "Reference data key")},
				Responses: map[int]*openapi.Response{
					200: {Description: "File contents"},
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

func (h *referenceHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !slices.Contains(h.keys, key) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return
	}

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
