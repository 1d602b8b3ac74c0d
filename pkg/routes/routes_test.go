package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/catalyst/pkg/openapi"
	"github.com/JaimeStill/catalyst/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func analysisGroup() routes.Group {
	return routes.Group{
		Prefix: "/analyses",
		Tags:   []string{"Analyses"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok, OpenAPI: &openapi.Operation{Summary: "List analyses"}},
			{Method: "GET", Pattern: "/{id}", Handler: ok, OpenAPI: &openapi.Operation{Summary: "Find analysis"}},
			{Method: "DELETE", Pattern: "/{id}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/batch",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: ok, OpenAPI: &openapi.Operation{Summary: "Analyze batch"}},
				},
			},
		},
		Schemas: map[string]*openapi.Schema{
			"Analysis": {Type: "object"},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, analysisGroup())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list", "GET", "/analyses", http.StatusOK},
		{"find", "GET", "/analyses/123", http.StatusOK},
		{"delete", "DELETE", "/analyses/123", http.StatusOK},
		{"child group", "POST", "/analyses/batch", http.StatusOK},
		{"wrong method", "PUT", "/analyses/123", http.StatusMethodNotAllowed},
		{"unknown path", "GET", "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDocument(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	routes.Document(spec, "/api", analysisGroup())

	list := spec.Paths["/api/analyses"]
	if list == nil || list.Get == nil {
		t.Fatal("missing GET /api/analyses")
	}
	if list.Get.Summary != "List analyses" {
		t.Errorf("summary: got %s", list.Get.Summary)
	}
	if len(list.Get.Tags) != 1 || list.Get.Tags[0] != "Analyses" {
		t.Errorf("tags: got %v, want [Analyses]", list.Get.Tags)
	}

	item := spec.Paths["/api/analyses/{id}"]
	if item == nil || item.Get == nil {
		t.Fatal("missing GET /api/analyses/{id}")
	}
	if item.Delete != nil {
		t.Error("undocumented DELETE route should not appear")
	}

	batch := spec.Paths["/api/analyses/batch"]
	if batch == nil || batch.Post == nil {
		t.Fatal("missing POST /api/analyses/batch")
	}
	if len(batch.Post.Tags) != 1 || batch.Post.Tags[0] != "Analyses" {
		t.Errorf("child tags: got %v, want inherited [Analyses]", batch.Post.Tags)
	}

	if _, ok := spec.Components.Schemas["Analysis"]; !ok {
		t.Error("group schema not merged into components")
	}
}
