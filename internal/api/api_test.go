package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/catalyst/internal/api"
	"github.com/JaimeStill/catalyst/internal/config"
	"github.com/JaimeStill/catalyst/internal/infrastructure"
	"github.com/JaimeStill/catalyst/pkg/module"
	"github.com/JaimeStill/catalyst/pkg/routes"
)

const categories = `{"Safety & PPE": ["Respirators", "Gloves"], "Medical Supplies": ["Bandages"]}`

func newRouter(t *testing.T) *module.Router {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "product_categories.json"), []byte(categories), 0o644); err != nil {
		t.Fatalf("write categories: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf(`
version = "1.2.3"

[storage]
backend = "local"
root = %q

[generation]
provider = "openai"
api_key = "sk-test"

[vector]
backend = "memory"

[cache]
backend = "none"

[pipeline]
topology = "combined"
`, root)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	infra, err := infrastructure.NewWithWriter(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}
	t.Cleanup(infra.Close)

	m, err := api.NewModule(context.Background(), cfg, infra)
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}

	router := module.NewRouter()
	if err := router.Mount(m); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestModuleRoutes(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"health", "/api/health", http.StatusOK},
		{"openapi", "/api/openapi.json", http.StatusOK},
		{"categories", "/api/categories", http.StatusOK},
		{"tax categories", "/api/tax-categories", http.StatusOK},
		{"prompt stages", "/api/prompts/stages", http.StatusOK},
		{"reference file", "/api/reference/product_categories.json", http.StatusOK},
		{"unlisted reference file", "/api/reference/config.toml", http.StatusNotFound},
		{"missing reference file", "/api/reference/tax_categories.json", http.StatusNotFound},
		{"history without database", "/api/analyses", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, tt.path)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestModuleHealth(t *testing.T) {
	rec := get(newRouter(t), "/api/health")

	var body api.Health
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := api.Health{Status: "healthy", Version: "1.2.3", Topology: "combined"}
	if body != want {
		t.Errorf("health = %+v, want %+v", body, want)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request id header not set")
	}
}

func TestModuleCategories(t *testing.T) {
	rec := get(newRouter(t), "/api/categories")

	var body struct {
		Categories map[string][]string `json:"categories"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body.Categories["Safety & PPE"]; len(got) != 2 {
		t.Errorf("Safety & PPE = %v", got)
	}
}

func TestModuleOpenAPI(t *testing.T) {
	rec := get(newRouter(t), "/api/openapi.json")

	var spec struct {
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %+v", spec.Servers)
	}
	for _, path := range []string{
		"/health",
		"/analyze-product",
		"/analyses",
		"/categories",
		"/tax-categories",
		"/prompts",
		"/reference/{key}",
	} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("path %s not documented", path)
		}
	}
}

type stubIndex struct {
	connected bool
	err       error
}

func (s stubIndex) Connected(context.Context, string) (bool, error) {
	return s.connected, s.err
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		index      stubIndex
		wantCode   int
		wantStatus string
		wantIndex  bool
	}{
		{"connected", stubIndex{connected: true}, http.StatusOK, "healthy", true},
		{"collection missing", stubIndex{}, http.StatusOK, "healthy", false},
		{"check failed", stubIndex{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy", false},
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := api.NewHealthHandler(tt.index, "tax_categories", "0.1.0", "fine", logger)
			mux := http.NewServeMux()
			routes.Register(mux, h.Routes())

			rec := get(mux, "/health")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}

			var body api.Health
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus || body.IndexConnected != tt.wantIndex {
				t.Errorf("body = %+v", body)
			}
			if tt.index.err != nil && body.Error == "" {
				t.Error("error not reported")
			}
		})
	}
}
