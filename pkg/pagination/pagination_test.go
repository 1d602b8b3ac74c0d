package pagination_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/JaimeStill/catalyst/pkg/pagination"
	"github.com/JaimeStill/catalyst/pkg/query"
)

func defaults(t *testing.T) pagination.Config {
	t.Helper()
	var cfg pagination.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return cfg
}

func TestConfigFinalize(t *testing.T) {
	cfg := defaults(t)
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
		t.Errorf("defaults = %+v", cfg)
	}

	t.Run("env", func(t *testing.T) {
		t.Setenv("TEST_PAGE_SIZE", "50")
		cfg := pagination.Config{}
		if err := cfg.Finalize(&pagination.Env{DefaultPageSize: "TEST_PAGE_SIZE"}); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.DefaultPageSize != 50 {
			t.Errorf("DefaultPageSize = %d, want 50", cfg.DefaultPageSize)
		}
	})

	t.Run("default above max", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := defaults(t)

	tests := []struct {
		name     string
		values   url.Values
		page     int
		pageSize int
		search   string
		sort     int
	}{
		{"empty", url.Values{}, 1, 20, "", 0},
		{"explicit", url.Values{"page": {"3"}, "page_size": {"10"}}, 3, 10, "", 0},
		{"clamped", url.Values{"page": {"-2"}, "page_size": {"1000"}}, 1, 100, "", 0},
		{"search trimmed", url.Values{"search": {"  mask "}}, 1, 20, "mask", 0},
		{"blank search dropped", url.Values{"search": {"   "}}, 1, 20, "", 0},
		{"sort", url.Values{"sort": {"-CreatedAt,ItemNumber"}}, 1, 20, "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequestFromQuery(tt.values, cfg)
			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("page = %d/%d, want %d/%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
			var search string
			if req.Search != nil {
				search = *req.Search
			}
			if search != tt.search {
				t.Errorf("search = %q, want %q", search, tt.search)
			}
			if len(req.Sort) != tt.sort {
				t.Errorf("len(sort) = %d, want %d", len(req.Sort), tt.sort)
			}
		})
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	var fromString struct {
		Sort pagination.SortFields `json:"sort"`
	}
	if err := json.Unmarshal([]byte(`{"sort":"-Confidence"}`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if len(fromString.Sort) != 1 || fromString.Sort[0] != (query.SortField{Field: "Confidence", Descending: true}) {
		t.Errorf("sort = %v", fromString.Sort)
	}

	var fromArray struct {
		Sort pagination.SortFields `json:"sort"`
	}
	if err := json.Unmarshal([]byte(`{"sort":[{"Field":"ItemNumber"}]}`), &fromArray); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if len(fromArray.Sort) != 1 || fromArray.Sort[0].Field != "ItemNumber" {
		t.Errorf("sort = %v", fromArray.Sort)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		totalPages int
		hasMore    bool
	}{
		{"empty", 0, 1, 1, false},
		{"exact", 40, 1, 2, true},
		{"partial last page", 41, 3, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := pagination.NewPageResult[string](nil, tt.total, tt.page, 20)
			if res.TotalPages != tt.totalPages {
				t.Errorf("TotalPages = %d, want %d", res.TotalPages, tt.totalPages)
			}
			if res.HasMore != tt.hasMore {
				t.Errorf("HasMore = %v, want %v", res.HasMore, tt.hasMore)
			}
			if res.Data == nil {
				t.Error("Data is nil, want empty slice")
			}
		})
	}
}
