package prompts_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/catalyst/internal/prompts"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/pkg/repository"
)

func testInput() prompts.Input {
	return prompts.Input{
		ProductInfo: "Full Description: 3M N95 Respirator Mask, 50/Box",
		Keywords:    []string{"n95", "respirator"},
		KeywordMin:  15,
		KeywordMax:  30,
		Categories: taxonomy.Categories{
			"Personal Protective Equipment": {"Masks", "Gloves"},
		},
		TaxCategories: []taxonomy.TaxCategory{
			{Code: "PH050101", Name: "Medical masks", Description: "Face masks for medical use"},
		},
	}
}

func TestEveryStageIsComplete(t *testing.T) {
	for _, stage := range prompts.Stages() {
		t.Run(string(stage), func(t *testing.T) {
			if _, err := prompts.Instructions(stage); err != nil {
				t.Errorf("Instructions: %v", err)
			}
			if _, err := prompts.Spec(stage); err != nil {
				t.Errorf("Spec: %v", err)
			}
			if _, err := prompts.Role(stage); err != nil {
				t.Errorf("Role: %v", err)
			}
		})
	}
}

func TestRoles(t *testing.T) {
	tests := map[prompts.Stage]string{
		prompts.StageName:     "You are a product naming expert.",
		prompts.StageKeywords: "You are a product SEO expert. Always return valid JSON.",
		prompts.StageTaxCode:  "You are a tax classification expert. Always return valid JSON.",
		prompts.StageClassify: "You are a medical product classification expert.",
	}
	for stage, want := range tests {
		if got, _ := prompts.Role(stage); got != want {
			t.Errorf("Role(%s) = %q, want %q", stage, got, want)
		}
	}
}

func TestWantsJSON(t *testing.T) {
	for _, stage := range prompts.Stages() {
		want := stage != prompts.StageName && stage != prompts.StageSummary && stage != prompts.StageDescription
		if got := prompts.WantsJSON(stage); got != want {
			t.Errorf("WantsJSON(%s) = %v, want %v", stage, got, want)
		}
	}
}

func TestBuild(t *testing.T) {
	in := testInput()

	tests := []struct {
		stage   prompts.Stage
		contain []string
		exclude []string
	}{
		{
			stage:   prompts.StageName,
			contain: []string{"Product Information:\nFull Description: 3M N95"},
			exclude: []string{"Available Categories", "Retrieved Tax Categories"},
		},
		{
			stage:   prompts.StageKeywords,
			contain: []string{"exactly 22 keywords", "no fewer than 15", "no more than 30", `"keywords"`},
		},
		{
			stage:   prompts.StageCategory,
			contain: []string{"Available Categories:\n{\n  \"Personal Protective Equipment\": [", `"main_category"`},
			exclude: []string{"Retrieved Tax Categories"},
		},
		{
			stage:   prompts.StageTaxCode,
			contain: []string{"Retrieved Tax Categories:\n[\n  {\n    \"code\": \"PH050101\""},
		},
		{
			stage:   prompts.StageClassify,
			contain: []string{"Product Keywords: n95, respirator", "Available Categories", "Retrieved Tax Categories"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			instructions, _ := prompts.Instructions(tt.stage)
			got, err := prompts.Build(tt.stage, instructions, in)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !strings.HasPrefix(got, strings.TrimSpace(instructions)) {
				t.Error("prompt does not start with the instructions")
			}
			spec, _ := prompts.Spec(tt.stage)
			if !strings.HasSuffix(got, spec) {
				t.Error("prompt does not end with the output contract")
			}
			for _, s := range tt.contain {
				if !strings.Contains(got, s) {
					t.Errorf("prompt missing %q", s)
				}
			}
			for _, s := range tt.exclude {
				if strings.Contains(got, s) {
					t.Errorf("prompt unexpectedly contains %q", s)
				}
			}
		})
	}
}

func TestBuildOverrideKeepsContract(t *testing.T) {
	got, err := prompts.Build(prompts.StageTaxCode, "Pick the cheapest code.", testInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(got, "Pick the cheapest code.") {
		t.Error("override instructions not used")
	}
	if !strings.Contains(got, `"tax_code_name"`) {
		t.Error("output contract dropped")
	}
}

func TestBuildEmptyCandidates(t *testing.T) {
	got, err := prompts.Build(prompts.StageClassify, "x", prompts.Input{KeywordMin: 15, KeywordMax: 30})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{"Product Keywords: none", "Available Categories:\n{}", "Retrieved Tax Categories:\n[]"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSuggestedName(t *testing.T) {
	in := testInput()
	in.SuggestedName = "3M - N95 Respirator Mask - BX"

	tests := []struct {
		stage prompts.Stage
		want  bool
	}{
		{prompts.StageName, true},
		{prompts.StageContent, true},
		{prompts.StageSummary, false},
		{prompts.StageKeywords, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			got, err := prompts.Build(tt.stage, "x", in)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			has := strings.Contains(got, "Suggested Name (from record fields): 3M - N95 Respirator Mask - BX")
			if has != tt.want {
				t.Errorf("suggested name present = %v, want %v", has, tt.want)
			}
		})
	}

	got, err := prompts.Build(prompts.StageName, "x", testInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(got, "Suggested Name") {
		t.Error("empty suggestion rendered a section")
	}
}

func TestBuildUnknownStage(t *testing.T) {
	if _, err := prompts.Build("finalize", "x", testInput()); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("error = %v, want ErrInvalidStage", err)
	}
}

func TestStageUnmarshal(t *testing.T) {
	var cmd prompts.CreateCommand
	if err := json.Unmarshal([]byte(`{"stage":"keywords"}`), &cmd); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cmd.Stage != prompts.StageKeywords {
		t.Errorf("Stage = %q", cmd.Stage)
	}
	if err := json.Unmarshal([]byte(`{"stage":"enhance"}`), &cmd); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("error = %v, want ErrInvalidStage", err)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	f := prompts.FiltersFromQuery(url.Values{
		"stage":  {"category"},
		"name":   {"strict"},
		"active": {"true"},
	})
	if f.Stage == nil || *f.Stage != prompts.StageCategory {
		t.Errorf("Stage = %v", f.Stage)
	}
	if f.Name == nil || *f.Name != "strict" {
		t.Errorf("Name = %v", f.Name)
	}
	if f.Active == nil || !*f.Active {
		t.Errorf("Active = %v", f.Active)
	}

	unknown := prompts.FiltersFromQuery(url.Values{"stage": {"bogus"}, "active": {"maybe"}})
	if unknown.Stage != nil || unknown.Active != nil {
		t.Errorf("invalid filters kept: %+v", unknown)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{prompts.ErrNotFound, http.StatusNotFound},
		{prompts.ErrDuplicate, http.StatusConflict},
		{prompts.ErrInvalidStage, http.StatusBadRequest},
		{prompts.ErrEmptyInstructions, http.StatusBadRequest},
		{prompts.ErrPersistenceDisabled, http.StatusServiceUnavailable},
		{repository.MapError(&pgconn.PgError{Code: "23514", ConstraintName: "prompts_stage_check"}, prompts.ErrNotFound, prompts.ErrDuplicate), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := prompts.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
