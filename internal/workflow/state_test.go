package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/JaimeStill/catalyst/internal/prompts"
	"github.com/JaimeStill/catalyst/internal/workflow"
)

func TestNewStateDefaults(t *testing.T) {
	s := workflow.NewState(nil, nil)

	if s.ProductData == nil || s.Categories == nil || s.TaxCategories == nil || s.Keywords == nil {
		t.Errorf("NewState left nil collections: %+v", s)
	}
	if s.TotalTokens != 0 || s.ProductInfo != "" {
		t.Errorf("NewState = %+v", s)
	}
}

func TestAddTokens(t *testing.T) {
	s := workflow.NewState(nil, nil)
	for _, n := range []int64{5, 0, -10, 7} {
		s.AddTokens(n)
	}
	if s.TotalTokens != 12 {
		t.Errorf("TotalTokens = %d, want 12", s.TotalTokens)
	}
}

func TestJournal(t *testing.T) {
	var j workflow.Journal
	j.Step("Retrieved 5 tax categories")
	j.Step("Generated name pattern")
	j.Step("Retrieved 5 tax categories")
	j.Error("Error matching category: boom")

	steps := j.Steps()
	steps[0] = "tampered"

	want := []string{
		"Retrieved 5 tax categories",
		"Generated name pattern",
		"Retrieved 5 tax categories",
	}
	if diff := cmp.Diff(want, j.Steps()); diff != "" {
		t.Errorf("Steps() aliased internal storage (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(want[:2], j.UniqueSteps()); diff != "" {
		t.Errorf("UniqueSteps() mismatch (-want +got):\n%s", diff)
	}
	if len(j.Steps()) != 3 {
		t.Error("UniqueSteps() mutated the journal")
	}

	if diff := cmp.Diff([]string{"Error matching category: boom"}, j.Errors()); diff != "" {
		t.Errorf("Errors() mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := config(t, "")
		want := workflow.Config{
			Topology:    workflow.TopologyFine,
			Collection:  "tax_categories",
			TopK:        5,
			Temperature: new(0.3),
			MaxTokens:   2000,
			KeywordMin:  15,
			KeywordMax:  30,
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("defaults mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_TOPOLOGY", "combined")
		t.Setenv("TEST_KEYWORD_MAX", "40")

		cfg := workflow.Config{}
		err := cfg.Finalize(&workflow.Env{Topology: "TEST_TOPOLOGY", KeywordMax: "TEST_KEYWORD_MAX"})
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.Topology != workflow.TopologyCombined || cfg.KeywordMax != 40 {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("merge", func(t *testing.T) {
		cfg := config(t, "")
		cfg.Merge(&workflow.Config{TopK: 8})
		if cfg.TopK != 8 || cfg.MaxTokens != 2000 {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("explicit zero temperature", func(t *testing.T) {
		cfg := workflow.Config{Temperature: new(0.0)}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if got := cfg.SamplingTemperature(); got != 0 {
			t.Errorf("SamplingTemperature() = %v, want 0", got)
		}

		base := config(t, "")
		base.Merge(&workflow.Config{Temperature: new(0.0)})
		if got := base.SamplingTemperature(); got != 0 {
			t.Errorf("merged SamplingTemperature() = %v, want 0", got)
		}
	})

	t.Run("zero temperature from env", func(t *testing.T) {
		t.Setenv("TEST_TEMPERATURE", "0")

		cfg := workflow.Config{}
		if err := cfg.Finalize(&workflow.Env{Temperature: "TEST_TEMPERATURE"}); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if got := cfg.SamplingTemperature(); got != 0 {
			t.Errorf("SamplingTemperature() = %v, want 0", got)
		}
	})

	invalid := []struct {
		name string
		cfg  workflow.Config
	}{
		{"unknown topology", workflow.Config{Topology: "parallel"}},
		{"inverted keyword bounds", workflow.Config{KeywordMin: 20, KeywordMax: 10}},
		{"temperature too high", workflow.Config{Temperature: new(3.0)}},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTopologyFor(t *testing.T) {
	tests := []struct {
		name   string
		stages []string
	}{
		{workflow.TopologyFine, []string{"retrieve", "name", "summary", "description", "keywords", "category", "tax_code"}},
		{workflow.TopologyCombined, []string{"retrieve", "content", "classify"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, err := workflow.TopologyFor(tt.name)
			if err != nil {
				t.Fatalf("TopologyFor: %v", err)
			}
			var names []string
			for _, st := range top.Stages() {
				names = append(names, st.Name)
			}
			if diff := cmp.Diff(tt.stages, names); diff != "" {
				t.Errorf("stages mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := workflow.TopologyFor("parallel"); !errors.Is(err, workflow.ErrUnknownTopology) {
		t.Errorf("error = %v, want ErrUnknownTopology", err)
	}
}

func TestCategoryHardening(t *testing.T) {
	bogus := `{"main_category": "Safety & PPE", "subcategories": ["Snorkels"]}`

	t.Run("rejected against taxonomy", func(t *testing.T) {
		replies := fineReplies()
		replies[prompts.StageCategory] = reply{text: bogus}
		o := orchestrator(t, workflow.TopologyFine, newGenerator(replies), &fakeSearcher{results: candidates})

		res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if diff := cmp.Diff(workflow.Uncategorized(), res.Category); diff != "" {
			t.Errorf("category mismatch (-want +got):\n%s", diff)
		}
		if !contains(res.Errors, "Error matching category: category not in taxonomy: Safety & PPE > Snorkels") {
			t.Errorf("errors = %v", res.Errors)
		}
	})

	t.Run("accepted without taxonomy", func(t *testing.T) {
		replies := fineReplies()
		replies[prompts.StageCategory] = reply{text: bogus}
		o, err := workflow.New(&workflow.Runtime{
			Generator: newGenerator(replies),
			Searcher:  &fakeSearcher{results: candidates},
			Config:    config(t, workflow.TopologyFine),
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.Category.MainCategory != "Safety & PPE" {
			t.Errorf("category = %+v", res.Category)
		}
	})

	empty := []struct {
		name string
		text string
	}{
		{"empty list", `{"main_category": "Safety & PPE", "subcategories": []}`},
		{"blank entries", `{"main_category": "Safety & PPE", "subcategories": ["  ", ""]}`},
	}

	for _, tt := range empty {
		t.Run(tt.name, func(t *testing.T) {
			replies := fineReplies()
			replies[prompts.StageCategory] = reply{text: tt.text}
			o := orchestrator(t, workflow.TopologyFine, newGenerator(replies), &fakeSearcher{results: candidates})

			res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if diff := cmp.Diff(workflow.Uncategorized(), res.Category); diff != "" {
				t.Errorf("category mismatch (-want +got):\n%s", diff)
			}
			if !contains(res.Errors, "Error matching category: invalid response: empty subcategories") {
				t.Errorf("errors = %v", res.Errors)
			}
		})
	}
}

func TestTaxCodeConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"in range", `{"tax_code": "PH050102", "confidence": 0.75}`, 0.75},
		{"above one", `{"tax_code": "PH050102", "confidence": 1.7}`, 1},
		{"negative", `{"tax_code": "PH050102", "confidence": -0.2}`, 0},
		{"string", `{"tax_code": "PH050102", "confidence": "0.6"}`, 0.6},
		{"missing", `{"tax_code": "PH050102"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replies := fineReplies()
			replies[prompts.StageTaxCode] = reply{text: tt.text}
			o := orchestrator(t, workflow.TopologyFine, newGenerator(replies), &fakeSearcher{results: candidates})

			res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if res.TaxCodeConfidence != tt.want {
				t.Errorf("confidence = %v, want %v", res.TaxCodeConfidence, tt.want)
			}
		})
	}
}

func TestContentPartialDefaults(t *testing.T) {
	gen := newGenerator(map[prompts.Stage]reply{
		prompts.StageContent:  {text: `{"name_pattern": "3M - N95", "product_description": "<table></table>", "keywords": ["mask"]}`},
		prompts.StageClassify: {text: `{}`},
	})
	o := orchestrator(t, workflow.TopologyCombined, gen, &fakeSearcher{results: candidates})

	res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.NamePattern != "3M - N95" || res.ProductDescription != "<table></table>" {
		t.Errorf("present fields lost: %q / %q", res.NamePattern, res.ProductDescription)
	}
	if res.ProductSummary != workflow.DefaultUnavailable {
		t.Errorf("summary = %q, want default", res.ProductSummary)
	}
	if len(res.Keywords) != 15 {
		t.Errorf("len(keywords) = %d, want 15", len(res.Keywords))
	}
	if !contains(res.Errors, "Error generating product content: invalid response: missing product_summary") {
		t.Errorf("errors = %v", res.Errors)
	}

	t.Run("keywords not a list", func(t *testing.T) {
		gen := newGenerator(map[prompts.Stage]reply{
			prompts.StageContent:  {text: `{"name_pattern": "3M - N95", "keywords": "mask, respirator"}`},
			prompts.StageClassify: {text: `{}`},
		})
		o := orchestrator(t, workflow.TopologyCombined, gen, &fakeSearcher{results: candidates})

		res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.NamePattern != workflow.DefaultProductName {
			t.Errorf("name = %q, want stage default", res.NamePattern)
		}
		if diff := cmp.Diff([]string{workflow.DefaultKeyword}, res.Keywords); diff != "" {
			t.Errorf("keywords mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestContentMissingKeywords(t *testing.T) {
	gen := newGenerator(map[prompts.Stage]reply{
		prompts.StageContent:  {text: `{"name_pattern": "3M - N95", "product_summary": "Mask", "product_description": "<table></table>"}`},
		prompts.StageClassify: {text: `{}`},
	})
	cfg := config(t, workflow.TopologyCombined)
	o := orchestrator(t, workflow.TopologyCombined, gen, &fakeSearcher{results: candidates})

	res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(res.Keywords) < cfg.KeywordMin || len(res.Keywords) > cfg.KeywordMax {
		t.Errorf("len(keywords) = %d, want within [%d, %d]", len(res.Keywords), cfg.KeywordMin, cfg.KeywordMax)
	}
	if res.Keywords[0] != "keyword_0" {
		t.Errorf("keywords[0] = %q, want keyword_0", res.Keywords[0])
	}
	if !contains(res.ProcessingSteps, "Generated all product content") {
		t.Errorf("steps = %v", res.ProcessingSteps)
	}
	if !contains(res.Errors, "Error generating product content: invalid response: missing keywords") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestStageSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	replies := fineReplies()
	replies[prompts.StageSummary] = reply{err: errors.New("rate limited")}

	o, err := workflow.New(&workflow.Runtime{
		Generator:  newGenerator(replies),
		Searcher:   &fakeSearcher{results: candidates},
		Categories: categories,
		Config:     config(t, workflow.TopologyFine),
		Tracer:     provider.Tracer("test"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 8 {
		t.Fatalf("len(spans) = %d, want 8", len(spans))
	}

	status := map[string]codes.Code{}
	for _, s := range spans {
		status[s.Name()] = s.Status().Code
	}
	if status["stage.summary"] != codes.Error {
		t.Errorf("stage.summary status = %v, want Error", status["stage.summary"])
	}
	if status["stage.name"] == codes.Error {
		t.Error("stage.name marked as failed")
	}
	if _, ok := status["workflow.analyze"]; !ok {
		t.Error("missing workflow.analyze span")
	}
}
