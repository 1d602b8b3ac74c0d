package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/catalyst/internal/prompts"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/internal/workflow"
	"github.com/JaimeStill/catalyst/pkg/llm"
)

type reply struct {
	text   string
	tokens int64
	err    error
	panics bool
}

// fakeGenerator answers each stage with a canned reply. The stage is
// recognized by the output contract every prompt ends with.
type fakeGenerator struct {
	mu       sync.Mutex
	replies  map[prompts.Stage]reply
	requests map[prompts.Stage]llm.Request
	calls    []prompts.Stage
}

func newGenerator(replies map[prompts.Stage]reply) *fakeGenerator {
	return &fakeGenerator{replies: replies, requests: map[prompts.Stage]llm.Request{}}
}

func (f *fakeGenerator) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	stage := stageOf(req.Prompt)

	f.mu.Lock()
	f.calls = append(f.calls, stage)
	f.requests[stage] = req
	r, ok := f.replies[stage]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no reply for stage %q", stage)
	}
	if r.panics {
		panic("generator exploded")
	}
	if r.err != nil {
		if r.tokens > 0 {
			return &llm.Response{TotalTokens: r.tokens}, r.err
		}
		return nil, r.err
	}
	return &llm.Response{Text: r.text, TotalTokens: r.tokens}, nil
}

func (f *fakeGenerator) called(stage prompts.Stage) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == stage {
			return true
		}
	}
	return false
}

func stageOf(prompt string) prompts.Stage {
	for _, st := range prompts.Stages() {
		spec, _ := prompts.Spec(st)
		if strings.HasSuffix(prompt, spec) {
			return st
		}
	}
	return ""
}

type fakeSearcher struct {
	results []map[string]any
	err     error
	query   string
}

func (f *fakeSearcher) Search(ctx context.Context, collection, query string, topK int) ([]map[string]any, error) {
	f.query = query
	if f.err != nil {
		return []map[string]any{}, f.err
	}
	return f.results[:min(topK, len(f.results))], nil
}

var candidates = []map[string]any{
	{"product_tax_code": "PH050101", "name": "Medical masks", "description": "Face masks for medical use"},
	{"product_tax_code": "PH050102", "name": "Respirators", "description": "Particulate respirators"},
	{"product_tax_code": "PH050200", "name": "Protective equipment", "description": "PPE"},
	{"product_tax_code": "PF050001", "name": "Prescription drugs", "description": "Rx medications"},
	{"product_tax_code": "SW054000", "name": "Software", "description": "Digital services"},
}

var categories = taxonomy.Categories{
	"Safety & PPE":     {"Respiratory Protection", "Masks", "Gloves"},
	"Medical Supplies": {"Wound Care", "Diagnostics"},
}

const n95 = "3M N95 Respirator Mask, 50/Box"

func config(t *testing.T, topology string) workflow.Config {
	t.Helper()
	cfg := workflow.Config{Topology: topology}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return cfg
}

func orchestrator(t *testing.T, topology string, gen llm.Generator, search *fakeSearcher) *workflow.Orchestrator {
	t.Helper()
	o, err := workflow.New(&workflow.Runtime{
		Generator:  gen,
		Searcher:   search,
		Categories: categories,
		Config:     config(t, topology),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

func fineReplies() map[prompts.Stage]reply {
	return map[prompts.Stage]reply{
		prompts.StageName:        {text: "3M - N95 Respirator Mask - 50/Box\n", tokens: 10},
		prompts.StageSummary:     {text: "Disposable N95 respirator.", tokens: 20},
		prompts.StageDescription: {text: "<table><tr><td>Type</td><td>N95</td></tr></table>", tokens: 30},
		prompts.StageKeywords:    {text: "```json\n{\"keywords\": [\"N95\", \"n95 \", \"respirator\", \"mask\"]}\n```", tokens: 40},
		prompts.StageCategory:    {text: `{"main_category": "Safety & PPE", "subcategories": ["Respiratory Protection", "Masks"], "reasoning": "PPE"}`, tokens: 50},
		prompts.StageTaxCode:     {text: `{"tax_code": "PH050102", "tax_code_name": "Respirators", "confidence": 0.92, "reasoning": "N95 respirator"}`, tokens: 60},
	}
}

func contains(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func TestAnalyzeFineEndToEnd(t *testing.T) {
	gen := newGenerator(fineReplies())
	search := &fakeSearcher{results: candidates}
	o := orchestrator(t, workflow.TopologyFine, gen, search)

	res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !strings.Contains(search.query, "Full Description: "+n95) {
		t.Errorf("search query = %q", search.query)
	}

	if n := len(res.Keywords); n < 15 || n > 30 {
		t.Errorf("len(keywords) = %d, want within [15, 30]", n)
	}
	if diff := cmp.Diff([]string{"N95", "respirator", "mask", "keyword_3"}, res.Keywords[:4]); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}

	if _, ok := categories[res.Category.MainCategory]; !ok {
		t.Errorf("main category %q not in taxonomy", res.Category.MainCategory)
	}

	found := false
	for _, c := range candidates {
		if c["product_tax_code"] == res.TaxCode {
			found = true
		}
	}
	if !found {
		t.Errorf("tax code %q not among candidates", res.TaxCode)
	}

	want := &workflow.Result{
		NamePattern:        "3M - N95 Respirator Mask - 50/Box",
		ProductSummary:     "Disposable N95 respirator.",
		ProductDescription: "<table><tr><td>Type</td><td>N95</td></tr></table>",
		Keywords:           res.Keywords,
		Category: workflow.Category{
			MainCategory:  "Safety & PPE",
			Subcategories: []string{"Respiratory Protection", "Masks"},
		},
		TaxCode:           "PH050102",
		TaxCodeName:       "Respirators",
		TaxCodeConfidence: 0.92,
		TaxCodeReasoning:  "N95 respirator",
		TotalTokens:       210,
		ProcessingSteps: []string{
			"Retrieved 5 tax categories",
			"Generated name pattern",
			"Generated product summary",
			"Generated product description",
			"Extracted 15 keywords",
			"Matched category: Safety & PPE > Respiratory Protection, Masks",
			"Suggested tax code: PH050102",
		},
		Errors:   []string{},
		Topology: workflow.TopologyFine,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeCombinedEndToEnd(t *testing.T) {
	gen := newGenerator(map[prompts.Stage]reply{
		prompts.StageContent: {
			text:   `{"name_pattern": "3M - N95 Respirator", "product_summary": "Summary", "product_description": "<table></table>", "keywords": ["n95", "mask"]}`,
			tokens: 300,
		},
		prompts.StageClassify: {
			text:   `{"category": {"main_category": "Safety & PPE", "subcategories": ["Masks"]}, "tax_code": {"tax_code": "PH050101", "tax_code_name": "Medical masks", "confidence": 0.8, "reasoning": "mask"}}`,
			tokens: 150,
		},
	})
	o := orchestrator(t, workflow.TopologyCombined, gen, &fakeSearcher{results: candidates})

	res, err := o.Analyze(context.Background(), map[string]any{"Item Desc Full": n95})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.TotalTokens != 450 {
		t.Errorf("TotalTokens = %d, want 450", res.TotalTokens)
	}
	if len(res.Keywords) != 15 || res.Keywords[0] != "n95" {
		t.Errorf("keywords = %v", res.Keywords)
	}
	if res.TaxCode != "PH050101" || res.Category.MainCategory != "Safety & PPE" {
		t.Errorf("classification = %+v / %q", res.Category, res.TaxCode)
	}
	if len(res.Errors) != 0 {
		t.Errorf("errors = %v", res.Errors)
	}

	wantSteps := []string{
		"Retrieved 5 tax categories",
		"Generated all product content",
		"Classified product (category + tax code)",
	}
	if diff := cmp.Diff(wantSteps, res.ProcessingSteps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}

	req := gen.requests[prompts.StageContent]
	if req.MaxTokens != 4000 || !req.JSON || req.Temperature != 0.3 {
		t.Errorf("content request = %+v", req)
	}
	if !strings.Contains(req.Prompt, "Suggested Name (from record fields): "+n95) {
		t.Error("content prompt does not carry the suggested name")
	}
	if !strings.Contains(gen.requests[prompts.StageClassify].Prompt, "Product Keywords: n95, mask") {
		t.Error("classify prompt does not carry the generated keywords")
	}
}

func TestAnalyzeRetrievalFailure(t *testing.T) {
	for _, topology := range []string{workflow.TopologyFine, workflow.TopologyCombined} {
		t.Run(topology, func(t *testing.T) {
			gen := newGenerator(fineReplies())
			search := &fakeSearcher{err: errors.New("index unreachable")}
			o := orchestrator(t, topology, gen, search)

			res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}

			if res.TaxCodeConfidence != 0 {
				t.Errorf("confidence = %v, want 0", res.TaxCodeConfidence)
			}
			if !contains(res.Errors, "Error retrieving tax categories: index unreachable") {
				t.Errorf("errors = %v, want a retrieval error", res.Errors)
			}
		})
	}

	t.Run("tax code fails fast", func(t *testing.T) {
		gen := newGenerator(fineReplies())
		o := orchestrator(t, workflow.TopologyFine, gen, &fakeSearcher{err: errors.New("down")})

		res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}

		if gen.called(prompts.StageTaxCode) {
			t.Error("tax code stage called the generator without candidates")
		}
		if !contains(res.Errors, "Error suggesting tax code: No tax categories retrieved") {
			t.Errorf("errors = %v", res.Errors)
		}
		if res.TaxCodeReasoning != "Error: No tax categories retrieved" {
			t.Errorf("reasoning = %q", res.TaxCodeReasoning)
		}
		if res.NamePattern != "3M - N95 Respirator Mask - 50/Box" {
			t.Errorf("unrelated stage degraded: name = %q", res.NamePattern)
		}
	})
}

func TestAnalyzeTotality(t *testing.T) {
	failing := errors.New("service unavailable")

	t.Run("fine", func(t *testing.T) {
		gen := newGenerator(map[prompts.Stage]reply{})
		for _, st := range prompts.Stages() {
			gen.replies[st] = reply{err: failing}
		}
		o := orchestrator(t, workflow.TopologyFine, gen, &fakeSearcher{results: candidates})

		res, err := o.Analyze(context.Background(), nil)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}

		want := &workflow.Result{
			NamePattern:        workflow.DefaultNamePattern,
			ProductSummary:     workflow.DefaultSummary,
			ProductDescription: workflow.DefaultDescription,
			Keywords:           []string{},
			Category:           workflow.Uncategorized(),
			TaxCodeReasoning:   "Error: service unavailable",
			ProcessingSteps:    []string{"Retrieved 5 tax categories"},
			Errors: []string{
				"Error generating name pattern: service unavailable",
				"Error generating product summary: service unavailable",
				"Error generating product description: service unavailable",
				"Error extracting keywords: service unavailable",
				"Error matching category: service unavailable",
				"Error suggesting tax code: service unavailable",
			},
			Topology: workflow.TopologyFine,
		}
		if diff := cmp.Diff(want, res); diff != "" {
			t.Errorf("result mismatch (-want +got):\n%s", diff)
		}
		if !strings.Contains(gen.requests[prompts.StageName].Prompt, "Product information not available") {
			t.Error("empty record not formatted as unavailable")
		}
	})

	t.Run("combined", func(t *testing.T) {
		gen := newGenerator(map[prompts.Stage]reply{
			prompts.StageContent:  {err: failing},
			prompts.StageClassify: {err: failing},
		})
		o := orchestrator(t, workflow.TopologyCombined, gen, &fakeSearcher{err: failing})

		res, err := o.Analyze(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}

		want := &workflow.Result{
			NamePattern:        workflow.DefaultProductName,
			ProductSummary:     workflow.DefaultUnavailable,
			ProductDescription: workflow.DefaultUnavailable,
			Keywords:           []string{workflow.DefaultKeyword},
			Category:           workflow.Uncategorized(),
			TaxCodeReasoning:   "Error: service unavailable",
			ProcessingSteps:    []string{},
			Errors: []string{
				"Error retrieving tax categories: service unavailable",
				"Error generating product content: service unavailable",
				"Error classifying product: service unavailable",
			},
			Topology: workflow.TopologyCombined,
		}
		if diff := cmp.Diff(want, res); diff != "" {
			t.Errorf("result mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCombinedClassifyIsolation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category workflow.Category
		taxCode  string
		errMatch string
	}{
		{
			name:     "category missing",
			text:     `{"tax_code": {"tax_code": "PH050102", "tax_code_name": "Respirators", "confidence": 0.9, "reasoning": "fits"}}`,
			category: workflow.Uncategorized(),
			taxCode:  "PH050102",
			errMatch: "Error classifying product: invalid response: missing category",
		},
		{
			name:     "category outside taxonomy",
			text:     `{"category": {"main_category": "Groceries", "subcategories": ["Produce"]}, "tax_code": {"tax_code": "PH050102", "confidence": 0.9}}`,
			category: workflow.Uncategorized(),
			taxCode:  "PH050102",
			errMatch: "category not in taxonomy: Groceries > Produce",
		},
		{
			name:     "empty subcategories",
			text:     `{"category": {"main_category": "Safety & PPE", "subcategories": []}, "tax_code": {"tax_code": "PH050102", "confidence": 0.9}}`,
			category: workflow.Uncategorized(),
			taxCode:  "PH050102",
			errMatch: "Error classifying product: invalid response: empty subcategories",
		},
		{
			name: "tax code missing",
			text: `{"category": {"main_category": "Safety & PPE", "subcategories": ["Masks"]}}`,
			category: workflow.Category{
				MainCategory:  "Safety & PPE",
				Subcategories: []string{"Masks"},
			},
			taxCode:  "",
			errMatch: "Error classifying product: invalid response: missing tax_code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newGenerator(map[prompts.Stage]reply{
				prompts.StageContent:  {text: `{"name_pattern": "n", "product_summary": "s", "product_description": "d", "keywords": []}`},
				prompts.StageClassify: {text: tt.text},
			})
			o := orchestrator(t, workflow.TopologyCombined, gen, &fakeSearcher{results: candidates})

			res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}

			if diff := cmp.Diff(tt.category, res.Category); diff != "" {
				t.Errorf("category mismatch (-want +got):\n%s", diff)
			}
			if res.TaxCode != tt.taxCode {
				t.Errorf("tax code = %q, want %q", res.TaxCode, tt.taxCode)
			}
			if !contains(res.Errors, tt.errMatch) {
				t.Errorf("errors = %v, want one containing %q", res.Errors, tt.errMatch)
			}
			if contains(res.ProcessingSteps, "Classified product") {
				t.Error("classification step recorded for a partial result")
			}
		})
	}
}

func TestTokenAccounting(t *testing.T) {
	replies := fineReplies()
	replies[prompts.StageKeywords] = reply{text: "not json", tokens: 7}
	replies[prompts.StageCategory] = reply{text: `{"main_category": "Safety & PPE", "subcategories": ["Masks"]}`, tokens: -3}
	replies[prompts.StageSummary] = reply{text: "Summary", tokens: 0}

	gen := newGenerator(replies)
	o := orchestrator(t, workflow.TopologyFine, gen, &fakeSearcher{results: candidates})

	res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// name 10 + summary 0 + description 30 + keywords 7 + category ignored + tax 60
	if res.TotalTokens != 107 {
		t.Errorf("TotalTokens = %d, want 107", res.TotalTokens)
	}
	if !contains(res.Errors, "Error extracting keywords: invalid response: failed to parse keywords JSON") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestStagePanicRecovered(t *testing.T) {
	replies := fineReplies()
	replies[prompts.StageName] = reply{panics: true}

	o := orchestrator(t, workflow.TopologyFine, newGenerator(replies), &fakeSearcher{results: candidates})

	res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.NamePattern != workflow.DefaultNamePattern {
		t.Errorf("name = %q, want default", res.NamePattern)
	}
	if !contains(res.Errors, "Error generating name pattern: stage panicked: generator exploded") {
		t.Errorf("errors = %v", res.Errors)
	}
	if res.TaxCode != "PH050102" {
		t.Errorf("later stages did not run: tax code = %q", res.TaxCode)
	}
}

func TestNewValidatesRuntime(t *testing.T) {
	gen := newGenerator(nil)
	search := &fakeSearcher{}

	tests := []struct {
		name string
		rt   *workflow.Runtime
		want error
	}{
		{"no generator", &workflow.Runtime{Searcher: search, Config: config(t, "")}, workflow.ErrMissingGenerator},
		{"no searcher", &workflow.Runtime{Generator: gen, Config: config(t, "")}, workflow.ErrMissingSearcher},
		{"unknown topology", &workflow.Runtime{Generator: gen, Searcher: search, Config: workflow.Config{Topology: "parallel"}}, workflow.ErrUnknownTopology},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := workflow.New(tt.rt); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

type overrides map[prompts.Stage]string

func (o overrides) Instructions(ctx context.Context, stage prompts.Stage) (string, error) {
	text, ok := o[stage]
	if !ok {
		return "", errors.New("store offline")
	}
	return text, nil
}

func TestInstructionOverrides(t *testing.T) {
	gen := newGenerator(fineReplies())
	o, err := workflow.New(&workflow.Runtime{
		Generator:  gen,
		Searcher:   &fakeSearcher{results: candidates},
		Prompts:    overrides{prompts.StageName: "Name it like a catalog editor."},
		Categories: categories,
		Config:     config(t, workflow.TopologyFine),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if p := gen.requests[prompts.StageName].Prompt; !strings.HasPrefix(p, "Name it like a catalog editor.") {
		t.Errorf("name prompt does not open with the override:\n%s", p)
	}

	fallback, _ := prompts.Instructions(prompts.StageSummary)
	if p := gen.requests[prompts.StageSummary].Prompt; !strings.HasPrefix(p, strings.TrimSpace(fallback)) {
		t.Errorf("summary prompt does not fall back to the default instructions:\n%s", p)
	}

	if gen.requests[prompts.StageName].JSON {
		t.Error("name stage requested JSON mode")
	}
	if !gen.requests[prompts.StageKeywords].JSON {
		t.Error("keywords stage did not request JSON mode")
	}
}

func TestTokensCountedForEmptyReply(t *testing.T) {
	replies := fineReplies()
	replies[prompts.StageSummary] = reply{err: llm.ErrEmptyResponse, tokens: 25}
	o := orchestrator(t, workflow.TopologyFine, newGenerator(replies), &fakeSearcher{results: candidates})

	res, err := o.Analyze(context.Background(), map[string]any{"Item_Desc_Full": n95})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.TotalTokens != 215 {
		t.Errorf("TotalTokens = %d, want 215", res.TotalTokens)
	}
	if res.ProductSummary != workflow.DefaultSummary {
		t.Errorf("summary = %q, want default", res.ProductSummary)
	}
	if !contains(res.Errors, "Error generating product summary") {
		t.Errorf("errors = %v", res.Errors)
	}
}
