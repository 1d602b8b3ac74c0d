package analyses

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/catalyst/pkg/query"
	"github.com/JaimeStill/catalyst/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "analyses", "a").
	Project("id", "ID").
	Project("item_number", "ItemNumber").
	Project("product", "Product").
	Project("name_pattern", "NamePattern").
	Project("product_summary", "ProductSummary").
	Project("product_description", "ProductDescription").
	Project("keywords", "Keywords").
	Project("main_category", "MainCategory").
	Project("subcategories", "Subcategories").
	Project("tax_code", "TaxCode").
	Project("tax_code_name", "TaxCodeName").
	Project("tax_code_confidence", "TaxCodeConfidence").
	Project("tax_code_reasoning", "TaxCodeReasoning").
	Project("total_tokens", "TotalTokens").
	Project("processing_steps", "ProcessingSteps").
	Project("errors", "Errors").
	Project("topology", "Topology").
	Project("processing_time_seconds", "ProcessingTimeSeconds").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const returning = `
		RETURNING id, item_number, product, name_pattern, product_summary,
		          product_description, keywords, main_category, subcategories,
		          tax_code, tax_code_name, tax_code_confidence, tax_code_reasoning,
		          total_tokens, processing_steps, errors, topology,
		          processing_time_seconds, created_at`

// Filters contains optional filtering criteria for analysis queries.
// Nil fields are ignored. ItemNumber uses case-insensitive contains
// matching, MinConfidence a lower bound, the rest exact matching.
type Filters struct {
	ItemNumber    *string  `json:"item_number,omitempty"`
	TaxCode       *string  `json:"tax_code,omitempty"`
	MainCategory  *string  `json:"main_category,omitempty"`
	Topology      *string  `json:"topology,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("ItemNumber", f.ItemNumber).
		WhereEquals("TaxCode", f.TaxCode).
		WhereEquals("MainCategory", f.MainCategory).
		WhereEquals("Topology", f.Topology).
		WhereAtLeast("TaxCodeConfidence", f.MinConfidence)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("item_number"); v != "" {
		f.ItemNumber = &v
	}

	if v := values.Get("tax_code"); v != "" {
		f.TaxCode = &v
	}

	if v := values.Get("main_category"); v != "" {
		f.MainCategory = &v
	}

	if v := values.Get("topology"); v != "" {
		f.Topology = &v
	}

	if v := values.Get("min_confidence"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinConfidence = &c
		}
	}

	return f
}

func scanAnalysis(s repository.Scanner) (Analysis, error) {
	var (
		a        Analysis
		product  repository.JSON[map[string]any]
		keywords repository.JSON[[]string]
		subs     repository.JSON[[]string]
		steps    repository.JSON[[]string]
		errs     repository.JSON[[]string]
	)

	err := s.Scan(
		&a.ID,
		&a.ItemNumber,
		&product,
		&a.NamePattern,
		&a.ProductSummary,
		&a.ProductDescription,
		&keywords,
		&a.Category.MainCategory,
		&subs,
		&a.TaxCode,
		&a.TaxCodeName,
		&a.TaxCodeConfidence,
		&a.TaxCodeReasoning,
		&a.TotalTokens,
		&steps,
		&errs,
		&a.Topology,
		&a.ProcessingTimeSeconds,
		&a.CreatedAt,
	)
	if err != nil {
		return a, err
	}

	a.Product = orEmpty(product.V)
	a.Keywords = list(keywords.V)
	a.Category.Subcategories = list(subs.V)
	a.ProcessingSteps = list(steps.V)
	a.Errors = list(errs.V)
	a.Persisted = true

	return a, nil
}

func insertArgs(a *Analysis) []any {
	return []any{
		a.ID,
		a.ItemNumber,
		repository.JSON[map[string]any]{V: a.Product},
		a.NamePattern,
		a.ProductSummary,
		a.ProductDescription,
		repository.JSON[[]string]{V: list(a.Keywords)},
		a.Category.MainCategory,
		repository.JSON[[]string]{V: list(a.Category.Subcategories)},
		a.TaxCode,
		a.TaxCodeName,
		a.TaxCodeConfidence,
		a.TaxCodeReasoning,
		a.TotalTokens,
		repository.JSON[[]string]{V: list(a.ProcessingSteps)},
		repository.JSON[[]string]{V: list(a.Errors)},
		a.Topology,
		a.ProcessingTimeSeconds,
	}
}

func list(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func orEmpty(v map[string]any) map[string]any {
	if v == nil {
		return map[string]any{}
	}
	return v
}
