// Package analyses runs product analyses through the enrichment pipeline
// and keeps their history. Each stored analysis is the output projection of
// one run together with the record it was run against.
package analyses

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/catalyst/internal/workflow"
)

// Analysis is a completed product analysis. Persisted is false when the
// result could not be stored or no database is configured.
type Analysis struct {
	ID                    uuid.UUID         `json:"id"`
	ItemNumber            string            `json:"item_number"`
	Product               map[string]any    `json:"product"`
	NamePattern           string            `json:"name_pattern"`
	ProductSummary        string            `json:"product_summary"`
	ProductDescription    string            `json:"product_description"`
	Keywords              []string          `json:"keywords"`
	Category              workflow.Category `json:"category"`
	TaxCode               string            `json:"tax_code"`
	TaxCodeName           string            `json:"tax_code_name"`
	TaxCodeConfidence     float64           `json:"tax_code_confidence"`
	TaxCodeReasoning      string            `json:"tax_code_reasoning"`
	TotalTokens           int64             `json:"total_tokens"`
	ProcessingSteps       []string          `json:"processing_steps"`
	Errors                []string          `json:"errors"`
	Topology              string            `json:"topology"`
	ProcessingTimeSeconds float64           `json:"processing_time_seconds"`
	CreatedAt             time.Time         `json:"created_at"`
	Persisted             bool              `json:"persisted"`
}

// Result returns the pipeline output projection of a.
func (a *Analysis) Result() workflow.Result {
	return workflow.Result{
		NamePattern:        a.NamePattern,
		ProductSummary:     a.ProductSummary,
		ProductDescription: a.ProductDescription,
		Keywords:           a.Keywords,
		Category:           a.Category,
		TaxCode:            a.TaxCode,
		TaxCodeName:        a.TaxCodeName,
		TaxCodeConfidence:  a.TaxCodeConfidence,
		TaxCodeReasoning:   a.TaxCodeReasoning,
		TotalTokens:        a.TotalTokens,
		ProcessingSteps:    a.ProcessingSteps,
		Errors:             a.Errors,
		Topology:           a.Topology,
	}
}

// ProductAnalysis is the response of the single-product analysis endpoint:
// the output projection plus the wall-clock time the run took.
type ProductAnalysis struct {
	workflow.Result
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// BatchRequest carries the products of a batch analysis.
type BatchRequest struct {
	Products []map[string]any `json:"products"`
}

// BatchItem is the outcome of one product in a batch. Exactly one of
// Analysis and Error is set.
type BatchItem struct {
	Index    int       `json:"index"`
	Analysis *Analysis `json:"analysis,omitempty"`
	Error    string    `json:"error,omitempty"`
}

func newAnalysis(product map[string]any, res *workflow.Result, elapsed time.Duration, item string) *Analysis {
	if product == nil {
		product = map[string]any{}
	}
	return &Analysis{
		ID:                    uuid.New(),
		ItemNumber:            item,
		Product:               product,
		NamePattern:           res.NamePattern,
		ProductSummary:        res.ProductSummary,
		ProductDescription:    res.ProductDescription,
		Keywords:              res.Keywords,
		Category:              res.Category,
		TaxCode:               res.TaxCode,
		TaxCodeName:           res.TaxCodeName,
		TaxCodeConfidence:     res.TaxCodeConfidence,
		TaxCodeReasoning:      res.TaxCodeReasoning,
		TotalTokens:           res.TotalTokens,
		ProcessingSteps:       res.ProcessingSteps,
		Errors:                res.Errors,
		Topology:              res.Topology,
		ProcessingTimeSeconds: elapsed.Seconds(),
		CreatedAt:             time.Now().UTC(),
	}
}
