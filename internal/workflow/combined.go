package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/catalyst/internal/prompts"
	"github.com/JaimeStill/catalyst/pkg/formatting"
)

// Defaults written by the combined content stage.
const (
	DefaultProductName = "Unknown Product"
	DefaultUnavailable = "Product information not available"
	DefaultKeyword     = "product"
)

// ContentStage generates the name pattern, summary, description and
// keywords in one call with twice the per-stage token budget. A missing
// field takes its own default without blanking the others.
func ContentStage() Stage {
	const failure = "Error generating product content"

	return Stage{
		Name:    string(prompts.StageContent),
		Failure: failure,
		Run: func(ctx context.Context, rt *Runtime, s *State, rec Recorder) error {
			text, err := rt.generate(ctx, prompts.StageContent, s, rt.Config.MaxTokens*2)
			if err != nil {
				return err
			}

			obj := formatting.ExtractJSON(text)
			if obj == nil {
				return invalid("failed to parse product content JSON")
			}

			var raw []string
			if v, ok := obj["keywords"]; ok {
				if raw, ok = stringList(v); !ok {
					return invalid("keywords must be a list")
				}
			} else {
				rec.Error(fmt.Sprintf("%s: %v", failure, invalid("missing keywords")))
			}
			keywords := rt.normalizeKeywords(ctx, raw)

			field := func(key, fallback string) string {
				if v, ok := obj[key].(string); ok {
					return v
				}
				rec.Error(fmt.Sprintf("%s: %v", failure, invalid("missing %s", key)))
				return fallback
			}

			s.NamePattern = field("name_pattern", DefaultProductName)
			s.ProductSummary = field("product_summary", DefaultUnavailable)
			s.ProductDescription = field("product_description", DefaultUnavailable)
			s.Keywords = keywords

			rec.Step("Generated all product content")
			return nil
		},
		Fallback: func(s *State, _ error) {
			s.NamePattern = DefaultProductName
			s.ProductSummary = DefaultUnavailable
			s.ProductDescription = DefaultUnavailable
			s.Keywords = []string{DefaultKeyword}
		},
	}
}

// ClassifyStage assigns the category and the tax code in one call. The two
// sub-results are validated independently: a bad category leaves a good tax
// code in place and the reverse.
func ClassifyStage() Stage {
	const failure = "Error classifying product"

	return Stage{
		Name:    string(prompts.StageClassify),
		Failure: failure,
		Run: func(ctx context.Context, rt *Runtime, s *State, rec Recorder) error {
			text, err := rt.generate(ctx, prompts.StageClassify, s, rt.Config.MaxTokens)
			if err != nil {
				return err
			}

			obj := formatting.ExtractJSON(text)
			if obj == nil {
				return invalid("failed to parse classification JSON")
			}

			complete := true

			cat, err := parseCategory(object(obj["category"]))
			if err == nil {
				err = rt.checkCategory(ctx, s, cat)
			}
			if err != nil {
				rec.Error(fmt.Sprintf("%s: %v", failure, err))
				s.Category = Uncategorized()
				complete = false
			} else {
				s.Category = cat
				rt.Logger.InfoContext(ctx, "matched category", "category", display(cat))
			}

			if taxObj := object(obj["tax_code"]); taxObj != nil {
				res := parseTaxCode(taxObj)
				rt.checkTaxCode(ctx, s, res)
				s.TaxCode = res
				rt.Logger.InfoContext(ctx, "suggested tax code", "tax_code", res.TaxCode, "confidence", res.Confidence)
			} else {
				err := invalid("missing tax_code")
				rec.Error(fmt.Sprintf("%s: %v", failure, err))
				failedTaxCode(s, err)
				complete = false
			}

			if complete {
				rec.Step("Classified product (category + tax code)")
			}
			return nil
		},
		Fallback: func(s *State, err error) {
			s.Category = Uncategorized()
			failedTaxCode(s, err)
		},
	}
}
