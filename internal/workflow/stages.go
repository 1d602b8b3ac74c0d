package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/catalyst/internal/catalog"
	"github.com/JaimeStill/catalyst/internal/prompts"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/pkg/formatting"
)

// Default text written by the single-field stages when they fail.
const (
	DefaultNamePattern = "Error generating name pattern"
	DefaultSummary     = "Error generating summary"
	DefaultDescription = "Error generating description"
)

// RetrieveStage formats the product record and retrieves the candidate tax
// categories nearest to it. No candidates is a valid outcome.
func RetrieveStage() Stage {
	return Stage{
		Name:    "retrieve",
		Failure: "Error retrieving tax categories",
		Run: func(ctx context.Context, rt *Runtime, s *State, rec Recorder) error {
			s.ProductInfo = catalog.Format(s.ProductData)

			results, err := rt.Searcher.Search(ctx, rt.Config.Collection, s.ProductInfo, rt.Config.TopK)
			if err != nil {
				return err
			}

			candidates := make([]taxonomy.TaxCategory, 0, len(results))
			for _, r := range results {
				candidates = append(candidates, taxonomy.TaxCategoryFromRecord(r))
			}
			s.TaxCategories = candidates

			rec.Step(fmt.Sprintf("Retrieved %d tax categories", len(candidates)))
			rt.Logger.InfoContext(ctx, "retrieved tax categories", "count", len(candidates))
			return nil
		},
		Fallback: func(s *State, _ error) {
			s.TaxCategories = []taxonomy.TaxCategory{}
		},
	}
}

// NameStage generates the standardized product name.
func NameStage() Stage {
	return textStage(
		prompts.StageName,
		"Error generating name pattern",
		"Generated name pattern",
		DefaultNamePattern,
		func(s *State, v string) { s.NamePattern = v },
	)
}

// SummaryStage generates the marketing summary.
func SummaryStage() Stage {
	return textStage(
		prompts.StageSummary,
		"Error generating product summary",
		"Generated product summary",
		DefaultSummary,
		func(s *State, v string) { s.ProductSummary = v },
	)
}

// DescriptionStage generates the HTML specification table.
func DescriptionStage() Stage {
	return textStage(
		prompts.StageDescription,
		"Error generating product description",
		"Generated product description",
		DefaultDescription,
		func(s *State, v string) { s.ProductDescription = v },
	)
}

func textStage(stage prompts.Stage, failure, step, fallback string, set func(*State, string)) Stage {
	return Stage{
		Name:    string(stage),
		Failure: failure,
		Run: func(ctx context.Context, rt *Runtime, s *State, rec Recorder) error {
			text, err := rt.generate(ctx, stage, s, rt.Config.MaxTokens)
			if err != nil {
				return err
			}
			set(s, strings.TrimSpace(text))
			rec.Step(step)
			return nil
		},
		Fallback: func(s *State, _ error) {
			set(s, fallback)
		},
	}
}

// KeywordsStage extracts the keyword set and brings it within bounds.
func KeywordsStage() Stage {
	return Stage{
		Name:    string(prompts.StageKeywords),
		Failure: "Error extracting keywords",
		Run: func(ctx context.Context, rt *Runtime, s *State, rec Recorder) error {
			text, err := rt.generate(ctx, prompts.StageKeywords, s, rt.Config.MaxTokens)
			if err != nil {
				return err
			}

			obj := formatting.ExtractJSON(text)
			if obj == nil {
				return invalid("failed to parse keywords JSON")
			}

			raw, ok := stringList(obj["keywords"])
			if !ok {
				return invalid("keywords must be a list")
			}

			s.Keywords = rt.normalizeKeywords(ctx, raw)
			rec.Step(fmt.Sprintf("Extracted %d keywords", len(s.Keywords)))
			return nil
		},
		Fallback: func(s *State, _ error) {
			s.Keywords = []string{}
		},
	}
}

// CategoryStage assigns a category from the loaded taxonomy.
func CategoryStage() Stage {
	return Stage{
		Name:    string(prompts.StageCategory),
		Failure: "Error matching category",
		Run: func(ctx context.Context, rt *Runtime, s *State, rec Recorder) error {
			text, err := rt.generate(ctx, prompts.StageCategory, s, rt.Config.MaxTokens)
			if err != nil {
				return err
			}

			obj := formatting.ExtractJSON(text)
			if obj == nil {
				return invalid("failed to parse category JSON")
			}

			cat, err := parseCategory(obj)
			if err != nil {
				return err
			}
			if err := rt.checkCategory(ctx, s, cat); err != nil {
				return err
			}

			s.Category = cat
			rec.Step("Matched category: " + display(cat))
			return nil
		},
		Fallback: func(s *State, _ error) {
			s.Category = Uncategorized()
		},
	}
}

// TaxCodeStage selects a tax code from the retrieved candidates. It fails
// without calling the generator when there are no candidates.
func TaxCodeStage() Stage {
	return Stage{
		Name:    string(prompts.StageTaxCode),
		Failure: "Error suggesting tax code",
		Run: func(ctx context.Context, rt *Runtime, s *State, rec Recorder) error {
			if len(s.TaxCategories) == 0 {
				return ErrNoCandidates
			}

			text, err := rt.generate(ctx, prompts.StageTaxCode, s, rt.Config.MaxTokens)
			if err != nil {
				return err
			}

			obj := formatting.ExtractJSON(text)
			if obj == nil {
				return invalid("failed to parse tax code JSON")
			}

			res := parseTaxCode(obj)
			rt.checkTaxCode(ctx, s, res)

			s.TaxCode = res
			rec.Step("Suggested tax code: " + res.TaxCode)
			rt.Logger.InfoContext(ctx, "suggested tax code", "tax_code", res.TaxCode, "confidence", res.Confidence)
			return nil
		},
		Fallback: failedTaxCode,
	}
}

func failedTaxCode(s *State, err error) {
	s.TaxCode = TaxCodeResult{Reasoning: "Error: " + err.Error()}
}
