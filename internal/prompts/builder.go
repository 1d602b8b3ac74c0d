package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/catalyst/internal/taxonomy"
)

// Input is the product context a stage prompt is rendered against.
type Input struct {
	ProductInfo   string
	SuggestedName string
	Keywords      []string
	KeywordMin    int
	KeywordMax    int
	Categories    taxonomy.Categories
	TaxCategories []taxonomy.TaxCategory
}

// KeywordTarget is the keyword count requested from the generator: the
// midpoint of the configured bounds.
func (in Input) KeywordTarget() int {
	return (in.KeywordMin + in.KeywordMax) / 2
}

// Build renders the prompt for stage from instructions and in. The stage's
// output contract is always appended, whatever the instructions say.
func Build(stage Stage, instructions string, in Input) (string, error) {
	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}

	var sections []string
	switch stage {
	case StageName:
		sections = []string{product(in), suggested(in)}
	case StageSummary, StageDescription:
		sections = []string{product(in)}
	case StageKeywords:
		sections = []string{product(in), keywordCount(in)}
	case StageContent:
		sections = []string{product(in), suggested(in), keywordCount(in)}
	case StageCategory:
		sections = []string{product(in), categories(in)}
	case StageTaxCode:
		sections = []string{product(in), candidates(in)}
	case StageClassify:
		sections = []string{product(in), keywords(in), categories(in), candidates(in)}
	}

	parts := make([]string, 0, len(sections)+2)
	parts = append(parts, strings.TrimSpace(instructions))
	for _, section := range sections {
		if section != "" {
			parts = append(parts, section)
		}
	}
	parts = append(parts, spec)
	return strings.Join(parts, "\n\n"), nil
}

func product(in Input) string {
	return "Product Information:\n" + in.ProductInfo
}

// suggested is empty when the record yields no name components.
func suggested(in Input) string {
	if in.SuggestedName == "" {
		return ""
	}
	return "Suggested Name (from record fields): " + in.SuggestedName
}

func keywordCount(in Input) string {
	return fmt.Sprintf(
		"Keyword count: generate exactly %d keywords (no fewer than %d, no more than %d).",
		in.KeywordTarget(), in.KeywordMin, in.KeywordMax,
	)
}

func keywords(in Input) string {
	if len(in.Keywords) == 0 {
		return "Product Keywords: none"
	}
	return "Product Keywords: " + strings.Join(in.Keywords, ", ")
}

func categories(in Input) string {
	cats := in.Categories
	if cats == nil {
		cats = taxonomy.Categories{}
	}
	return "Available Categories:\n" + indent(cats)
}

func candidates(in Input) string {
	list := in.TaxCategories
	if list == nil {
		list = []taxonomy.TaxCategory{}
	}
	return "Retrieved Tax Categories:\n" + indent(list)
}

func indent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
