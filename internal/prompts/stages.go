package prompts

import (
	"encoding/json"
	"slices"
)

// Stage identifies a generation stage of the enrichment pipeline.
type Stage string

// Generation stages. Name through TaxCode belong to the fine-grained
// topology; Content and Classify to the combined topology.
const (
	StageName        Stage = "name"
	StageSummary     Stage = "summary"
	StageDescription Stage = "description"
	StageKeywords    Stage = "keywords"
	StageCategory    Stage = "category"
	StageTaxCode     Stage = "tax_code"
	StageContent     Stage = "content"
	StageClassify    Stage = "classify"
)

var stages = []Stage{
	StageName,
	StageSummary,
	StageDescription,
	StageKeywords,
	StageCategory,
	StageTaxCode,
	StageContent,
	StageClassify,
}

// Stages returns the generation stages in pipeline order.
func Stages() []Stage {
	return slices.Clone(stages)
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
