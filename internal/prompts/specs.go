package prompts

const nameSpec = `Respond with the name pattern on a single line and nothing else.`

const summarySpec = `Respond with the summary text only. No markdown, no code fences, no commentary.`

const descriptionSpec = `Respond with the HTML table only. No markdown, no code fences, no explanatory text.`

const keywordsSpec = `Respond with a JSON object matching this exact structure:

{
  "keywords": ["<keyword>", "<keyword>"]
}

Field constraints:
- keywords: distinct strings of one to three words each

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const categorySpec = `Respond with a JSON object matching this exact structure:

{
  "main_category": "<main category>",
  "subcategories": ["<subcategory>"],
  "reasoning": "<explanation>"
}

Field constraints:
- main_category: a key of the available categories, spelled exactly
- subcategories: one or more entries from that key's list, spelled exactly
- reasoning: one or two sentences

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const taxCodeSpec = `Respond with a JSON object matching this exact structure:

{
  "tax_code": "<code>",
  "tax_code_name": "<name>",
  "confidence": 0.85,
  "reasoning": "<explanation>"
}

Field constraints:
- tax_code: the code of one retrieved candidate
- tax_code_name: that candidate's name
- confidence: number between 0.0 and 1.0
- reasoning: why this code fits and what limits confidence

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const contentSpec = `Respond with a JSON object matching this exact structure:

{
  "name_pattern": "<name pattern>",
  "product_summary": "<summary text>",
  "product_description": "<html table>",
  "keywords": ["<keyword>", "<keyword>"]
}

Field constraints:
- product_summary: newlines encoded as \n
- product_description: a single-line HTML table
- keywords: a JSON array of distinct strings

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Include every field`

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "category": {
    "main_category": "<main category>",
    "subcategories": ["<subcategory>"]
  },
  "tax_code": {
    "tax_code": "<code>",
    "tax_code_name": "<name>",
    "confidence": 0.85,
    "reasoning": "<explanation>"
  }
}

Field constraints:
- category.main_category: a key of the available categories, spelled exactly
- category.subcategories: entries from that key's list, spelled exactly
- tax_code.tax_code: the code of one retrieved candidate
- tax_code.confidence: number between 0.0 and 1.0

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Include both objects`

var specs = map[Stage]string{
	StageName:        nameSpec,
	StageSummary:     summarySpec,
	StageDescription: descriptionSpec,
	StageKeywords:    keywordsSpec,
	StageCategory:    categorySpec,
	StageTaxCode:     taxCodeSpec,
	StageContent:     contentSpec,
	StageClassify:    classifySpec,
}

// Spec returns the fixed output contract for a stage. Unlike instructions,
// specs cannot be overridden.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}

// WantsJSON reports whether a stage's contract is a JSON object.
func WantsJSON(stage Stage) bool {
	switch stage {
	case StageName, StageSummary, StageDescription:
		return false
	}
	return true
}
