package workflow

import (
	"slices"
	"sync"

	"github.com/JaimeStill/catalyst/internal/taxonomy"
)

// Category is a main category and the subcategories assigned under it.
type Category struct {
	MainCategory  string   `json:"main_category"`
	Subcategories []string `json:"subcategories"`
}

// Uncategorized is the category written when no valid assignment is made.
func Uncategorized() Category {
	return Category{
		MainCategory:  taxonomy.Uncategorized,
		Subcategories: []string{taxonomy.GeneralCategory},
	}
}

// TaxCodeResult is the tax code suggested for a product.
type TaxCodeResult struct {
	TaxCode     string  `json:"tax_code"`
	TaxCodeName string  `json:"tax_code_name"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}

// State is the per-request record threaded through every stage. Every field
// has a usable zero value so the result can be projected even when every
// stage fails.
type State struct {
	ProductData   map[string]any
	ProductInfo   string
	TaxCategories []taxonomy.TaxCategory
	Categories    taxonomy.Categories

	NamePattern        string
	ProductSummary     string
	ProductDescription string
	Keywords           []string
	Category           Category
	TaxCode            TaxCodeResult

	TotalTokens int64
}

// NewState creates the initial state for product. A nil product is treated
// as an empty record.
func NewState(product map[string]any, categories taxonomy.Categories) *State {
	if product == nil {
		product = map[string]any{}
	}
	if categories == nil {
		categories = taxonomy.Categories{}
	}
	return &State{
		ProductData:   product,
		TaxCategories: []taxonomy.TaxCategory{},
		Categories:    categories,
		Keywords:      []string{},
		Category:      Category{Subcategories: []string{}},
	}
}

// AddTokens accumulates reported usage. Non-positive values are ignored so
// the total never decreases.
func (s *State) AddTokens(n int64) {
	if n > 0 {
		s.TotalTokens += n
	}
}

// Recorder is the append-only handle stages use to report progress and
// failures.
type Recorder interface {
	Error(msg string)
	Step(msg string)
}

// Journal collects the errors and processing steps of one analysis. Entries
// can only be appended; readers receive copies.
type Journal struct {
	mu     sync.Mutex
	errors []string
	steps  []string
}

// Error appends a failure description.
func (j *Journal) Error(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, msg)
}

// Step appends a progress description.
func (j *Journal) Step(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.steps = append(j.steps, msg)
}

// Errors returns a copy of the recorded failures.
func (j *Journal) Errors() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string{}, j.errors...)
}

// Steps returns a copy of the recorded progress steps.
func (j *Journal) Steps() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string{}, j.steps...)
}

// UniqueSteps returns the recorded steps with repeats removed, keeping first
// occurrences. The journal itself is unchanged.
func (j *Journal) UniqueSteps() []string {
	steps := j.Steps()
	unique := make([]string, 0, len(steps))
	for _, step := range steps {
		if !slices.Contains(unique, step) {
			unique = append(unique, step)
		}
	}
	return unique
}
