package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/JaimeStill/catalyst/pkg/formatting"
)

// Stage is one unit of pipeline work. Run reads and writes the shared state
// and reports progress through the recorder. A returned error, or a panic,
// is recorded as "<Failure>: <cause>" and Fallback writes the stage's
// default before the pipeline moves on.
type Stage struct {
	Name     string
	Failure  string
	Run      func(ctx context.Context, rt *Runtime, s *State, rec Recorder) error
	Fallback func(s *State, err error)
}

// execute runs the stage to completion. It never fails.
func (st Stage) execute(ctx context.Context, rt *Runtime, s *State, rec Recorder) {
	ctx, span := rt.tracer().Start(ctx, "stage."+st.Name)
	defer span.End()

	rt.Logger.InfoContext(ctx, "stage started", "stage", st.Name)

	err := st.protect(ctx, rt, s, rec)
	if err == nil {
		span.SetAttributes(attribute.Int64("catalyst.total_tokens", s.TotalTokens))
		return
	}

	msg := fmt.Sprintf("%s: %v", st.Failure, err)
	rt.Logger.ErrorContext(ctx, "stage failed", "stage", st.Name, "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	rec.Error(msg)
	if st.Fallback != nil {
		st.Fallback(s, err)
	}
}

func (st Stage) protect(ctx context.Context, rt *Runtime, s *State, rec Recorder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStagePanic, r)
		}
	}()
	return st.Run(ctx, rt, s, rec)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...))
}

// normalizeKeywords dedupes keywords and restores the configured count
// bounds by padding or truncation.
func (rt *Runtime) normalizeKeywords(ctx context.Context, raw []string) []string {
	keywords := formatting.CleanKeywords(raw)
	lo, hi := rt.Config.KeywordMin, rt.Config.KeywordMax

	if !formatting.WithinCount(keywords, lo, hi) {
		rt.Logger.WarnContext(ctx, "keyword count outside range", "count", len(keywords), "min", lo, "max", hi)
	}
	return formatting.EnforceCount(keywords, lo, hi)
}

// checkCategory verifies cat against the loaded taxonomy. An empty taxonomy
// cannot be checked against, so the category is accepted as emitted.
func (rt *Runtime) checkCategory(ctx context.Context, s *State, cat Category) error {
	if len(s.Categories) == 0 {
		rt.Logger.WarnContext(ctx, "taxonomy not loaded, category accepted unchecked", "category", display(cat))
		return nil
	}
	if !s.Categories.Contains(cat.MainCategory, cat.Subcategories) {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, display(cat))
	}
	return nil
}

// checkTaxCode warns when the suggested code is not one of the candidates.
// The suggestion is kept either way.
func (rt *Runtime) checkTaxCode(ctx context.Context, s *State, res TaxCodeResult) {
	for _, c := range s.TaxCategories {
		if c.Code == res.TaxCode {
			return
		}
	}
	rt.Logger.WarnContext(ctx, "tax code not among retrieved candidates", "tax_code", res.TaxCode, "candidates", len(s.TaxCategories))
}

func display(cat Category) string {
	subs := cat.Subcategories[:min(2, len(cat.Subcategories))]
	return cat.MainCategory + " > " + strings.Join(subs, ", ")
}

func parseCategory(obj map[string]any) (Category, error) {
	if obj == nil {
		return Category{}, invalid("missing category")
	}

	main, _ := obj["main_category"].(string)
	main = strings.TrimSpace(main)
	if main == "" {
		return Category{}, invalid("missing main_category")
	}

	raw, ok := stringList(obj["subcategories"])
	if !ok {
		return Category{}, invalid("missing subcategories")
	}
	subs := make([]string, 0, len(raw))
	for _, sub := range raw {
		if sub = strings.TrimSpace(sub); sub != "" {
			subs = append(subs, sub)
		}
	}
	if len(subs) == 0 {
		return Category{}, invalid("empty subcategories")
	}

	return Category{MainCategory: main, Subcategories: subs}, nil
}

func parseTaxCode(obj map[string]any) TaxCodeResult {
	return TaxCodeResult{
		TaxCode:     str(obj["tax_code"]),
		TaxCodeName: str(obj["tax_code_name"]),
		Confidence:  confidence(obj["confidence"]),
		Reasoning:   str(obj["reasoning"]),
	}
}

// confidence reads a score and clamps it to [0, 1]. Unreadable values
// score zero.
func confidence(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	return min(max(f, 0), 1)
}

// stringList reads a JSON array of strings. Non-string entries are
// dropped; a value that is not an array reports false.
func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
		}
	}
	return list, true
}

func object(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
