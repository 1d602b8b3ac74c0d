// Package taxonomy holds the read-only reference data every analysis
// consults: the product category hierarchy and the tax category list used
// to seed the retrieval index.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Fallback category applied when no valid category can be assigned.
const (
	Uncategorized   = "Uncategorized"
	GeneralCategory = "General"
)

// Categories maps a main category name to its subcategory names.
type Categories map[string][]string

// Keys returns the main category names in sorted order.
func (c Categories) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Contains reports whether main is a known category and every entry of subs
// is one of its subcategories.
func (c Categories) Contains(main string, subs []string) bool {
	allowed, ok := c[main]
	if !ok {
		return false
	}
	for _, s := range subs {
		if !slices.Contains(allowed, s) {
			return false
		}
	}
	return true
}

// Record field names in the tax category reference data.
const (
	FieldTaxCode     = "product_tax_code"
	FieldName        = "name"
	FieldDescription = "description"
)

// TextFields are the record fields embedded when seeding the retrieval index.
var TextFields = []string{FieldName, FieldDescription, FieldTaxCode}

// TaxCategory is a candidate tax classification.
type TaxCategory struct {
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"-"`
}

// TaxCategoryFromRecord reads a tax category out of a reference record or
// an index payload.
func TaxCategoryFromRecord(record map[string]any) TaxCategory {
	return TaxCategory{
		Code:        text(record[FieldTaxCode]),
		Name:        text(record[FieldName]),
		Description: text(record[FieldDescription]),
		Payload:     record,
	}
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
