package catalog

import (
	"regexp"
	"strings"
)

var sizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\.?\d*\s*(?:mm|cm|m|ml|mL|L|mg|g|kg|inch|in|oz|lb)`),
	regexp.MustCompile(`(?i)\d+\s*x\s*\d+`),
	regexp.MustCompile(`(?i)\d+\.?\d*\s*(?:mg|g)\s*/\s*(?:ml|mL)`),
	regexp.MustCompile(`(?i)\d+\s*(?:gauge|ga|G)`),
}

// Brand returns the vendor name, falling back to the vendor abbreviation.
func Brand(product Product) string {
	if v := Field(product, FieldVendorName); v != "" {
		return v
	}
	return Field(product, FieldVendorAbbreviation)
}

// Size collects the unit of measure and the first two matches of each size
// pattern found in the descriptions, without duplicates, joined by spaces.
func Size(product Product) string {
	var parts []string
	seen := make(map[string]bool)

	push := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			parts = append(parts, s)
		}
	}

	push(Field(product, FieldUOM))

	text := Field(product, FieldDescShort) + " " + Field(product, FieldDescFull)
	for _, re := range sizePatterns {
		for _, m := range re.FindAllString(text, 2) {
			push(m)
		}
	}

	return strings.Join(parts, " ")
}

// ProductName returns the full description with a leading brand removed,
// or the short description when there is no full description.
func ProductName(product Product) string {
	full := Field(product, FieldDescFull)
	if full == "" {
		return Field(product, FieldDescShort)
	}
	if brand := Brand(product); brand != "" {
		if rest, ok := strings.CutPrefix(full, brand); ok {
			return strings.TrimSpace(rest)
		}
	}
	return full
}

// NamePattern joins the non-empty components with " - ". Only the first two
// specifications are used.
func NamePattern(brand, product, size string, specs []string) string {
	var parts []string
	for _, p := range []string{brand, product, size} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(specs) > 2 {
		specs = specs[:2]
	}
	if len(specs) > 0 {
		parts = append(parts, strings.Join(specs, " - "))
	}
	return strings.Join(parts, " - ")
}

// SuggestedName builds a deterministic name pattern from the record alone.
func SuggestedName(product Product) string {
	return NamePattern(Brand(product), ProductName(product), Size(product), Features(product))
}
