// Package catalog reads raw catalog product records. Records arrive as
// arbitrary JSON objects whose field names use either "Space Name" or
// "Underscore_Name" spelling, and every accessor here accepts both.
package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Product is a raw catalog record as supplied by the caller.
type Product = map[string]any

// Record field names in their "Space Name" spelling.
const (
	FieldItemNumber         = "Item Num"
	FieldStructureGroup     = "Structure Group"
	FieldVendorName         = "Vendor Name"
	FieldVendorAbbreviation = "Vendor Abbreviation"
	FieldCatalogNumber      = "Catalog Num"
	FieldDescShort          = "Item Desc Short"
	FieldDescFull           = "Item Desc Full"
	FieldUOM                = "UOM"
	FieldPrice              = "Price"
)

const (
	featurePrefix    = "FEATURES_AND_BENEFITS_"
	featureSlots     = 19
	maxFormattedFeat = 10
)

// NotAvailable is the formatted text of a record with no usable fields.
const NotAvailable = "Product information not available"

// Field returns the trimmed string value of name, trying the space form
// first and the underscore form second. Missing, null, and blank values
// yield "".
func Field(product Product, name string) string {
	if v := stringify(product[name]); v != "" {
		return v
	}
	if alt := strings.ReplaceAll(name, " ", "_"); alt != name {
		return stringify(product[alt])
	}
	return ""
}

// Features returns the non-empty FEATURES_AND_BENEFITS_1..19 values in order.
func Features(product Product) []string {
	var features []string
	for i := 1; i <= featureSlots; i++ {
		if f := stringify(product[featurePrefix+strconv.Itoa(i)]); f != "" {
			features = append(features, f)
		}
	}
	return features
}

// Format renders a product as the plain text block every prompt embeds.
func Format(product Product) string {
	var lines []string

	add := func(label, field string) {
		if v := Field(product, field); v != "" {
			lines = append(lines, label+": "+v)
		}
	}

	add("Vendor", FieldVendorName)
	add("Short Description", FieldDescShort)
	add("Full Description", FieldDescFull)
	add("Product Group", FieldStructureGroup)
	add("Catalog Number", FieldCatalogNumber)
	add("Unit of Measure", FieldUOM)

	if features := Features(product); len(features) > 0 {
		lines = append(lines, "\nFeatures and Benefits:")
		for i, f := range features {
			if i == maxFormattedFeat {
				break
			}
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, f))
		}
	}

	if len(lines) == 0 {
		return NotAvailable
	}
	return strings.Join(lines, "\n")
}

// ItemNumber returns the record's item number, or "" when absent.
func ItemNumber(product Product) string {
	return Field(product, FieldItemNumber)
}

func stringify(v any) string {
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
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
