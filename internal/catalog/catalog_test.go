package catalog_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/JaimeStill/catalyst/internal/catalog"
)

func maskProduct() catalog.Product {
	return catalog.Product{
		"Item_Num":                float64(1110513),
		"Structure_Group":         "Masks",
		"Vendor_Name":             "3M Company",
		"Item_Desc_Short":         "MASK, RESPIRATOR-DISP N95-MEDICAL ONESZ (50/BX 8BX/CS)",
		"Item_Desc_Full":          "Particulate Respirator / Surgical Mask 3M VFlex Medical N95",
		"UOM":                     "BX",
		"FEATURES_AND_BENEFITS_1": "NIOSH N95 Approved",
		"FEATURES_AND_BENEFITS_2": "  FDA cleared for use as surgical mask ",
		"FEATURES_AND_BENEFITS_4": "",
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		product catalog.Product
		want    string
	}{
		{
			name:    "empty record",
			product: catalog.Product{},
			want:    catalog.NotAvailable,
		},
		{
			name:    "nil record",
			product: nil,
			want:    catalog.NotAvailable,
		},
		{
			name:    "blank fields only",
			product: catalog.Product{"Vendor Name": "   ", "UOM": nil},
			want:    catalog.NotAvailable,
		},
		{
			name:    "full description only",
			product: catalog.Product{"Item_Desc_Full": "3M N95 Respirator Mask, 50/Box"},
			want:    "Full Description: 3M N95 Respirator Mask, 50/Box",
		},
		{
			name:    "space form wins over underscore form",
			product: catalog.Product{"Vendor Name": "Acme", "Vendor_Name": "Other"},
			want:    "Vendor: Acme",
		},
		{
			name:    "full record",
			product: maskProduct(),
			want: strings.Join([]string{
				"Vendor: 3M Company",
				"Short Description: MASK, RESPIRATOR-DISP N95-MEDICAL ONESZ (50/BX 8BX/CS)",
				"Full Description: Particulate Respirator / Surgical Mask 3M VFlex Medical N95",
				"Product Group: Masks",
				"Unit of Measure: BX",
				"",
				"Features and Benefits:",
				"  1. NIOSH N95 Approved",
				"  2. FDA cleared for use as surgical mask",
			}, "\n"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catalog.Format(tt.product); got != tt.want {
				t.Errorf("Format() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestFormatLimitsFeatures(t *testing.T) {
	product := catalog.Product{}
	for i := 1; i <= 19; i++ {
		product["FEATURES_AND_BENEFITS_"+strconv.Itoa(i)] = "feature " + strconv.Itoa(i)
	}

	got := catalog.Format(product)

	if !strings.Contains(got, "  10. feature 10") {
		t.Errorf("missing tenth feature:\n%s", got)
	}
	if strings.Contains(got, "feature 11") {
		t.Errorf("more than ten features rendered:\n%s", got)
	}
	if n := len(catalog.Features(product)); n != 19 {
		t.Errorf("Features() len = %d, want 19", n)
	}
}

func TestItemNumber(t *testing.T) {
	if got := catalog.ItemNumber(maskProduct()); got != "1110513" {
		t.Errorf("ItemNumber() = %q, want 1110513", got)
	}
}

func TestBrand(t *testing.T) {
	tests := []struct {
		name    string
		product catalog.Product
		want    string
	}{
		{"vendor name", catalog.Product{"Vendor Name": " 3M "}, "3M"},
		{"abbreviation fallback", catalog.Product{"Vendor_Abbreviation": "MMM"}, "MMM"},
		{"none", catalog.Product{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catalog.Brand(tt.product); got != tt.want {
				t.Errorf("Brand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSize(t *testing.T) {
	product := catalog.Product{
		"UOM":             "PK",
		"Item Desc Short": "Gauze Sponge 4 x 4 in, 12 ply",
		"Item_Desc_Full":  "Gauze Sponge 4 x 4 in",
	}

	got := catalog.Size(product)
	want := "PK 4 in 4 x 4"
	if got != want {
		t.Errorf("Size() = %q, want %q", got, want)
	}
}

func TestProductName(t *testing.T) {
	tests := []struct {
		name    string
		product catalog.Product
		want    string
	}{
		{
			"strips brand prefix",
			catalog.Product{"Vendor Name": "3M", "Item Desc Full": "3M N95 Mask"},
			"N95 Mask",
		},
		{
			"short description fallback",
			catalog.Product{"Item Desc Short": "MASK N95"},
			"MASK N95",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catalog.ProductName(tt.product); got != tt.want {
				t.Errorf("ProductName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNamePattern(t *testing.T) {
	got := catalog.NamePattern("3M", "N95 Mask", "BX", []string{"NIOSH", "FDA", "Latex free"})
	want := "3M - N95 Mask - BX - NIOSH - FDA"
	if got != want {
		t.Errorf("NamePattern() = %q, want %q", got, want)
	}

	if got := catalog.NamePattern("", "", "", nil); got != "" {
		t.Errorf("NamePattern() on empty = %q, want empty", got)
	}
}
