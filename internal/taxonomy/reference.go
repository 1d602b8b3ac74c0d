package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/catalyst/pkg/storage"
)

// Reference is the reference data loaded once at process start.
type Reference struct {
	Categories    Categories
	TaxCategories []map[string]any
}

// Load reads the category taxonomy and the tax category list from sys. A
// missing file leaves that part of the reference data empty and logs a
// warning so the service can still start; a malformed file is an error.
func Load(ctx context.Context, sys storage.System, cfg *Config, logger *slog.Logger) (*Reference, error) {
	ref := &Reference{
		Categories:    Categories{},
		TaxCategories: []map[string]any{},
	}

	data, err := storage.ReadAll(ctx, sys, cfg.CategoriesFile)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Warn("category taxonomy not found", "key", cfg.CategoriesFile)
	case err != nil:
		return nil, fmt.Errorf("load categories: %w", err)
	default:
		cats, err := ParseCategories(data, cfg.CategoriesFile)
		if err != nil {
			return nil, err
		}
		ref.Categories = cats
	}

	data, err = storage.ReadAll(ctx, sys, cfg.TaxCategoriesFile)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Warn("tax categories not found", "key", cfg.TaxCategoriesFile)
	case err != nil:
		return nil, fmt.Errorf("load tax categories: %w", err)
	default:
		records, err := ParseTaxCategories(data)
		if err != nil {
			return nil, err
		}
		ref.TaxCategories = records
	}

	logger.Info(
		"reference data loaded",
		"categories", len(ref.Categories),
		"tax_categories", len(ref.TaxCategories),
	)

	return ref, nil
}

// ParseCategories decodes a taxonomy document. Keys ending in .yaml or .yml
// are decoded as YAML, everything else as JSON.
func ParseCategories(data []byte, key string) (Categories, error) {
	var cats Categories

	switch strings.ToLower(path.Ext(key)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cats); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaxonomy, err)
		}
	default:
		if err := json.Unmarshal(data, &cats); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaxonomy, err)
		}
	}

	if cats == nil {
		cats = Categories{}
	}
	return cats, nil
}

type exportItem struct {
	Type string           `json:"type"`
	Name string           `json:"name"`
	Data []map[string]any `json:"data"`
}

// ParseTaxCategories decodes the tax category list. It accepts a database
// export (an array of header, database, and table items, where the table
// named tax_categories carries the rows) or a plain array of records.
func ParseTaxCategories(data []byte) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxCategories, err)
	}

	isExport := false
	for _, item := range items {
		if _, ok := item["type"]; ok {
			isExport = true
			break
		}
	}
	if !isExport {
		return items, nil
	}

	var export []exportItem
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxCategories, err)
	}

	for _, item := range export {
		if item.Type == "table" && item.Name == "tax_categories" {
			if item.Data == nil {
				return []map[string]any{}, nil
			}
			return item.Data, nil
		}
	}

	return nil, fmt.Errorf("%w: no tax_categories table in export", ErrInvalidTaxCategories)
}
