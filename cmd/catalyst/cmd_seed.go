package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/catalyst/internal/index"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/pkg/storage"
)

var seedFlags struct {
	file       string
	collection string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load tax categories into the vector index",
	Long: `Reads the tax category list, embeds each record's name, description, and
product tax code, and upserts the vectors into the collection.

Without --file the list is read from the storage system at the configured
reference key. A collection that already holds points is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedFlags.file, "file", "", "Local tax categories JSON file (default: reference data in storage)")
	f.StringVar(&seedFlags.collection, "collection", "", "Target collection (default: configured collection)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, infra, err := setup(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	var data []byte
	if seedFlags.file != "" {
		data, err = os.ReadFile(seedFlags.file)
	} else {
		data, err = storage.ReadAll(ctx, infra.Storage, cfg.Reference.TaxCategoriesFile)
	}
	if err != nil {
		return fmt.Errorf("read tax categories: %w", err)
	}

	records, err := taxonomy.ParseTaxCategories(data)
	if err != nil {
		return err
	}

	collection := seedFlags.collection
	if collection == "" {
		collection = cfg.Pipeline.Collection
	}

	report, err := infra.Index.Upsert(ctx, collection, records, taxonomy.TextFields)
	if err != nil && !errors.Is(err, index.ErrBatchFailed) {
		return err
	}

	if perr := printJSON(cmd.OutOrStdout(), report); perr != nil {
		return perr
	}
	return err
}
