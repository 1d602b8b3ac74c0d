package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/catalyst/internal/index"
)

var verifyFlags struct {
	queries    []string
	collection string
	topK       int
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report collection statistics and sample query results",
	Long: `Checks that the tax category collection exists, reports its point count
and dimension, and prints the top matches for each query.

Usage:
  catalyst verify
  catalyst verify --query "surgical gloves" --query "antivirus software"`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.StringArrayVar(&verifyFlags.queries, "query", nil, "Test query (repeatable; default: built-in sample queries)")
	f.StringVar(&verifyFlags.collection, "collection", "", "Collection to inspect (default: configured collection)")
	f.IntVar(&verifyFlags.topK, "top-k", 3, "Matches to show per query")
}

func runVerify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, infra, err := setup(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	collection := verifyFlags.collection
	if collection == "" {
		collection = cfg.Pipeline.Collection
	}

	queries := verifyFlags.queries
	if len(queries) == 0 {
		queries = index.DefaultVerifyQueries
	}

	v, err := infra.Index.Verify(ctx, collection, queries, verifyFlags.topK)
	if err != nil {
		return err
	}

	if err := printJSON(cmd.OutOrStdout(), v); err != nil {
		return err
	}
	if !v.Exists {
		return fmt.Errorf("collection %s does not exist; run catalyst seed", collection)
	}
	return nil
}
