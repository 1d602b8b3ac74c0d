package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/catalyst/internal/analyses"
	"github.com/JaimeStill/catalyst/internal/api"
)

var analyzeFlags struct {
	file string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one catalog record and print the result",
	Long: `Runs the enrichment pipeline over a catalog record read from a JSON file
and prints the output with its processing time.

Usage:
  catalyst analyze --file product.json
  cat product.json | catalyst analyze --file -`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFlags.file, "file", "f", "", "Product JSON file, or - for stdin")
	analyzeCmd.MarkFlagRequired("file")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	product, err := readProduct(cmd.InOrStdin(), analyzeFlags.file)
	if err != nil {
		return err
	}

	cfg, infra, err := setup(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	domain, err := api.NewDomain(api.NewRuntime(cfg, infra), cfg)
	if err != nil {
		return err
	}

	a, err := domain.Analyses.Analyze(ctx, product)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), analyses.ProductAnalysis{
		Result:                a.Result(),
		ProcessingTimeSeconds: a.ProcessingTimeSeconds,
	})
}

func readProduct(stdin io.Reader, path string) (map[string]any, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open product: %w", err)
		}
		defer f.Close()
		r = f
	}

	var product map[string]any
	if err := json.NewDecoder(r).Decode(&product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return product, nil
}
