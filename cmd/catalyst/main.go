package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/catalyst/internal/config"
	"github.com/JaimeStill/catalyst/internal/infrastructure"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "catalyst",
	Short: "Catalog product enrichment tools",
	Long: "Catalyst seeds and inspects the tax category index and runs product\n" +
		"analyses outside the HTTP service.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.BaseConfigFile, "Path to the base config file")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the shared infrastructure.
// Logs go to stderr so stdout stays clean for command output.
func setup(ctx context.Context) (*config.Config, *infrastructure.Infrastructure, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, err
	}

	infra, err := infrastructure.NewWithWriter(ctx, cfg, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, infra, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
