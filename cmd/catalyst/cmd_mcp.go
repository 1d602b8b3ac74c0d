package main

import (
	"github.com/spf13/cobra"

	"github.com/JaimeStill/catalyst/internal/api"
	"github.com/JaimeStill/catalyst/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve analysis tools over MCP stdio",
	Long: `Starts a Model Context Protocol server on stdin/stdout exposing the
analyze_product and list_categories tools. Logs are written to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, infra, err := setup(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	domain, err := api.NewDomain(api.NewRuntime(cfg, infra), cfg)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(cfg.Version, domain.Analyses, infra.Reference.Categories, infra.Logger)
	return srv.Run(ctx)
}
