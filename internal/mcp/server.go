// Package mcp exposes product analysis as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JaimeStill/catalyst/internal/analyses"
	"github.com/JaimeStill/catalyst/internal/catalog"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
)

// ErrEmptyProduct rejects an analyze_product call without a record.
var ErrEmptyProduct = errors.New("product must contain at least one field")

// Analyzer runs one analysis. analyses.System satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, product map[string]any) (*analyses.Analysis, error)
}

// Server wraps the MCP SDK server with the catalyst tools registered.
type Server struct {
	MCPServer  *sdkmcp.Server
	analyzer   Analyzer
	categories taxonomy.Categories
	logger     *slog.Logger
}

// NewServer creates an MCP server exposing analyze_product and list_categories.
func NewServer(version string, analyzer Analyzer, categories taxonomy.Categories, logger *slog.Logger) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "catalyst", Version: version},
			nil,
		),
		analyzer:   analyzer,
		categories: categories,
		logger:     logger.With("system", "mcp"),
	}
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_product",
		Description: "Enrich a catalog record: name pattern, summary, description, keywords, category assignment, and tax code suggestion.",
	}, s.handleAnalyzeProduct)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_categories",
		Description: "List the main categories and their subcategories used for category assignment.",
	}, s.handleListCategories)
}

type analyzeProductInput struct {
	Product map[string]any `json:"product" jsonschema:"catalog record with field names in either Item Num or Item_Num form"`
}

type category struct {
	MainCategory  string   `json:"main_category"`
	Subcategories []string `json:"subcategories"`
}

type analyzeProductOutput struct {
	ItemNumber            string   `json:"item_number"`
	NamePattern           string   `json:"name_pattern"`
	ProductSummary        string   `json:"product_summary"`
	ProductDescription    string   `json:"product_description"`
	Keywords              []string `json:"keywords"`
	Category              category `json:"category"`
	TaxCode               string   `json:"tax_code"`
	TaxCodeName           string   `json:"tax_code_name"`
	TaxCodeConfidence     float64  `json:"tax_code_confidence"`
	TaxCodeReasoning      string   `json:"tax_code_reasoning"`
	TotalTokens           int64    `json:"total_tokens"`
	ProcessingSteps       []string `json:"processing_steps"`
	Errors                []string `json:"errors"`
	Topology              string   `json:"topology"`
	ProcessingTimeSeconds float64  `json:"processing_time_seconds"`
}

type listCategoriesInput struct{}

type listCategoriesOutput struct {
	Categories map[string][]string `json:"categories"`
	Count      int                 `json:"count"`
}

func (s *Server) handleAnalyzeProduct(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeProductInput) (*sdkmcp.CallToolResult, analyzeProductOutput, error) {
	if len(input.Product) == 0 {
		return nil, analyzeProductOutput{}, ErrEmptyProduct
	}

	a, err := s.analyzer.Analyze(ctx, input.Product)
	if err != nil {
		s.logger.ErrorContext(ctx, "analysis failed", "item_number", catalog.ItemNumber(input.Product), "error", err)
		return nil, analyzeProductOutput{}, err
	}

	return nil, analyzeProductOutput{
		ItemNumber:         a.ItemNumber,
		NamePattern:        a.NamePattern,
		ProductSummary:     a.ProductSummary,
		ProductDescription: a.ProductDescription,
		Keywords:           orEmpty(a.Keywords),
		Category: category{
			MainCategory:  a.Category.MainCategory,
			Subcategories: orEmpty(a.Category.Subcategories),
		},
		TaxCode:               a.TaxCode,
		TaxCodeName:           a.TaxCodeName,
		TaxCodeConfidence:     a.TaxCodeConfidence,
		TaxCodeReasoning:      a.TaxCodeReasoning,
		TotalTokens:           a.TotalTokens,
		ProcessingSteps:       orEmpty(a.ProcessingSteps),
		Errors:                orEmpty(a.Errors),
		Topology:              a.Topology,
		ProcessingTimeSeconds: a.ProcessingTimeSeconds,
	}, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listCategoriesInput) (*sdkmcp.CallToolResult, listCategoriesOutput, error) {
	cats := make(map[string][]string, len(s.categories))
	for _, name := range s.categories.Keys() {
		cats[name] = orEmpty(s.categories[name])
	}
	return nil, listCategoriesOutput{Categories: cats, Count: len(cats)}, nil
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
