package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// jsonDirective stands in for a JSON response format, which the Messages API
// does not offer.
const jsonDirective = "Respond with a single JSON object and nothing else."

// defaultAnthropicMaxTokens is used when a request carries no token budget;
// the Messages API requires one.
const defaultAnthropicMaxTokens = 4096

// Anthropic generates text through the Anthropic Messages API.
type Anthropic struct {
	client *anthropic.Client
	model  string
}

// NewAnthropic creates an Anthropic generator from cfg.
func NewAnthropic(cfg *Config) *Anthropic {
	opts := []option.RequestOption{
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if d := cfg.TimeoutDuration(); d > 0 {
		opts = append(opts, option.WithRequestTimeout(d))
	}

	client := anthropic.NewClient(opts...)
	return NewAnthropicFromClient(&client, cfg.Model)
}

// NewAnthropicFromClient wraps an existing client.
func NewAnthropicFromClient(client *anthropic.Client, model string) *Anthropic {
	return &Anthropic{client: client, model: model}
}

// Generate issues one message request and concatenates the returned text
// blocks. Usage is reported as input plus output tokens.
func (g *Anthropic) Generate(ctx context.Context, req Request) (*Response, error) {
	system := req.System
	if req.JSON {
		system = strings.TrimSpace(system + " " + jsonDirective)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic message: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	out := &Response{
		Text:        strings.TrimSpace(sb.String()),
		TotalTokens: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
	if out.Text == "" {
		return out, ErrEmptyResponse
	}
	return out, nil
}
