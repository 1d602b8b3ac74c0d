package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAI generates text through the Chat Completions API of OpenAI or an
// Azure OpenAI deployment.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-compatible generator from cfg.
func NewOpenAI(cfg *Config) (*OpenAI, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(opts...)
	return NewOpenAIFromClient(&client, cfg.Model), nil
}

// NewOpenAIFromClient wraps an existing client.
func NewOpenAIFromClient(client *openai.Client, model string) *OpenAI {
	return &OpenAI{client: client, model: model}
}

// Generate issues one chat completion with a system and a user message.
func (g *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}

	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	out := &Response{TotalTokens: resp.Usage.TotalTokens}
	if len(resp.Choices) > 0 {
		out.Text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if out.Text == "" {
		return out, ErrEmptyResponse
	}
	return out, nil
}

func clientOptions(cfg *Config) ([]option.RequestOption, error) {
	opts := []option.RequestOption{
		option.WithMaxRetries(cfg.MaxRetries),
	}

	if d := cfg.TimeoutDuration(); d > 0 {
		opts = append(opts, option.WithRequestTimeout(d))
	}

	if cfg.Provider != ProviderAzure {
		if cfg.APIKey != "" {
			opts = append(opts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return opts, nil
	}

	opts = append(opts, azure.WithEndpoint(cfg.BaseURL, cfg.APIVersion))

	if cfg.AuthType == AuthDefaultCredential {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("azure credential: %w", err)
		}
		return append(opts, azure.WithTokenCredential(cred)), nil
	}

	return append(opts, azure.WithAPIKey(cfg.APIKey)), nil
}
