package workflow

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/catalyst/internal/catalog"
	"github.com/JaimeStill/catalyst/internal/index"
	"github.com/JaimeStill/catalyst/internal/prompts"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/pkg/llm"
)

const tracerName = "github.com/JaimeStill/catalyst/internal/workflow"

// InstructionSource resolves the instructions a stage prompt opens with.
// prompts.System satisfies it.
type InstructionSource interface {
	Instructions(ctx context.Context, stage prompts.Stage) (string, error)
}

// Runtime bundles the dependencies that pipeline stages require. It is
// constructed once per process by higher-level composition code and shared
// by every analysis.
type Runtime struct {
	Generator  llm.Generator
	Searcher   index.Searcher
	Prompts    InstructionSource
	Categories taxonomy.Categories
	Config     Config
	Logger     *slog.Logger
	Tracer     trace.Tracer
}

func (rt *Runtime) tracer() trace.Tracer {
	if rt.Tracer != nil {
		return rt.Tracer
	}
	return otel.Tracer(tracerName)
}

// instructions returns the override for stage when one is available and the
// built-in default otherwise. Lookup failures never fail the stage.
func (rt *Runtime) instructions(ctx context.Context, stage prompts.Stage) string {
	if rt.Prompts != nil {
		text, err := rt.Prompts.Instructions(ctx, stage)
		if err != nil {
			rt.Logger.WarnContext(ctx, "instruction lookup failed, using default", "stage", stage, "error", err)
		}
		if text != "" {
			return text
		}
	}
	text, _ := prompts.Instructions(stage)
	return text
}

func (rt *Runtime) input(s *State) prompts.Input {
	return prompts.Input{
		ProductInfo:   s.ProductInfo,
		SuggestedName: catalog.SuggestedName(s.ProductData),
		Keywords:      s.Keywords,
		KeywordMin:    rt.Config.KeywordMin,
		KeywordMax:    rt.Config.KeywordMax,
		Categories:    s.Categories,
		TaxCategories: s.TaxCategories,
	}
}

// generate renders the prompt for stage, issues one generation call, and
// accumulates the reported usage into s.
func (rt *Runtime) generate(ctx context.Context, stage prompts.Stage, s *State, maxTokens int64) (string, error) {
	prompt, err := prompts.Build(stage, rt.instructions(ctx, stage), rt.input(s))
	if err != nil {
		return "", err
	}

	role, err := prompts.Role(stage)
	if err != nil {
		return "", err
	}

	resp, err := rt.Generator.Generate(ctx, llm.Request{
		System:      role,
		Prompt:      prompt,
		Temperature: rt.Config.SamplingTemperature(),
		MaxTokens:   maxTokens,
		JSON:        prompts.WantsJSON(stage),
	})
	if resp != nil {
		s.AddTokens(resp.TotalTokens)
	}
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
