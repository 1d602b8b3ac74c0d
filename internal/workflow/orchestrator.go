package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tailored-agentic-units/orchestrate/config"
	"github.com/tailored-agentic-units/orchestrate/state"

	"github.com/JaimeStill/catalyst/internal/catalog"
)

// Keys under which the analysis travels through the graph state.
const (
	KeyAnalysis = "analysis"
	KeyJournal  = "journal"
)

// Result is the output projection of one analysis.
type Result struct {
	NamePattern        string   `json:"name_pattern"`
	ProductSummary     string   `json:"product_summary"`
	ProductDescription string   `json:"product_description"`
	Keywords           []string `json:"keywords"`
	Category           Category `json:"category"`
	TaxCode            string   `json:"tax_code"`
	TaxCodeName        string   `json:"tax_code_name"`
	TaxCodeConfidence  float64  `json:"tax_code_confidence"`
	TaxCodeReasoning   string   `json:"tax_code_reasoning"`
	TotalTokens        int64    `json:"total_tokens"`
	ProcessingSteps    []string `json:"processing_steps"`
	Errors             []string `json:"errors"`
	Topology           string   `json:"topology"`
}

// Orchestrator drives a topology's stages over a fresh state per analysis.
// It is safe for concurrent use.
type Orchestrator struct {
	rt       *Runtime
	topology Topology
}

// New creates an Orchestrator for the topology named in rt.Config.
func New(rt *Runtime) (*Orchestrator, error) {
	t, err := TopologyFor(rt.Config.Topology)
	if err != nil {
		return nil, err
	}
	return NewWithTopology(rt, t)
}

// NewWithTopology creates an Orchestrator running t.
func NewWithTopology(rt *Runtime, t Topology) (*Orchestrator, error) {
	if rt.Generator == nil {
		return nil, ErrMissingGenerator
	}
	if rt.Searcher == nil {
		return nil, ErrMissingSearcher
	}
	if len(t.Stages()) == 0 {
		return nil, ErrEmptyTopology
	}

	runtime := *rt
	if runtime.Logger == nil {
		runtime.Logger = slog.New(slog.DiscardHandler)
	}
	runtime.Logger = runtime.Logger.With("system", "workflow", "topology", t.Name())

	return &Orchestrator{rt: &runtime, topology: t}, nil
}

// Topology returns the name of the topology the orchestrator runs.
func (o *Orchestrator) Topology() string {
	return o.topology.Name()
}

// Analyze runs every stage over product and projects the final state.
// Stage failures are recorded in the result; an error is returned only when
// the pipeline itself cannot run.
func (o *Orchestrator) Analyze(ctx context.Context, product map[string]any) (*Result, error) {
	start := time.Now()
	item := catalog.ItemNumber(product)

	ctx, span := o.rt.tracer().Start(ctx, "workflow.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("catalyst.item_number", item),
		attribute.String("catalyst.topology", o.topology.Name()),
	)

	o.rt.Logger.InfoContext(ctx, "analysis started", "item_number", item)

	graph, err := o.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyAnalysis, NewState(product, o.rt.Categories))
	initial = initial.Set(KeyJournal, &Journal{})

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	s, journal, err := extract(final)
	if err != nil {
		return nil, err
	}

	for _, step := range journal.UniqueSteps() {
		o.rt.Logger.InfoContext(ctx, "step complete", "item_number", item, "step", step)
	}
	for _, msg := range journal.Errors() {
		o.rt.Logger.WarnContext(ctx, "stage error", "item_number", item, "error", msg)
	}

	result := o.project(s, journal)
	span.SetAttributes(
		attribute.Int64("catalyst.total_tokens", result.TotalTokens),
		attribute.Int("catalyst.errors", len(result.Errors)),
	)

	o.rt.Logger.InfoContext(
		ctx, "analysis complete",
		"item_number", item,
		"total_tokens", result.TotalTokens,
		"errors", len(result.Errors),
		"duration", time.Since(start),
	)

	return result, nil
}

func (o *Orchestrator) buildGraph() (state.StateGraph, error) {
	cfg := config.DefaultGraphConfig("catalyst-" + o.topology.Name())
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	stages := o.topology.Stages()
	for _, st := range stages {
		if err := graph.AddNode(st.Name, o.node(st)); err != nil {
			return nil, err
		}
	}

	for i := 1; i < len(stages); i++ {
		if err := graph.AddEdge(stages[i-1].Name, stages[i].Name, nil); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint(stages[0].Name); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(stages[len(stages)-1].Name); err != nil {
		return nil, err
	}

	return graph, nil
}

func (o *Orchestrator) node(st Stage) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, gs state.State) (state.State, error) {
		s, journal, err := extract(gs)
		if err != nil {
			return gs, fmt.Errorf("%s: %w", st.Name, err)
		}

		st.execute(ctx, o.rt, s, journal)
		return gs, nil
	})
}

func (o *Orchestrator) project(s *State, journal *Journal) *Result {
	keywords := s.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	category := s.Category
	if category.Subcategories == nil {
		category.Subcategories = []string{}
	}

	return &Result{
		NamePattern:        s.NamePattern,
		ProductSummary:     s.ProductSummary,
		ProductDescription: s.ProductDescription,
		Keywords:           keywords,
		Category:           category,
		TaxCode:            s.TaxCode.TaxCode,
		TaxCodeName:        s.TaxCode.TaxCodeName,
		TaxCodeConfidence:  s.TaxCode.Confidence,
		TaxCodeReasoning:   s.TaxCode.Reasoning,
		TotalTokens:        s.TotalTokens,
		ProcessingSteps:    journal.Steps(),
		Errors:             journal.Errors(),
		Topology:           o.topology.Name(),
	}
}

func extract(gs state.State) (*State, *Journal, error) {
	val, ok := gs.Get(KeyAnalysis)
	if !ok {
		return nil, nil, fmt.Errorf("missing %s in state", KeyAnalysis)
	}
	s, ok := val.(*State)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not *State", KeyAnalysis)
	}

	val, ok = gs.Get(KeyJournal)
	if !ok {
		return nil, nil, fmt.Errorf("missing %s in state", KeyJournal)
	}
	journal, ok := val.(*Journal)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not *Journal", KeyJournal)
	}

	return s, journal, nil
}
