package workflow

import "fmt"

// Topology is an ordered chain of stages. Retrieval always comes first and
// every stage may depend on anything an earlier stage wrote.
type Topology interface {
	Name() string
	Stages() []Stage
}

type fine struct{}

// Fine returns the seven-stage topology: one generation call per output.
func Fine() Topology { return fine{} }

func (fine) Name() string { return TopologyFine }

func (fine) Stages() []Stage {
	return []Stage{
		RetrieveStage(),
		NameStage(),
		SummaryStage(),
		DescriptionStage(),
		KeywordsStage(),
		CategoryStage(),
		TaxCodeStage(),
	}
}

type combined struct{}

// Combined returns the three-stage topology: retrieval, then one content
// call and one classification call.
func Combined() Topology { return combined{} }

func (combined) Name() string { return TopologyCombined }

func (combined) Stages() []Stage {
	return []Stage{
		RetrieveStage(),
		ContentStage(),
		ClassifyStage(),
	}
}

// TopologyFor resolves a configured topology name.
func TopologyFor(name string) (Topology, error) {
	switch name {
	case TopologyFine:
		return Fine(), nil
	case TopologyCombined:
		return Combined(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopology, name)
	}
}
