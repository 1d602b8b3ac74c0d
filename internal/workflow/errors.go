// Package workflow implements the product analysis pipeline: a fixed chain
// of stages that enrich a catalog record through retrieval and generation
// calls, each stage isolating its own failures behind a safe default.
package workflow

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrNoCandidates     = errors.New("No tax categories retrieved")
	ErrInvalidResponse  = errors.New("invalid response")
	ErrUnknownCategory  = errors.New("category not in taxonomy")
	ErrStagePanic       = errors.New("stage panicked")
	ErrUnknownTopology  = errors.New("unknown topology")
	ErrEmptyTopology    = errors.New("topology has no stages")
	ErrMissingGenerator = errors.New("runtime has no generator")
	ErrMissingSearcher  = errors.New("runtime has no searcher")
)
