package index

import (
	"context"
	"fmt"
)

// DefaultVerifyQueries cover distinct regions of a tax category collection.
var DefaultVerifyQueries = []string{
	"prescription drugs and medications",
	"medical masks and protective equipment",
	"software and digital services",
	"clothing and apparel",
}

// Match is a single scored search result.
type Match struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// QueryCheck holds the results of one verification query.
type QueryCheck struct {
	Query   string  `json:"query"`
	Matches []Match `json:"matches"`
	Error   string  `json:"error,omitempty"`
}

// Verification describes the state of a collection and how it answers a
// fixed set of queries.
type Verification struct {
	Collection string       `json:"collection"`
	Exists     bool         `json:"exists"`
	Count      int          `json:"count"`
	Dimension  int          `json:"dimension"`
	Queries    []QueryCheck `json:"queries"`
}

// Verify reports collection statistics and runs each query against it.
// A failing query is recorded in its QueryCheck; only failures to inspect
// the collection itself are returned as errors.
func (x *Index) Verify(ctx context.Context, collection string, queries []string, topK int) (*Verification, error) {
	v := &Verification{
		Collection: collection,
		Dimension:  x.dimension,
		Queries:    []QueryCheck{},
	}

	exists, err := x.store.Exists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("check collection %s: %w", collection, err)
	}
	v.Exists = exists
	if !exists {
		return v, nil
	}

	if v.Count, err = x.store.Count(ctx, collection); err != nil {
		return nil, fmt.Errorf("count collection %s: %w", collection, err)
	}

	for _, q := range queries {
		check := QueryCheck{Query: q, Matches: []Match{}}

		hits, err := x.query(ctx, collection, q, topK)
		if err != nil {
			check.Error = err.Error()
		}
		for _, h := range hits {
			check.Matches = append(check.Matches, Match{Score: h.Score, Payload: h.Payload})
		}

		v.Queries = append(v.Queries, check)
	}

	return v, nil
}
