// Package search implements ranked retrieval over the note graph: vector-seeded
// spreading activation, plain similarity lookup, and neighborhood inspection.
package search

import (
	"time"

	"github.com/dsolli/memgraph/pkg/store"
)

// Result is a single ranked note returned by a search operation.
type Result struct {
	Note       *store.Note
	Activation float64
}

// SimilarResult is a single match returned by FindSimilar.
type SimilarResult struct {
	NoteID     int64
	Similarity float64
	Preview    string
}

// Filters narrows activation search results. A nil field means unconstrained.
type Filters struct {
	Category   *string
	TimeAfter  *time.Time
	TimeBefore *time.Time
	EntityType *string
}

// Params configures the activation search algorithm. Iterations and Decay
// are pointers so that an explicit zero (spec §8: "iterations=0" and
// "decay=0" are their own documented degenerate cases) can be told apart
// from "not set, use the configured default" — a plain int/float64 zero
// value cannot make that distinction. A nil Iterations or Decay falls back
// to the searcher's configured default, then to DefaultParams. The other
// fields have no degenerate-zero meaning and keep ordinary zero-value
// defaulting.
type Params struct {
	Iterations        *int
	Decay             *float64
	SeedMinSimilarity float64
	ActivationFloor   float64
	HalfLifeDays      int
}

// resolvedParams is Params after defaulting: every field concrete, ready for
// the seed/spread/weight pipeline to use directly.
type resolvedParams struct {
	Iterations        int
	Decay             float64
	SeedMinSimilarity float64
	ActivationFloor   float64
	HalfLifeDays      int
}

// DefaultParams holds the algorithm's baseline tuning, the last fallback
// once both the caller's Params and the searcher's configured defaults have
// been consulted.
var DefaultParams = resolvedParams{
	Iterations:        3,
	Decay:             0.7,
	SeedMinSimilarity: 0.3,
	ActivationFloor:   0.01,
	HalfLifeDays:      30,
}

const (
	importanceCritical = "critical"
	importanceNormal   = "normal"
	importanceLow      = "low"
)

var importanceWeight = map[string]float64{
	importanceCritical: 2.0,
	importanceNormal:   1.0,
	importanceLow:      0.5,
}
