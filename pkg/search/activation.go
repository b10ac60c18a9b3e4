package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/dsolli/memgraph/pkg/annindex"
	"github.com/dsolli/memgraph/pkg/embeddings"
	"github.com/dsolli/memgraph/pkg/graphcache"
	"github.com/dsolli/memgraph/pkg/store"
)

// ActivationSearcher answers ranked-retrieval queries by seeding a set of
// notes from vector similarity and spreading their scores across the
// adjacency cache, then reweighting by recency and importance.
type ActivationSearcher struct {
	Store      store.GraphStore
	Index      *annindex.Index
	Cache      *graphcache.Cache
	Embeddings embeddings.EmbeddingClient

	// DefaultIterations, DefaultDecay, and DefaultHalfLifeDays are the
	// configured fallback used whenever a caller's Params leaves the
	// matching field unset (nil Iterations/Decay, zero HalfLifeDays). Set
	// via WithDefaultActivationParams; zero means "fall back to
	// DefaultParams" in turn.
	DefaultIterations   int
	DefaultDecay        float64
	DefaultHalfLifeDays int
}

// NewActivationSearcher wires the three collaborators the algorithm reads
// from: the persistent store for note metadata, the ANN index (or its linear
// fallback) for seeding, and the graph cache for spreading.
func NewActivationSearcher(s store.GraphStore, idx *annindex.Index, cache *graphcache.Cache, client embeddings.EmbeddingClient) *ActivationSearcher {
	return &ActivationSearcher{Store: s, Index: idx, Cache: cache, Embeddings: client}
}

// WithDefaultActivationParams sets the searcher's configured fallback for
// Iterations, Decay, and HalfLifeDays, consulted by resolveParams whenever a
// caller's Params leaves the corresponding field unset. Mirrors Engine's
// WithMetricsCollector/WithTraceExporter fluent setters.
func (s *ActivationSearcher) WithDefaultActivationParams(iterations int, decay float64, halfLifeDays int) *ActivationSearcher {
	s.DefaultIterations = iterations
	s.DefaultDecay = decay
	s.DefaultHalfLifeDays = halfLifeDays
	return s
}

// resolveParams fills in every unset field of a caller's Params, in order:
// the caller's explicit value, then the searcher's configured default, then
// DefaultParams. Iterations and Decay use Params' pointer fields so an
// explicit zero is honored rather than treated as unset.
func (s *ActivationSearcher) resolveParams(p Params) resolvedParams {
	out := resolvedParams{
		SeedMinSimilarity: p.SeedMinSimilarity,
		ActivationFloor:   p.ActivationFloor,
		HalfLifeDays:      p.HalfLifeDays,
	}

	switch {
	case p.Iterations != nil:
		out.Iterations = *p.Iterations
	case s.DefaultIterations != 0:
		out.Iterations = s.DefaultIterations
	default:
		out.Iterations = DefaultParams.Iterations
	}

	switch {
	case p.Decay != nil:
		out.Decay = *p.Decay
	case s.DefaultDecay != 0:
		out.Decay = s.DefaultDecay
	default:
		out.Decay = DefaultParams.Decay
	}

	if out.SeedMinSimilarity == 0 {
		out.SeedMinSimilarity = DefaultParams.SeedMinSimilarity
	}
	if out.ActivationFloor == 0 {
		out.ActivationFloor = DefaultParams.ActivationFloor
	}
	if out.HalfLifeDays == 0 {
		if s.DefaultHalfLifeDays != 0 {
			out.HalfLifeDays = s.DefaultHalfLifeDays
		} else {
			out.HalfLifeDays = DefaultParams.HalfLifeDays
		}
	}

	return out
}

// Search runs the seed/spread/weight/filter pipeline and returns up to limit
// notes ranked by final activation. An empty index or graph yields an empty
// result, not an error.
func (s *ActivationSearcher) Search(ctx context.Context, query string, limit int, params Params, filters Filters) ([]Result, error) {
	if limit <= 0 {
		return nil, nil
	}
	resolved := s.resolveParams(params)

	seedVector, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	activation := s.seed(ctx, seedVector, limit)
	if len(activation) == 0 {
		return nil, nil
	}

	for i := 0; i < resolved.Iterations; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		activation = s.spread(activation, resolved)
		if len(activation) == 0 {
			break
		}
	}

	now := time.Now()
	weighted := make([]Result, 0, len(activation))
	for id, score := range activation {
		note, err := s.Store.GetNote(ctx, id)
		if err != nil || note == nil {
			continue
		}
		reference := note.CreatedAt
		if note.LastAccessed != nil {
			reference = *note.LastAccessed
		}
		final := score * RecencyFactor(now, reference, resolved.HalfLifeDays) * ImportanceFactor(note.Importance, note.AccessCount)
		weighted = append(weighted, Result{Note: note, Activation: final})
	}

	sort.Slice(weighted, func(i, j int) bool {
		return weighted[i].Activation > weighted[j].Activation
	})

	filtered := s.applyFilters(ctx, weighted, filters)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	s.touch(ctx, filtered, now)
	return filtered, nil
}

func (s *ActivationSearcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vec, err := s.Embeddings.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embedding provider failed: %w", err)
	}
	return store.L2Normalize(vec), nil
}

// seed produces the initial activation set: ANN top-(limit*3) with no
// similarity floor when the index is enabled, or a full linear scan kept
// above the seed similarity floor when it is disabled.
func (s *ActivationSearcher) seed(ctx context.Context, query []float32, limit int) map[int64]float64 {
	activation := make(map[int64]float64)

	if s.Index.Enabled() {
		for _, r := range s.Index.Search(ctx, query, limit*3, 0) {
			activation[r.ID] = r.Similarity
		}
		return activation
	}

	notes, err := s.Store.ListAllNotes(ctx)
	if err != nil {
		log.Printf("search: linear seed scan failed: %v", err)
		return activation
	}
	for _, n := range notes {
		if len(n.Embedding) == 0 {
			continue
		}
		sim := store.CosineSimilarity(query, n.Embedding)
		if sim >= DefaultParams.SeedMinSimilarity {
			activation[n.ID] = sim
		}
	}
	return activation
}

// spread propagates one iteration of damped activation: every active node
// retains a decayed share of its own score and forwards a decayed,
// edge-weighted share to each neighbor. The result is rescaled so its peak is
// 1.0, keeping scores comparable across iterations regardless of graph size.
func (s *ActivationSearcher) spread(current map[int64]float64, params resolvedParams) map[int64]float64 {
	next := make(map[int64]float64)
	for id, score := range current {
		if score < params.ActivationFloor {
			continue
		}
		next[id] += score * params.Decay
		for _, neighbor := range s.Cache.Neighbors(id) {
			next[neighbor.ID] += score * neighbor.Weight * params.Decay
		}
	}

	max := 0.0
	for _, v := range next {
		if v > max {
			max = v
		}
	}
	if max > 0 {
		for id := range next {
			next[id] /= max
		}
	}
	return next
}

// applyFilters keeps results matching every non-nil filter field: exact
// category equality, created_at within [TimeAfter, TimeBefore] inclusive on
// both bounds, and at least one linked entity of EntityType.
func (s *ActivationSearcher) applyFilters(ctx context.Context, results []Result, f Filters) []Result {
	if f.Category == nil && f.TimeAfter == nil && f.TimeBefore == nil && f.EntityType == nil {
		return results
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		if f.Category != nil && r.Note.Category != *f.Category {
			continue
		}
		if f.TimeAfter != nil && r.Note.CreatedAt.Before(*f.TimeAfter) {
			continue
		}
		if f.TimeBefore != nil && r.Note.CreatedAt.After(*f.TimeBefore) {
			continue
		}
		if f.EntityType != nil && !s.hasEntityOfType(ctx, r.Note.ID, *f.EntityType) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *ActivationSearcher) hasEntityOfType(ctx context.Context, noteID int64, entityType string) bool {
	entities, err := s.Store.EntitiesForNote(ctx, noteID)
	if err != nil {
		return false
	}
	for _, e := range entities {
		if e.Type == entityType {
			return true
		}
	}
	return false
}

// touch records that each returned note was accessed. Failures are logged
// and swallowed: a successful query must never fail because of a bookkeeping
// side effect.
func (s *ActivationSearcher) touch(ctx context.Context, results []Result, now time.Time) {
	for _, r := range results {
		if err := s.Store.TouchNote(ctx, r.Note.ID, now); err != nil {
			log.Printf("search: touch failed for note %d: %v", r.Note.ID, err)
		}
	}
}
