// Package annindex implements the in-memory approximate nearest-neighbor
// index (C4): fast top-k similarity retrieval over the current note
// population, kept consistent with the persistent store by bulk build and
// incremental add/remove.
package annindex

import (
	"context"
	"sort"
	"sync"

	"github.com/dsolli/memgraph/pkg/store"
)

// Vector pairs a note id with its embedding, the unit the index is built from.
type Vector struct {
	ID        int64
	Embedding []float32
}

// Result is one similarity hit, sorted descending by the caller's contract.
type Result struct {
	ID         int64
	Similarity float64
}

// Stats summarizes index state for the stats() operation.
type Stats struct {
	Enabled   bool
	Count     int
	Dimension int
}

// Index is an exact flat inner-product index over unit-normalized float32
// vectors. Embeddings are normalized on insertion so inner product equals
// cosine similarity; either an exact flat index or an HNSW-style graph index
// satisfies the component contract, and this implementation chooses the
// former for predictable recall and no external dependency.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[int64][]float32
	enabled   bool
}

// New creates an index fixed to the given embedding dimension.
func New(dimension int, enabled bool) *Index {
	return &Index{
		dimension: dimension,
		vectors:   make(map[int64][]float32),
		enabled:   enabled,
	}
}

// Build drops existing state and indexes every vector whose length equals
// the configured dimension. Others are skipped. Returns the count indexed.
func (idx *Index) Build(_ context.Context, vectors []Vector) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.vectors = make(map[int64][]float32, len(vectors))
	count := 0
	for _, v := range vectors {
		if len(v.Embedding) != idx.dimension {
			continue
		}
		cp := make([]float32, len(v.Embedding))
		copy(cp, v.Embedding)
		idx.vectors[v.ID] = store.L2Normalize(cp)
		count++
	}
	return count
}

// Add inserts a vector under id. Re-adding an existing id is caller error;
// the index performs no dedup by id and simply overwrites.
func (idx *Index) Add(_ context.Context, id int64, vector []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cp := make([]float32, len(vector))
	copy(cp, vector)
	idx.vectors[id] = store.L2Normalize(cp)
	return nil
}

// Remove drops a vector from the index, used by delete_note and update_note's
// remove-then-add re-embedding sequence.
func (idx *Index) Remove(_ context.Context, id int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.vectors, id)
}

// Search returns up to k ids whose similarity to query is >= minSimilarity,
// sorted descending. It over-fetches 2k candidates before filtering and
// truncating to k, compensating for approximate-index recall even though
// this implementation is exact.
func (idx *Index) Search(_ context.Context, query []float32, k int, minSimilarity float64) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || len(idx.vectors) == 0 {
		return nil
	}

	overFetch := k * 2
	if overFetch <= 0 || overFetch > len(idx.vectors) {
		overFetch = len(idx.vectors)
	}

	candidates := make([]Result, 0, len(idx.vectors))
	for id, v := range idx.vectors {
		sim := store.CosineSimilarity(query, v)
		if sim >= minSimilarity {
			candidates = append(candidates, Result{ID: id, Similarity: sim})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if len(candidates) > overFetch {
		candidates = candidates[:overFetch]
	}
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// Stats reports the current index population.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Stats{Enabled: idx.enabled, Count: len(idx.vectors), Dimension: idx.dimension}
}

// Enabled reports whether USE_ANN_INDEX selected this index; when false,
// callers fall back to a linear scan over the store instead of using Search.
func (idx *Index) Enabled() bool {
	return idx.enabled
}
