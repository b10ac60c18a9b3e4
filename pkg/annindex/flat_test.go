package annindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func unit(vals ...float32) []float32 {
	return vals
}

func TestBuildSkipsDimensionMismatch(t *testing.T) {
	idx := New(3, true)
	count := idx.Build(context.Background(), []Vector{
		{ID: 1, Embedding: unit(1, 0, 0)},
		{ID: 2, Embedding: unit(1, 0)}, // wrong dimension
	})
	require.Equal(t, 1, count)
	require.Equal(t, 1, idx.Stats().Count)
}

func TestSearchOrdersBySimilarityDescending(t *testing.T) {
	idx := New(2, true)
	idx.Build(context.Background(), []Vector{
		{ID: 1, Embedding: unit(1, 0)},
		{ID: 2, Embedding: unit(0.9, 0.1)},
		{ID: 3, Embedding: unit(0, 1)},
	})

	results := idx.Search(context.Background(), unit(1, 0), 2, 0.0)
	require.Len(t, results, 2)
	require.Equal(t, int64(1), results[0].ID)
	require.Equal(t, int64(2), results[1].ID)
}

func TestSearchFiltersByMinSimilarity(t *testing.T) {
	idx := New(2, true)
	idx.Build(context.Background(), []Vector{
		{ID: 1, Embedding: unit(1, 0)},
		{ID: 2, Embedding: unit(0, 1)},
	})

	results := idx.Search(context.Background(), unit(1, 0), 5, 0.99)
	require.Len(t, results, 1)
	require.Equal(t, int64(1), results[0].ID)
}

func TestSearchOnEmptyIndexReturnsEmpty(t *testing.T) {
	idx := New(2, true)
	results := idx.Search(context.Background(), unit(1, 0), 5, 0.0)
	require.Empty(t, results)
}

func TestAddAndRemove(t *testing.T) {
	idx := New(2, true)
	require.NoError(t, idx.Add(context.Background(), 7, unit(1, 0)))
	require.Equal(t, 1, idx.Stats().Count)
	idx.Remove(context.Background(), 7)
	require.Equal(t, 0, idx.Stats().Count)
}
