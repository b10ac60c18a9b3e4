package graphcache

import (
	"testing"

	"github.com/dsolli/memgraph/pkg/store"
	"github.com/stretchr/testify/require"
)

func TestRebuildProducesSymmetricNeighbors(t *testing.T) {
	c := New()
	c.Rebuild([]*store.Edge{
		{SourceID: 1, TargetID: 2, Weight: 0.8, Type: "semantic"},
		{SourceID: 2, TargetID: 1, Weight: 0.8, Type: "semantic"},
	})

	require.Len(t, c.Neighbors(1), 1)
	require.Equal(t, int64(2), c.Neighbors(1)[0].ID)
	require.Len(t, c.Neighbors(2), 1)
	require.Equal(t, int64(1), c.Neighbors(2)[0].ID)
}

func TestNeighborsOfUnknownIDIsEmpty(t *testing.T) {
	c := New()
	require.Empty(t, c.Neighbors(999))
}

func TestAddEdgeThenRemoveEdgesForClearsBothSides(t *testing.T) {
	c := New()
	c.AddEdge(1, 2, 0.6, "entity")
	c.AddEdge(2, 1, 0.6, "entity")
	require.Len(t, c.Neighbors(1), 1)
	require.Len(t, c.Neighbors(2), 1)

	c.RemoveEdgesFor(1)
	require.Empty(t, c.Neighbors(1))
	require.Empty(t, c.Neighbors(2))
}

func TestAddEdgeUpdatesWeightOnReAdd(t *testing.T) {
	c := New()
	c.AddEdge(1, 2, 0.5, "semantic")
	c.AddEdge(1, 2, 0.9, "semantic")
	require.Len(t, c.Neighbors(1), 1)
	require.Equal(t, 0.9, c.Neighbors(1)[0].Weight)
}

func TestRemoveEdgesForTypeLeavesOtherTypesIntact(t *testing.T) {
	c := New()
	c.AddEdge(1, 2, 0.6, "entity")
	c.AddEdge(2, 1, 0.6, "entity")
	c.AddEdge(1, 3, 0.8, "semantic")
	c.AddEdge(3, 1, 0.8, "semantic")

	c.RemoveEdgesForType(1, "semantic")

	require.Len(t, c.Neighbors(1), 1)
	require.Equal(t, "entity", c.Neighbors(1)[0].Type)
	require.Empty(t, c.Neighbors(3))
}

func TestRemoveEdgesForLeavesUnrelatedNodesIntact(t *testing.T) {
	c := New()
	c.AddEdge(1, 2, 0.6, "entity")
	c.AddEdge(2, 1, 0.6, "entity")
	c.AddEdge(3, 4, 0.7, "semantic")
	c.AddEdge(4, 3, 0.7, "semantic")

	c.RemoveEdgesFor(1)
	require.Empty(t, c.Neighbors(1))
	require.Len(t, c.Neighbors(3), 1)
	require.Len(t, c.Neighbors(4), 1)
}
