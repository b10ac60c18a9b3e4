// Package graphcache implements the in-memory adjacency cache (C5): O(1)
// neighbor lookup during activation spread, rebuilt from the persistent
// store at bootstrap and maintained incrementally thereafter.
package graphcache

import (
	"sync"

	"github.com/dsolli/memgraph/pkg/store"
)

// Neighbor is one directed adjacency entry: a note reachable from another,
// with the weight and type of the edge connecting them.
type Neighbor struct {
	ID     int64
	Weight float64
	Type   string
}

// Cache is the shared, mutable, process-wide adjacency map. A single
// read-write lock guards it, per the fixed store -> C4 -> C5 lock order.
type Cache struct {
	mu        sync.RWMutex
	adjacency map[int64][]Neighbor
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{adjacency: make(map[int64][]Neighbor)}
}

// Rebuild replaces all state with a mapping derived from edges. Edges are
// expected to already be symmetric pairs, as persisted by the store, so no
// mirroring happens here.
func (c *Cache) Rebuild(edges []*store.Edge) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.adjacency = make(map[int64][]Neighbor)
	for _, e := range edges {
		c.adjacency[e.SourceID] = append(c.adjacency[e.SourceID], Neighbor{
			ID: e.TargetID, Weight: e.Weight, Type: e.Type,
		})
	}
}

// AddEdge records one directed adjacency entry from a to b. Callers create a
// symmetric pair by calling AddEdge twice, once per direction, mirroring the
// persistent store's edge pair. Re-adding the same (a,b,type) updates weight.
func (c *Cache) AddEdge(a, b int64, weight float64, edgeType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.adjacency[a]
	for i := range list {
		if list[i].ID == b && list[i].Type == edgeType {
			list[i].Weight = weight
			return
		}
	}
	c.adjacency[a] = append(list, Neighbor{ID: b, Weight: weight, Type: edgeType})
}

// RemoveEdgesFor deletes every adjacency entry mentioning id, on both sides.
func (c *Cache) RemoveEdgesFor(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.adjacency[id] {
		c.removeEntryLocked(n.ID, id)
	}
	delete(c.adjacency, id)
}

func (c *Cache) removeEntryLocked(from, target int64) {
	list := c.adjacency[from]
	for i := range list {
		if list[i].ID == target {
			c.adjacency[from] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// RemoveEdgesForType deletes every adjacency entry of edgeType mentioning
// id, on both sides, leaving entries of other types in place.
func (c *Cache) RemoveEdgesForType(id int64, edgeType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var kept []Neighbor
	for _, n := range c.adjacency[id] {
		if n.Type == edgeType {
			c.removeTypedEntryLocked(n.ID, id, edgeType)
			continue
		}
		kept = append(kept, n)
	}
	c.adjacency[id] = kept
}

func (c *Cache) removeTypedEntryLocked(from, target int64, edgeType string) {
	list := c.adjacency[from]
	for i := range list {
		if list[i].ID == target && list[i].Type == edgeType {
			c.adjacency[from] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Neighbors returns the adjacency list for id, or an empty sequence for
// unknown ids. The returned slice is the cache's own backing storage and
// must not be mutated or retained across a write; it is borrowed, not copied.
func (c *Cache) Neighbors(id int64) []Neighbor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adjacency[id]
}

// NodeCount reports how many ids currently have at least one adjacency entry.
func (c *Cache) NodeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, list := range c.adjacency {
		if len(list) > 0 {
			count++
		}
	}
	return count
}
