package memgraph

import (
	"github.com/dsolli/memgraph/pkg/search"
	"github.com/dsolli/memgraph/pkg/store"
)

// Type re-exports for caller convenience, so importers of this package
// rarely need to also import pkg/store or pkg/search directly.

// Note is re-exported from the store package.
type Note = store.Note

// Entity is re-exported from the store package.
type Entity = store.Entity

// Edge is re-exported from the store package.
type Edge = store.Edge

// SearchResult is re-exported from the search package.
type SearchResult = search.Result

// SimilarResult is re-exported from the search package.
type SimilarResult = search.SimilarResult

// SearchFilters is re-exported from the search package.
type SearchFilters = search.Filters

// SearchParams is re-exported from the search package.
type SearchParams = search.Params

// NodeGraph is re-exported from the search package.
type NodeGraph = search.NodeGraph

// Stats reports basic telemetry about the note graph.
type Stats struct {
	NoteCount      int64
	EdgeCount      int64
	EntityCount    int64
	ANNIndexCount  int
	GraphCacheSize int
}

// IngestionResult reports the outcome of adding a note: its assigned id and
// any existing notes it was found to be similar (but not duplicate) to.
type IngestionResult struct {
	NoteID        int64
	SimilarNotes  []SimilarResult
	EntitiesFound int
	EdgesCreated  int
	Trace         *OperationTrace
}

// SearchResponse wraps search results. Search records no timing trace, so
// Trace is always nil.
type SearchResponse struct {
	Results []SearchResult
	Trace   *OperationTrace
}
