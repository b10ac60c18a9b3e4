package search

import (
	"context"

	"github.com/dsolli/memgraph/pkg/graphcache"
	"github.com/dsolli/memgraph/pkg/store"
)

// NodeGraph is a note's neighborhood summary: the note itself plus its
// cached adjacency, each entry carrying the edge weight and type that
// connects it to the note.
type NodeGraph struct {
	Note      *store.Note
	Neighbors []graphcache.Neighbor
}

// GetGraph returns a note's summary and cached neighbors. Unknown ids report
// store.ErrNoteNotFound; a note with no edges yet returns an empty neighbor
// list rather than an error.
func (s *ActivationSearcher) GetGraph(ctx context.Context, noteID int64) (*NodeGraph, error) {
	note, err := s.Store.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, store.ErrNoteNotFound
	}

	return &NodeGraph{Note: note, Neighbors: s.Cache.Neighbors(noteID)}, nil
}
