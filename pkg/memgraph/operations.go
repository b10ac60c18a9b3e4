package memgraph

import (
	"context"
	"strings"
	"time"

	"github.com/dsolli/memgraph/pkg/store"
	"github.com/google/uuid"
)

// Search runs the activation-search pipeline (C7) over the note graph.
func (e *Engine) Search(ctx context.Context, query string, limit int, params SearchParams, filters SearchFilters) (*SearchResponse, error) {
	start := time.Now()
	results, err := e.searcher.Search(ctx, query, limit, params, filters)
	recordOperation(ctx, e.metricsCollector, "search_memory", err, time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}
	return &SearchResponse{Results: results}, nil
}

// FindSimilar returns existing notes whose content is similar to the given
// text, without running the full activation pipeline.
func (e *Engine) FindSimilar(ctx context.Context, content string, threshold float64, limit int) ([]SimilarResult, error) {
	return e.searcher.FindSimilar(ctx, content, threshold, limit)
}

// GetGraph returns a note and its direct neighbors for graph visualization.
func (e *Engine) GetGraph(ctx context.Context, noteID int64) (*NodeGraph, error) {
	return e.searcher.GetGraph(ctx, noteID)
}

// UpdateNote re-embeds and updates a note's content and/or category. When
// content changes, the note's semantic edges are dropped and recomputed
// against its new embedding; entity edges are left as-is, per spec §4.6 ("a
// full re-link is acceptable"). last_accessed is left unchanged.
func (e *Engine) UpdateNote(ctx context.Context, noteID int64, content, category *string) error {
	start := time.Now()
	err := e.updateNote(ctx, noteID, content, category)
	recordOperation(ctx, e.metricsCollector, "update_note", err, time.Since(start).Milliseconds())
	return err
}

func (e *Engine) updateNote(ctx context.Context, noteID int64, content, category *string) error {
	if content != nil && strings.TrimSpace(*content) == "" {
		return newError(KindInvalidArgument, "content cannot be empty", nil)
	}

	existing, err := e.store.GetNote(ctx, noteID)
	if err != nil {
		return newError(KindStoreFailure, "failed to read note", err)
	}
	if existing == nil {
		return newError(KindNotFound, "note not found", store.ErrNoteNotFound)
	}

	var embedding []float32
	if content != nil {
		encodedText := composeEncodedText(*content, existing.EmotionalTone, existing.EmotionalReflection)
		encodedText = truncateForEmbedding(encodedText)
		rawEmbedding, err := e.embeddings.EmbedOne(ctx, encodedText)
		if err != nil {
			return newError(KindEmbeddingUnavailable, "failed to embed updated note", err)
		}
		embedding = store.L2Normalize(rawEmbedding)
	}

	_ = e.store.RecordVersion(ctx, &store.NoteVersion{
		ID:        uuid.New().String(),
		NoteID:    noteID,
		Content:   existing.Content,
		Category:  existing.Category,
		CreatedAt: time.Now(),
	})

	if err := e.store.UpdateNoteFields(ctx, noteID, content, category, embedding); err != nil {
		return newError(KindStoreFailure, "failed to update note", err)
	}

	if embedding != nil {
		_ = e.index.Add(ctx, noteID, embedding)
		if err := e.relinkSemanticEdges(ctx, noteID, embedding); err != nil {
			return newError(KindStoreFailure, "failed to recompute semantic edges", err)
		}
	}
	return nil
}

// relinkSemanticEdges drops noteID's existing semantic edges and recreates
// them against its updated embedding, in both the store and the graph
// cache. Entity edges are untouched.
func (e *Engine) relinkSemanticEdges(ctx context.Context, noteID int64, embedding []float32) error {
	e.cache.RemoveEdgesForType(noteID, "semantic")
	if err := e.store.RemoveEdgesForType(ctx, noteID, "semantic"); err != nil {
		return err
	}

	tx, err := e.store.BeginIngest(ctx)
	if err != nil {
		return err
	}
	if _, err := e.linkSemanticNeighbors(ctx, tx, noteID, embedding); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	newEdges, err := e.store.EdgesForNote(ctx, noteID)
	if err != nil {
		return err
	}
	for _, edge := range newEdges {
		if edge.Type != "semantic" {
			continue
		}
		e.cache.AddEdge(edge.SourceID, edge.TargetID, edge.Weight, edge.Type)
		e.cache.AddEdge(edge.TargetID, edge.SourceID, edge.Weight, edge.Type)
	}
	return nil
}

// DeleteNote removes a note and every edge incident to it, from both the
// persistent store and the derived in-memory structures.
func (e *Engine) DeleteNote(ctx context.Context, noteID int64) error {
	start := time.Now()
	err := e.store.DeleteNote(ctx, noteID)
	if err == nil {
		e.index.Remove(ctx, noteID)
		e.cache.RemoveEdgesFor(noteID)
	} else {
		err = newError(KindStoreFailure, "failed to delete note", err)
	}
	recordOperation(ctx, e.metricsCollector, "delete_note", err, time.Since(start).Milliseconds())
	return err
}

// SetImportance updates a note's importance tier (critical, normal, or
// low), which feeds the importance factor in ranked retrieval.
func (e *Engine) SetImportance(ctx context.Context, noteID int64, level string) error {
	if level != "critical" && level != "normal" && level != "low" {
		return newError(KindInvalidArgument, "importance must be critical, normal, or low", nil)
	}
	start := time.Now()
	err := e.store.SetImportance(ctx, noteID, level)
	if err != nil {
		err = newError(KindStoreFailure, "failed to set importance", err)
	}
	recordOperation(ctx, e.metricsCollector, "set_importance", err, time.Since(start).Milliseconds())
	return err
}
