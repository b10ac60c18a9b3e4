package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/dsolli/memgraph/pkg/store"
)

// previewLength bounds how much of a note's content is echoed back in a
// similarity match, enough to recognize the note without dumping its body.
const previewLength = 200

// FindSimilar embeds content and ranks every note whose embedding clears
// threshold, descending by similarity. It has no side effects: unlike Search,
// it does not touch access bookkeeping.
func (s *ActivationSearcher) FindSimilar(ctx context.Context, content string, threshold float64, limit int) ([]SimilarResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, err := s.embedQuery(ctx, content)
	if err != nil {
		return nil, err
	}

	var matches []SimilarResult
	if s.Index.Enabled() {
		for _, r := range s.Index.Search(ctx, query, limit*2, threshold) {
			note, err := s.Store.GetNote(ctx, r.ID)
			if err != nil || note == nil {
				continue
			}
			matches = append(matches, SimilarResult{NoteID: r.ID, Similarity: r.Similarity, Preview: preview(note.Content)})
		}
	} else {
		notes, err := s.Store.ListAllNotes(ctx)
		if err != nil {
			return nil, fmt.Errorf("search: failed to scan notes: %w", err)
		}
		for _, n := range notes {
			if len(n.Embedding) == 0 {
				continue
			}
			sim := store.CosineSimilarity(query, n.Embedding)
			if sim >= threshold {
				matches = append(matches, SimilarResult{NoteID: n.ID, Similarity: sim, Preview: preview(n.Content)})
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength])
}
