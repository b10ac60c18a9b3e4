package memgraph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dsolli/memgraph/pkg/annindex"
	"github.com/dsolli/memgraph/pkg/chunker"
	"github.com/dsolli/memgraph/pkg/store"
	"github.com/google/uuid"
)

// AddNoteInput is the caller-supplied content for a new note.
type AddNoteInput struct {
	Content             string
	Category            string
	Importance          string // defaults to "normal" when empty
	EmotionalTone       *string
	EmotionalIntensity  *int
	EmotionalReflection *string
	TraceEnabled        bool
}

// AddNote runs the ingestion pipeline (C6): it embeds the note (including
// any emotional context in the encoded text), rejects near-duplicates of an
// already-stored note, persists the note, extracts and links entities,
// creates semantic edges to the note's nearest neighbors, and reports any
// existing notes the new one is merely similar (not duplicate) to.
func (e *Engine) AddNote(ctx context.Context, input AddNoteInput) (*IngestionResult, error) {
	start := time.Now()
	operationID := uuid.New().String()

	if strings.TrimSpace(input.Content) == "" {
		return nil, newError(KindInvalidArgument, "note content cannot be empty", nil)
	}
	importance := input.Importance
	if importance == "" {
		importance = "normal"
	}
	if importance != "critical" && importance != "normal" && importance != "low" {
		return nil, newError(KindInvalidArgument, fmt.Sprintf("importance must be critical, normal, or low, got %q", importance), nil)
	}

	var trace *OperationTrace
	if input.TraceEnabled {
		trace = newTrace()
	}

	result, err := e.addNote(ctx, input, importance, trace)

	durationMs := time.Since(start).Milliseconds()
	status := "success"
	var errKind Kind
	if err != nil {
		status = "error"
		errKind = ClassifyError(err)
	}
	recordOperation(ctx, e.metricsCollector, "add_note", err, durationMs)
	e.exportTrace(ctx, "add_note", operationID, status, durationMs, errKind, trace)

	if result != nil {
		result.Trace = trace
	}
	return result, err
}

func (e *Engine) addNote(ctx context.Context, input AddNoteInput, importance string, trace *OperationTrace) (*IngestionResult, error) {
	// Step 1+2: compose the encoded text (content plus any emotional
	// context) and embed it, normalizing so inner product equals cosine
	// similarity downstream.
	embedTimer := newSpanTimer("embed", trace, trace != nil)
	encodedText := composeEncodedText(input.Content, input.EmotionalTone, input.EmotionalReflection)
	encodedText = truncateForEmbedding(encodedText)
	rawEmbedding, err := e.embeddings.EmbedOne(ctx, encodedText)
	if err != nil {
		embedTimer.finish(false, err, nil)
		return nil, newError(KindEmbeddingUnavailable, "failed to embed note", err)
	}
	embedding := store.L2Normalize(rawEmbedding)
	embedTimer.finish(true, nil, nil)

	// Step 3: reject near-duplicates of an already-stored note.
	dedupeTimer := newSpanTimer("dedupe-check", trace, trace != nil)
	if dupID, sim, found := e.findDuplicate(ctx, embedding); found {
		dedupeTimer.finish(false, ErrDuplicateDetected, map[string]int64{"candidateID": dupID})
		return nil, &DuplicateError{ExistingID: dupID, Similarity: sim}
	}
	dedupeTimer.finish(true, nil, nil)

	// Step 3b: collect similar-but-not-duplicate notes for the result,
	// before the new note's own embedding is in the index.
	similarNotes := e.findSimilarForResult(ctx, embedding)

	// Step 4: persist the note and its optional entity links in one
	// transaction.
	persistTimer := newSpanTimer("persist", trace, trace != nil)
	tx, err := e.store.BeginIngest(ctx)
	if err != nil {
		persistTimer.finish(false, err, nil)
		return nil, newError(KindStoreFailure, "failed to begin ingestion transaction", err)
	}

	note := &store.Note{
		Content:             input.Content,
		Category:            input.Category,
		Importance:          importance,
		Embedding:           embedding,
		EmotionalTone:       input.EmotionalTone,
		EmotionalIntensity:  input.EmotionalIntensity,
		EmotionalReflection: input.EmotionalReflection,
	}
	noteID, err := tx.CreateNote(ctx, note)
	if err != nil {
		tx.Rollback()
		persistTimer.finish(false, err, nil)
		return nil, newError(KindStoreFailure, "failed to create note", err)
	}
	persistTimer.finish(true, nil, map[string]int64{"noteID": noteID})

	// Step 5: extract entities from the raw content (not the encoded text,
	// since emotional-context sentences are not user content) and link the
	// note to each, creating co-occurrence edges to every other note already
	// linked to the same entity.
	extractTimer := newSpanTimer("extract-entities", trace, trace != nil)
	entities, err := e.extractor.Extract(ctx, input.Content)
	if err != nil {
		extractTimer.finish(false, err, nil)
	} else {
		extractTimer.finish(true, nil, map[string]int64{"entityCount": int64(len(entities))})
	}

	linkTimer := newSpanTimer("link-entities", trace, trace != nil)
	entityEdges := 0
	for _, entity := range entities {
		ent, err := tx.UpsertEntity(ctx, entity.Name, entity.Type)
		if err != nil {
			tx.Rollback()
			linkTimer.finish(false, err, nil)
			return nil, newError(KindStoreFailure, "failed to upsert entity", err)
		}
		linkedNotes, err := tx.NotesLinkedToEntity(ctx, ent.ID)
		if err != nil {
			tx.Rollback()
			linkTimer.finish(false, err, nil)
			return nil, newError(KindStoreFailure, "failed to list notes linked to entity", err)
		}
		if err := tx.LinkNoteEntity(ctx, noteID, ent.ID); err != nil {
			tx.Rollback()
			linkTimer.finish(false, err, nil)
			return nil, newError(KindStoreFailure, "failed to link note to entity", err)
		}
		for _, otherID := range linkedNotes {
			if otherID == noteID {
				continue
			}
			if err := tx.AddEdgePair(ctx, noteID, otherID, entityEdgeWeight, "entity"); err != nil {
				tx.Rollback()
				linkTimer.finish(false, err, nil)
				return nil, newError(KindStoreFailure, "failed to create entity edge", err)
			}
			entityEdges++
		}
	}
	linkTimer.finish(true, nil, map[string]int64{"edgeCount": int64(entityEdges)})

	// Step 6: link the new note to its nearest semantic neighbors.
	semanticTimer := newSpanTimer("link-semantic", trace, trace != nil)
	semanticEdges, err := e.linkSemanticNeighbors(ctx, tx, noteID, embedding)
	if err != nil {
		tx.Rollback()
		semanticTimer.finish(false, err, nil)
		return nil, newError(KindStoreFailure, "failed to create semantic edges", err)
	}
	semanticTimer.finish(true, nil, map[string]int64{"edgeCount": int64(len(semanticEdges))})

	if err := tx.Commit(); err != nil {
		return nil, newError(KindStoreFailure, "failed to commit ingestion transaction", err)
	}

	// Now that the note is durable, reflect it in the derived in-memory
	// structures so subsequent searches see it immediately. All edges
	// touching the new note are read back from the store rather than
	// reconstructed in memory, so the cache reflects exactly what was
	// committed (including the mirrored direction on each existing
	// neighbor).
	_ = e.index.Add(ctx, noteID, embedding)
	if newEdges, err := e.store.EdgesForNote(ctx, noteID); err == nil {
		for _, edge := range newEdges {
			e.cache.AddEdge(edge.SourceID, edge.TargetID, edge.Weight, edge.Type)
			e.cache.AddEdge(edge.TargetID, edge.SourceID, edge.Weight, edge.Type)
		}
	}

	return &IngestionResult{
		NoteID:        noteID,
		SimilarNotes:  similarNotes,
		EntitiesFound: len(entities),
		EdgesCreated:  entityEdges + len(semanticEdges),
	}, nil
}

const entityEdgeWeight = 0.6

// embeddingChunker bounds how much text is ever handed to the embedding
// provider for a single note: oversized content is truncated at a sentence
// boundary rather than mid-word, reusing the sentence-aware splitter the
// rest of the stack uses for long documents.
var embeddingChunker = chunker.Chunker{MaxTokens: 2048, Overlap: 0}

// truncateForEmbedding returns text unchanged when it already fits the
// embedding budget, or its first sentence-aware chunk otherwise. Embeddings
// are computed from a single chunk, never averaged across several, since a
// note is a single semantic unit.
func truncateForEmbedding(text string) string {
	chunks := embeddingChunker.Chunk(text)
	if len(chunks) <= 1 {
		return text
	}
	return chunks[0].Text
}

// composeEncodedText builds the text actually embedded: the note content,
// followed by a blank line and any emotional context, so two notes with
// identical content but different emotional framing land at slightly
// different points in embedding space.
func composeEncodedText(content string, tone, reflection *string) string {
	var parts []string
	if tone != nil && *tone != "" {
		parts = append(parts, fmt.Sprintf("Emotional tone: %s", *tone))
	}
	if reflection != nil && *reflection != "" {
		parts = append(parts, *reflection)
	}
	if len(parts) == 0 {
		return content
	}
	return content + "\n\n" + strings.Join(parts, ". ")
}

// findDuplicate reports the first existing note whose embedding is within
// DuplicateThreshold cosine similarity of embedding, if any.
func (e *Engine) findDuplicate(ctx context.Context, embedding []float32) (int64, float64, bool) {
	if e.index.Enabled() {
		for _, r := range e.index.Search(ctx, embedding, 1, e.config.DuplicateThreshold) {
			return r.ID, r.Similarity, true
		}
		return 0, 0, false
	}

	notes, err := e.store.ListAllNotes(ctx)
	if err != nil {
		return 0, 0, false
	}
	for _, n := range notes {
		if len(n.Embedding) == 0 {
			continue
		}
		sim := store.CosineSimilarity(embedding, n.Embedding)
		if sim >= e.config.DuplicateThreshold {
			return n.ID, sim, true
		}
	}
	return 0, 0, false
}

// findSimilarForResult surfaces existing notes above SimilarThreshold, for
// callers that want to know a new note closely overlaps prior ones without
// being rejected as a duplicate.
func (e *Engine) findSimilarForResult(ctx context.Context, embedding []float32) []SimilarResult {
	var out []SimilarResult

	if e.index.Enabled() {
		for _, r := range e.index.Search(ctx, embedding, 5, e.config.SimilarThreshold) {
			note, err := e.store.GetNote(ctx, r.ID)
			if err != nil || note == nil {
				continue
			}
			out = append(out, SimilarResult{NoteID: r.ID, Similarity: r.Similarity, Preview: previewText(note.Content)})
		}
		return out
	}

	notes, err := e.store.ListAllNotes(ctx)
	if err != nil {
		return nil
	}
	for _, n := range notes {
		if len(n.Embedding) == 0 {
			continue
		}
		sim := store.CosineSimilarity(embedding, n.Embedding)
		if sim >= e.config.SimilarThreshold {
			out = append(out, SimilarResult{NoteID: n.ID, Similarity: sim, Preview: previewText(n.Content)})
		}
	}
	return out
}

func previewText(content string) string {
	const maxLen = 200
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen]
}

type semanticEdge struct {
	NoteID     int64
	Similarity float64
}

// linkSemanticNeighbors creates up to MaxSemanticLinks edges from noteID to
// its nearest neighbors at or above SimilarityThreshold, over-fetching from
// the ANN index (2x the link budget) to absorb the seed note's own
// self-match before truncating to the final top-N.
func (e *Engine) linkSemanticNeighbors(ctx context.Context, tx store.Tx, noteID int64, embedding []float32) ([]semanticEdge, error) {
	var candidates []semanticEdge

	if e.index.Enabled() {
		for _, r := range e.index.Search(ctx, embedding, e.config.MaxSemanticLinks*2, e.config.SimilarityThreshold) {
			if r.ID == noteID {
				continue
			}
			candidates = append(candidates, semanticEdge{NoteID: r.ID, Similarity: r.Similarity})
		}
	} else {
		notes, err := e.store.ListAllNotes(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range notes {
			if n.ID == noteID || len(n.Embedding) == 0 {
				continue
			}
			sim := store.CosineSimilarity(embedding, n.Embedding)
			if sim >= e.config.SimilarityThreshold {
				candidates = append(candidates, semanticEdge{NoteID: n.ID, Similarity: sim})
			}
		}
		sortSemanticDescending(candidates)
	}

	if len(candidates) > e.config.MaxSemanticLinks {
		candidates = candidates[:e.config.MaxSemanticLinks]
	}

	for _, c := range candidates {
		if err := tx.AddEdgePair(ctx, noteID, c.NoteID, c.Similarity, "semantic"); err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

func sortSemanticDescending(edges []semanticEdge) {
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && edges[j].Similarity > edges[j-1].Similarity; j-- {
			edges[j], edges[j-1] = edges[j-1], edges[j]
		}
	}
}

