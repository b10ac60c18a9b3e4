// Package store provides the persistent storage layer (C3) for the knowledge
// graph: notes, entities, node-entity links, and edges. The store is the
// single source of truth; the ANN index and graph cache are derived state
// that must always be reconstructible from it.
package store

import (
	"context"
	"errors"
	"time"
)

// Note is a persisted unit of text with metadata and an associated embedding.
type Note struct {
	ID                  int64
	Content             string
	Category            string
	Importance          string // critical | normal | low
	Embedding           []float32
	CreatedAt           time.Time
	LastAccessed        *time.Time
	AccessCount         int
	EmotionalTone       *string
	EmotionalIntensity  *int
	EmotionalReflection *string
}

// Entity is a named thing extracted from note text. Identity is the natural
// key (NormalizedName, Type); re-ingesting the same name/type resolves to the
// same row rather than creating a duplicate.
type Entity struct {
	ID             int64
	Name           string
	NormalizedName string
	Type           string
}

// Edge is one directed half of a symmetric pair connecting two notes.
// Every stored edge (a,b,w,t) is mirrored by an edge (b,a,w,t); callers
// should use AddEdgePair rather than inserting a lone direction.
type Edge struct {
	SourceID int64
	TargetID int64
	Weight   float64
	Type     string // semantic | entity
}

// NoteVersion is an optional history row recorded on update_note, not part
// of the retrieval core.
type NoteVersion struct {
	ID        string
	NoteID    int64
	Content   string
	Category  string
	CreatedAt time.Time
}

// ErrNoteNotFound indicates that no note exists for the given id.
var ErrNoteNotFound = errors.New("store: note not found")

// Stats summarizes store population for the stats() operation and bootstrap logging.
type Stats struct {
	NoteCount   int64
	EdgeCount   int64
	EntityCount int64
}

// Tx scopes the multi-statement writes of a single ingestion to one
// transaction, per the requirement that an ingestion's node, entity links,
// and edges either all land or all roll back together.
type Tx interface {
	// CreateNote inserts a new note row and returns its assigned id.
	CreateNote(ctx context.Context, note *Note) (int64, error)

	// UpsertEntity resolves (normalized_name, type) to an existing entity or
	// creates one. Entities are never deleted implicitly.
	UpsertEntity(ctx context.Context, name, entityType string) (*Entity, error)

	// LinkNoteEntity records note-entity membership. A no-op if already linked.
	LinkNoteEntity(ctx context.Context, noteID, entityID int64) error

	// NotesLinkedToEntity returns the ids of notes already linked to entityID,
	// as of the start of this transaction (the note being created is not yet
	// linked and so never appears in its own result).
	NotesLinkedToEntity(ctx context.Context, entityID int64) ([]int64, error)

	// AddEdgePair inserts both directed halves (a,b) and (b,a) of a symmetric
	// edge relation. Self-loops (a==b) are rejected. Re-adding the same
	// (source,target,type) pair updates the stored weight.
	AddEdgePair(ctx context.Context, a, b int64, weight float64, edgeType string) error

	// Commit finalizes the transaction. Rollback discards it.
	Commit() error
	Rollback() error
}

// GraphStore is the full persistent-store contract (C3) used by the engine.
type GraphStore interface {
	// BeginIngest opens a transaction scoping one ingestion operation.
	BeginIngest(ctx context.Context) (Tx, error)

	GetNote(ctx context.Context, id int64) (*Note, error)
	ListAllNotes(ctx context.Context) ([]*Note, error)
	ListAllEdges(ctx context.Context) ([]*Edge, error)
	EdgesForNote(ctx context.Context, id int64) ([]*Edge, error)
	EntitiesForNote(ctx context.Context, id int64) ([]*Entity, error)

	// UpdateNoteFields re-embeds and/or updates content/category for a note.
	// last_accessed is left unchanged.
	UpdateNoteFields(ctx context.Context, id int64, content, category *string, embedding []float32) error

	// TouchNote increments access_count and sets last_accessed to now.
	TouchNote(ctx context.Context, id int64, now time.Time) error

	// SetImportance updates only the importance field.
	SetImportance(ctx context.Context, id int64, level string) error

	// DeleteNote removes a note and cascades to its edges and entity links.
	DeleteNote(ctx context.Context, id int64) error

	// RemoveEdgesFor deletes every edge mentioning id, both directions.
	RemoveEdgesFor(ctx context.Context, id int64) error

	// RemoveEdgesForType deletes every edge of edgeType mentioning id, both
	// directions, leaving edges of other types untouched. Used by
	// update_note to recompute semantic edges without disturbing entity
	// edges.
	RemoveEdgesForType(ctx context.Context, id int64, edgeType string) error

	// RecordVersion appends a history snapshot. Best-effort, not part of the core.
	RecordVersion(ctx context.Context, v *NoteVersion) error

	Stats(ctx context.Context) (Stats, error)
	Close() error
}
