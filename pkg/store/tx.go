package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// sqliteTx implements Tx over a single *sql.Tx, scoping one ingestion's
// writes (note, entity upserts, links, edges) to one commit/rollback.
type sqliteTx struct {
	tx *sql.Tx
}

// BeginIngest opens a transaction scoping one ingestion operation, per the
// requirement that a note's persisted row, its entity links, and its edges
// either all land or all roll back together.
func (s *SQLiteGraphStore) BeginIngest(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingestion transaction: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

func (t *sqliteTx) CreateNote(ctx context.Context, note *Note) (int64, error) {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	if note.Importance == "" {
		note.Importance = "normal"
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO notes (content, category, importance, embedding, created_at, last_accessed,
			access_count, emotional_tone, emotional_intensity, emotional_reflection)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		note.Content, note.Category, note.Importance, SerializeEmbedding(note.Embedding),
		note.CreatedAt, note.CreatedAt, note.EmotionalTone, note.EmotionalIntensity, note.EmotionalReflection)
	if err != nil {
		return 0, fmt.Errorf("failed to create note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new note id: %w", err)
	}
	note.ID = id
	note.LastAccessed = &note.CreatedAt
	return id, nil
}

// NormalizeEntityName implements the deterministic normalization used for
// entity deduplication: lowercase, trim surrounding punctuation/space,
// collapse internal whitespace to single spaces.
func NormalizeEntityName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	lower = strings.Trim(lower, ".,;:!?'\"()[]{}")
	return strings.Join(strings.Fields(lower), " ")
}

func (t *sqliteTx) UpsertEntity(ctx context.Context, name, entityType string) (*Entity, error) {
	normalized := NormalizeEntityName(name)

	var e Entity
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, name, normalized_name, type FROM entities WHERE normalized_name = ? AND type = ?`,
		normalized, entityType).Scan(&e.ID, &e.Name, &e.NormalizedName, &e.Type)
	if err == nil {
		return &e, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up entity: %w", err)
	}

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO entities (name, normalized_name, type) VALUES (?, ?, ?)`, name, normalized, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to insert entity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new entity id: %w", err)
	}

	return &Entity{ID: id, Name: name, NormalizedName: normalized, Type: entityType}, nil
}

func (t *sqliteTx) LinkNoteEntity(ctx context.Context, noteID, entityID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO node_entities (note_id, entity_id) VALUES (?, ?)`, noteID, entityID)
	if err != nil {
		return fmt.Errorf("failed to link note to entity: %w", err)
	}
	return nil
}

func (t *sqliteTx) NotesLinkedToEntity(ctx context.Context, entityID int64) ([]int64, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT note_id FROM node_entities WHERE entity_id = ?`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for entity: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan note id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *sqliteTx) AddEdgePair(ctx context.Context, a, b int64, weight float64, edgeType string) error {
	if a == b {
		return fmt.Errorf("store: self-loops are forbidden (note %d)", a)
	}
	for _, dir := range [][2]int64{{a, b}, {b, a}} {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO edges (source_id, target_id, weight, edge_type) VALUES (?, ?, ?, ?)
			 ON CONFLICT(source_id, target_id, edge_type) DO UPDATE SET weight = excluded.weight`,
			dir[0], dir[1], weight, edgeType)
		if err != nil {
			return fmt.Errorf("failed to add edge: %w", err)
		}
	}
	return nil
}

func (t *sqliteTx) Commit() error   { return t.tx.Commit() }
func (t *sqliteTx) Rollback() error { return t.tx.Rollback() }

var _ Tx = (*sqliteTx)(nil)
