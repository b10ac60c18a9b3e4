package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteGraphStore implements GraphStore using SQLite as the backend.
// The dbPath can be a file path or ":memory:".
type SQLiteGraphStore struct {
	db *sql.DB
}

// NewSQLiteGraphStore opens (or creates) the store at dbPath and ensures the schema exists.
func NewSQLiteGraphStore(dbPath string) (*SQLiteGraphStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteGraphStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteGraphStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		category TEXT,
		importance TEXT NOT NULL DEFAULT 'normal',
		embedding BLOB,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_accessed DATETIME,
		access_count INTEGER NOT NULL DEFAULT 0,
		emotional_tone TEXT,
		emotional_intensity INTEGER,
		emotional_reflection TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category);
	CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at);

	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		type TEXT NOT NULL,
		UNIQUE(normalized_name, type)
	);

	CREATE TABLE IF NOT EXISTS node_entities (
		note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		entity_id INTEGER NOT NULL REFERENCES entities(id),
		PRIMARY KEY (note_id, entity_id)
	);

	CREATE INDEX IF NOT EXISTS idx_node_entities_entity ON node_entities(entity_id);

	CREATE TABLE IF NOT EXISTS edges (
		source_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		target_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		weight REAL NOT NULL DEFAULT 1.0,
		edge_type TEXT NOT NULL,
		PRIMARY KEY (source_id, target_id, edge_type)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);

	CREATE TABLE IF NOT EXISTS note_versions (
		id TEXT PRIMARY KEY,
		note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		category TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_note_versions_note ON note_versions(note_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// DB returns the shared connection, mirroring the teacher's store-sharing convention.
func (s *SQLiteGraphStore) DB() *sql.DB {
	return s.db
}

func scanNote(row interface {
	Scan(dest ...interface{}) error
}) (*Note, error) {
	var n Note
	var embedding []byte
	var lastAccessed sql.NullTime
	var tone, reflection sql.NullString
	var intensity sql.NullInt64

	err := row.Scan(&n.ID, &n.Content, &n.Category, &n.Importance, &embedding,
		&n.CreatedAt, &lastAccessed, &n.AccessCount, &tone, &intensity, &reflection)
	if err != nil {
		return nil, err
	}

	n.Embedding = DeserializeEmbedding(embedding)
	if lastAccessed.Valid {
		n.LastAccessed = &lastAccessed.Time
	}
	if tone.Valid {
		n.EmotionalTone = &tone.String
	}
	if intensity.Valid {
		v := int(intensity.Int64)
		n.EmotionalIntensity = &v
	}
	if reflection.Valid {
		n.EmotionalReflection = &reflection.String
	}

	return &n, nil
}

const noteColumns = `id, content, category, importance, embedding, created_at, last_accessed, access_count, emotional_tone, emotional_intensity, emotional_reflection`

// GetNote retrieves a note by id. Returns (nil, nil) if not found.
func (s *SQLiteGraphStore) GetNote(ctx context.Context, id int64) (*Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

// ListAllNotes returns every note, for bootstrap (C8) use.
func (s *SQLiteGraphStore) ListAllNotes(ctx context.Context) ([]*Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ListAllEdges returns every stored edge, for bootstrap (C8) use.
func (s *SQLiteGraphStore) ListAllEdges(ctx context.Context) ([]*Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_id, target_id, weight, edge_type FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}
	defer rows.Close()

	var edges []*Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Weight, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

// EdgesForNote returns the outgoing half of every edge incident to id, used to
// mirror a note's committed edges into the graph cache.
func (s *SQLiteGraphStore) EdgesForNote(ctx context.Context, id int64) ([]*Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, target_id, weight, edge_type FROM edges WHERE source_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get edges for note: %w", err)
	}
	defer rows.Close()

	var edges []*Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Weight, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

// EntitiesForNote returns the entities linked to a note.
func (s *SQLiteGraphStore) EntitiesForNote(ctx context.Context, id int64) ([]*Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.name, e.normalized_name, e.type
		FROM entities e
		JOIN node_entities ne ON ne.entity_id = e.id
		WHERE ne.note_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entities for note: %w", err)
	}
	defer rows.Close()

	var entities []*Entity
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.NormalizedName, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, &e)
	}
	return entities, rows.Err()
}

// UpdateNoteFields re-embeds and/or updates content/category. last_accessed is untouched.
func (s *SQLiteGraphStore) UpdateNoteFields(ctx context.Context, id int64, content, category *string, embedding []float32) error {
	sets := []string{}
	args := []interface{}{}

	if content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *content)
	}
	if category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *category)
	}
	if embedding != nil {
		sets = append(sets, "embedding = ?")
		args = append(args, SerializeEmbedding(embedding))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE notes SET %s WHERE id = ?", strings.Join(sets, ", "))
	_, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// TouchNote increments access_count and sets last_accessed to now.
func (s *SQLiteGraphStore) TouchNote(ctx context.Context, id int64, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notes SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("failed to touch note: %w", err)
	}
	return nil
}

// SetImportance updates only the importance field; idempotent by construction.
func (s *SQLiteGraphStore) SetImportance(ctx context.Context, id int64, level string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE notes SET importance = ? WHERE id = ?`, level, id)
	if err != nil {
		return fmt.Errorf("failed to set importance: %w", err)
	}
	return nil
}

// DeleteNote removes a note. node_entities and note_versions cascade via FK;
// edges are removed explicitly first so the caller can also evict them from
// the graph cache using the same removal call.
func (s *SQLiteGraphStore) DeleteNote(ctx context.Context, id int64) error {
	if err := s.RemoveEdgesFor(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// RemoveEdgesFor deletes every edge mentioning id, both directions.
func (s *SQLiteGraphStore) RemoveEdgesFor(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM edges WHERE source_id = ? OR target_id = ?`, id, id)
	if err != nil {
		return fmt.Errorf("failed to remove edges: %w", err)
	}
	return nil
}

// RemoveEdgesForType deletes every edge of edgeType mentioning id, both
// directions, leaving edges of other types untouched.
func (s *SQLiteGraphStore) RemoveEdgesForType(ctx context.Context, id int64, edgeType string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM edges WHERE (source_id = ? OR target_id = ?) AND edge_type = ?`, id, id, edgeType)
	if err != nil {
		return fmt.Errorf("failed to remove typed edges: %w", err)
	}
	return nil
}

// RecordVersion appends a history snapshot; best-effort, outside the retrieval core.
func (s *SQLiteGraphStore) RecordVersion(ctx context.Context, v *NoteVersion) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO note_versions (id, note_id, content, category, created_at) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.NoteID, v.Content, v.Category, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record note version: %w", err)
	}
	return nil
}

// Stats summarizes store population.
func (s *SQLiteGraphStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&st.NoteCount); err != nil {
		return st, fmt.Errorf("failed to count notes: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM edges").Scan(&st.EdgeCount); err != nil {
		return st, fmt.Errorf("failed to count edges: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities").Scan(&st.EntityCount); err != nil {
		return st, fmt.Errorf("failed to count entities: %w", err)
	}
	return st, nil
}

// Close releases database resources.
func (s *SQLiteGraphStore) Close() error {
	return s.db.Close()
}

// Compile-time interface check.
var _ GraphStore = (*SQLiteGraphStore)(nil)
