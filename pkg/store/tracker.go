package store

import (
	"context"
	"fmt"
)

// NoteHistory provides read access to the optional note_versions table.
// Separate from GraphStore to maintain interface cohesion: callers that only
// need history browsing (e.g. an administrative tool) don't need the full
// write surface.
type NoteHistory interface {
	// VersionsForNote returns the recorded history for a note, oldest first.
	VersionsForNote(ctx context.Context, noteID int64) ([]*NoteVersion, error)

	// VersionCount returns the total number of recorded version rows.
	VersionCount(ctx context.Context) (int64, error)

	// ClearVersions removes all history rows without touching notes, edges, or entities.
	ClearVersions(ctx context.Context) error
}

// Compile-time interface check.
var _ NoteHistory = (*SQLiteGraphStore)(nil)

// VersionsForNote returns the recorded history for a note, oldest first.
func (s *SQLiteGraphStore) VersionsForNote(ctx context.Context, noteID int64) ([]*NoteVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, note_id, content, category, created_at FROM note_versions WHERE note_id = ? ORDER BY created_at`,
		noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list note versions: %w", err)
	}
	defer rows.Close()

	var versions []*NoteVersion
	for rows.Next() {
		var v NoteVersion
		if err := rows.Scan(&v.ID, &v.NoteID, &v.Content, &v.Category, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note version: %w", err)
		}
		versions = append(versions, &v)
	}
	return versions, rows.Err()
}

// VersionCount returns the total number of recorded version rows.
func (s *SQLiteGraphStore) VersionCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM note_versions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count note versions: %w", err)
	}
	return count, nil
}

// ClearVersions removes all history rows without touching notes, edges, or entities.
func (s *SQLiteGraphStore) ClearVersions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM note_versions")
	if err != nil {
		return fmt.Errorf("failed to clear note versions: %w", err)
	}
	return nil
}
