package search

import (
	"context"
	"time"

	"github.com/dsolli/memgraph/pkg/store"
)

// mockStore implements store.GraphStore with plain maps, enough surface for
// activation search and related-operation tests without a database.
type mockStore struct {
	notes    map[int64]*store.Note
	entities map[int64][]*store.Entity
	touched  map[int64]int
}

func newMockStore() *mockStore {
	return &mockStore{
		notes:    make(map[int64]*store.Note),
		entities: make(map[int64][]*store.Entity),
		touched:  make(map[int64]int),
	}
}

func (m *mockStore) BeginIngest(ctx context.Context) (store.Tx, error) { return nil, nil }

func (m *mockStore) GetNote(ctx context.Context, id int64) (*store.Note, error) {
	return m.notes[id], nil
}

func (m *mockStore) ListAllNotes(ctx context.Context) ([]*store.Note, error) {
	out := make([]*store.Note, 0, len(m.notes))
	for _, n := range m.notes {
		out = append(out, n)
	}
	return out, nil
}

func (m *mockStore) ListAllEdges(ctx context.Context) ([]*store.Edge, error) { return nil, nil }
func (m *mockStore) EdgesForNote(ctx context.Context, id int64) ([]*store.Edge, error) {
	return nil, nil
}

func (m *mockStore) EntitiesForNote(ctx context.Context, id int64) ([]*store.Entity, error) {
	return m.entities[id], nil
}

func (m *mockStore) UpdateNoteFields(ctx context.Context, id int64, content, category *string, embedding []float32) error {
	return nil
}

func (m *mockStore) TouchNote(ctx context.Context, id int64, now time.Time) error {
	m.touched[id]++
	if n, ok := m.notes[id]; ok {
		n.AccessCount++
		t := now
		n.LastAccessed = &t
	}
	return nil
}

func (m *mockStore) SetImportance(ctx context.Context, id int64, level string) error { return nil }
func (m *mockStore) DeleteNote(ctx context.Context, id int64) error                  { return nil }
func (m *mockStore) RemoveEdgesFor(ctx context.Context, id int64) error              { return nil }
func (m *mockStore) RemoveEdgesForType(ctx context.Context, id int64, edgeType string) error {
	return nil
}
func (m *mockStore) RecordVersion(ctx context.Context, v *store.NoteVersion) error   { return nil }

func (m *mockStore) Stats(ctx context.Context) (store.Stats, error) {
	return store.Stats{NoteCount: int64(len(m.notes))}, nil
}

func (m *mockStore) Close() error { return nil }

var _ store.GraphStore = (*mockStore)(nil)

// mockEmbeddingClient returns a fixed vector per text, or whatever was
// registered for that exact string, falling back to a default.
type mockEmbeddingClient struct {
	byText  map[string][]float32
	Default []float32
}

func newMockEmbeddingClient() *mockEmbeddingClient {
	return &mockEmbeddingClient{byText: make(map[string][]float32)}
}

func (m *mockEmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.EmbedOne(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if v, ok := m.byText[text]; ok {
		return v, nil
	}
	return m.Default, nil
}
