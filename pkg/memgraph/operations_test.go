package memgraph

import (
	"context"
	"testing"

	"github.com/dsolli/memgraph/pkg/graphcache"
	"github.com/stretchr/testify/require"
)

func TestUpdateNoteReEmbedsContent(t *testing.T) {
	e, client := newTestEngine(t)
	ctx := context.Background()

	added, err := e.AddNote(ctx, AddNoteInput{Content: "original content"})
	require.NoError(t, err)

	updated := "revised content"
	client.ByText[updated] = []float32{0, 0, 1, 0}
	require.NoError(t, e.UpdateNote(ctx, added.NoteID, &updated, nil))

	note, err := e.GraphStore().GetNote(ctx, added.NoteID)
	require.NoError(t, err)
	require.Equal(t, updated, note.Content)
	require.Contains(t, client.Calls, updated)
}

func TestUpdateNoteRecomputesSemanticEdges(t *testing.T) {
	e, client := newTestEngine(t)
	ctx := context.Background()

	client.ByText["React is a frontend library."] = []float32{1, 0, 0, 0}
	client.ByText["Completely unrelated gardening notes."] = []float32{0, 1, 0, 0}
	client.ByText["Vue is also a frontend library."] = []float32{0.8, 0, 0.6, 0}

	base, err := e.AddNote(ctx, AddNoteInput{Content: "React is a frontend library."})
	require.NoError(t, err)
	other, err := e.AddNote(ctx, AddNoteInput{Content: "Completely unrelated gardening notes."})
	require.NoError(t, err)
	similar, err := e.AddNote(ctx, AddNoteInput{Content: "Vue is also a frontend library."})
	require.NoError(t, err)

	// base should already have a semantic edge to similar, none to other.
	graph, err := e.GetGraph(ctx, base.NoteID)
	require.NoError(t, err)
	require.True(t, hasNeighbor(graph.Neighbors, similar.NoteID, "semantic"))
	require.False(t, hasNeighbor(graph.Neighbors, other.NoteID, "semantic"))

	// Re-embedding base to match the previously-unrelated note should drop
	// the old semantic edge and create a new one, without touching base's
	// entity edges (there are none here, but the update must not error).
	updated := "Completely unrelated gardening notes, take two."
	client.ByText[updated] = []float32{0, 1, 0, 0}
	require.NoError(t, e.UpdateNote(ctx, base.NoteID, &updated, nil))

	graph, err = e.GetGraph(ctx, base.NoteID)
	require.NoError(t, err)
	require.True(t, hasNeighbor(graph.Neighbors, other.NoteID, "semantic"))
	require.False(t, hasNeighbor(graph.Neighbors, similar.NoteID, "semantic"))
}

func hasNeighbor(neighbors []graphcache.Neighbor, id int64, edgeType string) bool {
	for _, n := range neighbors {
		if n.ID == id && n.Type == edgeType {
			return true
		}
	}
	return false
}

func TestUpdateNoteRejectsEmptyContent(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	added, err := e.AddNote(ctx, AddNoteInput{Content: "something"})
	require.NoError(t, err)

	empty := "   "
	err = e.UpdateNote(ctx, added.NoteID, &empty, nil)
	require.Error(t, err)
	require.Equal(t, KindInvalidArgument, ClassifyError(err))
}

func TestUpdateNoteUnknownNoteReturnsNotFound(t *testing.T) {
	e, _ := newTestEngine(t)
	content := "x"
	err := e.UpdateNote(context.Background(), 999, &content, nil)
	require.Error(t, err)
	require.Equal(t, KindNotFound, ClassifyError(err))
}

func TestDeleteNoteRemovesFromIndexAndCache(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	added, err := e.AddNote(ctx, AddNoteInput{Content: "to be deleted"})
	require.NoError(t, err)

	require.NoError(t, e.DeleteNote(ctx, added.NoteID))

	note, err := e.GraphStore().GetNote(ctx, added.NoteID)
	require.NoError(t, err)
	require.Nil(t, note)
	require.Equal(t, 0, e.index.Stats().Count)
	require.Empty(t, e.cache.Neighbors(added.NoteID))
}

func TestSetImportanceRejectsInvalidLevel(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.SetImportance(context.Background(), 1, "urgent")
	require.Error(t, err)
	require.Equal(t, KindInvalidArgument, ClassifyError(err))
}

func TestSetImportanceUpdatesLevel(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	added, err := e.AddNote(ctx, AddNoteInput{Content: "bump me"})
	require.NoError(t, err)

	require.NoError(t, e.SetImportance(ctx, added.NoteID, "critical"))

	note, err := e.GraphStore().GetNote(ctx, added.NoteID)
	require.NoError(t, err)
	require.Equal(t, "critical", note.Importance)
}
