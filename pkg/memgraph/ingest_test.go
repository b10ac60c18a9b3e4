package memgraph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *mockEmbeddingClient) {
	t.Helper()
	client := newMockEmbeddingClient()
	e, err := NewWithClients(Config{DBPath: ":memory:", EmbeddingDim: 4, UseANNIndex: true}, client, nil)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e, client
}

func TestAddNotePersistsAndIndexes(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := e.AddNote(ctx, AddNoteInput{Content: "React is a frontend library.", Category: "technical"})
	require.NoError(t, err)
	require.NotZero(t, result.NoteID)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.NoteCount)
	require.Equal(t, 1, stats.ANNIndexCount)
}

func TestAddNoteRejectsEmptyContent(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.AddNote(context.Background(), AddNoteInput{Content: "   "})
	require.Error(t, err)
	require.Equal(t, KindInvalidArgument, ClassifyError(err))
}

func TestAddNoteRejectsDuplicate(t *testing.T) {
	e, client := newTestEngine(t)
	ctx := context.Background()

	client.ByText["first note"] = []float32{1, 0, 0, 0}
	client.ByText["second note"] = []float32{1, 0, 0, 0}

	_, err := e.AddNote(ctx, AddNoteInput{Content: "first note"})
	require.NoError(t, err)

	_, err = e.AddNote(ctx, AddNoteInput{Content: "second note"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicateDetected)
}

func TestAddNoteCreatesEntityEdgesBetweenSharedMentions(t *testing.T) {
	e, client := newTestEngine(t)
	ctx := context.Background()

	// Distinct embeddings keep the semantic-edge path from also linking
	// these two notes, isolating the assertion to entity co-occurrence.
	client.ByText["Learning python for data analysis."] = []float32{1, 0, 0, 0}
	client.ByText["Debugging a python script today."] = []float32{0, 1, 0, 0}

	first, err := e.AddNote(ctx, AddNoteInput{Content: "Learning python for data analysis."})
	require.NoError(t, err)

	second, err := e.AddNote(ctx, AddNoteInput{Content: "Debugging a python script today."})
	require.NoError(t, err)

	graph, err := e.GetGraph(ctx, second.NoteID)
	require.NoError(t, err)

	found := false
	for _, n := range graph.Neighbors {
		if n.ID == first.NoteID {
			found = true
		}
	}
	require.True(t, found, "expected an entity edge linking notes that mention the same entity")
}

func TestAddNoteEncodesEmotionalContextIntoEmbeddingInput(t *testing.T) {
	e, client := newTestEngine(t)
	ctx := context.Background()

	tone := "hopeful"
	_, err := e.AddNote(ctx, AddNoteInput{Content: "Shipped the release.", EmotionalTone: &tone})
	require.NoError(t, err)
	require.Contains(t, client.Calls, "Shipped the release.\n\nEmotional tone: hopeful")
}

func TestAddNoteTruncatesOverBudgetContentBeforeEmbedding(t *testing.T) {
	e, client := newTestEngine(t)
	ctx := context.Background()

	var sentences []string
	for i := 0; i < 400; i++ {
		sentences = append(sentences, "This is sentence number filler text for budget testing.")
	}
	longContent := strings.Join(sentences, " ")

	_, err := e.AddNote(ctx, AddNoteInput{Content: longContent})
	require.NoError(t, err)
	require.Len(t, client.Calls, 1)
	require.Less(t, len(client.Calls[0]), len(longContent), "embedded text should be truncated below the original content length")
}

func TestComposeEncodedTextWithoutEmotionalContextReturnsContentUnchanged(t *testing.T) {
	require.Equal(t, "plain content", composeEncodedText("plain content", nil, nil))
}

func TestComposeEncodedTextJoinsToneAndReflection(t *testing.T) {
	tone := "relieved"
	reflection := "Glad this is finally resolved."
	got := composeEncodedText("Fixed the bug.", &tone, &reflection)
	require.Equal(t, "Fixed the bug.\n\nEmotional tone: relieved. Glad this is finally resolved.", got)
}
