package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockLLM struct {
	response string
	err      error
}

func (m *mockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return m.response, m.err
}

func (m *mockLLM) CompleteWithSchema(ctx context.Context, prompt string, schema any) error {
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(m.response), schema)
}

func TestStatisticalExtractorDropsNumberLabelAndNoise(t *testing.T) {
	mock := &mockLLM{response: `[
		{"name": "Ada Lovelace", "type": "person", "confidence": 0.9},
		{"name": "42", "type": "number", "confidence": 0.8},
		{"name": "the", "type": "concept", "confidence": 0.4}
	]`}
	s := NewStatisticalExtractor(mock)

	entities, err := s.Extract(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	require.Equal(t, "Ada Lovelace", entities[0].Name)
	require.Equal(t, "person", entities[0].Type)
}

func TestStatisticalExtractorNormalizesUnknownType(t *testing.T) {
	mock := &mockLLM{response: `[{"name": "Widget", "type": "gizmo", "confidence": 0.7}]`}
	s := NewStatisticalExtractor(mock)

	entities, err := s.Extract(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	require.Equal(t, "concept", entities[0].Type)
}

func TestCombinedExtractorFallsBackOnStatisticalError(t *testing.T) {
	mock := &mockLLM{err: errors.New("provider unavailable")}
	c := NewExtractor("statistical", mock)

	entities, err := c.Extract(context.Background(), "Working on Docker")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	require.Equal(t, "docker", entities[0].Name)
}
