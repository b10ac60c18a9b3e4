package memgraph

import (
	"context"
)

// mockEmbeddingClient produces deterministic hash-based embeddings so tests
// can predict similarity relationships between texts, the same convention
// the rest of this stack's mocked-dependency tests use.
type mockEmbeddingClient struct {
	CallCount int
	ByText    map[string][]float32
	Calls     []string
}

func newMockEmbeddingClient() *mockEmbeddingClient {
	return &mockEmbeddingClient{ByText: make(map[string][]float32)}
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
	m.CallCount++
	m.Calls = append(m.Calls, text)
	if v, ok := m.ByText[text]; ok {
		return v, nil
	}
	return deterministicEmbedding(text), nil
}

func deterministicEmbedding(text string) []float32 {
	hash := 0
	for _, ch := range text {
		hash = ((hash << 5) - hash) + int(ch)
	}
	if hash < 0 {
		hash = -hash
	}
	embedding := make([]float32, 4)
	embedding[0] = float32(hash%256) / 256.0
	embedding[1] = float32((hash/256)%256) / 256.0
	embedding[2] = float32((hash/65536)%256) / 256.0
	embedding[3] = float32((hash/16777216)%256) / 256.0
	return embedding
}
