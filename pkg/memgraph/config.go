// Package memgraph wires the store, ANN index, graph cache, extractor, and
// activation searcher into the ingestion and retrieval engine (C6/C8).
package memgraph

import (
	"os"
	"strconv"
)

// Config holds configuration for the memory engine.
type Config struct {
	// DBPath is the path to the SQLite database file. If empty or
	// ":memory:", an in-memory database is used.
	DBPath string

	// OpenAIKey enables the OpenAI-backed embedding client. Required unless
	// custom clients are supplied via NewWithClients.
	OpenAIKey string

	// EmbeddingModel selects the embedding model (default: provider default).
	EmbeddingModel string

	// EmbeddingDim is the vector width notes are embedded to (default 384).
	EmbeddingDim int

	// EntityExtractor selects the extraction backend: "regex" (default,
	// dictionary-only) or "statistical" (dictionary unioned with an LLM
	// backend, requires OpenAIKey or a supplied llm.LLMClient).
	EntityExtractor string

	// LLMModel selects the model used by the statistical extractor.
	LLMModel string

	// UseANNIndex toggles the in-memory ANN index (C4). When false, seeding
	// and similarity search fall back to a linear scan over the store.
	UseANNIndex bool

	// ActivationIterations is the number of spreading-activation rounds.
	ActivationIterations int

	// ActivationDecay is the per-iteration damping factor.
	ActivationDecay float64

	// SimilarityThreshold is the minimum cosine similarity for a semantic
	// edge to be created between two notes during ingestion.
	SimilarityThreshold float64

	// MaxSemanticLinks caps the number of semantic edges created per note
	// during ingestion.
	MaxSemanticLinks int

	// DuplicateThreshold is the cosine similarity above which an incoming
	// note is rejected as a duplicate of an existing one.
	DuplicateThreshold float64

	// SimilarThreshold is the cosine similarity above which an existing note
	// is surfaced as "similar" in an ingestion result, without blocking it.
	SimilarThreshold float64

	// HalfLifeDays is the recency-factor half-life used by search.
	HalfLifeDays int
}

// defaultConfig returns the documented defaults before environment overrides
// and caller overrides are applied.
func defaultConfig() Config {
	return Config{
		EmbeddingDim:         384,
		EntityExtractor:      "regex",
		UseANNIndex:          true,
		ActivationIterations: 3,
		ActivationDecay:      0.7,
		SimilarityThreshold:  0.5,
		MaxSemanticLinks:     5,
		DuplicateThreshold:   0.95,
		SimilarThreshold:     0.90,
		HalfLifeDays:         30,
	}
}

// ConfigFromEnv builds a Config from the documented environment variables,
// layered over the defaults. Any variable that is unset or fails to parse
// keeps its default value.
func ConfigFromEnv() Config {
	cfg := defaultConfig()

	cfg.DBPath = os.Getenv("DB_PATH")
	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.EmbeddingModel = os.Getenv("EMBEDDING_MODEL")
	cfg.LLMModel = os.Getenv("LLM_MODEL")

	if v := os.Getenv("ENTITY_EXTRACTOR"); v != "" {
		cfg.EntityExtractor = v
	}
	if v, ok := envInt("EMBEDDING_DIM"); ok {
		cfg.EmbeddingDim = v
	}
	if v, ok := envBool("USE_ANN_INDEX"); ok {
		cfg.UseANNIndex = v
	}
	if v, ok := envInt("ACTIVATION_ITERATIONS"); ok {
		cfg.ActivationIterations = v
	}
	if v, ok := envFloat("ACTIVATION_DECAY"); ok {
		cfg.ActivationDecay = v
	}
	if v, ok := envFloat("SIMILARITY_THRESHOLD"); ok {
		cfg.SimilarityThreshold = v
	}
	if v, ok := envInt("MAX_SEMANTIC_LINKS"); ok {
		cfg.MaxSemanticLinks = v
	}
	if v, ok := envFloat("DUPLICATE_THRESHOLD"); ok {
		cfg.DuplicateThreshold = v
	}
	if v, ok := envFloat("SIMILAR_THRESHOLD"); ok {
		cfg.SimilarThreshold = v
	}
	if v, ok := envInt("HALF_LIFE_DAYS"); ok {
		cfg.HalfLifeDays = v
	}

	return cfg
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envFloat(name string) (float64, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
