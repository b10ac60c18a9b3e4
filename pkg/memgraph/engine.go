package memgraph

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dsolli/memgraph/pkg/annindex"
	"github.com/dsolli/memgraph/pkg/embeddings"
	"github.com/dsolli/memgraph/pkg/extraction"
	"github.com/dsolli/memgraph/pkg/graphcache"
	"github.com/dsolli/memgraph/pkg/llm"
	"github.com/dsolli/memgraph/pkg/metrics"
	"github.com/dsolli/memgraph/pkg/search"
	"github.com/dsolli/memgraph/pkg/store"
	tracepkg "github.com/dsolli/memgraph/pkg/trace"
)

// Engine is the entry point for the memory system: it owns the persistent
// store and the two derived in-memory structures (ANN index, graph cache)
// and coordinates ingestion and retrieval across them.
type Engine struct {
	config     Config
	store      store.GraphStore
	index      *annindex.Index
	cache      *graphcache.Cache
	embeddings embeddings.EmbeddingClient
	extractor  extraction.Extractor
	searcher   *search.ActivationSearcher

	metricsCollector metrics.Collector
	traceExporter    tracepkg.Exporter
}

// New creates an Engine using an OpenAI embedding client, and (when
// cfg.EntityExtractor is "statistical") an OpenAI LLM client for the
// statistical extraction backend.
func New(cfg Config) (*Engine, error) {
	embClient := embeddings.NewOpenAIClient(cfg.OpenAIKey)
	if cfg.EmbeddingModel != "" {
		embClient.Model = cfg.EmbeddingModel
	}

	var llmClient llm.LLMClient
	if cfg.EntityExtractor == "statistical" {
		statClient := llm.NewOpenAILLM(cfg.OpenAIKey)
		if cfg.LLMModel != "" {
			statClient.Model = cfg.LLMModel
		}
		llmClient = statClient
	}

	return NewWithClients(cfg, embClient, llmClient)
}

// NewWithClients creates an Engine with caller-supplied embedding and LLM
// clients, bypassing the OpenAI defaults. llmClient may be nil when
// cfg.EntityExtractor is not "statistical".
func NewWithClients(cfg Config, embClient embeddings.EmbeddingClient, llmClient llm.LLMClient) (*Engine, error) {
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = 384
	}
	if cfg.ActivationIterations <= 0 {
		cfg.ActivationIterations = 3
	}
	if cfg.ActivationDecay <= 0 {
		cfg.ActivationDecay = 0.7
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.5
	}
	if cfg.MaxSemanticLinks <= 0 {
		cfg.MaxSemanticLinks = 5
	}
	if cfg.DuplicateThreshold <= 0 {
		cfg.DuplicateThreshold = 0.95
	}
	if cfg.SimilarThreshold <= 0 {
		cfg.SimilarThreshold = 0.90
	}
	if cfg.HalfLifeDays <= 0 {
		cfg.HalfLifeDays = 30
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = ":memory:"
	}
	graphStore, err := store.NewSQLiteGraphStore(dbPath)
	if err != nil {
		return nil, newError(KindStoreFailure, "failed to open graph store", err)
	}

	idx := annindex.New(cfg.EmbeddingDim, cfg.UseANNIndex)
	cache := graphcache.New()
	extractor := extraction.NewExtractor(cfg.EntityExtractor, llmClient)
	searcher := search.NewActivationSearcher(graphStore, idx, cache, embClient).
		WithDefaultActivationParams(cfg.ActivationIterations, cfg.ActivationDecay, cfg.HalfLifeDays)

	return &Engine{
		config:           cfg,
		store:            graphStore,
		index:            idx,
		cache:            cache,
		embeddings:       embClient,
		extractor:        extractor,
		searcher:         searcher,
		metricsCollector: metrics.NewNoopCollector(),
		traceExporter:    nil,
	}, nil
}

// WithMetricsCollector sets the metrics collector for this Engine.
func (e *Engine) WithMetricsCollector(collector metrics.Collector) *Engine {
	e.metricsCollector = collector
	return e
}

// WithTraceExporter sets the trace exporter for this Engine.
func (e *Engine) WithTraceExporter(exporter tracepkg.Exporter) *Engine {
	e.traceExporter = exporter
	return e
}

// GraphStore returns the underlying persistent store, for callers that need
// direct access (migrations, admin tooling) outside the engine's operations.
func (e *Engine) GraphStore() store.GraphStore {
	return e.store
}

// Bootstrap (C8) loads every note and edge from the persistent store and
// rebuilds the ANN index and graph cache from that state. Call this once at
// startup before serving ingestion or search traffic.
func (e *Engine) Bootstrap(ctx context.Context) error {
	notes, err := e.store.ListAllNotes(ctx)
	if err != nil {
		return newError(KindStoreFailure, "failed to list notes for bootstrap", err)
	}

	vectors := make([]annindex.Vector, 0, len(notes))
	for _, n := range notes {
		if len(n.Embedding) == 0 {
			continue
		}
		vectors = append(vectors, annindex.Vector{ID: n.ID, Embedding: n.Embedding})
	}
	indexed := e.index.Build(ctx, vectors)

	edges, err := e.store.ListAllEdges(ctx)
	if err != nil {
		return newError(KindStoreFailure, "failed to list edges for bootstrap", err)
	}
	e.cache.Rebuild(edges)

	log.Printf("memgraph: bootstrap loaded %d notes (%d indexed), %d edges", len(notes), indexed, len(edges))

	ctx2 := context.Background()
	e.metricsCollector.SetStorageCount(ctx2, "notes", int64(len(notes)))
	e.metricsCollector.SetStorageCount(ctx2, "edges", int64(len(edges)))

	return nil
}

// Stats reports basic telemetry about the note graph and its derived
// in-memory structures.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	s, err := e.store.Stats(ctx)
	if err != nil {
		return Stats{}, newError(KindStoreFailure, "failed to read store stats", err)
	}
	idxStats := e.index.Stats()
	return Stats{
		NoteCount:      s.NoteCount,
		EdgeCount:      s.EdgeCount,
		EntityCount:    s.EntityCount,
		ANNIndexCount:  idxStats.Count,
		GraphCacheSize: e.cache.NodeCount(),
	}, nil
}

// Close releases the underlying store's resources.
func (e *Engine) Close() error {
	if e.traceExporter != nil {
		_ = e.traceExporter.Close()
	}
	return e.store.Close()
}

func recordOperation(ctx context.Context, collector metrics.Collector, operation string, err error, durationMs int64) {
	status := "success"
	if err != nil {
		status = "error"
		collector.RecordError(ctx, operation, string(ClassifyError(err)))
	}
	collector.RecordOperation(ctx, operation, status, durationMs)
}

func (e *Engine) exportTrace(ctx context.Context, operation string, operationID string, status string, durationMs int64, errKind Kind, trace *OperationTrace) {
	if e.traceExporter == nil || trace == nil {
		return
	}
	record := &tracepkg.TraceRecord{
		Timestamp:   timeNow(),
		OperationID: operationID,
		Operation:   operation,
		DurationMs:  durationMs,
		Status:      status,
	}
	if errKind != "" {
		record.ErrorType = string(errKind)
	}
	for _, span := range trace.Spans {
		record.Spans = append(record.Spans, tracepkg.SpanRecord{
			Name:       span.Name,
			DurationMs: span.DurationMs,
			OK:         span.OK,
			ErrorType:  string(ClassifyErrorString(span.Error)),
			Counters:   span.Counters,
		})
	}
	if err := e.traceExporter.Export(ctx, record); err != nil {
		log.Printf("memgraph: trace export failed: %v", err)
	}
}

// ClassifyErrorString classifies an error already reduced to its message
// string, for spans where only the message (not the original error value)
// survives.
func ClassifyErrorString(msg string) Kind {
	if msg == "" {
		return ""
	}
	return ClassifyError(fmt.Errorf("%s", msg))
}

func timeNow() time.Time {
	return time.Now()
}
