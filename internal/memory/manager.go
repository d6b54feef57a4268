// Package memory implements the hierarchical agent memory engine: record
// lifecycle (store, search, recall, consolidate, forget), scheduled decay
// and layer rebalancing, over a pluggable VectorStore and EmbeddingProvider.
package memory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Parswanadh/memory-mcp-server/internal/config"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/cache"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/embeddings"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/embeddings/local"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/embeddings/remote"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/idlock"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/store"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/store/memvec"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/store/pinecone"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/store/weaviate"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

const maxContentLength = 10_000

// defaultImportance is used when store's options omit one.
const defaultImportance = 0.5

// Manager coordinates the WorkingCache and VectorStore behind the engine's
// seven domain operations. It is the sole mutator of Records.
type Manager struct {
	cfg      *config.Config
	embedder embeddings.Provider
	vstore   store.VectorStore
	cache    *cache.WorkingCache
	locks    *idlock.Table
	logger   *slog.Logger
}

// NewManager builds a Manager by selecting a VectorStore and
// EmbeddingProvider per cfg, initializing the store, and warming the
// WorkingCache from it. Configuration, provider and store failures are
// returned as FatalInit; a failed cache warm-up is only logged.
func NewManager(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, memerr.NewFatalInit("invalid configuration", err)
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, memerr.NewFatalInit("embedding provider init failed", err)
	}

	vstore, err := newVectorStore(cfg, emb.Dimensions())
	if err != nil {
		return nil, memerr.NewFatalInit("vector store init failed", err)
	}
	if err := vstore.Initialize(ctx); err != nil {
		return nil, memerr.NewFatalInit("vector store unreachable", err)
	}

	wc := cache.New(vstore, cache.DefaultCapacity)
	if err := wc.Warm(ctx, time.Now().UnixMilli()); err != nil {
		logger.Warn("working cache warm-up failed", "error", err)
	}

	return &Manager{
		cfg:      cfg,
		embedder: emb,
		vstore:   vstore,
		cache:    wc,
		locks:    idlock.New(),
		logger:   logger,
	}, nil
}

func newEmbedder(cfg *config.Config) (embeddings.Provider, error) {
	switch cfg.EmbeddingProvider {
	case "local":
		return local.New(), nil
	case "openai", "":
		return remote.New(remote.Config{
			APIKey:    cfg.OpenAI.APIKey,
			Model:     cfg.OpenAI.EmbeddingModel,
			Dimension: cfg.OpenAI.EmbeddingDims,
		})
	default:
		return nil, memerr.NewValidationError("EMBEDDING_PROVIDER", "must be one of openai, local")
	}
}

func newVectorStore(cfg *config.Config, dimension int) (store.VectorStore, error) {
	switch cfg.VectorStoreType {
	case "weaviate":
		scheme, host := "", cfg.Weaviate.URL
		if i := strings.Index(host, "://"); i >= 0 {
			scheme, host = host[:i], host[i+3:]
		}
		return weaviate.New(weaviate.Config{
			Scheme: scheme,
			Host:   host,
			APIKey: cfg.Weaviate.APIKey,
		})
	case "pinecone":
		return pinecone.New(pinecone.Config{
			APIKey:    cfg.Pinecone.APIKey,
			Host:      cfg.Pinecone.Index,
			Dimension: dimension,
		})
	case "memory", "":
		return memvec.New(), nil
	default:
		return nil, memerr.NewValidationError("VECTOR_STORE_TYPE", "must be one of memory, weaviate, pinecone")
	}
}

// StoreOptions configures Store's optional inputs.
type StoreOptions struct {
	Importance float64
	Tags       []string
	Source     models.Source
	Layer      models.Layer // zero value means "choose by importance"
}

// Store creates and persists a new Record from content.
func (m *Manager) Store(ctx context.Context, content string, opts StoreOptions) (*models.Record, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, memerr.NewValidationError("content", "must not be empty")
	}
	if len(content) > maxContentLength {
		return nil, memerr.NewValidationError("content", "must be at most 10000 characters")
	}

	importance := opts.Importance
	if importance == 0 {
		importance = defaultImportance
	}
	importance = models.ClampImportance(importance)

	source := opts.Source
	if source == "" {
		source = models.SourceAgent
	}

	layer := opts.Layer
	if layer == "" {
		layer = initialLayer(importance)
	}

	embedding, err := m.embedder.Embed(ctx, content)
	if err != nil {
		return nil, memerr.NewBackendError("embed content", err)
	}

	now := time.Now().UnixMilli()
	rec := &models.Record{
		ID:           uuid.NewString(),
		Content:      content,
		Embedding:    embedding,
		TimestampMS:  now,
		Importance:   importance,
		Source:       source,
		Tags:         append([]string(nil), opts.Tags...),
		AccessCount:  0,
		LastAccessMS: now,
		Layer:        layer,
	}

	err = m.locks.With(rec.ID, func() error {
		return m.cache.Put(ctx, rec)
	})
	if err != nil {
		return nil, memerr.NewBackendError("store record", err)
	}
	return rec, nil
}

// initialLayer maps importance to the record's starting retention tier.
func initialLayer(importance float64) models.Layer {
	switch {
	case importance >= 0.8:
		return models.LayerLongTerm
	case importance >= 0.5:
		return models.LayerShortTerm
	default:
		return models.LayerWorking
	}
}

// Get returns a record by id, checking the WorkingCache first.
func (m *Manager) Get(ctx context.Context, id string) (*models.Record, error) {
	if rec, ok := m.cache.Get(id); ok {
		return rec, nil
	}
	rec, err := m.vstore.Get(ctx, id)
	if err != nil {
		return nil, memerr.NewBackendError("get record", err)
	}
	return rec, nil
}

// List returns records matching filter, capped at store.MaxListSize.
func (m *Manager) List(ctx context.Context, filter *models.SearchFilter) ([]*models.Record, error) {
	recs, err := m.vstore.List(ctx, filter)
	if err != nil {
		return nil, memerr.NewBackendError("list records", err)
	}
	return recs, nil
}

// Stats summarizes the engine's current holdings.
type Stats struct {
	TotalMemories int64
	ByLayer       map[models.Layer]int64
	AvgImportance float64
	OldestMS      int64
	NewestMS      int64
}

// Stats computes engine-wide statistics via a list-based count, per the
// resolution of the "stats" open question: cheaper and accurate compared to
// an empty-query cosine search over every layer.
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	recs, err := m.vstore.List(ctx, nil)
	if err != nil {
		return nil, memerr.NewBackendError("stats", err)
	}

	stats := &Stats{ByLayer: map[models.Layer]int64{
		models.LayerWorking:   0,
		models.LayerShortTerm: 0,
		models.LayerLongTerm:  0,
	}}
	if len(recs) == 0 {
		return stats, nil
	}

	var sumImportance float64
	stats.OldestMS = recs[0].TimestampMS
	stats.NewestMS = recs[0].TimestampMS
	for _, rec := range recs {
		stats.ByLayer[rec.Layer]++
		sumImportance += rec.Importance
		if rec.TimestampMS < stats.OldestMS {
			stats.OldestMS = rec.TimestampMS
		}
		if rec.TimestampMS > stats.NewestMS {
			stats.NewestMS = rec.TimestampMS
		}
	}
	stats.TotalMemories = int64(len(recs))
	stats.AvgImportance = sumImportance / float64(len(recs))
	return stats, nil
}

// Close releases the vector store's resources.
func (m *Manager) Close() error {
	return m.vstore.Close()
}
