// Package pinecone implements the managed VectorStore adapter backed by a
// Pinecone index, reached over its REST API. Pinecone has no official Go
// client, so this talks to the data-plane HTTP API directly with net/http.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/store"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// namespace isolates this engine's vectors within a shared Pinecone index.
const namespace = "memory-mcp"

// Config configures the Pinecone connection.
type Config struct {
	APIKey    string
	Host      string // index-specific data-plane host, e.g. "my-index-xxxx.svc.env.pinecone.io"
	Dimension int    // embedding dimension of the target index, used to build the zero query vector for List
}

// Store is the managed VectorStore adapter.
type Store struct {
	apiKey    string
	host      string
	dimension int
	client    *http.Client
}

var _ store.VectorStore = (*Store)(nil)

// New creates a Pinecone-backed vector store.
func New(cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, memerr.NewValidationError("apiKey", "pinecone API key must not be empty")
	}
	if cfg.Host == "" {
		return nil, memerr.NewValidationError("host", "pinecone index host must not be empty")
	}
	if cfg.Dimension <= 0 {
		return nil, memerr.NewValidationError("dimension", "pinecone index dimension must be positive")
	}
	baseURL := cfg.Host
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	return &Store{
		apiKey:    cfg.APIKey,
		host:      baseURL,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Initialize is a no-op: index creation is an out-of-band control-plane
// operation, not something this data-plane adapter performs.
func (s *Store) Initialize(_ context.Context) error { return nil }

// Store upserts rec as a single vector.
func (s *Store) Store(ctx context.Context, rec *models.Record) error {
	return s.upsert(ctx, []*models.Record{rec})
}

// StoreBatch upserts recs, chunked at store.MaxBatchChunk.
func (s *Store) StoreBatch(ctx context.Context, recs []*models.Record) error {
	for i := 0; i < len(recs); i += store.MaxBatchChunk {
		end := i + store.MaxBatchChunk
		if end > len(recs) {
			end = len(recs)
		}
		if err := s.upsert(ctx, recs[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, recs []*models.Record) error {
	vectors := make([]upsertVector, len(recs))
	for i, rec := range recs {
		vectors[i] = upsertVector{
			ID:       rec.ID,
			Values:   rec.Embedding,
			Metadata: toMetadata(rec),
		}
	}
	body := upsertRequest{Vectors: vectors, Namespace: namespace}
	_, err := s.do(ctx, "/vectors/upsert", body)
	if err != nil {
		return memerr.NewBackendError("pinecone upsert", err)
	}
	return nil
}

// Search issues a query request with the native metadata filter translated
// from filter. Pinecone applies the layer/minImportance predicates
// server-side; tags are stored as a single comma-joined string (per the
// flat-metadata contract), so a tag predicate cannot be pushed down as a
// native $in clause and is instead applied client-side after over-fetching,
// the same way the weaviate adapter handles its unpushable predicates.
func (s *Store) Search(ctx context.Context, query []float32, k int, filter *models.SearchFilter) ([]models.SearchMatch, error) {
	fetchLimit := k
	if filter != nil && len(filter.Tags) > 0 && fetchLimit > 0 {
		fetchLimit *= 2
		if fetchLimit > store.MaxListSize {
			fetchLimit = store.MaxListSize
		}
	}

	req := queryRequest{
		Vector:          query,
		TopK:            fetchLimit,
		Namespace:       namespace,
		IncludeMetadata: true,
		Filter:          toNativeFilter(filter),
	}
	raw, err := s.do(ctx, "/query", req)
	if err != nil {
		return nil, memerr.NewBackendError("pinecone search", err)
	}
	var resp queryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, memerr.NewBackendError("pinecone decode search response", err)
	}

	matches := make([]models.SearchMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		rec := fromMetadata(m.ID, m.Metadata)
		if !store.MatchesFilter(rec, filter) {
			continue
		}
		matches = append(matches, models.SearchMatch{
			ID:        rec.ID,
			Content:   rec.Content,
			Relevance: m.Score,
			Metadata:  rec,
		})
		if k > 0 && len(matches) >= k {
			break
		}
	}
	return matches, nil
}

// Get fetches a single vector by id.
func (s *Store) Get(ctx context.Context, id string) (*models.Record, error) {
	path := fmt.Sprintf("/vectors/fetch?ids=%s&namespace=%s", id, namespace)
	raw, err := s.do(ctx, path, nil)
	if err != nil {
		return nil, memerr.NewBackendError("pinecone get", err)
	}
	var resp fetchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, memerr.NewBackendError("pinecone decode get response", err)
	}
	v, ok := resp.Vectors[id]
	if !ok {
		return nil, nil
	}
	rec := fromMetadata(id, v.Metadata)
	rec.Embedding = v.Values
	return rec, nil
}

// Delete removes id, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	body := deleteRequest{IDs: []string{id}, Namespace: namespace}
	if _, err := s.do(ctx, "/vectors/delete", body); err != nil {
		return false, memerr.NewBackendError("pinecone delete", err)
	}
	return true, nil
}

// DeleteBatch removes each of ids, returning the count actually removed.
func (s *Store) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	n := 0
	for _, id := range ids {
		ok, err := s.Delete(ctx, id)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// List returns up to store.MaxListSize records matching filter, implemented
// as a zero-vector query capped at MaxListSize, since Pinecone has no native
// list-all operation. The query vector must match the index's configured
// dimension or Pinecone rejects the request outright.
func (s *Store) List(ctx context.Context, filter *models.SearchFilter) ([]*models.Record, error) {
	zero := make([]float32, s.dimension)
	req := queryRequest{
		Vector:          zero,
		TopK:            store.MaxListSize,
		Namespace:       namespace,
		IncludeMetadata: true,
		Filter:          toNativeFilter(filter),
	}
	raw, err := s.do(ctx, "/query", req)
	if err != nil {
		return nil, memerr.NewBackendError("pinecone list", err)
	}
	var resp queryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, memerr.NewBackendError("pinecone decode list response", err)
	}

	out := make([]*models.Record, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		rec := fromMetadata(m.ID, m.Metadata)
		if store.MatchesFilter(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Update replaces rec's vector and metadata by upsert, after checking that
// the record exists; a missing record yields memerr.ErrNotFound.
func (s *Store) Update(ctx context.Context, rec *models.Record) error {
	existing, err := s.Get(ctx, rec.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return memerr.ErrNotFound
	}
	return s.Store(ctx, rec)
}

// Close releases no resources: the client is a thin HTTP wrapper.
func (s *Store) Close() error { return nil }

func (s *Store) do(ctx context.Context, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	method := http.MethodGet
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
		method = http.MethodPost
	}

	url := s.host + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pinecone returned status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

// toMetadata builds Pinecone's flat metadata object. Tags are joined with
// "," into a single string, per the managed adapter's metadata contract.
func toMetadata(rec *models.Record) map[string]interface{} {
	return map[string]interface{}{
		"content":      rec.Content,
		"timestampMs":  rec.TimestampMS,
		"importance":   rec.Importance,
		"source":       string(rec.Source),
		"tags":         strings.Join(rec.Tags, ","),
		"accessCount":  rec.AccessCount,
		"lastAccessMs": rec.LastAccessMS,
		"layer":        string(rec.Layer),
	}
}

func fromMetadata(id string, m map[string]interface{}) *models.Record {
	rec := &models.Record{ID: id}
	if v, ok := m["content"].(string); ok {
		rec.Content = v
	}
	if v, ok := m["timestampMs"].(float64); ok {
		rec.TimestampMS = int64(v)
	}
	if v, ok := m["importance"].(float64); ok {
		rec.Importance = v
	}
	if v, ok := m["source"].(string); ok {
		rec.Source = models.Source(v)
	}
	if v, ok := m["layer"].(string); ok {
		rec.Layer = models.Layer(v)
	}
	if v, ok := m["accessCount"].(float64); ok {
		rec.AccessCount = int64(v)
	}
	if v, ok := m["lastAccessMs"].(float64); ok {
		rec.LastAccessMS = int64(v)
	}
	if v, ok := m["tags"].(string); ok && v != "" {
		rec.Tags = strings.Split(v, ",")
	}
	return rec
}

// toNativeFilter translates a SearchFilter into Pinecone's metadata filter
// JSON, using $eq/$gte per Pinecone's filter-operator grammar. Tags cannot
// be expressed here: they are stored as a single comma-joined string (see
// toMetadata), which Pinecone's $in/$eq operators cannot match against as a
// set membership test, so tag filtering is applied client-side instead via
// store.MatchesFilter.
func toNativeFilter(filter *models.SearchFilter) map[string]interface{} {
	if filter == nil {
		return nil
	}
	clauses := map[string]interface{}{}
	if filter.Layer != "" {
		clauses["layer"] = map[string]interface{}{"$eq": string(filter.Layer)}
	}
	if filter.MinImportance > 0 {
		clauses["importance"] = map[string]interface{}{"$gte": filter.MinImportance}
	}
	if len(clauses) == 0 {
		return nil
	}
	return clauses
}

type upsertVector struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata"`
}

type upsertRequest struct {
	Vectors   []upsertVector `json:"vectors"`
	Namespace string         `json:"namespace"`
}

type queryRequest struct {
	Vector          []float32              `json:"vector"`
	TopK            int                    `json:"topK"`
	Namespace       string                 `json:"namespace"`
	IncludeMetadata bool                   `json:"includeMetadata"`
	Filter          map[string]interface{} `json:"filter,omitempty"`
}

type queryMatch struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

type queryResponse struct {
	Matches []queryMatch `json:"matches"`
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace"`
}

type fetchVector struct {
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata"`
}

type fetchResponse struct {
	Vectors map[string]fetchVector `json:"vectors"`
}
