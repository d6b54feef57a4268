// Package memvec implements the in-process VectorStore adapter: a
// map keyed by record id, guarded by a mutex, with linear-scan cosine
// similarity search. No external service, no persistence across restarts.
package memvec

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/store"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// Store is the in-process VectorStore adapter.
type Store struct {
	mu   sync.Mutex
	recs map[string]*models.Record
}

var _ store.VectorStore = (*Store)(nil)

// New creates an empty in-process vector store.
func New() *Store {
	return &Store{recs: make(map[string]*models.Record)}
}

// Initialize is a no-op: the map needs no schema.
func (s *Store) Initialize(_ context.Context) error { return nil }

// Store upserts rec by id.
func (s *Store) Store(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec.Clone()
	return nil
}

// StoreBatch upserts recs, chunked at store.MaxBatchChunk.
func (s *Store) StoreBatch(ctx context.Context, recs []*models.Record) error {
	for i := 0; i < len(recs); i += store.MaxBatchChunk {
		end := i + store.MaxBatchChunk
		if end > len(recs) {
			end = len(recs)
		}
		for _, rec := range recs[i:end] {
			if err := s.Store(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Search ranks every stored record by cosine similarity to query, applies
// filter client-side, and returns the top k.
func (s *Store) Search(_ context.Context, query []float32, k int, filter *models.SearchFilter) ([]models.SearchMatch, error) {
	s.mu.Lock()
	candidates := make([]*models.Record, 0, len(s.recs))
	for _, rec := range s.recs {
		if store.MatchesFilter(rec, filter) {
			candidates = append(candidates, rec)
		}
	}
	s.mu.Unlock()

	matches := make([]models.SearchMatch, 0, len(candidates))
	for _, rec := range candidates {
		matches = append(matches, models.SearchMatch{
			ID:        rec.ID,
			Content:   rec.Content,
			Relevance: cosineSimilarity(query, rec.Embedding),
			Metadata:  rec.Clone(),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Get returns the record for id, or (nil, nil) if absent.
func (s *Store) Get(_ context.Context, id string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Delete removes id, reporting whether it was present.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return false, nil
	}
	delete(s.recs, id)
	return true, nil
}

// DeleteBatch removes each of ids, returning the count actually removed.
func (s *Store) DeleteBatch(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := s.recs[id]; ok {
			delete(s.recs, id)
			n++
		}
	}
	return n, nil
}

// List returns up to store.MaxListSize records matching filter.
func (s *Store) List(_ context.Context, filter *models.SearchFilter) ([]*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Record, 0, len(s.recs))
	for _, rec := range s.recs {
		if store.MatchesFilter(rec, filter) {
			out = append(out, rec.Clone())
		}
		if len(out) >= store.MaxListSize {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TimestampMS > out[j].TimestampMS
	})
	return out, nil
}

// Update replaces the stored record for rec.ID, erroring with NotFound if
// it is absent.
func (s *Store) Update(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.ID]; !ok {
		return memerr.ErrNotFound
	}
	s.recs[rec.ID] = rec.Clone()
	return nil
}

// Close is a no-op: there is nothing to release.
func (s *Store) Close() error { return nil }

// cosineSimilarity returns the cosine of the angle between a and b, scaled
// from [-1, 1] to [0, 1] per the relevance score's definition, or 0 if
// either vector has zero magnitude or the dimensions mismatch. Scaling
// matters for the remote provider, whose embeddings can be anti-aligned
// (raw cosine < 0); an unscaled negative score would escape a minRelevance
// filter of 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}
