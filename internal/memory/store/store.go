// Package store defines the VectorStore capability and the three adapters
// that implement it: memvec (in-process), weaviate (self-hosted), and
// pinecone (managed).
package store

import (
	"context"

	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// VectorStore persists Records keyed by id and serves similarity search,
// filtered listing, and CRUD. Every operation may fail with a BackendError.
type VectorStore interface {
	// Initialize is idempotent and ensures any required schema/index exists.
	Initialize(ctx context.Context) error

	// Store upserts a record by id. The record must carry an embedding.
	Store(ctx context.Context, rec *models.Record) error

	// StoreBatch upserts many records, chunked internally at 100.
	StoreBatch(ctx context.Context, recs []*models.Record) error

	// Search returns up to k matches ordered by relevance descending.
	// Filters the adapter cannot apply server-side must be applied
	// client-side, over-fetching as needed to still return k post-filter
	// matches.
	Search(ctx context.Context, query []float32, k int, filter *models.SearchFilter) ([]models.SearchMatch, error)

	// Get retrieves a single record by id, or (nil, nil) if absent.
	Get(ctx context.Context, id string) (*models.Record, error)

	// Delete removes a record by id, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteBatch removes many records by id, returning the count removed.
	DeleteBatch(ctx context.Context, ids []string) (int, error)

	// List returns up to 1000 records matching filter.
	List(ctx context.Context, filter *models.SearchFilter) ([]*models.Record, error)

	// Update replaces a record's stored representation by id. Adapters
	// that cannot partially update metadata while preserving the vector
	// must perform delete-then-insert atomically from the caller's
	// perspective.
	Update(ctx context.Context, rec *models.Record) error

	// Close releases any held resources.
	Close() error
}

// MaxBatchChunk bounds every batched write, per spec.
const MaxBatchChunk = 100

// MaxListSize bounds every List/Search over-fetch, per spec.
const MaxListSize = 1000

// MatchesFilter reports whether rec satisfies filter, applying the
// client-side semantics every adapter falls back to for predicates it
// cannot push down to its backend.
func MatchesFilter(rec *models.Record, filter *models.SearchFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Layer != "" && rec.Layer != filter.Layer {
		return false
	}
	if filter.MinImportance > 0 && rec.Importance < filter.MinImportance {
		return false
	}
	if len(filter.Tags) > 0 && !containsAllTags(rec.Tags, filter.Tags) {
		return false
	}
	return true
}

func containsAllTags(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}
