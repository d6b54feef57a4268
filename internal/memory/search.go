package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

const defaultSearchLimit = 10

// SearchOptions configures Search's optional inputs.
type SearchOptions struct {
	Limit        int // default 10; values outside [1,100] are rejected
	LayerFilter  []models.Layer
	Tags         []string
	MinRelevance float64
}

// Search embeds query, retrieves the most similar records (over-fetching to
// absorb client-side filtering), bumps access counters on every surviving
// result, and returns up to Limit matches ordered by relevance descending.
func (m *Manager) Search(ctx context.Context, query string, opts SearchOptions) ([]models.Result, error) {
	if query == "" {
		return nil, memerr.NewValidationError("query", "must not be empty")
	}

	limit := opts.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if limit < 1 || limit > 100 {
		return nil, memerr.NewValidationError("limit", "must be between 1 and 100")
	}

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, memerr.NewBackendError("embed query", err)
	}

	fetchLimit := 2 * limit
	filter := &models.SearchFilter{Tags: opts.Tags, MinImportance: 0}
	singleLayer := len(opts.LayerFilter) == 1
	if singleLayer {
		filter.Layer = opts.LayerFilter[0]
	}

	matches, err := m.vstore.Search(ctx, queryVec, fetchLimit, filter)
	if err != nil {
		return nil, memerr.NewBackendError("vector search", err)
	}

	layerSet := make(map[models.Layer]bool, len(opts.LayerFilter))
	for _, l := range opts.LayerFilter {
		layerSet[l] = true
	}

	now := time.Now().UnixMilli()
	results := make([]models.Result, 0, len(matches))
	for _, match := range matches {
		if match.Relevance < opts.MinRelevance {
			continue
		}
		if !singleLayer && len(layerSet) > 0 && match.Metadata != nil && !layerSet[match.Metadata.Layer] {
			continue
		}
		if match.Metadata != nil {
			m.bumpAccess(ctx, match.Metadata, now)
		}
		results = append(results, models.Result{Record: match.Metadata, Relevance: match.Relevance})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// bumpAccess increments rec's access counter and writes it through the
// WorkingCache and VectorStore under its per-id lock. Failures are logged,
// not propagated: access-counter updates are best-effort per spec.
func (m *Manager) bumpAccess(ctx context.Context, rec *models.Record, nowMS int64) {
	err := m.locks.With(rec.ID, func() error {
		rec.AccessCount++
		rec.LastAccessMS = nowMS
		return m.cache.Put(ctx, rec)
	})
	if err != nil {
		m.logger.Warn("search: access-counter update failed", "id", rec.ID, "error", err)
	}
}

// RecallResult bundles recall's matches with a human-readable digest.
type RecallResult struct {
	Memories []models.Result
	Summary  string
}

// Recall is a convenience wrapper over Search across all three layers,
// building its query from task and optional context.
func (m *Manager) Recall(ctx context.Context, task, recallContext string, limit int) (*RecallResult, error) {
	if limit == 0 {
		limit = defaultSearchLimit
	}

	query := task
	if recallContext != "" {
		query = task + "\n\nContext: " + recallContext
	}

	results, err := m.Search(ctx, query, SearchOptions{
		Limit:       limit,
		LayerFilter: []models.Layer{models.LayerWorking, models.LayerShortTerm, models.LayerLongTerm},
	})
	if err != nil {
		return nil, err
	}

	counts := map[models.Layer]int{}
	for _, r := range results {
		if r.Record != nil {
			counts[r.Record.Layer]++
		}
	}
	summary := fmt.Sprintf("%d memories (working: %d, short-term: %d, long-term: %d)",
		len(results), counts[models.LayerWorking], counts[models.LayerShortTerm], counts[models.LayerLongTerm])

	return &RecallResult{Memories: results, Summary: summary}, nil
}
