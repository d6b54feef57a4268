package memory

import (
	"context"
	"testing"

	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

func TestSearch_MinRelevanceFiltersOutWeakMatches(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Store(ctx, "completely unrelated topic about gardening", StoreOptions{}); err != nil {
		t.Fatal(err)
	}

	results, err := m.Search(ctx, "quantum computing", SearchOptions{MinRelevance: 1.01})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0 with an unreachable MinRelevance threshold", len(results))
	}
}

func TestSearch_DefaultLimit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		if _, err := m.Store(ctx, "repeated content", StoreOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := m.Search(ctx, "repeated content", SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != defaultSearchLimit {
		t.Errorf("len(results) = %d, want default limit %d", len(results), defaultSearchLimit)
	}
}

func TestSearch_MultiLayerFilter(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	_, _ = m.Store(ctx, "w", StoreOptions{Layer: models.LayerWorking})
	_, _ = m.Store(ctx, "s", StoreOptions{Layer: models.LayerShortTerm})
	_, _ = m.Store(ctx, "l", StoreOptions{Layer: models.LayerLongTerm})

	results, err := m.Search(ctx, "test", SearchOptions{
		LayerFilter: []models.Layer{models.LayerWorking, models.LayerShortTerm},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Record.Layer == models.LayerLongTerm {
			t.Errorf("got long-term record %q, should have been filtered out", r.Record.ID)
		}
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestRecall_BuildsPerLayerSummary(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	_, _ = m.Store(ctx, "task context one", StoreOptions{Layer: models.LayerWorking})
	_, _ = m.Store(ctx, "task context two", StoreOptions{Layer: models.LayerLongTerm})

	result, err := m.Recall(ctx, "task context", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary == "" {
		t.Error("want non-empty summary")
	}
	if len(result.Memories) == 0 {
		t.Error("want at least one memory recalled")
	}
}

func TestRecall_IncludesContextInQuery(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Store(ctx, "debugging a race condition in the scheduler", StoreOptions{}); err != nil {
		t.Fatal(err)
	}

	result, err := m.Recall(ctx, "fix the bug", "race condition scheduler", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Memories) == 0 {
		t.Error("want the context-augmented query to recall the stored memory")
	}
}
