package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Parswanadh/memory-mcp-server/internal/config"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/cache"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/embeddings/local"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/idlock"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/store/memvec"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	vstore := memvec.New()
	return &Manager{
		cfg: &config.Config{
			DecayRate:              0.1,
			ConsolidationThreshold: 100,
			WorkingMemoryTTL:       30 * time.Minute,
			ShortTermMemoryTTL:     7 * 24 * time.Hour,
			LongTermMemoryTTL:      365 * 24 * time.Hour,
		},
		embedder: local.New(),
		vstore:   vstore,
		cache:    cache.New(vstore, cache.DefaultCapacity),
		locks:    idlock.New(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestManager_Store_RejectsEmptyContent(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Store(context.Background(), "   ", StoreOptions{}); err == nil {
		t.Fatal("want error for empty content")
	}
}

func TestManager_Store_RejectsOverlongContent(t *testing.T) {
	m := newTestManager(t)
	huge := make([]byte, 10001)
	for i := range huge {
		huge[i] = 'a'
	}
	if _, err := m.Store(context.Background(), string(huge), StoreOptions{}); err == nil {
		t.Fatal("want error for content over 10000 chars")
	}
}

func TestManager_Store_InitialLayerMapping(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	a, err := m.Store(ctx, "A", StoreOptions{Importance: 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if a.Layer != models.LayerWorking {
		t.Errorf("layer = %q, want working", a.Layer)
	}

	b, err := m.Store(ctx, "B", StoreOptions{Importance: 0.6})
	if err != nil {
		t.Fatal(err)
	}
	if b.Layer != models.LayerShortTerm {
		t.Errorf("layer = %q, want short-term", b.Layer)
	}

	c, err := m.Store(ctx, "C", StoreOptions{Importance: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if c.Layer != models.LayerLongTerm {
		t.Errorf("layer = %q, want long-term", c.Layer)
	}
}

func TestManager_StoreAndGet_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, err := m.Store(ctx, "hello world", StoreOptions{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Content != "hello world" {
		t.Fatalf("got %+v, want content hello world", got)
	}
}

func TestManager_Search_LayerFiltering(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, _ = m.Store(ctx, "in working", StoreOptions{Layer: models.LayerWorking})
	_, _ = m.Store(ctx, "in short term", StoreOptions{Layer: models.LayerShortTerm})
	_, _ = m.Store(ctx, "in long term", StoreOptions{Layer: models.LayerLongTerm})

	results, err := m.Search(ctx, "Test", SearchOptions{LayerFilter: []models.Layer{models.LayerWorking}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Record.Layer != models.LayerWorking {
		t.Errorf("layer = %q, want working", results[0].Record.Layer)
	}
}

func TestManager_Search_RejectsEmptyQuery(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Search(context.Background(), "", SearchOptions{}); err == nil {
		t.Fatal("want error for empty query")
	}
}

func TestManager_Search_RejectsLimitOutOfRange(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Search(context.Background(), "q", SearchOptions{Limit: 101}); err == nil {
		t.Fatal("want error for limit > 100")
	}
}

func TestManager_Search_BumpsAccessCount(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, err := m.Store(ctx, "Hello", StoreOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Search(ctx, "Hello", SearchOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Search(ctx, "Hello", SearchOptions{}); err != nil {
		t.Fatal(err)
	}

	got, err := m.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessCount != 2 {
		t.Errorf("AccessCount = %d, want 2", got.AccessCount)
	}
}

func TestManager_Forget_ByLayer(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := m.Store(ctx, "work item", StoreOptions{Layer: models.LayerWorking}); err != nil {
			t.Fatal(err)
		}
	}

	result, err := m.Forget(ctx, ForgetOptions{Layer: models.LayerWorking})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DeletedIDs) != 3 {
		t.Fatalf("len(DeletedIDs) = %d, want 3", len(result.DeletedIDs))
	}

	remaining, err := m.List(ctx, &models.SearchFilter{Layer: models.LayerWorking})
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("remaining = %d, want 0", len(remaining))
	}
}

func TestManager_Forget_ByMemoryID_Idempotent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, _ := m.Store(ctx, "to delete", StoreOptions{})

	result, err := m.Forget(ctx, ForgetOptions{MemoryID: rec.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DeletedIDs) != 1 || result.Reason != "Explicit deletion" {
		t.Fatalf("result = %+v, want one deletion with default reason", result)
	}

	got, err := m.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("want nil after deletion")
	}

	second, err := m.Forget(ctx, ForgetOptions{MemoryID: rec.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(second.DeletedIDs) != 0 {
		t.Errorf("second forget should delete nothing, got %v", second.DeletedIDs)
	}
}

func TestManager_ApplyDecay_Deterministic(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, err := m.Store(ctx, "decays", StoreOptions{Importance: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	rec.TimestampMS = time.Now().Add(-30 * 24 * time.Hour).UnixMilli()
	if err := m.cache.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	if err := m.ApplyDecay(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := m.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.9048374180359595 // max(0.1, 1.0*exp(-0.1))
	if diff := got.Importance - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Importance = %v, want ~%v", got.Importance, want)
	}
}

func TestManager_Stats_Empty(t *testing.T) {
	m := newTestManager(t)
	stats, err := m.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalMemories != 0 {
		t.Errorf("TotalMemories = %d, want 0", stats.TotalMemories)
	}
}

func TestManager_Stats_Aggregates(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	_, _ = m.Store(ctx, "a", StoreOptions{Importance: 0.4, Layer: models.LayerWorking})
	_, _ = m.Store(ctx, "b", StoreOptions{Importance: 0.8, Layer: models.LayerLongTerm})

	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalMemories != 2 {
		t.Errorf("TotalMemories = %d, want 2", stats.TotalMemories)
	}
	if stats.ByLayer[models.LayerWorking] != 1 || stats.ByLayer[models.LayerLongTerm] != 1 {
		t.Errorf("ByLayer = %+v", stats.ByLayer)
	}
}
