package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

func TestConsolidate_BelowTargetSize_NoOp(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, _ = m.Store(ctx, "one", StoreOptions{Layer: models.LayerShortTerm})

	result, err := m.Consolidate(ctx, ConsolidateOptions{TargetSize: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Consolidated) != 0 || len(result.DeletedIDs) != 0 {
		t.Fatalf("result = %+v, want no-op", result)
	}
}

func TestConsolidate_GroupsByTagAboveTargetSize(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	old := time.Now().Add(-60*24*time.Hour).UnixMilli()

	// 6 records tagged "alpha", 6 tagged "beta", all older than 30 days, all
	// with identical score inputs (ties are possible in the retain/consolidate
	// split, so each group is sized large enough to stay >= minGroupSize even
	// if both retained records land in the same group).
	for i := 0; i < 6; i++ {
		rec, err := m.Store(ctx, "alpha content", StoreOptions{
			Layer: models.LayerShortTerm,
			Tags:  []string{"alpha"},
		})
		if err != nil {
			t.Fatal(err)
		}
		rec.TimestampMS = old
		if err := m.cache.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 6; i++ {
		rec, err := m.Store(ctx, "beta content", StoreOptions{
			Layer: models.LayerShortTerm,
			Tags:  []string{"beta"},
		})
		if err != nil {
			t.Fatal(err)
		}
		rec.TimestampMS = old
		if err := m.cache.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	result, err := m.Consolidate(ctx, ConsolidateOptions{TargetSize: 2, Layer: models.LayerShortTerm})
	if err != nil {
		t.Fatal(err)
	}
	// retain keeps only the top 2 by score, so each of the two tag groups
	// stays at or above minGroupSize(3) regardless of which records are
	// retained, and both get consolidated.
	if len(result.Consolidated) != 2 {
		t.Fatalf("len(Consolidated) = %d, want 2", len(result.Consolidated))
	}
	if len(result.DeletedIDs) != 10 {
		t.Fatalf("len(DeletedIDs) = %d, want 10", len(result.DeletedIDs))
	}
	for _, c := range result.Consolidated {
		if c.Layer != models.LayerLongTerm {
			t.Errorf("consolidated record layer = %q, want long-term", c.Layer)
		}
		if !contains(c.Tags, "consolidated") {
			t.Errorf("consolidated record missing 'consolidated' tag: %v", c.Tags)
		}
	}
}

func TestConsolidate_SmallGroupLeftUntouched(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	old := time.Now().Add(-60*24*time.Hour).UnixMilli()

	// One two-record tag group plus filler to exceed target size.
	for i := 0; i < 2; i++ {
		rec, _ := m.Store(ctx, "solo", StoreOptions{Layer: models.LayerShortTerm, Tags: []string{"solo-tag"}})
		rec.TimestampMS = old
		_ = m.cache.Put(ctx, rec)
	}
	for i := 0; i < 4; i++ {
		rec, _ := m.Store(ctx, "filler", StoreOptions{Layer: models.LayerShortTerm, Tags: []string{"filler"}})
		rec.TimestampMS = old
		_ = m.cache.Put(ctx, rec)
	}

	result, err := m.Consolidate(ctx, ConsolidateOptions{TargetSize: 1, Layer: models.LayerShortTerm})
	if err != nil {
		t.Fatal(err)
	}
	// solo-tag group has 2 members, below minGroupSize(3): left untouched.
	remaining, err := m.List(ctx, &models.SearchFilter{Layer: models.LayerShortTerm, Tags: []string{"solo-tag"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Errorf("solo-tag records remaining = %d, want 2 (left untouched)", len(remaining))
	}
	if len(result.DeletedIDs) == 0 {
		t.Error("expected the filler group to be consolidated")
	}
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
