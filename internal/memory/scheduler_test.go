package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

func TestScheduler_RunsDecayOnInterval(t *testing.T) {
	m := newTestManager(t)
	m.cfg.DecayInterval = 10 * time.Millisecond
	ctx := context.Background()

	rec, err := m.Store(ctx, "decays soon", StoreOptions{Importance: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	rec.TimestampMS = time.Now().Add(-30 * 24 * time.Hour).UnixMilli()
	if err := m.cache.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	sched := NewScheduler(m, m.logger)
	sched.Start(ctx)
	defer sched.Stop()

	deadline := time.After(2 * time.Second)
	for {
		got, err := m.Get(ctx, rec.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Importance < 1.0 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for scheduled decay to run")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_StopIsIdempotentAndWaits(t *testing.T) {
	m := newTestManager(t)
	sched := NewScheduler(m, m.logger)
	sched.Start(context.Background())
	sched.Stop()
	sched.Stop() // must not panic or deadlock
}

func TestScheduler_CheckConsolidation_BelowThreshold_NoOp(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	m.cfg.ConsolidationThreshold = 100

	_, err := m.Store(ctx, "one short-term record", StoreOptions{Layer: models.LayerShortTerm})
	if err != nil {
		t.Fatal(err)
	}

	sched := NewScheduler(m, m.logger)
	sched.checkConsolidation(ctx)

	recs, err := m.List(ctx, &models.SearchFilter{Layer: models.LayerShortTerm})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("len(recs) = %d, want 1 (untouched below threshold)", len(recs))
	}
}
