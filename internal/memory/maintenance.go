package memory

import (
	"context"
	"time"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// ApplyDecay attenuates every record at least a day old by
// importance * exp(-decayRate * ageDays/30), floored at models.MinImportance.
// This is the sole mechanism that lowers importance over time.
func (m *Manager) ApplyDecay(ctx context.Context) error {
	now := time.Now().UnixMilli()

	recs, err := m.vstore.List(ctx, nil)
	if err != nil {
		return memerr.NewBackendError("applyDecay: list records", err)
	}

	for _, rec := range recs {
		if now-rec.TimestampMS < msPerDay {
			continue
		}
		err := m.locks.With(rec.ID, func() error {
			current, err := m.Get(ctx, rec.ID)
			if err != nil || current == nil {
				return err
			}
			current.Importance = decayedImportance(current.Importance, current.TimestampMS, now, m.cfg.DecayRate)
			return m.cache.Put(ctx, current)
		})
		if err != nil {
			m.logger.Warn("applyDecay: failed to update record", "id", rec.ID, "error", err)
		}
	}
	return nil
}

// RebalanceLayers migrates every record between retention tiers based on its
// memory score and per-layer TTL: demotes stale low-score records, promotes
// high-score records directly to long-term, and attenuates (without
// demoting) long-term records that have gone stale.
func (m *Manager) RebalanceLayers(ctx context.Context) error {
	now := time.Now().UnixMilli()

	recs, err := m.vstore.List(ctx, nil)
	if err != nil {
		return memerr.NewBackendError("rebalanceLayers: list records", err)
	}

	for _, rec := range recs {
		err := m.locks.With(rec.ID, func() error {
			current, err := m.Get(ctx, rec.ID)
			if err != nil || current == nil {
				return err
			}
			ttl := m.cfg.TTLFor(string(current.Layer))
			age := time.Duration(now-current.TimestampMS) * time.Millisecond
			score := memoryScore(current.Importance, current.AccessCount, current.TimestampMS, now, m.cfg.DecayRate)

			switch {
			case ttl > 0 && age > ttl && score < 0.3:
				if current.Layer == models.LayerLongTerm {
					current.Importance = models.ClampImportance(current.Importance * 0.5)
				} else {
					current.Layer = demote(current.Layer)
				}
			case score > 0.8 && current.Layer != models.LayerLongTerm:
				current.Layer = models.LayerLongTerm
			default:
				return nil
			}
			return m.cache.Put(ctx, current)
		})
		if err != nil {
			m.logger.Warn("rebalanceLayers: failed to update record", "id", rec.ID, "error", err)
		}
	}
	return nil
}

// demote returns the next lower retention tier; working has no lower tier.
func demote(layer models.Layer) models.Layer {
	switch layer {
	case models.LayerLongTerm:
		return models.LayerShortTerm
	case models.LayerShortTerm:
		return models.LayerWorking
	default:
		return models.LayerWorking
	}
}
