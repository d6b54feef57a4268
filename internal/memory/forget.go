package memory

import (
	"context"
	"strings"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// ForgetOptions configures Forget's inputs. At least one of MemoryID,
// OlderThanMS, or Layer must be set; enforced at the boundary, not here.
type ForgetOptions struct {
	MemoryID    string
	OlderThanMS int64
	Layer       models.Layer
	Reason      string
}

// ForgetResult reports what Forget deleted.
type ForgetResult struct {
	DeletedIDs []string
	Reason     string
}

// Forget deletes records by explicit id, or by age/layer predicate.
func (m *Manager) Forget(ctx context.Context, opts ForgetOptions) (*ForgetResult, error) {
	var deleted []string
	var reasons []string

	if opts.MemoryID != "" {
		ok, err := m.deleteByID(ctx, opts.MemoryID)
		if err != nil {
			return nil, memerr.NewBackendError("forget: delete by id", err)
		}
		if ok {
			deleted = append(deleted, opts.MemoryID)
			reason := opts.Reason
			if reason == "" {
				reason = "Explicit deletion"
			}
			reasons = append(reasons, reason)
		}
	}

	if opts.OlderThanMS != 0 || opts.Layer != "" {
		var filter *models.SearchFilter
		if opts.Layer != "" {
			filter = &models.SearchFilter{Layer: opts.Layer}
		}
		recs, err := m.vstore.List(ctx, filter)
		if err != nil {
			return nil, memerr.NewBackendError("forget: list candidates", err)
		}

		for _, rec := range recs {
			if opts.OlderThanMS != 0 && rec.TimestampMS >= opts.OlderThanMS {
				continue
			}
			ok, err := m.deleteByID(ctx, rec.ID)
			if err != nil {
				m.logger.Warn("forget: delete failed", "id", rec.ID, "error", err)
				continue
			}
			if ok {
				deleted = append(deleted, rec.ID)
			}
		}
		if opts.Reason != "" {
			reasons = append(reasons, opts.Reason)
		} else {
			reasons = append(reasons, "Batch deletion by age/layer predicate")
		}
	}

	return &ForgetResult{
		DeletedIDs: deleted,
		Reason:     strings.Join(dedupeStrings(reasons), "; "),
	}, nil
}

func (m *Manager) deleteByID(ctx context.Context, id string) (bool, error) {
	var existed bool
	err := m.locks.With(id, func() error {
		m.cache.Invalidate(id)
		ok, err := m.vstore.Delete(ctx, id)
		existed = ok
		return err
	})
	return existed, err
}

func dedupeStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
