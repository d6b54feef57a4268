package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// minGroupSize is the floor below which a tag group is left in the retain
// set rather than consolidated.
const minGroupSize = 3

// ConsolidateOptions configures Consolidate's optional inputs.
type ConsolidateOptions struct {
	OlderThanMS int64 // zero means "now - 30 days"
	TargetSize  int   // zero means 50
	Layer       models.Layer
}

// ConsolidationResult reports what Consolidate did.
type ConsolidationResult struct {
	Consolidated []*models.Record
	DeletedIDs   []string
	Summary      string
}

// Consolidate groups aged records in layer by primary tag, summarizing each
// group of at least minGroupSize into one long-term record.
func (m *Manager) Consolidate(ctx context.Context, opts ConsolidateOptions) (*ConsolidationResult, error) {
	now := time.Now().UnixMilli()

	olderThan := opts.OlderThanMS
	if olderThan == 0 {
		olderThan = now - 30*msPerDay
	}
	targetSize := opts.TargetSize
	if targetSize == 0 {
		targetSize = 50
	}
	layer := opts.Layer
	if layer == "" {
		layer = models.LayerShortTerm
	}

	all, err := m.vstore.List(ctx, &models.SearchFilter{Layer: layer})
	if err != nil {
		return nil, memerr.NewBackendError("consolidate: list layer", err)
	}

	var candidates []*models.Record
	for _, rec := range all {
		if rec.TimestampMS < olderThan {
			candidates = append(candidates, rec)
		}
	}

	if len(candidates) < targetSize {
		return &ConsolidationResult{
			Summary: fmt.Sprintf("only %d candidate(s) found, below target size %d; nothing consolidated", len(candidates), targetSize),
		}, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return memoryScore(candidates[i].Importance, candidates[i].AccessCount, candidates[i].TimestampMS, now, m.cfg.DecayRate) >
			memoryScore(candidates[j].Importance, candidates[j].AccessCount, candidates[j].TimestampMS, now, m.cfg.DecayRate)
	})
	retain := candidates[:targetSize]
	toConsolidate := candidates[targetSize:]

	groups := groupByPrimaryTag(toConsolidate)

	var consolidated []*models.Record
	var deletedIDs []string
	_ = retain // retained records are simply left untouched in the store

	for primaryTag, group := range groups {
		if len(group) < minGroupSize {
			continue
		}

		rec, err := m.buildConsolidatedRecord(ctx, primaryTag, group)
		if err != nil {
			return nil, err
		}
		consolidated = append(consolidated, rec)

		for _, orig := range group {
			if err := m.deleteRecord(ctx, orig.ID); err != nil {
				m.logger.Warn("consolidate: failed to delete original record", "id", orig.ID, "error", err)
				continue
			}
			deletedIDs = append(deletedIDs, orig.ID)
		}
	}

	summary := fmt.Sprintf("consolidated %d group(s) into %d record(s), deleting %d original record(s)",
		len(consolidated), len(consolidated), len(deletedIDs))
	return &ConsolidationResult{
		Consolidated: consolidated,
		DeletedIDs:   deletedIDs,
		Summary:      summary,
	}, nil
}

func groupByPrimaryTag(recs []*models.Record) map[string][]*models.Record {
	groups := make(map[string][]*models.Record)
	for _, rec := range recs {
		tag := "uncategorized"
		if len(rec.Tags) > 0 && rec.Tags[0] != "" {
			tag = rec.Tags[0]
		}
		groups[tag] = append(groups[tag], rec)
	}
	return groups
}

func (m *Manager) buildConsolidatedRecord(ctx context.Context, primaryTag string, group []*models.Record) (*models.Record, error) {
	sort.Slice(group, func(i, j int) bool { return group[i].TimestampMS < group[j].TimestampMS })

	start := time.UnixMilli(group[0].TimestampMS).UTC().Format("2006-01-02")
	end := time.UnixMilli(group[len(group)-1].TimestampMS).UTC().Format("2006-01-02")

	topTags := topTagsByFrequency(group, 3)

	previewCount := 3
	if previewCount > len(group) {
		previewCount = len(group)
	}
	previews := make([]string, previewCount)
	for i := 0; i < previewCount; i++ {
		previews[i] = group[i].Content
	}

	content := fmt.Sprintf(
		"[Consolidated Memory: %d entries from %s to %s]\nTags: %s\nSummary: %s",
		len(group), start, end, strings.Join(topTags, ", "), strings.Join(previews, " | "),
	)

	var sumImportance float64
	tagSet := make(map[string]bool)
	for _, rec := range group {
		sumImportance += rec.Importance
		for _, t := range rec.Tags {
			tagSet[t] = true
		}
	}
	tagSet[primaryTag] = true
	tagSet["consolidated"] = true

	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	importance := models.ClampImportance((sumImportance / float64(len(group))) * 0.9)

	return m.Store(ctx, content, StoreOptions{
		Importance: importance,
		Tags:       tags,
		Source:     models.SourceSystem,
		Layer:      models.LayerLongTerm,
	})
}

func topTagsByFrequency(recs []*models.Record, n int) []string {
	freq := make(map[string]int)
	for _, rec := range recs {
		for _, t := range rec.Tags {
			freq[t]++
		}
	}
	tags := make([]string, 0, len(freq))
	for t := range freq {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if freq[tags[i]] != freq[tags[j]] {
			return freq[tags[i]] > freq[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// deleteRecord removes a record from both the WorkingCache and VectorStore
// under its per-id lock.
func (m *Manager) deleteRecord(ctx context.Context, id string) error {
	return m.locks.With(id, func() error {
		m.cache.Invalidate(id)
		_, err := m.vstore.Delete(ctx, id)
		return err
	})
}
