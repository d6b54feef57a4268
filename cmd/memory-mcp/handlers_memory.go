package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Parswanadh/memory-mcp-server/internal/config"
	"github.com/Parswanadh/memory-mcp-server/internal/memory"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

func newManagerForCLI(cmd *cobra.Command) (*memory.Manager, error) {
	cfg := config.Load()
	return memory.NewManager(cmd.Context(), cfg, slog.Default())
}

// runSearch handles the search command.
func runSearch(cmd *cobra.Command, query string, limit int, minRelevance float64, layerStr string) error {
	mgr, err := newManagerForCLI(cmd)
	if err != nil {
		return fmt.Errorf("failed to create memory manager: %w", err)
	}
	defer mgr.Close()

	var layers []models.Layer
	if layerStr != "" {
		layers = []models.Layer{models.Layer(layerStr)}
	}

	results, err := mgr.Search(cmd.Context(), query, memory.SearchOptions{
		Limit:        limit,
		MinRelevance: minRelevance,
		LayerFilter:  layers,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results:\n\n", len(results))
	for i, r := range results {
		content := r.Record.Content
		if len(content) > 200 {
			content = content[:197] + "..."
		}
		fmt.Fprintf(out, "%d. [relevance %.3f] %s\n", i+1, r.Relevance, content)
		fmt.Fprintf(out, "   id: %s | layer: %s | importance: %.2f\n\n", r.Record.ID, r.Record.Layer, r.Record.Importance)
	}
	return nil
}

// runStats handles the stats command.
func runStats(cmd *cobra.Command) error {
	mgr, err := newManagerForCLI(cmd)
	if err != nil {
		return fmt.Errorf("failed to create memory manager: %w", err)
	}
	defer mgr.Close()

	stats, err := mgr.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Memory Statistics")
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "Total Memories:   %d\n", stats.TotalMemories)
	fmt.Fprintf(out, "  working:        %d\n", stats.ByLayer[models.LayerWorking])
	fmt.Fprintf(out, "  short-term:     %d\n", stats.ByLayer[models.LayerShortTerm])
	fmt.Fprintf(out, "  long-term:      %d\n", stats.ByLayer[models.LayerLongTerm])
	fmt.Fprintf(out, "Avg Importance:   %.3f\n", stats.AvgImportance)
	return nil
}

// runConsolidate handles the consolidate command.
func runConsolidate(cmd *cobra.Command, targetSize int, layerStr string) error {
	mgr, err := newManagerForCLI(cmd)
	if err != nil {
		return fmt.Errorf("failed to create memory manager: %w", err)
	}
	defer mgr.Close()

	result, err := mgr.Consolidate(cmd.Context(), memory.ConsolidateOptions{
		TargetSize: targetSize,
		Layer:      models.Layer(layerStr),
	})
	if err != nil {
		return fmt.Errorf("consolidate failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Summary)
	fmt.Fprintf(out, "Consolidated %d record(s), deleted %d original(s).\n", len(result.Consolidated), len(result.DeletedIDs))
	return nil
}

// runForget handles the forget command.
func runForget(cmd *cobra.Command, memoryID, layerStr, reason string) error {
	mgr, err := newManagerForCLI(cmd)
	if err != nil {
		return fmt.Errorf("failed to create memory manager: %w", err)
	}
	defer mgr.Close()

	if memoryID == "" && layerStr == "" {
		return fmt.Errorf("one of --id or --layer is required")
	}

	result, err := mgr.Forget(cmd.Context(), memory.ForgetOptions{
		MemoryID: memoryID,
		Layer:    models.Layer(layerStr),
		Reason:   reason,
	})
	if err != nil {
		return fmt.Errorf("forget failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deleted %d record(s): %s\n", len(result.DeletedIDs), result.Reason)
	return nil
}
