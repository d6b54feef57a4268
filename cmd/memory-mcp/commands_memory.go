package main

import (
	"github.com/spf13/cobra"
)

// buildSearchCmd creates the "search" command for ad-hoc semantic lookups.
func buildSearchCmd() *cobra.Command {
	var (
		limit        int
		minRelevance float64
		layer        string
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memory using semantic similarity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], limit, minRelevance, layer)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results (1-100)")
	cmd.Flags().Float64Var(&minRelevance, "min-relevance", 0, "Minimum relevance (0-1)")
	cmd.Flags().StringVar(&layer, "layer", "", "Restrict to one retention layer")
	return cmd
}

// buildStatsCmd creates the "stats" command.
func buildStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show memory statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd)
		},
	}
	return cmd
}

// buildConsolidateCmd creates the "consolidate" command.
func buildConsolidateCmd() *cobra.Command {
	var (
		targetSize int
		layer      string
	)
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Summarize aged memory groups into long-term records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsolidate(cmd, targetSize, layer)
		},
	}
	cmd.Flags().IntVar(&targetSize, "target-size", 50, "Records to retain untouched")
	cmd.Flags().StringVar(&layer, "layer", "short-term", "Layer to consolidate")
	return cmd
}

// buildForgetCmd creates the "forget" command.
func buildForgetCmd() *cobra.Command {
	var (
		memoryID string
		layer    string
		reason   string
	)
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete a memory by id, or a batch by layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForget(cmd, memoryID, layer, reason)
		},
	}
	cmd.Flags().StringVar(&memoryID, "id", "", "Exact memory id to delete")
	cmd.Flags().StringVar(&layer, "layer", "", "Delete every record in this layer")
	cmd.Flags().StringVar(&reason, "reason", "", "Audit reason for the deletion")
	return cmd
}
