// Package main provides the CLI entry point for memory-mcp, a persistent
// hierarchical memory service for AI agents exposed over MCP.
//
// # Basic Usage
//
// Run the tool server on stdio:
//
//	memory-mcp serve
//
// Inspect stored memories from the command line:
//
//	memory-mcp search "deployment checklist"
//	memory-mcp stats
//	memory-mcp consolidate
//	memory-mcp forget --layer working
//
// # Environment Variables
//
// All configuration is read from the environment; see internal/config for
// the full list of recognized variables and their defaults.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "memory-mcp",
		Short:        "Persistent hierarchical memory service for AI agents",
		Version:      version,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		buildServeCmd(),
		buildSearchCmd(),
		buildStatsCmd(),
		buildConsolidateCmd(),
		buildForgetCmd(),
	)
	return cmd
}
