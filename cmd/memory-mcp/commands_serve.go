package main

import (
	"github.com/spf13/cobra"
)

// buildServeCmd creates the "serve" command that starts the MCP tool
// server on stdio.
func buildServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the memory tool server over stdio",
		Long: `Run the memory tool server, exposing memory_store, memory_search,
memory_recall, memory_consolidate, memory_forget, memory_list and
memory_stats over a line-delimited JSON-RPC (MCP) stdio transport.

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	return cmd
}
