package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func statsTool() mcp.Tool {
	return mcp.NewTool("memory_stats",
		mcp.WithDescription("Report aggregate statistics across every stored memory."),
	)
}

type layerCounts struct {
	Working   int64 `json:"working"`
	ShortTerm int64 `json:"short-term"`
	LongTerm  int64 `json:"long-term"`
}

type statsResponse struct {
	TotalMemories int64       `json:"totalMemories"`
	ByLayer       layerCounts `json:"byLayer"`
	AvgImportance float64     `json:"avgImportance"`
	OldestMemory  *int64      `json:"oldestMemory,omitempty"`
	NewestMemory  *int64      `json:"newestMemory,omitempty"`
}

func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.manager.Stats(ctx)
	if err != nil {
		return toolError("%v", err)
	}

	resp := statsResponse{
		TotalMemories: stats.TotalMemories,
		AvgImportance: stats.AvgImportance,
		ByLayer: layerCounts{
			Working:   stats.ByLayer["working"],
			ShortTerm: stats.ByLayer["short-term"],
			LongTerm:  stats.ByLayer["long-term"],
		},
	}
	if stats.TotalMemories > 0 {
		oldest, newest := stats.OldestMS, stats.NewestMS
		resp.OldestMemory = &oldest
		resp.NewestMemory = &newest
	}

	return toolJSON(resp)
}
