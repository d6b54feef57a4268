package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Parswanadh/memory-mcp-server/internal/memory"
)

func consolidateTool() mcp.Tool {
	return mcp.NewTool("memory_consolidate",
		mcp.WithDescription("Summarize aged, over-threshold groups of same-tag memories into long-term records."),
		mcp.WithNumber("olderThan", mcp.Description("Unix millisecond cutoff; defaults to 30 days ago.")),
		mcp.WithNumber("targetSize", mcp.Description("Records to retain untouched, 1..1000; defaults to 50.")),
		mcp.WithString("layer", mcp.Description("Layer to consolidate; defaults to short-term.")),
	)
}

type consolidateResponse struct {
	Summary      string   `json:"summary"`
	Consolidated []string `json:"consolidated"`
	DeletedCount int      `json:"deletedCount"`
	Deleted      []string `json:"deleted"`
}

func (s *Server) handleConsolidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	olderThan, err := getInt(args, "olderThan", 0)
	if err != nil {
		return toolError("%v", err)
	}

	targetSize, err := getInt(args, "targetSize", 50)
	if err != nil {
		return toolError("%v", err)
	}
	if err := validateLimit(targetSize, 1, 1000); err != nil {
		return toolError("%v", err)
	}

	layerStr, _ := getString(args, "layer")
	layer, err := parseLayer(layerStr)
	if err != nil {
		return toolError("%v", err)
	}

	result, err := s.manager.Consolidate(ctx, memory.ConsolidateOptions{
		OlderThanMS: int64(olderThan),
		TargetSize:  targetSize,
		Layer:       layer,
	})
	if err != nil {
		return toolError("%v", err)
	}

	consolidatedIDs := make([]string, 0, len(result.Consolidated))
	for _, rec := range result.Consolidated {
		consolidatedIDs = append(consolidatedIDs, rec.ID)
	}
	deleted := result.DeletedIDs
	if deleted == nil {
		deleted = []string{}
	}

	return toolJSON(consolidateResponse{
		Summary:      result.Summary,
		Consolidated: consolidatedIDs,
		DeletedCount: len(deleted),
		Deleted:      deleted,
	})
}
