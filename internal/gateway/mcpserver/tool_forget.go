package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Parswanadh/memory-mcp-server/internal/memory"
)

func forgetTool() mcp.Tool {
	return mcp.NewTool("memory_forget",
		mcp.WithDescription("Delete one memory by id, or a batch by age/layer predicate."),
		mcp.WithString("memoryId", mcp.Description("Exact id to delete.")),
		mcp.WithNumber("olderThan", mcp.Description("Unix millisecond cutoff; deletes records older than this.")),
		mcp.WithString("layer", mcp.Description("Restrict batch deletion to this layer.")),
		mcp.WithString("reason", mcp.Description("Audit reason, at most 500 characters.")),
	)
}

type forgetResponse struct {
	DeletedCount int      `json:"deletedCount"`
	Deleted      []string `json:"deleted"`
	Reason       string   `json:"reason"`
}

func (s *Server) handleForget(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	memoryID, _ := getString(args, "memoryId")
	olderThan, err := getInt(args, "olderThan", 0)
	if err != nil {
		return toolError("%v", err)
	}
	layerStr, _ := getString(args, "layer")
	layer, err := parseLayer(layerStr)
	if err != nil {
		return toolError("%v", err)
	}

	if memoryID == "" && olderThan == 0 && layer == "" {
		return toolError("one of memoryId, olderThan, or layer is required")
	}

	reason, _ := getString(args, "reason")
	if err := validateReason(reason); err != nil {
		return toolError("%v", err)
	}

	result, err := s.manager.Forget(ctx, memory.ForgetOptions{
		MemoryID:    memoryID,
		OlderThanMS: int64(olderThan),
		Layer:       layer,
		Reason:      reason,
	})
	if err != nil {
		return toolError("%v", err)
	}

	deleted := result.DeletedIDs
	if deleted == nil {
		deleted = []string{}
	}

	return toolJSON(forgetResponse{
		DeletedCount: len(deleted),
		Deleted:      deleted,
		Reason:       result.Reason,
	})
}
