package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Parswanadh/memory-mcp-server/internal/memory"
)

func storeTool() mcp.Tool {
	return mcp.NewTool("memory_store",
		mcp.WithDescription("Store a new memory record, automatically assigning its initial retention layer by importance."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The text content to remember, at most 10000 characters.")),
		mcp.WithNumber("importance", mcp.Description("Importance in [0,1]; defaults to 0.5.")),
		mcp.WithArray("tags", mcp.Description("Up to 50 tags, each at most 50 characters.")),
		mcp.WithString("source", mcp.Description("One of user, agent, system; defaults to agent.")),
		mcp.WithString("layer", mcp.Description("One of working, short-term, long-term; defaults by importance.")),
	)
}

type storeResult struct {
	MemoryID  string `json:"memoryId"`
	Timestamp int64  `json:"timestamp"`
	Layer     string `json:"layer"`
}

func (s *Server) handleStore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	content, _ := getString(args, "content")
	if err := validateContent(content); err != nil {
		return toolError("%v", err)
	}

	importance, err := getFloat(args, "importance", 0.5)
	if err != nil {
		return toolError("%v", err)
	}
	if importance < 0 || importance > 1 {
		return toolError("importance must be between 0 and 1")
	}

	tags, err := getStringSlice(args, "tags")
	if err != nil {
		return toolError("%v", err)
	}
	if err := validateTags(tags); err != nil {
		return toolError("%v", err)
	}

	sourceStr, _ := getString(args, "source")
	source, err := parseSource(sourceStr)
	if err != nil {
		return toolError("%v", err)
	}

	layerStr, _ := getString(args, "layer")
	layer, err := parseLayer(layerStr)
	if err != nil {
		return toolError("%v", err)
	}

	rec, err := s.manager.Store(ctx, content, memory.StoreOptions{
		Importance: importance,
		Tags:       tags,
		Source:     source,
		Layer:      layer,
	})
	if err != nil {
		return toolError("%v", err)
	}

	return toolJSON(storeResult{
		MemoryID:  rec.ID,
		Timestamp: rec.TimestampMS,
		Layer:     string(rec.Layer),
	})
}
