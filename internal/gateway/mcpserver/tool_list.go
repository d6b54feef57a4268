package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

func listTool() mcp.Tool {
	return mcp.NewTool("memory_list",
		mcp.WithDescription("List stored memories, optionally filtered by layer or tags."),
		mcp.WithString("layer", mcp.Description("Restrict to this retention layer.")),
		mcp.WithArray("tags", mcp.Description("Restrict to records carrying all of these tags.")),
		mcp.WithNumber("limit", mcp.Description("Max results, 1..1000; defaults to 100.")),
	)
}

const listContentHeadLength = 200

type listEntry struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata *models.Record `json:"metadata"`
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	layerStr, _ := getString(args, "layer")
	layer, err := parseLayer(layerStr)
	if err != nil {
		return toolError("%v", err)
	}

	tags, err := getStringSlice(args, "tags")
	if err != nil {
		return toolError("%v", err)
	}

	limit, err := getInt(args, "limit", 100)
	if err != nil {
		return toolError("%v", err)
	}
	if err := validateLimit(limit, 1, 1000); err != nil {
		return toolError("%v", err)
	}

	recs, err := s.manager.List(ctx, &models.SearchFilter{Layer: layer, Tags: tags})
	if err != nil {
		return toolError("%v", err)
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}

	entries := make([]listEntry, 0, len(recs))
	for _, rec := range recs {
		head := rec.Content
		if len(head) > listContentHeadLength {
			head = head[:listContentHeadLength]
		}
		entries = append(entries, listEntry{ID: rec.ID, Content: head, Metadata: rec})
	}

	return toolJSON(entries)
}
