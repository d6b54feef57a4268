package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func recallTool() mcp.Tool {
	return mcp.NewTool("memory_recall",
		mcp.WithDescription("Recall memories relevant to a task across all retention layers, with a summary digest."),
		mcp.WithString("task", mcp.Required(), mcp.Description("The task description, at most 1000 characters.")),
		mcp.WithString("context", mcp.Description("Extra context to fold into the query, at most 5000 characters.")),
		mcp.WithNumber("limit", mcp.Description("Max results, 1..50; defaults to 10.")),
	)
}

type recallResponse struct {
	Summary   string          `json:"summary"`
	Memories  []searchMatch   `json:"memories"`
}

func (s *Server) handleRecall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	task, _ := getString(args, "task")
	if len(task) == 0 {
		return toolError("task is required")
	}
	if len(task) > 1_000 {
		return toolError("task must be at most 1000 characters")
	}

	recallContext, _ := getString(args, "context")
	if len(recallContext) > 5_000 {
		return toolError("context must be at most 5000 characters")
	}

	limit, err := getInt(args, "limit", 10)
	if err != nil {
		return toolError("%v", err)
	}
	if err := validateLimit(limit, 1, 50); err != nil {
		return toolError("%v", err)
	}

	result, err := s.manager.Recall(ctx, task, recallContext, limit)
	if err != nil {
		return toolError("%v", err)
	}

	matches := make([]searchMatch, 0, len(result.Memories))
	for _, r := range result.Memories {
		content := ""
		if r.Record != nil {
			content = r.Record.Content
		}
		matches = append(matches, searchMatch{
			ID:        r.Record.ID,
			Content:   content,
			Relevance: r.Relevance,
			Metadata:  r.Record,
		})
	}

	return toolJSON(recallResponse{Summary: result.Summary, Memories: matches})
}
