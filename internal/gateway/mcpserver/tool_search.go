package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Parswanadh/memory-mcp-server/internal/memory"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

func searchTool() mcp.Tool {
	return mcp.NewTool("memory_search",
		mcp.WithDescription("Search stored memories by semantic similarity to a query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text, at most 1000 characters, no {}[]():")),
		mcp.WithNumber("limit", mcp.Description("Max results, 1..100; defaults to 10.")),
		mcp.WithArray("layerFilter", mcp.Description("Restrict to these retention layers.")),
		mcp.WithNumber("minRelevance", mcp.Description("Minimum relevance in [0,1]; defaults to 0.")),
		mcp.WithArray("tags", mcp.Description("Restrict to records carrying all of these tags.")),
	)
}

type searchMatch struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Relevance float64         `json:"relevance"`
	Metadata  *models.Record  `json:"metadata"`
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	query, _ := getString(args, "query")
	if err := validateQuery(query); err != nil {
		return toolError("%v", err)
	}

	limit, err := getInt(args, "limit", 10)
	if err != nil {
		return toolError("%v", err)
	}
	if err := validateLimit(limit, 1, 100); err != nil {
		return toolError("%v", err)
	}

	minRelevance, err := getFloat(args, "minRelevance", 0)
	if err != nil {
		return toolError("%v", err)
	}

	layerStrs, err := getStringSlice(args, "layerFilter")
	if err != nil {
		return toolError("%v", err)
	}
	layers := make([]models.Layer, 0, len(layerStrs))
	for _, l := range layerStrs {
		layer, err := parseLayer(l)
		if err != nil {
			return toolError("%v", err)
		}
		layers = append(layers, layer)
	}

	tags, err := getStringSlice(args, "tags")
	if err != nil {
		return toolError("%v", err)
	}

	results, err := s.manager.Search(ctx, query, memory.SearchOptions{
		Limit:        limit,
		LayerFilter:  layers,
		Tags:         tags,
		MinRelevance: minRelevance,
	})
	if err != nil {
		return toolError("%v", err)
	}

	matches := make([]searchMatch, 0, len(results))
	for _, r := range results {
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

	return toolJSON(matches)
}
