// Package mcpserver translates the eight external tool-call operations onto
// MemoryManager, exposing them over a line-delimited JSON-RPC (MCP) stdio
// transport.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Parswanadh/memory-mcp-server/internal/memory"
)

// Server wraps an MCP tool server bound to a single MemoryManager.
type Server struct {
	manager *memory.Manager
	mcp     *server.MCPServer
	logger  *slog.Logger
}

// NewServer builds a Server and registers all seven memory tools. Tool
// discovery (the eighth operation, ListTools) is handled natively by the
// underlying MCP server.
func NewServer(manager *memory.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		manager: manager,
		logger:  logger,
		mcp:     server.NewMCPServer("memory-mcp", "1.0.0"),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(storeTool(), s.handleStore)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(recallTool(), s.handleRecall)
	s.mcp.AddTool(consolidateTool(), s.handleConsolidate)
	s.mcp.AddTool(forgetTool(), s.handleForget)
	s.mcp.AddTool(listTool(), s.handleList)
	s.mcp.AddTool(statsTool(), s.handleStats)
}

// ServeStdio blocks, serving tool calls over stdin/stdout until the
// transport closes. ctx is not consulted.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func toolError(format string, args ...interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}

func toolJSON(v interface{}) (*mcp.CallToolResult, error) {
	payload, err := marshalIndent(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(payload), nil
}
