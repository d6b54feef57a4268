package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Parswanadh/memory-mcp-server/internal/config"
	"github.com/Parswanadh/memory-mcp-server/internal/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Load()
	cfg.VectorStoreType = "memory"
	cfg.EmbeddingProvider = "local"

	mgr, err := memory.NewManager(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return NewServer(mgr, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func callReq(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestHandleStore_RejectsMissingContent(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleStore(context.Background(), callReq(map[string]interface{}{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("want IsError for missing content")
	}
}

func TestHandleStore_Success(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleStore(context.Background(), callReq(map[string]interface{}{
		"content":    "remember this",
		"importance": 0.9,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %v", res)
	}

	var parsed storeResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.MemoryID == "" {
		t.Error("want non-empty memoryId")
	}
	if parsed.Layer != "long-term" {
		t.Errorf("Layer = %q, want long-term for importance 0.9", parsed.Layer)
	}
}

func TestHandleSearch_RejectsDisallowedCharacters(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleSearch(context.Background(), callReq(map[string]interface{}{
		"query": "bad{query}",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("want IsError for a query containing disallowed characters")
	}
}

func TestHandleSearch_RoundTrip(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	storeRes, err := s.handleStore(ctx, callReq(map[string]interface{}{"content": "a searchable fact"}))
	if err != nil || storeRes.IsError {
		t.Fatalf("store failed: %v %v", err, storeRes)
	}

	searchRes, err := s.handleSearch(ctx, callReq(map[string]interface{}{"query": "searchable fact"}))
	if err != nil {
		t.Fatal(err)
	}
	if searchRes.IsError {
		t.Fatalf("unexpected error: %v", searchRes)
	}

	var matches []searchMatch
	if err := json.Unmarshal([]byte(resultText(t, searchRes)), &matches); err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Error("want at least one search match")
	}
}

func TestHandleForget_RequiresOneOfThreeFields(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleForget(context.Background(), callReq(map[string]interface{}{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("want IsError when none of memoryId/olderThan/layer is set")
	}
}

func TestHandleStats_EmptyStore(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleStats(context.Background(), callReq(map[string]interface{}{}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error: %v", res)
	}

	var parsed statsResponse
	if err := json.Unmarshal([]byte(resultText(t, res)), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.TotalMemories != 0 {
		t.Errorf("TotalMemories = %d, want 0", parsed.TotalMemories)
	}
}

func TestHandleList_RespectsLimit(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if res, err := s.handleStore(ctx, callReq(map[string]interface{}{"content": "x"})); err != nil || res.IsError {
			t.Fatalf("store failed: %v %v", err, res)
		}
	}

	res, err := s.handleList(ctx, callReq(map[string]interface{}{"limit": float64(2)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error: %v", res)
	}

	var entries []listEntry
	if err := json.Unmarshal([]byte(resultText(t, res)), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}
