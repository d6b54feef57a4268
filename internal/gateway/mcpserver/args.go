package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// disallowedQueryChars are rejected in a search query per the external
// contract; they are reserved for a future structured-query syntax.
const disallowedQueryChars = "{}[]():"

func marshalIndent(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if m, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func getString(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func getFloat(args map[string]interface{}, key string, def float64) (float64, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%q must be a number", key)
	}
	return f, nil
}

func getInt(args map[string]interface{}, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%q must be a number", key)
	}
	return int(f), nil
}

func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	v, ok := args[key]
	if !ok {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%q must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%q must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if len(content) > 10_000 {
		return fmt.Errorf("content must be at most 10000 characters")
	}
	return nil
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}
	if len(query) > 1_000 {
		return fmt.Errorf("query must be at most 1000 characters")
	}
	if strings.ContainsAny(query, disallowedQueryChars) {
		return fmt.Errorf("query must not contain any of %q", disallowedQueryChars)
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > 50 {
		return fmt.Errorf("at most 50 tags are allowed")
	}
	for _, t := range tags {
		if len(t) > 50 {
			return fmt.Errorf("each tag must be at most 50 characters")
		}
	}
	return nil
}

func validateReason(reason string) error {
	if len(reason) > 500 {
		return fmt.Errorf("reason must be at most 500 characters")
	}
	return nil
}

func validateLimit(limit, min, max int) error {
	if limit < min || limit > max {
		return fmt.Errorf("limit must be between %d and %d", min, max)
	}
	return nil
}

func parseSource(s string) (models.Source, error) {
	if s == "" {
		return models.SourceAgent, nil
	}
	src := models.Source(s)
	if !models.ValidSource(src) {
		return "", fmt.Errorf("source must be one of user, agent, system")
	}
	return src, nil
}

func parseLayer(s string) (models.Layer, error) {
	if s == "" {
		return "", nil
	}
	layer := models.Layer(s)
	if !models.ValidLayer(layer) {
		return "", fmt.Errorf("layer must be one of working, short-term, long-term")
	}
	return layer, nil
}
