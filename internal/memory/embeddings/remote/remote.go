// Package remote provides an EmbeddingProvider backed by an OpenAI-compatible
// HTTPS embeddings API, authenticated with a bearer credential.
package remote

import (
	"context"
	"fmt"
	"math"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/embeddings"
	openai "github.com/sashabaranov/go-openai"
)

// batchSize is the spec-mandated group size for batched embedding calls.
const batchSize = 100

// Provider implements embeddings.Provider against a remote HTTPS API.
type Provider struct {
	client    *openai.Client
	model     string
	dimension int
}

var _ embeddings.Provider = (*Provider)(nil)

// Config configures the remote provider.
type Config struct {
	APIKey    string
	BaseURL   string // optional custom base URL
	Model     string
	Dimension int
}

// New creates a remote embedding provider. Returns an error (surfaced by
// the caller as FatalInit) if no API key is configured.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding provider: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = dimensionForModel(cfg.Model)
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client:    openai.NewClientWithConfig(conf),
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}, nil
}

func dimensionForModel(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	default:
		return 1536
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return "remote" }

// Dimensions returns the configured embedding dimension.
func (p *Provider) Dimensions() int { return p.dimension }

// Embed generates an embedding for a single text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("embedding provider returned no vectors")
	}
	return out[0], nil
}

// EmbedBatch generates embeddings for multiple texts, chunking into groups
// of 100 as required by the spec.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		chunk := texts[start:end]

		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      chunk,
			Model:      openai.EmbeddingModel(p.model),
			Dimensions: p.dimension,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding provider request failed: %w", err)
		}

		vectors := make([][]float32, len(chunk))
		for _, d := range resp.Data {
			vectors[d.Index] = normalize(d.Embedding)
		}
		results = append(results, vectors...)
	}
	return results, nil
}

// normalize L2-normalizes v in place and returns it, guarding against a
// zero-norm result (which would otherwise produce NaNs downstream).
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
