// Package local provides a deterministic, dependency-free EmbeddingProvider:
// hashing TF-IDF over a running vocabulary, for use without any external
// embedding API.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/embeddings"
)

// Dimension is the fixed output size of the local provider's vectors.
const Dimension = 512

// Provider implements embeddings.Provider with feature-hashed TF-IDF.
// The vocabulary and document-frequency table grow with every Embed call,
// matching the spec's "updated on every embed call" requirement.
type Provider struct {
	mu        sync.Mutex
	docFreq   map[string]int
	totalDocs int
}

var _ embeddings.Provider = (*Provider)(nil)

// New creates a local hashing TF-IDF embedding provider.
func New() *Provider {
	return &Provider{docFreq: make(map[string]int)}
}

// Name returns the provider name.
func (p *Provider) Name() string { return "local" }

// Dimensions returns the fixed vector size.
func (p *Provider) Dimensions() int { return Dimension }

// Embed computes a hashing TF-IDF vector for text, updating the running
// vocabulary/IDF table first.
func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := tokenize(text)

	p.mu.Lock()
	p.totalDocs++
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if !seen[tok] {
			p.docFreq[tok]++
			seen[tok] = true
		}
	}
	idf := make(map[string]float64, len(seen))
	for tok := range seen {
		idf[tok] = inverseDocFreq(p.totalDocs, p.docFreq[tok])
	}
	p.mu.Unlock()

	return hashEmbed(tokens, idf), nil
}

// EmbedBatch embeds each text independently; the local provider has no
// network round-trip to amortize, so batches run sequentially.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// inverseDocFreq implements ln((N+1)/(df+1)) + 1 as specified.
func inverseDocFreq(totalDocs, df int) float64 {
	return math.Log(float64(totalDocs+1)/float64(df+1)) + 1
}

// hashEmbed buckets each token's (tf/|tokens|)*idf weight into
// hash(token) mod Dimension, then L2-normalizes the result.
func hashEmbed(tokens []string, idf map[string]float64) []float32 {
	vec := make([]float32, Dimension)
	if len(tokens) == 0 {
		return vec
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}

	n := float64(len(tokens))
	for tok, count := range tf {
		weight := (float64(count) / n) * idf[tok]
		bucket := bucketFor(tok)
		vec[bucket] += float32(weight)
	}

	var sumSq float64
	for _, x := range vec {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return vec
	}
	norm := math.Sqrt(sumSq)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// bucketFor hashes a token into [0, Dimension).
func bucketFor(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(Dimension))
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"this": true, "that": true, "these": true, "those": true, "it": true,
}

// tokenize splits text into lowercase, stopword-filtered terms.
func tokenize(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()[]{}")
		if w == "" || stopWords[w] || len(w) <= 1 {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}
