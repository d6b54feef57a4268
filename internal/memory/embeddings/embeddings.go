// Package embeddings defines the EmbeddingProvider capability: text in,
// unit-length fixed-dimension vectors out.
package embeddings

import "context"

// Provider converts text into unit-normalized embedding vectors. Every
// vector returned by an implementation MUST have exactly Dimensions()
// entries and Euclidean norm 1 (within 1e-6), so that cosine similarity
// between two embeddings reduces to a plain dot product. The one exception
// is an all-zero vector, which is returned unchanged (the local provider
// yields it for text with no tokens).
type Provider interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The remote
	// provider chunks requests at its batchSize constant.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns D, the fixed length of every returned vector.
	Dimensions() int

	// Name returns a short identifier for the provider.
	Name() string
}
