// Package config loads the memory engine's configuration from environment
// variables, applying the defaults spec'd for each variable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable the memory engine reads at startup.
type Config struct {
	VectorStoreType   string // memory, weaviate, pinecone
	EmbeddingProvider string // openai, local

	WorkingMemoryTTL   time.Duration
	ShortTermMemoryTTL time.Duration
	LongTermMemoryTTL  time.Duration

	ConsolidationThreshold int
	ConsolidationAge       time.Duration

	DecayRate     float64
	DecayInterval time.Duration

	OpenAI   OpenAIConfig
	Weaviate WeaviateConfig
	Pinecone PineconeConfig
}

// OpenAIConfig configures the remote embedding provider.
type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
	EmbeddingDims  int
}

// WeaviateConfig configures the self-hosted vector store adapter.
type WeaviateConfig struct {
	URL    string
	APIKey string
}

// PineconeConfig configures the managed vector store adapter.
type PineconeConfig struct {
	APIKey string
	Index  string
}

// Load reads configuration from the environment, applying spec defaults for
// anything unset.
func Load() *Config {
	return &Config{
		VectorStoreType:   getEnvDefault("VECTOR_STORE_TYPE", "memory"),
		EmbeddingProvider: getEnvDefault("EMBEDDING_PROVIDER", "openai"),

		WorkingMemoryTTL:   getEnvDurationMS("WORKING_MEMORY_TTL", 1_800_000),
		ShortTermMemoryTTL: getEnvDurationMS("SHORT_TERM_MEMORY_TTL", 604_800_000),
		LongTermMemoryTTL:  getEnvDurationMS("LONG_TERM_MEMORY_TTL", 31_536_000_000),

		ConsolidationThreshold: getEnvInt("CONSOLIDATION_THRESHOLD", 100),
		ConsolidationAge:       getEnvDurationMS("CONSOLIDATION_AGE", 2_592_000_000),

		DecayRate:     getEnvFloat("DECAY_RATE", 0.1),
		DecayInterval: getEnvDurationMS("DECAY_INTERVAL", 86_400_000),

		OpenAI: OpenAIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			EmbeddingModel: getEnvDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDims:  getEnvInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
		},
		Weaviate: WeaviateConfig{
			URL:    os.Getenv("WEAVIATE_URL"),
			APIKey: os.Getenv("WEAVIATE_API_KEY"),
		},
		Pinecone: PineconeConfig{
			APIKey: os.Getenv("PINECONE_API_KEY"),
			Index:  getEnvDefault("PINECONE_INDEX", "memory-mcp"),
		},
	}
}

// TTLFor returns the configured TTL for layer, or zero if layer is unknown.
func (c *Config) TTLFor(layer string) time.Duration {
	switch layer {
	case "working":
		return c.WorkingMemoryTTL
	case "short-term":
		return c.ShortTermMemoryTTL
	case "long-term":
		return c.LongTermMemoryTTL
	default:
		return 0
	}
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDurationMS(key string, fallbackMS int64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallbackMS) * time.Millisecond
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Duration(fallbackMS) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// Validate reports an error if Config carries an unrecognized
// provider/store selection.
func (c *Config) Validate() error {
	switch c.VectorStoreType {
	case "memory", "weaviate", "pinecone":
	default:
		return fmt.Errorf("unknown VECTOR_STORE_TYPE: %s", c.VectorStoreType)
	}
	switch c.EmbeddingProvider {
	case "openai", "local":
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER: %s", c.EmbeddingProvider)
	}
	return nil
}
