// Package config is the explicit startup configuration for all binaries.
// Values come from the environment with working defaults; binaries load a
// .env file first and pass Config by value into constructors, so nothing
// reads ambient globals after startup.
package config

import (
	"os"
	"strconv"
)

// Config holds every tunable of the pipeline and the API.
type Config struct {
	// HTTP API.
	Port       string
	CORSOrigin string

	// OpenAI-compatible LLM gateway.
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	EmbedDims  int

	// Qdrant.
	QdrantAddr string
	Collection string

	// Chunking and retrieval.
	ChunkSize int
	Overlap   int
	TopK      int

	// Ingestion.
	BatchSize  int
	EmbedRate  float64 // embed requests per second, 0 = unlimited
	EmbedBurst int

	// Corpus and manifest files.
	CorpusPath   string
	ManifestPath string

	// Optional NATS progress events. Empty URL disables publishing.
	NATSURL string
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Port:       envOr("PORT", "5001"),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),

		APIKey:     os.Getenv("LLMOD_API_KEY"),
		BaseURL:    envOr("LLMOD_BASE_URL", "https://api.llmod.ai/v1"),
		EmbedModel: envOr("EMBED_MODEL", "RPRTHPB-text-embedding-3-small"),
		ChatModel:  envOr("CHAT_MODEL", "RPRTHPB-gpt-5-mini"),
		EmbedDims:  envIntOr("EMBED_DIMENSIONS", 1536),

		QdrantAddr: envOr("QDRANT_URL", "localhost:6334"),
		Collection: envOr("QDRANT_COLLECTION", "ted-rag"),

		ChunkSize: envIntOr("CHUNK_SIZE", 1000),
		Overlap:   envIntOr("CHUNK_OVERLAP", 200),
		TopK:      envIntOr("TOP_K", 5),

		BatchSize:  envIntOr("BATCH_SIZE", 100),
		EmbedRate:  envFloatOr("EMBED_RATE", 0),
		EmbedBurst: envIntOr("EMBED_BURST", 1),

		CorpusPath:   envOr("CORPUS_PATH", "ted_talks_en.csv"),
		ManifestPath: envOr("MANIFEST_PATH", "chunks_ready_for_upload.json"),

		NATSURL: os.Getenv("NATS_URL"),
	}
}

// OverlapRatio is the overlap expressed as a fraction of the chunk size,
// as reported by the stats endpoint.
func (c Config) OverlapRatio() float64 {
	if c.ChunkSize == 0 {
		return 0
	}
	return float64(c.Overlap) / float64(c.ChunkSize)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
