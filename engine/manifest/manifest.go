// Package manifest builds and persists the chunk manifest, the sole
// contract between corpus preparation and ingestion. Field names in the
// serialized form are fixed for interoperability with existing manifests.
package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/talkrag/talkrag/engine/chunker"
	"github.com/talkrag/talkrag/engine/domain"
	"github.com/talkrag/talkrag/engine/token"
)

// DefaultCostPer1MTokens is the embedding price used for the cost
// estimate, in USD per million tokens.
const DefaultCostPer1MTokens = 0.02

// Stats summarizes a build.
type Stats struct {
	Chunks        int     `json:"count"`
	Tokens        int     `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// Builder turns a document collection into a chunk manifest.
type Builder struct {
	chunker *chunker.Chunker
	counter token.Counter
	cost    float64
	logger  *slog.Logger
}

// NewBuilder creates a Builder. costPer1M of zero falls back to the
// default embedding price.
func NewBuilder(c *chunker.Chunker, counter token.Counter, costPer1M float64, logger *slog.Logger) *Builder {
	if costPer1M <= 0 {
		costPer1M = DefaultCostPer1MTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{chunker: c, counter: counter, cost: costPer1M, logger: logger}
}

// Build filters invalid documents, chunks the rest, and accumulates token
// totals over each chunk's full text. The header tokens count toward
// cost: the header is sent to the embedding model too.
func (b *Builder) Build(docs []domain.Document) ([]domain.Chunk, Stats) {
	valid := domain.FilterValid(docs)
	b.logger.Info("building chunk manifest", "documents", len(docs), "valid", len(valid))

	var chunks []domain.Chunk
	tokens := 0
	for i, doc := range valid {
		for _, ch := range b.chunker.Chunk(doc) {
			chunks = append(chunks, ch)
			tokens += b.counter.Count(ch.Text)
		}
		if i > 0 && i%500 == 0 {
			b.logger.Info("chunking progress", "documents", i, "chunks", len(chunks))
		}
	}

	stats := Stats{
		Chunks:        len(chunks),
		Tokens:        tokens,
		EstimatedCost: float64(tokens) / 1_000_000 * b.cost,
	}
	b.logger.Info("manifest built",
		"chunks", stats.Chunks,
		"tokens", stats.Tokens,
		"estimated_cost_usd", stats.EstimatedCost,
	)
	return chunks, stats
}

// Write persists the manifest as a JSON array.
func Write(path string, chunks []domain.Chunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}

// record tolerates manifests written before chunks carried seq.
type record struct {
	domain.Chunk
	Seq *int `json:"seq"`
}

// Read loads a previously written manifest. Older manifests have no seq
// field; those chunks are numbered by per-document file order, which is
// the order they were generated in, so the upload keys come out the same
// as a fresh build would produce.
func Read(path string) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}

	chunks := make([]domain.Chunk, len(records))
	position := make(map[string]int)
	for i, r := range records {
		ch := r.Chunk
		if r.Seq != nil {
			ch.Seq = *r.Seq
		} else {
			ch.Seq = position[ch.ID]
		}
		position[ch.ID]++
		chunks[i] = ch
	}
	return chunks, nil
}
