// Package main builds the chunk manifest from the talks CSV: load,
// validate, chunk, count tokens, write the manifest JSON.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/talkrag/talkrag/config"
	"github.com/talkrag/talkrag/engine/chunker"
	"github.com/talkrag/talkrag/engine/corpus"
	"github.com/talkrag/talkrag/engine/manifest"
	"github.com/talkrag/talkrag/engine/token"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := config.Load()

	if err := run(cfg, logger); err != nil {
		logger.Error("prepare failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	counter, err := token.NewTiktoken(token.DefaultEncoding)
	if err != nil {
		return err
	}

	docs, err := corpus.LoadCSV(cfg.CorpusPath)
	if err != nil {
		return err
	}
	logger.Info("corpus loaded", "path", cfg.CorpusPath, "documents", len(docs))

	ck := chunker.New(counter, chunker.Config{ChunkSize: cfg.ChunkSize, Overlap: cfg.Overlap})
	builder := manifest.NewBuilder(ck, counter, manifest.DefaultCostPer1MTokens, logger)
	chunks, stats := builder.Build(docs)

	if err := manifest.Write(cfg.ManifestPath, chunks); err != nil {
		return err
	}
	logger.Info("manifest written",
		"path", cfg.ManifestPath,
		"chunks", stats.Chunks,
		"tokens", stats.Tokens,
		"estimated_cost_usd", stats.EstimatedCost,
	)
	return nil
}
