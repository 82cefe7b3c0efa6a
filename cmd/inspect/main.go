// Package main checks a chunk manifest for degenerate entries before
// it is uploaded. Exits non-zero when the manifest is not clean.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/talkrag/talkrag/config"
	"github.com/talkrag/talkrag/engine/manifest"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := config.Load()

	chunks, err := manifest.Read(cfg.ManifestPath)
	if err != nil {
		logger.Error("inspect failed", "err", err)
		os.Exit(1)
	}

	report := manifest.Inspect(chunks)
	logger.Info("manifest inspected",
		"path", cfg.ManifestPath,
		"total", report.Total,
		"empty_text", report.EmptyText,
		"short_text", report.ShortText,
		"missing_metadata", report.MissingMeta,
	)
	if report.ShortSample != "" {
		logger.Warn("shortest degenerate chunk", "text", report.ShortSample)
	}

	if !report.Clean() {
		logger.Error("manifest is not safe to upload")
		os.Exit(1)
	}
	logger.Info("manifest is clean")
}
