package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.ChunkSize != 1000 || cfg.Overlap != 200 || cfg.TopK != 5 {
		t.Errorf("pipeline defaults = %d/%d/%d", cfg.ChunkSize, cfg.Overlap, cfg.TopK)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("batch size = %d", cfg.BatchSize)
	}
	if cfg.Collection != "ted-rag" {
		t.Errorf("collection = %q", cfg.Collection)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("TOP_K", "3")
	t.Setenv("PORT", "9000")
	t.Setenv("EMBED_RATE", "2.5")

	cfg := Load()
	if cfg.ChunkSize != 500 || cfg.TopK != 3 {
		t.Errorf("overrides not applied: %d/%d", cfg.ChunkSize, cfg.TopK)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.EmbedRate != 2.5 {
		t.Errorf("embed rate = %v", cfg.EmbedRate)
	}
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "lots")
	if got := Load().ChunkSize; got != 1000 {
		t.Errorf("chunk size = %d, want default 1000", got)
	}
}

func TestOverlapRatio(t *testing.T) {
	cfg := Config{ChunkSize: 1000, Overlap: 200}
	if r := cfg.OverlapRatio(); r != 0.2 {
		t.Errorf("ratio = %v, want 0.2", r)
	}
	if r := (Config{}).OverlapRatio(); r != 0 {
		t.Errorf("zero chunk size ratio = %v", r)
	}
}
