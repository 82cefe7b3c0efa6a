// Package main implements the question answering API server.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talkrag/talkrag/config"
	"github.com/talkrag/talkrag/engine/rag"
	"github.com/talkrag/talkrag/engine/semantic"
	"github.com/talkrag/talkrag/pkg/llm"
	"github.com/talkrag/talkrag/pkg/metrics"
	"github.com/talkrag/talkrag/pkg/mid"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := config.Load()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := llm.NewClient(llm.Options{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		EmbedModel: cfg.EmbedModel,
		ChatModel:  cfg.ChatModel,
		Dimension:  cfg.EmbedDims,
	})

	// The API stays up when Qdrant is unreachable; questions are then
	// answered from an explicit no-context prompt.
	var searcher rag.Searcher
	if store, err := semantic.New(cfg.QdrantAddr, cfg.Collection); err != nil {
		logger.Warn("qdrant unavailable, starting without retrieval", "err", err)
	} else {
		searcher = store
		defer store.Close()
	}

	retriever := rag.NewRetriever(client, searcher, logger)
	agent := rag.NewAgent(retriever, client, rag.Options{TopK: cfg.TopK}, logger)

	reg := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/stats", handleStats(cfg))
	mux.HandleFunc("POST /api/prompt", handlePrompt(agent, logger))
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.Metrics(reg),
		mid.Trace("talkrag-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// StatsResponse reports the fixed pipeline parameters.
type StatsResponse struct {
	ChunkSize    int     `json:"chunk_size"`
	OverlapRatio float64 `json:"overlap_ratio"`
	TopK         int     `json:"top_k"`
}

func handleStats(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(StatsResponse{
			ChunkSize:    cfg.ChunkSize,
			OverlapRatio: cfg.OverlapRatio(),
			TopK:         cfg.TopK,
		})
	}
}

// PromptRequest is the JSON body for POST /api/prompt.
type PromptRequest struct {
	Question string `json:"question"`
}

func handlePrompt(agent *rag.Agent, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req PromptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"Invalid JSON"}`, http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			http.Error(w, `{"error":"No question provided"}`, http.StatusBadRequest)
			return
		}

		bundle := agent.Ask(r.Context(), req.Question)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(bundle); err != nil {
			logger.Error("write response", "err", err)
		}
	}
}
