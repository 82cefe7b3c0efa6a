// Package main uploads a chunk manifest into Qdrant: embed in batches,
// upsert by deterministic point id, report progress.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/talkrag/talkrag/config"
	"github.com/talkrag/talkrag/engine/ingest"
	"github.com/talkrag/talkrag/engine/manifest"
	"github.com/talkrag/talkrag/engine/semantic"
	"github.com/talkrag/talkrag/pkg/llm"
	"github.com/talkrag/talkrag/pkg/metrics"
	"github.com/talkrag/talkrag/pkg/natsutil"
	"github.com/talkrag/talkrag/pkg/resilience"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := config.Load()

	if err := run(cfg, logger); err != nil {
		logger.Error("ingest failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chunks, err := manifest.Read(cfg.ManifestPath)
	if err != nil {
		return err
	}
	logger.Info("manifest loaded", "path", cfg.ManifestPath, "chunks", len(chunks))

	store, err := semantic.New(cfg.QdrantAddr, cfg.Collection)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureCollection(ctx, cfg.EmbedDims); err != nil {
		return err
	}

	client := llm.NewClient(llm.Options{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		EmbedModel: cfg.EmbedModel,
		Dimension:  cfg.EmbedDims,
	})

	reg := metrics.New()
	notifiers := multiNotifier{newMetricsNotifier(reg)}
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn("nats unavailable, progress events disabled", "err", err)
		} else {
			defer nc.Drain()
			notifiers = append(notifiers, &natsNotifier{nc: nc, logger: logger})
		}
	}

	ing := ingest.New(ingest.Deps{
		Embedder: client,
		Store:    store,
		Limiter:  resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.EmbedRate, Burst: cfg.EmbedBurst}),
		Breaker:  resilience.NewBreaker(resilience.BreakerOpts{}),
		Notifier: notifiers,
		Logger:   logger,
	}, ingest.Options{BatchSize: cfg.BatchSize, Attempts: 3})

	outcomes := ing.Run(ctx, chunks)

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	logger.Info("ingestion finished", "batches", len(outcomes), "failed", failed)
	logger.Info("metrics", "render", reg.Render())

	if failed > 0 {
		return fmt.Errorf("%d of %d batches skipped, re-run to repair", failed, len(outcomes))
	}
	return nil
}

// multiNotifier fans one outcome out to several notifiers.
type multiNotifier []ingest.Notifier

func (m multiNotifier) BatchDone(o ingest.BatchOutcome) {
	for _, n := range m {
		n.BatchDone(o)
	}
}

// metricsNotifier counts batches and chunks by outcome.
type metricsNotifier struct {
	ok     *metrics.Counter
	failed *metrics.Counter
	chunks *metrics.Counter
}

func newMetricsNotifier(reg *metrics.Registry) *metricsNotifier {
	return &metricsNotifier{
		ok:     reg.Counter(metrics.WithLabels("ingest_batches_total", "outcome", "ok"), "Ingestion batches by outcome"),
		failed: reg.Counter(metrics.WithLabels("ingest_batches_total", "outcome", "failed"), ""),
		chunks: reg.Counter("ingest_chunks_total", "Chunks written to the vector store"),
	}
}

func (m *metricsNotifier) BatchDone(o ingest.BatchOutcome) {
	if o.Failed() {
		m.failed.Inc()
		return
	}
	m.ok.Inc()
	m.chunks.Add(int64(o.Size))
}

// natsNotifier publishes one event per batch, best effort.
type natsNotifier struct {
	nc     *nats.Conn
	logger *slog.Logger
}

func (n *natsNotifier) BatchDone(o ingest.BatchOutcome) {
	ev := natsutil.BatchEvent{Offset: o.Offset, Size: o.Size}
	if o.Err != nil {
		ev.Error = o.Err.Error()
	}
	if err := natsutil.Publish(context.Background(), n.nc, natsutil.DefaultBatchSubject, ev); err != nil {
		n.logger.Warn("progress event publish failed", "err", err)
	}
}
