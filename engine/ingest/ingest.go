// Package ingest reads the chunk manifest and loads it into the vector
// store: batch, embed, upsert. Batches are processed strictly in
// manifest order, one at a time; a failed batch is logged and skipped,
// and the run continues. Re-running the same manifest is safe because
// upsert overwrites by key.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talkrag/talkrag/engine/domain"
	"github.com/talkrag/talkrag/engine/semantic"
	"github.com/talkrag/talkrag/pkg/fn"
	"github.com/talkrag/talkrag/pkg/resilience"
)

const (
	// DefaultBatchSize is the number of chunks embedded and upserted per
	// request pair.
	DefaultBatchSize = 100
	// DefaultBackoff is the pause after a failed batch before moving on.
	DefaultBackoff = time.Second
)

// Options configures an ingestion run.
type Options struct {
	BatchSize int
	Backoff   time.Duration
	// Attempts is how many times a batch is tried before it is skipped.
	Attempts int
}

// Deps holds the external collaborators of the pipeline. Limiter,
// Breaker, and Notifier are optional.
type Deps struct {
	Embedder Embedder
	Store    Upserter
	Limiter  *resilience.Limiter
	Breaker  *resilience.Breaker
	Notifier Notifier
	Logger   *slog.Logger
}

// Ingestor runs manifests into the vector store.
type Ingestor struct {
	deps  Deps
	opts  Options
	stage fn.Stage[[]domain.Chunk, int]
}

// New creates an Ingestor.
func New(deps Deps, opts Options) *Ingestor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	ing := &Ingestor{deps: deps, opts: opts}

	embed := fn.TracedStage("ingest.embed", ing.embedBatch)
	store := fn.TracedStage("ingest.upsert", ing.upsertBatch)
	batch := fn.Then(embed, store)
	if opts.Attempts > 1 {
		batch = fn.RetryStage(fn.RetryOpts{
			MaxAttempts: opts.Attempts,
			InitialWait: opts.Backoff,
			MaxWait:     10 * opts.Backoff,
			Jitter:      true,
		}, batch)
	}
	ing.stage = batch
	return ing
}

// Run processes the manifest in order and returns one outcome per batch.
// Cancelling ctx stops the run between batches; the batch in flight is
// not interrupted.
func (ing *Ingestor) Run(ctx context.Context, chunks []domain.Chunk) []BatchOutcome {
	log := ing.deps.Logger
	batches := fn.Chunk(chunks, ing.opts.BatchSize)
	log.Info("ingestion starting", "chunks", len(chunks), "batches", len(batches), "batch_size", ing.opts.BatchSize)

	outcomes := make([]BatchOutcome, 0, len(batches))
	processed := 0
	for i, batch := range batches {
		if ctx.Err() != nil {
			log.Warn("ingestion cancelled", "processed", processed, "total", len(chunks))
			break
		}

		offset := i * ing.opts.BatchSize
		outcome := BatchOutcome{Offset: offset, Size: len(batch)}

		result := ing.stage(ctx, batch)
		processed += len(batch)
		progress := float64(processed) / float64(len(chunks)) * 100

		if result.IsErr() {
			_, err := result.Unwrap()
			outcome.Err = err
			log.Error("batch failed, continuing",
				"offset", offset,
				"size", len(batch),
				"err", err,
			)
			ing.sleep(ctx)
		} else {
			log.Info("batch uploaded",
				"batch", i+1,
				"offset", offset,
				"progress_pct", fmt.Sprintf("%.1f", progress),
			)
		}

		outcomes = append(outcomes, outcome)
		if ing.deps.Notifier != nil {
			ing.deps.Notifier.BatchDone(outcome)
		}
	}
	return outcomes
}

// embedBatch embeds all chunk texts of the batch in one request.
func (ing *Ingestor) embedBatch(ctx context.Context, batch []domain.Chunk) fn.Result[embedded] {
	texts := fn.Map(batch, func(c domain.Chunk) string { return c.Text })

	if ing.deps.Limiter != nil {
		if err := ing.deps.Limiter.Wait(ctx); err != nil {
			return fn.Err[embedded](err)
		}
	}

	var vectors [][]float32
	call := func(ctx context.Context) error {
		var err error
		vectors, err = ing.deps.Embedder.EmbedBatch(ctx, texts)
		return err
	}
	var err error
	if ing.deps.Breaker != nil {
		err = ing.deps.Breaker.Call(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return fn.Errf[embedded]("embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fn.Errf[embedded]("embed batch: got %d vectors for %d chunks", len(vectors), len(batch))
	}
	return fn.Ok(embedded{chunks: batch, vectors: vectors})
}

// upsertBatch pairs vectors with chunks positionally and writes them.
// Each record's key is the chunk's document-scoped composite id, so the
// same chunk always lands on the same point.
func (ing *Ingestor) upsertBatch(ctx context.Context, e embedded) fn.Result[int] {
	records := make([]semantic.VectorRecord, len(e.chunks))
	for i, c := range e.chunks {
		records[i] = semantic.VectorRecord{
			Key:       c.Key(),
			Embedding: e.vectors[i],
			Meta: semantic.Metadata{
				Text:    c.Text,
				Title:   c.Title,
				Speaker: c.Speaker,
				URL:     c.URL,
				TalkID:  c.ID,
				Topics:  c.Topics,
				Views:   c.Views,
			},
		}
	}
	if err := ing.deps.Store.Upsert(ctx, records); err != nil {
		return fn.Errf[int]("upsert batch: %w", err)
	}
	return fn.Ok(len(records))
}

// sleep pauses for the configured backoff unless ctx ends first.
func (ing *Ingestor) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(ing.opts.Backoff):
	}
}

// embedded is a batch paired with its vectors, index-aligned.
type embedded struct {
	chunks  []domain.Chunk
	vectors [][]float32
}
