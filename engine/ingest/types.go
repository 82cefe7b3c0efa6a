package ingest

import (
	"context"

	"github.com/talkrag/talkrag/engine/semantic"
)

// Embedder produces one vector per input text, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Upserter persists vector records. Upsert is idempotent by record key.
type Upserter interface {
	Upsert(ctx context.Context, records []semantic.VectorRecord) error
}

// BatchOutcome reports one batch of an ingestion run. Offset is the
// batch's starting chunk position in the manifest, which is what a
// re-run needs to repair a failure.
type BatchOutcome struct {
	Offset int   `json:"offset"`
	Size   int   `json:"size"`
	Err    error `json:"-"`
}

// Failed reports whether the batch was left unprocessed.
func (o BatchOutcome) Failed() bool { return o.Err != nil }

// Notifier receives per-batch outcomes, e.g. for publishing progress
// events. Implementations must not block the pipeline.
type Notifier interface {
	BatchDone(outcome BatchOutcome)
}
