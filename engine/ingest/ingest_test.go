package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/talkrag/talkrag/engine/domain"
	"github.com/talkrag/talkrag/engine/semantic"
)

// fakeEmbedder returns a deterministic vector derived from each text, so
// mispaired vectors are detectable.
type fakeEmbedder struct {
	calls  int
	failOn map[int]bool // call number (1-based) -> fail
}

func textVec(text string) []float32 {
	var sum float32
	for _, b := range []byte(text) {
		sum += float32(b)
	}
	return []float32{sum, float32(len(text))}
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failOn[f.calls] {
		return nil, errors.New("embedding service unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = textVec(t)
	}
	return out, nil
}

type fakeStore struct {
	upserts [][]semantic.VectorRecord
	err     error
}

func (f *fakeStore) Upsert(_ context.Context, records []semantic.VectorRecord) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, records)
	return nil
}

func (f *fakeStore) byKey() map[string]semantic.VectorRecord {
	m := make(map[string]semantic.VectorRecord)
	for _, batch := range f.upserts {
		for _, r := range batch {
			m[r.Key] = r
		}
	}
	return m
}

func testChunks(docID string, n int) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{
			ID:      docID,
			Title:   "Talk " + docID,
			Speaker: "Speaker",
			Text:    fmt.Sprintf("chunk %s/%d body text", docID, i),
			Seq:     i,
		}
	}
	return out
}

func TestRun_KeysAreDocumentScoped(t *testing.T) {
	// 5 chunks of doc A and 5 of doc B across batches of 4: batch-local
	// numbering would collide, document-scoped seq must not.
	chunks := append(testChunks("A", 5), testChunks("B", 5)...)
	store := &fakeStore{}
	ing := New(Deps{Embedder: &fakeEmbedder{}, Store: store}, Options{BatchSize: 4})

	outcomes := ing.Run(context.Background(), chunks)
	for _, o := range outcomes {
		if o.Failed() {
			t.Fatalf("batch at %d failed: %v", o.Offset, o.Err)
		}
	}

	keys := store.byKey()
	if len(keys) != 10 {
		t.Fatalf("expected 10 unique keys, got %d", len(keys))
	}
	for _, want := range []string{"A_0", "A_4", "B_0", "B_4"} {
		if _, ok := keys[want]; !ok {
			t.Errorf("missing key %s", want)
		}
	}
}

func TestRun_VectorChunkCorrespondence(t *testing.T) {
	chunks := testChunks("A", 7)
	store := &fakeStore{}
	ing := New(Deps{Embedder: &fakeEmbedder{}, Store: store}, Options{BatchSize: 3})

	ing.Run(context.Background(), chunks)

	for key, rec := range store.byKey() {
		want := textVec(rec.Meta.Text)
		if len(rec.Embedding) != len(want) || rec.Embedding[0] != want[0] || rec.Embedding[1] != want[1] {
			t.Errorf("record %s paired with wrong vector", key)
		}
		if rec.Meta.TalkID != "A" {
			t.Errorf("record %s talk_id = %q", key, rec.Meta.TalkID)
		}
	}
}

func TestRun_FailedBatchIsIsolated(t *testing.T) {
	chunks := testChunks("A", 9)
	store := &fakeStore{}
	emb := &fakeEmbedder{failOn: map[int]bool{2: true}}
	ing := New(Deps{Embedder: emb, Store: store}, Options{BatchSize: 3, Backoff: time.Millisecond})

	outcomes := ing.Run(context.Background(), chunks)
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Failed() || outcomes[2].Failed() {
		t.Error("healthy batches should succeed around the failure")
	}
	if !outcomes[1].Failed() {
		t.Error("second batch should have failed")
	}
	if outcomes[1].Offset != 3 {
		t.Errorf("failed batch offset = %d, want 3", outcomes[1].Offset)
	}
	if len(store.byKey()) != 6 {
		t.Errorf("expected 6 stored records, got %d", len(store.byKey()))
	}
}

func TestRun_Idempotent(t *testing.T) {
	chunks := testChunks("A", 5)
	store := &fakeStore{}
	ing := New(Deps{Embedder: &fakeEmbedder{}, Store: store}, Options{BatchSize: 2})

	ing.Run(context.Background(), chunks)
	first := store.byKey()
	ing.Run(context.Background(), chunks)
	second := store.byKey()

	if len(first) != len(second) {
		t.Fatalf("re-run changed key count: %d != %d", len(first), len(second))
	}
	for k := range first {
		if _, ok := second[k]; !ok {
			t.Errorf("key %s lost on re-run", k)
		}
	}
}

func TestRun_RetriesWhenConfigured(t *testing.T) {
	chunks := testChunks("A", 2)
	store := &fakeStore{}
	emb := &fakeEmbedder{failOn: map[int]bool{1: true}}
	ing := New(Deps{Embedder: emb, Store: store}, Options{BatchSize: 2, Attempts: 2, Backoff: time.Millisecond})

	outcomes := ing.Run(context.Background(), chunks)
	if outcomes[0].Failed() {
		t.Fatalf("retry should have recovered: %v", outcomes[0].Err)
	}
	if emb.calls != 2 {
		t.Errorf("embedder calls = %d, want 2", emb.calls)
	}
}

func TestRun_CancelledBetweenBatches(t *testing.T) {
	chunks := testChunks("A", 4)
	store := &fakeStore{}
	ctx, cancel := context.WithCancel(context.Background())

	notify := notifierFunc(func(BatchOutcome) { cancel() })
	ing := New(Deps{Embedder: &fakeEmbedder{}, Store: store, Notifier: notify}, Options{BatchSize: 2})

	outcomes := ing.Run(ctx, chunks)
	if len(outcomes) != 1 {
		t.Fatalf("expected run to stop after first batch, got %d outcomes", len(outcomes))
	}
}

type notifierFunc func(BatchOutcome)

func (f notifierFunc) BatchDone(o BatchOutcome) { f(o) }

func TestRun_VectorCountMismatch(t *testing.T) {
	store := &fakeStore{}
	bad := embedderFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		return make([][]float32, len(texts)-1), nil
	})
	ing := New(Deps{Embedder: bad, Store: store}, Options{BatchSize: 3, Backoff: time.Millisecond})

	outcomes := ing.Run(context.Background(), testChunks("A", 3))
	if !outcomes[0].Failed() {
		t.Fatal("mismatched vector count must fail the batch")
	}
	if len(store.upserts) != 0 {
		t.Error("nothing should be upserted on mismatch")
	}
}

type embedderFunc func(context.Context, []string) ([][]float32, error)

func (f embedderFunc) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}
