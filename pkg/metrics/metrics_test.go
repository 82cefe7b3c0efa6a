package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistry_CounterRender(t *testing.T) {
	reg := New()
	reg.Counter("chunks_ingested_total", "Chunks written to the vector store").Add(250)
	reg.Counter("chunks_ingested_total", "").Inc()

	out := reg.Render()
	if !strings.Contains(out, "# TYPE chunks_ingested_total counter") {
		t.Errorf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, "chunks_ingested_total 251") {
		t.Errorf("wrong counter value:\n%s", out)
	}
}

func TestRegistry_LabeledSeries(t *testing.T) {
	reg := New()
	reg.Counter(WithLabels("batches_total", "outcome", "ok"), "Batches by outcome").Add(9)
	reg.Counter(WithLabels("batches_total", "outcome", "failed"), "").Inc()

	out := reg.Render()
	if !strings.Contains(out, `batches_total{outcome="ok"} 9`) {
		t.Errorf("missing ok series:\n%s", out)
	}
	if !strings.Contains(out, `batches_total{outcome="failed"} 1`) {
		t.Errorf("missing failed series:\n%s", out)
	}
	if strings.Count(out, "# TYPE batches_total") != 1 {
		t.Errorf("family header must appear once:\n%s", out)
	}
}

func TestRegistry_Gauge(t *testing.T) {
	reg := New()
	g := reg.Gauge("ingest_progress_chunks", "Chunks processed so far")
	g.Set(40)
	g.Inc()
	g.Dec()
	if g.Value() != 40 {
		t.Fatalf("gauge = %d, want 40", g.Value())
	}
}

func TestRegistry_HistogramCumulativeBuckets(t *testing.T) {
	reg := New()
	h := reg.Histogram("embed_seconds", "Embedding call latency", []float64{1, 2, 5})
	h.Observe(0.5)
	h.Observe(1.5)
	h.Observe(10)

	out := reg.Render()
	for _, line := range []string{
		`embed_seconds_bucket{le="1"} 1`,
		`embed_seconds_bucket{le="2"} 2`,
		`embed_seconds_bucket{le="5"} 2`,
		`embed_seconds_bucket{le="+Inf"} 3`,
		`embed_seconds_count 3`,
		`embed_seconds_sum 12`,
	} {
		if !strings.Contains(out, line) {
			t.Errorf("missing %q in:\n%s", line, out)
		}
	}
}

func TestHandler_ContentType(t *testing.T) {
	reg := New()
	reg.Counter("up", "").Inc()

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "up 1") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
