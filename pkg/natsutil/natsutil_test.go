package natsutil

import (
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestHeaderCarrier_RoundTrip(t *testing.T) {
	msg := &nats.Msg{Subject: DefaultBatchSubject}
	c := (*headerCarrier)(msg)

	if got := c.Get("traceparent"); got != "" {
		t.Fatalf("empty carrier returned %q", got)
	}
	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("carrier get = %q", got)
	}
	if keys := c.Keys(); len(keys) != 1 || keys[0] != "traceparent" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestBatchEvent_OmitsEmptyError(t *testing.T) {
	ok, err := json.Marshal(BatchEvent{Offset: 300, Size: 100})
	if err != nil {
		t.Fatal(err)
	}
	if string(ok) != `{"offset":300,"size":100}` {
		t.Errorf("ok event = %s", ok)
	}

	failed, err := json.Marshal(BatchEvent{Offset: 400, Size: 100, Error: "embed batch: timeout"})
	if err != nil {
		t.Fatal(err)
	}
	var back BatchEvent
	if err := json.Unmarshal(failed, &back); err != nil {
		t.Fatal(err)
	}
	if back.Error != "embed batch: timeout" {
		t.Errorf("error field lost: %+v", back)
	}
}
