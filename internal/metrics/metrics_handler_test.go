package metrics

import (
	"bytes"
	"testing"
	"time"

	"bcrawatch/logger"
)

func quietLog() *logger.Log {
	log := logger.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

func TestEmitMetricDeliversToSubscribers(t *testing.T) {
	events := make(chan Event, 1)
	unsubscribe := Subscribe(func(e Event) {
		if e.Name == "fetch_bytes" {
			events <- e
		}
	})
	t.Cleanup(unsubscribe)

	fields := logger.Fields{"source": "bcra", "unit": "count"}
	EmitMetric(quietLog(), "source", "fetch_bytes", 3, "gauge", fields)

	select {
	case e := <-events:
		if e.Component != "source" || e.Kind != "gauge" || e.Value != 3 {
			t.Fatalf("unexpected event: %+v", e)
		}
		if _, ok := e.Fields["metric"]; ok {
			t.Fatalf("event fields should not contain metric key: %v", e.Fields)
		}
		e.Fields["source"] = "changed"
		if fields["source"] != "bcra" {
			t.Fatalf("caller fields shared with event: %v", fields)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("subscriber not invoked")
	}
}

func TestEmitMetricDefaultKind(t *testing.T) {
	var got Event
	unsubscribe := Subscribe(func(e Event) {
		if e.Name == "default_kind" {
			got = e
		}
	})
	t.Cleanup(unsubscribe)

	EmitMetric(quietLog(), "pipeline", "default_kind", 7, "", nil)
	if got.Kind != "counter" {
		t.Fatalf("expected default kind counter, got %q", got.Kind)
	}
	if got.Fields == nil {
		t.Fatal("fields should never be nil")
	}
}

func TestEmitMetricWithoutNameIsIgnored(t *testing.T) {
	calls := 0
	unsubscribe := Subscribe(func(Event) { calls++ })
	t.Cleanup(unsubscribe)

	EmitMetric(quietLog(), "component", "", 1, "counter", nil)
	if calls != 0 {
		t.Fatalf("nameless metric delivered %d times", calls)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	calls := 0
	unsubscribe := Subscribe(func(e Event) {
		if e.Name == "unsubscribe_test" {
			calls++
		}
	})
	unsubscribe()
	unsubscribe()

	EmitMetric(quietLog(), "pipeline", "unsubscribe_test", 1, "counter", nil)
	if calls != 0 {
		t.Fatalf("handler called after unsubscribe: %d", calls)
	}
}

func TestSubscribeNil(t *testing.T) {
	unsubscribe := Subscribe(nil)
	unsubscribe()
}
