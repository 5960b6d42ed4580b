package events

import (
	"encoding/json"
	"testing"
)

func TestHubFanOut(t *testing.T) {
	t.Parallel()

	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish("one")
	if got := <-a; got != "one" {
		t.Fatalf("a got %q", got)
	}
	if got := <-b; got != "one" {
		t.Fatalf("b got %q", got)
	}

	h.Unsubscribe(b)
	h.Publish("two")
	if got := <-a; got != "two" {
		t.Fatalf("a got %q", got)
	}
	if _, open := <-b; open {
		t.Fatalf("unsubscribed channel still open")
	}
}

func TestHubSlowSubscriberDrops(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ch := h.Subscribe()

	// Fill the buffer and keep publishing; Publish must never block.
	for i := 0; i < subscriberBuffer+5; i++ {
		h.Publish("evt")
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("buffered %d, want %d", len(ch), subscriberBuffer)
	}
}

func TestEventEnvelopes(t *testing.T) {
	t.Parallel()

	var e Event
	if err := json.Unmarshal([]byte(ReminderSent(5, 10, "browser")), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Type != TypeReminderSent || e.At.IsZero() {
		t.Fatalf("event = %+v", e)
	}
	var data map[string]any
	if err := json.Unmarshal(e.Data, &data); err != nil {
		t.Fatalf("data: %v", err)
	}
	if data["id"] != float64(5) || data["opportunityId"] != float64(10) || data["channel"] != "browser" {
		t.Fatalf("data = %v", data)
	}

	if err := json.Unmarshal([]byte(SyncDone(3, 2, 1)), &e); err != nil {
		t.Fatalf("unmarshal sync: %v", err)
	}
	if e.Type != TypeSyncDone {
		t.Fatalf("type = %s", e.Type)
	}
}
