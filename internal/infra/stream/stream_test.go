package stream

import (
	"encoding/json"
	"testing"
	"time"
)

func msg(typ string) Message {
	return Message{Type: typ, Payload: json.RawMessage(`{}`)}
}

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a, cancelA := h.Subscribe(4)
	b, cancelB := h.Subscribe(4)
	defer cancelA()
	defer cancelB()

	h.Publish(msg(TypeNewBlock))

	for name, ch := range map[string]<-chan Message{"a": a, "b": b} {
		select {
		case got := <-ch:
			if got.Type != TypeNewBlock {
				t.Errorf("subscriber %s got type %q", name, got.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s got nothing", name)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	defer h.Close()

	ch, cancel := h.Subscribe(4)
	cancel()

	if h.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d after cancel, want 0", h.Subscribers())
	}

	// The channel is closed, so delivery after unsubscribe is impossible.
	if _, ok := <-ch; ok {
		t.Error("received a message after unsubscribe")
	}

	// Cancelling twice is safe.
	cancel()
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	h := NewHub()
	defer h.Close()

	h.Publish(msg(TypeNewBlock))

	ch, cancel := h.Subscribe(4)
	defer cancel()

	select {
	case got := <-ch:
		t.Errorf("late subscriber got replayed message %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	h := NewHub()
	defer h.Close()

	slow, cancelSlow := h.Subscribe(1)
	fast, cancelFast := h.Subscribe(8)
	defer cancelSlow()
	defer cancelFast()

	// Fill the slow subscriber's buffer, then keep publishing.
	h.Publish(msg(TypeNewBlock))
	h.Publish(msg(TypeNewTransaction))
	h.Publish(msg(TypeNewTransaction))

	if got := len(fast); got != 3 {
		t.Errorf("fast subscriber buffered %d messages, want 3", got)
	}
	if got := len(slow); got != 1 {
		t.Errorf("slow subscriber buffered %d messages, want 1 (overflow dropped)", got)
	}
}

func TestMessageDecoding(t *testing.T) {
	raw := `{"type":"new_transaction","payload":{"id":"0xAb","block_height":7}}`
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Type != TypeNewTransaction {
		t.Errorf("type = %q", m.Type)
	}
	var payload map[string]any
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["id"] != "0xAb" {
		t.Errorf("payload id = %v", payload["id"])
	}
}
