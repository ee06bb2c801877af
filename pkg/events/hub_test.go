package events

import "testing"

func TestPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()

	h.Publish(StateChanged, StateChangedEvent{From: "SelectEndpoint", To: "SelectModel", Ts: 1})

	ev := <-ch
	if ev.Name != StateChanged {
		t.Fatalf("expected event %q, got %q", StateChanged, ev.Name)
	}
	payload, err := DecodeAs[StateChangedEvent](ev)
	if err != nil {
		t.Fatalf("DecodeAs failed: %v", err)
	}
	if payload.From != "SelectEndpoint" || payload.To != "SelectModel" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	h.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed after unsubscribe")
	}
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	defer h.Close()

	for i := 0; i < subscriberBuffer+4; i++ {
		h.Publish(StateChanged, StateChangedEvent{Ts: int64(i)})
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, len(ch))
	}
}

func TestNilHub(t *testing.T) {
	var h *EventHub
	h.Publish(StateChanged, StateChangedEvent{})
	h.Close()
}

func TestDecodeAsEmpty(t *testing.T) {
	v, err := DecodeAs[StateChangedEvent](Event{Name: StateChanged})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != (StateChangedEvent{}) {
		t.Fatalf("expected zero value, got %+v", v)
	}
}
