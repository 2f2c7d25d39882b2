package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 10)
	defer unsub()

	b.Signal("chat.threads_changed", "fiberglass_chats")

	select {
	case evt := <-ch:
		if evt.Kind != "chat.threads_changed" {
			t.Errorf("got kind %q, want chat.threads_changed", evt.Kind)
		}
		if evt.Key != "fiberglass_chats" {
			t.Errorf("got key %q, want fiberglass_chats", evt.Key)
		}
		if evt.Timestamp.IsZero() {
			t.Error("timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("gallery.", 10)
	defer unsub()

	b.Publish(Event{Kind: "team.roster_changed"})
	b.Publish(Event{Kind: "gallery.items_changed"})

	select {
	case evt := <-ch:
		if evt.Kind != "gallery.items_changed" {
			t.Errorf("got kind %q, want gallery.items_changed", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 10)
	unsub()
	unsub()

	b.Publish(Event{Kind: "chat.messages_changed"})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
	if n := b.Subscribers(); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
}

func TestPendingSignalCoalesces(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 1)
	defer unsub()

	b.Publish(Event{Kind: "chat.one"})
	// Buffer full: dropped, the pending signal already forces a re-read.
	b.Publish(Event{Kind: "chat.two"})

	evt := <-ch
	if evt.Kind != "chat.one" {
		t.Errorf("got %q, want chat.one", evt.Kind)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected second event: %v", evt)
	default:
	}
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var b *Bus
	b.Signal("chat.threads_changed", "k")
}

func TestSubscribeMatchFiltersBeforeQueueing(t *testing.T) {
	b := New()
	ch, unsub := b.SubscribeMatch("chat.messages", 1, func(evt Event) bool {
		return evt.Key == "fiberglass_chat_messages_t1"
	})
	defer unsub()

	b.Signal("chat.messages_changed", "fiberglass_chat_messages_t2")
	b.Signal("chat.messages_changed", "fiberglass_chat_messages_t1")

	select {
	case evt := <-ch:
		if evt.Key != "fiberglass_chat_messages_t1" {
			t.Errorf("got key %q, want fiberglass_chat_messages_t1", evt.Key)
		}
	case <-time.After(time.Second):
		t.Fatal("matching event dropped")
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	default:
	}
}
