package events

import (
	"testing"
	"time"
)

func receiveOne(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	sub1 := b.Subscribe()
	sub2 := b.Subscribe()

	b.Publish(Event{Type: ItemCreated, Href: "a.txt", Etag: "1.000000000"})

	for _, sub := range []chan Event{sub1, sub2} {
		ev := receiveOne(t, sub)
		if ev.Type != ItemCreated || ev.Href != "a.txt" {
			t.Errorf("event = %+v", ev)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	sub := b.Subscribe()
	b.Unsubscribe(sub)

	select {
	case _, ok := <-sub:
		if ok {
			t.Error("expected closed channel, got event")
		}
	case <-time.After(2 * time.Second):
		t.Error("channel not closed after unsubscribe")
	}
	if n := b.SubscriberCount(); n != 0 {
		t.Errorf("subscriber count = %d, want 0", n)
	}
}

func TestCloseIsIdempotentAndClosesSubscribers(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()

	b.Close()
	b.Close()

	if _, ok := <-sub; ok {
		t.Error("subscriber channel should be closed")
	}
	// Operations after close are no-ops.
	b.Publish(Event{Type: ItemDeleted, Href: "x.txt"})
	if ch := b.Subscribe(); ch == nil {
		t.Error("Subscribe after close should return a closed channel, not nil")
	}
}

func TestSlowSubscriberDoesNotBlockBroker(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	slow := b.Subscribe() // never drained
	fast := b.Subscribe()

	// Overflow the slow subscriber's buffer.
	for i := 0; i < 200; i++ {
		b.Publish(Event{Type: ItemUpdated, Href: "a.txt"})
	}

	// The broker must still deliver to the fast subscriber. Its buffer
	// holds 64 events; expect at least 50 through despite the stalled peer.
	drained := 0
	timeout := time.After(2 * time.Second)
	for drained < 50 {
		select {
		case <-fast:
			drained++
		case <-timeout:
			t.Fatalf("only drained %d events, broker appears stalled", drained)
		}
	}
	_ = slow
}
