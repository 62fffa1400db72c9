package ipc

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"battlecore/internal/combat"
)

// fakeSource is a minimal CombatSource backed by an in-memory event
// list and a real combat.Dispatcher, so Subscribe returns a working
// live consumer.
type fakeSource struct {
	mu         sync.Mutex
	events     []combat.Event
	dispatcher *combat.Dispatcher
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		dispatcher: combat.NewDispatcher(zeroReader{}),
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func (f *fakeSource) publish(n int) {
	for i := 0; i < n; i++ {
		e := f.dispatcher.Dispatch(combat.EventTypeUnitHeal, float64(i), combat.UnitHealPayload{Amount: i})
		f.mu.Lock()
		f.events = append(f.events, e)
		f.mu.Unlock()
	}
}

func (f *fakeSource) EventsSince(combatID string, since uint64) ([]combat.Event, bool) {
	if combatID != "combat-x" {
		return nil, false
	}
	return f.dispatcher.Log().Since(since), true
}

func (f *fakeSource) Subscribe(combatID string, bufferSize int) (*combat.Consumer, bool) {
	if combatID != "combat-x" {
		return nil, false
	}
	return f.dispatcher.Subscribe(bufferSize), true
}

func TestPublisherSubscriberRoundTrip(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "battlecore-test.sock")

	source := newFakeSource()
	source.publish(3) // backlog, before any subscriber connects

	pub := NewPublisher(socketPath, source)
	if err := pub.Start(); err != nil {
		t.Fatalf("Publisher.Start: %v", err)
	}
	defer pub.Stop()

	var mu sync.Mutex
	var received []combat.Event
	connected := make(chan struct{}, 1)

	sub := NewSubscriber(socketPath, "combat-x")
	sub.OnEvent(func(e combat.Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})
	sub.OnConnect(func() {
		select {
		case connected <- struct{}{}:
		default:
		}
	})
	if err := sub.Start(); err != nil {
		t.Fatalf("Subscriber.Start: %v", err)
	}
	defer sub.Stop()

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never connected")
	}

	// publish a few more events live, after the subscriber attached
	source.publish(2)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n >= 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 5 events delivered, got %d", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, e := range received {
		wantSeq := uint64(i + 1)
		if e.Seq != wantSeq {
			t.Errorf("event %d: expected seq %d, got %d", i, wantSeq, e.Seq)
		}
	}
}

func TestPublisherRejectsUnknownCombatID(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "battlecore-test2.sock")
	source := newFakeSource()

	pub := NewPublisher(socketPath, source)
	if err := pub.Start(); err != nil {
		t.Fatalf("Publisher.Start: %v", err)
	}
	defer pub.Stop()

	disconnected := make(chan struct{}, 1)
	sub := NewSubscriber(socketPath, "unknown-combat")
	sub.OnDisconnect(func() {
		select {
		case disconnected <- struct{}{}:
		default:
		}
	})
	if err := sub.Start(); err != nil {
		t.Fatalf("Subscriber.Start: %v", err)
	}
	defer sub.Stop()

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the publisher to close the connection for an unknown combat id")
	}
}
