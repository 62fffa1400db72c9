package combat

import (
	"io"
	"sync"
	"sync/atomic"

	"battlecore/internal/combat/structures"
)

// Consumer is a single subscriber's bounded, non-blocking delivery
// queue. A slow or absent consumer only drops its own copies of
// events — the authoritative Log never drops (spec.md §4.1,
// "Bounded, non-blocking delivery").
type Consumer struct {
	id      int
	queue   *structures.EventQueue[Event]
	dropped uint64
}

// TryNext pops the next event for this consumer, if any.
func (c *Consumer) TryNext() (Event, bool) {
	return c.queue.TryPop()
}

// Drain pops up to maxItems buffered events for this consumer.
func (c *Consumer) Drain(maxItems int) []Event {
	return c.queue.Drain(maxItems)
}

// Dropped reports how many events this consumer has missed because
// its queue was full at dispatch time.
func (c *Consumer) Dropped() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

// Dispatcher is the single narrow path through which every state
// mutation in a combat becomes a sealed Event: it assigns the
// monotonic sequence number and event id, appends to the authoritative
// Log, and best-effort delivers to every subscribed Consumer
// (spec.md §4.1).
type Dispatcher struct {
	mu         sync.Mutex
	nextSeq    uint64
	randSource io.Reader
	log        *Log
	consumers  []*Consumer
	nextConsID int
}

// NewDispatcher creates a dispatcher backed by an unbounded authoritative
// Log. randSource must be deterministic (seeded from the combat's
// rng_seed) so that event ids replay identically across runs.
func NewDispatcher(randSource io.Reader) *Dispatcher {
	return &Dispatcher{
		nextSeq:    1,
		randSource: randSource,
		log:        newLog(),
	}
}

// Subscribe registers a new consumer with a bounded delivery queue of
// the given capacity and returns it. Must be called before the combat
// starts producing events that the caller cares about — events
// dispatched before Subscribe are visible only via Log.Since.
func (d *Dispatcher) Subscribe(bufferSize int) *Consumer {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := &Consumer{
		id:    d.nextConsID,
		queue: structures.NewEventQueue[Event](bufferSize),
	}
	d.nextConsID++
	d.consumers = append(d.consumers, c)
	return c
}

// Unsubscribe removes a consumer; further dispatches are not delivered to it.
func (d *Dispatcher) Unsubscribe(c *Consumer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.consumers {
		if existing == c {
			d.consumers = append(d.consumers[:i], d.consumers[i+1:]...)
			return
		}
	}
}

// Dispatch seals a new event for the given type/time/payload, appends
// it to the authoritative log, and best-effort delivers it to every
// subscribed consumer. This is the ONLY function in the package that
// assigns a sequence number or event id — every mutator in mutators.go
// funnels through it exactly once per state change (spec.md §4.1).
func (d *Dispatcher) Dispatch(t EventType, simTime float64, payload interface{}) Event {
	d.mu.Lock()
	seq := d.nextSeq
	d.nextSeq++
	id := newEventID(d.randSource)
	consumers := d.consumers
	d.mu.Unlock()

	e := Event{
		Version:   EventVersion,
		Type:      t,
		Seq:       seq,
		EventID:   id,
		Timestamp: simTime,
		Payload:   EncodePayload(payload),
	}

	d.log.append(e)

	for _, c := range consumers {
		if !c.queue.TryPush(e) {
			atomic.AddUint64(&c.dropped, 1)
		}
	}

	return e
}

// Log returns the dispatcher's authoritative event log.
func (d *Dispatcher) Log() *Log {
	return d.log
}
