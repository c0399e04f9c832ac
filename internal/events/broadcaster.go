// Package events provides an in-process topic-keyed broadcast channel.
package events

import "sync"

// Topics published by the core services.
const (
	TopicRideRequested         = "ride_requested"
	TopicRideStatusUpdated     = "ride_status_updated"
	TopicDriverLocationUpdated = "driver_location_updated"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts missing events and is expected to re-fetch
// current state.
const subscriberBuffer = 16

// Event is a single published message.
type Event struct {
	Topic   string
	Payload any
}

// Broadcaster fans events out to all current subscribers of a topic.
// Publish runs synchronously on the caller's path, so events for the same
// ride are observed in transition order. Delivery is fire-and-forget: there
// is no persistence or replay, and a subscriber whose buffer is full is
// skipped.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan Event
	nextID int
	closed bool
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[int]chan Event),
	}
}

// Subscribe registers a listener for topic. Subscribers join and leave
// independently of any ride lifecycle. The returned cancel function removes
// the subscription and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe(topic string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[topic][id]; ok {
				delete(b.subs[topic], id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Publish delivers payload to every subscriber of topic. Subscribers that
// cannot accept the event immediately are skipped; Publish never blocks.
func (b *Broadcaster) Publish(topic string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- Event{Topic: topic, Payload: payload}:
		default:
			// Subscriber is backed up; drop.
		}
	}
}

// Close closes every subscriber channel and rejects further publishes.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(b.subs, topic)
	}
}
