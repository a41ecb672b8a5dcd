// Package pubsub implements the in-process event bus that fans out feed
// events to live subscribers. Delivery is at-most-once per subscriber and
// not durable: a subscriber only sees events published while it is
// registered, and nothing survives a restart.
package pubsub

import (
	"log/slog"
	"sync"

	"message-feed/domain/event"
)

// DefaultQueueSize is the per-subscriber delivery queue capacity.
const DefaultQueueSize = 16

// Subscription is the handle held by one live subscriber. Events arrive
// on C in publish order until Cancel is called or the bus shuts down.
type Subscription struct {
	topic  string
	events chan event.DomainEvent
	bus    *Bus
}

// C returns the channel delivering events to this subscriber. The channel
// is closed on cancellation; a receive loop terminates naturally.
func (s *Subscription) C() <-chan event.DomainEvent {
	return s.events
}

// Cancel unregisters the subscriber and closes its channel. Buffered but
// undelivered events are discarded. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	s.bus.unsubscribe(s)
}

// Bus is a topic-based publish/subscribe register. It is owned by the
// process and injected where needed; it is safe for concurrent publish,
// subscribe and cancel. A publish reaches exactly the subscribers that
// were registered before the call, each on its own bounded queue.
type Bus struct {
	mu        sync.Mutex
	topics    map[string]map[*Subscription]struct{}
	queueSize int
	log       *slog.Logger
}

func NewBus(log *slog.Logger, queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bus{
		topics:    make(map[string]map[*Subscription]struct{}),
		queueSize: queueSize,
		log:       log,
	}
}

// Publish delivers an event to every current subscriber of its topic.
// A subscriber that does not drain its queue loses its oldest undelivered
// event rather than stalling the publisher; the queue stays bounded.
func (b *Bus) Publish(evt event.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.topics[evt.Topic()] {
		select {
		case sub.events <- evt:
			continue
		default:
		}
		// Queue full: drop the oldest event, then retry once. The second
		// send cannot block because both operations happen under the bus
		// lock, so no competing publisher can refill the queue.
		select {
		case <-sub.events:
			b.log.Debug("Dropping oldest event for slow subscriber", "topic", evt.Topic())
		default:
		}
		select {
		case sub.events <- evt:
		default:
		}
	}
}

// Subscribe registers a new subscriber on a topic and returns its handle.
func (b *Bus) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		topic:  topic,
		events: make(chan event.DomainEvent, b.queueSize),
		bus:    b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.topics[topic]; !ok {
		b.topics[topic] = make(map[*Subscription]struct{})
	}
	b.topics[topic][sub] = struct{}{}
	b.log.Debug("Subscriber registered", "topic", topic, "total", len(b.topics[topic]))
	return sub
}

// SubscriberCount reports the current number of subscribers on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[sub.topic]
	if !ok {
		return
	}
	if _, registered := subs[sub]; !registered {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
	// Drain before closing so a cancelled handle never yields stale
	// buffered events. Closing under the bus lock keeps Publish from
	// sending on a closed channel; both paths serialize on the same mutex.
	for {
		select {
		case <-sub.events:
			continue
		default:
		}
		break
	}
	close(sub.events)
	b.log.Debug("Subscriber unregistered", "topic", sub.topic, "remaining", len(subs))
}
