package events

import (
	"sync"
	"sync/atomic"

	"plant_watering/internal/config"
	"plant_watering/internal/logger"
)

const (
	defaultSubscriberBuffer = 64
	defaultSoftLimit        = 100
)

// Subscription is one consumer's bounded queue of events.
type Subscription struct {
	id      uint64
	ch      chan Event
	dropped atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// C is closed after Unsubscribe.
func (s *Subscription) C() <-chan Event { return s.ch }

// Dropped reports how many events were discarded because the queue was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// trySend never blocks. When the queue is full the new event is dropped.
func (s *Subscription) trySend(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- ev:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Bus fans events out to every current subscriber in registration order.
// There is no replay: a subscriber only sees events emitted after Subscribe.
type Bus struct {
	log       *logger.Logger
	buffer    int
	softLimit int

	mu     sync.RWMutex
	subs   []*Subscription
	nextID uint64
}

func NewBus(cfg config.BusConfig, log *logger.Logger) *Bus {
	b := &Bus{
		log:       log,
		buffer:    cfg.SubscriberBuffer,
		softLimit: cfg.SoftSubscriberLimit,
	}
	if b.buffer < 1 {
		b.buffer = defaultSubscriberBuffer
	}
	if b.softLimit < 1 {
		b.softLimit = defaultSoftLimit
	}
	return b
}

// Subscribe registers a consumer. buffer <= 0 uses the configured size.
// Going past the soft limit only logs a warning.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = b.buffer
	}

	b.mu.Lock()
	b.nextID++
	s := &Subscription{id: b.nextID, ch: make(chan Event, buffer)}
	b.subs = append(b.subs, s)
	n := len(b.subs)
	b.mu.Unlock()

	if n > b.softLimit {
		b.log.Warnw("bus_subscriber_limit_exceeded", "subscribers", n, "soft_limit", b.softLimit)
	}
	return s
}

// Unsubscribe removes s and closes its channel. Safe to call twice.
func (b *Bus) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}
	b.mu.Lock()
	for i, cur := range b.subs {
		if cur == s {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	s.close()
}

// Emit delivers ev to a snapshot of the current subscribers.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.trySend(ev) {
			b.log.Debugw("bus_event_dropped", "subscriber", s.id, "type", ev.Type, "dropped", s.Dropped())
		}
	}
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
