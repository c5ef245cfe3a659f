package realtime

import (
	"sync"
	"time"

	"campustalk_backend/internal/logger"
)

const defaultBuffer = 64

// Bus is the in-process channel-keyed pub/sub primitive. Delivery is
// best-effort: a subscriber that cannot keep up has events dropped rather
// than blocking the publisher. Reconnecting consumers re-fetch a snapshot;
// the bus never replays.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]*Subscription
	nextID int64
	closed bool
}

// Subscription is one consumer's handle on a channel. Cancel on view
// teardown; C is closed afterwards.
type Subscription struct {
	Channel string
	C       <-chan Event

	bus *Bus
	id  int64
	ch  chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int64]*Subscription)}
}

// Subscribe registers a consumer on a channel.
func (b *Bus) Subscribe(channel string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, defaultBuffer)
	b.nextID++
	sub := &Subscription{
		Channel: channel,
		C:       ch,
		bus:     b,
		id:      b.nextID,
		ch:      ch,
	}

	if b.closed {
		close(ch)
		return sub
	}

	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int64]*Subscription)
	}
	b.subs[channel][sub.id] = sub
	return sub
}

// Unsubscribe removes the consumer and closes its channel. Safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	channelSubs, ok := s.bus.subs[s.Channel]
	if !ok {
		return
	}
	if _, ok := channelSubs[s.id]; !ok {
		return
	}
	delete(channelSubs, s.id)
	if len(channelSubs) == 0 {
		delete(s.bus.subs, s.Channel)
	}
	close(s.ch)
}

// Publish fans the event out to current subscribers of the channel.
// Full subscriber buffers drop the event.
func (b *Bus) Publish(channel string, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs[channel] {
		select {
		case sub.ch <- event:
		default:
			logger.Warn("realtime: dropping event for slow subscriber",
				"channel", channel, "type", event.Type)
		}
	}
}

// SubscriberCount is a test and metrics helper.
func (b *Bus) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}

// Close shuts the bus down and closes every subscription channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, channelSubs := range b.subs {
		for _, sub := range channelSubs {
			close(sub.ch)
		}
	}
	b.subs = make(map[string]map[int64]*Subscription)
}
