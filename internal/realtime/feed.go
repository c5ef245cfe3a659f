package realtime

import (
	"sync"
	"time"
)

// MessagePayload is the wire shape of message events on the bus.
type MessagePayload struct {
	ID              string    `json:"id"`
	ConversationRef string    `json:"conversation_ref"`
	SenderID        string    `json:"sender_id"`
	Type            string    `json:"type"`
	Content         string    `json:"content"`
	Deleted         bool      `json:"deleted"`
	CreatedAt       time.Time `json:"created_at"`
}

// Feed holds a consumer's view of one conversation and implements the
// reconciliation contract for incoming change events:
//
//   - inserts authored by the consumer are ignored (already applied
//     optimistically),
//   - inserts are deduplicated by message id,
//   - accepted inserts append in arrival order; the list is never re-sorted
//     by timestamp, so causal send order across senders may differ from
//     display order.
//
// On reconnect there is no gap filling: callers Resync with a fresh
// snapshot instead of waiting for missed events.
type Feed struct {
	mu      sync.Mutex
	selfID  string
	items   []MessagePayload
	present map[string]int // message id -> index in items
}

func NewFeed(selfID string) *Feed {
	return &Feed{
		selfID:  selfID,
		present: make(map[string]int),
	}
}

// Append adds an optimistic local message (the consumer's own send).
func (f *Feed) Append(msg MessagePayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(msg)
}

// Apply merges one bus event into the feed. Returns true when the feed
// changed. Events referencing messages no longer present are dropped; the
// merge is guarded by existence checks so late events stay idempotent.
func (f *Feed) Apply(event Event) bool {
	payload, ok := event.Payload.(MessagePayload)
	if !ok {
		if p, ok := event.Payload.(*MessagePayload); ok {
			payload = *p
		} else {
			return false
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch event.Type {
	case EventInsert:
		if payload.SenderID == f.selfID {
			return false
		}
		if _, dup := f.present[payload.ID]; dup {
			return false
		}
		f.add(payload)
		return true

	case EventUpdate:
		idx, ok := f.present[payload.ID]
		if !ok {
			return false
		}
		f.items[idx] = payload
		return true

	case EventDelete:
		idx, ok := f.present[payload.ID]
		if !ok {
			return false
		}
		f.items = append(f.items[:idx], f.items[idx+1:]...)
		delete(f.present, payload.ID)
		for i := idx; i < len(f.items); i++ {
			f.present[f.items[i].ID] = i
		}
		return true
	}
	return false
}

// Resync replaces the feed with a fresh authoritative snapshot.
func (f *Feed) Resync(snapshot []MessagePayload) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = f.items[:0]
	f.present = make(map[string]int)
	for _, msg := range snapshot {
		f.add(msg)
	}
}

// Messages returns a copy of the current view in arrival order.
func (f *Feed) Messages() []MessagePayload {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]MessagePayload, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Feed) add(msg MessagePayload) {
	if _, dup := f.present[msg.ID]; dup {
		return
	}
	f.present[msg.ID] = len(f.items)
	f.items = append(f.items, msg)
}
