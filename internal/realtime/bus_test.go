package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesChannelSubscribersOnly(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	defer bus.Close()

	a := bus.Subscribe("conversation:one")
	b := bus.Subscribe("conversation:one")
	other := bus.Subscribe("conversation:two")

	bus.Publish("conversation:one", Event{Type: EventInsert, Table: "messages"})

	for _, sub := range []*Subscription{a, b} {
		select {
		case event := <-sub.C:
			assert.Equal(t, EventInsert, event.Type)
			assert.False(t, event.At.IsZero())
		default:
			t.Fatal("subscriber missed its event")
		}
	}

	select {
	case <-other.C:
		t.Fatal("event leaked to another channel")
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	defer bus.Close()

	sub := bus.Subscribe("c")
	for i := 0; i < defaultBuffer+10; i++ {
		bus.Publish("c", Event{Type: EventInsert})
	}

	// The buffer is full; the overflow was dropped, not queued.
	received := 0
	for {
		select {
		case <-sub.C:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, defaultBuffer, received)
}

func TestUnsubscribeIdempotent(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	defer bus.Close()

	sub := bus.Subscribe("c")
	require.Equal(t, 1, bus.SubscriberCount("c"))

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Zero(t, bus.SubscriberCount("c"))

	// The channel is closed so consumer loops terminate.
	_, open := <-sub.C
	assert.False(t, open)

	// Publishing to a channel with no subscribers is a no-op.
	bus.Publish("c", Event{Type: EventInsert})
}

func TestCloseTerminatesSubscribers(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	sub := bus.Subscribe("c")

	bus.Close()
	bus.Close()

	_, open := <-sub.C
	assert.False(t, open)

	// Late subscribers get an already-closed channel.
	late := bus.Subscribe("c")
	_, open = <-late.C
	assert.False(t, open)

	bus.Publish("c", Event{Type: EventInsert})
}
