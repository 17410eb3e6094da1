package events

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster(4, nil)
	defer b.Close()

	first := b.Subscribe()
	second := b.Subscribe()
	require.NotNil(t, first)
	require.NotNil(t, second)

	b.Publish(Event{Type: EventTicketCreated})

	got := <-first.Events()
	assert.Equal(t, EventTicketCreated, got.Type)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())

	got = <-second.Events()
	assert.Equal(t, EventTicketCreated, got.Type)
}

func TestBroadcasterDropsOldestOnOverflow(t *testing.T) {
	var drops atomic.Int64
	b := NewBroadcaster(2, func() { drops.Add(1) })
	defer b.Close()

	sub := b.Subscribe()
	require.NotNil(t, sub)

	b.Publish(Event{ID: "1", Type: EventSLABreach})
	b.Publish(Event{ID: "2", Type: EventSLABreach})
	b.Publish(Event{ID: "3", Type: EventSLABreach})

	assert.Equal(t, int64(1), drops.Load())
	assert.Equal(t, "2", (<-sub.Events()).ID)
	assert.Equal(t, "3", (<-sub.Events()).ID)
}

func TestBroadcasterSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	b := NewBroadcaster(1, nil)
	defer b.Close()

	slow := b.Subscribe()
	fast := b.Subscribe()
	require.NotNil(t, slow)
	require.NotNil(t, fast)

	for i := 0; i < 10; i++ {
		b.Publish(Event{Type: EventAlertRaised})
		<-fast.Events()
	}
}

func TestBroadcasterClose(t *testing.T) {
	b := NewBroadcaster(2, nil)
	sub := b.Subscribe()
	require.NotNil(t, sub)

	b.Publish(Event{ID: "1", Type: EventTicketCreated})
	b.Close()

	// Queued events drain, then the channel closes.
	got, ok := <-sub.Events()
	assert.True(t, ok)
	assert.Equal(t, "1", got.ID)
	_, ok = <-sub.Events()
	assert.False(t, ok)

	assert.Nil(t, b.Subscribe())
	b.Publish(Event{Type: EventTicketCreated})
	b.Close()
}

func TestSubscriptionCloseDetaches(t *testing.T) {
	b := NewBroadcaster(2, nil)
	defer b.Close()

	sub := b.Subscribe()
	require.NotNil(t, sub)
	sub.Close()

	b.Publish(Event{Type: EventTicketCreated})
	_, ok := <-sub.Events()
	assert.False(t, ok)
}
