package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/mediafetch-go/internal/domain"
)

func TestEventHub_FanOut(t *testing.T) {
	hub := NewEventHub(4, nil)
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelA()
	defer cancelB()

	hub.Publish(domain.NewSessionEvent(domain.EventState, domain.StateIdle))

	assert.Equal(t, domain.StateIdle, (<-a).State)
	assert.Equal(t, domain.StateIdle, (<-b).State)
	assert.Equal(t, 2, hub.SubscriberCount())
}

func TestEventHub_DropsForSlowSubscriber(t *testing.T) {
	hub := NewEventHub(1, nil)
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(domain.NewSessionEvent(domain.EventState, domain.StateIdle))
	hub.Publish(domain.NewSessionEvent(domain.EventState, domain.StateFetchingMetadata))

	assert.Equal(t, domain.StateIdle, (<-ch).State)
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestEventHub_CancelClosesChannel(t *testing.T) {
	hub := NewEventHub(0, nil)
	ch, cancel := hub.Subscribe()

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount())

	hub.Publish(domain.NewSessionEvent(domain.EventState, domain.StateIdle))
}

func TestEventHub_Close(t *testing.T) {
	hub := NewEventHub(0, nil)
	ch, cancel := hub.Subscribe()

	hub.Close()
	_, ok := <-ch
	assert.False(t, ok)
	cancel()

	late, _ := hub.Subscribe()
	_, ok = <-late
	require.False(t, ok)
}
