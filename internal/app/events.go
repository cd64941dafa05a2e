package app

import (
	"sync"

	"github.com/google/uuid"
	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

const defaultEventBuffer = 128

// EventHub fans session events out to subscribers
type EventHub struct {
	subscribers map[string]chan domain.SessionEvent
	buffer      int
	closed      bool
	logger      *zap.Logger
	mu          sync.RWMutex
}

// NewEventHub creates a hub whose subscriber channels hold buffer events
func NewEventHub(buffer int, logger *zap.Logger) *EventHub {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHub{
		subscribers: make(map[string]chan domain.SessionEvent),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. The returned func unsubscribes and
// closes the channel; it is safe to call more than once.
func (h *EventHub) Subscribe() (<-chan domain.SessionEvent, func()) {
	id := uuid.New().String()
	ch := make(chan domain.SessionEvent, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subscribers[id] = ch
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Debug("Event subscriber added", zap.String("subscriber", id), zap.Int("subscribers", count))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(sub)
			}
		})
	}
}

// Publish delivers event to every subscriber without blocking. Subscribers
// with a full buffer miss the event.
func (h *EventHub) Publish(event domain.SessionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.logger.Debug("Dropping event for slow subscriber",
				zap.String("subscriber", id),
				zap.String("type", string(event.Type)))
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (h *EventHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
}
