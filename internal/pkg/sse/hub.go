package sse

import (
	"context"
	"sync"
	"sync/atomic"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	ID    uint64
	Event string
	Data  any
}

// Hub fans domain events out to connected stream clients. It satisfies
// mq.Publisher so it can sit next to the broker publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	closed      bool
	seq         atomic.Uint64
	bufferSize  int
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		bufferSize:  16,
	}
}

// Subscribe registers a new subscriber and returns the event channel and cleanup function
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
	return ch, cleanup
}

// Publish sends an event to every subscriber. Slow subscribers miss events
// instead of blocking the publisher.
func (h *Hub) Publish(_ context.Context, routingKey string, body any) error {
	event := Event{ID: h.seq.Add(1), Event: routingKey, Data: body}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Close disconnects all subscribers.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.closed = true
	return nil
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
