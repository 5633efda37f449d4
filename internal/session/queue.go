package session

import (
	"sync"

	"quizler/internal/protocol"
)

// EventQueue is the unbounded FIFO outbox of one session. Producers
// (games, holding their own lock) never block; the owning session
// drains events in arrival order. Once closed, further sends are
// silently discarded.
type EventQueue struct {
	mu     sync.Mutex
	events []protocol.ServerEvent
	notify chan struct{}
	closed bool
}

// NewEventQueue creates an empty open queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{
		notify: make(chan struct{}, 1),
	}
}

// Send enqueues an event owned by this session.
func (q *EventQueue) Send(event protocol.ServerEvent) {
	q.push(event)
}

// SendShared enqueues an event shared across many sessions. The value
// must not be mutated by any consumer.
func (q *EventQueue) SendShared(event protocol.ServerEvent) {
	q.push(event)
}

func (q *EventQueue) push(event protocol.ServerEvent) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.events = append(q.events, event)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Ready signals when the queue may have events to drain.
func (q *EventQueue) Ready() <-chan struct{} {
	return q.notify
}

// Pop removes and returns the oldest queued event.
func (q *EventQueue) Pop() (protocol.ServerEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}
	event := q.events[0]
	q.events = q.events[1:]
	return event, true
}

// Close discards all queued events and turns future sends into no-ops.
func (q *EventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.events = nil
	q.mu.Unlock()
}
