package events

import "sync"

// Queue is a FIFO of pending events. Push is safe from any goroutine;
// Consume belongs to the simulation tick.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

// Emit pushes an event built from its parts.
func (q *Queue) Emit(t Type, now float64, payload any) {
	q.Push(Event{Type: t, Time: now, Payload: payload})
}

// Consume returns all pending events in FIFO order and empties the queue.
// The returned slice is only valid until the next Consume.
func (q *Queue) Consume() []Event {
	q.mu.Lock()
	out := q.pending
	q.pending = q.spare[:0]
	q.spare = out
	q.mu.Unlock()
	return out
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
