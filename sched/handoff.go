package sched

import "sync"

// Handoff carries work produced on background goroutines back to the
// simulation tick. Posted functions only run inside Drain.
type Handoff struct {
	mu    sync.Mutex
	queue []func()
}

// NewHandoff creates an empty handoff.
func NewHandoff() *Handoff {
	return &Handoff{}
}

// Post queues fn to run on the next Drain. Safe from any goroutine.
func (h *Handoff) Post(fn func()) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.queue = append(h.queue, fn)
	h.mu.Unlock()
}

// Drain runs every queued function in post order on the calling goroutine
// and returns how many ran. Functions posted while draining wait for the
// next call.
func (h *Handoff) Drain() int {
	h.mu.Lock()
	batch := h.queue
	h.queue = nil
	h.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Len returns the number of queued functions.
func (h *Handoff) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}
