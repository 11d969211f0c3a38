// Package sched provides tick-driven scheduling primitives: a join barrier
// for startup prerequisites, a handoff for results produced off the tick,
// and cancellable repeating tasks.
package sched

import (
	"sync"
)

// Barrier fires a continuation once a fixed number of prerequisites have
// completed. Done may be called from any goroutine.
type Barrier struct {
	mu      sync.Mutex
	pending int
	then    func()
	fired   bool
}

// NewBarrier creates a barrier waiting on n prerequisites. With n <= 0
// the continuation runs immediately.
func NewBarrier(n int, then func()) *Barrier {
	b := &Barrier{pending: n, then: then}
	if n <= 0 {
		b.fire()
	}
	return b
}

// Done marks one prerequisite complete. Extra calls after the barrier
// fired are ignored.
func (b *Barrier) Done() {
	b.mu.Lock()
	if b.fired || b.pending <= 0 {
		b.mu.Unlock()
		return
	}
	b.pending--
	last := b.pending == 0
	b.mu.Unlock()

	if last {
		b.fire()
	}
}

// Pending returns the number of prerequisites still outstanding.
func (b *Barrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Fired reports whether the continuation has run.
func (b *Barrier) Fired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fired
}

func (b *Barrier) fire() {
	b.mu.Lock()
	if b.fired {
		b.mu.Unlock()
		return
	}
	b.fired = true
	then := b.then
	b.mu.Unlock()

	if then != nil {
		then()
	}
}
