package sched

import "sync/atomic"

// Token cancels a scheduled task. Cancel is safe from any goroutine and
// takes effect on the next tick check.
type Token struct {
	cancelled atomic.Bool
}

// Cancel stops the task. Further calls are no-ops.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called.
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Task runs fn every interval seconds of simulation time until cancelled.
type Task struct {
	interval float64
	next     float64
	fn       func(now float64)
	token    *Token
	runs     int
}

// Scheduler owns the repeating tasks of one simulation.
type Scheduler struct {
	tasks []*Task
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Every schedules fn to run first at start, then every interval seconds.
// The returned token cancels it.
func (s *Scheduler) Every(start, interval float64, fn func(now float64)) *Token {
	tok := &Token{}
	s.tasks = append(s.tasks, &Task{
		interval: interval,
		next:     start,
		fn:       fn,
		token:    tok,
	})
	return tok
}

// Tick runs every due task at most once and drops cancelled ones.
// A task that fell behind runs once and resumes one interval after now.
func (s *Scheduler) Tick(now float64) {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.token.Cancelled() {
			continue
		}
		if now >= t.next {
			t.fn(now)
			t.runs++
			if t.interval <= 0 {
				continue // one-shot
			}
			t.next += t.interval
			if t.next <= now {
				t.next = now + t.interval
			}
		}
		if t.token.Cancelled() {
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// CancelAll cancels every task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.token.Cancel()
	}
	s.tasks = s.tasks[:0]
}
