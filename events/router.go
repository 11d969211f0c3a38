package events

// Handler processes one event. Called synchronously during dispatch.
type Handler func(ev Event)

// Router dispatches queued events to registered handlers.
//
// Dispatch is single-threaded. Handlers for a type run in registration
// order, and all handlers for an event run before the next event. Events
// pushed by a handler during dispatch are delivered in the same call.
type Router struct {
	handlers [NumTypes][]Handler
	queue    *Queue
}

// NewRouter creates a router attached to the given queue.
func NewRouter(queue *Queue) *Router {
	return &Router{queue: queue}
}

// Queue returns the queue the router drains.
func (r *Router) Queue() *Queue {
	return r.queue
}

// On registers a handler for an event type.
func (r *Router) On(t Type, h Handler) {
	if t < 0 || t >= NumTypes {
		return
	}
	r.handlers[t] = append(r.handlers[t], h)
}

// maxRounds bounds cascades of handler-raised events within one dispatch.
const maxRounds = 8

// DispatchAll consumes pending events and routes them to handlers.
// Returns the number of events dispatched.
func (r *Router) DispatchAll() int {
	n := 0
	for round := 0; round < maxRounds; round++ {
		batch := r.queue.Consume()
		if len(batch) == 0 {
			break
		}
		for _, ev := range batch {
			if ev.Type < 0 || ev.Type >= NumTypes {
				continue
			}
			for _, h := range r.handlers[ev.Type] {
				h(ev)
			}
			n++
		}
	}
	return n
}

// HandlerCount returns the number of handlers registered for a type.
func (r *Router) HandlerCount(t Type) int {
	if t < 0 || t >= NumTypes {
		return 0
	}
	return len(r.handlers[t])
}
