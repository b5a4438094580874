package taskgraph

import "sync"

// holder is the per-task continuation registry: it starts pending,
// accumulates "on-scheduled" actions, and reaches exactly one of two
// terminal states — fired (the task completed locally and published its
// own result) or forwarded (the task's result is an alias for some inner
// task's, and everything waiting on this holder now waits on the inner
// one instead).
//
// attach holds the lock for its entire body (including the inline
// invocation when already fired, and the recursive delegation when
// forwarded), while fire and transfer only hold the lock across the
// state transition and release it before running the accumulated
// actions.
type holder struct {
	mu      sync.Mutex
	actions []func()
	fired   bool
	forward *holder
}

func newHolder() *holder {
	return &holder{}
}

// attach registers action to run once this holder (or whatever it has
// been forwarded to) reaches the fired state. If that has already
// happened, action runs synchronously on the calling goroutine.
func (h *holder) attach(action func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.forward != nil:
		h.forward.attach(action)
	case h.fired:
		action()
	default:
		h.actions = append(h.actions, action)
	}
}

// fire transitions a pending holder to fired and runs every accumulated
// action, in insertion order, on the calling goroutine. It must be called
// at most once per holder, and never after transfer.
func (h *holder) fire() {
	h.mu.Lock()
	if h.fired || h.forward != nil {
		h.mu.Unlock()
		panic("taskgraph: holder fired more than once or after transfer")
	}
	h.fired = true
	actions := h.actions
	h.actions = nil
	h.mu.Unlock()

	for _, action := range actions {
		action()
	}
}

// transfer hands this holder's accumulated actions off to dest, and marks
// this holder as permanently forwarded there. Any future attach on h
// delegates to dest. It must be called at most once per holder, and never
// after fire.
func (h *holder) transfer(dest *holder) {
	h.mu.Lock()
	if h.fired || h.forward != nil {
		h.mu.Unlock()
		panic("taskgraph: holder transferred more than once or after firing")
	}
	h.forward = dest
	actions := h.actions
	h.actions = nil
	h.mu.Unlock()

	for _, action := range actions {
		dest.attach(action)
	}
}
