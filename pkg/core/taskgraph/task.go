package taskgraph

import (
	"sync/atomic"

	"github.com/gotaskgraph/taskgraph/pkg/infrastructure/workers"
)

// Task is a deferred computation node: a typed, single-assignment result
// cell, a dependency counter, and a continuation holder. Task values are
// always handed out as *Task[R] and are safe to share across any number
// of successors, worker goroutines, and the embedder — handle semantics
// are shared ownership, never unique.
//
// Task is never constructed directly; use MakeTask0..MakeTask3,
// MakeFlatTask0..MakeFlatTask3, or WhenAll.
type Task[R any] struct {
	cell    *resultCell[R]
	holder  *holder
	pending int64
	entry   func()
}

func newTask[R any](depCount int) *Task[R] {
	return &Task[R]{
		cell:    newResultCell[R](),
		holder:  newHolder(),
		pending: int64(depCount),
	}
}

// Result blocks until the task's body has completed (directly, or via a
// chain of continuation transfers) and returns its value. Every caller —
// concurrent or sequential — observes the same value. A body panic is
// re-raised here.
func (t *Task[R]) Result() R {
	return t.cell.wait()
}

// onScheduled registers action to fire once this task's continuation
// holder reaches the fired state, directly or through a forward chain.
func (t *Task[R]) onScheduled(action func()) {
	t.holder.attach(action)
}

// signal is the dependency-signaling callback installed by the graph
// builder on each of this task's dependencies: the caller decrements the
// dependency counter, and the one decrement that observes zero submits
// the task to the worker pool. It is called exactly once per dependency.
func (t *Task[R]) signal() {
	if atomic.AddInt64(&t.pending, -1) == 0 {
		workers.Instance().Schedule(t)
	}
}

// submit hands a zero-dependency task straight to the pool, bypassing
// the signaling path entirely: a task with no dependencies is submitted
// to the pool immediately on construction.
func (t *Task[R]) submit() {
	workers.Instance().Schedule(t)
}

// Execute implements workers.Runnable: it is the body-entry operation a
// worker invokes exactly once, after every dependency's result is ready.
func (t *Task[R]) Execute() {
	defer func() {
		if r := recover(); r != nil {
			t.cell.publishPanic(r)
			t.holder.fire()
		}
	}()
	t.entry()
}

// attachDependency installs the standard signal-on-schedule callback that
// every graph constructor installs on each dependency: if dep has
// already fired, the signal runs inline; otherwise it is queued and runs
// when dep's holder fires, or, if that holder is forwarded, when the last
// holder in the forward chain fires.
func attachDependency[A any](dep *Task[A], successor interface{ signal() }) {
	dep.onScheduled(func() { successor.signal() })
}
