// Package workers owns the process-wide worker pool that drives every
// task built by pkg/core/taskgraph. It is the "Worker Pool (Scheduler)"
// and "Blocking Queue" components of the task-graph scheduler: a fixed
// set of goroutines drains a FIFO queue of Runnables, one at a time,
// until it sees a sentinel.
//
// An earlier pkg/common/workers.Pool managed a heterogeneous Task interface
// with ID-correlated results, progress reporting, and ExecuteAll-style
// ordered batch collection. Those features don't fit a process-wide
// scheduler whose callers are taskgraph.Task values signaling their own
// readiness — see DESIGN.md for the full accounting of what was dropped
// and why.
package workers

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gotaskgraph/taskgraph/pkg/infrastructure/logging"
)

// Runnable is anything the pool can execute exactly once: the task-entry
// operation of pkg/core/taskgraph.Task, type-erased so this package has
// no dependency on taskgraph (taskgraph depends on workers, not the
// other way around).
type Runnable interface {
	Execute()
}

// Config controls the singleton Pool's worker count, the one option
// pool_init recognizes; every other scheduling behavior is fixed.
type Config struct {
	// WorkerCount is the number of goroutines draining the task queue.
	// If 0, defaults to runtime.NumCPU().
	WorkerCount int
}

// Pool is the process-wide singleton worker pool. It must not be
// constructed directly; use Init, Schedule, Instance, and Shutdown.
type Pool struct {
	queue   *blockingQueue
	wg      sync.WaitGroup
	workers int

	mu       sync.Mutex
	shutdown bool

	scheduled int64 // atomic: tasks handed to Schedule, for diagnostics only
	executed  int64 // atomic: tasks a worker has run to completion
}

var (
	globalMu sync.Mutex
	global   *Pool
)

// Init constructs the singleton pool and starts its worker goroutines.
// It must be called before any task is constructed. Calling it a second
// time without an intervening Shutdown is a structural precondition
// violation and panics.
func Init(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		panic("workers: Init called twice without an intervening Shutdown")
	}

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		queue:   newBlockingQueue(),
		workers: workerCount,
	}
	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go p.workerLoop()
	}
	global = p

	logging.GetGlobalLogger().WithComponent("workers").Infof("pool started with %d workers", workerCount)
}

// Instance returns the current singleton pool. Its behavior is
// unspecified outside the window between Init and Shutdown.
func Instance() *Pool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}

// Shutdown enqueues one sentinel per worker, waits for every worker to
// drain whatever was ahead of its sentinel, and then releases the
// singleton so Init may be called again. Tasks scheduled after Shutdown
// begins are rejected rather than left to stall forever with no workers
// to drain them.
func Shutdown() {
	globalMu.Lock()
	p := global
	globalMu.Unlock()

	if p == nil {
		panic("workers: Shutdown called with no pool initialized")
	}

	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		panic("workers: Shutdown called twice")
	}
	p.shutdown = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.queue.push(nil)
	}
	p.wg.Wait()

	globalMu.Lock()
	global = nil
	globalMu.Unlock()

	scheduled, executed := p.Stats()
	logging.GetGlobalLogger().WithComponent("workers").Infof(
		"pool shut down: %d scheduled, %d executed", scheduled, executed)
}

// Schedule pushes a Runnable onto the pool's queue. Safe to call from any
// goroutine, including from inside a task's own Execute — a task body is
// explicitly allowed to build and schedule new tasks.
func (p *Pool) Schedule(r Runnable) {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		panic(fmt.Sprintf("workers: Schedule called after Shutdown began (%T)", r))
	}
	p.mu.Unlock()

	atomic.AddInt64(&p.scheduled, 1)
	p.queue.push(r)
}

// Stats reports coarse scheduling counters. It exists for tests and
// diagnostics only; the scheduler itself makes no decisions based on it.
func (p *Pool) Stats() (scheduled, executed int64) {
	return atomic.LoadInt64(&p.scheduled), atomic.LoadInt64(&p.executed)
}

// workerLoop is the body every pool goroutine runs: pop, and either exit
// on the nil sentinel or execute the task exactly once.
func (p *Pool) workerLoop() {
	defer p.wg.Done()
	for {
		r := p.queue.pop()
		if r == nil {
			return
		}
		r.Execute()
		atomic.AddInt64(&p.executed, 1)
	}
}
