package common

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// WorkerGroup runs tasks on a fixed set of single-worker pools, handing tasks out
// round-robin. A DynamicWorkerPool with several workers shares one stop channel and
// can leave workers running after Stop; a pool of one always stops its worker.
type WorkerGroup struct {
	mu      *sync.Mutex
	pools   []worker.DynamicWorkerPool
	next    atomic.Uint64
	stopped bool
}

// NewWorkerGroup starts n workers, each with its own queue of queueSize tasks.
//
// Parameters:
//   - n: the worker count, clamped to at least 1
//   - queueSize: the per-worker task queue capacity
//
// Returns:
//   - *WorkerGroup: the running group
func NewWorkerGroup(n, queueSize int) *WorkerGroup {
	n = max(n, 1)
	g := &WorkerGroup{
		mu:    &sync.Mutex{},
		pools: make([]worker.DynamicWorkerPool, n),
	}
	for i := range g.pools {
		g.pools[i] = worker.NewDynamicWorkerPool(1, max(queueSize, 1), 1*time.Second)
	}
	return g
}

// Size returns the number of workers.
func (g *WorkerGroup) Size() int {
	return len(g.pools)
}

// Submit queues a task on the next worker. After Stop the task runs on the caller's
// goroutine so callers waiting on it never hang.
//
// Parameters:
//   - t: the task to run
func (g *WorkerGroup) Submit(t worker.Task) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		_, _ = t.Do()
		return
	}
	defer g.mu.Unlock()
	g.pools[g.next.Add(1)%uint64(len(g.pools))].SubmitTask(t)
}

// Stop ends every worker goroutine. Tasks still queued may be dropped, so callers stop
// the group only once nothing waits on its tasks. Safe to call more than once.
func (g *WorkerGroup) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	g.stopped = true
	for _, p := range g.pools {
		p.Stop()
	}
}
