// Package parallel provides the goroutine pool and row partitioning used to
// spread per-pixel color processing across CPU cores.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs batches of pixel jobs on a fixed set of goroutines.
//
// Workers pull from one shared queue, so a slow row range never holds up
// idle workers. The goroutine calling ExecuteAll helps drain the queue
// until its own batch is done, which keeps the pool usable after Close and
// from inside a job.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	jobs    chan func()

	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool of workers goroutines.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		jobs:    make(chan func(), max(workers*4, 8)),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.done:
			return
		}
	}
}

// ExecuteAll runs every item of work and returns once all have finished.
//
// A nil or closed pool, or a batch of one, runs on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.IsRunning() || len(work) == 1 {
		for _, fn := range work {
			fn()
		}
		return
	}

	var remaining atomic.Int64
	remaining.Store(int64(len(work)))
	finished := make(chan struct{})

	for _, fn := range work {
		job := func() {
			fn()
			if remaining.Add(-1) == 0 {
				close(finished)
			}
		}
		select {
		case p.jobs <- job:
		default:
			job()
		}
	}

	for {
		select {
		case <-finished:
			return
		case job := <-p.jobs:
			job()
		}
	}
}

// Close stops the workers. Jobs still queued are run by the goroutines
// waiting on them. Close is safe to call multiple times and on a nil pool.
func (p *WorkerPool) Close() {
	if p == nil || !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool. A nil pool has one:
// the caller.
func (p *WorkerPool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// IsRunning reports whether the pool still has workers.
func (p *WorkerPool) IsRunning() bool {
	return p != nil && p.running.Load()
}
