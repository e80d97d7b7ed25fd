// internal/worker/pool.go
package worker

import (
	"sync"
)

// Pool runs jobs on a fixed set of goroutines. Each goroutine builds its
// own worker-local state from the factory when it starts, so job handlers
// can hold caches and handles without any locking; state is torn down with
// the worker and never crosses the pool boundary.
type Pool[S any] struct {
	wg   sync.WaitGroup
	jobs chan func(S)
}

// NewPool creates a worker pool of the given size. The factory is called
// once per worker, on the worker's own goroutine.
func NewPool[S any](size int, factory func() S) *Pool[S] {
	p := &Pool[S]{
		jobs: make(chan func(S)),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()

			state := factory()
			for job := range p.jobs {
				job(state)
			}
		}()
	}

	return p
}

// Submit hands a job to the pool, blocking until a worker is free to take
// it. Jobs must not panic; recover at the call site before submitting.
func (p *Pool[S]) Submit(job func(S)) {
	p.jobs <- job
}

// Close stops accepting jobs and waits for in-flight work to complete.
func (p *Pool[S]) Close() {
	close(p.jobs)
	p.wg.Wait()
}
