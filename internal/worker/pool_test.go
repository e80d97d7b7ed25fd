package worker

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllJobs(t *testing.T) {
	var count int64
	pool := NewPool(4, func() struct{} { return struct{}{} })

	for i := 0; i < 100; i++ {
		pool.Submit(func(struct{}) {
			atomic.AddInt64(&count, 1)
		})
	}
	pool.Close()

	assert.Equal(t, int64(100), count)
}

func TestPoolWorkerOwnedState(t *testing.T) {
	// Each worker gets its own counter from the factory; jobs mutate it
	// without synchronization. The per-worker totals must sum to the job
	// count, proving state is never shared between workers.
	var mu sync.Mutex
	counters := make([]*int, 0, 3)

	pool := NewPool(3, func() *int {
		c := new(int)
		mu.Lock()
		counters = append(counters, c)
		mu.Unlock()
		return c
	})

	const jobs = 60
	for i := 0; i < jobs; i++ {
		pool.Submit(func(c *int) {
			*c++
		})
	}
	pool.Close()

	total := 0
	for _, c := range counters {
		total += *c
	}
	assert.Equal(t, jobs, total)
	assert.Len(t, counters, 3)
}
