package pipeline

import (
	"fmt"
	"sync"
)

// Pool fans work over a fixed number of goroutines. Panics inside a task are
// recovered and returned as that task's error so one bad epoch cannot take
// down the run.
type Pool struct {
	workers int
}

// NewPool clamps the worker count to at least one.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Map runs fn for every index in [0, n) and returns the per-index errors.
func (p *Pool) Map(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}
	workers := p.workers
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = runRecovered(i, fn)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return errs
}

func runRecovered(i int, fn func(i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d panicked: %v", i, r)
		}
	}()
	return fn(i)
}
