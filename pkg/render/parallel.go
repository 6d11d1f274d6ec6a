package render

import (
	"runtime"
	"sync"
)

// parallelFor runs fn(i) for every i in [0, n), fanning out over one
// goroutine per logical CPU with each worker walking the range at a
// stride. Iterations must not share mutable state and run in no
// particular order.
func parallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := range workers {
		go func() {
			defer wg.Done()
			for i := w; i < n; i += workers {
				fn(i)
			}
		}()
	}
	wg.Wait()
}
