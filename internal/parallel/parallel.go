// Package parallel fans read-only work out over a fixed number of goroutines.
//
// It is used for evaluation passes, where every item only reads shared
// network parameters. Training never goes through this package.
package parallel

import (
	"runtime"
	"sync"
)

// defaultMinChunk keeps goroutine startup small relative to the work per goroutine.
const defaultMinChunk = 64

type options struct {
	workers  int
	minChunk int
}

// Option tunes a For call.
type Option func(*options)

// Workers caps the number of goroutines. Values <= 0 keep one per CPU;
// 1 runs sequentially in the caller's goroutine.
func Workers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// MinChunk sets the smallest number of indices handed to one goroutine.
func MinChunk(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.minChunk = n
		}
	}
}

// For calls f(i) for every i in [0, n) and returns once all calls finish.
//
// The range is split into contiguous chunks of at least MinChunk indices,
// one goroutine per chunk. f must be safe to call concurrently.
func For(n int, f func(i int), opts ...Option) {
	o := options{workers: runtime.NumCPU(), minChunk: defaultMinChunk}
	for _, opt := range opts {
		opt(&o)
	}

	chunk := max((n+o.workers-1)/o.workers, o.minChunk)
	if o.workers == 1 || chunk >= n {
		for i := range n {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				f(i)
			}
		}(lo, min(lo+chunk, n))
	}
	wg.Wait()
}
