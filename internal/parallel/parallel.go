// Package parallel provides the fork-join helpers used by the segmentation
// passes: contiguous chunking for uniform work and an atomic cursor for work
// whose cost varies per item.
//
// Usage:
//
//	cursor := parallel.NewCursor(n)
//	parallel.Run(workers, func(worker int) {
//	    for i, ok := cursor.Next(); ok; i, ok = cursor.Next() {
//	        process(i)
//	    }
//	})
package parallel

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Workers normalizes a requested worker count. Values <= 0 select GOMAXPROCS.
func Workers(requested int) int {
	if requested <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return requested
}

// Run starts fn on the given number of goroutines, passing each its index in
// [0, workers), and blocks until all of them return.
func Run(workers int, fn func(worker int)) {
	workers = Workers(workers)
	if workers == 1 {
		fn(0)
		return
	}

	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			fn(w)
			return nil
		})
	}
	_ = g.Wait()
}

// For executes fn over [0, n) split into one contiguous range per worker.
// fn receives (start, end) and must process [start, end).
func For(workers, n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers = min(Workers(workers), n)
	if workers == 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// Cursor hands out the indices [0, n) one at a time to any number of
// goroutines. Each index is returned exactly once.
type Cursor struct {
	next atomic.Int64
	n    int64
}

func NewCursor(n int) *Cursor {
	return &Cursor{n: int64(n)}
}

// Next claims the next unprocessed index. ok is false once all are taken.
func (c *Cursor) Next() (i int, ok bool) {
	idx := c.next.Add(1) - 1
	if idx >= c.n {
		return 0, false
	}
	return int(idx), true
}
