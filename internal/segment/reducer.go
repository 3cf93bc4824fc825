package segment

import (
	"sync"

	"rect-segmenter/internal/parallel"
)

// search distributes the (dy, dx) shapes over workers. The number of
// positions per shape ranges from 1 to Height*Width, so shapes are claimed one
// at a time from a shared cursor instead of being split up front. Each worker
// keeps its own best and merges it into the global one when the cursor runs
// dry.
func search(workers int, t *Table) (Result, error) {
	if t.Height < 1 || t.Width < 1 {
		return Result{}, ErrNoCandidates
	}

	numShapes := t.Height * t.Width
	workers = min(parallel.Workers(workers), numShapes)
	if workers == 1 {
		return searchSequential(t)
	}

	var (
		mu     sync.Mutex
		global candidate
	)
	cursor := parallel.NewCursor(numShapes)

	parallel.Run(workers, func(int) {
		var local candidate
		for s, ok := cursor.Next(); ok; s, ok = cursor.Next() {
			dy, dx := s/t.Width+1, s%t.Width+1
			scanShape(t, newShape(t, dy, dx), &local)
		}

		if !local.set {
			return
		}
		mu.Lock()
		global.offer(&local.Result)
		mu.Unlock()
	})

	if !global.set {
		return Result{}, ErrNoCandidates
	}
	return global.Result, nil
}
