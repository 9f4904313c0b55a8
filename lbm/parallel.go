package lbm

import "golang.org/x/sync/errgroup"

// ForEach calls fn for every i in [0, n).
// With workers > 1 the calls are spread over at most workers goroutines;
// fn must then only write state owned by index i.
// It returns the first error returned by fn.
func ForEach(n, workers int, fn func(i int) error) error {
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error { return fn(i) })
	}

	return g.Wait()
}

// ForRange splits [0, n) into at most workers contiguous chunks and calls fn for each.
func ForRange(n, workers int, fn func(lo, hi int) error) error {
	if workers <= 1 || n < workers {
		return fn(0, n)
	}

	chunk := (n + workers - 1) / workers

	return ForEach(workers, workers, func(w int) error {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			return nil
		}
		return fn(lo, hi)
	})
}
