// Package fanout runs a function over a slice with a fixed pool of workers.
// Results keep the position of their input item.
package fanout

import (
	"context"
	"sync"
)

// Result is the outcome for one item. Err is set when fn failed or the item
// was never started because the context ended first.
type Result[R any] struct {
	Value R
	Err   error
}

// Run calls fn for every item using at most workers goroutines and waits for
// all of them. Items still queued when ctx is done get ctx.Err() without fn
// being called; items already running are left to observe ctx themselves.
// A workers value below one is treated as one.
func Run[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}
	workers = max(1, min(workers, len(items)))

	next := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for i := range next {
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				v, err := fn(ctx, items[i])
				results[i] = Result[R]{Value: v, Err: err}
			}
		})
	}

	for i := range items {
		next <- i
	}
	close(next)
	wg.Wait()
	return results
}
