// Package worker runs independent per-item work on a bounded set of
// goroutines and hands results back in input order.
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task pairs an input with its outcome.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc handles one input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool running fn on at most workers goroutines.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute runs every input through the pool. results[i] always belongs to
// inputs[i]. Inputs left unprocessed because ctx ended carry ctx.Err().
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	for i, in := range inputs {
		results[i].Input = in
	}
	if len(inputs) == 0 {
		return results
	}

	workers := min(p.workers, len(inputs))
	inputCh := make(chan int)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range inputCh {
				if err := ctx.Err(); err != nil {
					results[idx].Err = err
					continue
				}
				result, err := p.process(ctx, inputs[idx])
				results[idx].Result = result
				results[idx].Err = err
				if err != nil {
					log.Debug().Err(err).Int("worker", workerID).Int("index", idx).Msg("task failed")
				}
			}
		}(w)
	}

	sent := 0
dispatch:
	for ; sent < len(inputs); sent++ {
		select {
		case <-ctx.Done():
			break dispatch
		case inputCh <- sent:
		}
	}
	close(inputCh)
	wg.Wait()

	for i := sent; i < len(inputs); i++ {
		results[i].Err = ctx.Err()
	}
	return results
}

// Batch splits items into consecutive slices of at most batchSize.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 1
	}
	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}
