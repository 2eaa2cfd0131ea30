// Package bounded runs a batch of tasks with a cap on how many are in flight
// at once, returning their results in submission order.
package bounded

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Task is a unit of work submitted to Run.
type Task[T any] func(ctx context.Context) (T, error)

// Run executes tasks with at most limit of them running concurrently. A limit
// of zero or less means no cap. Slots are refilled greedily: the next queued
// task starts as soon as any running task returns.
//
// The returned slice is in the same order as tasks. The first task error is
// returned as soon as it is observed; queued tasks are then never started,
// while tasks already running are left to finish in the background with ctx.
func Run[T any](ctx context.Context, tasks []Task[T], limit int) ([]T, error) {
	results := make([]T, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}
	if limit <= 0 || limit > len(tasks) {
		limit = len(tasks)
	}

	// launchCtx only gates the start of new tasks. Running tasks get ctx so
	// that an abort here does not cancel siblings mid-flight.
	launchCtx, stopLaunching := context.WithCancel(ctx)
	defer stopLaunching()

	sem := semaphore.NewWeighted(int64(limit))
	errs := make(chan error, len(tasks)+1)
	done := make(chan struct{})

	go func() {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(done)
		}()

		for i, task := range tasks {
			if err := sem.Acquire(launchCtx, 1); err != nil {
				errs <- err
				return
			}
			// Acquire may succeed on a context that is already done.
			if err := launchCtx.Err(); err != nil {
				sem.Release(1)
				errs <- err
				return
			}

			wg.Add(1)
			go func(i int, task Task[T]) {
				defer wg.Done()
				defer sem.Release(1)

				v, err := task(ctx)
				if err != nil {
					errs <- err
					stopLaunching()
					return
				}
				results[i] = v
			}(i, task)
		}
	}()

	select {
	case err := <-errs:
		return nil, err
	case <-done:
	}

	// A task may have failed in the same instant the last one finished.
	select {
	case err := <-errs:
		return nil, err
	default:
	}
	return results, nil
}
