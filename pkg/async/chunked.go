package async

import (
	"context"
	"fmt"
	"sync"
)

// Chunked runs independent tasks with at most limit in flight at any instant.
//
// Every task is started exactly once and one task's failure never cancels
// siblings, whether in flight or not yet started. The returned slice has one
// entry per task, in task order: nil for success, the task's error otherwise.
// A panicking task is recovered and recorded as ErrTaskPanicked so a single
// bad item cannot take down the whole batch.
func Chunked(ctx context.Context, limit int, tasks []func(context.Context) error) ([]error, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	errs := make([]error, len(tasks))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, task := range tasks {
		if task == nil {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, task func(context.Context) error) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
				}
			}()
			errs[i] = task(ctx)
		}(i, task)
	}

	wg.Wait()
	return errs, nil
}

// MapResult pairs one input's output with the error it produced, in input
// order.
type MapResult[R any] struct {
	Value R
	Err   error
}

// Map applies fn to every item with at most limit invocations in flight,
// collecting one MapResult per item in input order. Like Chunked, failures
// are collected rather than propagated: a failing item never prevents the
// rest of the batch from completing.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) ([]MapResult[R], error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	results := make([]MapResult[R], len(items))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					results[i].Err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
				}
			}()
			results[i].Value, results[i].Err = fn(ctx, item)
		}(i, item)
	}

	wg.Wait()
	return results, nil
}
