// Package concurrent provides bounded fan-out over independent work items.
package concurrent

import (
	"context"
	"sync"
)

// DefaultMaxConcurrency bounds fan-out when callers pass no limit.
const DefaultMaxConcurrency = 10

// ParallelMap executes fn on each item with at most maxConcurrency in
// flight and returns the results in input order. The first error observed
// is returned alongside the partial results.
func ParallelMap[T, R any](ctx context.Context, items []T, fn func(T) (R, error), maxConcurrency int) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrency)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, val T) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			case sem <- struct{}{}:
				defer func() { <-sem }()
				results[idx], errs[idx] = fn(val)
			}
		}(i, item)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}

	return results, nil
}
