// Package batch runs independent jobs over a slice of items with bounded
// concurrency. Loading or validating several description documents is the
// typical use: each item builds its own graphs, so items share nothing but
// the registry.
package batch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Option configures a batch run.
type Option func(*options)

type options struct {
	maxConcurrency int
	failFast       bool
}

// WithConcurrency sets the maximum concurrent workers. Values below two
// process items sequentially.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.maxConcurrency = n
	}
}

// WithFailFast stops scheduling new items after the first error and returns
// it. Without it every item runs and per-item errors are reported in Result.
func WithFailFast() Option {
	return func(o *options) {
		o.failFast = true
	}
}

// Result is the outcome of one item, at the item's input index.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Map applies fn to every item and returns one Result per item, in input
// order. The returned error is non-nil only for fail-fast runs or when ctx is
// cancelled.
func Map[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), opts ...Option) ([]Result[R], error) {
	o := &options{maxConcurrency: 4}
	for _, opt := range opts {
		opt(o)
	}

	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results, nil
	}
	if o.maxConcurrency <= 1 {
		return results, mapSequential(ctx, items, fn, o, results)
	}
	return results, mapConcurrent(ctx, items, fn, o, results)
}

func mapSequential[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), o *options, results []Result[R]) error {
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, err := fn(ctx, item)
		results[i] = Result[R]{Index: i, Value: v, Err: err}
		if err != nil && o.failFast {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func mapConcurrent[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), o *options, results []Result[R]) error {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	work := make(chan int, len(items))
	for i := range items {
		work <- i
	}
	close(work)

	for w := 0; w < o.maxConcurrency && w < len(items); w++ {
		g.Go(func() error {
			for idx := range work {
				if err := ctx.Err(); err != nil {
					return err
				}

				v, err := fn(ctx, items[idx])
				mu.Lock()
				results[idx] = Result[R]{Index: idx, Value: v, Err: err}
				mu.Unlock()

				if err != nil && o.failFast {
					return fmt.Errorf("item %d: %w", idx, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Errors returns the per-item errors of results, in input order.
func Errors[R any](results []Result[R]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
