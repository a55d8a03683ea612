package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOdd = errors.New("odd")

func double(_ context.Context, n int) (int, error) {
	if n%2 != 0 {
		return 0, fmt.Errorf("%d: %w", n, errOdd)
	}
	return n * 2, nil
}

func values(results []Result[int]) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}

func TestMap(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
	}{
		{"sequential", 1},
		{"concurrent", 3},
		{"more workers than items", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []int{2, 4, 6, 8, 10}
			results, err := Map(context.Background(), items, double, WithConcurrency(tt.concurrency))
			require.NoError(t, err)

			if diff := cmp.Diff([]int{4, 8, 12, 16, 20}, values(results)); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
			for i, r := range results {
				assert.Equal(t, i, r.Index)
				assert.NoError(t, r.Err)
			}
		})
	}
}

func TestMapCollectsErrors(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		results, err := Map(context.Background(), []int{1, 2, 3, 4}, double, WithConcurrency(concurrency))
		require.NoError(t, err)

		errs := Errors(results)
		require.Len(t, errs, 2)
		assert.ErrorIs(t, errs[0], errOdd)
		assert.Contains(t, errs[0].Error(), "1:")
		assert.Contains(t, errs[1].Error(), "3:")
		assert.Equal(t, 4, results[1].Value)
	}
}

func TestMapFailFast(t *testing.T) {
	var calls atomic.Int32
	fn := func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		return double(ctx, n)
	}

	_, err := Map(context.Background(), []int{2, 3, 4, 6}, fn, WithConcurrency(1), WithFailFast())
	require.ErrorIs(t, err, errOdd)
	assert.Contains(t, err.Error(), "item 1")
	assert.Equal(t, int32(2), calls.Load())

	_, err = Map(context.Background(), []int{2, 3, 4, 6}, fn, WithConcurrency(2), WithFailFast())
	assert.ErrorIs(t, err, errOdd)
}

func TestMapEmpty(t *testing.T) {
	results, err := Map(context.Background(), nil, double)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Map(ctx, []int{2, 4}, double, WithConcurrency(1))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Map(ctx, []int{2, 4}, double, WithConcurrency(2))
	assert.ErrorIs(t, err, context.Canceled)
}
