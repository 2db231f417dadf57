package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBatch() BatchOptions {
	return BatchOptions{BatchSize: 3, Window: 2, ChunkDelay: time.Millisecond}
}

func TestRunBatch_PartialFailure(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	var executed atomic.Int32

	results, errs := RunBatch(context.Background(), items, fastBatch(), func(ctx context.Context, item int) (int, error) {
		executed.Add(1)
		if item == 4 {
			return 0, errors.New("boom")
		}
		return item * 2, nil
	})

	// One bad record never blocks the rest of the run.
	assert.Equal(t, int32(10), executed.Load())
	require.Len(t, errs, 1)
	assert.Equal(t, 4, errs[0].Index)
	assert.Contains(t, errs[0].Message, "boom")

	succeeded := 0
	for _, res := range results {
		if res.Err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 9, succeeded)
	require.Error(t, results[4].Err)
	assert.Equal(t, 18, results[9].Value)
}

func TestRunBatch_PreservesOriginalIndex(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	results, errs := RunBatch(context.Background(), items, fastBatch(), func(ctx context.Context, item string) (string, error) {
		return item + "!", nil
	})

	assert.Empty(t, errs)
	require.Len(t, results, 5)
	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, items[i]+"!", res.Value)
	}
}

func TestRunBatch_BoundsConcurrency(t *testing.T) {
	items := make([]int, 20)
	var inFlight, peak atomic.Int32

	opts := BatchOptions{BatchSize: 20, Window: 3, ChunkDelay: time.Millisecond}
	_, errs := RunBatch(context.Background(), items, opts, func(ctx context.Context, item int) (struct{}, error) {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	assert.Empty(t, errs)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Greater(t, peak.Load(), int32(1))
}

func TestRunBatch_PanicBecomesItemError(t *testing.T) {
	items := []int{1, 2, 3}

	results, errs := RunBatch(context.Background(), items, fastBatch(), func(ctx context.Context, item int) (int, error) {
		if item == 2 {
			panic("bad record")
		}
		return item, nil
	})

	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Index)
	assert.Contains(t, errs[0].Message, "bad record")
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[2].Err)
}

func TestRunBatch_Empty(t *testing.T) {
	results, errs := RunBatch(context.Background(), nil, fastBatch(), func(ctx context.Context, item int) (int, error) {
		t.Fatal("op must not run")
		return 0, nil
	})

	assert.Empty(t, results)
	assert.Empty(t, errs)
}
