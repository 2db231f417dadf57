package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultBatchSize  = 50
	defaultWindow     = 5
	defaultChunkDelay = 200 * time.Millisecond
)

// BatchOptions tunes the batch runner. Zero values fall back to defaults.
type BatchOptions struct {
	BatchSize  int
	Window     int
	ChunkDelay time.Duration
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.Window <= 0 {
		o.Window = defaultWindow
	}
	if o.ChunkDelay <= 0 {
		o.ChunkDelay = defaultChunkDelay
	}
	return o
}

// BatchResult is the outcome of one item, at its original index.
type BatchResult[R any] struct {
	Index int
	Value R
	Err   error
}

// BatchError records one failed item.
type BatchError struct {
	Index   int
	Message string
}

// RunBatch executes op over items in sequential chunks of BatchSize. Within a
// chunk at most Window operations are in flight at once, to respect the remote
// store's rate limits; a short pacing delay separates chunks. A failing item
// is recorded and never aborts its siblings or later chunks. Results preserve
// the original item order.
func RunBatch[T, R any](ctx context.Context, items []T, opts BatchOptions, op func(context.Context, T) (R, error)) ([]BatchResult[R], []BatchError) {
	opts = opts.withDefaults()

	results := make([]BatchResult[R], len(items))
	var (
		mu   sync.Mutex
		errs []BatchError
	)

	for start := 0; start < len(items); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(items) {
			end = len(items)
		}

		sem := make(chan struct{}, opts.Window)
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()

				value, err := runItem(ctx, items[i], op)
				results[i] = BatchResult[R]{Index: i, Value: value, Err: err}
				if err != nil {
					mu.Lock()
					errs = append(errs, BatchError{Index: i, Message: err.Error()})
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		if end < len(items) {
			time.Sleep(opts.ChunkDelay)
		}
	}

	return results, errs
}

// runItem isolates one operation, converting a panic into an item error so a
// single bad record cannot take down the whole run.
func runItem[T, R any](ctx context.Context, item T, op func(context.Context, T) (R, error)) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx, item)
}
