package loader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"message-feed/errors"
)

// countingBatchFn records every key set the loader hands to the batch
// function, answering keys from the backing map.
type countingBatchFn struct {
	mu      sync.Mutex
	calls   [][]int
	backing map[int]string
}

func (c *countingBatchFn) fn(_ context.Context, keys []int) (map[int]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recorded := make([]int, len(keys))
	copy(recorded, keys)
	c.calls = append(c.calls, recorded)

	values := make(map[int]string, len(keys))
	for _, key := range keys {
		if value, ok := c.backing[key]; ok {
			values[key] = value
		}
	}
	return values, nil
}

func (c *countingBatchFn) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func Test_LoadAll_Batches_And_Deduplicates(t *testing.T) {
	req := require.New(t)
	batches := &countingBatchFn{backing: map[int]string{3: "three", 7: "seven"}}
	l := New(batches.fn, 10*time.Millisecond)

	// Given duplicate keys in one request
	values, err := l.LoadAll(context.Background(), []int{7, 3, 7})
	req.NoError(err)

	// Then input order and duplication are preserved in the result
	req.Len(values, 3)
	req.Equal("seven", *values[0])
	req.Equal("three", *values[1])
	req.Equal("seven", *values[2])

	// And the batch function ran once with the deduplicated key set
	req.Equal(1, batches.callCount())
	req.ElementsMatch([]int{7, 3}, batches.calls[0])
}

func Test_Load_Caches_Within_Loader_Lifetime(t *testing.T) {
	req := require.New(t)
	batches := &countingBatchFn{backing: map[int]string{1: "one"}}
	l := New(batches.fn, 0)

	ctx := context.Background()
	first, err := l.Load(ctx, 1)
	req.NoError(err)
	req.Equal("one", first)

	// A repeated lookup is served from cache without a second batch
	second, err := l.Load(ctx, 1)
	req.NoError(err)
	req.Equal("one", second)
	req.Equal(1, batches.callCount())
}

func Test_Load_Missing_Key(t *testing.T) {
	req := require.New(t)
	batches := &countingBatchFn{backing: map[int]string{1: "one"}}
	l := New(batches.fn, 0)

	_, err := l.Load(context.Background(), 42)
	req.ErrorIs(err, errors.ErrNotFound)

	// The miss is cached too
	_, err = l.Load(context.Background(), 42)
	req.ErrorIs(err, errors.ErrNotFound)
	req.Equal(1, batches.callCount())
}

func Test_LoadAll_Missing_Key_Is_Absent_Not_Error(t *testing.T) {
	req := require.New(t)
	batches := &countingBatchFn{backing: map[int]string{3: "three"}}
	l := New(batches.fn, 10*time.Millisecond)

	values, err := l.LoadAll(context.Background(), []int{3, 42})
	req.NoError(err)
	req.Len(values, 2)
	req.Equal("three", *values[0])
	req.Nil(values[1])
}

func Test_Concurrent_Loads_Share_One_Batch(t *testing.T) {
	req := require.New(t)
	batches := &countingBatchFn{backing: map[int]string{1: "one", 2: "two", 3: "three"}}
	l := New(batches.fn, 20*time.Millisecond)

	var wg sync.WaitGroup
	for _, key := range []int{1, 2, 3} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := l.Load(context.Background(), key)
			req.NoError(err)
			req.Equal(batches.backing[key], value)
		}()
	}
	wg.Wait()

	req.Equal(1, batches.callCount())
	req.ElementsMatch([]int{1, 2, 3}, batches.calls[0])
}

func Test_Load_Cancelled_Context(t *testing.T) {
	req := require.New(t)
	batches := &countingBatchFn{backing: map[int]string{}}
	l := New(batches.fn, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, 1)
	req.ErrorIs(err, context.Canceled)
}
