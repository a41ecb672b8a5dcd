// Package loader provides a request-scoped batching cache for
// entity-by-id resolution. Many lookups issued while a batch window is
// open collapse into a single call of the batch function with the
// deduplicated key set; results are cached for the lifetime of the
// loader. A loader must be constructed fresh for each inbound request
// and discarded with it, so cached entities never leak between
// unrelated requests.
package loader

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"message-feed/errors"
)

// DefaultWait is the batch collection window. Go has no scheduling
// checkpoint to piggyback on, so the first Load of a batch opens a short
// window and every Load arriving before it elapses joins the same batch.
const DefaultWait = 2 * time.Millisecond

// BatchFn resolves a deduplicated set of keys in one shot. Keys without a
// match are simply absent from the returned map.
type BatchFn[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

type result[V any] struct {
	value V
	err   error
}

type batch[K comparable, V any] struct {
	keys    []K
	results map[K]result[V]
	err     error
	done    chan struct{}
}

// Loader batches and caches lookups for one request.
type Loader[K comparable, V any] struct {
	batchFn BatchFn[K, V]
	wait    time.Duration

	mu      sync.Mutex
	cache   map[K]result[V]
	current *batch[K, V]
}

// New builds a loader around a batch function. A non-positive wait makes
// every Load its own batch, which tests use for determinism.
func New[K comparable, V any](batchFn BatchFn[K, V], wait time.Duration) *Loader[K, V] {
	return &Loader[K, V]{
		batchFn: batchFn,
		wait:    wait,
		cache:   make(map[K]result[V]),
	}
}

// Load resolves one key, joining the currently collecting batch. It
// blocks until the batch executes or ctx is cancelled. A key with no
// match yields ErrNotFound without affecting the other keys.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	return l.loadThunk(key)(ctx)
}

// LoadAll resolves keys preserving input order and duplication. All keys
// are registered before any result is awaited, so they share one batch.
// A key with no match yields a nil entry; only batch execution failures
// and cancellation fail the call as a whole.
func (l *Loader[K, V]) LoadAll(ctx context.Context, keys []K) ([]*V, error) {
	thunks := make([]func(context.Context) (V, error), len(keys))
	for i, key := range keys {
		thunks[i] = l.loadThunk(key)
	}

	values := make([]*V, len(keys))
	for i, thunk := range thunks {
		value, err := thunk(ctx)
		switch {
		case err == nil:
			v := value
			values[i] = &v
		case stderrors.Is(err, errors.ErrNotFound):
			values[i] = nil
		default:
			return nil, err
		}
	}
	return values, nil
}

// loadThunk registers the key and returns a function that waits for its
// result. Separating registration from waiting is what lets several keys
// coalesce before the batch runs.
func (l *Loader[K, V]) loadThunk(key K) func(context.Context) (V, error) {
	l.mu.Lock()

	if cached, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return func(context.Context) (V, error) { return cached.value, cached.err }
	}

	b := l.current
	created := b == nil
	if created {
		b = &batch[K, V]{done: make(chan struct{})}
		l.current = b
	}

	registered := false
	for _, k := range b.keys {
		if k == key {
			registered = true
			break
		}
	}
	if !registered {
		b.keys = append(b.keys, key)
	}
	l.mu.Unlock()

	if created {
		if l.wait > 0 {
			time.AfterFunc(l.wait, func() { l.flush(b) })
		} else {
			l.flush(b)
		}
	}

	return func(ctx context.Context) (V, error) {
		var zero V
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-b.done:
		}
		if b.err != nil {
			return zero, b.err
		}
		res, ok := b.results[key]
		if !ok {
			return zero, errors.ErrNotFound
		}
		return res.value, res.err
	}
}

func (l *Loader[K, V]) flush(b *batch[K, V]) {
	l.mu.Lock()
	if l.current == b {
		l.current = nil
	}
	keys := make([]K, len(b.keys))
	copy(keys, b.keys)
	l.mu.Unlock()

	values, err := l.batchFn(context.Background(), keys)

	l.mu.Lock()
	if err != nil {
		b.err = err
	} else {
		b.results = make(map[K]result[V], len(values))
		for _, key := range keys {
			if value, ok := values[key]; ok {
				res := result[V]{value: value}
				b.results[key] = res
				l.cache[key] = res
			} else {
				res := result[V]{err: errors.ErrNotFound}
				b.results[key] = res
				l.cache[key] = res
			}
		}
	}
	l.mu.Unlock()
	close(b.done)
}
