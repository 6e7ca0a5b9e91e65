// Package memo provides populate-once keyed memoization with single-flight
// computation. Entries never expire and are never overwritten; failed
// computations leave no trace, so the next caller retries.
package memo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/loci-travelbot-api/pkg/observability"
)

// ComputeFunc produces the value for a missing key.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// Cache memoizes values of type V by string key.
type Cache[V any] struct {
	name    string
	store   *cache.Cache
	group   singleflight.Group
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New returns an empty cache. name labels metrics and log lines.
func New[V any](name string, metrics *observability.Metrics, logger *slog.Logger) *Cache[V] {
	return &Cache[V]{
		name:    name,
		store:   cache.New(cache.NoExpiration, 0),
		metrics: metrics,
		logger:  logger.With(slog.String("cache", name)),
	}
}

// Name returns the label the cache was created with.
func (c *Cache[V]) Name() string { return c.name }

// Get returns the stored value for key, if any.
func (c *Cache[V]) Get(key string) (V, bool) {
	if raw, ok := c.store.Get(key); ok {
		if v, ok := raw.(V); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Len reports how many keys are populated.
func (c *Cache[V]) Len() int { return c.store.ItemCount() }

// GetOrCompute returns the value stored under key, computing it with fn when
// absent. Concurrent callers for the same key share one fn invocation and its
// result. fn runs with the context of the caller that started the flight; a
// caller whose own context ends stops waiting and gets ctx.Err(), while the
// others keep waiting. If the flight fails only because its starter went away,
// waiters that are still live start a new flight instead of inheriting that
// cancellation.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, fn ComputeFunc[V]) (V, error) {
	var zero V
	if v, ok := c.Get(key); ok {
		c.metrics.CacheHit(c.name)
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.metrics.CacheMiss(c.name)

	for {
		ch := c.group.DoChan(key, func() (interface{}, error) {
			// A flight for this key may have finished between our Get and DoChan.
			if v, ok := c.Get(key); ok {
				return v, nil
			}
			v, err := fn(ctx)
			c.metrics.CacheFill(c.name, err)
			if err != nil {
				c.logger.DebugContext(ctx, "compute failed, key left empty",
					slog.String("key", key), slog.Any("error", err))
				if ctx.Err() != nil {
					return nil, &abandonedError{err: err}
				}
				return nil, err
			}
			if err := c.store.Add(key, v, cache.NoExpiration); err != nil {
				// Unreachable while all writes go through the flight; keep the first value.
				if existing, ok := c.Get(key); ok {
					return existing, nil
				}
				return nil, fmt.Errorf("store %s/%s: %w", c.name, key, err)
			}
			c.logger.DebugContext(ctx, "cache populated", slog.String("key", key))
			return v, nil
		})

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				var abandoned *abandonedError
				if errors.As(res.Err, &abandoned) {
					if ctx.Err() == nil {
						// The starter's context ended, not ours.
						continue
					}
					return zero, abandoned.err
				}
				return zero, res.Err
			}
			v, ok := res.Val.(V)
			if !ok {
				return zero, fmt.Errorf("cache %s: unexpected value type %T", c.name, res.Val)
			}
			return v, nil
		}
	}
}

// abandonedError marks a computation that failed after the context of the
// caller running it ended.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }

func (e *abandonedError) Unwrap() error { return e.err }
