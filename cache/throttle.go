package cache

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/lexibase/lexibase/entry"
)

// ThrottleConfig holds loader throttling limits.
type ThrottleConfig struct {
	// MaxConcurrent is the maximum number of in-flight loads.
	// If 0, defaults to 1.
	MaxConcurrent int64

	// LoadsPerSec is the maximum sustained load rate.
	// If 0, unlimited.
	LoadsPerSec float64
}

// ThrottledLoader wraps a Loader and bounds how hard it hits the backing
// store: a semaphore caps in-flight loads and an optional rate limiter caps
// sustained throughput. The cache already deduplicates same-identity loads;
// this bounds the distinct ones.
type ThrottledLoader[T any] struct {
	inner   Loader[T]
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// NewThrottledLoader creates a ThrottledLoader around inner.
func NewThrottledLoader[T any](inner Loader[T], cfg ThrottleConfig) *ThrottledLoader[T] {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	l := &ThrottledLoader[T]{
		inner: inner,
		sem:   semaphore.NewWeighted(cfg.MaxConcurrent),
	}
	if cfg.LoadsPerSec > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(cfg.LoadsPerSec), 1)
	}
	return l
}

// Load implements Loader. It blocks until a slot (and rate budget) is
// available or ctx is canceled.
func (l *ThrottledLoader[T]) Load(ctx context.Context, ref entry.Ref) (T, error) {
	var zero T

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	defer l.sem.Release(1)

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return zero, err
		}
	}

	return l.inner.Load(ctx, ref)
}
