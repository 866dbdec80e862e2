package cache

import (
	"context"
	"fmt"

	"github.com/lexibase/lexibase/entry"
)

// Loader materializes a record from the backing store. Load must be safe for
// concurrent calls with different identities; the cache deduplicates
// concurrent loads of the same identity, the loader does not have to.
type Loader[T any] interface {
	Load(ctx context.Context, ref entry.Ref) (T, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc[T any] func(ctx context.Context, ref entry.Ref) (T, error)

// Load implements Loader.
func (f LoaderFunc[T]) Load(ctx context.Context, ref entry.Ref) (T, error) {
	return f(ctx, ref)
}

// LoadError indicates a record could not be materialized (not found or
// corrupt). The cache surfaces it as "unavailable" and does not retry.
type LoadError struct {
	Ref   entry.Ref
	cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load entry %s: %v", e.Ref, e.cause)
}

func (e *LoadError) Unwrap() error { return e.cause }
