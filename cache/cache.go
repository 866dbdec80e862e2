// Package cache provides the identity cache for dictionary entries.
//
// The cache guarantees that at most one live record exists per entry
// identity, hands out reference-counted handles to it, and keeps a bounded
// FIFO of unreferenced records alive for fast re-acquisition. All record
// loading goes through the cache; respecting that rule is what makes the
// single-instance guarantee hold.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/lexibase/lexibase/entry"
)

// DefaultCapacity is the retention-queue bound used when none is configured.
const DefaultCapacity = 100

// record is the cache-internal envelope around a loaded value. The reference
// count and queue position are guarded by the cache locks, never touched
// directly by handles.
type record[T any] struct {
	ref   entry.Ref
	value T

	// refs is the live-reference count. Guarded by Cache.mu.
	refs int

	// elem is the record's position in the retention queue, nil while the
	// record is referenced. Guarded by Cache.qmu.
	elem *list.Element
}

// Options configures a Cache.
type Options[T any] struct {
	// Capacity bounds the retention queue. Defaults to DefaultCapacity.
	Capacity int

	// OnEvict runs when a record is destroyed by eviction. It is called with
	// the cache locked and must not call back into the cache.
	OnEvict func(ref entry.Ref, value T)
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64 // acquisitions served from a live or retained record
	Misses    int64 // acquisitions that had to go through the loader
	Loads     int64 // actual loader invocations (deduplicated misses)
	Evictions int64 // records destroyed by retention-queue eviction
}

// Cache is a thread-safe identity cache: one live record per entry.Ref,
// reference counted through handles, with a bounded retention queue of
// zero-reference records.
type Cache[T any] struct {
	loader  Loader[T]
	group   singleflight.Group
	onEvict func(entry.Ref, T)

	// mu guards entries and every record's reference count. Reuse of a
	// zero-reference record and its eviction are totally ordered by this
	// lock: whichever takes mu first wins.
	mu      sync.Mutex
	entries map[entry.Ref]*record[T]

	// qmu guards the retention queue and capacity. Whenever a record moves
	// between map and queue, both mu and qmu are held so no acquirer can
	// observe a half-migrated record. Lock order is mu before qmu.
	qmu      sync.Mutex
	retained *list.List
	capacity int

	hits      atomic.Int64
	misses    atomic.Int64
	loads     atomic.Int64
	evictions atomic.Int64
}

// New creates a Cache backed by the given loader.
func New[T any](loader Loader[T], optFns ...func(o *Options[T])) *Cache[T] {
	opts := Options[T]{
		Capacity: DefaultCapacity,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Capacity < 0 {
		opts.Capacity = 0
	}

	return &Cache[T]{
		loader:   loader,
		onEvict:  opts.OnEvict,
		entries:  make(map[entry.Ref]*record[T]),
		retained: list.New(),
		capacity: opts.Capacity,
	}
}

// Acquire returns a handle to the single live record for ref, loading it if
// necessary. Concurrent acquires for the same unseen identity trigger
// exactly one loader call; the losers share the winner's record. A loader
// failure is returned as *LoadError and leaves no cache entry behind.
//
// The returned handle must be released exactly once.
func (c *Cache[T]) Acquire(ctx context.Context, ref entry.Ref) (*Handle[T], error) {
	if h, ok := c.reuse(ref); ok {
		c.hits.Add(1)
		return h, nil
	}
	c.misses.Add(1)

	// Load outside the locks; the loader may block on I/O. singleflight
	// collapses concurrent loads of the same identity.
	v, err, _ := c.group.Do(ref.String(), func() (any, error) {
		c.loads.Add(1)
		return c.loader.Load(ctx, ref)
	})
	if err != nil {
		return nil, &LoadError{Ref: ref, cause: err}
	}

	c.mu.Lock()
	if rec, ok := c.entries[ref]; ok {
		// A concurrent acquire installed the record first; share it.
		h := c.retainLocked(rec)
		c.mu.Unlock()
		return h, nil
	}
	rec := &record[T]{ref: ref, value: v.(T), refs: 1}
	c.entries[ref] = rec
	c.mu.Unlock()

	return &Handle[T]{c: c, rec: rec}, nil
}

// reuse increments the count of an already-present record, pulling it out of
// the retention queue when it comes back from zero.
func (c *Cache[T]) reuse(ref entry.Ref) (*Handle[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.entries[ref]
	if !ok {
		return nil, false
	}
	return c.retainLocked(rec), true
}

// retainLocked increments the reference count. Caller holds c.mu.
func (c *Cache[T]) retainLocked(rec *record[T]) *Handle[T] {
	if rec.refs == 0 {
		c.qmu.Lock()
		if rec.elem != nil {
			c.retained.Remove(rec.elem)
			rec.elem = nil
		}
		c.qmu.Unlock()
	}
	rec.refs++
	return &Handle[T]{c: c, rec: rec}
}

// release decrements the reference count. The last release does not destroy
// the record: it moves it to the retention queue and trims the queue to
// capacity, holding both locks across the migration.
func (c *Cache[T]) release(rec *record[T]) {
	c.mu.Lock()
	rec.refs--
	if rec.refs > 0 {
		c.mu.Unlock()
		return
	}

	c.qmu.Lock()
	rec.elem = c.retained.PushFront(rec)
	c.evictLocked()
	c.qmu.Unlock()
	c.mu.Unlock()
}

// evictLocked destroys the oldest retained records until the queue fits the
// capacity. Caller holds both c.mu and c.qmu.
func (c *Cache[T]) evictLocked() {
	for c.retained.Len() > c.capacity {
		back := c.retained.Back()
		rec := c.retained.Remove(back).(*record[T])
		rec.elem = nil
		delete(c.entries, rec.ref)
		c.evictions.Add(1)
		if c.onEvict != nil {
			c.onEvict(rec.ref, rec.value)
		}
	}
}

// SetCapacity changes the retention bound at runtime. Lowering it evicts
// immediately down to the new bound; raising it only relaxes future
// eviction.
func (c *Cache[T]) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	c.mu.Lock()
	c.qmu.Lock()
	c.capacity = n
	c.evictLocked()
	c.qmu.Unlock()
	c.mu.Unlock()
}

// Capacity returns the current retention bound.
func (c *Cache[T]) Capacity() int {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	return c.capacity
}

// Contains reports whether a record for ref is currently present,
// referenced or retained. The answer is advisory: without a handle it can be
// stale by the time the caller acts on it.
func (c *Cache[T]) Contains(ref entry.Ref) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[ref]
	return ok
}

// Len returns the number of records in the cache, referenced or retained.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Retained returns the number of zero-reference records currently kept for
// reuse.
func (c *Cache[T]) Retained() int {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	return c.retained.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[T]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Loads:     c.loads.Load(),
		Evictions: c.evictions.Load(),
	}
}
