package cache

import "github.com/lexibase/lexibase/entry"

// Handle is a shared, reference-counted accessor to a cached record. Handles
// do not own the record; its lifetime is shared among all outstanding
// handles for the identity, mediated by the count kept on the record.
//
// A handle obtained from Acquire or Clone must be released exactly once.
// Releasing is explicit: there is no finalizer magic, so the "last reference
// dropped" event reaches the cache on a predictable goroutine.
type Handle[T any] struct {
	c   *Cache[T]
	rec *record[T]
}

// Valid reports whether the handle references a record.
func (h *Handle[T]) Valid() bool {
	return h != nil && h.rec != nil
}

// Ref returns the identity of the referenced record, or the zero Ref for an
// empty handle.
func (h *Handle[T]) Ref() entry.Ref {
	if !h.Valid() {
		return entry.Ref{}
	}
	return h.rec.ref
}

// Value returns the referenced record value. The zero value is returned for
// an empty handle.
func (h *Handle[T]) Value() T {
	if !h.Valid() {
		var zero T
		return zero
	}
	return h.rec.value
}

// Clone returns a new handle aliasing the same record, incrementing its
// reference count. Cloning an empty handle yields an empty handle.
func (h *Handle[T]) Clone() *Handle[T] {
	if !h.Valid() {
		return &Handle[T]{}
	}
	h.c.mu.Lock()
	h.rec.refs++
	h.c.mu.Unlock()
	return &Handle[T]{c: h.c, rec: h.rec}
}

// Release drops this handle's reference. When the last reference is dropped
// the record is not destroyed; it moves to the retention queue for reuse.
// Release on an empty handle is a no-op, and a released handle becomes
// empty, so double release is harmless.
func (h *Handle[T]) Release() {
	if !h.Valid() {
		return
	}
	rec := h.rec
	h.rec = nil
	h.c.release(rec)
}
