// Package noderef implements the shared-ownership, reference-counted node
// handle the core radix tree treats as an external collaborator (see
// spec.md §1, §6: "the core assumes a shared-ownership smart container with
// atomic reference counting, and strong-count introspection").
//
// The strong-count primitive is grounded in the teacher's pool.go, which
// tracks live/allocated node counts with atomic.Int64 counters, and in
// other_examples/wayneeseguin-graft/copy_on_write_tree.go, whose COWNode
// carries an atomic int32 "isShared" flag set on every child handed out
// during a clone. Ref generalizes both into a real strong count rather than
// a boolean, because the core needs to distinguish "shared by exactly one
// other tree" from "shared by many" only insofar as count == 1 means
// exclusive — the exact comparison the spec requires in §4.2 and §4.6.
package noderef

import "sync/atomic"

// Ref is an atomically reference-counted handle to a value of type T.
// Multiple Refs may alias the same underlying value; Clone increments the
// shared strong count, Drop decrements it. The zero Ref is not usable;
// construct one with New.
type Ref[T any] struct {
	ptr   *T
	count *atomic.Int64
}

// New wraps v in a fresh Ref with strong count 1.
func New[T any](v *T) Ref[T] {
	c := new(atomic.Int64)
	c.Store(1)
	return Ref[T]{ptr: v, count: c}
}

// Valid reports whether the Ref wraps a value (as opposed to being the zero
// Ref).
func (r Ref[T]) Valid() bool {
	return r.ptr != nil
}

// Clone returns a new handle to the same underlying value, atomically
// incrementing the strong count.
func (r Ref[T]) Clone() Ref[T] {
	r.count.Add(1)
	return Ref[T]{ptr: r.ptr, count: r.count}
}

// StrongCount atomically reads the current strong count. Per spec.md §6,
// this is sound as a sufficient condition for exclusivity only because all
// Ref operations synchronize through this same atomic counter. The zero Ref
// reports 0 rather than panicking, so callers that hold an entry of unknown
// kind can check StrongCount before checking Valid.
func (r Ref[T]) StrongCount() int64 {
	if r.count == nil {
		return 0
	}
	return r.count.Load()
}

// Get returns the pointer to the shared value. The caller is responsible
// for only mutating through it when StrongCount() == 1 (see spec.md §4.2's
// access_mut/as_node_mut_or_cow contract); Ref itself does not enforce
// exclusivity, it only makes the count observable.
func (r Ref[T]) Get() *T {
	return r.ptr
}

// Drop atomically decrements the strong count. When the count reaches
// zero, onZero is invoked (if non-nil) with the now-unshared value so the
// caller can recursively tear it down (dropping its own slot entries) and
// reclaim the backing memory, e.g. by returning it to a pool.
func (r Ref[T]) Drop(onZero func(*T)) {
	if r.count == nil {
		return
	}
	if r.count.Add(-1) == 0 && onZero != nil {
		onZero(r.ptr)
	}
}
