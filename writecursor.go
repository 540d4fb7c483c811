package xarray

import "github.com/asterinas/xarray/internal/noderef"

// WriteCursor is a mutable, repositionable handle into a Tree, spec.md
// §4.5/§4.6. Establishing a position always COWs every shared node on the
// path (its strong count brought down to 1), so by the time the cursor is
// Active every ancestor, and the leaf, are exclusively owned by this tree —
// spec.md I7. Mark-bit propagation to ancestors is deferred until the
// cursor leaves its current position (Next crossing a leaf boundary,
// ResetTo, or Close), per spec.md §4.8's chosen resolution of Open
// Question 3: eagerly updating on every SetMark/UnsetMark/Store/Remove
// would redo the same ancestor walk on every single-slot change inside a
// hot loop.
type WriteCursor[I any] struct {
	tree *Tree[I]
	key  uint64

	active    bool
	ancestors [maxHeight]dormant[I]
	depth     int
	leaf      *node[I]
	offset    uint

	leafDirty bool
	closed    bool
}

// Index returns the cursor's current key.
func (c *WriteCursor[I]) Index() uint64 { return c.key }

// ResetTo flushes any deferred mark propagation for the current position,
// then repositions the cursor at key via a full exclusive traversal from
// the root.
func (c *WriteCursor[I]) ResetTo(key uint64) {
	c.key = key
	c.traverse()
}

// Close flushes any deferred mark propagation. A WriteCursor must be Closed
// once the caller is done with it; it stands in for the Rust original's
// Drop impl (spec.md §4.8).
func (c *WriteCursor[I]) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.teardown()
}

// teardown is spec.md §4.8's ancestor-walk: deepest to shallowest, it
// recomputes each ancestor's mark bit at the offset the cursor descended
// through, stopping at the first ancestor whose bit didn't change. A no-op
// unless the current leaf was actually mutated since the last teardown.
func (c *WriteCursor[I]) teardown() {
	if !c.leafDirty {
		return
	}
	c.leafDirty = false

	for d := c.depth - 1; d >= 0; d-- {
		_, changed := c.ancestors[d].awakenModified()
		if !changed {
			break
		}
	}
}

// ensureRootExclusive COWs the tree's root in place if it is shared. Used
// before any descent, since the root has no parent slot of its own for
// asNodeMutOrCOW to COW through.
func ensureRootExclusive[I any](t *Tree[I]) {
	if t.root.ref.StrongCount() <= 1 {
		return
	}
	clone := t.root.ref.Get().cloneNode(t.cloneItem)
	old := t.root
	t.root = nodeEntry(noderef.New(clone))
	old.drop(t.destroy)
}

// traverse performs spec.md §4.5's write traversal without creation: it
// descends toward c.key, COWing every shared node it passes through, and
// leaves the cursor Inactive if an Empty slot is found before reaching a
// leaf (nothing to mutate along an absent path).
func (c *WriteCursor[I]) traverse() {
	c.teardown()
	c.depth = 0
	c.active = false
	c.leaf = nil

	t := c.tree
	if t.root.isEmpty() {
		return
	}
	ensureRootExclusive(t)
	n, _ := t.root.asNodeShared()
	if maxKeyForHeight(n.height) < c.key {
		return
	}
	c.descendExclusive(n)
}

// descendExclusive walks from n (already exclusive) to the leaf for c.key,
// COW-cloning any shared child it passes through, without creating
// anything at Empty slots.
func (c *WriteCursor[I]) descendExclusive(n *node[I]) {
	t := c.tree
	for {
		off := n.entryOffset(c.key)
		if n.height == 1 {
			c.leaf = n
			c.offset = off
			c.active = true
			return
		}
		if n.slots[off].kind != entryNode {
			return
		}
		child, _ := n.asNodeMutOrCOW(off, t.cloneItem, t.destroy)
		_, d := park(n, off)
		c.ancestors[c.depth] = d
		c.depth++
		n = child
	}
}

// expandAndTraverse performs spec.md §4.5's write traversal with creation:
// it grows the tree's root if c.key doesn't yet fit (Reserve), then
// descends, allocating a fresh node at any Empty interior slot it passes
// through, and COWing any shared node. Always leaves the cursor Active.
func (c *WriteCursor[I]) expandAndTraverse() *node[I] {
	c.teardown()
	t := c.tree
	t.Reserve(c.key)

	c.depth = 0
	c.active = false
	c.leaf = nil

	ensureRootExclusive(t)
	n, _ := t.root.asNodeShared()

	for {
		off := n.entryOffset(c.key)
		if n.height == 1 {
			c.leaf = n
			c.offset = off
			c.active = true
			return n
		}
		if n.slots[off].kind == entryEmpty {
			child := t.pool.get(n.height-1, uint8(off))
			n.setEntry(off, nodeEntry(noderef.New(child)))
		}
		child, _ := n.asNodeMutOrCOW(off, t.cloneItem, t.destroy)
		_, d := park(n, off)
		c.ancestors[c.depth] = d
		c.depth++
		n = child
	}
}

// Load returns the item at the cursor's current key, if any.
func (c *WriteCursor[I]) Load() (I, bool) {
	var zero I
	if !c.active {
		return zero, false
	}
	v, ok := c.leaf.slots[c.offset].asItemRef()
	if !ok {
		return zero, false
	}
	return *v, true
}

// IsMarked reports whether the item at the cursor's current key carries
// mark m.
func (c *WriteCursor[I]) IsMarked(m Mark) bool {
	if !c.active {
		return false
	}
	return c.leaf.isMarked(c.offset, m)
}

// Store inserts or replaces the item at the cursor's key, growing the tree
// and creating intermediate nodes as needed, and returns the item it
// displaced, if any.
func (c *WriteCursor[I]) Store(item I) (I, bool) {
	leaf := c.expandAndTraverse()
	old := leaf.setEntry(c.offset, itemEntry(item))
	c.leafDirty = true
	return old.intoItem()
}

// Remove deletes the item at the cursor's key, returning it if present.
// Does nothing if the cursor is Inactive or its slot already Empty.
func (c *WriteCursor[I]) Remove() (I, bool) {
	var zero I
	if !c.active {
		return zero, false
	}
	old := c.leaf.setEntry(c.offset, emptyEntry[I]())
	c.leafDirty = true
	return old.intoItem()
}

// SetMark sets mark m on the item at the cursor's key. Returns
// ErrMissingItem if the cursor is Inactive or the slot holds no item.
func (c *WriteCursor[I]) SetMark(m Mark) error {
	if !c.active || !c.leaf.slots[c.offset].isItem() {
		return ErrMissingItem
	}
	c.leaf.setMark(c.offset, m)
	c.leafDirty = true
	return nil
}

// UnsetMark clears mark m on the item at the cursor's key. Returns
// ErrMissingItem if the cursor is Inactive or the slot holds no item.
func (c *WriteCursor[I]) UnsetMark(m Mark) error {
	if !c.active || !c.leaf.slots[c.offset].isItem() {
		return ErrMissingItem
	}
	c.leaf.unsetMark(c.offset, m)
	c.leafDirty = true
	return nil
}

// Next advances the cursor to key+1, COWing into any newly-entered shared
// node, and flushing deferred mark propagation for the position being left
// behind whenever that position is actually abandoned (spec.md §4.8).
// An Inactive cursor re-traverses from the root for the new key.
// Panics if the current key is already the maximum uint64.
func (c *WriteCursor[I]) Next() {
	if c.key == ^uint64(0) {
		panic(ErrKeyOverflow)
	}

	if !c.active {
		c.key++
		c.traverse()
		return
	}

	if c.active && c.offset < fanOut-1 {
		c.key++
		c.offset++
		return
	}

	c.teardown()
	c.key++

	t := c.tree
	for c.depth > 0 {
		c.depth--
		d := c.ancestors[c.depth]
		if d.enteredAt >= fanOut-1 {
			continue
		}
		n := d.awaken()
		off := d.enteredAt + 1
		if n.slots[off].kind != entryNode {
			c.active = false
			c.leaf = nil
			return
		}
		child, _ := n.asNodeMutOrCOW(off, t.cloneItem, t.destroy)
		_, nd := park(n, off)
		c.ancestors[c.depth] = nd
		c.depth++
		c.descendExclusiveFrom(child)
		return
	}

	c.active = false
	c.leaf = nil
}

// descendExclusiveFrom continues descent from n (freshly COW'd, entered at
// the offset just bumped in Next) down to the leaf, taking the leftmost
// child at every level below — correct for the same reason
// Cursor.redescendFrom is: a carry only happens exactly at a subtree
// boundary.
func (c *WriteCursor[I]) descendExclusiveFrom(n *node[I]) {
	t := c.tree
	for {
		if n.height == 1 {
			c.leaf = n
			c.offset = 0
			c.active = true
			return
		}
		if n.slots[0].kind != entryNode {
			c.active = false
			c.leaf = nil
			return
		}
		child, _ := n.asNodeMutOrCOW(0, t.cloneItem, t.destroy)
		_, d := park(n, 0)
		c.ancestors[c.depth] = d
		c.depth++
		n = child
	}
}
