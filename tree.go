package xarray

import "github.com/asterinas/xarray/internal/noderef"

// noCopy makes `go vet`'s copylocks check flag accidental copies of a Tree,
// the same guard the teacher's table.go carries for its own root struct:
// Tree's pool and cloneItem/destroy closures are only meaningful through a
// pointer.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Tree is a persistent-capable radix tree mapping uint64 keys to items of
// type I, spec.md §1/§3. A freshly constructed Tree has an Empty root (I6)
// and never triggers copy-on-write on its own: sharing begins only through
// CloneableTree.Clone, so cloneItem below is never actually invoked for a
// plain Tree — it exists only because node and entry are generic over
// cloneItem regardless of whether I satisfies Cloner[I].
type Tree[I any] struct {
	_ noCopy

	root      entry[I]
	treeMarks [numMarks]bool

	pool      *nodePool[I]
	cloneItem func(I) I
	destroy   func(*node[I])
}

// New constructs an empty, non-cloneable Tree. Its items are never cloned
// (COW is structurally unreachable: nothing ever raises a node's strong
// count above 1), so cloneItem is the identity function and is dead code in
// practice.
func New[I any]() *Tree[I] {
	t := &Tree[I]{
		pool:      newNodePool[I](),
		cloneItem: func(v I) I { return v },
	}
	t.destroy = makeDestroy(t.pool)
	return t
}

// makeDestroy builds the recursive node-teardown closure every Tree and
// CloneableTree wires into entry.drop/asNodeMutOrCOW: drop every child slot
// (recursing through the same closure for NodeRef children), then return
// the now-empty node to pool. Grounded in the teacher's pool.go lifecycle,
// adapted so teardown also walks the node's own children first, something
// a flat IP-trie pool never needed because its nodes own no COW-shared
// children across Clone boundaries.
func makeDestroy[I any](pool *nodePool[I]) func(*node[I]) {
	var destroy func(*node[I])
	destroy = func(n *node[I]) {
		for i := range n.slots {
			n.slots[i].drop(destroy)
		}
		pool.put(n)
	}
	return destroy
}

// minimalHeightFor returns the smallest node height whose representable key
// range (spec.md §3, F^h - 1) covers key.
func minimalHeightFor(key uint64) int {
	h := 1
	for maxKeyForHeight(h) < key {
		h++
	}
	return h
}

// maxKeyForHeight returns F^h - 1, clamped to uint64's range. At
// maxHeight (11), 6*11 = 66 bits already exceeds 64, so a height-11 root
// always covers the full key space — spec.md §3's "sufficient for 64-bit
// keys".
func maxKeyForHeight(h int) uint64 {
	bits := uint(bitsPerLayer * h)
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// MaxRepresentableKey returns the largest key the current root height can
// address. An empty tree represents nothing yet, so it reports 0.
func (t *Tree[I]) MaxRepresentableKey() uint64 {
	n, ok := t.root.asNodeShared()
	if !ok {
		return 0
	}
	return maxKeyForHeight(n.height)
}

// Reserve grows the tree's root, if necessary, so that key falls within its
// representable range, per spec.md §4.4. Growing moves the existing root
// (unchanged, not cloned — its strong count is untouched by gaining a new
// parent) into slot 0 of a freshly allocated, taller root.
func (t *Tree[I]) Reserve(key uint64) {
	if t.root.isEmpty() {
		h := minimalHeightFor(key)
		root := t.pool.get(h, 0)
		t.root = nodeEntry(noderef.New(root))
		return
	}

	for {
		n, _ := t.root.asNodeShared()
		if maxKeyForHeight(n.height) >= key {
			return
		}
		newHeight := n.height + 1
		if newHeight > maxHeight {
			panic("xarray: key exceeds the maximum representable range")
		}
		newRoot := t.pool.get(newHeight, 0)
		oldRoot := t.root
		newRoot.setEntry(0, oldRoot)
		t.root = nodeEntry(noderef.New(newRoot))
	}
}

// Load returns the item stored at key, if any.
func (t *Tree[I]) Load(key uint64) (I, bool) {
	c := t.Cursor(key)
	return c.Load()
}

// Store inserts or replaces the item at key, returning the item it
// displaced, if any.
func (t *Tree[I]) Store(key uint64, item I) (I, bool) {
	c := t.CursorMut(key)
	defer c.Close()
	return c.Store(item)
}

// Remove deletes the item at key, returning it if present.
func (t *Tree[I]) Remove(key uint64) (I, bool) {
	c := t.CursorMut(key)
	defer c.Close()
	return c.Remove()
}

// SetMark sets mark m on the item at key. Returns ErrMissingItem if key
// holds no item.
func (t *Tree[I]) SetMark(key uint64, m Mark) error {
	c := t.CursorMut(key)
	defer c.Close()
	return c.SetMark(m)
}

// UnsetMark clears mark m on the item at key. Returns ErrMissingItem if key
// holds no item.
func (t *Tree[I]) UnsetMark(key uint64, m Mark) error {
	c := t.CursorMut(key)
	defer c.Close()
	return c.UnsetMark(m)
}

// IsMarked reports whether the item at key carries mark m.
func (t *Tree[I]) IsMarked(key uint64, m Mark) bool {
	c := t.Cursor(key)
	return c.IsMarked(m)
}

// SetTreeMark, UnsetTreeMark and IsTreeMarked manage a tree-wide mark flag
// that is independent of any per-item mark bit (spec.md §4.1's tree-level
// marks, e.g. for "this tree has uncommitted changes").
func (t *Tree[I]) SetTreeMark(m Mark)      { t.treeMarks[m.index()] = true }
func (t *Tree[I]) UnsetTreeMark(m Mark)    { t.treeMarks[m.index()] = false }
func (t *Tree[I]) IsTreeMarked(m Mark) bool { return t.treeMarks[m.index()] }

// UnsetMarkAll clears mark m from every item in the tree, per spec.md
// §4.7's breadth-first, COW-aware traversal: each node it visits is
// brought to exclusive access (COW'd if shared) before its mark word is
// cleared and before its marked children are enqueued.
func (t *Tree[I]) UnsetMarkAll(m Mark) {
	if t.root.isEmpty() {
		return
	}

	ensureRootExclusive(t)
	root, _ := t.root.asNodeShared()

	queue := []*node[I]{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		w := n.marks[m.index()]
		n.clearMark(m)

		for o := uint(0); o < fanOut; o++ {
			if !w.Test(o) || n.slots[o].kind != entryNode {
				continue
			}
			child, _ := n.asNodeMutOrCOW(o, t.cloneItem, t.destroy)
			queue = append(queue, child)
		}
	}
}

// Cursor returns a read cursor positioned at key (spec.md §4.5).
func (t *Tree[I]) Cursor(key uint64) *Cursor[I] {
	c := &Cursor[I]{tree: t, key: key}
	c.traverse()
	return c
}

// CursorMut returns a write cursor positioned at key (spec.md §4.5/§4.6).
// The returned cursor holds exclusive access to every node on its path for
// its entire lifetime; callers must Close it when done.
func (t *Tree[I]) CursorMut(key uint64) *WriteCursor[I] {
	c := &WriteCursor[I]{tree: t, key: key}
	c.traverse()
	return c
}

// Range returns an iterator over the populated [start, end) key range,
// spec.md §4.10.
func (t *Tree[I]) Range(start, end uint64) *RangeIter[I] {
	return &RangeIter[I]{cursor: t.Cursor(start), end: end}
}

// Stats reports the node pool's live and total-allocated counts, exposed
// for tests and diagnostics the way the teacher's pool.Stats is.
func (t *Tree[I]) Stats() (live, total int64) {
	return t.pool.stats()
}
