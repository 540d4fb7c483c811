package xarray

import (
	"github.com/asterinas/xarray/internal/bitset"
	"github.com/asterinas/xarray/internal/noderef"
)

// Fixed shape constants from spec.md §3: a 64-way fan-out addressed 6 bits
// at a time, deep enough (11 levels) to cover a full 64-bit key space.
const (
	bitsPerLayer = 6
	fanOut       = 1 << bitsPerLayer // 64
	slotMask     = fanOut - 1
	maxHeight    = 11
)

// node is one level of the radix tree: height 1 is a leaf whose slots hold
// Empty/Item entries, height >= 2 is interior and holds Empty/NodeRef
// entries (spec.md I3). Every node always has exactly fanOut slots — unlike
// the teacher's popcount-compressed sparse arrays, there is nothing here to
// compress, because F is fixed and small.
type node[I any] struct {
	height         int
	offsetInParent uint8
	slots          [fanOut]entry[I]
	marks          [numMarks]bitset.Word
}

// newNode allocates a node with all slots Empty and all marks clear.
func newNode[I any](height int, offsetInParent uint8) *node[I] {
	return &node[I]{height: height, offsetInParent: offsetInParent}
}

// entryOffset computes the slot offset a key maps to at a given height,
// spec.md §3: (k >> (6*(h-1))) & 63.
func entryOffset(height int, key uint64) uint {
	return uint(key>>(bitsPerLayer*uint(height-1))) & slotMask
}

func (n *node[I]) entryOffset(key uint64) uint {
	return entryOffset(n.height, key)
}

// reset clears a node back to its just-allocated state, so it can be
// recycled by nodePool the way the teacher's node.reset() does for pool.Put.
func (n *node[I]) reset() {
	for i := range n.slots {
		n.slots[i] = entry[I]{}
	}
	for m := range n.marks {
		n.marks[m] = 0
	}
	n.height = 0
	n.offsetInParent = 0
}

// setEntry places newEntry at slots[offset] and returns the entry that was
// there. Per spec.md §4.3: overwriting with Item/Empty clears all K mark
// bits at that offset (I4's leaf clause); overwriting with a NodeRef
// recomputes the K mark bits from the child's own is-all-clear state.
func (n *node[I]) setEntry(offset uint, newEntry entry[I]) entry[I] {
	old := n.slots[offset]
	n.slots[offset] = newEntry

	if newEntry.kind == entryNode {
		child := newEntry.ref.Get()
		for m := 0; m < numMarks; m++ {
			n.marks[m], _ = n.marks[m].Update(offset, !child.marks[m].IsAllClear())
		}
	} else {
		for m := 0; m < numMarks; m++ {
			n.marks[m] = n.marks[m].Clear(offset)
		}
	}

	return old
}

// updateMark recomputes the K mark bits at offset from the child currently
// at slots[offset]. It is a no-op returning false if that slot isn't a
// NodeRef. Returns true if any mark bit changed, the signal spec.md §4.8's
// ancestor-walk teardown uses to stop early.
func (n *node[I]) updateMark(offset uint) bool {
	if n.slots[offset].kind != entryNode {
		return false
	}
	child := n.slots[offset].ref.Get()

	changed := false
	for m := 0; m < numMarks; m++ {
		var c bool
		n.marks[m], c = n.marks[m].Update(offset, !child.marks[m].IsAllClear())
		changed = changed || c
	}
	return changed
}

// setMark, unsetMark and clearMark touch only this node; maintaining I4 on
// ancestors is the caller's job (spec.md §4.3).
func (n *node[I]) setMark(offset uint, m Mark) {
	n.marks[m.index()] = n.marks[m.index()].Set(offset)
}

func (n *node[I]) unsetMark(offset uint, m Mark) {
	n.marks[m.index()] = n.marks[m.index()].Clear(offset)
}

func (n *node[I]) clearMark(m Mark) {
	n.marks[m.index()] = 0
}

func (n *node[I]) isMarked(offset uint, m Mark) bool {
	return n.marks[m.index()].Test(offset)
}

// cloneNode performs the deep-per-node clone spec.md §4.6 requires for
// COW: same height, offsetInParent and mark words, every slot entry cloned
// (NodeRef children are shared via a bumped strong count, Item entries are
// cloned via cloneItem).
func (n *node[I]) cloneNode(cloneItem func(I) I) *node[I] {
	cp := &node[I]{
		height:         n.height,
		offsetInParent: n.offsetInParent,
		marks:          n.marks,
	}
	for i := range n.slots {
		cp.slots[i] = n.slots[i].cloneEntry(cloneItem)
	}
	return cp
}

// asNodeMutOrCOW ensures exclusive access to the child node referenced at
// slots[offset]: if that child's strong count is 1 it is returned as-is;
// if it is shared (>1), a fresh deep-per-node clone is allocated, the slot
// is replaced with a NodeRef to the clone (strong count 1), the old
// NodeRef's count is decremented, and the clone is returned. This is
// spec.md §4.6's COW protocol, triggered one parent-slot at a time.
func (n *node[I]) asNodeMutOrCOW(offset uint, cloneItem func(I) I, destroy func(*node[I])) (*node[I], bool) {
	e := &n.slots[offset]
	if e.kind != entryNode {
		return nil, false
	}
	if e.ref.StrongCount() > 1 {
		clone := e.ref.Get().cloneNode(cloneItem)
		old := n.slots[offset]
		n.slots[offset] = nodeEntry(noderef.New(clone))
		old.drop(destroy)
		return clone, true
	}
	return e.ref.Get(), true
}
