package xarray

import (
	"testing"

	"github.com/asterinas/xarray/internal/noderef"
)

func TestNodeEntryOffset(t *testing.T) {
	t.Parallel()

	// Height 1: offset is the low 6 bits.
	if got := entryOffset(1, 0x3F); got != 0x3F {
		t.Fatalf("entryOffset(1, 0x3F) = %d, want 63", got)
	}
	if got := entryOffset(1, 0x40); got != 0 {
		t.Fatalf("entryOffset(1, 0x40) = %d, want 0", got)
	}
	// Height 2: offset is bits 6..11.
	if got := entryOffset(2, 0x40); got != 1 {
		t.Fatalf("entryOffset(2, 0x40) = %d, want 1", got)
	}
}

func TestNodeSetEntryClearsMarksOnOverwrite(t *testing.T) {
	t.Parallel()

	n := newNode[int](1, 0)
	n.setEntry(5, itemEntry(1))
	n.setMark(5, MarkA)
	if !n.isMarked(5, MarkA) {
		t.Fatalf("expected mark set before overwrite")
	}

	n.setEntry(5, itemEntry(2))
	if n.isMarked(5, MarkA) {
		t.Fatalf("overwriting with Item must clear all marks at that offset")
	}

	n.setMark(5, MarkB)
	n.setEntry(5, emptyEntry[int]())
	if n.isMarked(5, MarkB) {
		t.Fatalf("overwriting with Empty must clear all marks at that offset")
	}
}

func TestNodeSetEntryPropagatesChildMarkState(t *testing.T) {
	t.Parallel()

	parent := newNode[int](2, 0)
	child := newNode[int](1, 3)
	child.setMark(10, MarkA)

	ref := noderef.New(child)
	parent.setEntry(3, nodeEntry[int](ref))
	if !parent.isMarked(3, MarkA) {
		t.Fatalf("setEntry(NodeRef) must propagate a non-all-clear child mark")
	}
	if parent.isMarked(3, MarkB) {
		t.Fatalf("setEntry(NodeRef) must not set marks the child doesn't carry")
	}
}

func TestNodeUpdateMark(t *testing.T) {
	t.Parallel()

	parent := newNode[int](2, 0)
	child := newNode[int](1, 0)
	ref := noderef.New(child)
	parent.setEntry(0, nodeEntry[int](ref))

	if parent.isMarked(0, MarkA) {
		t.Fatalf("freshly linked child carries no marks yet")
	}

	child.setMark(20, MarkA)
	changed := parent.updateMark(0)
	if !changed {
		t.Fatalf("updateMark: expected a change after child gained a mark")
	}
	if !parent.isMarked(0, MarkA) {
		t.Fatalf("updateMark: parent bit should now be set")
	}

	changed = parent.updateMark(0)
	if changed {
		t.Fatalf("updateMark: re-running with no child change must report false")
	}

	// Offset pointing at a non-Node slot is a no-op.
	if parent.updateMark(1) {
		t.Fatalf("updateMark on an Empty slot must report false")
	}
}

func TestNodeCloneNode(t *testing.T) {
	t.Parallel()

	n := newNode[int](1, 2)
	n.setEntry(4, itemEntry(99))
	n.setMark(4, MarkC)

	clone := n.cloneNode(identityClone[int])
	if clone == n {
		t.Fatalf("cloneNode must allocate a new node")
	}
	if clone.height != n.height || clone.offsetInParent != n.offsetInParent {
		t.Fatalf("cloneNode must preserve height/offsetInParent")
	}
	v, ok := clone.slots[4].intoItem()
	if !ok || v != 99 {
		t.Fatalf("cloneNode must copy item slots")
	}
	if !clone.isMarked(4, MarkC) {
		t.Fatalf("cloneNode must copy mark words")
	}
}

func TestNodeAsNodeMutOrCOW(t *testing.T) {
	t.Parallel()

	parent := newNode[int](2, 0)
	child := newNode[int](1, 0)
	child.setEntry(1, itemEntry(1))
	ref := noderef.New(child)
	parent.setEntry(0, nodeEntry[int](ref))

	// Strong count 1: returned as-is, no clone.
	got, ok := parent.asNodeMutOrCOW(0, identityClone[int], nil)
	if !ok || got != child {
		t.Fatalf("asNodeMutOrCOW: expected the original node back when unshared")
	}

	// Share it, forcing the next call to COW.
	shared := ref.Clone()
	defer shared.Drop(nil)

	var destroyed *node[int]
	got, ok = parent.asNodeMutOrCOW(0, identityClone[int], func(n *node[int]) { destroyed = n })
	if !ok {
		t.Fatalf("asNodeMutOrCOW: expected ok=true")
	}
	if got == child {
		t.Fatalf("asNodeMutOrCOW: expected a fresh clone once shared")
	}
	if v, ok := got.slots[1].intoItem(); !ok || v != 1 {
		t.Fatalf("asNodeMutOrCOW: clone must preserve slot contents")
	}
	if destroyed != nil {
		t.Fatalf("asNodeMutOrCOW: old ref still has a live clone (shared), destroy must not fire yet")
	}
}
