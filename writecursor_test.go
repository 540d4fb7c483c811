package xarray

import "testing"

func TestWriteCursorStoreRemove(t *testing.T) {
	t.Parallel()

	tr := New[string]()
	c := tr.CursorMut(9)
	defer c.Close()

	if _, had := c.Store("x"); had {
		t.Fatalf("first Store must report no displaced item")
	}
	if v, ok := c.Load(); !ok || v != "x" {
		t.Fatalf("Load after Store: got (%q, %v)", v, ok)
	}
	if old, had := c.Remove(); !had || old != "x" {
		t.Fatalf("Remove: got (%q, %v)", old, had)
	}
	if _, ok := c.Load(); ok {
		t.Fatalf("Load after Remove must report no item")
	}
}

func TestWriteCursorSetMarkRequiresItem(t *testing.T) {
	t.Parallel()

	tr := New[int]()
	c := tr.CursorMut(3)
	defer c.Close()

	if err := c.SetMark(MarkA); err != ErrMissingItem {
		t.Fatalf("SetMark on an empty slot: got %v, want ErrMissingItem", err)
	}
	c.Store(1)
	if err := c.SetMark(MarkA); err != nil {
		t.Fatalf("SetMark on a stored item: %v", err)
	}
	if !c.IsMarked(MarkA) {
		t.Fatalf("expected mark set")
	}
	c.Remove()
	if err := c.SetMark(MarkA); err != ErrMissingItem {
		t.Fatalf("SetMark after Remove: got %v, want ErrMissingItem", err)
	}
}

func TestWriteCursorNextAcrossBoundary(t *testing.T) {
	t.Parallel()

	tr := New[int]()
	const n = 5_000
	for i := 0; i < n; i++ {
		tr.Store(uint64(i), i)
	}

	c := tr.CursorMut(0)
	defer c.Close()
	for i := 1; i < n; i++ {
		c.Next()
		v, ok := c.Load()
		if !ok || v != i {
			t.Fatalf("after %d Next calls: got (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
}

// TestWriteCursorNextIntoSparseSiblingGoesInactive exercises a carry out of a
// leaf into a sibling subtree that was never allocated: a perfectly normal
// sparse-tree state. Next() must leave the cursor Inactive rather than
// dereferencing a nil child.
func TestWriteCursorNextIntoSparseSiblingGoesInactive(t *testing.T) {
	t.Parallel()

	tr := New[int]()
	tr.Store(64, 1)

	c := tr.CursorMut(64)
	defer c.Close()

	for i := 0; i < 64; i++ {
		c.Next()
	}

	if _, ok := c.Load(); ok {
		t.Fatalf("cursor carried into an unallocated sibling must be Inactive")
	}
}

// cowItem is a minimal Cloner[cowItem] used to exercise CloneableTree.
type cowItem struct{ n int }

func (c cowItem) Clone() cowItem { return cowItem{n: c.n} }

func TestCloneableTreeCOWIsolation(t *testing.T) {
	t.Parallel()

	a := NewCloneable[cowItem]()
	a.Store(100, cowItem{n: 1})
	a.Store(200, cowItem{n: 2})

	b := a.Clone()

	b.Store(100, cowItem{n: 99})
	b.Remove(200)

	if v, ok := a.Load(100); !ok || v.n != 1 {
		t.Fatalf("mutating the clone must not affect the original: key 100 got (%v, %v)", v, ok)
	}
	if v, ok := a.Load(200); !ok || v.n != 2 {
		t.Fatalf("mutating the clone must not affect the original: key 200 got (%v, %v)", v, ok)
	}

	if v, ok := b.Load(100); !ok || v.n != 99 {
		t.Fatalf("clone must reflect its own mutation: key 100 got (%v, %v)", v, ok)
	}
	if _, ok := b.Load(200); ok {
		t.Fatalf("clone must reflect its own removal of key 200")
	}
}

func TestCloneableTreeCOWSharesUntouchedNodes(t *testing.T) {
	t.Parallel()

	a := NewCloneable[cowItem]()
	const n = 2_000
	for i := 0; i < n; i++ {
		a.Store(uint64(i), cowItem{n: i})
	}

	b := a.Clone()
	b.Store(0, cowItem{n: -1})

	for i := 1; i < n; i++ {
		v, ok := a.Load(uint64(i))
		if !ok || v.n != i {
			t.Fatalf("original tree corrupted at key %d: got (%v, %v)", i, v, ok)
		}
		v, ok = b.Load(uint64(i))
		if !ok || v.n != i {
			t.Fatalf("clone tree corrupted at key %d: got (%v, %v)", i, v, ok)
		}
	}
	if v, _ := a.Load(0); v.n != 0 {
		t.Fatalf("original's key 0 must be untouched, got %v", v)
	}
	if v, _ := b.Load(0); v.n != -1 {
		t.Fatalf("clone's key 0 must reflect its own Store, got %v", v)
	}
}
