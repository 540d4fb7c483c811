package xarray

// dormant is the garbage-collected rendering of spec.md §4.9's
// dormant-reference discipline. In the Rust original, an ancestor's
// exclusive borrow has to be parked as a raw pointer while the cursor
// descends into one of its children, because the borrow checker won't let
// two live &mut references into the same tree coexist. Go has no borrow
// checker, so park needs no raw pointer games: the node pointer itself is
// still perfectly usable while a descendant is being worked on. What
// dormant keeps is the *offset* the cursor entered through, so the
// ancestor-walk teardown in spec.md §4.8 knows which mark bit to recompute
// when it awakens a frame.
type dormant[I any] struct {
	node      *node[I]
	enteredAt uint
}

// park records that the write cursor is about to descend from n into the
// child at offset enteredAt. The returned dormant[I] is the parked handle;
// n itself remains usable immediately, unlike the Rust original where the
// raw pointer is inert until awakened.
func park[I any](n *node[I], enteredAt uint) (*node[I], dormant[I]) {
	return n, dormant[I]{node: n, enteredAt: enteredAt}
}

// awaken recovers the parked node without touching its mark bits.
func (d dormant[I]) awaken() *node[I] {
	return d.node
}

// awakenModified recovers the parked node after recomputing the mark bits
// at the offset the cursor descended through, reporting whether any bit
// changed. This is spec.md §4.9's awaken_modified, and the operation
// spec.md §4.8's teardown walk drives at every ancestor frame.
func (d dormant[I]) awakenModified() (*node[I], bool) {
	return d.node, d.node.updateMark(d.enteredAt)
}
