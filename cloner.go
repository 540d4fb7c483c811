package xarray

// Cloner is the capability an item type must provide to be stored in a
// CloneableTree: a deep (or appropriately deep) copy of itself. Grounded in
// original_source/src/entry.rs's trait bound on COW-capable trees, where
// the stored value type must itself be Clone.
type Cloner[I any] interface {
	Clone() I
}

// CloneableTree is a Tree whose items support Cloner[I], and which
// therefore supports O(1) structural Clone: the clone shares the same root
// node (its strong count is bumped), so copy-on-write only pays the cost of
// cloning the nodes actually mutated afterwards (spec.md §1, §4.6).
type CloneableTree[I Cloner[I]] struct {
	Tree[I]
}

// NewCloneable constructs an empty CloneableTree.
func NewCloneable[I Cloner[I]]() *CloneableTree[I] {
	t := &CloneableTree[I]{}
	t.pool = newNodePool[I]()
	t.cloneItem = func(v I) I { return v.Clone() }
	t.destroy = makeDestroy(t.pool)
	return t
}

// Clone returns a new tree that, at the instant of the call, is an
// independent, equal copy: it shares the same root reference (strong count
// incremented) rather than copying any node eagerly. Any subsequent
// mutation through either tree's cursors triggers copy-on-write exactly on
// the nodes that mutation touches (spec.md §4.6).
func (t *CloneableTree[I]) Clone() *CloneableTree[I] {
	nt := &CloneableTree[I]{}
	nt.pool = t.pool
	nt.cloneItem = t.cloneItem
	nt.destroy = t.destroy
	nt.treeMarks = t.treeMarks
	nt.root = t.root.cloneEntry(t.cloneItem)
	return nt
}
