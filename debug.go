package xarray

import (
	"fmt"

	tp "github.com/xlab/treeprint"
)

// Dump renders the tree's current node structure for diagnostics, in the
// style of other_examples' persistent-tree test helpers (see
// persistent/btree's printTree/ppt in the example pack): one tree.New()
// root, one AddNode per stored item, one AddBranch per node below the root.
// Unlike the teacher's IP-trie dumper.go/stringify.go, which render
// prefix/route content, this renders slot offsets and node heights; mark
// state is not shown.
func (t *Tree[I]) Dump() string {
	root, ok := t.root.asNodeShared()
	if !ok {
		return "(empty)\n"
	}
	p := tp.New()
	dumpNode(p, root)
	return p.String()
}

func dumpNode[I any](p tp.Tree, n *node[I]) {
	if n.height == 1 {
		for o := uint(0); o < fanOut; o++ {
			if !n.slots[o].isItem() {
				continue
			}
			p.AddNode(fmt.Sprintf("leaf[%d]", o))
		}
		return
	}

	for o := uint(0); o < fanOut; o++ {
		child, ok := n.slots[o].asNodeShared()
		if !ok {
			continue
		}
		branch := p.AddBranch(fmt.Sprintf("node[%d] height=%d", o, child.height))
		dumpNode(branch, child)
	}
}
