package xarray

import "github.com/asterinas/xarray/internal/noderef"

// entryKind discriminates the tagged union a slot entry is, per spec.md
// §3/§4.2: Empty, Item, or a shared reference to a Node. Grounded in
// original_source/src/entry.rs's XEntry, which packs the same three cases
// into the low bits of a raw pointer; Go has no tagged-pointer trick worth
// reaching for unsafe code over, so this project uses the discriminated
// record the spec explicitly allows instead (spec.md §3).
type entryKind uint8

const (
	entryEmpty entryKind = iota
	entryItem
	entryNode
)

// entry is the tagged value stored in each of a node's 64 slots, or as a
// tree's root. Interior nodes only ever hold entryEmpty/entryNode; leaf
// nodes only ever hold entryEmpty/entryItem (spec.md I3).
type entry[I any] struct {
	kind entryKind
	item I
	ref  noderef.Ref[node[I]]
}

// emptyEntry returns the Empty variant.
func emptyEntry[I any]() entry[I] {
	return entry[I]{}
}

// itemEntry wraps a user item as the Item variant.
func itemEntry[I any](item I) entry[I] {
	return entry[I]{kind: entryItem, item: item}
}

// nodeEntry wraps a node reference as the NodeRef variant.
func nodeEntry[I any](ref noderef.Ref[node[I]]) entry[I] {
	return entry[I]{kind: entryNode, ref: ref}
}

func (e *entry[I]) isEmpty() bool { return e.kind == entryEmpty }
func (e *entry[I]) isItem() bool  { return e.kind == entryItem }
func (e *entry[I]) isNode() bool  { return e.kind == entryNode }

// intoItem consumes the slot's stored item, if any.
func (e *entry[I]) intoItem() (I, bool) {
	if e.kind == entryItem {
		return e.item, true
	}
	var zero I
	return zero, false
}

// asItemRef borrows the stored item without taking ownership. The returned
// pointer aliases the slot itself, so it is only valid while the slot isn't
// overwritten.
func (e *entry[I]) asItemRef() (*I, bool) {
	if e.kind == entryItem {
		return &e.item, true
	}
	return nil, false
}

// asNodeShared borrows the referenced node with shared access.
func (e *entry[I]) asNodeShared() (*node[I], bool) {
	if e.kind == entryNode {
		return e.ref.Get(), true
	}
	return nil, false
}

// accessKind classifies the exclusivity of a mutable access attempt,
// spec.md §4.2's access_mut result.
type accessKind int

const (
	accessNone accessKind = iota
	accessShared
	accessExclusive
)

// accessMut reports the kind of access this slot currently allows without
// performing any COW: Exclusive when the slot is a NodeRef with strong
// count 1, Shared when it's a NodeRef with strong count > 1, None
// otherwise. Upgrading Shared to Exclusive is the caller's job (see
// asNodeMutOrCOW), matching spec.md §4.2's "MUST NOT silently upgrade".
func (e *entry[I]) accessMut() (accessKind, *node[I]) {
	if e.kind != entryNode {
		return accessNone, nil
	}
	if e.ref.StrongCount() == 1 {
		return accessExclusive, e.ref.Get()
	}
	return accessShared, e.ref.Get()
}

// cloneEntry clones this entry: an Item entry is cloned via cloneItem, a
// NodeRef entry shares the same node and bumps its strong count, Empty
// clones to Empty. cloneItem is the identity function for a plain
// (non-cloneable) Tree, which is why this path is unreachable there —
// sharing, and therefore COW, can only begin via CloneableTree.Clone.
func (e *entry[I]) cloneEntry(cloneItem func(I) I) entry[I] {
	switch e.kind {
	case entryItem:
		return itemEntry(cloneItem(e.item))
	case entryNode:
		return nodeEntry(e.ref.Clone())
	default:
		return entry[I]{}
	}
}

// drop releases this entry's ownership stake: a NodeRef entry's strong
// count is decremented (recursively tearing the node down via destroy once
// the count reaches zero); an Item or Empty entry needs no action beyond
// what the Go garbage collector already does.
func (e *entry[I]) drop(destroy func(*node[I])) {
	if e.kind == entryNode {
		e.ref.Drop(destroy)
	}
}
