package xarray

import (
	"sync"
	"sync/atomic"
)

// nodePool is a type-safe wrapper around sync.Pool specialized for
// recycling *node[I] instances, adapted from the teacher's pool[V]
// (pool.go): same embedded sync.Pool, same atomic allocation/live
// counters, repurposed from pooling IP-trie nodes to pooling fixed-fanout
// XArray nodes. Allocation itself is explicitly out of the core's scope
// (spec.md §1 lists it as an external collaborator), so this is the
// concrete collaborator the rest of the package calls into.
type nodePool[I any] struct {
	sync.Pool

	totalAllocated atomic.Int64
	currentLive    atomic.Int64
}

func newNodePool[I any]() *nodePool[I] {
	p := &nodePool[I]{}
	p.New = func() any {
		p.totalAllocated.Add(1)
		return new(node[I])
	}
	return p
}

// get retrieves a *node[I] from the pool, or allocates a new one, and
// stamps it with height/offsetInParent.
func (p *nodePool[I]) get(height int, offsetInParent uint8) *node[I] {
	if p == nil {
		return newNode[I](height, offsetInParent)
	}
	p.currentLive.Add(1)

	n := p.Pool.Get().(*node[I])
	n.height = height
	n.offsetInParent = offsetInParent
	return n
}

// put returns n to the pool for reuse once its strong count has reached
// zero (see the destroy closure built by makeDestroy in tree.go),
// resetting its slots and marks first.
func (p *nodePool[I]) put(n *node[I]) {
	if p == nil {
		return
	}
	p.currentLive.Add(-1)

	n.reset()
	p.Pool.Put(n)
}

// stats reports the number of currently live (checked-out) nodes and the
// total ever allocated, mirroring the teacher's pool[V].Stats.
func (p *nodePool[I]) stats() (live, total int64) {
	if p == nil {
		return 0, 0
	}
	return p.currentLive.Load(), p.totalAllocated.Load()
}
