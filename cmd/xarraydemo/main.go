// Command xarraydemo exercises a CloneableTree under concurrent readers and
// a writer, the way the teacher's cmd/main.go exercises a routing table:
// one clone is periodically published, read from, and replaced, while a
// separate goroutine mutates the live tree.
package main

import (
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asterinas/xarray"
)

type record struct {
	hits int
}

func (r record) Clone() record { return record{hits: r.hits} }

func main() {
	log.SetFlags(log.Lmicroseconds)
	prng := rand.New(rand.NewPCG(1, 1))

	tr := xarray.NewCloneable[record]()
	for i := 0; i < 10_000; i++ {
		tr.Store(uint64(i), record{})
	}

	var published atomic.Pointer[xarray.CloneableTree[record]]
	published.Store(tr.Clone())

	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			snap := published.Load()
			n := countPopulated(snap)
			log.Printf("snapshot holds %d items", n)
			time.Sleep(200 * time.Millisecond)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		live := tr
		for i := 0; i < 5; i++ {
			key := uint64(prng.IntN(10_000))
			live.SetMark(key, xarray.MarkA)

			clone := live.Clone()
			published.Store(clone)

			time.Sleep(200 * time.Millisecond)
		}
	}()

	wg.Wait()
	log.Printf("done")
}

func countPopulated(tr *xarray.CloneableTree[record]) int {
	it := tr.Range(0, 10_000)
	n := 0
	for {
		if _, _, ok := it.Next(); !ok {
			break
		}
		n++
	}
	return n
}
