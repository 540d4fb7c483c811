package xarray

// RangeIter iterates the populated items in [start, end), skipping absent
// keys, spec.md §4.10. It wraps a read Cursor and never COWs.
type RangeIter[I any] struct {
	cursor *Cursor[I]
	end    uint64
	done   bool
}

// Next returns the next populated key/item pair in the range, in
// increasing key order, or ok=false once the range is exhausted.
func (r *RangeIter[I]) Next() (key uint64, item I, ok bool) {
	if r.done {
		return 0, item, false
	}

	for r.cursor.Index() < r.end {
		if v, found := r.cursor.Load(); found {
			k := r.cursor.Index()
			r.cursor.Next()
			return k, v, true
		}
		r.cursor.Next()
	}

	r.done = true
	return 0, item, false
}
