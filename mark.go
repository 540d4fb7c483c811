package xarray

// numMarks is the fixed number of independent mark kinds a node (and a
// tree) tracks, per spec.md §3's NUM_MARKS K = 3.
const numMarks = 3

// Mark selects one of the three mark kinds a tree and its nodes track. The
// core treats marks as opaque beyond their index (spec.md §6), so the
// specific names below are just this project's domain-neutral choice,
// grounded in original_source/src/mark.rs's example XMarkDemo enum
// (Dirty/COW/Locked) — kept nameless here on purpose since the core has no
// opinion on what a caller uses a mark for.
type Mark int

const (
	MarkA Mark = iota
	MarkB
	MarkC
)

// index returns the 0..numMarks slot this mark occupies. Out-of-range
// marks are a programming error and trap, matching spec.md §7's treatment
// of internal invariant violations.
func (m Mark) index() int {
	if m < 0 || int(m) >= numMarks {
		panic("xarray: mark out of range")
	}
	return int(m)
}
