package xarray

import "errors"

// ErrMissingItem is returned by WriteCursor.SetMark/UnsetMark when the
// cursor's key has no stored item, per spec.md §7's MissingItem error: a
// recoverable failure reported to the caller, the tree left unchanged.
var ErrMissingItem = errors.New("xarray: no item stored at this key")

// ErrKeyOverflow is the panic value for the fatal condition from spec.md
// §7/Open Question 1: advancing a cursor past the maximum representable
// key has no key+1 to advance to, so it is reported by panic rather than
// a returned error.
var ErrKeyOverflow = errors.New("xarray: cursor next() would overflow past the maximum key")
