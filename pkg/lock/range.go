package lock

import "math"

// Range is a half-open byte interval [Start, Start+Length). A Length of 0 is
// a legal but non-overlapping range — SMB's degenerate zero-length lock
// sentinel.
type Range struct {
	Start  uint64
	Length uint64
}

// End returns the exclusive end of the range and whether it was computed
// without overflow. Callers that need the end value directly (split/merge
// helpers) must handle ok == false rather than relying on wraparound.
func (r Range) End() (end uint64, ok bool) {
	end = r.Start + r.Length
	if end < r.Start {
		return 0, false
	}
	return end, true
}

// Overlaps reports whether a and b overlap. Zero-length ranges overlap
// nothing. Endpoints are saturated at math.MaxUint64 rather than compared
// via a raw start+length sum, so a range ending at 2^64 never wraps.
func Overlaps(a, b Range) bool {
	if a.Length == 0 || b.Length == 0 {
		return false
	}
	aEnd := saturatingEnd(a)
	bEnd := saturatingEnd(b)
	return a.Start < bEnd && b.Start < aEnd
}

func saturatingEnd(r Range) uint64 {
	end, ok := r.End()
	if !ok {
		return math.MaxUint64
	}
	return end
}
