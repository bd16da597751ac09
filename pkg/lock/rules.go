package lock

// rules.go implements the three pure, non-blocking decision functions of the
// rule engine. None of them take a gate: callers run them with the
// appropriate list gate already held.

// tryGrant decides whether candidate can be installed against list.
//
// Scans list for records overlapping candidate:
//   - SHARED vs SHARED is always compatible.
//   - a SHARED candidate against an EXCLUSIVE holder of the same identity is
//     compatible (the same-owner carve-out) — note the asymmetry: an
//     EXCLUSIVE candidate never gets this carve-out, even same-owner.
//   - anything else conflicts: returns LockNotGranted and the first
//     conflicting record as the blocker.
//
// The same-owner carve-out only ever favors a SHARED candidate; an
// EXCLUSIVE candidate conflicts with any overlapping record regardless of
// ownership.
func tryGrant(candidate *Record, list []*Record) (Status, *Record) {
	for _, x := range list {
		if !Overlaps(candidate.Range, x.Range) {
			continue
		}
		if x.Type == Shared && candidate.Type == Shared {
			continue
		}
		if candidate.Type == Shared && x.Type == Exclusive && x.Identity.Equal(candidate.Identity) {
			continue
		}
		return LockNotGranted, x
	}
	return Success, nil
}

// matchUnlock finds the record with exactly the given start, length, and
// identity. Partial or overlapping unlocks are not permitted.
func matchUnlock(start, length uint64, id Identity, list []*Record) (*Record, Status) {
	for _, x := range list {
		if x.Range.Start == start && x.Range.Length == length && x.Identity.Equal(id) {
			return x, Success
		}
	}
	return nil, RangeNotLocked
}

// checkAccess decides whether a pending I/O for desired access on
// (start, length) is compatible with the granted list.
//
// desired must be non-empty; read and write access are evaluated
// independently against each overlapping record.
func checkAccess(id Identity, start, length uint64, desired Access, list []*Record) Status {
	want := Range{Start: start, Length: length}
	for _, x := range list {
		if !Overlaps(want, x.Range) {
			continue
		}
		if x.Type == Shared && desired&ReadData != 0 && desired&WriteData == 0 {
			continue
		}
		if x.Type == Exclusive && x.Identity.sameSessionAndProcess(id) {
			continue
		}
		return FileLockConflict
	}
	return Success
}
