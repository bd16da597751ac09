package lock

// split.go provides opt-in POSIX/fcntl-flavored range splitting on top of
// the exact-match unlock core. Nothing in coordinator.go calls these: the
// core's own Release only ever removes an exact (start, length, identity)
// match. A higher-level caller that wants fcntl(F_SETLK)-style behavior,
// where unlocking a sub-range of a held lock splits it into the surviving
// pieces, builds that behavior out of these helpers instead.

// SplitLock computes the surviving sub-ranges of held after removing the
// interval [start, start+length). Returns zero, one, or two ranges: zero if
// the removed interval fully covers held, one if it trims an edge, two if
// it carves a hole out of the middle.
func SplitLock(held Range, start, length uint64) []Range {
	if length == 0 {
		return []Range{held}
	}
	heldEnd := saturatingEnd(held)
	removeEnd := saturatingEnd(Range{Start: start, Length: length})

	if start <= held.Start && removeEnd >= heldEnd {
		return nil
	}

	var out []Range
	if start > held.Start {
		headEnd := start
		if headEnd > heldEnd {
			headEnd = heldEnd
		}
		out = append(out, Range{Start: held.Start, Length: headEnd - held.Start})
	}
	if removeEnd < heldEnd {
		tailStart := removeEnd
		if tailStart < held.Start {
			tailStart = held.Start
		}
		out = append(out, Range{Start: tailStart, Length: heldEnd - tailStart})
	}
	return out
}

// MergeLocks coalesces adjacent or overlapping ranges sharing the same
// identity and type into the minimal equivalent set. Input order is not
// preserved; output is sorted by start offset.
func MergeLocks(records []*Record) []*Record {
	if len(records) < 2 {
		return records
	}

	byOwner := make(map[Identity][]*Record)
	var order []Identity
	for _, r := range records {
		key := r.Identity
		if _, ok := byOwner[key]; !ok {
			order = append(order, key)
		}
		byOwner[key] = append(byOwner[key], r)
	}

	var merged []*Record
	for _, key := range order {
		merged = append(merged, mergeSameOwner(byOwner[key])...)
	}
	sortRecordsByStart(merged)
	return merged
}

func mergeSameOwner(records []*Record) []*Record {
	byType := map[LockType][]*Record{}
	for _, r := range records {
		byType[r.Type] = append(byType[r.Type], r)
	}

	var out []*Record
	for typ, group := range byType {
		sortRecordsByStart(group)
		var run []*Record
		var runEnd uint64
		flush := func() {
			if len(run) == 0 {
				return
			}
			start := run[0].Range.Start
			end := saturatingEnd(run[0].Range)
			earliestGrant := run[0].grantedAt
			for _, r := range run[1:] {
				if e := saturatingEnd(r.Range); e > end {
					end = e
				}
				if r.grantedAt.Before(earliestGrant) {
					earliestGrant = r.grantedAt
				}
			}
			merged := newRecord(Range{Start: start, Length: end - start}, typ, run[0].Identity, run[0].Deadline)
			merged.setState(recordGranted)
			merged.grantedAt = earliestGrant
			out = append(out, merged)
			run = nil
		}
		for _, r := range group {
			if len(run) > 0 && r.Range.Start <= runEnd {
				run = append(run, r)
				if e := saturatingEnd(r.Range); e > runEnd {
					runEnd = e
				}
				continue
			}
			flush()
			run = append(run, r)
			runEnd = saturatingEnd(r.Range)
		}
		flush()
	}
	return out
}

func sortRecordsByStart(records []*Record) {
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && records[j].Range.Start < records[j-1].Range.Start; j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}
