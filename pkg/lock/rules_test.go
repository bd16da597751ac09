package lock

import "testing"

func idOf(handle, session string, pid uint32) Identity {
	return Identity{FileHandle: handle, SessionID: session, ProcessID: pid}
}

func TestTryGrant_SharedSharedCompatible(t *testing.T) {
	t.Parallel()

	a := idOf("f", "A", 1)
	b := idOf("f", "B", 2)
	granted := newRecord(Range{0, 100}, Shared, a, DeadlineNone{})

	candidate := newRecord(Range{50, 100}, Shared, b, DeadlineNone{})
	status, blocker := tryGrant(candidate, []*Record{granted})

	if status != Success || blocker != nil {
		t.Fatalf("tryGrant() = (%v, %v), want (Success, nil)", status, blocker)
	}
}

func TestTryGrant_ExclusiveConflictsWithAnyOverlap(t *testing.T) {
	t.Parallel()

	a := idOf("f", "A", 1)
	b := idOf("f", "B", 2)
	granted := newRecord(Range{0, 100}, Exclusive, a, DeadlineNone{})

	candidate := newRecord(Range{50, 10}, Shared, b, DeadlineNone{})
	status, blocker := tryGrant(candidate, []*Record{granted})

	if status != LockNotGranted || blocker != granted {
		t.Fatalf("tryGrant() = (%v, %v), want (LockNotGranted, granted)", status, blocker)
	}
}

func TestTryGrant_SameOwnerSharedOverOwnExclusive(t *testing.T) {
	t.Parallel()

	a := idOf("f", "A", 1)
	granted := newRecord(Range{0, 100}, Exclusive, a, DeadlineNone{})

	candidate := newRecord(Range{10, 20}, Shared, a, DeadlineNone{})
	status, blocker := tryGrant(candidate, []*Record{granted})

	if status != Success || blocker != nil {
		t.Fatalf("tryGrant() = (%v, %v), want (Success, nil) for same-owner SHARED-on-EXCLUSIVE", status, blocker)
	}
}

func TestTryGrant_SameOwnerExclusiveNeverCoexists(t *testing.T) {
	t.Parallel()

	a := idOf("f", "A", 1)
	granted := newRecord(Range{0, 100}, Exclusive, a, DeadlineNone{})

	candidate := newRecord(Range{10, 20}, Exclusive, a, DeadlineNone{})
	status, blocker := tryGrant(candidate, []*Record{granted})

	if status != LockNotGranted || blocker != granted {
		t.Fatalf("tryGrant() = (%v, %v), want (LockNotGranted, granted): exclusive must never silently coexist, even same owner", status, blocker)
	}
}

func TestTryGrant_NonOverlappingAlwaysCompatible(t *testing.T) {
	t.Parallel()

	a := idOf("f", "A", 1)
	b := idOf("f", "B", 2)
	granted := newRecord(Range{0, 10}, Exclusive, a, DeadlineNone{})

	candidate := newRecord(Range{10, 10}, Exclusive, b, DeadlineNone{})
	status, _ := tryGrant(candidate, []*Record{granted})

	if status != Success {
		t.Fatalf("tryGrant() = %v, want Success for disjoint ranges", status)
	}
}

func TestMatchUnlock_ExactMatch(t *testing.T) {
	t.Parallel()

	a := idOf("f", "A", 1)
	rec := newRecord(Range{0, 100}, Exclusive, a, DeadlineNone{})

	got, status := matchUnlock(0, 100, a, []*Record{rec})
	if status != Success || got != rec {
		t.Fatalf("matchUnlock() = (%v, %v), want (Success, rec)", status, got)
	}
}

func TestMatchUnlock_PartialRangeIsNotAMatch(t *testing.T) {
	t.Parallel()

	a := idOf("f", "A", 1)
	rec := newRecord(Range{0, 100}, Exclusive, a, DeadlineNone{})

	_, status := matchUnlock(0, 50, a, []*Record{rec})
	if status != RangeNotLocked {
		t.Fatalf("matchUnlock() status = %v, want RangeNotLocked for partial range", status)
	}
}

func TestMatchUnlock_WrongIdentityIsNotAMatch(t *testing.T) {
	t.Parallel()

	a := idOf("f", "A", 1)
	b := idOf("f", "B", 2)
	rec := newRecord(Range{0, 100}, Exclusive, a, DeadlineNone{})

	_, status := matchUnlock(0, 100, b, []*Record{rec})
	if status != RangeNotLocked {
		t.Fatalf("matchUnlock() status = %v, want RangeNotLocked for foreign identity", status)
	}
}

func TestCheckAccess_ReadAgainstShared(t *testing.T) {
	t.Parallel()

	owner := idOf("f", "A", 1)
	caller := idOf("f", "B", 2)
	rec := newRecord(Range{0, 100}, Shared, owner, DeadlineNone{})

	status := checkAccess(caller, 0, 100, ReadData, []*Record{rec})
	if status != Success {
		t.Fatalf("checkAccess() = %v, want Success reading under a SHARED lock", status)
	}
}

func TestCheckAccess_WriteAgainstSharedConflicts(t *testing.T) {
	t.Parallel()

	owner := idOf("f", "A", 1)
	caller := idOf("f", "B", 2)
	rec := newRecord(Range{0, 100}, Shared, owner, DeadlineNone{})

	status := checkAccess(caller, 0, 100, WriteData, []*Record{rec})
	if status != FileLockConflict {
		t.Fatalf("checkAccess() = %v, want FileLockConflict writing under a foreign SHARED lock", status)
	}
}

func TestCheckAccess_SameSessionAndPIDBypassesExclusive(t *testing.T) {
	t.Parallel()

	owner := idOf("f1", "A", 1)
	caller := idOf("f2", "A", 1) // different handle, same session+pid
	rec := newRecord(Range{0, 100}, Exclusive, owner, DeadlineNone{})

	status := checkAccess(caller, 0, 100, WriteData, []*Record{rec})
	if status != Success {
		t.Fatalf("checkAccess() = %v, want Success for same session+pid regardless of file handle", status)
	}
}

func TestCheckAccess_ForeignExclusiveConflicts(t *testing.T) {
	t.Parallel()

	owner := idOf("f", "A", 1)
	caller := idOf("f", "B", 2)
	rec := newRecord(Range{0, 100}, Exclusive, owner, DeadlineNone{})

	status := checkAccess(caller, 0, 100, ReadData, []*Record{rec})
	if status != FileLockConflict {
		t.Fatalf("checkAccess() = %v, want FileLockConflict against a foreign EXCLUSIVE lock", status)
	}
}

func TestCheckAccess_NonOverlappingIsCompatible(t *testing.T) {
	t.Parallel()

	owner := idOf("f", "A", 1)
	caller := idOf("f", "B", 2)
	rec := newRecord(Range{0, 10}, Exclusive, owner, DeadlineNone{})

	status := checkAccess(caller, 10, 10, WriteData, []*Record{rec})
	if status != Success {
		t.Fatalf("checkAccess() = %v, want Success for a disjoint range", status)
	}
}
