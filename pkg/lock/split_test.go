package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLock_FullCoverageLeavesNothing(t *testing.T) {
	t.Parallel()

	got := SplitLock(Range{Start: 10, Length: 20}, 0, 100)
	assert.Nil(t, got)
}

func TestSplitLock_TrimsLeadingEdge(t *testing.T) {
	t.Parallel()

	got := SplitLock(Range{Start: 0, Length: 100}, 0, 40)
	assert.Equal(t, []Range{{Start: 40, Length: 60}}, got)
}

func TestSplitLock_TrimsTrailingEdge(t *testing.T) {
	t.Parallel()

	got := SplitLock(Range{Start: 0, Length: 100}, 60, 40)
	assert.Equal(t, []Range{{Start: 0, Length: 60}}, got)
}

func TestSplitLock_CarvesHoleInMiddle(t *testing.T) {
	t.Parallel()

	got := SplitLock(Range{Start: 0, Length: 100}, 40, 20)
	assert.Equal(t, []Range{{Start: 0, Length: 40}, {Start: 60, Length: 40}}, got)
}

func TestSplitLock_ZeroLengthRemovalIsNoop(t *testing.T) {
	t.Parallel()

	held := Range{Start: 10, Length: 50}
	got := SplitLock(held, 20, 0)
	assert.Equal(t, []Range{held}, got)
}

func TestMergeLocks_AdjacentSameOwnerSameType(t *testing.T) {
	t.Parallel()

	id := Identity{FileHandle: "f", SessionID: "A", ProcessID: 1}
	a := newRecord(Range{Start: 0, Length: 10}, Shared, id, DeadlineNone{})
	b := newRecord(Range{Start: 10, Length: 10}, Shared, id, DeadlineNone{})

	merged := MergeLocks([]*Record{a, b})

	if assertLenOne(t, merged) {
		assert.Equal(t, Range{Start: 0, Length: 20}, merged[0].Range)
	}
}

func TestMergeLocks_DisjointRangesStaySeparate(t *testing.T) {
	t.Parallel()

	id := Identity{FileHandle: "f", SessionID: "A", ProcessID: 1}
	a := newRecord(Range{Start: 0, Length: 10}, Shared, id, DeadlineNone{})
	b := newRecord(Range{Start: 100, Length: 10}, Shared, id, DeadlineNone{})

	merged := MergeLocks([]*Record{a, b})
	assert.Len(t, merged, 2)
}

func TestMergeLocks_DifferentOwnersNeverMerge(t *testing.T) {
	t.Parallel()

	a := newRecord(Range{Start: 0, Length: 10}, Shared, Identity{FileHandle: "f", SessionID: "A"}, DeadlineNone{})
	b := newRecord(Range{Start: 10, Length: 10}, Shared, Identity{FileHandle: "f", SessionID: "B"}, DeadlineNone{})

	merged := MergeLocks([]*Record{a, b})
	assert.Len(t, merged, 2)
}

func TestMergeLocks_FewerThanTwoIsPassthrough(t *testing.T) {
	t.Parallel()

	a := newRecord(Range{Start: 0, Length: 10}, Shared, Identity{FileHandle: "f"}, DeadlineNone{})
	assert.Equal(t, []*Record{a}, MergeLocks([]*Record{a}))
	assert.Nil(t, MergeLocks(nil))
}

func assertLenOne(t *testing.T, records []*Record) bool {
	t.Helper()
	return assert.Len(t, records, 1)
}

func TestMergeLocks_MergedRecordHasOwnSyncPrimitives(t *testing.T) {
	t.Parallel()

	id := Identity{FileHandle: "f", SessionID: "A", ProcessID: 1}
	a := newRecord(Range{Start: 0, Length: 10}, Shared, id, DeadlineNone{})
	b := newRecord(Range{Start: 10, Length: 10}, Shared, id, DeadlineNone{})

	merged := MergeLocks([]*Record{a, b})
	require.Len(t, merged, 1)

	// A struct-copied Record would alias a's mutex/cond/dependents map;
	// park+drain on the merged record must not touch a at all.
	req := NewRequest(id)
	merged[0].park(req)
	assert.Len(t, merged[0].Dependents(), 1)
	assert.Empty(t, a.Dependents())

	merged[0].unpark(req)
	merged[0].drain()
	assert.Equal(t, recordPending, a.State())
}
