package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	open bool
}

func (n *fakeNode) IsOpen() bool { return n.open }

func TestList_GrantAndRecords(t *testing.T) {
	t.Parallel()

	l := NewList(&fakeNode{open: true})
	r1 := newTestBlocker()
	r2 := newTestBlocker()

	l.Grant(r1)
	l.Grant(r2)

	got := l.Records()
	require.Len(t, got, 2)
	assert.Equal(t, recordGranted, got[0].State())
	assert.Equal(t, recordGranted, got[1].State())
}

func TestList_RemoveLocked(t *testing.T) {
	t.Parallel()

	l := NewList(&fakeNode{open: true})
	r1 := newTestBlocker()
	r2 := newTestBlocker()
	l.Grant(r1)
	l.Grant(r2)

	l.gate.Lock()
	ok := l.removeLocked(r1)
	l.gate.Unlock()

	assert.True(t, ok)
	assert.Equal(t, []*Record{r2}, l.Records())
}

func TestList_RemoveLocked_MissingReturnsFalse(t *testing.T) {
	t.Parallel()

	l := NewList(&fakeNode{open: true})
	l.gate.Lock()
	ok := l.removeLocked(newTestBlocker())
	l.gate.Unlock()

	assert.False(t, ok)
}

func TestList_Detach_OnlyMatchingHandle(t *testing.T) {
	t.Parallel()

	l := NewList(&fakeNode{open: true})
	a := newRecord(Range{Start: 0, Length: 1}, Exclusive, Identity{FileHandle: "a"}, DeadlineNone{})
	b := newRecord(Range{Start: 0, Length: 1}, Exclusive, Identity{FileHandle: "b"}, DeadlineNone{})
	l.Grant(a)
	l.Grant(b)

	detached := l.Detach("a")

	assert.Equal(t, []*Record{a}, detached)
	assert.Equal(t, []*Record{b}, l.Records())
}

func TestList_Records_ReturnsSnapshotCopy(t *testing.T) {
	t.Parallel()

	l := NewList(&fakeNode{open: true})
	l.Grant(newTestBlocker())

	snap := l.Records()
	snap[0] = nil // mutating the returned slice must not affect the list

	again := l.Records()
	assert.NotNil(t, again[0])
}
