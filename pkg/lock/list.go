package lock

import (
	"sync"
	"time"
)

// FileNode is the external collaborator that owns a lock list: the
// server-side object representing an open file. The lock core only ever
// asks whether it is still open.
type FileNode interface {
	IsOpen() bool
}

// List is the per-file ordered collection of GRANTED records,
// serialized by a single readers-writer gate. Grant/unlock take the gate as
// writer; access checks take it as reader. List itself never blocks: the
// coordinator (Manager) is the only layer that parks a goroutine, and it
// does so only after releasing this gate.
type List struct {
	gate    sync.RWMutex
	node    FileNode
	records []*Record
}

// NewList creates an empty lock list for the given file node.
func NewList(node FileNode) *List {
	return &List{node: node}
}

// recordsLocked returns a snapshot of the granted records. Caller must hold
// the gate (reader or writer).
func (l *List) recordsLocked() []*Record {
	out := make([]*Record, len(l.records))
	copy(out, l.records)
	return out
}

// insertLocked appends r to the tail and marks it GRANTED. Caller must hold
// the gate as writer.
func (l *List) insertLocked(r *Record) {
	r.setState(recordGranted)
	r.grantedAt = time.Now()
	l.records = append(l.records, r)
}

// removeLocked removes r by identity. Caller must hold the gate as writer.
func (l *List) removeLocked(r *Record) bool {
	for i, x := range l.records {
		if x == r {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return true
		}
	}
	return false
}

// detachAllLocked removes every record whose identity carries the given
// file handle and returns them, in list order. Caller must hold the gate as
// writer; detach under the gate, destroy outside it.
func (l *List) detachAllLocked(handle string) []*Record {
	var detached []*Record
	kept := l.records[:0]
	for _, r := range l.records {
		if r.Identity.FileHandle == handle {
			detached = append(detached, r)
		} else {
			kept = append(kept, r)
		}
	}
	l.records = kept
	return detached
}

// Records returns a snapshot of the granted records, taking the reader gate
// itself. For callers that don't already hold the gate.
func (l *List) Records() []*Record {
	l.gate.RLock()
	defer l.gate.RUnlock()
	return l.recordsLocked()
}

// Grant installs r as GRANTED at the tail, taking the writer gate itself.
// For callers that don't need the gate held across a wider operation.
func (l *List) Grant(r *Record) {
	l.gate.Lock()
	defer l.gate.Unlock()
	l.insertLocked(r)
}

// Detach removes and returns every record for handle, taking the writer
// gate itself.
func (l *List) Detach(handle string) []*Record {
	l.gate.Lock()
	defer l.gate.Unlock()
	return l.detachAllLocked(handle)
}
