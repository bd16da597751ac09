package lock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// recordState is the lifecycle state of a Record.
type recordState int32

const (
	recordPending recordState = iota
	recordGranted
	recordReleasing
)

func (s recordState) String() string {
	switch s {
	case recordPending:
		return "pending"
	case recordGranted:
		return "granted"
	case recordReleasing:
		return "releasing"
	default:
		return "unknown"
	}
}

// Record is the descriptor of one granted or pending lock: immutable range,
// type, and identity, plus the mutable lifecycle state and conflict graph
// that the coordinator manages.
//
// Lock ordering: a caller that holds both the file list's gate and a
// Record's mutex must take the list gate first. The request mutex (owned by
// Request, not Record) is always innermost.
type Record struct {
	ID       string
	Range    Range
	Type     LockType
	Identity Identity
	Deadline Deadline

	state     atomic.Int32
	grantedAt time.Time

	mu         sync.Mutex
	cond       *sync.Cond
	dependents map[*Request]struct{}

	// blockedBy is advisory only: cleared on wake, never consulted for
	// correctness. The authoritative relationship is dependents membership.
	blockedBy atomic.Pointer[Record]
}

// newRecord allocates a PENDING record for the given range/type/identity.
func newRecord(rng Range, typ LockType, id Identity, deadline Deadline) *Record {
	r := &Record{
		ID:         uuid.New().String(),
		Range:      rng,
		Type:       typ,
		Identity:   id,
		Deadline:   deadline,
		dependents: make(map[*Request]struct{}),
	}
	r.state.Store(int32(recordPending))
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *Record) State() recordState {
	return recordState(r.state.Load())
}

func (r *Record) setState(s recordState) {
	r.state.Store(int32(s))
}

// BlockedBy returns the record this one is advisorily waiting on, if any.
func (r *Record) BlockedBy() *Record {
	return r.blockedBy.Load()
}

func (r *Record) setBlockedBy(blocker *Record) {
	r.blockedBy.Store(blocker)
}

func (r *Record) clearBlockedBy() {
	r.blockedBy.Store(nil)
}

// park inserts req into this record's dependents under the record's mutex.
// Caller must already hold the file-list gate; this acquires only the
// record mutex, respecting the list-gate-then-record-mutex order.
func (r *Record) park(req *Request) {
	r.mu.Lock()
	r.dependents[req] = struct{}{}
	r.mu.Unlock()
}

// unpark removes req from this record's dependents. If the set becomes
// empty it broadcasts, waking a concurrent drain.
func (r *Record) unpark(req *Request) {
	r.mu.Lock()
	delete(r.dependents, req)
	if len(r.dependents) == 0 {
		r.cond.Broadcast()
	}
	r.mu.Unlock()
}

// Dependents returns a snapshot of the identities currently parked on this
// record, for observability.
func (r *Record) Dependents() []Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Identity, 0, len(r.dependents))
	for req := range r.dependents {
		out = append(out, req.Identity)
	}
	return out
}

func (r *Record) dependentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dependents)
}

// drain broadcasts this record's condition and blocks until dependents has
// emptied. Must be called with the file-list gate already released:
// dependents remove themselves through unpark, which takes only this
// record's mutex, and then re-take the list gate on their own wake path.
func (r *Record) drain() {
	r.mu.Lock()
	r.cond.Broadcast()
	for len(r.dependents) > 0 {
		r.cond.Wait()
	}
	r.mu.Unlock()
}
