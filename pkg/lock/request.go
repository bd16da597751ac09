package lock

import "sync"

// requestState mirrors the external request's cancellable state machine:
// ACTIVE, WAITING, CANCELED.
type requestState int32

const (
	requestActive requestState = iota
	requestWaiting
	requestCanceled
)

// Request is the external collaborator the core consumes: an identity, a
// cancellable state transitioned under its own mutex, and the record it is
// currently parked on. Protocol cancel or session teardown calls Cancel.
//
// Lock ordering: Request's mutex is always the innermost lock — never
// acquire it before a Record's mutex or the file-list gate.
type Request struct {
	Identity Identity

	mu       sync.Mutex
	state    requestState
	awaiting *Record
}

// NewRequest creates an ACTIVE request for the given identity.
func NewRequest(id Identity) *Request {
	return &Request{Identity: id, state: requestActive}
}

// Cancel transitions the request to CANCELED and, if it is currently parked
// on a record, broadcasts that record's condition so the wait wakes and
// observes CANCELED.
func (req *Request) Cancel() {
	req.mu.Lock()
	already := req.state == requestCanceled
	req.state = requestCanceled
	blocker := req.awaiting
	req.mu.Unlock()

	if already || blocker == nil {
		return
	}

	blocker.mu.Lock()
	blocker.cond.Broadcast()
	blocker.mu.Unlock()
}

// beginWait attempts to transition ACTIVE -> WAITING and record the blocker
// being awaited. Returns false if the request was already CANCELED, in which
// case the caller must return Cancelled without parking.
func (req *Request) beginWait(blocker *Record) bool {
	req.mu.Lock()
	defer req.mu.Unlock()
	if req.state == requestCanceled {
		return false
	}
	req.state = requestWaiting
	req.awaiting = blocker
	return true
}

// endWait restores ACTIVE unless the request was canceled while parked, in
// which case it reports that and leaves the state CANCELED.
func (req *Request) endWait() (canceled bool) {
	req.mu.Lock()
	defer req.mu.Unlock()
	req.awaiting = nil
	if req.state == requestCanceled {
		return true
	}
	req.state = requestActive
	return false
}

func (req *Request) isCanceled() bool {
	req.mu.Lock()
	defer req.mu.Unlock()
	return req.state == requestCanceled
}

// markTimedOut transitions a still-WAITING request straight to CANCELED
// without broadcasting, for use by a waiter that has already woken on its
// own deadline and is about to call endWait. A no-op once CANCELED.
func (req *Request) markTimedOut() {
	req.mu.Lock()
	defer req.mu.Unlock()
	if req.state == requestWaiting {
		req.state = requestCanceled
	}
}
