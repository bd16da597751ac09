package lock

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/rangelock/internal/logger"
	"github.com/marmos91/rangelock/pkg/errors"
)

// windowsOffsetHeuristic is the legacy start-offset threshold Windows
// clients are known to probe past when polling a lock they expect to be
// denied; crossing it is treated as evidence the caller wants the stricter
// FILE_LOCK_CONFLICT status rather than a bare LOCK_NOT_GRANTED.
const windowsOffsetHeuristic = 0xEF000000

// handleMarker is the last-failed-offset bookkeeping the error remapper
// consults, scoped to a single open handle: two handles opened against the
// same file node keep independent markers, and the marker is guarded by its
// own mutex rather than the node's list gate.
type handleMarker struct {
	mu               sync.Mutex
	lastFailedOffset uint64
	lastFailedValid  bool
}

// Manager is the wait/wake coordinator: it owns the registry mapping each
// file node to its shared List, plus a registry of per-handle
// last-failed-offset markers, and is the only type in this package that
// ever parks a goroutine.
//
// Callers that can block (any Acquire with a non-zero, non-NoWait timeout)
// must not hold a session-wide gate across the call; if one exists in the
// caller's domain, release it before calling and re-acquire it after. This
// package has no notion of a session gate at all.
type Manager struct {
	cfg     Config
	metrics *Metrics

	mu      sync.RWMutex
	nodes   map[FileNode]*List
	markers map[FileHandle]*handleMarker
}

// NewManager creates a Manager with the given config and metrics. metrics
// may be nil, in which case observations are silently dropped.
func NewManager(cfg Config, metrics *Metrics) *Manager {
	return &Manager{
		cfg:     cfg,
		metrics: metrics,
		nodes:   make(map[FileNode]*List),
		markers: make(map[FileHandle]*handleMarker),
	}
}

// Register returns the List shared by every handle opened against node,
// creating it on first use. node is compared with ==, so every Open of the
// same underlying file must present the same node value — typically a
// pointer to the server's open-file-table entry — or two handles of one
// file end up on separate lists and can never conflict with each other,
// defeating the purpose of the lock core.
func (m *Manager) Register(node FileNode) *List {
	m.mu.Lock()
	defer m.mu.Unlock()
	if list, ok := m.nodes[node]; ok {
		return list
	}
	list := NewList(node)
	m.nodes[node] = list
	return list
}

// Forget drops node's list once every handle opened against it has closed
// and DestroyByHandle has run for each. Forget does not drain the List
// itself.
func (m *Manager) Forget(node FileNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, node)
}

func (m *Manager) list(node FileNode) *List {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodes[node]
}

// ForgetHandle drops handle's last-failed-offset marker once the handle has
// closed. Safe to call even for a handle that never failed an acquire.
func (m *Manager) ForgetHandle(handle FileHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.markers, handle)
}

func (m *Manager) marker(handle FileHandle) *handleMarker {
	m.mu.Lock()
	defer m.mu.Unlock()
	mk, ok := m.markers[handle]
	if !ok {
		mk = &handleMarker{}
		m.markers[handle] = mk
	}
	return mk
}

// Acquire runs the grant coordinator loop for a single lock request: it
// allocates a PENDING record, repeatedly evaluates the rule engine against
// node's list, and either installs the record, fails outright, or parks on
// the conflicting record and retries once woken.
func (m *Manager) Acquire(ctx context.Context, req *Request, node FileNode, handle FileHandle, start, length uint64, typ LockType, timeout time.Duration) (Status, error) {
	list := m.list(node)
	if list == nil {
		return RangeNotLocked, errors.NewInvalidHandleError(string(handle))
	}

	deadline := NewDeadline(time.Now(), timeout)
	rec := newRecord(Range{Start: start, Length: length}, typ, req.Identity, deadline)
	owner := req.Identity.SessionID

	list.gate.Lock()
	for attempt := 1; ; attempt++ {
		if !list.node.IsOpen() {
			list.gate.Unlock()
			return RangeNotLocked, errors.NewInvalidHandleError(string(handle))
		}

		status, blocker := tryGrant(rec, list.recordsLocked())

		if status == Success {
			if m.cfg.MaxLocksPerFile > 0 && len(list.records) >= m.cfg.MaxLocksPerFile {
				current := len(list.records)
				list.gate.Unlock()
				m.metrics.observeLimitHit("locks_per_file")
				return LockLimitExceeded, errors.NewLockLimitExceededError("locks_per_file", current, m.cfg.MaxLocksPerFile)
			}
			list.insertLocked(rec)
			list.gate.Unlock()
			m.metrics.observeGrant(typ)
			logger.Debug("lock granted",
				logger.Operation("acquire"), logger.Handle(string(handle)), logger.LockType(typ.String()),
				logger.LockOffset(start), logger.LockLength(length),
				logger.SessionID(req.Identity.SessionID), logger.UID(req.Identity.UserID),
				logger.LockOwner(owner), logger.Attempt(attempt))
			return Success, nil
		}

		// status == LockNotGranted: candidate conflicts with blocker.
		if timeout == NoWait {
			list.gate.Unlock()
			final := m.remap(m.marker(handle), LockNotGranted, start, false)
			m.metrics.observeDenied(final)
			err := statusErr(final, string(handle))
			logger.Debug("lock denied",
				logger.Operation("acquire"), logger.Handle(string(handle)), logger.LockOwner(owner),
				logger.ErrorCode(final.String()), logger.Err(err))
			return final, err
		}

		if m.cfg.MaxWaitersPerLock > 0 && blocker.dependentCount() >= m.cfg.MaxWaitersPerLock {
			waiters := blocker.dependentCount()
			list.gate.Unlock()
			m.metrics.observeLimitHit("waiters_per_lock")
			return LockLimitExceeded, errors.NewLockLimitExceededError("waiters_per_lock", waiters, m.cfg.MaxWaitersPerLock)
		}

		waitStart := time.Now()
		outcome := m.waitOn(ctx, req, rec, blocker, list)
		waited := time.Since(waitStart)
		m.metrics.observeBlockingDuration(waited)
		m.metrics.setBlocked(handle, blocker.dependentCount())

		if outcome == Cancelled {
			list.gate.Unlock()
			final := m.remap(m.marker(handle), Cancelled, start, true)
			if at, ok := rec.Deadline.(DeadlineAt); ok && !time.Now().Before(at.T) {
				m.metrics.observeTimeout()
			} else {
				m.metrics.observeCancelled()
			}
			m.metrics.observeDenied(final)
			err := statusErr(final, string(handle))
			logger.Debug("lock wait ended without a grant",
				logger.Operation("acquire"), logger.Handle(string(handle)), logger.LockOwner(owner),
				logger.DurationMs(float64(waited.Milliseconds())), logger.Attempt(attempt),
				logger.ErrorCode(final.String()), logger.Err(err))
			return final, err
		}

		// outcome == Success: blocker released or was destroyed. The list
		// gate is held again; loop back and re-run tryGrant, since another
		// waiter may have won the race in the meantime.
		rec.clearBlockedBy()
	}
}

// waitOn parks req on blocker until the blocker releases, req is cancelled,
// or the record's deadline passes, then resolves to Success or Cancelled.
//
// Caller must hold list's gate as writer on entry; waitOn always returns
// with the gate held again, regardless of outcome.
func (m *Manager) waitOn(ctx context.Context, req *Request, pending, blocker *Record, list *List) Status {
	if !req.beginWait(blocker) {
		list.gate.Unlock()
		list.gate.Lock()
		return Cancelled
	}

	// blocker's mutex is held from registration until cond.Wait releases it,
	// so a release or Cancel broadcast cannot slip in unseen.
	blocker.mu.Lock()
	blocker.dependents[req] = struct{}{}
	pending.setBlockedBy(blocker)

	list.gate.Unlock()

	var watcherDone chan struct{}
	if ctx.Done() != nil {
		watcherDone = make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				req.Cancel()
			case <-watcherDone:
			}
		}()
	}

	if req.isCanceled() {
		// Cancel ran before blocker's mutex was taken above; its broadcast
		// reached no waiter, so there is nothing to wait for.
	} else if at, ok := pending.Deadline.(DeadlineAt); ok {
		timer := time.AfterFunc(time.Until(at.T), func() {
			blocker.mu.Lock()
			blocker.cond.Broadcast()
			blocker.mu.Unlock()
		})
		blocker.cond.Wait()
		timer.Stop()
		if !time.Now().Before(at.T) {
			req.markTimedOut()
		}
	} else {
		blocker.cond.Wait()
	}
	blocker.mu.Unlock()

	blocker.unpark(req)

	if watcherDone != nil {
		close(watcherDone)
	}

	list.gate.Lock()

	if req.endWait() {
		return Cancelled
	}
	return Success
}

// remap applies the error-remapping rules to a would-be LockNotGranted or
// timeout/cancel-flavored Cancelled outcome, and unconditionally refreshes
// mk's last-failed-offset marker regardless of the outcome.
func (m *Manager) remap(mk *handleMarker, status Status, start uint64, timeoutNonZero bool) Status {
	mk.mu.Lock()
	matchesLastFailed := mk.lastFailedValid && mk.lastFailedOffset == start
	mk.lastFailedOffset = start
	mk.lastFailedValid = true
	mk.mu.Unlock()

	if status != LockNotGranted && status != Cancelled {
		return status
	}

	windowsHeuristic := start > windowsOffsetHeuristic && start&0x8000000000000000 == 0
	if timeoutNonZero || windowsHeuristic || matchesLastFailed {
		return FileLockConflict
	}
	return status
}

// Release removes the record with the exact (start, length, identity) from
// node's list and destroys it, waking any parked waiters.
func (m *Manager) Release(req *Request, node FileNode, start, length uint64) (Status, error) {
	list := m.list(node)
	if list == nil {
		return RangeNotLocked, errors.NewInvalidHandleError(req.Identity.FileHandle)
	}

	list.gate.Lock()
	rec, status := matchUnlock(start, length, req.Identity, list.recordsLocked())
	if status != Success {
		list.gate.Unlock()
		return status, errors.NewLockNotFoundError(req.Identity.FileHandle)
	}
	list.removeLocked(rec)
	list.gate.Unlock()

	m.metrics.observeRelease(rec.Type, time.Since(rec.grantedAt))
	logger.Debug("lock released",
		logger.Operation("release"), logger.Handle(req.Identity.FileHandle),
		logger.LockOffset(start), logger.LockLength(length),
		logger.RequestID(strconv.FormatUint(uint64(req.Identity.ProcessID), 10)))

	m.destroy(rec)
	return Success, nil
}

// destroy marks rec RELEASING, then wakes every waiter parked on rec and
// blocks until they have all removed themselves. There is no explicit free
// step beyond that: the garbage collector reclaims rec once the last
// dependent drops its reference.
func (m *Manager) destroy(rec *Record) {
	rec.setState(recordReleasing)
	rec.drain()
}

// DestroyByHandle detaches every record in node's list whose identity
// carries handle under the list gate, then destroys each one outside the
// gate — so a waiter that needs the gate during its own wake protocol never
// deadlocks against this call.
func (m *Manager) DestroyByHandle(node FileNode, handle FileHandle) {
	list := m.list(node)
	if list == nil {
		return
	}

	list.gate.Lock()
	detached := list.detachAllLocked(string(handle))
	list.gate.Unlock()

	for _, rec := range detached {
		m.destroy(rec)
	}
	logger.Debug("locks destroyed by handle close",
		logger.Operation("destroy_by_handle"), logger.Handle(string(handle)), logger.Waiters(len(detached)))
}

// CheckAccess reports whether a pending I/O for desired access on
// (start, length) is compatible with node's granted list.
func (m *Manager) CheckAccess(req *Request, node FileNode, start, length uint64, desired Access) (Status, error) {
	list := m.list(node)
	if list == nil {
		return RangeNotLocked, errors.NewInvalidHandleError(req.Identity.FileHandle)
	}

	list.gate.RLock()
	status := checkAccess(req.Identity, start, length, desired, list.recordsLocked())
	list.gate.RUnlock()

	if status != Success {
		return status, errors.NewLockConflictError(req.Identity.FileHandle, "access denied")
	}
	return status, nil
}

// FileStats summarizes one registered file node's lock table.
type FileStats struct {
	GrantedCount int
	WaiterCount  int
}

// Stats is a point-in-time snapshot of the lock table across all
// registered file nodes, for operators and diagnostics endpoints.
type Stats struct {
	Files []FileStats
}

// Stats returns a snapshot of every registered file node's lock table. It
// takes each node's reader gate briefly and is safe to call concurrently
// with ordinary lock traffic.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	lists := make([]*List, 0, len(m.nodes))
	for _, list := range m.nodes {
		lists = append(lists, list)
	}
	m.mu.RUnlock()

	out := Stats{Files: make([]FileStats, 0, len(lists))}
	for _, list := range lists {
		records := list.Records()
		waiters := 0
		for _, r := range records {
			waiters += r.dependentCount()
		}
		out.Files = append(out.Files, FileStats{
			GrantedCount: len(records),
			WaiterCount:  waiters,
		})
	}
	return out
}

// statusErr maps a Status to the coded error the server-facing boundary
// translates into an SMB status code.
func statusErr(status Status, path string) error {
	switch status {
	case Success:
		return nil
	case LockNotGranted:
		return errors.NewLockConflictError(path, "lock not granted")
	case FileLockConflict:
		return errors.NewLockConflictError(path, "file lock conflict")
	case RangeNotLocked:
		return errors.NewLockNotFoundError(path)
	case Cancelled:
		return errors.NewCancelledError(path)
	case LockLimitExceeded:
		return errors.NewLockLimitExceededError("", 0, 0)
	default:
		return nil
	}
}
