package lock

// Identity is the opaque tuple that determines "same owner" for the SMB
// compatibility rules of the rule engine. It is compared only for equality
// and never parsed.
type Identity struct {
	FileHandle string
	SessionID  string
	ProcessID  uint32
	UserID     uint32
}

// Equal reports whether two identities denote the same owner.
func (id Identity) Equal(other Identity) bool {
	return id == other
}

// sameSessionAndProcess reports whether two identities share a session and
// process, regardless of file handle — the carve-out used by checkAccess.
func (id Identity) sameSessionAndProcess(other Identity) bool {
	return id.SessionID == other.SessionID && id.ProcessID == other.ProcessID
}

// LockType distinguishes shared (read) locks, which may coexist, from
// exclusive (write) locks, which conflict with every overlapping lock except
// a shared lock requested under the same identity.
type LockType int

const (
	Shared LockType = iota
	Exclusive
)

func (t LockType) String() string {
	switch t {
	case Shared:
		return "shared"
	case Exclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// Access is the bitmask of I/O operations checkAccess evaluates against the
// granted lock list. desired must be non-empty.
type Access uint8

const (
	ReadData Access = 1 << iota
	WriteData
)
