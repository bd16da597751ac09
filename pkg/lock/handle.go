package lock

// FileHandle is an opaque, server-assigned identifier for an open file,
// supplied by the caller and never parsed by this package.
type FileHandle string
