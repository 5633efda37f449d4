package types

// SessionID identifies one persistent client connection. IDs are
// allocated from a single process-wide atomic counter, so they are
// unique for the lifetime of the process.
type SessionID uint32
