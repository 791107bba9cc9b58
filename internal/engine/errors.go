package engine

import "errors"

var (
	// ErrInvalidMode is returned by SetMode when the requested index is not
	// a mode the attached sensor reported during its handshake.
	ErrInvalidMode = errors.New("engine: mode index out of range")

	// ErrPayloadTooLarge is returned by Write when the caller's payload is
	// empty or exceeds the 32-byte capacity of a single WRITE frame.
	ErrPayloadTooLarge = errors.New("engine: write payload exceeds frame capacity")

	// ErrNotRunning is returned by operations that require the session to
	// have completed its handshake and be exchanging DATA frames.
	ErrNotRunning = errors.New("engine: session is not in the running phase")

	// ErrClosed is returned by operations attempted on a session whose
	// Close has already been called.
	ErrClosed = errors.New("engine: session is closed")
)

// errFrame builds a protocol-violation error whose text becomes
// last_error verbatim when it triggers a resync.
func errFrame(msg string) error { return errors.New(msg) }
