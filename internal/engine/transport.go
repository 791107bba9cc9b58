package engine

import "context"

// Transport is the serial line driver the Session writes to. Bytes read
// from the line are delivered the other way, via Session.Feed, by
// whatever owns the transport's read loop.
type Transport interface {
	Write(ctx context.Context, data []byte) error
	SetBaud(baud int) error
	Flush() error
}
