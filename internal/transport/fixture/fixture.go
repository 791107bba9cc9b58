// Package fixture is an engine.Transport that plays back a canned sensor
// handshake instead of talking to a real UART line, for running the
// engine and its listeners against the fixture catalog without
// hardware.
package fixture

import (
	"context"
	"sync"
	"time"
)

// Transport replays a fixed handshake byte stream into feed once Start
// is called, then accepts (and discards) further writes like a real
// sensor would while idling between DATA frames.
type Transport struct {
	mu        sync.Mutex
	baud      int
	handshake []byte
	feed      func([]byte)
}

// New returns a Transport that will deliver handshake to a feed function
// given to Start. The feed is supplied at Start time, not construction,
// since it is usually a Session's Feed method and the Session needs this
// Transport to exist first.
func New(handshake []byte) *Transport {
	return &Transport{handshake: handshake}
}

// Start delivers the handshake to feed after a short delay, mimicking a
// sensor that takes a moment to begin talking after power-up.
func (t *Transport) Start(feed func([]byte)) {
	go func() {
		time.Sleep(5 * time.Millisecond)
		feed(t.handshake)
	}()
}

func (t *Transport) Write(_ context.Context, _ []byte) error {
	return nil
}

func (t *Transport) SetBaud(baud int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baud = baud
	return nil
}

func (t *Transport) Flush() error {
	return nil
}

// Baud returns the last baud rate SetBaud was called with.
func (t *Transport) Baud() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baud
}
