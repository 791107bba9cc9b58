// Package stub is an in-memory engine.Transport test double, modeled on
// the ring-buffer driver stub used for host-side protocol testing
// elsewhere in this codebase's lineage.
package stub

import (
	"context"
	"sync"
)

// Transport records every write and baud-rate change it receives. Tests
// feed a Session directly via engine.Session.Feed; this stub only
// captures the outbound direction.
type Transport struct {
	mu      sync.Mutex
	written [][]byte
	bauds   []int
	flushes int
}

// New returns an empty Transport.
func New() *Transport { return &Transport{} }

func (t *Transport) Write(_ context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	t.written = append(t.written, frame)
	return nil
}

func (t *Transport) SetBaud(baud int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bauds = append(t.bauds, baud)
	return nil
}

func (t *Transport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushes++
	return nil
}

// Written returns a copy of every frame handed to Write, in order.
func (t *Transport) Written() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.written))
	copy(out, t.written)
	return out
}

// Bauds returns every baud rate SetBaud was called with, in order.
func (t *Transport) Bauds() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int, len(t.bauds))
	copy(out, t.bauds)
	return out
}
