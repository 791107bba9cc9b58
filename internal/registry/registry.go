// Package registry is the in-memory realization of the sensor
// registry/attribute-surface collaborator engine.Session talks to
// through the engine.Publisher interface. It fans attach, detach,
// mode-change, and sample notifications out to every registered
// Listener.
package registry

import (
	"sync"

	"github.com/legoev3/uartengine/internal/engine"
)

// Listener observes session lifecycle and sample events. Implementations
// must return quickly: they run on the engine's event-loop goroutine.
type Listener interface {
	OnAttach(h *engine.Handle)
	OnDetach(h *engine.Handle)
	OnModeChange(h *engine.Handle, mode uint8)
	OnSample(h *engine.Handle, mode uint8)
}

// Registry implements engine.Publisher by fanning out to every
// registered Listener, and keeps track of which handles are currently
// attached so callers (the debug console, a status endpoint) can look
// one up without owning the Session directly.
type Registry struct {
	mu        sync.Mutex
	listeners []Listener
	attached  map[*engine.Handle]struct{}
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{attached: make(map[*engine.Handle]struct{})}
}

// AddListener registers l to receive future notifications. Safe to call
// concurrently with other AddListener calls and with notifications: each
// notification iterates over a snapshot of the listeners taken under the
// lock, so a notification already in flight does not reach l.
func (r *Registry) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Handles returns a snapshot of every currently attached sensor handle.
func (r *Registry) Handles() []*engine.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*engine.Handle, 0, len(r.attached))
	for h := range r.attached {
		out = append(out, h)
	}
	return out
}

func (r *Registry) snapshotListeners() []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Listener, len(r.listeners))
	copy(out, r.listeners)
	return out
}

func (r *Registry) OnAttach(h *engine.Handle) {
	r.mu.Lock()
	r.attached[h] = struct{}{}
	r.mu.Unlock()
	for _, l := range r.snapshotListeners() {
		l.OnAttach(h)
	}
}

func (r *Registry) OnDetach(h *engine.Handle) {
	r.mu.Lock()
	delete(r.attached, h)
	r.mu.Unlock()
	for _, l := range r.snapshotListeners() {
		l.OnDetach(h)
	}
}

func (r *Registry) OnModeChange(h *engine.Handle, mode uint8) {
	for _, l := range r.snapshotListeners() {
		l.OnModeChange(h, mode)
	}
}

func (r *Registry) OnSample(h *engine.Handle, mode uint8) {
	for _, l := range r.snapshotListeners() {
		l.OnSample(h, mode)
	}
}
