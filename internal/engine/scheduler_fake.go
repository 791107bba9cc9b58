package engine

import (
	"sync"
	"time"
)

// FakeScheduler is a deterministic Scheduler test double. Nothing here
// touches a real clock; tests advance time explicitly by calling FireNext
// or FireAll, so handshake and keep-alive timing can be exercised without
// sleeping or racing a goroutine.
type FakeScheduler struct {
	mu      sync.Mutex
	pending []*fakePending
}

type fakePending struct {
	delay    time.Duration
	action   func()
	canceled bool
	fired    bool
}

func (p *fakePending) Cancel() { p.canceled = true }

// NewFakeScheduler returns an empty FakeScheduler.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

func (f *FakeScheduler) ScheduleOnce(delay time.Duration, action func()) CancelHandle {
	p := &fakePending{delay: delay, action: action}
	f.mu.Lock()
	f.pending = append(f.pending, p)
	f.mu.Unlock()
	return p
}

// Pending reports how many scheduled actions have not fired or been
// canceled.
func (f *FakeScheduler) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.pending {
		if !p.fired && !p.canceled {
			n++
		}
	}
	return n
}

// FireNext runs the oldest pending, non-canceled action. It reports
// whether there was one to run.
func (f *FakeScheduler) FireNext() bool {
	f.mu.Lock()
	var target *fakePending
	for _, p := range f.pending {
		if p.canceled || p.fired {
			continue
		}
		target = p
		p.fired = true
		break
	}
	f.mu.Unlock()

	if target == nil {
		return false
	}
	target.action()
	return true
}

// FireAll runs every pending action in scheduling order, including any
// rescheduling produced along the way, until none remain.
func (f *FakeScheduler) FireAll() {
	for f.FireNext() {
	}
}
