package engine

import "time"

// CancelHandle cancels a scheduled action. Canceling twice, or canceling
// after the action has already fired, is a no-op.
type CancelHandle interface {
	Cancel()
}

// Scheduler abstracts delayed work so the event loop never calls
// time.AfterFunc directly, and so tests can drive handshake and
// keep-alive timing deterministically instead of sleeping.
type Scheduler interface {
	// ScheduleOnce runs action once, after delay.
	ScheduleOnce(delay time.Duration, action func()) CancelHandle
}

type realScheduler struct{}

// NewScheduler returns a Scheduler backed by the standard library's timers.
func NewScheduler() Scheduler { return realScheduler{} }

type timerHandle struct {
	timer *time.Timer
}

func (h *timerHandle) Cancel() {
	if h.timer != nil {
		h.timer.Stop()
	}
}

func (realScheduler) ScheduleOnce(delay time.Duration, action func()) CancelHandle {
	t := time.AfterFunc(delay, action)
	return &timerHandle{timer: t}
}
