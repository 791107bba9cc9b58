package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildHandshakeDrivesSessionToRunning(t *testing.T) {
	spec := FixtureSpec{
		SensorType: 29,
		Modes: []FixtureModeSpec{
			{Name: "COL-REFLECT", Units: "pct", RawMax: 1023, PctMax: 100, SIMax: 100, Format: FormatS8, DataSets: 1, Figures: 3},
			{Name: "COL-COLOR", Units: "col", RawMax: 1023, PctMax: 100, SIMax: 7, Format: FormatS8, DataSets: 1, Figures: 1},
		},
	}

	sched := NewFakeScheduler()
	tr := &fakeTransport{}
	s := NewSession(Options{Transport: tr, Scheduler: sched})
	defer s.Close()

	s.Feed(BuildHandshake(spec))
	require.Eventually(t, func() bool {
		return sched.Pending() > 0
	}, time.Second, time.Millisecond)
	sched.FireNext() // ack timer
	require.Eventually(t, func() bool {
		return sched.Pending() > 0
	}, time.Second, time.Millisecond)
	sched.FireNext() // baud timer

	diag := waitDiag(t, s, func(d Diagnostic) bool { return d.Phase == PhaseRunning })
	require.Equal(t, uint8(29), diag.SensorType)
	require.Equal(t, 2, len(s.Handle().Modes()))
	require.Equal(t, "COL-REFLECT", s.Handle().Modes()[0].Name)
}
