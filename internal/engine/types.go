package engine

import (
	"fmt"
	"math"
)

// Phase is the Session's position in the handshake/run lifecycle.
type Phase uint8

const (
	PhaseUnsynced Phase = iota
	PhaseCollecting
	PhaseAckPending
	PhaseBaudSwitching
	PhaseRunning
	PhaseFailing
)

func (p Phase) String() string {
	switch p {
	case PhaseUnsynced:
		return "unsynced"
	case PhaseCollecting:
		return "collecting"
	case PhaseAckPending:
		return "ack_pending"
	case PhaseBaudSwitching:
		return "baud_switching"
	case PhaseRunning:
		return "running"
	case PhaseFailing:
		return "failing"
	default:
		return "unknown"
	}
}

// ModeInfo is the catalog entry built up for one sensor mode during the
// handshake. Scaling bounds are kept as raw IEEE-754 bit patterns, exactly
// as they arrive on the wire, and converted to float32 on read.
type ModeInfo struct {
	Name     string
	RawMin   uint32
	RawMax   uint32
	PctMin   uint32
	PctMax   uint32
	SIMin    uint32
	SIMax    uint32
	Units    string
	DataSets int
	Format   uint8
	Figures  uint8
	Decimals uint8
	RawData  [SampleSize]byte
}

func (m ModeInfo) RawMinF() float32 { return math.Float32frombits(m.RawMin) }
func (m ModeInfo) RawMaxF() float32 { return math.Float32frombits(m.RawMax) }
func (m ModeInfo) PctMinF() float32 { return math.Float32frombits(m.PctMin) }
func (m ModeInfo) PctMaxF() float32 { return math.Float32frombits(m.PctMax) }
func (m ModeInfo) SIMinF() float32  { return math.Float32frombits(m.SIMin) }
func (m ModeInfo) SIMaxF() float32  { return math.Float32frombits(m.SIMax) }

func defaultModeInfo() ModeInfo {
	return ModeInfo{
		RawMax:  math.Float32bits(1023.0),
		PctMax:  math.Float32bits(100.0),
		SIMax:   math.Float32bits(1.0),
		Figures: 4,
	}
}

// Diagnostic is a plain snapshot of session health, produced on demand for
// monitoring callers. It carries no logic and is never consulted by the
// protocol state machine.
type Diagnostic struct {
	Phase          Phase
	SensorType     uint8
	CurrentMode    uint8
	NumModes       uint8
	DataErrorCount int
	LastError      string
	ResyncCount    uint64
	FramesAccepted uint64
	FramesRejected uint64
}

// String renders a one-line diagnostic report. No IO, no side effects.
func (d Diagnostic) String() string {
	return fmt.Sprintf(
		"phase=%s type=%d mode=%d modes=%d data_err=%d resyncs=%d accepted=%d rejected=%d last_error=%q",
		d.Phase, d.SensorType, d.CurrentMode, d.NumModes, d.DataErrorCount,
		d.ResyncCount, d.FramesAccepted, d.FramesRejected, d.LastError,
	)
}
