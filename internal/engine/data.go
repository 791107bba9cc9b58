package engine

import (
	"encoding/binary"
	"fmt"
	"math"
)

// handleData processes a DATA frame: the sensor's latest sample for one
// mode. Only valid once the handshake has completed.
func (s *Session) handleData(mode byte, frame []byte) error {
	if s.phase != PhaseRunning {
		return errFrame("Received DATA before INFO was complete.")
	}
	if int(mode) >= NumModesMax {
		return errFrame("Mode index out of range.")
	}

	payload := frame[1 : len(frame)-1]
	copy(s.modes[mode].RawData[:], payload)
	for i := len(payload); i < SampleSize; i++ {
		s.modes[mode].RawData[i] = 0
	}

	changed := s.currentMode != mode
	s.currentMode = mode
	s.lastDataSeen = true
	if s.dataErrorCount > 0 {
		s.dataErrorCount--
	}

	if changed {
		s.publisher.OnModeChange(s.handle, mode)
	}
	s.publisher.OnSample(s.handle, mode)
	return nil
}

// ftoi converts an IEEE-754 float32 bit pattern to a fixed-point integer
// with `decimals` fractional digits, rounding to the nearest value. This
// is how FLOAT-format DATA scalars are surfaced to ReadValue callers.
func ftoi(bits uint32, decimals uint8) int32 {
	f := float64(math.Float32frombits(bits))
	scale := math.Pow(10, float64(decimals))
	return int32(math.Round(f * scale))
}

func sizeofFormat(format uint8) int {
	switch format {
	case FormatS8:
		return 1
	case FormatS16:
		return 2
	case FormatS32, FormatFloat:
		return 4
	default:
		return 1
	}
}

// readValue decodes one scalar from a mode's latest sample, at the
// offset implied by index and the mode's format. Reads the
// mutex-guarded view, so it is safe from any goroutine and never blocks
// on the event loop.
func (s *Session) readValue(index int) (int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.view.phase != PhaseRunning {
		return 0, ErrNotRunning
	}

	m := s.view.modes[s.view.currentMode]
	if index < 0 || index >= m.DataSets {
		return 0, fmt.Errorf("engine: value index %d out of range for %d data set(s)", index, m.DataSets)
	}
	width := sizeofFormat(m.Format)
	off := index * width
	if off+width > SampleSize {
		return 0, fmt.Errorf("engine: value index %d overruns sample buffer", index)
	}

	switch m.Format {
	case FormatS8:
		return int32(int8(m.RawData[off])), nil
	case FormatS16:
		return int32(int16(binary.LittleEndian.Uint16(m.RawData[off : off+2]))), nil
	case FormatS32:
		return int32(binary.LittleEndian.Uint32(m.RawData[off : off+4])), nil
	case FormatFloat:
		bits := binary.LittleEndian.Uint32(m.RawData[off : off+4])
		return ftoi(bits, m.Decimals), nil
	default:
		return 0, fmt.Errorf("engine: unknown format %d", m.Format)
	}
}

// readRawBytes returns a copy of length bytes starting at off within the
// current mode's latest sample.
func (s *Session) readRawBytes(off, length int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if off < 0 || length < 0 || off+length > SampleSize {
		return nil, fmt.Errorf("engine: raw read [%d:%d] out of range", off, off+length)
	}
	m := s.view.modes[s.view.currentMode]
	out := make([]byte, length)
	copy(out, m.RawData[off:off+length])
	return out, nil
}
