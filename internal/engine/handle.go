package engine

import "context"

// Handle is the Publisher-facing operations surface for one attached
// sensor. It is safe to call from any goroutine.
type Handle struct {
	session *Session
}

// Type returns the sensor type byte reported at sync.
func (h *Handle) Type() uint8 {
	s := h.session
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.sensorType
}

// Mode returns the mode of the most recently received DATA frame.
func (h *Handle) Mode() uint8 {
	s := h.session
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.currentMode
}

// Modes returns a copy of the catalog built during the handshake, sized
// to the sensor's reported mode count.
func (h *Handle) Modes() []ModeInfo {
	s := h.session
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := int(s.view.numModes)
	if n == 0 || n > NumModesMax {
		n = 0
	}
	out := make([]ModeInfo, n)
	copy(out, s.view.modes[:n])
	return out
}

// Running reports whether the session has completed its handshake and is
// exchanging DATA frames.
func (h *Handle) Running() bool {
	s := h.session
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.phase == PhaseRunning
}

// Diagnostic returns a snapshot of the session's current health.
func (h *Handle) Diagnostic() Diagnostic {
	return h.session.Diagnostic()
}

type controlReply struct {
	frame []byte
	err   error
}

// SetMode requests the sensor switch to mode i. It does not wait for
// confirmation; current_mode updates only once the next DATA frame
// arrives in that mode. Validation happens on the event loop; the
// encoded SELECT frame is then written to the transport by the calling
// goroutine, which may block on that write.
func (h *Handle) SetMode(i uint8) error {
	s := h.session
	reply := make(chan controlReply, 1)
	if !s.enqueue(func(sess *Session) {
		if i >= sess.numModes {
			reply <- controlReply{err: ErrInvalidMode}
			return
		}
		frame := []byte{
			encodeHeader(msgTypeCmd, 1, cmdSelect),
			i,
		}
		frame = append(frame, checksum(frame))
		reply <- controlReply{frame: frame}
	}) {
		return ErrClosed
	}
	r := <-reply
	if r.err != nil {
		return r.err
	}
	return s.transport.Write(context.Background(), r.frame)
}

// Write sends a single WRITE payload (at most 32 bytes) to the sensor.
func (h *Handle) Write(payload []byte) error {
	s := h.session
	reply := make(chan controlReply, 1)
	if !s.enqueue(func(sess *Session) {
		if len(payload) == 0 || len(payload) > SampleSize {
			reply <- controlReply{err: ErrPayloadTooLarge}
			return
		}
		sizeExp := byte(0)
		for n := 1; n < len(payload); n <<= 1 {
			sizeExp++
		}
		padded := make([]byte, 1<<sizeExp)
		copy(padded, payload)

		frame := make([]byte, 0, 2+len(padded))
		frame = append(frame, encodeHeader(msgTypeCmd, len(padded), cmdWrite))
		frame = append(frame, padded...)
		frame = append(frame, checksum(frame))
		reply <- controlReply{frame: frame}
	}) {
		return ErrClosed
	}
	r := <-reply
	if r.err != nil {
		return r.err
	}
	return s.transport.Write(context.Background(), r.frame)
}

// ReadValue decodes one scalar from the current mode's latest sample.
func (h *Handle) ReadValue(index int) (int32, error) {
	return h.session.readValue(index)
}

// ReadRawBytes returns a copy of length bytes from the current mode's
// latest sample, starting at off.
func (h *Handle) ReadRawBytes(off, length int) ([]byte, error) {
	return h.session.readRawBytes(off, length)
}
