package engine

// handleBytes is the event-loop task created by Feed. It appends the
// delivered bytes to rx_buffer, runs the sync scanner while unsynced, and
// extracts and dispatches complete frames once synced.
func (s *Session) handleBytes(data []byte) {
	for _, b := range data {
		if s.writePtr >= BufferSize {
			s.resync("Buffer overflow.")
			s.publishView()
			return
		}
		s.rxBuffer[s.writePtr] = b
		s.writePtr++
	}

	if s.phase == PhaseUnsynced {
		s.trySync()
	}
	if s.phase != PhaseUnsynced {
		s.processFrames()
	}
	s.publishView()
}

// processFrames extracts and dispatches every complete frame currently
// buffered, stopping when a frame's declared size exceeds what has been
// delivered so far (it is deferred, not consumed, until more bytes
// arrive).
func (s *Session) processFrames() {
	for s.phase != PhaseUnsynced && s.writePtr > 0 {
		hdr := s.rxBuffer[0]

		// A lone 0xFF at the head of the buffer is the tail half of a
		// SYS_SYNC/checksum pair split across two deliveries; consume it
		// with no further processing.
		if hdr == 0xFF {
			s.shiftBuffer(1)
			continue
		}

		consumed := msgSize(hdr)
		quirked := false

		isSysSync := hdr&msgTypeMask == msgTypeSys && hdr&cmdMask == sysSync
		if isSysSync {
			if s.writePtr < 2 {
				return
			}
			if s.rxBuffer[1] == sysSync^0xFF {
				consumed = 2
				quirked = true
			}
		}

		if s.writePtr < consumed {
			return
		}

		frame := make([]byte, consumed)
		copy(frame, s.rxBuffer[:consumed])

		if quirked {
			s.shiftBuffer(consumed)
			continue
		}

		if consumed > 1 {
			want := checksum(frame[:consumed-1])
			got := frame[consumed-1]
			exempt := s.sensorType == 29 && frame[0] == 0xDC
			if want != got && !exempt {
				s.lastError = "Bad checksum."
				s.stats.framesRejected++
				if s.phase == PhaseRunning {
					s.shiftBuffer(consumed)
					s.bumpDataError()
					continue
				}
				s.resync("Bad checksum.")
				return
			}
		}

		s.shiftBuffer(consumed)
		s.stats.framesAccepted++

		if err := s.dispatchFrame(frame); err != nil {
			s.resync(err.Error())
			return
		}
	}
}

// bumpDataError increments the bad-event counter and resyncs once it
// reaches the configured threshold.
func (s *Session) bumpDataError() {
	s.dataErrorCount++
	if s.dataErrorCount >= s.dataErrThreshold {
		s.resync(s.lastError)
	}
}

// resync drops all handshake and buffered state and returns the session
// to Unsynced, logging the reason and scheduling a baud reset back to the
// protocol's minimum speed.
func (s *Session) resync(reason string) {
	s.lastError = reason
	s.logger.Printf("engine: resync (sensor type %d): %s", s.sensorType, reason)
	s.stats.resyncCount++
	s.cancelTimers()
	s.phase = PhaseUnsynced
	s.writePtr = 0

	s.baudTimer = s.scheduler.ScheduleOnce(BaudSwitchDelay, func() {
		s.enqueue(func(sess *Session) {
			if err := sess.transport.SetBaud(SpeedMin); err != nil {
				sess.logger.Printf("engine: baud reset failed: %v", err)
			}
		})
	})
}

// dispatchFrame routes one checksum-valid, already-consumed frame to its
// handler. A non-nil error triggers a resync with that error's text as
// last_error.
func (s *Session) dispatchFrame(frame []byte) error {
	msgType := frame[0] & msgTypeMask
	cmd := frame[0] & cmdMask

	switch msgType {
	case msgTypeSys:
		if cmd == sysAck {
			return s.handleSysAck()
		}
		return nil

	case msgTypeCmd:
		switch cmd {
		case cmdModes:
			return s.handleCmdModes(frame)
		case cmdSpeed:
			return s.handleCmdSpeed(frame)
		default:
			return errFrame("Unknown command.")
		}

	case msgTypeInfo:
		mode := cmd
		if len(frame) < 2 {
			return errFrame("Invalid INFO message.")
		}
		subcmd := frame[1]
		switch subcmd {
		case infoName:
			return s.handleInfoName(mode, frame)
		case infoRaw, infoPct, infoSI, infoUnits:
			return s.handleInfoScale(mode, subcmd, frame)
		case infoFormat:
			return s.handleInfoFormat(mode, frame)
		default:
			return nil
		}

	case msgTypeData:
		return s.handleData(cmd, frame)
	}
	return nil
}
