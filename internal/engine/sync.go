package engine

// trySync scans rx_buffer for the CMD|TYPE triplet (header, sensor type,
// checksum) that starts a handshake. On a mismatch it advances one byte
// and retries; on success it drops the three scanned bytes, resets mode
// state for the new sensor type, and transitions to Collecting. If fewer
// than three bytes are buffered it returns, retaining them for the next
// delivery.
func (s *Session) trySync() {
	for {
		if s.writePtr < 3 {
			return
		}
		hdr := s.rxBuffer[0]
		typ := s.rxBuffer[1]
		chk := s.rxBuffer[2]

		if hdr == msgTypeCmd|cmdType && typ > 0 && typ <= TypeMax && checksum(s.rxBuffer[:2]) == chk {
			s.resetForSync(typ)
			s.shiftBuffer(3)
			s.phase = PhaseCollecting
			return
		}
		s.shiftBuffer(1)
	}
}

func (s *Session) resetForSync(sensorType uint8) {
	s.sensorType = sensorType
	s.numModes = 0
	s.numViewModes = 0
	s.currentMode = 0
	s.infoFlags = flagCmdType
	s.newBaudRate = SpeedMin
	s.dataErrorCount = 0
	s.lastDataSeen = false
	s.lastError = ""
	for i := range s.modes {
		s.modes[i] = defaultModeInfo()
	}
}

// shiftBuffer discards the first n bytes of rx_buffer, moving the
// remainder to the front.
func (s *Session) shiftBuffer(n int) {
	if n <= 0 {
		return
	}
	remaining := s.writePtr - n
	if remaining > 0 {
		copy(s.rxBuffer[:remaining], s.rxBuffer[n:s.writePtr])
	}
	s.writePtr = remaining
}
