package engine

// onAckTimer fires AckSendDelay after SYS_ACK was accepted. It registers
// the sensor with the publisher, transmits the SYS_ACK byte, and arms the
// baud-switch timer.
func (s *Session) onAckTimer() {
	if s.phase != PhaseAckPending {
		return
	}
	s.ackTimer = nil
	s.publisher.OnAttach(s.handle)
	s.transmit([]byte{msgTypeSys | sysAck})
	s.phase = PhaseBaudSwitching
	s.baudTimer = s.scheduler.ScheduleOnce(BaudSwitchDelay, func() {
		s.enqueue(func(sess *Session) { sess.onBaudTimer() })
	})
	s.publishView()
}

// onBaudTimer fires BaudSwitchDelay after the ACK byte was handed to the
// transmit worker. It waits for that byte to drain, reconfigures the
// transport to the negotiated baud rate, and arms the keep-alive
// watchdog at half its normal period for the first tick.
func (s *Session) onBaudTimer() {
	if s.phase != PhaseBaudSwitching {
		return
	}
	s.baudTimer = nil

	if err := s.transport.Flush(); err != nil {
		s.logger.Printf("engine: flush before baud switch failed: %v", err)
	}
	if err := s.transport.SetBaud(s.newBaudRate); err != nil {
		s.lastError = err.Error()
		s.logger.Printf("engine: baud switch to %d failed: %v", s.newBaudRate, err)
	}

	s.phase = PhaseRunning
	s.lastDataSeen = false
	s.watchdogTimer = s.scheduler.ScheduleOnce(KeepAlivePeriod/2, func() {
		s.enqueue(func(sess *Session) { sess.onWatchdogTick() })
	})
	s.publishView()
}

// onWatchdogTick is the keep-alive: if no DATA arrived since the previous
// tick, it counts as a bad event; either way it transmits a SYS_NACK to
// prompt the sensor, then reschedules itself from now, not from the
// missed target, so a late tick never bursts to catch up.
func (s *Session) onWatchdogTick() {
	if s.phase != PhaseRunning {
		return
	}
	if !s.lastDataSeen {
		s.lastError = "No data since last keep-alive."
		s.bumpDataError()
	}
	s.lastDataSeen = false
	s.transmit([]byte{msgTypeSys | sysNack})

	if s.phase == PhaseRunning {
		s.watchdogTimer = s.scheduler.ScheduleOnce(KeepAlivePeriod, func() {
			s.enqueue(func(sess *Session) { sess.onWatchdogTick() })
		})
	}
	s.publishView()
}
