package engine

import "encoding/binary"

// handleCmdModes processes CMD_MODES: number of modes, and optionally
// number of view modes, each sent as the count minus one, so the counts
// are payload[0]+1 and payload[1]+1.
func (s *Session) handleCmdModes(frame []byte) error {
	if s.infoFlags&flagCmdModes != 0 {
		return errFrame("Duplicate CMD_MODES.")
	}
	if len(frame) < 3 {
		return errFrame("Invalid CMD_MODES message.")
	}
	numModes := frame[1]
	if numModes > ModeIndexMax {
		return errFrame("Number of modes is out of range.")
	}
	s.infoFlags |= flagCmdModes
	s.numModes = numModes + 1
	if len(frame) > 3 {
		s.numViewModes = frame[2] + 1
	} else {
		s.numViewModes = s.numModes
	}
	return nil
}

// handleCmdSpeed processes CMD_SPEED: a little-endian int32 baud rate
// candidate to switch to after SYS_ACK.
func (s *Session) handleCmdSpeed(frame []byte) error {
	if s.infoFlags&flagCmdSpeed != 0 {
		return errFrame("Duplicate CMD_SPEED.")
	}
	if len(frame) < 6 {
		return errFrame("Invalid CMD_SPEED message.")
	}
	speed := int32(binary.LittleEndian.Uint32(frame[1:5]))
	if speed < SpeedMin || speed > SpeedMax {
		return errFrame("Speed is out of range.")
	}
	s.infoFlags |= flagCmdSpeed
	s.newBaudRate = int(speed)
	return nil
}

// handleInfoName processes INFO_NAME: the mode's display name. Receiving
// a name clears the previous mode's scaling/format duplicate-detection
// bits, since each mode's handshake record starts fresh here.
func (s *Session) handleInfoName(mode uint8, frame []byte) error {
	if int(mode) >= NumModesMax {
		return errFrame("Mode index out of range.")
	}
	if len(frame) < 4 {
		return errFrame("Invalid name INFO.")
	}
	nameBytes := frame[2 : len(frame)-1]
	nameBytes = trimTrailingZero(nameBytes)
	if len(nameBytes) == 0 || nameBytes[0] < 'A' || nameBytes[0] > 'z' {
		return errFrame("Invalid name INFO.")
	}
	if len(nameBytes) > NameSize {
		return errFrame("Name is too long.")
	}

	s.infoFlags &^= perModeInfoFlags
	s.modes[mode].Name = string(nameBytes)
	s.currentMode = mode
	s.infoFlags |= flagInfoName
	return nil
}

// handleInfoScale processes INFO_RAW, INFO_PCT, INFO_SI, and INFO_UNITS:
// the min/max scaling bounds (two little-endian floats) or the units
// string, for the mode currently being described.
func (s *Session) handleInfoScale(mode uint8, subcmd byte, frame []byte) error {
	if mode != s.currentMode {
		return errFrame("Received INFO for incorrect mode.")
	}

	var flag uint16
	var name string
	switch subcmd {
	case infoRaw:
		flag, name = flagInfoRaw, "raw"
	case infoPct:
		flag, name = flagInfoPct, "percent"
	case infoSI:
		flag, name = flagInfoSI, "SI"
	case infoUnits:
		flag, name = flagInfoUnits, "units"
	}
	if s.infoFlags&flag != 0 {
		return errFrame("Duplicate " + name + " scaling INFO.")
	}
	s.infoFlags |= flag

	switch subcmd {
	case infoRaw, infoPct, infoSI:
		if len(frame) < 10 {
			return errFrame("Invalid scaling INFO.")
		}
		min := binary.LittleEndian.Uint32(frame[2:6])
		max := binary.LittleEndian.Uint32(frame[6:10])
		switch subcmd {
		case infoRaw:
			s.modes[mode].RawMin, s.modes[mode].RawMax = min, max
		case infoPct:
			s.modes[mode].PctMin, s.modes[mode].PctMax = min, max
		case infoSI:
			s.modes[mode].SIMin, s.modes[mode].SIMax = min, max
		}
	case infoUnits:
		unitBytes := frame[2 : len(frame)-1]
		unitBytes = trimTrailingZero(unitBytes)
		if len(unitBytes) > UnitsSize {
			unitBytes = unitBytes[:UnitsSize]
		}
		s.modes[mode].Units = string(unitBytes)
	}
	return nil
}

// handleInfoFormat processes INFO_FORMAT: data set count, value format,
// display figures, and decimal places for the mode currently being
// described. It is the last record of a mode's handshake, so it also
// enforces that the required set (CMD_TYPE, CMD_MODES, INFO_NAME, and
// this record itself) has been observed, and steps current_mode down so
// the sensor's next INFO_NAME (for the previous mode, modes arrive in
// descending order) lands correctly.
func (s *Session) handleInfoFormat(mode uint8, frame []byte) error {
	if mode != s.currentMode {
		return errFrame("Received INFO for incorrect mode.")
	}
	if s.infoFlags&flagInfoFormat != 0 {
		return errFrame("Duplicate format INFO.")
	}
	if len(frame) < 7 {
		return errFrame("Invalid format message size.")
	}
	dataSets := frame[2]
	if dataSets == 0 {
		return errFrame("Invalid number of data sets.")
	}
	s.infoFlags |= flagInfoFormat
	if s.infoFlags&requiredFlags != requiredFlags {
		return errFrame("Did not receive all required INFO.")
	}

	s.modes[mode].DataSets = int(dataSets)
	s.modes[mode].Format = frame[3]
	s.modes[mode].Figures = frame[4]
	s.modes[mode].Decimals = frame[5]

	if s.currentMode > 0 {
		s.currentMode--
	}
	return nil
}

// handleSysAck processes SYS_ACK: the sensor declaring its handshake
// complete. Requires the required INFO set to have been observed and at
// least one mode to have been reported; schedules the delayed ACK send
// rather than transmitting immediately.
func (s *Session) handleSysAck() error {
	if s.numModes == 0 {
		return errFrame("Received ACK before all mode INFO.")
	}
	if s.infoFlags&requiredFlags != requiredFlags {
		return errFrame("Did not receive all required INFO.")
	}
	s.phase = PhaseAckPending
	s.currentMode = 0
	s.ackTimer = s.scheduler.ScheduleOnce(AckSendDelay, func() {
		s.enqueue(func(sess *Session) { sess.onAckTimer() })
	})
	return nil
}

func trimTrailingZero(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
