package engine

import (
	"encoding/binary"
	"math"
)

// FixtureModeSpec is one mode of a canned sensor handshake, used to drive
// a Session without a physical UART sensor attached.
type FixtureModeSpec struct {
	Name     string
	Units    string
	RawMin   float32
	RawMax   float32
	PctMin   float32
	PctMax   float32
	SIMin    float32
	SIMax    float32
	Format   byte
	DataSets byte
	Figures  byte
	Decimals byte
}

// FixtureSpec is a canned sensor identity: the type byte CMD_TYPE would
// carry, and the mode records that follow it.
type FixtureSpec struct {
	SensorType uint8
	Modes      []FixtureModeSpec
}

// BuildHandshake encodes spec into the exact byte stream a real sensor
// would emit: the CMD_TYPE sync triplet, CMD_MODES, each mode's INFO
// records in descending index order, and the trailing SYS_ACK. Feeding
// the result to Session.Feed drives the session to PhaseRunning.
func BuildHandshake(spec FixtureSpec) []byte {
	var out []byte

	out = append(out, cmdTypeFrame(spec.SensorType)...)
	out = append(out, fixtureCmdModesFrame(len(spec.Modes))...)

	for i := len(spec.Modes) - 1; i >= 0; i-- {
		mode := byte(i)
		m := spec.Modes[i]
		out = append(out, infoNameFrame(mode, m.Name)...)
		out = append(out, infoScaleFrame(mode, infoRaw, m.RawMin, m.RawMax)...)
		out = append(out, infoScaleFrame(mode, infoPct, m.PctMin, m.PctMax)...)
		out = append(out, infoScaleFrame(mode, infoSI, m.SIMin, m.SIMax)...)
		out = append(out, infoUnitsFrame(mode, m.Units)...)
		out = append(out, infoFormatFrame(mode, m.DataSets, m.Format, m.Figures, m.Decimals)...)
	}

	out = append(out, msgTypeSys|sysAck)
	return out
}

func cmdTypeFrame(sensorType uint8) []byte {
	frame := []byte{msgTypeCmd | cmdType, sensorType}
	return append(frame, checksum(frame))
}

func fixtureCmdModesFrame(numModes int) []byte {
	payload := []byte{byte(numModes - 1), byte(numModes - 1)}
	header := encodeHeader(msgTypeCmd, len(payload), cmdModes)
	frame := append([]byte{header}, payload...)
	return append(frame, checksum(frame))
}

func fixturePadPow2(b []byte) []byte {
	n := 1
	for n < len(b) {
		n <<= 1
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func infoNameFrame(mode byte, name string) []byte {
	payload := fixturePadPow2([]byte(name))
	header := encodeHeader(msgTypeInfo, len(payload), mode)
	frame := append([]byte{header, infoName}, payload...)
	return append(frame, checksum(frame))
}

func infoScaleFrame(mode byte, subcmd byte, min, max float32) []byte {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], math.Float32bits(min))
	binary.LittleEndian.PutUint32(payload[4:8], math.Float32bits(max))
	header := encodeHeader(msgTypeInfo, len(payload), mode)
	frame := append([]byte{header, subcmd}, payload...)
	return append(frame, checksum(frame))
}

func infoUnitsFrame(mode byte, units string) []byte {
	payload := fixturePadPow2([]byte(units))
	header := encodeHeader(msgTypeInfo, len(payload), mode)
	frame := append([]byte{header, infoUnits}, payload...)
	return append(frame, checksum(frame))
}

func infoFormatFrame(mode byte, dataSets, format, figures, decimals byte) []byte {
	payload := []byte{dataSets, format, figures, decimals}
	header := encodeHeader(msgTypeInfo, len(payload), mode)
	frame := append([]byte{header, infoFormat}, payload...)
	return append(frame, checksum(frame))
}
