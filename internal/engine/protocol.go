package engine

import "time"

// Message type bits (TT, upper two bits of the header byte).
const (
	msgTypeMask = 0xC0
	msgTypeSys  = 0x00
	msgTypeCmd  = 0x40
	msgTypeInfo = 0x80
	msgTypeData = 0xC0
)

// Command nibble (CCC, lower three bits of the header byte).
const cmdMask = 0x07

// SYS commands.
const (
	sysSync = 0x00
	sysNack = 0x02
	sysAck  = 0x04
)

// CMD commands.
const (
	cmdType   = 0x00
	cmdModes  = 0x01
	cmdSpeed  = 0x02
	cmdSelect = 0x03
	cmdWrite  = 0x04
)

// INFO sub-commands (the byte following an INFO header).
const (
	infoName   = 0x00
	infoRaw    = 0x01
	infoPct    = 0x02
	infoSI     = 0x03
	infoUnits  = 0x04
	infoFormat = 0x80
)

// Data formats carried in INFO_FORMAT.
const (
	FormatS8    = 0
	FormatS16   = 1
	FormatS32   = 2
	FormatFloat = 3
)

// info_flags bits. Tracks which handshake records have been observed for
// the mode currently being described.
const (
	flagCmdType = 1 << iota
	flagCmdModes
	flagCmdSpeed
	flagInfoName
	flagInfoRaw
	flagInfoPct
	flagInfoSI
	flagInfoUnits
	flagInfoFormat
)

// requiredFlags must all be set before SYS_ACK is accepted, and before any
// single mode's INFO_FORMAT is accepted.
const requiredFlags = flagCmdType | flagCmdModes | flagInfoName | flagInfoFormat

// perModeInfoFlags are cleared every time a new INFO_NAME arrives, so a
// fresh mode's scaling/format records don't collide with the previous
// mode's duplicate-detection bits.
const perModeInfoFlags = flagInfoRaw | flagInfoPct | flagInfoSI | flagInfoUnits | flagInfoFormat

// Protocol-fixed sizes and limits.
const (
	BufferSize        = 256
	NumModesMax       = 8
	ModeIndexMax      = NumModesMax - 1
	TypeMax           = 121
	SensorTypeUnknown = 125
	NameSize          = 11
	UnitsSize         = 8
	SampleSize        = 32
	MaxDataErr        = 6
)

// Baud candidates. SpeedMin is also the reset baud after a resync.
const (
	SpeedMin = 2400
	SpeedMax = 460800
)

// Handshake timing, observed from the original driver.
const (
	AckSendDelay    = 10 * time.Millisecond
	BaudSwitchDelay = 10 * time.Millisecond
	KeepAlivePeriod = 100 * time.Millisecond
)
