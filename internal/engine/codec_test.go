package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	for _, msgType := range []byte{msgTypeSys, msgTypeCmd, msgTypeInfo, msgTypeData} {
		for _, payloadLen := range []int{1, 2, 4, 8, 16, 32} {
			for cmd := byte(0); cmd <= 0x07; cmd++ {
				hdr := encodeHeader(msgType, payloadLen, cmd)
				gotType, gotLen, gotCmd := decodeHeader(hdr)
				assert.Equal(t, msgType, gotType)
				assert.Equal(t, payloadLen, gotLen)
				assert.Equal(t, cmd, gotCmd)
			}
		}
	}
}

func TestMsgSizeSys(t *testing.T) {
	assert.Equal(t, 1, msgSize(msgTypeSys|sysSync))
	assert.Equal(t, 1, msgSize(msgTypeSys|sysAck))
}

func TestMsgSizeCmdAndInfo(t *testing.T) {
	// CMD, payload 1 byte: header + 1 + checksum = 3
	assert.Equal(t, 3, msgSize(encodeHeader(msgTypeCmd, 1, cmdModes)))
	// CMD, payload 4 bytes: header + 4 + checksum = 6
	assert.Equal(t, 6, msgSize(encodeHeader(msgTypeCmd, 4, cmdSpeed)))
	// INFO, payload 1 byte: header + subcmd + 1 + checksum = 4
	assert.Equal(t, 4, msgSize(encodeHeader(msgTypeInfo, 1, 0)))
}

func TestChecksum(t *testing.T) {
	// 0x40 ^ 0x10 ^ 0xFF == 0xAF
	assert.Equal(t, byte(0xAF), checksum([]byte{0x40, 0x10}))
}
