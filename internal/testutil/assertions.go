package testutil

import (
	"encoding/binary"
	"testing"
)

// AssertPacketOpcode проверяет, что первый байт пакета соответствует ожидаемому opcode.
func AssertPacketOpcode(t testing.TB, expected byte, packet []byte) {
	t.Helper()

	if len(packet) == 0 {
		t.Fatalf("packet is empty, expected opcode 0x%02X", expected)
	}

	actual := packet[0]
	if actual != expected {
		t.Fatalf("packet opcode mismatch: expected 0x%02X, got 0x%02X", expected, actual)
	}
}

// AssertUint32LE проверяет uint32 значение в пакете (little-endian) по смещению.
func AssertUint32LE(t testing.TB, expected uint32, packet []byte, offset int) {
	t.Helper()

	if len(packet) < offset+4 {
		t.Fatalf("packet too short: need %d bytes for uint32 at offset %d, got %d",
			offset+4, offset, len(packet))
	}

	actual := binary.LittleEndian.Uint32(packet[offset:])
	if actual != expected {
		t.Fatalf("uint32 at offset %d: expected %d, got %d", offset, expected, actual)
	}
}
