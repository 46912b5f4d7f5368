package packet

import (
	"errors"
	"testing"
)

func TestReader_RoundTrip(t *testing.T) {
	w := NewWriter(64)
	_ = w.WriteByte(0x5F)
	w.WriteBool(true)
	w.WriteUint16(0xBEEF)
	w.WriteUint32(0xDEADBEEF)
	w.WriteString("Горное дело 😀")

	r := NewReader(w.Bytes())

	b, err := r.ReadByte()
	if err != nil || b != 0x5F {
		t.Fatalf("ReadByte: got 0x%02X, %v", b, err)
	}
	flag, err := r.ReadBool()
	if err != nil || !flag {
		t.Fatalf("ReadBool: got %v, %v", flag, err)
	}
	u16, err := r.ReadUint16()
	if err != nil || u16 != 0xBEEF {
		t.Fatalf("ReadUint16: got 0x%04X, %v", u16, err)
	}
	u32, err := r.ReadUint32()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadUint32: got 0x%08X, %v", u32, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "Горное дело 😀" {
		t.Fatalf("ReadString: got %q, %v", s, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("expected 0 remaining bytes, got %d", r.Remaining())
	}
}

func TestReader_ShortPacket(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(r *Reader) error
	}{
		{name: "byte", data: nil, read: func(r *Reader) error { _, err := r.ReadByte(); return err }},
		{name: "uint16", data: []byte{1}, read: func(r *Reader) error { _, err := r.ReadUint16(); return err }},
		{name: "uint32", data: []byte{1, 2, 3}, read: func(r *Reader) error { _, err := r.ReadUint32(); return err }},
		{name: "unterminated string", data: []byte{'A', 0, 'B'}, read: func(r *Reader) error { _, err := r.ReadString(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			if err := tt.read(r); !errors.Is(err, ErrShortPacket) {
				t.Errorf("expected ErrShortPacket, got %v", err)
			}
		})
	}
}

func TestReader_Position(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	if _, err := r.ReadUint16(); err != nil {
		t.Fatalf("ReadUint16: %v", err)
	}
	if r.Position() != 2 || r.Remaining() != 3 {
		t.Errorf("position=%d remaining=%d, want 2/3", r.Position(), r.Remaining())
	}
}
