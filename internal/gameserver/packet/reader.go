package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
)

// ErrShortPacket is returned when a read runs past the end of the packet.
var ErrShortPacket = errors.New("not enough data")

// DefaultStringCapacity — типичная длина имени скилла в UTF-16 code units.
const DefaultStringCapacity = 16

// Reader decodes a state-sync packet. All multi-byte values are little-endian.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data. data is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) need(op string, n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("%s at pos=%d len=%d: %w", op, r.pos, len(r.data), ErrShortPacket)
	}
	return nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.need("ReadByte", 1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads a byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadUint16 reads 2 bytes.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.need("ReadUint16", 2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads 4 bytes.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need("ReadUint32", 4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadString reads a NUL-terminated UTF-16LE string.
func (r *Reader) ReadString() (string, error) {
	units := make([]uint16, 0, DefaultStringCapacity)
	for {
		u, err := r.ReadUint16()
		if err != nil {
			return "", fmt.Errorf("ReadString: unterminated string: %w", err)
		}
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}
