package packet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// ErrInvalidString is returned by CheckString for text WriteString cannot
// encode losslessly.
var ErrInvalidString = errors.New("string not encodable")

// Writer builds a state-sync packet. All multi-byte values are little-endian.
type Writer struct {
	buf *bytes.Buffer
}

var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: bytes.NewBuffer(make([]byte, 0, 256))}
	},
}

// Get returns a reset Writer from the pool.
func Get() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// Put returns the Writer to the pool. The Writer and any slice obtained
// from Bytes must not be used afterwards.
func (w *Writer) Put() {
	writerPool.Put(w)
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: bytes.NewBuffer(make([]byte, 0, capacity))}
}

// WriteByte writes a single byte. It never fails; the error satisfies io.ByteWriter.
func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// WriteBool writes 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// WriteUint16 writes 2 bytes.
func (w *Writer) WriteUint16(v uint16) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
}

// WriteUint32 writes 4 bytes.
func (w *Writer) WriteUint32(v uint32) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v >> 16))
	w.buf.WriteByte(byte(v >> 24))
}

// CheckString reports whether s survives WriteString/ReadString unchanged:
// it must be valid UTF-8 without NUL (the terminator).
func CheckString(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%q is not valid UTF-8: %w", s, ErrInvalidString)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%q contains NUL: %w", s, ErrInvalidString)
	}
	return nil
}

// WriteString writes s as NUL-terminated UTF-16LE.
// Runes outside the BMP are written as surrogate pairs. Callers sending
// untrusted text check it with CheckString first.
func (w *Writer) WriteString(s string) {
	w.buf.Grow(len(s)*2 + 2)
	for _, r := range s {
		if r <= 0xFFFF {
			w.WriteUint16(uint16(r))
			continue
		}
		r -= 0x10000
		w.WriteUint16(uint16(r>>10) + 0xD800)
		w.WriteUint16(uint16(r&0x3FF) + 0xDC00)
	}
	w.WriteUint16(0)
}

// Bytes returns the accumulated data. The slice aliases the internal buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
}
