// Package qstream reads and writes the big-endian primitive layout of the Qt
// data stream, the encoding used by .csp and .arr files.
//
// Reader and Writer keep the first error they encounter and turn every later
// call into a no-op, so a record can be read field by field and checked once.
package qstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// NullLength is the length prefix of a null byte array or string.
const NullLength = 0xFFFFFFFF

var (
	ErrShortRead = errors.New("qstream: unexpected end of stream")
	ErrOddString = errors.New("qstream: string byte length is not even")
	ErrTooLong   = errors.New("qstream: length prefix exceeds limit")
)

// QString payloads are UTF-16BE without a byte order mark.
var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// DefaultMaxBytes bounds a single length-prefixed field.
const DefaultMaxBytes = 1 << 30

// Reader decodes primitives from an underlying reader.
type Reader struct {
	r        io.Reader
	err      error
	buf      [8]byte
	MaxBytes uint32
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, MaxBytes: DefaultMaxBytes}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		r.err = shortRead(err)
		return nil
	}
	return r.buf[:n]
}

func shortRead(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrShortRead
	}
	return err
}

// Uint32 reads an unsigned 32-bit integer.
func (r *Reader) Uint32() uint32 {
	b := r.read(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Int32 reads a signed 32-bit integer.
func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

// Uint16 reads an unsigned 16-bit integer.
func (r *Reader) Uint16() uint16 {
	b := r.read(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// Int8 reads a signed byte.
func (r *Reader) Int8() int8 {
	b := r.read(1)
	if b == nil {
		return 0
	}
	return int8(b[0])
}

// Bool reads a one-byte boolean. Any non-zero byte is true.
func (r *Reader) Bool() bool {
	b := r.read(1)
	if b == nil {
		return false
	}
	return b[0] != 0
}

// Float64 reads an IEEE 754 double.
func (r *Reader) Float64() float64 {
	b := r.read(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// Bytes reads a uint32 length-prefixed byte array. Null and empty arrays
// read as nil.
func (r *Reader) Bytes() []byte {
	n := r.Uint32()
	if r.err != nil || n == NullLength || n == 0 {
		return nil
	}
	if n > r.MaxBytes {
		r.err = fmt.Errorf("%w: %d bytes", ErrTooLong, n)
		return nil
	}
	// the buffer grows with the data present, never with the prefix
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r.r, int64(n)); err != nil {
		r.err = shortRead(err)
		return nil
	}
	return buf.Bytes()
}

// QString reads a QString: a uint32 byte length followed by UTF-16BE code
// units. A null string reads as "".
func (r *Reader) QString() string {
	n := r.Uint32()
	if r.err != nil || n == NullLength {
		return ""
	}
	if n%2 != 0 {
		r.err = fmt.Errorf("%w: %d", ErrOddString, n)
		return ""
	}
	if n > r.MaxBytes {
		r.err = fmt.Errorf("%w: %d bytes", ErrTooLong, n)
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r.r, int64(n)); err != nil {
		r.err = shortRead(err)
		return ""
	}
	out, err := utf16BE.NewDecoder().Bytes(buf.Bytes())
	if err != nil {
		r.err = err
		return ""
	}
	return string(out)
}

// Writer encodes primitives to an underlying writer.
type Writer struct {
	w   io.Writer
	err error
	buf [8]byte
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

// Uint32 writes an unsigned 32-bit integer.
func (w *Writer) Uint32(v uint32) {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

// Int32 writes a signed 32-bit integer.
func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

// Uint16 writes an unsigned 16-bit integer.
func (w *Writer) Uint16(v uint16) {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

// Int8 writes a signed byte.
func (w *Writer) Int8(v int8) {
	w.buf[0] = byte(v)
	w.write(w.buf[:1])
}

// Bool writes a one-byte boolean.
func (w *Writer) Bool(v bool) {
	w.buf[0] = 0
	if v {
		w.buf[0] = 1
	}
	w.write(w.buf[:1])
}

// Float64 writes an IEEE 754 double.
func (w *Writer) Float64(v float64) {
	binary.BigEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	w.write(w.buf[:8])
}

// Bytes writes a uint32 length-prefixed byte array.
func (w *Writer) Bytes(b []byte) {
	if uint64(len(b)) >= NullLength {
		if w.err == nil {
			w.err = fmt.Errorf("%w: %d bytes", ErrTooLong, len(b))
		}
		return
	}
	w.Uint32(uint32(len(b)))
	w.write(b)
}

// QString writes s as a QString.
func (w *Writer) QString(s string) {
	if w.err != nil {
		return
	}
	raw, err := utf16BE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		w.err = err
		return
	}
	w.Bytes(raw)
}
