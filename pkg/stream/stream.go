// Package stream implements the ordered primitive stream used by save games.
//
// Every primitive is fixed-width little-endian except strings, which carry a
// uint32 length prefix. Readers and writers keep a running byte offset so
// failures can be reported against a position in the stream.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrTruncated reports a stream that ended before a primitive was complete.
	ErrTruncated = errors.New("stream: truncated")
	// ErrCorrupt reports a primitive whose bytes are outside its domain.
	ErrCorrupt = errors.New("stream: corrupt value")
)

// MaxStringLen bounds decoded string lengths so a corrupt prefix cannot
// trigger a huge allocation.
const MaxStringLen = 1 << 20

// MaxCount bounds collection lengths for the same reason. Readers size
// collections from the count before decoding any element.
const MaxCount = 1 << 16

// Writer appends primitives to an underlying io.Writer.
type Writer struct {
	w   io.Writer
	n   int64
	buf [8]byte
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 { return w.n }

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		return fmt.Errorf("stream: write at offset %d: %w", w.n, err)
	}
	return nil
}

// WriteBool writes a single 0/1 byte.
func (w *Writer) WriteBool(v bool) error {
	w.buf[0] = 0
	if v {
		w.buf[0] = 1
	}
	return w.write(w.buf[:1])
}

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v uint8) error {
	w.buf[0] = v
	return w.write(w.buf[:1])
}

// WriteInt32 writes a little-endian int32.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteUint32 writes a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	return w.write(w.buf[:4])
}

// WriteFloat32 writes the IEEE-754 bits of v.
func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes the IEEE-754 bits of v.
func (w *Writer) WriteFloat64(v float64) error {
	binary.LittleEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	return w.write(w.buf[:8])
}

// WriteString writes a uint32 byte length followed by the raw bytes.
func (w *Writer) WriteString(v string) error {
	if len(v) > MaxStringLen {
		return fmt.Errorf("stream: string of %d bytes exceeds limit %d", len(v), MaxStringLen)
	}
	if err := w.WriteUint32(uint32(len(v))); err != nil {
		return err
	}
	return w.write([]byte(v))
}

// WriteCount writes a collection length.
func (w *Writer) WriteCount(n int) error {
	if n < 0 || n > MaxCount {
		return fmt.Errorf("stream: count %d out of range [0, %d]", n, MaxCount)
	}
	return w.WriteInt32(int32(n))
}

// Reader consumes primitives from an underlying io.Reader.
type Reader struct {
	r   io.Reader
	n   int64
	buf [8]byte
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.n }

func (r *Reader) fill(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.n += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: need %d bytes at offset %d, got %d", ErrTruncated, len(p), r.n-int64(n), n)
	}
	return fmt.Errorf("stream: read at offset %d: %w", r.n, err)
}

// ReadBool reads a 0/1 byte; any other value is corrupt.
func (r *Reader) ReadBool() (bool, error) {
	if err := r.fill(r.buf[:1]); err != nil {
		return false, err
	}
	switch r.buf[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool byte %#x at offset %d", ErrCorrupt, r.buf[0], r.n-1)
	}
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.fill(r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.fill(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:4]), nil
}

// ReadFloat32 reads an IEEE-754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads an IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.fill(r.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:8])), nil
}

// ReadString reads a length-prefixed string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", fmt.Errorf("%w: string length %d at offset %d", ErrCorrupt, n, r.n-4)
	}
	p := make([]byte, n)
	if err := r.fill(p); err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadCount reads a collection length written by WriteCount.
func (r *Reader) ReadCount() (int, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if v < 0 || v > MaxCount {
		return 0, fmt.Errorf("%w: count %d at offset %d", ErrCorrupt, v, r.n-4)
	}
	return int(v), nil
}
