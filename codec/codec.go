// Package codec implements the deterministic big-endian binary encoding used
// for all field values stored by bookyard.
//
// The format is variable-length for integers and length-prefixed collections:
//
//   - Unsigned integers below 251 occupy a single byte. Larger values are
//     prefixed with 251, 252 or 253 and followed by the big-endian 2, 4 or
//     8 byte representation.
//   - Signed integers are zigzag-mapped onto unsigned integers first.
//   - Booleans are a single byte, 0x00 or 0x01.
//   - Strings and byte slices are a length followed by the raw bytes.
//   - Enum discriminants are encoded as unsigned 32-bit integers.
//   - Options are a single 0x00 for "none", or 0x01 followed by the value.
//   - Floats are fixed 8-byte big-endian IEEE 754.
//
// A consequence of this layout is that the single byte 0x00 decodes as the
// empty value of every supported type except floats: zero, false, the empty
// string, an absent option, the first enum variant. The record mapper relies
// on this when a field's key is missing from storage. Float fields have no
// single-byte encoding and must be wrapped in an option to tolerate absence.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Errors returned by decoding.
var (
	ErrShortBuffer   = errors.New("codec: short buffer")
	ErrTrailingBytes = errors.New("codec: trailing bytes after value")
	ErrInvalid       = errors.New("codec: invalid encoding")
	ErrOverflow      = errors.New("codec: value overflows target type")
)

// Markers for multi-byte unsigned integer encodings.
const (
	marker16 = 251
	marker32 = 252
	marker64 = 253
)

// AppendUint64 appends the variable-length encoding of v to dst.
func AppendUint64(dst []byte, v uint64) []byte {
	switch {
	case v < marker16:
		return append(dst, byte(v))
	case v <= math.MaxUint16:
		dst = append(dst, marker16)
		return binary.BigEndian.AppendUint16(dst, uint16(v))
	case v <= math.MaxUint32:
		dst = append(dst, marker32)
		return binary.BigEndian.AppendUint32(dst, uint32(v))
	default:
		dst = append(dst, marker64)
		return binary.BigEndian.AppendUint64(dst, v)
	}
}

// AppendUint32 appends the variable-length encoding of v to dst.
// Enum discriminants use this encoding.
func AppendUint32(dst []byte, v uint32) []byte {
	return AppendUint64(dst, uint64(v))
}

// AppendInt64 appends the zigzag variable-length encoding of v to dst.
func AppendInt64(dst []byte, v int64) []byte {
	return AppendUint64(dst, zigzag(v))
}

// AppendBool appends a single 0x00 or 0x01 byte to dst.
func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

// AppendFloat64 appends the fixed 8-byte big-endian encoding of f to dst.
func AppendFloat64(dst []byte, f float64) []byte {
	return binary.BigEndian.AppendUint64(dst, math.Float64bits(f))
}

// AppendString appends a length-prefixed UTF-8 string to dst.
func AppendString(dst []byte, s string) []byte {
	dst = AppendUint64(dst, uint64(len(s)))
	return append(dst, s...)
}

// AppendBytes appends a length-prefixed byte slice to dst.
func AppendBytes(dst []byte, p []byte) []byte {
	dst = AppendUint64(dst, uint64(len(p)))
	return append(dst, p...)
}

// AppendOption appends 0x00 if v is nil, or 0x01 followed by the encoding
// of *v produced by enc.
func AppendOption[T any](dst []byte, v *T, enc func([]byte, T) []byte) []byte {
	if v == nil {
		return append(dst, 0)
	}
	dst = append(dst, 1)
	return enc(dst, *v)
}

// AppendSlice appends a length prefix followed by each element of s encoded
// by enc.
func AppendSlice[T any](dst []byte, s []T, enc func([]byte, T) []byte) []byte {
	dst = AppendUint64(dst, uint64(len(s)))
	for _, v := range s {
		dst = enc(dst, v)
	}
	return dst
}

// zigzag maps signed integers onto unsigned ones so small magnitudes stay
// small: 0, -1, 1, -2, ... become 0, 1, 2, 3, ...
func zigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func unzigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// A Reader decodes values sequentially from a buffer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the number of unconsumed bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

// Finish returns ErrTrailingBytes if any input remains unconsumed.
func (r *Reader) Finish() error {
	if r.off != len(r.buf) {
		return fmt.Errorf("%w: %d byte(s) remain", ErrTrailingBytes, len(r.buf)-r.off)
	}
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, fmt.Errorf("%w: need %d byte(s), have %d", ErrShortBuffer, n, r.Len())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Uint64 decodes a variable-length unsigned integer.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	switch b[0] {
	case marker16:
		p, err := r.take(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(p)), nil
	case marker32:
		p, err := r.take(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint32(p)), nil
	case marker64:
		p, err := r.take(8)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(p), nil
	default:
		if b[0] > marker64 {
			return 0, fmt.Errorf("%w: unknown integer marker 0x%02x", ErrInvalid, b[0])
		}
		return uint64(b[0]), nil
	}
}

// Uint32 decodes a variable-length unsigned integer and range-checks it.
func (r *Reader) Uint32() (uint32, error) {
	v, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit in uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}

// Int64 decodes a zigzag variable-length signed integer.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	return unzigzag(v), nil
}

// Bool decodes a single 0x00 or 0x01 byte.
func (r *Reader) Bool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool byte 0x%02x", ErrInvalid, b[0])
	}
}

// Float64 decodes a fixed 8-byte big-endian float.
func (r *Reader) Float64() (float64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(p)), nil
}

// String decodes a length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	p, err := r.rawBytes()
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// Bytes decodes a length-prefixed byte slice. The result is a copy.
func (r *Reader) Bytes() ([]byte, error) {
	p, err := r.rawBytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}

func (r *Reader) rawBytes() ([]byte, error) {
	n, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: length prefix %d exceeds %d remaining byte(s)", ErrShortBuffer, n, r.Len())
	}
	return r.take(int(n))
}

// Option decodes an optional value: nil for a 0x00 tag, otherwise the value
// decoded by dec after a 0x01 tag.
func Option[T any](r *Reader, dec func(*Reader) (T, error)) (*T, error) {
	b, err := r.take(1)
	if err != nil {
		return nil, err
	}
	switch b[0] {
	case 0:
		return nil, nil
	case 1:
		v, err := dec(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: option tag 0x%02x", ErrInvalid, b[0])
	}
}

// Slice decodes a length-prefixed sequence of values decoded by dec.
func Slice[T any](r *Reader, dec func(*Reader) (T, error)) ([]T, error) {
	n, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	// Each element consumes at least one byte, so n bounds the allocation.
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: length prefix %d exceeds %d remaining byte(s)", ErrShortBuffer, n, r.Len())
	}
	out := make([]T, 0, n)
	for range n {
		v, err := dec(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Decode decodes a complete value from data using dec and verifies that the
// whole buffer was consumed.
func Decode[T any](data []byte, dec func(*Reader) (T, error)) (T, error) {
	r := NewReader(data)
	v, err := dec(r)
	if err != nil {
		return v, err
	}
	if err := r.Finish(); err != nil {
		return v, err
	}
	return v, nil
}
