package codec

// codec_test.go implements tests for the field value codec.

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// =============================================================================
// Unsigned integer encoding
// =============================================================================

// TestUint64RoundTrip tests encode/decode across the marker boundaries.
func TestUint64RoundTrip(t *testing.T) {
	cases := []struct {
		v    uint64
		size int
	}{
		{0, 1},
		{1, 1},
		{250, 1},
		{251, 3},
		{252, 3},
		{math.MaxUint16, 3},
		{math.MaxUint16 + 1, 5},
		{math.MaxUint32, 5},
		{math.MaxUint32 + 1, 9},
		{math.MaxUint64, 9},
	}
	for _, tc := range cases {
		enc := AppendUint64(nil, tc.v)
		if len(enc) != tc.size {
			t.Errorf("AppendUint64(%d) = %d bytes, want %d", tc.v, len(enc), tc.size)
		}
		got, err := Decode(enc, (*Reader).Uint64)
		if err != nil {
			t.Fatalf("Decode(%d) error: %v", tc.v, err)
		}
		if got != tc.v {
			t.Errorf("round trip %d = %d", tc.v, got)
		}
	}
}

// TestUint64BigEndian tests that multi-byte encodings are big-endian.
func TestUint64BigEndian(t *testing.T) {
	enc := AppendUint64(nil, 0x0102)
	want := []byte{251, 0x01, 0x02}
	if !bytes.Equal(enc, want) {
		t.Errorf("AppendUint64(0x0102) = %x, want %x", enc, want)
	}

	enc = AppendUint64(nil, 0x01020304)
	want = []byte{252, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(enc, want) {
		t.Errorf("AppendUint64(0x01020304) = %x, want %x", enc, want)
	}
}

// TestUint64ZeroIsSentinel tests that zero encodes as the single byte 0x00.
func TestUint64ZeroIsSentinel(t *testing.T) {
	if enc := AppendUint64(nil, 0); !bytes.Equal(enc, []byte{0}) {
		t.Errorf("AppendUint64(0) = %x, want 00", enc)
	}
}

// TestUint64InvalidMarker tests that reserved markers are rejected.
func TestUint64InvalidMarker(t *testing.T) {
	for _, b := range []byte{254, 255} {
		if _, err := Decode([]byte{b}, (*Reader).Uint64); !errors.Is(err, ErrInvalid) {
			t.Errorf("marker 0x%02x: got %v, want ErrInvalid", b, err)
		}
	}
}

// TestUint32Overflow tests the range check on 32-bit decodes.
func TestUint32Overflow(t *testing.T) {
	enc := AppendUint64(nil, math.MaxUint32+1)
	if _, err := Decode(enc, (*Reader).Uint32); !errors.Is(err, ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}

// =============================================================================
// Signed integers
// =============================================================================

// TestInt64RoundTrip tests zigzag encode/decode.
func TestInt64RoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, -2, 2, -125, 125, math.MinInt64, math.MaxInt64}
	for _, v := range values {
		got, err := Decode(AppendInt64(nil, v), (*Reader).Int64)
		if err != nil {
			t.Fatalf("Decode(%d) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}
}

// TestInt64SmallMagnitude tests that small magnitudes stay single-byte.
func TestInt64SmallMagnitude(t *testing.T) {
	for _, v := range []int64{-125, -1, 0, 1, 125} {
		if n := len(AppendInt64(nil, v)); n != 1 {
			t.Errorf("AppendInt64(%d) = %d bytes, want 1", v, n)
		}
	}
}

// =============================================================================
// Bool, float, string, bytes
// =============================================================================

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{false, true} {
		got, err := Decode(AppendBool(nil, v), (*Reader).Bool)
		if err != nil {
			t.Fatalf("Decode(%v) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
	if _, err := Decode([]byte{2}, (*Reader).Bool); !errors.Is(err, ErrInvalid) {
		t.Errorf("bool byte 0x02: got %v, want ErrInvalid", err)
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	values := []float64{0, 1.5, -1.5, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1)}
	for _, v := range values {
		enc := AppendFloat64(nil, v)
		if len(enc) != 8 {
			t.Errorf("AppendFloat64(%v) = %d bytes, want 8", v, len(enc))
		}
		got, err := Decode(enc, (*Reader).Float64)
		if err != nil {
			t.Fatalf("Decode(%v) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
}

// TestFloat64HasNoAbsentDecoding tests that the 0x00 sentinel does not decode
// as a float; bare float fields cannot tolerate absence.
func TestFloat64HasNoAbsentDecoding(t *testing.T) {
	if _, err := Decode([]byte{0}, (*Reader).Float64); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("got %v, want ErrShortBuffer", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	values := []string{"", "a", "region-eu", "\x00\xff binary ok", string(make([]byte, 300))}
	for _, v := range values {
		got, err := Decode(AppendString(nil, v), (*Reader).String)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %q = %q", v, got)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	values := [][]byte{{}, {0}, {1, 2, 3}, bytes.Repeat([]byte{0xab}, 1000)}
	for _, v := range values {
		got, err := Decode(AppendBytes(nil, v), (*Reader).Bytes)
		if err != nil {
			t.Fatalf("Decode(%x) error: %v", v, err)
		}
		if !bytes.Equal(got, v) {
			t.Errorf("round trip %x = %x", v, got)
		}
	}
}

// TestBytesLengthBeyondBuffer tests that an oversized length prefix fails
// instead of allocating.
func TestBytesLengthBeyondBuffer(t *testing.T) {
	enc := AppendUint64(nil, math.MaxUint32)
	if _, err := Decode(enc, (*Reader).Bytes); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("got %v, want ErrShortBuffer", err)
	}
}

// =============================================================================
// Option, slice, composites
// =============================================================================

func TestOptionRoundTrip(t *testing.T) {
	decOpt := func(r *Reader) (*uint64, error) { return Option(r, (*Reader).Uint64) }

	got, err := Decode(AppendOption[uint64](nil, nil, AppendUint64), decOpt)
	if err != nil {
		t.Fatalf("Decode(none) error: %v", err)
	}
	if got != nil {
		t.Errorf("Decode(none) = %v, want nil", *got)
	}

	v := uint64(42)
	got, err = Decode(AppendOption(nil, &v, AppendUint64), decOpt)
	if err != nil {
		t.Fatalf("Decode(some) error: %v", err)
	}
	if got == nil || *got != 42 {
		t.Errorf("Decode(some) = %v, want 42", got)
	}

	if _, err := Decode([]byte{2, 42}, decOpt); !errors.Is(err, ErrInvalid) {
		t.Errorf("option tag 0x02: got %v, want ErrInvalid", err)
	}
}

// TestNoneIsSentinel tests that an absent option is exactly the byte 0x00.
func TestNoneIsSentinel(t *testing.T) {
	if enc := AppendOption[uint64](nil, nil, AppendUint64); !bytes.Equal(enc, []byte{0}) {
		t.Errorf("AppendOption(nil) = %x, want 00", enc)
	}
}

func TestSliceRoundTrip(t *testing.T) {
	values := [][]uint64{nil, {}, {0}, {1, 250, 251, math.MaxUint64}}
	for _, v := range values {
		enc := AppendSlice(nil, v, AppendUint64)
		got, err := Decode(enc, func(r *Reader) ([]uint64, error) {
			return Slice(r, (*Reader).Uint64)
		})
		if err != nil {
			t.Fatalf("Decode(%v) error: %v", v, err)
		}
		if len(got) != len(v) {
			t.Fatalf("round trip %v = %v", v, got)
		}
		for i := range v {
			if got[i] != v[i] {
				t.Errorf("round trip %v = %v", v, got)
			}
		}
	}
}

// TestSliceOfOptions tests nesting, the shape the books record used for
// per-volume scrape timestamps.
func TestSliceOfOptions(t *testing.T) {
	two := uint64(2)
	v := []*uint64{nil, &two, nil}
	enc := AppendSlice(nil, v, func(dst []byte, p *uint64) []byte {
		return AppendOption(dst, p, AppendUint64)
	})
	got, err := Decode(enc, func(r *Reader) ([]*uint64, error) {
		return Slice(r, func(r *Reader) (*uint64, error) {
			return Option(r, (*Reader).Uint64)
		})
	})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(got) != 3 || got[0] != nil || got[1] == nil || *got[1] != 2 || got[2] != nil {
		t.Errorf("round trip = %v", got)
	}
}

// =============================================================================
// Strictness
// =============================================================================

// TestDecodeTrailingBytes tests that unconsumed input fails the decode.
func TestDecodeTrailingBytes(t *testing.T) {
	enc := append(AppendBool(nil, true), 0xff)
	if _, err := Decode(enc, (*Reader).Bool); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("got %v, want ErrTrailingBytes", err)
	}
}

// TestDecodeEmptyInput tests that an empty buffer is a short read for every
// type.
func TestDecodeEmptyInput(t *testing.T) {
	if _, err := Decode(nil, (*Reader).Uint64); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("uint64: got %v, want ErrShortBuffer", err)
	}
	if _, err := Decode(nil, (*Reader).Bool); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("bool: got %v, want ErrShortBuffer", err)
	}
	if _, err := Decode(nil, (*Reader).String); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("string: got %v, want ErrShortBuffer", err)
	}
}

// TestSentinelDecodesEverywhere tests the invariant the record mapper relies
// on: the single byte 0x00 decodes as the empty value of every supported
// absent-tolerant type.
func TestSentinelDecodesEverywhere(t *testing.T) {
	sentinel := []byte{0}

	if v, err := Decode(sentinel, (*Reader).Uint64); err != nil || v != 0 {
		t.Errorf("uint64 sentinel = %d, %v", v, err)
	}
	if v, err := Decode(sentinel, (*Reader).Int64); err != nil || v != 0 {
		t.Errorf("int64 sentinel = %d, %v", v, err)
	}
	if v, err := Decode(sentinel, (*Reader).Bool); err != nil || v {
		t.Errorf("bool sentinel = %v, %v", v, err)
	}
	if v, err := Decode(sentinel, (*Reader).String); err != nil || v != "" {
		t.Errorf("string sentinel = %q, %v", v, err)
	}
	if v, err := Decode(sentinel, (*Reader).Uint32); err != nil || v != 0 {
		t.Errorf("enum sentinel = %d, %v", v, err)
	}
	opt, err := Decode(sentinel, func(r *Reader) (*uint64, error) { return Option(r, (*Reader).Uint64) })
	if err != nil || opt != nil {
		t.Errorf("option sentinel = %v, %v", opt, err)
	}
	s, err := Decode(sentinel, func(r *Reader) ([]uint64, error) { return Slice(r, (*Reader).Uint64) })
	if err != nil || len(s) != 0 {
		t.Errorf("slice sentinel = %v, %v", s, err)
	}
}
