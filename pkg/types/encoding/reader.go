// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// Reader reads confined-encoded values. Like [Writer], the first error is
// sticky: once a read fails every subsequent read returns a zero value.
type Reader struct {
	r     io.Reader
	limit int
	size  int // length of the input if known, otherwise -1
	n     int
	err   error
}

// NewReader returns a reader that fails with [errors.SizeLimit] once more than
// limit bytes would be consumed.
func NewReader(r io.Reader, limit int) *Reader {
	return &Reader{r: r, limit: limit, size: -1}
}

// newSizedReader returns a reader over b. Reading past the end of b fails
// with [errors.IOError] rather than [errors.SizeLimit].
func newSizedReader(b []byte, limit int) *Reader {
	return &Reader{r: bytes.NewReader(b), limit: limit, size: len(b)}
}

// check verifies that n more bytes may be read.
func (r *Reader) check(n int) bool {
	switch {
	case r.size >= 0 && r.n+n > r.size:
		r.err = errors.IOError.WithCauseAndFormat(io.ErrUnexpectedEOF, "input ends after %d bytes", r.size)
	case r.n+n > r.limit:
		r.err = errors.SizeLimit.WithFormat("input exceeds the limit of %d bytes", r.limit)
	default:
		return true
	}
	return false
}

// Err returns the first error encountered by the reader.
func (r *Reader) Err() error { return r.err }

// Len returns the number of bytes consumed.
func (r *Reader) Len() int { return r.n }

// Fail records err if no error has been recorded yet.
func (r *Reader) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// ReadInto fills b.
func (r *Reader) ReadInto(b []byte) bool {
	if r.err != nil || !r.check(len(b)) {
		return false
	}
	n, err := io.ReadFull(r.r, b)
	r.n += n
	if err != nil {
		r.err = errors.IOError.WithCauseAndFormat(err, "read %d bytes: %v", len(b), err)
		return false
	}
	return true
}

// ReadRaw reads n bytes.
func (r *Reader) ReadRaw(n int) []byte {
	if r.err != nil {
		return nil
	}
	// Check the limit before allocating
	if !r.check(n) {
		return nil
	}
	b := make([]byte, n)
	if !r.ReadInto(b) {
		return nil
	}
	return b
}

func (r *Reader) ReadU8() uint8 {
	var b [1]byte
	r.ReadInto(b[:])
	return b[0]
}

func (r *Reader) ReadU16() uint16 {
	var b [2]byte
	r.ReadInto(b[:])
	return binary.LittleEndian.Uint16(b[:])
}

func (r *Reader) ReadU24() uint32 {
	var b [4]byte
	r.ReadInto(b[:3])
	return binary.LittleEndian.Uint32(b[:])
}

func (r *Reader) ReadU32() uint32 {
	var b [4]byte
	r.ReadInto(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func (r *Reader) ReadU64() uint64 {
	var b [8]byte
	r.ReadInto(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

func (r *Reader) ReadI8() int8 { return int8(r.ReadU8()) }
func (r *Reader) ReadI16() int16 { return int16(r.ReadU16()) }
func (r *Reader) ReadI32() int32 { return int32(r.ReadU32()) }
func (r *Reader) ReadI64() int64 { return int64(r.ReadU64()) }

func (r *Reader) ReadF32() float32 { return math.Float32frombits(r.ReadU32()) }
func (r *Reader) ReadF64() float64 { return math.Float64frombits(r.ReadU64()) }

// ReadBool reads a boolean. Any byte other than 0 or 1 is an error.
func (r *Reader) ReadBool() bool {
	v := r.ReadU8()
	switch v {
	case 0:
		return false
	case 1:
		return true
	}
	r.Fail(errors.ValueOutOfRange.WithFormat("%d is not a valid boolean", v))
	return false
}

// ReadLen reads a collection length using the prefix width of the bound. It
// fails if the length is outside the bound, since such a length cannot have
// been produced by a conforming encoder.
func (r *Reader) ReadLen(b Bound) int {
	var n uint64
	switch b.Width() {
	case 1:
		n = uint64(r.ReadU8())
	case 2:
		n = uint64(r.ReadU16())
	case 3:
		n = uint64(r.ReadU24())
	default:
		n = uint64(r.ReadU32())
	}
	if r.err != nil {
		return 0
	}
	if !b.Contains(n) {
		r.Fail(errors.ValueOutOfRange.WithFormat("collection of %d items is outside the bound %v", n, b))
		return 0
	}
	return int(n)
}

// ReadBytes reads a length-prefixed byte string.
func (r *Reader) ReadBytes(b Bound) []byte {
	n := r.ReadLen(b)
	if r.err != nil {
		return nil
	}
	return r.ReadRaw(n)
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString(b Bound) string {
	v := r.ReadBytes(b)
	if r.err != nil {
		return ""
	}
	if !utf8.Valid(v) {
		r.Fail(errors.InvalidUTF8.With("string data are not valid UTF-8"))
		return ""
	}
	return string(v)
}

// ReadValue reads a value that implements [Unmarshaler].
func (r *Reader) ReadValue(v Unmarshaler) {
	if r.err != nil {
		return
	}
	v.UnmarshalConfined(r)
}
