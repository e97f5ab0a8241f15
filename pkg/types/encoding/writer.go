// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding

import (
	"encoding/binary"
	"io"
	"math"

	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// Writer writes confined-encoded values. The first error is recorded and all
// subsequent writes are ignored, so callers write a whole value and check
// [Writer.Err] once.
type Writer struct {
	w     io.Writer
	limit int
	n     int
	err   error
}

// NewWriter returns a writer that fails with [errors.SizeLimit] once more than
// limit bytes would be written.
func NewWriter(w io.Writer, limit int) *Writer {
	return &Writer{w: w, limit: limit}
}

// Err returns the first error encountered by the writer.
func (w *Writer) Err() error { return w.err }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return w.n }

// Fail records err if no error has been recorded yet.
func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// WriteRaw writes bytes without a length prefix.
func (w *Writer) WriteRaw(b []byte) {
	if w.err != nil {
		return
	}
	if w.n+len(b) > w.limit {
		w.err = errors.SizeLimit.WithFormat("encoding exceeds the limit of %d bytes", w.limit)
		return
	}
	n, err := w.w.Write(b)
	w.n += n
	if err != nil {
		w.err = errors.IOError.WithCauseAndFormat(err, "write: %v", err)
	}
}

func (w *Writer) WriteU8(v uint8) {
	w.WriteRaw([]byte{v})
}

func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.WriteRaw(b[:])
}

// WriteU24 writes the low 24 bits of v. It fails if v does not fit.
func (w *Writer) WriteU24(v uint32) {
	if v > MaxMedium {
		w.Fail(errors.ValueOutOfRange.WithFormat("%d does not fit in 24 bits", v))
		return
	}
	w.WriteRaw([]byte{byte(v), byte(v >> 8), byte(v >> 16)})
}

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.WriteRaw(b[:])
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.WriteRaw(b[:])
}

func (w *Writer) WriteI8(v int8) { w.WriteU8(uint8(v)) }
func (w *Writer) WriteI16(v int16) { w.WriteU16(uint16(v)) }
func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }
func (w *Writer) WriteI64(v int64) { w.WriteU64(uint64(v)) }

func (w *Writer) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }
func (w *Writer) WriteF64(v float64) { w.WriteU64(math.Float64bits(v)) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

// WriteLen writes a collection length using the prefix width of the bound. It
// fails if n is outside the bound.
func (w *Writer) WriteLen(b Bound, n int) {
	if n < 0 || !b.Contains(uint64(n)) {
		w.Fail(errors.SizeLimit.WithFormat("collection of %d items is outside the bound %v", n, b))
		return
	}
	switch b.Width() {
	case 1:
		w.WriteU8(uint8(n))
	case 2:
		w.WriteU16(uint16(n))
	case 3:
		w.WriteU24(uint32(n))
	default:
		w.WriteU32(uint32(n))
	}
}

// WriteBytes writes a length-prefixed byte string.
func (w *Writer) WriteBytes(b Bound, v []byte) {
	w.WriteLen(b, len(v))
	w.WriteRaw(v)
}

// WriteString writes a length-prefixed UTF-8 string.
func (w *Writer) WriteString(b Bound, v string) {
	w.WriteBytes(b, []byte(v))
}

// WriteValue writes a value that implements [Marshaler].
func (w *Writer) WriteValue(v Marshaler) {
	if w.err != nil {
		return
	}
	v.MarshalConfined(w)
}
