// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package encoding implements confined binary encoding: a deterministic,
// schema-less format where every value has exactly one byte representation.
// Integers are fixed width little-endian, collections carry a length prefix
// sized by their bound, sets and maps are written in ascending order, and
// every encode and decode is limited to a maximum number of bytes.
package encoding

import (
	"bytes"
	"io"

	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// DefaultLimit is the size limit used by [Marshal] and [Unmarshal].
const DefaultLimit = 1 << 24

// Marshaler is implemented by types that can write themselves in confined
// encoding. Errors are recorded on the writer.
type Marshaler interface {
	MarshalConfined(*Writer)
}

// Unmarshaler is implemented by types that can read themselves from confined
// encoding. Errors are recorded on the reader.
type Unmarshaler interface {
	UnmarshalConfined(*Reader)
}

// Value is a type that can be both encoded and decoded.
type Value interface {
	Marshaler
	Unmarshaler
}

// Marshal encodes v with [DefaultLimit].
func Marshal(v Marshaler) ([]byte, error) {
	return MarshalLimit(v, DefaultLimit)
}

// MarshalLimit encodes v, failing with [errors.SizeLimit] if the encoding is
// longer than limit.
func MarshalLimit(v Marshaler, limit int) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := MarshalTo(buf, v, limit)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalTo encodes v into w.
func MarshalTo(w io.Writer, v Marshaler, limit int) error {
	wr := NewWriter(w, limit)
	v.MarshalConfined(wr)
	return wr.Err()
}

// Unmarshal decodes v from b. Any bytes remaining after v is decoded are
// treated as corruption and fail with [errors.TrailingData].
func Unmarshal(b []byte, v Unmarshaler) error {
	if len(b) > DefaultLimit {
		return errors.SizeLimit.WithFormat("input of %d bytes exceeds the limit of %d", len(b), DefaultLimit)
	}
	rd := newSizedReader(b, len(b))
	v.UnmarshalConfined(rd)
	if err := rd.Err(); err != nil {
		return err
	}
	if rd.Len() < len(b) {
		return errors.TrailingData.WithFormat("%d bytes remain after decoding", len(b)-rd.Len())
	}
	return nil
}

// UnmarshalFrom decodes v from r, reading at most limit bytes. Unlike
// [Unmarshal] it does not check for trailing data, since r may hold further
// values.
func UnmarshalFrom(r io.Reader, v Unmarshaler, limit int) error {
	rd := NewReader(r, limit)
	v.UnmarshalConfined(rd)
	return rd.Err()
}

// Equal returns true if a and b have the same encoding.
func Equal(a, b Marshaler) bool {
	x, err := Marshal(a)
	if err != nil {
		return false
	}
	y, err := Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(x, y)
}
