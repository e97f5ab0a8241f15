// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding

import (
	"bytes"
	"cmp"
	"math"
	"math/big"
	"strings"
)

// Primitive wrappers. Each has a fixed width encoding (except Bytes and
// String) and a total order so it can be used in sets and as a map key.

type U8 uint8
type U16 uint16
type U24 uint32
type U32 uint32
type U64 uint64
type I8 int8
type I16 int16
type I32 int32
type I64 int64
type F32 float32
type F64 float64
type Bool bool

// Bytes is a byte string with a two byte length prefix.
type Bytes []byte

// String is a UTF-8 string with a two byte length prefix.
type String string

// Bytes32 is a fixed size byte array, encoded without a length prefix.
type Bytes32 [32]byte

// U128 is a 128-bit unsigned integer.
type U128 struct{ Lo, Hi uint64 }

// U256 is a 256-bit unsigned integer stored as little-endian 64-bit limbs.
type U256 [4]uint64

func (v U8) MarshalConfined(w *Writer) { w.WriteU8(uint8(v)) }
func (v U16) MarshalConfined(w *Writer) { w.WriteU16(uint16(v)) }
func (v U24) MarshalConfined(w *Writer) { w.WriteU24(uint32(v)) }
func (v U32) MarshalConfined(w *Writer) { w.WriteU32(uint32(v)) }
func (v U64) MarshalConfined(w *Writer) { w.WriteU64(uint64(v)) }
func (v I8) MarshalConfined(w *Writer) { w.WriteI8(int8(v)) }
func (v I16) MarshalConfined(w *Writer) { w.WriteI16(int16(v)) }
func (v I32) MarshalConfined(w *Writer) { w.WriteI32(int32(v)) }
func (v I64) MarshalConfined(w *Writer) { w.WriteI64(int64(v)) }
func (v F32) MarshalConfined(w *Writer) { w.WriteF32(float32(v)) }
func (v F64) MarshalConfined(w *Writer) { w.WriteF64(float64(v)) }
func (v Bool) MarshalConfined(w *Writer) { w.WriteBool(bool(v)) }

func (v Bytes) MarshalConfined(w *Writer) { w.WriteBytes(Small, v) }
func (v String) MarshalConfined(w *Writer) { w.WriteString(Small, string(v)) }
func (v Bytes32) MarshalConfined(w *Writer) { w.WriteRaw(v[:]) }

func (v U128) MarshalConfined(w *Writer) {
	w.WriteU64(v.Lo)
	w.WriteU64(v.Hi)
}

func (v U256) MarshalConfined(w *Writer) {
	for _, l := range v {
		w.WriteU64(l)
	}
}

func (v *U8) UnmarshalConfined(r *Reader) { *v = U8(r.ReadU8()) }
func (v *U16) UnmarshalConfined(r *Reader) { *v = U16(r.ReadU16()) }
func (v *U24) UnmarshalConfined(r *Reader) { *v = U24(r.ReadU24()) }
func (v *U32) UnmarshalConfined(r *Reader) { *v = U32(r.ReadU32()) }
func (v *U64) UnmarshalConfined(r *Reader) { *v = U64(r.ReadU64()) }
func (v *I8) UnmarshalConfined(r *Reader) { *v = I8(r.ReadI8()) }
func (v *I16) UnmarshalConfined(r *Reader) { *v = I16(r.ReadI16()) }
func (v *I32) UnmarshalConfined(r *Reader) { *v = I32(r.ReadI32()) }
func (v *I64) UnmarshalConfined(r *Reader) { *v = I64(r.ReadI64()) }
func (v *F32) UnmarshalConfined(r *Reader) { *v = F32(r.ReadF32()) }
func (v *F64) UnmarshalConfined(r *Reader) { *v = F64(r.ReadF64()) }
func (v *Bool) UnmarshalConfined(r *Reader) { *v = Bool(r.ReadBool()) }

func (v *Bytes) UnmarshalConfined(r *Reader) { *v = r.ReadBytes(Small) }
func (v *String) UnmarshalConfined(r *Reader) { *v = String(r.ReadString(Small)) }
func (v *Bytes32) UnmarshalConfined(r *Reader) { r.ReadInto(v[:]) }

func (v *U128) UnmarshalConfined(r *Reader) {
	v.Lo = r.ReadU64()
	v.Hi = r.ReadU64()
}

func (v *U256) UnmarshalConfined(r *Reader) {
	for i := range v {
		v[i] = r.ReadU64()
	}
}

func (v U8) Compare(u U8) int { return cmp.Compare(v, u) }
func (v U16) Compare(u U16) int { return cmp.Compare(v, u) }
func (v U24) Compare(u U24) int { return cmp.Compare(v, u) }
func (v U32) Compare(u U32) int { return cmp.Compare(v, u) }
func (v U64) Compare(u U64) int { return cmp.Compare(v, u) }
func (v I8) Compare(u I8) int { return cmp.Compare(v, u) }
func (v I16) Compare(u I16) int { return cmp.Compare(v, u) }
func (v I32) Compare(u I32) int { return cmp.Compare(v, u) }
func (v I64) Compare(u I64) int { return cmp.Compare(v, u) }

// Floats order numerically. Values that compare equal numerically but encode
// differently, such as +0 and -0 or two NaNs, order by their bits.
func (v F32) Compare(u F32) int {
	if c := cmp.Compare(v, u); c != 0 {
		return c
	}
	return cmp.Compare(math.Float32bits(float32(v)), math.Float32bits(float32(u)))
}

func (v F64) Compare(u F64) int {
	if c := cmp.Compare(v, u); c != 0 {
		return c
	}
	return cmp.Compare(math.Float64bits(float64(v)), math.Float64bits(float64(u)))
}

func (v Bool) Compare(u Bool) int {
	switch {
	case v == u:
		return 0
	case !bool(v):
		return -1
	default:
		return +1
	}
}

func (v Bytes) Compare(u Bytes) int { return bytes.Compare(v, u) }
func (v String) Compare(u String) int { return strings.Compare(string(v), string(u)) }
func (v Bytes32) Compare(u Bytes32) int { return bytes.Compare(v[:], u[:]) }

func (v U128) Compare(u U128) int {
	if c := cmp.Compare(v.Hi, u.Hi); c != 0 {
		return c
	}
	return cmp.Compare(v.Lo, u.Lo)
}

func (v U256) Compare(u U256) int {
	for i := len(v) - 1; i >= 0; i-- {
		if c := cmp.Compare(v[i], u[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Big returns v as a big integer.
func (v U128) Big() *big.Int {
	x := new(big.Int).SetUint64(v.Hi)
	x.Lsh(x, 64)
	return x.Or(x, new(big.Int).SetUint64(v.Lo))
}

// Big returns v as a big integer.
func (v U256) Big() *big.Int {
	x := new(big.Int)
	for i := len(v) - 1; i >= 0; i-- {
		x.Lsh(x, 64)
		x.Or(x, new(big.Int).SetUint64(v[i]))
	}
	return x
}

// U256FromBig converts x to a U256. It returns false if x is negative or does
// not fit in 256 bits.
func U256FromBig(x *big.Int) (U256, bool) {
	var v U256
	if x.Sign() < 0 || x.BitLen() > 256 {
		return v, false
	}
	y := new(big.Int).Set(x)
	mask := new(big.Int).SetUint64(^uint64(0))
	for i := range v {
		v[i] = new(big.Int).And(y, mask).Uint64()
		y.Rsh(y, 64)
	}
	return v, true
}
