// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding_test

import (
	"bytes"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	. "gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
)

type u8Set []U8

func (s u8Set) MarshalConfined(w *Writer)   { WriteSet(w, Small, s) }
func (s *u8Set) UnmarshalConfined(r *Reader) { *s = ReadSet[U8](r, Small) }

type u8Map map[U8]String

func (m u8Map) MarshalConfined(w *Writer)   { WriteMap(w, Small, m) }
func (m *u8Map) UnmarshalConfined(r *Reader) { *m = ReadMap[U8, String](r, Small) }

func TestIntegersAreLittleEndian(t *testing.T) {
	cases := []struct {
		Name  string
		Value Marshaler
		Bytes []byte
	}{
		{"U8", U8(0x12), []byte{0x12}},
		{"U16", U16(0x1234), []byte{0x34, 0x12}},
		{"U24", U24(0x123456), []byte{0x56, 0x34, 0x12}},
		{"U32", U32(0x12345678), []byte{0x78, 0x56, 0x34, 0x12}},
		{"U64", U64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"I16", I16(-2), []byte{0xFE, 0xFF}},
		{"I64", I64(-1), bytes.Repeat([]byte{0xFF}, 8)},
		{"Bool", Bool(true), []byte{1}},
		{"U128", U128{Lo: 1, Hi: 2}, []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			b, err := Marshal(c.Value)
			require.NoError(t, err)
			require.Equal(t, c.Bytes, b)
		})
	}
}

func TestU24OutOfRange(t *testing.T) {
	_, err := Marshal(U24(1 << 24))
	require.ErrorIs(t, err, errors.ValueOutOfRange)
}

func TestBytesHaveSmallPrefix(t *testing.T) {
	b, err := Marshal(Bytes("abc"))
	require.NoError(t, err)
	require.Equal(t, []byte{3, 0, 'a', 'b', 'c'}, b)

	var v Bytes
	require.NoError(t, Unmarshal(b, &v))
	require.Equal(t, Bytes("abc"), v)
}

func TestBytes32HasNoPrefix(t *testing.T) {
	var v Bytes32
	v[0], v[31] = 1, 2
	b, err := Marshal(v)
	require.NoError(t, err)
	require.Len(t, b, 32)

	var u Bytes32
	require.NoError(t, Unmarshal(b, &u))
	require.Equal(t, v, u)
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	var v String
	err := Unmarshal([]byte{2, 0, 0xC3, 0x28}, &v)
	require.ErrorIs(t, err, errors.InvalidUTF8)
}

func TestBoolRejectsOtherValues(t *testing.T) {
	var v Bool
	err := Unmarshal([]byte{2}, &v)
	require.ErrorIs(t, err, errors.ValueOutOfRange)
}

func TestTrailingData(t *testing.T) {
	var v U8
	err := Unmarshal([]byte{1, 2}, &v)
	require.ErrorIs(t, err, errors.TrailingData)
}

func TestShortInput(t *testing.T) {
	var v U32
	err := Unmarshal([]byte{1, 2}, &v)
	require.ErrorIs(t, err, errors.IOError)
	require.False(t, errors.Is(err, errors.SizeLimit))

	err = UnmarshalFrom(bytes.NewReader([]byte{1, 2}), &v, 100)
	require.ErrorIs(t, err, errors.IOError)

	// Input that is present but over the limit is a size error
	err = UnmarshalFrom(bytes.NewReader([]byte{1, 2, 3, 4}), &v, 2)
	require.ErrorIs(t, err, errors.SizeLimit)
}

func TestSizeLimit(t *testing.T) {
	_, err := MarshalLimit(Bytes(make([]byte, 10)), 11)
	require.ErrorIs(t, err, errors.SizeLimit)

	b, err := MarshalLimit(Bytes(make([]byte, 10)), 12)
	require.NoError(t, err)
	require.Len(t, b, 12)
}

func TestBoundWidth(t *testing.T) {
	require.Equal(t, 1, Tiny.Width())
	require.Equal(t, 2, Small.Width())
	require.Equal(t, 3, Medium.Width())
	require.Equal(t, 4, Large.Width())
	require.Equal(t, 1, Bound{Max: 16}.Width())
}

func TestLengthOutsideBound(t *testing.T) {
	b := Bound{Min: 1, Max: 3}

	buf := new(bytes.Buffer)
	w := NewWriter(buf, 100)
	WriteList(w, b, []U8{1, 2, 3, 4})
	require.ErrorIs(t, w.Err(), errors.SizeLimit)

	// A prefix of 4 cannot come from a list bounded at 3
	r := NewReader(bytes.NewReader([]byte{4, 1, 2, 3, 4}), 100)
	ReadList[U8](r, b)
	require.ErrorIs(t, r.Err(), errors.ValueOutOfRange)

	r = NewReader(bytes.NewReader([]byte{0}), 100)
	ReadList[U8](r, b)
	require.ErrorIs(t, r.Err(), errors.ValueOutOfRange)
}

func TestOption(t *testing.T) {
	type opt = Opt[U8, *U8]

	b, err := Marshal(opt{None[U8]()})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, b)

	b, err = Marshal(opt{Some[U8](13)})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x0D}, b)

	var v opt
	require.NoError(t, Unmarshal([]byte{0x00}, &v))
	require.False(t, v.IsSome())

	require.NoError(t, Unmarshal([]byte{0x01, 0x0D}, &v))
	x, ok := v.Get()
	require.True(t, ok)
	require.Equal(t, U8(13), x)

	for _, tag := range []byte{0x02, 0x80, 0xFF} {
		err = Unmarshal([]byte{tag, 0x0D}, &v)
		require.ErrorIs(t, err, errors.BadTag)
	}
}

func TestSetIsSorted(t *testing.T) {
	s := u8Set{3, 1, 2}
	b, err := Marshal(s)
	require.NoError(t, err)
	require.Equal(t, []byte{3, 0, 1, 2, 3}, b)
	require.Equal(t, u8Set{3, 1, 2}, s, "encoding must not reorder the input")

	var v u8Set
	require.NoError(t, Unmarshal(b, &v))
	require.Equal(t, u8Set{1, 2, 3}, v)
}

func TestSetRejectsDuplicateOnEncode(t *testing.T) {
	_, err := Marshal(u8Set{1, 2, 1})
	require.ErrorIs(t, err, errors.RepeatedValue)
}

func TestSetOrder(t *testing.T) {
	var v u8Set
	err := Unmarshal([]byte{2, 0, 2, 1}, &v)
	require.ErrorIs(t, err, errors.BrokenOrder)

	err = Unmarshal([]byte{2, 0, 1, 1}, &v)
	require.ErrorIs(t, err, errors.RepeatedValue)
}

func TestMapOrder(t *testing.T) {
	m := u8Map{2: "b", 1: "a"}
	b, err := Marshal(m)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 1, 1, 0, 'a', 2, 1, 0, 'b'}, b)

	var v u8Map
	require.NoError(t, Unmarshal(b, &v))
	require.Equal(t, m, v)

	err = Unmarshal([]byte{2, 0, 2, 1, 0, 'b', 1, 1, 0, 'a'}, &v)
	require.ErrorIs(t, err, errors.BrokenOrder)

	err = Unmarshal([]byte{2, 0, 1, 1, 0, 'a', 1, 1, 0, 'b'}, &v)
	require.ErrorIs(t, err, errors.RepeatedValue)
}

func TestHugeDeclaredLength(t *testing.T) {
	// The declared length is far longer than the input; decoding must fail
	// without allocating for the declared length
	var v u8Set
	err := Unmarshal([]byte{0xFF, 0xFF, 1}, &v)
	require.Error(t, err)
}

func TestU256(t *testing.T) {
	x, ok := new(big.Int).SetString("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20", 16)
	require.True(t, ok)
	v, ok := U256FromBig(x)
	require.True(t, ok)
	require.Zero(t, x.Cmp(v.Big()))

	b, err := Marshal(v)
	require.NoError(t, err)
	require.Equal(t, byte(0x20), b[0])
	require.Equal(t, byte(0x01), b[31])

	var u U256
	require.NoError(t, Unmarshal(b, &u))
	require.Equal(t, v, u)
	require.Equal(t, 0, u.Compare(v))
	require.Equal(t, -1, U256{}.Compare(v))

	_, ok = U256FromBig(new(big.Int).Lsh(big.NewInt(1), 256))
	require.False(t, ok)
}

// roundTrip decodes the encoding of v into a fresh value, requires it to
// equal v and to re-encode identically, and returns the encoding.
func roundTrip[T Marshaler, PT interface {
	*T
	Unmarshaler
}](t *testing.T, v T) []byte {
	t.Helper()
	b, err := Marshal(v)
	require.NoError(t, err)

	u := new(T)
	require.NoError(t, Unmarshal(b, PT(u)))
	require.Equal(t, v, *u)

	c, err := Marshal(*u)
	require.NoError(t, err)
	require.Equal(t, b, c)
	return b
}

// distinct round-trips every value and requires distinct values to have
// distinct encodings.
func distinct[T Marshaler, PT interface {
	*T
	Unmarshaler
}](t *testing.T, values ...T) {
	t.Helper()
	seen := map[string]int{}
	for i, v := range values {
		b := roundTrip[T, PT](t, v)
		j, ok := seen[string(b)]
		require.False(t, ok, "values %d and %d share the encoding %x", j, i, b)
		seen[string(b)] = i
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	negZero := math.Copysign(0, -1)

	distinct(t, U8(0), U8(1), U8(255))
	distinct(t, U16(0), U16(1), U16(256), U16(65535))
	distinct(t, U24(0), U24(1<<16), U24(1<<24-1))
	distinct(t, U32(0), U32(7), U32(1<<31))
	distinct(t, U64(0), U64(1), U64(1<<63))
	distinct(t, I8(-128), I8(-1), I8(0), I8(127))
	distinct(t, I16(-1), I16(1), I16(-32768))
	distinct(t, I32(-5), I32(5), I32(0))
	distinct(t, I64(-1), I64(0), I64(1<<62))
	distinct(t, F32(0), F32(float32(negZero)), F32(1.5), F32(-1.5))
	distinct(t, F64(0), F64(negZero), F64(1.5), F64(math.Inf(1)))
	distinct(t, Bool(false), Bool(true))
	distinct(t, Bytes{}, Bytes{0}, Bytes{0, 0}, Bytes{1}, Bytes("hello"))
	distinct(t, String(""), String("a"), String("ab"), String("world"))
	distinct(t, Bytes32{}, Bytes32{1}, Bytes32{31: 1})
	distinct(t, U128{}, U128{Lo: 1}, U128{Hi: 1})
	distinct(t, U256{}, U256{1}, U256{3: 1})
	distinct(t, u8Set{}, u8Set{1}, u8Set{1, 2}, u8Set{2}, u8Set{4, 9})
	distinct(t, u8Map{}, u8Map{1: ""}, u8Map{1: "a"}, u8Map{2: ""}, u8Map{1: "", 2: ""})
}

type f64Set []F64

func (s f64Set) MarshalConfined(w *Writer)   { WriteSet(w, Small, s) }
func (s *f64Set) UnmarshalConfined(r *Reader) { *s = ReadSet[F64](r, Small) }

func TestFloatSetKeepsSignedZeros(t *testing.T) {
	negZero := F64(math.Copysign(0, -1))
	b, err := Marshal(f64Set{negZero, 0})
	require.NoError(t, err)

	var v f64Set
	require.NoError(t, Unmarshal(b, &v))
	require.Len(t, v, 2)
	require.Equal(t, uint64(0), math.Float64bits(float64(v[0])))
	require.Equal(t, math.Float64bits(float64(negZero)), math.Float64bits(float64(v[1])))

	_, err = Marshal(f64Set{negZero, negZero})
	require.ErrorIs(t, err, errors.RepeatedValue)

	nan := F64(math.NaN())
	require.Equal(t, 0, nan.Compare(nan))
	require.Equal(t, -1, nan.Compare(0))
}
