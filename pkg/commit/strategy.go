// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package commit

import (
	"bytes"

	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/merkle"
)

// Kind identifies a commit encoding strategy.
type Kind uint8

const (
	// KindStrict encodes the value directly.
	KindStrict Kind = iota + 1
	// KindConcealStrict conceals the value and encodes the result.
	KindConcealStrict
	// KindIntoU8 converts the value to a byte.
	KindIntoU8
	// KindIntoInner unwraps a newtype and commit encodes the inner value.
	KindIntoInner
	// KindHash encodes the value, hashes it, and encodes the hash.
	KindHash
	// KindID encodes the commitment identifier of the value.
	KindID
	// KindMerklize encodes the Merkle root of the value's leaves.
	KindMerklize
)

var kindNames = map[Kind]string{
	KindStrict:        "strict",
	KindConcealStrict: "conceal-strict",
	KindIntoU8:        "into-u8",
	KindIntoInner:     "into-inner",
	KindHash:          "hash",
	KindID:            "id",
	KindMerklize:      "merklize",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Strategy is how a value is transformed and written for a commitment. The
// set of strategies is closed: a strategy can only be created with one of the
// constructors in this package, and each constructor only accepts values that
// have the capability the strategy needs.
type Strategy interface {
	Kind() Kind
	commitEncode(*encoding.Writer)
}

// Committable is implemented by every type that participates in a
// commitment. A type returns the same kind of strategy for every value.
type Committable interface {
	CommitStrategy() Strategy
}

// Concealer is implemented by types that have a concealed form. Conceal must
// be deterministic and must not be invertible.
type Concealer[C any] interface {
	Conceal() C
}

// Identifiable is implemented by types that have a commitment identifier.
type Identifiable interface {
	CommitmentID() hash.Digest
}

type strictStrategy struct{ value encoding.Marshaler }

type concealStrategy[C encoding.Marshaler] struct{ value Concealer[C] }

type intoU8Strategy uint8

type intoInnerStrategy struct{ inner Committable }

type hashStrategy struct {
	tag   hash.Tag
	value encoding.Marshaler
}

type idStrategy struct{ id hash.Digest }

type merklizeStrategy struct {
	hasher merkle.Hasher
	leaves []Committable
}

// Strict commits to the confined encoding of v.
func Strict(v encoding.Marshaler) Strategy {
	return strictStrategy{v}
}

// ConcealStrict commits to the confined encoding of the concealed form of v.
func ConcealStrict[C encoding.Marshaler](v Concealer[C]) Strategy {
	return concealStrategy[C]{v}
}

// IntoU8 commits to v as a single byte.
func IntoU8[T ~uint8](v T) Strategy {
	return intoU8Strategy(v)
}

// IntoInner commits to the value wrapped by a newtype.
func IntoInner(inner Committable) Strategy {
	return intoInnerStrategy{inner}
}

// Hash commits to the tagged hash of the confined encoding of v.
func Hash(tag hash.Tag, v encoding.Marshaler) Strategy {
	return hashStrategy{tag, v}
}

// ID commits to the commitment identifier of v.
func ID(v Identifiable) Strategy {
	return idStrategy{v.CommitmentID()}
}

// Merklize commits to the root of a tree whose leaves are the commit
// encodings of leaves.
func Merklize(tag hash.Tag, leaves ...Committable) Strategy {
	return merklizeStrategy{merkle.NewHasher(tag), leaves}
}

// MerklizeSlice is [Merklize] for a slice of a concrete type.
func MerklizeSlice[T Committable](tag hash.Tag, items []T) Strategy {
	leaves := make([]Committable, len(items))
	for i, v := range items {
		leaves[i] = v
	}
	return Merklize(tag, leaves...)
}

func (strictStrategy) Kind() Kind     { return KindStrict }
func (concealStrategy[C]) Kind() Kind { return KindConcealStrict }
func (intoU8Strategy) Kind() Kind     { return KindIntoU8 }
func (intoInnerStrategy) Kind() Kind  { return KindIntoInner }
func (hashStrategy) Kind() Kind       { return KindHash }
func (idStrategy) Kind() Kind         { return KindID }
func (merklizeStrategy) Kind() Kind   { return KindMerklize }

func (s strictStrategy) commitEncode(w *encoding.Writer) {
	w.WriteValue(s.value)
}

func (s concealStrategy[C]) commitEncode(w *encoding.Writer) {
	w.WriteValue(s.value.Conceal())
}

func (s intoU8Strategy) commitEncode(w *encoding.Writer) {
	w.WriteU8(uint8(s))
}

func (s intoInnerStrategy) commitEncode(w *encoding.Writer) {
	s.inner.CommitStrategy().commitEncode(w)
}

func (s hashStrategy) commitEncode(w *encoding.Writer) {
	h := s.tag.New()
	err := encoding.MarshalTo(h, s.value, encodeLimit)
	if err != nil {
		w.Fail(err)
		return
	}
	var d hash.Digest
	h.Sum(d[:0])
	w.WriteRaw(d[:])
}

func (s idStrategy) commitEncode(w *encoding.Writer) {
	w.WriteRaw(s.id[:])
}

func (s merklizeStrategy) commitEncode(w *encoding.Writer) {
	if w.Err() != nil {
		return
	}
	data := make([][]byte, len(s.leaves))
	for i, leaf := range s.leaves {
		buf := new(bytes.Buffer)
		err := Encode(buf, leaf)
		if err != nil {
			w.Fail(err)
			return
		}
		data[i] = buf.Bytes()
	}
	root := s.hasher.Merklize(data)
	w.WriteRaw(root[:])
}
