// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package commit implements commit encoding and commit-verify schemes.
//
// A committable type declares one [Strategy] for how it is prepared for a
// commitment: encoded as is, concealed, converted, hashed, identified or
// merklized. [Encode] applies that strategy and writes the resulting confined
// encoding, usually directly into a hasher. Schemes then commit to messages
// and verify a commitment by committing again and comparing.
package commit

import (
	"bytes"
	"io"
	"math"

	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
)

const encodeLimit = math.MaxInt32

// Encode writes the commit encoding of v to w.
func Encode(w io.Writer, v Committable) error {
	wr := encoding.NewWriter(w, encodeLimit)
	v.CommitStrategy().commitEncode(wr)
	return wr.Err()
}

// Serialize returns the commit encoding of v.
func Serialize(v Committable) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := Encode(buf, v)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ComputeID returns the commitment identifier of v: the hash of its commit
// encoding, tagged with the name of its type.
func ComputeID(tag hash.Tag, v Committable) (hash.Digest, error) {
	h := tag.New()
	err := Encode(h, v)
	if err != nil {
		return hash.Digest{}, err
	}
	var d hash.Digest
	h.Sum(d[:0])
	return d, nil
}

// Holder attaches the strict strategy to a value that only knows how to
// encode itself, such as the primitives of the encoding package.
type Holder[T encoding.Marshaler] struct {
	Value T
}

// AsStrict wraps v in a [Holder].
func AsStrict[T encoding.Marshaler](v T) Holder[T] {
	return Holder[T]{v}
}

func (h Holder[T]) CommitStrategy() Strategy { return Strict(h.Value) }
