// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package hash

import (
	"bytes"
	"encoding/hex"

	"github.com/mr-tron/base58"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
)

// Size is the size of a digest in bytes.
const Size = 32

// Digest is a 32-byte hash. It encodes as a raw fixed size array.
type Digest [Size]byte

// String returns the hex encoding of the digest. This is the canonical format
// used in log output and configuration.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Base58 returns the base58 encoding of the digest.
func (d Digest) Base58() string {
	return base58.Encode(d[:])
}

// IsZero returns true if every byte of the digest is zero.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Compare orders digests bytewise.
func (d Digest) Compare(e Digest) int {
	return bytes.Compare(d[:], e[:])
}

func (d Digest) MarshalConfined(w *encoding.Writer) { w.WriteRaw(d[:]) }

func (d *Digest) UnmarshalConfined(r *encoding.Reader) { r.ReadInto(d[:]) }

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(b []byte) error {
	v, err := ParseDigest(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDigest parses a hex-encoded digest. It fails if the string is not a
// valid 64-character hex encoding of 32 bytes.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, errors.BadRequest.WithFormat("parse digest: %w", err)
	}
	return digestFrom(b)
}

// ParseDigestBase58 parses a base58-encoded digest.
func ParseDigestBase58(s string) (Digest, error) {
	var d Digest
	b, err := base58.Decode(s)
	if err != nil {
		return d, errors.BadRequest.WithFormat("parse digest: %w", err)
	}
	return digestFrom(b)
}

func digestFrom(b []byte) (Digest, error) {
	var d Digest
	if len(b) != Size {
		return d, errors.BadRequest.WithFormat("digest is %d bytes, want %d", len(b), Size)
	}
	copy(d[:], b)
	return d, nil
}
