// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package hash

import (
	"crypto/sha256"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Engine is a 256-bit hash function.
type Engine uint8

const (
	// SHA256 is SHA-256. It is the default engine.
	SHA256 Engine = iota
	// Blake3 is BLAKE3 with a 32-byte output.
	Blake3
	// SHA3 is SHA3-256.
	SHA3
)

var engineNames = map[Engine]string{
	SHA256: "sha256",
	Blake3: "blake3",
	SHA3:   "sha3",
}

func (e Engine) String() string {
	if s, ok := engineNames[e]; ok {
		return s
	}
	return "unknown"
}

// ParseEngine parses the name of an engine. Matching is case-insensitive.
func ParseEngine(s string) (Engine, error) {
	s = strings.ToLower(s)
	for e, name := range engineNames {
		if name == s {
			return e, nil
		}
	}
	switch s {
	case "", "sha-256":
		return SHA256, nil
	case "sha3-256":
		return SHA3, nil
	}
	return 0, errors.BadRequest.WithFormat("unknown hash engine %q", s)
}

func (e Engine) MarshalText() ([]byte, error) {
	if _, ok := engineNames[e]; !ok {
		return nil, errors.BadRequest.WithFormat("unknown hash engine %d", e)
	}
	return []byte(e.String()), nil
}

func (e *Engine) UnmarshalText(b []byte) error {
	v, err := ParseEngine(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// New returns a new hasher for the engine.
func (e Engine) New() hash.Hash {
	switch e {
	case Blake3:
		return blake3.New()
	case SHA3:
		return sha3.New256()
	default:
		return sha256.New()
	}
}

// Sum hashes the concatenation of data.
func (e Engine) Sum(data ...[]byte) Digest {
	h := e.New()
	for _, b := range data {
		_, _ = h.Write(b)
	}
	return sum(h)
}

func sum(h hash.Hash) Digest {
	var d Digest
	h.Sum(d[:0])
	return d
}
