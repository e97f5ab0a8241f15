// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package keyvalue defines the storage interfaces shared by the memory, bolt
// and leveldb backends.
package keyvalue

import (
	"encoding/hex"

	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// Store is a key-value store.
type Store interface {
	// Get loads a value. Get fails with [errors.NotFound] if the key does not
	// exist.
	Get(Key) ([]byte, error)

	// Put stores a value.
	Put(Key, []byte) error

	// Delete removes a value.
	Delete(Key) error

	// ForEach calls fn for every stored value, in no particular order.
	ForEach(fn func(Key, []byte) error) error
}

// Key identifies a value by bucket and a 32-byte identifier.
type Key struct {
	Bucket string
	ID     [32]byte
}

// NewKey returns a key.
func NewKey(bucket string, id [32]byte) Key {
	return Key{Bucket: bucket, ID: id}
}

func (k Key) String() string {
	return k.Bucket + "/" + hex.EncodeToString(k.ID[:])
}

// MarshalBinary returns the flat form of the key: the length of the bucket
// name, the bucket name and the identifier.
func (k Key) MarshalBinary() ([]byte, error) {
	if len(k.Bucket) > 0xFF {
		return nil, errors.BadRequest.WithFormat("bucket name %q is too long", k.Bucket)
	}
	b := make([]byte, 0, 1+len(k.Bucket)+len(k.ID))
	b = append(b, byte(len(k.Bucket)))
	b = append(b, k.Bucket...)
	b = append(b, k.ID[:]...)
	return b, nil
}

// UnmarshalBinary parses the flat form of a key.
func (k *Key) UnmarshalBinary(b []byte) error {
	if len(b) == 0 || len(b) != 1+int(b[0])+len(k.ID) {
		return errors.EncodingError.WithFormat("invalid key of length %d", len(b))
	}
	n := int(b[0])
	k.Bucket = string(b[1 : 1+n])
	copy(k.ID[:], b[1+n:])
	return nil
}

// NotFound returns the error for a missing key.
func NotFound(key Key) error {
	return errors.NotFound.WithFormat("%v not found", key)
}
