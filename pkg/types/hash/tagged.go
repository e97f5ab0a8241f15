// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package hash implements tagged hashing. A tagged hash of a message is
// H(H(tag) || H(tag) || message), so hashes computed for different purposes
// can never collide.
package hash

import "hash"

// Tag is a domain separation tag bound to an engine. The tag prefix is
// computed once when the tag is created.
type Tag struct {
	engine Engine
	name   string
	prefix [2 * Size]byte
}

// NewTag returns a SHA-256 tag.
func NewTag(name string) Tag {
	return SHA256.NewTag(name)
}

// NewTag returns a tag that hashes with the engine.
func (e Engine) NewTag(name string) Tag {
	t := Tag{engine: e, name: name}
	d := e.Sum([]byte(name))
	copy(t.prefix[:Size], d[:])
	copy(t.prefix[Size:], d[:])
	return t
}

func (t Tag) Name() string   { return t.name }
func (t Tag) Engine() Engine { return t.engine }
func (t Tag) String() string { return t.name }

// Sub returns a tag named "<name>:<suffix>" with the same engine.
func (t Tag) Sub(suffix string) Tag {
	return t.engine.NewTag(t.name + ":" + suffix)
}

// New returns a hasher that has already consumed the tag prefix.
func (t Tag) New() hash.Hash {
	h := t.engine.New()
	_, _ = h.Write(t.prefix[:])
	return h
}

// Sum returns the tagged hash of the concatenation of data.
func (t Tag) Sum(data ...[]byte) Digest {
	h := t.New()
	for _, b := range data {
		_, _ = h.Write(b)
	}
	return sum(h)
}

// Tagged returns the SHA-256 tagged hash of data.
func Tagged(tag string, data ...[]byte) Digest {
	return NewTag(tag).Sum(data...)
}
