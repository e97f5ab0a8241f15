// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package commit

import (
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
)

// Scheme creates commitments of type C to messages of type M.
type Scheme[M any, C comparable] interface {
	Commit(msg M) C
}

// TryScheme is a [Scheme] where creating a commitment can fail.
type TryScheme[M any, C comparable] interface {
	TryCommit(msg M) (C, error)
}

// Cloner is a container that can be deep copied.
type Cloner[X any] interface {
	Clone() X
}

// EmbedScheme commits to a message by modifying a container. The commitment
// holds whatever is needed to reconstruct the original container.
type EmbedScheme[M any, C comparable, X Cloner[X]] interface {
	EmbedCommit(container X, msg M) (C, error)
}

// Verify returns true if c is the commitment of s to msg. It commits again
// and compares, so it can never disagree with Commit.
func Verify[M any, C comparable](s Scheme[M, C], c C, msg M) bool {
	return s.Commit(msg) == c
}

// TryVerify is [Verify] for a [TryScheme]. An error means the commitment
// could not be computed, which is different from a mismatch.
func TryVerify[M any, C comparable](s TryScheme[M, C], c C, msg M) (bool, error) {
	d, err := s.TryCommit(msg)
	if err != nil {
		return false, err
	}
	return d == c, nil
}

// EmbedVerify verifies c against msg embedded in a copy of container. The
// container is never modified. If embedding into the copy fails, the message
// does not correspond to the commitment and EmbedVerify returns false without
// an error.
func EmbedVerify[M any, C comparable, X Cloner[X]](s EmbedScheme[M, C, X], c C, container X, msg M) (bool, error) {
	d, err := s.EmbedCommit(container.Clone(), msg)
	if err != nil {
		return false, nil //nolint:nilerr
	}
	return d == c, nil
}

// SchemeFunc adapts a function to a [Scheme].
type SchemeFunc[M any, C comparable] func(M) C

func (f SchemeFunc[M, C]) Commit(msg M) C { return f(msg) }

// TrySchemeFunc adapts a function to a [TryScheme].
type TrySchemeFunc[M any, C comparable] func(M) (C, error)

func (f TrySchemeFunc[M, C]) TryCommit(msg M) (C, error) { return f(msg) }

// Untagged commits to a byte message by hashing it with the engine.
type Untagged struct {
	Engine hash.Engine
}

func (s Untagged) Commit(msg []byte) hash.Digest {
	return s.Engine.Sum(msg)
}

// Tagged commits to a byte message with a tagged hash.
type Tagged struct {
	Tag hash.Tag
}

func (s Tagged) Commit(msg []byte) hash.Digest {
	return s.Tag.Sum(msg)
}

// Bounded commits to a byte message with a tagged hash, failing if the
// message is longer than Max.
type Bounded struct {
	Tag hash.Tag
	Max int
}

func (s Bounded) TryCommit(msg []byte) (hash.Digest, error) {
	if len(msg) > s.Max {
		return hash.Digest{}, errSizeLimit(len(msg), s.Max)
	}
	return s.Tag.Sum(msg), nil
}
