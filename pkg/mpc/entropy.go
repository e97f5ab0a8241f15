// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package mpc

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
)

// EntropySource supplies the entropy that fills unused slots of a tree.
type EntropySource interface {
	Uint64() uint64
}

// FixedEntropy always returns the same value. It makes tree construction
// deterministic for tests.
type FixedEntropy uint64

func (e FixedEntropy) Uint64() uint64 { return uint64(e) }

type cryptoEntropy struct{}

func (cryptoEntropy) Uint64() uint64 {
	var b [8]byte
	_, err := rand.Read(b[:])
	if err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Option configures [Commit].
type Option func(*options)

type options struct {
	entropy  EntropySource
	maxDepth uint8
	logger   *slog.Logger
}

// WithEntropy sets the entropy source. The default is crypto/rand.
func WithEntropy(src EntropySource) Option {
	return func(o *options) { o.entropy = src }
}

// WithMaxDepth limits how deep the tree may grow while placing messages. The
// default and the upper limit is [MaxDepth].
func WithMaxDepth(depth uint8) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
