// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package committest checks commit-verify schemes against a corpus of
// messages.
package committest

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/commitverify/pkg/commit"
)

// Rounds is the number of times each commitment is recomputed to check that
// it is deterministic.
const Rounds = 10

// Messages returns a corpus of messages that must all produce different
// commitments.
func Messages() [][]byte {
	return [][]byte{
		// Empty
		{},
		// Zero byte
		{0},
		// Text
		[]byte("test"),
		// Length extended text
		[]byte("test*"),
		// Short binary
		mustHex("deadbeef"),
		// Length extended
		mustHex("deadbeef00"),
		// Prefixed
		mustHex("00deadbeef"),
		// Public key as text
		[]byte("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"),
		// The same public key as binary
		mustHex("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"),
		// Different public key
		mustHex("02f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9"),
	}
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Run checks that s is deterministic, that each commitment verifies only
// against its own message, and that no two messages collide.
func Run[C comparable](t testing.TB, s commit.Scheme[[]byte, C], messages [][]byte) {
	t.Helper()
	seen := make(map[C]int, len(messages))
	for i, msg := range messages {
		c := s.Commit(msg)
		for j := 0; j < Rounds; j++ {
			require.Equal(t, c, s.Commit(msg), "commitment to message %d is not deterministic", i)
		}

		require.True(t, commit.Verify(s, c, msg), "message %d does not verify", i)
		for j, m := range messages {
			require.Equal(t, bytes.Equal(m, msg), commit.Verify(s, c, m), "commitment %d against message %d", i, j)
		}

		for d := range seen {
			require.False(t, commit.Verify(s, d, msg), "message %d verifies against another commitment", i)
		}

		k, dup := seen[c]
		require.False(t, dup, "messages %d and %d collide", k, i)
		seen[c] = i
	}
}

// RunTry is [Run] for a [commit.TryScheme]. Every message must be
// committable.
func RunTry[C comparable](t testing.TB, s commit.TryScheme[[]byte, C], messages [][]byte) {
	t.Helper()
	seen := make(map[C]int, len(messages))
	for i, msg := range messages {
		c, err := s.TryCommit(msg)
		require.NoError(t, err, "message %d", i)
		for j := 0; j < Rounds; j++ {
			d, err := s.TryCommit(msg)
			require.NoError(t, err)
			require.Equal(t, c, d, "commitment to message %d is not deterministic", i)
		}

		for j, m := range messages {
			ok, err := commit.TryVerify(s, c, m)
			require.NoError(t, err)
			require.Equal(t, bytes.Equal(m, msg), ok, "commitment %d against message %d", i, j)
		}

		k, dup := seen[c]
		require.False(t, dup, "messages %d and %d collide", k, i)
		seen[c] = i
	}
}

// RunEmbed is [Run] for a [commit.EmbedScheme]. Each message is embedded into
// a fresh copy of container.
func RunEmbed[C comparable, X commit.Cloner[X]](t testing.TB, s commit.EmbedScheme[[]byte, C, X], container X, messages [][]byte) {
	t.Helper()
	seen := make(map[C]int, len(messages))
	for i, msg := range messages {
		c, err := s.EmbedCommit(container.Clone(), msg)
		require.NoError(t, err, "message %d", i)
		for j := 0; j < Rounds; j++ {
			d, err := s.EmbedCommit(container.Clone(), msg)
			require.NoError(t, err)
			require.Equal(t, c, d, "commitment to message %d is not deterministic", i)
		}

		for j, m := range messages {
			ok, err := commit.EmbedVerify(s, c, container, m)
			require.NoError(t, err)
			require.Equal(t, bytes.Equal(m, msg), ok, "commitment %d against message %d", i, j)
		}

		k, dup := seen[c]
		require.False(t, dup, "messages %d and %d collide", k, i)
		seen[c] = i
	}
}
