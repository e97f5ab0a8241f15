// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package kvtest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func BenchmarkCommit(b *testing.B, open Opener) {
	// Populate
	db := openDb(b, open)

	batch := db.Begin(true)
	defer batch.Discard()

	for i := 0; i < b.N; i++ {
		err := batch.Put(NumberedKey("answer", i), []byte(value(i)))
		require.NoError(b, err, "Put")
	}

	// Commit
	b.ResetTimer()
	require.NoError(b, batch.Commit())
}

func BenchmarkReadRandom(b *testing.B, open Opener) {
	const N = 100000

	// Populate
	db := openDb(b, open)

	batch := db.Begin(true)
	defer batch.Discard()

	for i := 0; i < N; i++ {
		err := batch.Put(NumberedKey("answer", i), []byte(value(i)))
		require.NoError(b, err, "Put")
	}
	require.NoError(b, batch.Commit())

	batch = db.Begin(false)
	defer batch.Discard()

	// Read
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := batch.Get(NumberedKey("answer", rand.Intn(N)))
		require.NoError(b, err)
	}
}
