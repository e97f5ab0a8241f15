// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package badger

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/commitverify/internal/logging"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue/kvtest"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

func open(t testing.TB) kvtest.Opener {
	path := t.TempDir()
	logger := logging.NewTestLogger(t, "error")
	return func() (keyvalue.Beginner, error) {
		return New(path, WithGCInterval(0), WithLogger(logger))
	}
}

func TestSuite(t *testing.T) {
	kvtest.TestSuite(t, open(t))
}

func TestClosed(t *testing.T) {
	before := testutil.ToFloat64(mDbOpen)
	db, err := New(t.TempDir(), WithGCInterval(0))
	require.NoError(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(mDbOpen))

	batch := db.Begin(true)
	require.NoError(t, batch.Put(kvtest.NumberedKey("closed", 0), []byte("x")))
	require.NoError(t, db.Close())
	require.Equal(t, before, testutil.ToFloat64(mDbOpen))

	require.ErrorIs(t, batch.Commit(), errors.NotReady)
	require.ErrorIs(t, db.Close(), errors.NotReady)
}

func TestFailedCommit(t *testing.T) {
	db, err := New(t.TempDir(), WithGCInterval(0))
	require.NoError(t, err)
	defer db.Close()

	// A bucket name too long for the flat key form fails the commit
	batch := db.Begin(true)
	require.NoError(t, batch.Put(keyvalue.NewKey(strings.Repeat("x", 256), [32]byte{1}), []byte("x")))
	require.ErrorIs(t, batch.Commit(), errors.BadRequest)
	batch.Discard()

	// The database is still usable
	key := kvtest.NumberedKey("after", 0)
	batch = db.Begin(true)
	require.NoError(t, batch.Put(key, []byte("y")))
	require.NoError(t, batch.Commit())

	batch = db.Begin(false)
	defer batch.Discard()
	v, err := batch.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("y"), v)
}

func TestBadGCInterval(t *testing.T) {
	_, err := New(t.TempDir(), WithGCInterval(-1))
	require.ErrorIs(t, err, errors.BadRequest)
}

func BenchmarkCommit(b *testing.B) {
	kvtest.BenchmarkCommit(b, open(b))
}

func BenchmarkReadRandom(b *testing.B) {
	kvtest.BenchmarkReadRandom(b, open(b))
}
