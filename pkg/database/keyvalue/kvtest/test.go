// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package kvtest

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

type Opener = func() (keyvalue.Beginner, error)

type closableDb struct {
	keyvalue.Beginner
	t      testing.TB
	closed bool
}

func (c *closableDb) Close() {
	if c.closed {
		return
	}
	c.closed = true

	if d, ok := c.Beginner.(io.Closer); ok {
		require.NoError(c.t, d.Close())
	}
}

func openDb(t testing.TB, open Opener) *closableDb {
	db, err := open()
	require.NoError(t, err)
	c := &closableDb{db, t, false}
	t.Cleanup(c.Close)
	return c
}

// NumberedKey returns the i'th key of a bucket.
func NumberedKey(bucket string, i int) keyvalue.Key {
	return keyvalue.NewKey(bucket, sha256.Sum256([]byte(fmt.Sprint(i))))
}

func value(i int) string {
	return fmt.Sprintf("%x this much data ", i)
}

// TestSuite runs every test that a backend must pass.
func TestSuite(t *testing.T, open Opener) {
	t.Run("Database", func(t *testing.T) { TestDatabase(t, open) })
	t.Run("Isolation", func(t *testing.T) { TestIsolation(t, open) })
	t.Run("SubBatch", func(t *testing.T) { TestSubBatch(t, open) })
	t.Run("Delete", func(t *testing.T) { TestDelete(t, open) })
	t.Run("ReadOnly", func(t *testing.T) { TestReadOnly(t, open) })
}

func TestDatabase(t *testing.T, open Opener) {
	const N = 1000

	// Open and write changes
	db := openDb(t, open)

	batch := db.Begin(true)
	defer batch.Discard()

	// Read when nothing exists
	_, err := batch.Get(NumberedKey("answer", 0))
	require.Error(t, err)
	require.ErrorIs(t, err, errors.NotFound)

	// Write
	values := map[keyvalue.Key]string{}
	for i := 0; i < N; i++ {
		key := NumberedKey("answer", i)
		values[key] = value(i)
		err := batch.Put(key, []byte(value(i)))
		require.NoError(t, err, "Put")
	}

	// Commit
	require.NoError(t, batch.Commit())

	// Verify with a new batch
	batch = db.Begin(false)
	defer batch.Discard()

	for i := 0; i < N; i++ {
		val, err := batch.Get(NumberedKey("answer", i))
		require.NoError(t, err, "Get")
		require.Equal(t, value(i), string(val))
	}

	batch.Discard()

	// Verify with a fresh instance
	db.Close()
	db = openDb(t, open)

	batch = db.Begin(false)
	defer batch.Discard()

	for i := 0; i < N; i++ {
		val, err := batch.Get(NumberedKey("answer", i))
		require.NoError(t, err, "Get")
		require.Equal(t, value(i), string(val))
	}

	// Verify ForEach
	require.NoError(t, batch.ForEach(func(key keyvalue.Key, value []byte) error {
		if key.Bucket != "answer" {
			return nil
		}
		expect, ok := values[key]
		require.Truef(t, ok, "%v should exist", key)
		require.Equalf(t, expect, string(value), "%v should match", key)
		delete(values, key)
		return nil
	}))
	require.Empty(t, values, "All values should be iterated over")
}

func TestIsolation(t *testing.T, open Opener) {
	// Open and write
	db := openDb(t, open)

	batch := db.Begin(true)
	defer batch.Discard()

	key := NumberedKey("isolation", 0)
	err := batch.Put(key, []byte("value"))
	require.NoError(t, err, "Put")
	require.NoError(t, batch.Commit())

	// Start two batches
	b1 := db.Begin(true)
	defer b1.Discard()

	b2 := db.Begin(false)
	defer b2.Discard()

	// Delete and commit in batch 1
	require.NoError(t, b1.Delete(key))
	require.NoError(t, b1.Commit())

	// Verify the change is not visible from batch 2
	v, err := b2.Get(key)
	require.NoError(t, err, "Get")
	require.Equal(t, []byte("value"), v)

	// Verify the change is now visible
	batch = db.Begin(true)
	defer batch.Discard()
	_, err = batch.Get(key)
	require.ErrorIs(t, err, errors.NotFound)
}

func TestSubBatch(t *testing.T, open Opener) {
	const N = 1000
	db := openDb(t, open)

	batch := db.Begin(true)
	defer batch.Discard()
	sub := batch.Begin(true)
	defer sub.Discard()

	for i := 0; i < N; i++ {
		err := sub.Put(NumberedKey("sub", i), []byte(value(i)))
		require.NoError(t, err, "Put")
	}

	// Not visible to the parent until committed
	_, err := batch.Get(NumberedKey("sub", 0))
	require.ErrorIs(t, err, errors.NotFound)

	// Commit and begin a new sub-batch
	require.NoError(t, sub.Commit())
	sub = batch.Begin(true)
	defer sub.Discard()

	for i := 0; i < N; i++ {
		val, err := sub.Get(NumberedKey("sub", i))
		require.NoError(t, err, "Get")
		require.Equal(t, value(i), string(val))
	}
}

func TestDelete(t *testing.T, open Opener) {
	db := openDb(t, open)
	key := NumberedKey("foo", 0)

	// Write a value
	batch := db.Begin(true)
	defer batch.Discard()
	require.NoError(t, batch.Put(key, []byte("bar")))
	require.NoError(t, batch.Commit())

	// Verify it can be retrieved
	batch = db.Begin(false)
	defer batch.Discard()
	v, err := batch.Get(key)
	require.NoError(t, err)
	require.Equal(t, "bar", string(v))
	batch.Discard()

	// Delete the value
	batch = db.Begin(true)
	defer batch.Discard()
	require.NoError(t, batch.Delete(key))

	// Verify it returns not found from the same batch
	_, err = batch.Get(key)
	require.ErrorIs(t, err, errors.NotFound)

	// Commit and reopen
	require.NoError(t, batch.Commit())
	db.Close()
	db = openDb(t, open)

	// Verify it returns not found from a new batch
	batch = db.Begin(false)
	defer batch.Discard()
	_, err = batch.Get(key)
	require.ErrorIs(t, err, errors.NotFound)
}

func TestReadOnly(t *testing.T, open Opener) {
	data := make([]byte, 10)
	_, err := io.ReadFull(rand.Reader, data)
	require.NoError(t, err)

	db := openDb(t, open)
	batch := db.Begin(false)
	defer batch.Discard()
	require.ErrorIs(t, batch.Put(NumberedKey("ro", 0), data), errors.NotAllowed)
	require.ErrorIs(t, batch.Commit(), errors.NotAllowed)
	batch.Discard()

	// A committed batch cannot be reused
	batch = db.Begin(true)
	defer batch.Discard()
	require.NoError(t, batch.Put(NumberedKey("ro", 0), data))
	require.NoError(t, batch.Commit())
	require.ErrorIs(t, batch.Put(NumberedKey("ro", 1), data), errors.NotAllowed)
}
