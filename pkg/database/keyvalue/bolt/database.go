// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package bolt

import (
	"time"

	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Database is a bbolt key-value store. Each key bucket is a bolt bucket.
type Database struct {
	opts
	bolt *bolt.DB
}

type opts struct {
	timeout time.Duration
}

type Option func(*opts) error

// WithTimeout sets how long Open waits for the file lock.
func WithTimeout(d time.Duration) Option {
	return func(o *opts) error {
		o.timeout = d
		return nil
	}
}

func Open(filepath string, o ...Option) (*Database, error) {
	d := new(Database)
	var err error
	for _, o := range o {
		err = o(&d.opts)
		if err != nil {
			return nil, errors.UnknownError.Wrap(err)
		}
	}

	// Open
	d.bolt, err = bolt.Open(filepath, 0600, &bolt.Options{Timeout: d.timeout})
	if err != nil {
		return nil, errors.IOError.WithFormat("open %q: %w", filepath, err)
	}

	return d, nil
}

// Begin begins a change set.
func (d *Database) Begin(writable bool) keyvalue.ChangeSet {
	// Use a read-only transaction for reading
	rd, err := d.bolt.Begin(false)

	// Discard the transaction
	discard := func() {
		if rd != nil {
			_ = rd.Rollback()
		}
	}

	// Read from the transaction
	get := func(key keyvalue.Key) ([]byte, error) {
		return d.get(rd, err, key)
	}

	// Commit to the write batch
	var commit memory.CommitFunc
	if writable {
		commit = func(entries map[keyvalue.Key]memory.Entry) error {
			return d.commit(rd, entries)
		}
	}

	forEach := func(fn func(keyvalue.Key, []byte) error) error {
		return d.forEach(rd, err, fn)
	}

	// The memory changeset caches entries in a map so Get will see values
	// updated with Put, regardless of the underlying transaction and write
	// batch behavior
	return memory.NewChangeSet(memory.ChangeSetOptions{
		Get:     get,
		Commit:  commit,
		ForEach: forEach,
		Discard: discard,
	})
}

func (d *Database) get(txn *bolt.Tx, err error, key keyvalue.Key) ([]byte, error) {
	if err != nil {
		return nil, err
	}

	b := txn.Bucket([]byte(key.Bucket))
	if b == nil {
		return nil, keyvalue.NotFound(key)
	}

	v := b.Get(key.ID[:])
	if v == nil {
		return nil, keyvalue.NotFound(key)
	}

	u := make([]byte, len(v))
	copy(u, v)
	return u, nil
}

func (d *Database) commit(rd *bolt.Tx, entries map[keyvalue.Key]memory.Entry) error {
	// Discard the read transaction to unlock the database
	if rd != nil {
		_ = rd.Rollback()
	}

	return d.bolt.Update(func(tx *bolt.Tx) error {
		for _, e := range entries {
			b, err := tx.CreateBucketIfNotExists([]byte(e.Key.Bucket))
			if err != nil {
				return err
			}

			if e.Delete {
				err = b.Delete(e.Key.ID[:])
			} else {
				err = b.Put(e.Key.ID[:], e.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Database) forEach(txn *bolt.Tx, err error, fn func(keyvalue.Key, []byte) error) error {
	if err != nil {
		return err
	}

	return txn.ForEach(func(name []byte, b *bolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 32 {
				return errors.InternalError.WithFormat("invalid key of length %d in bucket %q", len(k), name)
			}
			key := keyvalue.NewKey(string(name), [32]byte(k))

			// Copy value
			u := make([]byte, len(v))
			copy(u, v)

			return fn(key, u)
		})
	})
}

func (d *Database) Close() error {
	return d.bolt.Close()
}
