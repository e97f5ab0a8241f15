// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package leveldb

import (
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// Database is a goleveldb key-value store. Keys are stored in their flat
// form, so iteration recovers the bucket.
type Database struct {
	opts
	leveldb *leveldb.DB
}

type opts struct {
	sync bool
}

type Option func(*opts) error

// WithSync makes every commit wait for the write to reach disk.
func WithSync(o *opts) error {
	o.sync = true
	return nil
}

func OpenFile(filepath string, o ...Option) (*Database, error) {
	// Make sure all directories exist
	err := os.MkdirAll(filepath, 0700)
	if err != nil {
		return nil, errors.IOError.WithFormat("create %q: %w", filepath, err)
	}

	db, err := leveldb.OpenFile(filepath, nil)
	if err != nil {
		return nil, errors.IOError.WithFormat("open %q: %w", filepath, err)
	}

	d := new(Database)
	d.leveldb = db
	for _, o := range o {
		err = o(&d.opts)
		if err != nil {
			return nil, errors.UnknownError.Wrap(err)
		}
	}

	return d, nil
}

// Begin begins a change set.
func (d *Database) Begin(writable bool) keyvalue.ChangeSet {
	snap, err := d.leveldb.GetSnapshot()

	// Read from the snapshot
	get := func(key keyvalue.Key) ([]byte, error) {
		return d.get(snap, err, key)
	}

	// Commit to the write batch
	var commit memory.CommitFunc
	if writable {
		commit = d.commit
	}

	forEach := func(fn func(keyvalue.Key, []byte) error) error {
		return d.forEach(snap, err, fn)
	}

	discard := func() {
		if snap != nil {
			snap.Release()
		}
	}

	// The memory changeset caches entries in a map so Get will see values
	// updated with Put, regardless of the underlying snapshot and write
	// batch behavior
	return memory.NewChangeSet(memory.ChangeSetOptions{
		Get:     get,
		Commit:  commit,
		ForEach: forEach,
		Discard: discard,
	})
}

func (d *Database) commit(entries map[keyvalue.Key]memory.Entry) error {
	batch := new(leveldb.Batch)
	for _, e := range entries {
		k, err := e.Key.MarshalBinary()
		if err != nil {
			return err
		}
		if e.Delete {
			batch.Delete(k)
		} else {
			batch.Put(k, e.Value)
		}
	}

	return d.leveldb.Write(batch, &opt.WriteOptions{Sync: d.sync})
}

func (d *Database) get(snap *leveldb.Snapshot, err error, key keyvalue.Key) ([]byte, error) {
	if err != nil {
		return nil, err
	}

	k, err := key.MarshalBinary()
	if err != nil {
		return nil, err
	}

	v, err := snap.Get(k, nil)
	switch {
	case err == nil:
		u := make([]byte, len(v))
		copy(u, v)
		return u, nil
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, keyvalue.NotFound(key)
	default:
		return nil, errors.IOError.Wrap(err)
	}
}

func (d *Database) forEach(snap *leveldb.Snapshot, err error, fn func(keyvalue.Key, []byte) error) error {
	if err != nil {
		return err
	}

	it := snap.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		var key keyvalue.Key
		err = key.UnmarshalBinary(it.Key())
		if err != nil {
			return errors.InternalError.WithFormat("cannot unmarshal key: %w", err)
		}
		value := make([]byte, len(it.Value()))
		copy(value, it.Value())
		err = fn(key, value)
		if err != nil {
			return err
		}
	}
	it.Release()
	return it.Error()
}

// Close closes the underlying database.
func (d *Database) Close() error {
	return d.leveldb.Close()
}
