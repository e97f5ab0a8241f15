// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package memory

import (
	"sync"

	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
)

// Database is an in-memory key-value store. A change set reads from the
// state of the database when it began.
type Database struct {
	mu      sync.RWMutex
	entries map[keyvalue.Key][]byte
}

var _ keyvalue.Beginner = (*Database)(nil)

func New() *Database {
	return &Database{entries: map[keyvalue.Key][]byte{}}
}

// Begin begins a change set.
func (d *Database) Begin(writable bool) keyvalue.ChangeSet {
	// Committing replaces the map, so the snapshot is never modified
	d.mu.RLock()
	snap := d.entries
	d.mu.RUnlock()

	get := func(key keyvalue.Key) ([]byte, error) {
		v, ok := snap[key]
		if !ok {
			return nil, keyvalue.NotFound(key)
		}
		return v, nil
	}

	forEach := func(fn func(keyvalue.Key, []byte) error) error {
		for k, v := range snap {
			if err := fn(k, v); err != nil {
				return err
			}
		}
		return nil
	}

	var commit CommitFunc
	if writable {
		commit = d.commit
	}

	return NewChangeSet(ChangeSetOptions{
		Get:     get,
		Commit:  commit,
		ForEach: forEach,
	})
}

// Export returns a copy of every stored value.
func (d *Database) Export() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entries := make([]Entry, 0, len(d.entries))
	for k, v := range d.entries {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return entries
}

// Import stores a set of entries.
func (d *Database) Import(entries []Entry) error {
	m := make(map[keyvalue.Key]Entry, len(entries))
	for _, e := range entries {
		m[e.Key] = e
	}
	return d.commit(m)
}

func (d *Database) commit(entries map[keyvalue.Key]Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := make(map[keyvalue.Key][]byte, len(d.entries)+len(entries))
	for k, v := range d.entries {
		m[k] = v
	}
	for k, e := range entries {
		if e.Delete {
			delete(m, k)
		} else {
			m[k] = e.Value
		}
	}
	d.entries = m
	return nil
}
