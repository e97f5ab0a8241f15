// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package memory

import (
	"sync"

	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// Entry is a pending change.
type Entry struct {
	Key    keyvalue.Key
	Value  []byte
	Delete bool
}

type GetFunc = func(keyvalue.Key) ([]byte, error)
type CommitFunc = func(map[keyvalue.Key]Entry) error
type ForEachFunc = func(func(keyvalue.Key, []byte) error) error

// ChangeSetOptions are the callbacks of a change set. A nil Commit makes the
// change set read-only.
type ChangeSetOptions struct {
	Get     GetFunc
	Commit  CommitFunc
	ForEach ForEachFunc
	Discard func()
}

// ChangeSet caches changes in memory until they are committed.
type ChangeSet struct {
	mu      sync.Mutex
	opts    ChangeSetOptions
	entries map[keyvalue.Key]Entry
	done    bool
}

var _ keyvalue.ChangeSet = (*ChangeSet)(nil)

func NewChangeSet(opts ChangeSetOptions) *ChangeSet {
	return &ChangeSet{opts: opts, entries: map[keyvalue.Key]Entry{}}
}

// Begin begins a nested change set. Committing it commits to this change set.
func (c *ChangeSet) Begin(writable bool) keyvalue.ChangeSet {
	opts := ChangeSetOptions{
		Get:     c.Get,
		ForEach: c.ForEach,
	}
	if writable {
		opts.Commit = c.putAll
	}
	return NewChangeSet(opts)
}

func (c *ChangeSet) Get(key keyvalue.Key) ([]byte, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	switch {
	case ok && e.Delete:
		return nil, keyvalue.NotFound(key)
	case ok:
		return e.Value, nil
	case c.opts.Get == nil:
		return nil, keyvalue.NotFound(key)
	}
	return c.opts.Get(key)
}

func (c *ChangeSet) Put(key keyvalue.Key, value []byte) error {
	return c.put(Entry{Key: key, Value: value})
}

func (c *ChangeSet) Delete(key keyvalue.Key) error {
	return c.put(Entry{Key: key, Delete: true})
}

func (c *ChangeSet) put(e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkWritable(); err != nil {
		return err
	}
	c.entries[e.Key] = e
	return nil
}

func (c *ChangeSet) putAll(entries map[keyvalue.Key]Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkWritable(); err != nil {
		return err
	}
	for k, e := range entries {
		c.entries[k] = e
	}
	return nil
}

func (c *ChangeSet) checkWritable() error {
	if c.done {
		return errors.NotAllowed.With("change set has been committed or discarded")
	}
	if c.opts.Commit == nil {
		return errors.NotAllowed.With("change set is not writable")
	}
	return nil
}

// ForEach iterates over the underlying store with pending changes applied.
func (c *ChangeSet) ForEach(fn func(keyvalue.Key, []byte) error) error {
	c.mu.Lock()
	entries := make(map[keyvalue.Key]Entry, len(c.entries))
	for k, e := range c.entries {
		entries[k] = e
	}
	c.mu.Unlock()

	if c.opts.ForEach != nil {
		err := c.opts.ForEach(func(key keyvalue.Key, value []byte) error {
			if _, ok := entries[key]; ok {
				return nil
			}
			return fn(key, value)
		})
		if err != nil {
			return err
		}
	}

	for _, e := range entries {
		if e.Delete {
			continue
		}
		if err := fn(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// Commit commits pending changes and discards the change set.
func (c *ChangeSet) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkWritable(); err != nil {
		return err
	}
	err := c.opts.Commit(c.entries)
	if err != nil {
		return errors.UnknownError.Wrap(err)
	}
	c.discard()
	return nil
}

func (c *ChangeSet) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discard()
}

func (c *ChangeSet) discard() {
	if c.done {
		return
	}
	c.done = true
	c.entries = map[keyvalue.Key]Entry{}
	if c.opts.Discard != nil {
		c.opts.Discard()
	}
}
