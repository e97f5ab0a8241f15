// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package badger

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// Database is a Badger key-value store. Keys are stored in their flat form.
type Database struct {
	opts
	badger *badger.DB
	ready  bool
	mu     sync.RWMutex
	done   chan struct{}
}

type opts struct {
	truncate   bool
	gcInterval time.Duration
	logger     *slog.Logger
}

type Option func(*opts) error

// WithTruncate configures Badger to truncate corrupted data when opening.
// This may be necessary if the process was terminated abruptly.
func WithTruncate(o *opts) error {
	o.truncate = true
	return nil
}

// WithGCInterval sets how often value log garbage collection runs. Zero
// disables it.
func WithGCInterval(d time.Duration) Option {
	return func(o *opts) error {
		if d < 0 {
			return errors.BadRequest.WithFormat("negative GC interval %v", d)
		}
		o.gcInterval = d
		return nil
	}
}

// WithLogger sets the logger Badger reports to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *opts) error {
		o.logger = logger
		return nil
	}
}

func New(filepath string, o ...Option) (*Database, error) {
	// Make sure all directories exist
	err := os.MkdirAll(filepath, 0700)
	if err != nil {
		return nil, errors.IOError.WithFormat("open badger: create %q: %w", filepath, err)
	}

	d := new(Database)
	d.gcInterval = time.Hour
	d.logger = slog.Default()
	for _, o := range o {
		err = o(&d.opts)
		if err != nil {
			return nil, errors.UnknownError.Wrap(err)
		}
	}
	d.logger = d.logger.With("module", "badger")

	opts := badger.DefaultOptions(filepath)
	opts = opts.WithLogger(slogger{d.logger})
	if d.truncate {
		opts = opts.WithTruncate(true)
	}

	d.badger, err = badger.Open(opts)
	if err != nil {
		return nil, errors.IOError.WithFormat("open badger: %w", err)
	}

	d.ready = true
	d.done = make(chan struct{})
	mDbOpen.Inc()

	if d.gcInterval > 0 {
		go d.gc()
	}

	return d, nil
}

// Begin begins a change set.
func (d *Database) Begin(writable bool) keyvalue.ChangeSet {
	// Use a read-only transaction for reading
	rd := d.badger.NewTransaction(false)
	mTxnOpen.Inc()

	// Commit to the write batch
	var commit memory.CommitFunc
	if writable {
		commit = d.commit
	}

	// Discard the transaction
	discard := func() {
		rd.Discard()
		mTxnOpen.Dec()
	}

	// The memory changeset caches entries in a map so Get will see values
	// updated with Put, regardless of the underlying transaction and write
	// batch behavior
	return memory.NewChangeSet(memory.ChangeSetOptions{
		Get:     func(key keyvalue.Key) ([]byte, error) { return d.get(rd, key) },
		Commit:  commit,
		ForEach: func(fn func(keyvalue.Key, []byte) error) error { return d.forEach(rd, fn) },
		Discard: discard,
	})
}

func (d *Database) get(rd *badger.Txn, key keyvalue.Key) ([]byte, error) {
	k, err := key.MarshalBinary()
	if err != nil {
		return nil, err
	}

	item, err := rd.Get(k)
	switch {
	case err == nil:
		// Ok
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, keyvalue.NotFound(key)
	default:
		return nil, errors.IOError.WithFormat("get %v: %w", key, err)
	}

	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, errors.IOError.WithFormat("get %v: %w", key, err)
	}
	return v, nil
}

func (d *Database) commit(entries map[keyvalue.Key]memory.Entry) error {
	l, err := d.lock(false)
	if err != nil {
		return err
	}
	defer l.Unlock()

	start := time.Now()
	defer func() { mCommitDuration.Set(time.Since(start).Seconds()) }()

	// Use a write batch for writing to work around Badger's limitations
	wr := d.badger.NewWriteBatch()
	defer wr.Cancel()

	for _, e := range entries {
		k, err := e.Key.MarshalBinary()
		if err != nil {
			return err
		}
		if e.Delete {
			err = wr.Delete(k)
		} else {
			err = wr.Set(k, e.Value)
		}
		if err != nil {
			return errors.IOError.Wrap(err)
		}
	}

	return wr.Flush()
}

func (d *Database) forEach(rd *badger.Txn, fn func(keyvalue.Key, []byte) error) error {
	it := rd.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		var key keyvalue.Key
		err := key.UnmarshalBinary(item.Key())
		if err != nil {
			return errors.InternalError.WithFormat("cannot unmarshal key: %w", err)
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return errors.IOError.WithFormat("get %v: %w", key, err)
		}
		err = fn(key, value)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (d *Database) Close() error {
	l, err := d.lock(true)
	if err != nil {
		return err
	}
	defer l.Unlock()

	d.ready = false
	close(d.done)
	mDbOpen.Dec()
	return d.badger.Close()
}

func (d *Database) gc() {
	tick := time.NewTicker(d.gcInterval)
	defer tick.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-tick.C:
		}

		// Still open?
		l, err := d.lock(false)
		if err != nil {
			return
		}

		// Run GC if 50% space could be reclaimed
		start := time.Now()
		err = d.badger.RunValueLogGC(0.5)
		if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
			d.logger.Error("Badger GC failed", "error", err)
		}
		mGcRun.Inc()
		mGcDuration.Set(time.Since(start).Seconds())

		// Release the lock
		l.Unlock()
	}
}

// lock acquires a lock on the ready mutex and checks for readiness. This
// prevents races between a commit and Close.
func (d *Database) lock(closing bool) (sync.Locker, error) {
	var l sync.Locker = &d.mu
	if !closing {
		l = d.mu.RLocker()
	}

	l.Lock()
	if !d.ready {
		l.Unlock()
		return nil, errors.NotReady.With("database is closed")
	}

	return l, nil
}
