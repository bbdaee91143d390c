// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cleanup persists blob deletions that failed at item-delete
// time and retries them in the background.
//
// Deleting an item removes its info image from the blob store on a
// best-effort basis: a failure there must not block the catalog delete.
// Instead the orphaned key goes into a BadgerDB journal and a worker
// retries the deletion until it succeeds or the attempt budget runs out.
package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/blob"
)

// entry is the stored journal record, keyed by the blob key.
type entry struct {
	Key        string    `json:"key"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// Journal is a persistent dead-letter queue of blob keys awaiting
// deletion.
type Journal struct {
	db     *badger.DB
	logger *logging.Logger
}

// Open creates a Journal backed by BadgerDB at path. The directory is
// created if missing. Callers must Close the journal on shutdown.
func Open(path string, logger *logging.Logger) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("create journal directory %s: %w", path, err)
	}
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	return &Journal{db: db, logger: logger}, nil
}

// OpenInMemory creates a non-persistent Journal for tests.
func OpenInMemory(logger *logging.Logger) (*Journal, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory journal: %w", err)
	}
	return &Journal{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Enqueue records a blob key whose deletion failed. Enqueueing the same
// key twice resets its attempt count, which is harmless.
func (j *Journal) Enqueue(key string) error {
	e := entry{Key: key, EnqueuedAt: time.Now().UTC()}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("enqueue journal entry %s: %w", key, err)
	}
	j.logger.Warn("blob deletion journaled for retry", "key", key)
	return nil
}

// Len reports the number of pending entries.
func (j *Journal) Len() (int, error) {
	var n int
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// pending returns a snapshot of all journal entries.
func (j *Journal) pending() ([]entry, error) {
	var entries []entry
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read journal entries: %w", err)
	}
	return entries, nil
}

func (j *Journal) remove(key string) error {
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (j *Journal) bumpAttempts(e entry) error {
	e.Attempts++
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(e.Key), data)
	})
}

// Worker drains the journal against a blob store.
type Worker struct {
	journal  *Journal
	blobs    blob.Store
	logger   *logging.Logger
	interval time.Duration

	// MaxAttempts is the retry budget per key before the entry is
	// dropped. Zero means the default of 10.
	MaxAttempts int
}

// NewWorker creates a Worker that sweeps the journal every interval.
func NewWorker(journal *Journal, blobs blob.Store, interval time.Duration, logger *logging.Logger) *Worker {
	return &Worker{
		journal:  journal,
		blobs:    blobs,
		logger:   logger,
		interval: interval,
	}
}

// Run sweeps periodically until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.Error("journal sweep failed", "error", err)
			}
		}
	}
}

// Sweep attempts every pending deletion once. A key whose blob is
// already gone counts as success. Entries that exhaust the attempt
// budget are dropped with an error log; at that point the blob is
// orphaned and needs manual cleanup.
func (w *Worker) Sweep(ctx context.Context) error {
	maxAttempts := w.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 10
	}

	entries, err := w.journal.pending()
	if err != nil {
		return err
	}
	for _, e := range entries {
		err := w.blobs.Delete(ctx, e.Key)
		if err == nil || errors.Is(err, blob.ErrNotFound) {
			if err := w.journal.remove(e.Key); err != nil {
				w.logger.Error("failed to clear journal entry", "key", e.Key, "error", err)
			}
			continue
		}

		if e.Attempts+1 >= maxAttempts {
			w.logger.Error("dropping blob deletion after exhausting retries",
				"key", e.Key, "attempts", e.Attempts+1, "error", err)
			if err := w.journal.remove(e.Key); err != nil {
				w.logger.Error("failed to drop journal entry", "key", e.Key, "error", err)
			}
			continue
		}

		w.logger.Warn("blob deletion retry failed", "key", e.Key, "attempts", e.Attempts+1, "error", err)
		if err := w.journal.bumpAttempts(e); err != nil {
			w.logger.Error("failed to update journal entry", "key", e.Key, "error", err)
		}
	}
	return nil
}
