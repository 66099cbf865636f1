// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Entry is a cached poster lookup outcome.
type Entry struct {
	// URL is the full poster URL when Found.
	URL string `json:"url,omitempty"`

	// Found is false for a movie without a poster and for failures.
	Found bool `json:"found"`

	// Failure holds the error text of a failed lookup kept in the
	// negative cache.
	Failure string `json:"failure,omitempty"`
}

// Store is a persistent second cache tier shared across restarts.
type Store interface {
	Get(ctx context.Context, movieID int) (Entry, bool, error)
	Put(ctx context.Context, movieID int, entry Entry, ttl time.Duration) error
}

const badgerPosterKeyPrefix = "poster:"

// BadgerStore persists poster lookups in BadgerDB, relying on its native
// TTL for expiry.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB at path.
//
//	store, err := poster.OpenBadgerStore("/data/posters")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for poster cache: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreFromDB wraps an already open database.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func posterKey(movieID int) []byte {
	return []byte(badgerPosterKeyPrefix + strconv.Itoa(movieID))
}

// Get returns the stored entry for movieID.
func (s *BadgerStore) Get(_ context.Context, movieID int) (Entry, bool, error) {
	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(posterKey(movieID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get poster %d: %w", movieID, err)
	}
	return entry, true, nil
}

// Put stores entry for movieID, expiring after ttl when ttl is positive.
func (s *BadgerStore) Put(_ context.Context, movieID int, entry Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal poster entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(posterKey(movieID), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Count returns the number of live poster entries.
func (s *BadgerStore) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerPosterKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// RunGC runs one value log garbage collection pass. It returns
// badger.ErrNoRewrite when there was nothing to reclaim.
func (s *BadgerStore) RunGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
