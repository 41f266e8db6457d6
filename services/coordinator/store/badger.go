// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
)

// sessionPrefix namespaces session records in the key space.
const sessionPrefix = "session:"

// Config holds configuration for the badger-backed store.
type Config struct {
	// Path is the directory for database files. Required unless
	// InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful
	// for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives badger's internal logging. If nil, badger's
	// logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults: durable synchronous
// writes at the given path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests: in-memory, no
// sync.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore implements Store on embedded BadgerDB.
//
// # Description
//
// Records are JSON under "session:<code>" with an entry TTL, so an
// expired session reads exactly like a deleted one. Optimistic
// versioning is double-layered: a Version stamp inside the record
// guards against lost updates across read-modify-write cycles, and
// badger's transaction conflict detection guards the commit itself.
// Both surface as KindConflict.
//
// # Thread Safety
//
// Safe for concurrent use; badger transactions are isolated.
type BadgerStore struct {
	db *badger.DB
}

// Open opens a badger-backed store with the given configuration.
//
// # Inputs
//
//   - cfg: store configuration. Path is required unless InMemory.
//
// # Outputs
//
//   - *BadgerStore: the opened store. Caller must Close it.
//   - error: non-nil if the path is invalid or badger cannot open.
func Open(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory opens an in-memory store for testing.
func OpenInMemory() (*BadgerStore, error) {
	return Open(InMemoryConfig())
}

func sessionKey(code string) []byte {
	return []byte(sessionPrefix + code)
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, code string) (*datatypes.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, datatypes.Wrap(datatypes.KindStoreUnavailable, err, "context cancelled")
	}

	var rec datatypes.SessionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(code))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	switch {
	case err == nil:
		return &rec, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, datatypes.E(datatypes.KindNotFound, "session %q not found or expired", code)
	default:
		return nil, datatypes.Wrap(datatypes.KindStoreUnavailable, err, "read session %q", code)
	}
}

// Create implements Store.
func (s *BadgerStore) Create(ctx context.Context, rec *datatypes.SessionRecord, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return datatypes.Wrap(datatypes.KindStoreUnavailable, err, "context cancelled")
	}

	key := sessionKey(rec.Session.Code)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return datatypes.E(datatypes.KindConflict, "session code %q already exists", rec.Session.Code)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return s.setRecord(txn, key, rec, ttl)
	})
	return s.mapWriteErr(err, rec.Session.Code)
}

// CompareAndSwap implements Store.
func (s *BadgerStore) CompareAndSwap(ctx context.Context, rec *datatypes.SessionRecord, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return datatypes.Wrap(datatypes.KindStoreUnavailable, err, "context cancelled")
	}

	key := sessionKey(rec.Session.Code)
	expected := rec.Version
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return datatypes.E(datatypes.KindNotFound, "session %q not found or expired", rec.Session.Code)
			}
			return err
		}
		var current datatypes.SessionRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &current)
		}); err != nil {
			return err
		}
		if current.Version != expected {
			return datatypes.E(datatypes.KindConflict,
				"version mismatch on session %q: have %d, stored %d",
				rec.Session.Code, expected, current.Version)
		}
		rec.Version = expected + 1
		return s.setRecord(txn, key, rec, ttl)
	})
	if err != nil {
		// Roll the in-place bump back so the caller can retry from a
		// fresh read without a skewed version.
		rec.Version = expected
	}
	return s.mapWriteErr(err, rec.Session.Code)
}

// Delete implements Store.
func (s *BadgerStore) Delete(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return datatypes.Wrap(datatypes.KindStoreUnavailable, err, "context cancelled")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(code))
	})
	return s.mapWriteErr(err, code)
}

// List implements Store.
func (s *BadgerStore) List(ctx context.Context) ([]*datatypes.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, datatypes.Wrap(datatypes.KindStoreUnavailable, err, "context cancelled")
	}

	var out []*datatypes.SessionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec datatypes.SessionRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, datatypes.Wrap(datatypes.KindStoreUnavailable, err, "list sessions")
	}
	return out, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) setRecord(txn *badger.Txn, key []byte, rec *datatypes.SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	entry := badger.NewEntry(key, data)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return txn.SetEntry(entry)
}

// mapWriteErr normalizes badger errors to the coordinator taxonomy. A
// transaction conflict means another writer touched the same key
// between our read and commit.
func (s *BadgerStore) mapWriteErr(err error, code string) error {
	switch {
	case err == nil:
		return nil
	case datatypes.KindOf(err) != "":
		return err
	case errors.Is(err, badger.ErrConflict):
		return datatypes.Wrap(datatypes.KindConflict, err, "concurrent write on session %q", code)
	default:
		return datatypes.Wrap(datatypes.KindStoreUnavailable, err, "write session %q", code)
	}
}
