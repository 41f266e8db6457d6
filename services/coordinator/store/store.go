// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists session records with per-key optimistic
// versioning and TTL.
//
// The contract is deliberately small — get, create, compare-and-swap,
// delete, list — so it can be implemented against any key-value store
// offering per-key versioning and expiry. The shipped implementation is
// embedded BadgerDB, which gives both for free: serializable
// transactions surface write conflicts, and entry TTLs expire sessions
// without a reaper.
//
// Every mutation of session-scoped state goes through CompareAndSwap.
// Two concurrent writers never silently overwrite each other; the loser
// sees a Conflict and must re-read and retry.
package store

import (
	"context"
	"time"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
)

// Store is the session persistence contract the engine writes through.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
type Store interface {
	// Get returns the record for code. A missing or expired record is
	// a NotFound error.
	Get(ctx context.Context, code string) (*datatypes.SessionRecord, error)

	// Create stores a brand-new record with the given TTL. The record's
	// Version must be 0; an existing record for the same code is a
	// Conflict.
	Create(ctx context.Context, rec *datatypes.SessionRecord, ttl time.Duration) error

	// CompareAndSwap writes rec only if the stored version still equals
	// rec.Version; on success rec.Version is incremented in place. A
	// version mismatch, or a concurrent transaction touching the same
	// key, is a Conflict and the caller must re-read and retry.
	CompareAndSwap(ctx context.Context, rec *datatypes.SessionRecord, ttl time.Duration) error

	// Delete removes the record. Deleting an absent record is not an
	// error.
	Delete(ctx context.Context, code string) error

	// List returns all live session records.
	List(ctx context.Context) ([]*datatypes.SessionRecord, error)

	// Close releases the underlying store.
	Close() error
}
