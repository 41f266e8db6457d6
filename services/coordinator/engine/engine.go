// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine is the coordination layer: it serializes every
// session-scoped operation through the store's compare-and-swap,
// executes optimizer steps atomically, and fans resulting state out to
// observers through the hub.
//
// Concurrency discipline: a session is guarded by optimistic versioning
// rather than a lock, so unrelated sessions never contend and reads
// never block writers. Mutations retry on version conflict with bounded
// backoff and surface a contention error once the retry budget is
// spent. Broadcast is fire-and-forget and is never awaited by the
// mutation path.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/hub"
	"github.com/swarmcraft/swarmcraft/services/coordinator/store"
)

// Config tunes the coordination layer.
type Config struct {
	// SessionTTL is how long a session lives from creation. Expiry is
	// a plain wall-clock cutoff; an expired session reads as not-found.
	SessionTTL time.Duration

	// LivenessTimeout is how stale a disconnected participant's
	// LastSeen may be before the next step prunes them from the swarm.
	LivenessTimeout time.Duration

	// RetryBudget is the number of compare-and-swap attempts per
	// mutation before surfacing a contention error.
	RetryBudget int

	// RetryBackoff is the base delay between attempts; attempt n waits
	// n times this.
	RetryBackoff time.Duration
}

// DefaultConfig returns the stock coordination tuning.
func DefaultConfig() Config {
	return Config{
		SessionTTL:      2 * time.Hour,
		LivenessTimeout: 90 * time.Second,
		RetryBudget:     5,
		RetryBackoff:    20 * time.Millisecond,
	}
}

// Engine executes session operations against the store and hub.
type Engine struct {
	store    store.Store
	hub      *hub.Hub
	cfg      Config
	logger   *slog.Logger
	validate *validator.Validate

	// now and the seeded rng are swappable in tests.
	now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New constructs an engine over the given store and hub.
func New(st store.Store, h *hub.Hub, cfg Config, logger *slog.Logger) *Engine {
	if cfg.RetryBudget <= 0 {
		cfg.RetryBudget = DefaultConfig().RetryBudget
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultConfig().RetryBackoff
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	if cfg.LivenessTimeout <= 0 {
		cfg.LivenessTimeout = DefaultConfig().LivenessTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    st,
		hub:      h,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newRand derives a private rand for one optimizer run so concurrent
// steps on different sessions never share a source.
func (e *Engine) newRand() *rand.Rand {
	e.rngMu.Lock()
	seed := e.rng.Int63()
	e.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// get reads a record and enforces the TTL cutoff: an expired record is
// purged and reported as not-found, indistinguishable from deletion.
func (e *Engine) get(ctx context.Context, code string) (*datatypes.SessionRecord, error) {
	rec, err := e.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if rec.Session.Expired(e.now()) {
		_ = e.store.Delete(ctx, code)
		e.hub.DropSession(code)
		return nil, datatypes.E(datatypes.KindNotFound, "session %q not found or expired", code)
	}
	return rec, nil
}

// ttlFor computes the remaining store TTL for a record so that rewrites
// never extend a session's life.
func (e *Engine) ttlFor(rec *datatypes.SessionRecord) time.Duration {
	remaining := rec.Session.ExpiresAt.Sub(e.now())
	if remaining < time.Second {
		remaining = time.Second
	}
	return remaining
}

// withRetry runs one read-modify-write cycle against a session,
// retrying on version conflict with linear backoff up to the budget.
// The mutate callback sees a fresh record on every attempt; any error
// it returns aborts the cycle immediately with nothing committed.
func (e *Engine) withRetry(ctx context.Context, code string, mutate func(rec *datatypes.SessionRecord) error) (*datatypes.SessionRecord, error) {
	var lastErr error
	for attempt := 0; attempt < e.cfg.RetryBudget; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, datatypes.Wrap(datatypes.KindStoreUnavailable, ctx.Err(), "context cancelled during retry")
			case <-time.After(time.Duration(attempt) * e.cfg.RetryBackoff):
			}
		}

		rec, err := e.get(ctx, code)
		if err != nil {
			return nil, err
		}
		if err := mutate(rec); err != nil {
			return nil, err
		}
		err = e.store.CompareAndSwap(ctx, rec, e.ttlFor(rec))
		if err == nil {
			return rec, nil
		}
		if !datatypes.IsConflict(err) {
			return nil, err
		}
		casConflicts.Inc()
		lastErr = err
	}
	retriesExhausted.Inc()
	return nil, datatypes.Wrap(datatypes.KindConflict, lastErr,
		"contention on session %q: gave up after %d attempts", code, e.cfg.RetryBudget)
}
