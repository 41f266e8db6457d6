// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"time"
)

// RunSweeper periodically purges expired sessions and drops observer
// sets for sessions that no longer exist. Badger's entry TTL already
// expires the records themselves; the sweeper's job is the hub side and
// the active-sessions gauge. Blocks until ctx is done.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.sweep(ctx)
		}
	}
}

func (e *Engine) sweep(ctx context.Context) {
	recs, err := e.store.List(ctx)
	if err != nil {
		e.logger.Warn("sweep: list sessions failed", "error", err)
		return
	}

	now := e.now()
	live := make(map[string]bool, len(recs))
	alive := 0
	for _, rec := range recs {
		if rec.Session.Expired(now) {
			e.logger.Info("sweep: purging expired session", "session", rec.Session.Code)
			_ = e.store.Delete(ctx, rec.Session.Code)
			e.hub.DropSession(rec.Session.Code)
			continue
		}
		live[rec.Session.Code] = true
		alive++
	}
	activeSessions.Set(float64(alive))

	// Observer sets can outlive their records when badger expires an
	// entry between sweeps.
	for _, code := range e.hub.Sessions() {
		if !live[code] {
			e.logger.Info("sweep: dropping observers of vanished session", "session", code)
			e.hub.DropSession(code)
		}
	}
}
