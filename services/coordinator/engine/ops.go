// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/swarmcraft/swarmcraft/pkg/validation"
	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/landscape"
	"github.com/swarmcraft/swarmcraft/services/coordinator/swarm"
)

// newSessionCode draws from the shared validation alphabet, so every
// generated code passes validation.ValidateCode.
func (e *Engine) newSessionCode() string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	buf := make([]byte, validation.CodeLength)
	for i := range buf {
		buf[i] = validation.Alphabet[e.rng.Intn(len(validation.Alphabet))]
	}
	return string(buf)
}

// CreateSession validates cfg, allocates a unique human-typable code,
// and stores a fresh waiting session.
func (e *Engine) CreateSession(ctx context.Context, cfg datatypes.SessionConfig) (*datatypes.SessionRecord, error) {
	cfg.ApplyDefaults()
	if err := e.validate.Struct(cfg); err != nil {
		return nil, datatypes.Wrap(datatypes.KindValidation, err, "invalid session config")
	}
	if _, err := landscape.New(landscape.Kind(cfg.LandscapeType), cfg.GridSize); err != nil {
		return nil, err
	}
	if _, err := swarm.New(cfg, e.newRand()); err != nil {
		return nil, err
	}

	now := e.now()
	// Regenerate on code collision; the space is large enough that two
	// collisions in a row mean something is broken.
	for attempt := 0; attempt < 5; attempt++ {
		rec := &datatypes.SessionRecord{
			Session: datatypes.Session{
				ID:        uuid.New().String(),
				Code:      e.newSessionCode(),
				Status:    datatypes.StatusWaiting,
				Config:    cfg,
				CreatedAt: now,
				ExpiresAt: now.Add(e.cfg.SessionTTL),
			},
		}
		err := e.store.Create(ctx, rec, e.cfg.SessionTTL)
		if err == nil {
			sessionsCreated.Inc()
			e.logger.Info("session created",
				"session", rec.Session.Code,
				"landscape", cfg.LandscapeType,
				"algorithm", cfg.Algorithm,
				"max_participants", cfg.MaxParticipants)
			return rec, nil
		}
		if !datatypes.IsConflict(err) {
			return nil, err
		}
	}
	return nil, datatypes.E(datatypes.KindStoreUnavailable, "could not allocate a unique session code")
}

// JoinSession adds a participant to a waiting session. The display name
// is optional; an empty name gets a generated particle handle.
func (e *Engine) JoinSession(ctx context.Context, code, name string) (*datatypes.Participant, *datatypes.SessionRecord, error) {
	id := uuid.New().String()
	if name == "" {
		name = "particle-" + id[:8]
	}

	rec, err := e.withRetry(ctx, code, func(rec *datatypes.SessionRecord) error {
		if err := rec.Session.Status.CheckOp(datatypes.OpJoin); err != nil {
			return err
		}
		if len(rec.Participants) >= rec.Session.Config.MaxParticipants {
			return datatypes.E(datatypes.KindCapacityExceeded,
				"session %q is full (%d participants)", code, rec.Session.Config.MaxParticipants)
		}
		now := e.now()
		rec.Participants = append(rec.Participants, datatypes.Participant{
			ID:        id,
			Name:      name,
			JoinedAt:  now,
			Connected: true,
			LastSeen:  now,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	participantsJoined.Inc()
	e.logger.Info("participant joined", "session", code, "participant", id, "name", name)
	e.broadcastState(rec)
	return rec.FindParticipant(id), rec, nil
}

// Start moves a waiting session to active and initializes the swarm:
// every participant is placed uniformly at random within bounds, the
// personal best is seeded from that placement, and the global best and
// schedules take their initial values.
func (e *Engine) Start(ctx context.Context, code string) (*datatypes.SessionRecord, error) {
	rec, err := e.withRetry(ctx, code, func(rec *datatypes.SessionRecord) error {
		if err := rec.Session.Status.CheckOp(datatypes.OpStart); err != nil {
			return err
		}
		land, err := landscape.New(landscape.Kind(rec.Session.Config.LandscapeType), rec.Session.Config.GridSize)
		if err != nil {
			return err
		}

		rng := e.newRand()
		bounds := land.Bounds()
		for i := range rec.Participants {
			pt := &rec.Participants[i]
			pt.Position = make([]float64, len(bounds))
			pt.Velocity = make([]float64, len(bounds))
			for d, b := range bounds {
				pt.Position[d] = b.Min + rng.Float64()*b.Span()
			}
			pt.Fitness = land.Evaluate(pt.Position)
			pt.PersonalBest = append([]float64(nil), pt.Position...)
			pt.PersonalBestFitness = pt.Fitness
			pt.Trials = 0
		}

		rec.Swarm = datatypes.SwarmState{
			Inertia:                rec.Session.Config.InertiaStart,
			ExplorationProbability: rec.Session.Config.ExplorationProbability,
		}
		swarm.RecomputeGlobalBest(&rec.Swarm, rec.Participants, rec.Session.Config.Sense)
		rec.Session.Status = datatypes.StatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("session started", "session", code, "participants", len(rec.Participants))
	e.broadcastState(rec)
	return rec, nil
}

// Pause suspends stepping on an active session. Submissions remain
// accepted while paused but are recorded only.
func (e *Engine) Pause(ctx context.Context, code string) (*datatypes.SessionRecord, error) {
	return e.transition(ctx, code, datatypes.OpPause, datatypes.StatusPaused)
}

// Resume returns a paused session to active.
func (e *Engine) Resume(ctx context.Context, code string) (*datatypes.SessionRecord, error) {
	return e.transition(ctx, code, datatypes.OpResume, datatypes.StatusActive)
}

// Close moves a session to completed. Completed is terminal: the record
// stays readable until its TTL but rejects every mutation.
func (e *Engine) Close(ctx context.Context, code string) (*datatypes.SessionRecord, error) {
	rec, err := e.transition(ctx, code, datatypes.OpClose, datatypes.StatusCompleted)
	if err != nil {
		return nil, err
	}
	e.hub.DropSession(code)
	return rec, nil
}

func (e *Engine) transition(ctx context.Context, code string, op datatypes.Op, to datatypes.Status) (*datatypes.SessionRecord, error) {
	rec, err := e.withRetry(ctx, code, func(rec *datatypes.SessionRecord) error {
		if err := rec.Session.Status.CheckOp(op); err != nil {
			return err
		}
		rec.Session.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("session transitioned", "session", code, "op", op, "status", to)
	e.broadcastState(rec)
	return rec, nil
}

// Step advances the swarm by exactly one iteration as a single atomic
// unit. Stale participants are pruned first, so a brief disconnect
// never distorts the global best mid-step.
//
// Two steps racing on the same session advance the iteration by one,
// not two: the loser's retry sees the iteration already moved past its
// snapshot and is rejected as redundant rather than re-applied.
func (e *Engine) Step(ctx context.Context, code string) (*datatypes.SessionRecord, error) {
	baseIter := -1
	var algorithm datatypes.AlgorithmKind

	rec, err := e.withRetry(ctx, code, func(rec *datatypes.SessionRecord) error {
		if err := rec.Session.Status.CheckOp(datatypes.OpStep); err != nil {
			return err
		}
		if baseIter == -1 {
			baseIter = rec.Swarm.Iteration
		} else if rec.Swarm.Iteration != baseIter {
			return datatypes.E(datatypes.KindConflict,
				"step collision on session %q: iteration already advanced to %d", code, rec.Swarm.Iteration)
		}

		e.pruneStale(rec)

		land, err := landscape.New(landscape.Kind(rec.Session.Config.LandscapeType), rec.Session.Config.GridSize)
		if err != nil {
			return err
		}
		opt, err := swarm.New(rec.Session.Config, e.newRand())
		if err != nil {
			return err
		}
		algorithm = opt.Kind()
		opt.Step(&rec.Swarm, rec.Participants, land)
		return nil
	})
	if err != nil {
		return nil, err
	}

	stepsTotal.WithLabelValues(string(algorithm)).Inc()
	e.logger.Info("step executed",
		"session", code,
		"iteration", rec.Swarm.Iteration,
		"global_best", rec.Swarm.GlobalBestFitness,
		"participants", len(rec.Participants))
	e.broadcastState(rec)
	return rec, nil
}

// pruneStale drops participants that are disconnected and past the
// liveness timeout. Removal happens here, not at disconnect time, so a
// brief reconnect window never loses state.
func (e *Engine) pruneStale(rec *datatypes.SessionRecord) {
	cutoff := e.now().Add(-e.cfg.LivenessTimeout)
	kept := rec.Participants[:0]
	for _, p := range rec.Participants {
		if !p.Connected && p.LastSeen.Before(cutoff) {
			e.logger.Info("pruning stale participant", "session", rec.Session.Code, "participant", p.ID)
			continue
		}
		kept = append(kept, p)
	}
	rec.Participants = kept
}

// SubmitPosition records a participant's position intent. Out-of-bounds
// positions are clamped, never rejected. While the session is active
// the submission also feeds personal/global best bookkeeping; while
// paused it is recorded only, and in any other state it is illegal.
func (e *Engine) SubmitPosition(ctx context.Context, code, participantID string, pos []float64) (*datatypes.SessionRecord, error) {
	for _, v := range pos {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, datatypes.E(datatypes.KindValidation, "position contains a non-finite value")
		}
	}

	rec, err := e.withRetry(ctx, code, func(rec *datatypes.SessionRecord) error {
		if err := rec.Session.Status.CheckOp(datatypes.OpSubmit); err != nil {
			return err
		}
		pt := rec.FindParticipant(participantID)
		if pt == nil {
			return datatypes.E(datatypes.KindNotFound, "participant %q not in session %q", participantID, code)
		}

		land, err := landscape.New(landscape.Kind(rec.Session.Config.LandscapeType), rec.Session.Config.GridSize)
		if err != nil {
			return err
		}
		bounds := land.Bounds()
		if len(pos) != len(bounds) {
			return datatypes.E(datatypes.KindValidation,
				"position has %d dimensions, landscape has %d", len(pos), len(bounds))
		}

		now := e.now()
		pt.Position = landscape.Clamp(bounds, pos)
		pt.Fitness = land.Evaluate(pt.Position)
		pt.Connected = true
		pt.LastSeen = now

		if rec.Session.Status == datatypes.StatusActive {
			sense := rec.Session.Config.Sense
			if len(pt.PersonalBest) == 0 || swarm.Better(sense, pt.Fitness, pt.PersonalBestFitness) {
				pt.PersonalBest = append([]float64(nil), pt.Position...)
				pt.PersonalBestFitness = pt.Fitness
			}
			swarm.RecomputeGlobalBest(&rec.Swarm, rec.Participants, sense)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.broadcastState(rec)
	return rec, nil
}

// Touch bumps a participant's liveness without any other state change.
// Used by the websocket ping path; no broadcast.
func (e *Engine) Touch(ctx context.Context, code, participantID string) error {
	_, err := e.withRetry(ctx, code, func(rec *datatypes.SessionRecord) error {
		pt := rec.FindParticipant(participantID)
		if pt == nil {
			return datatypes.E(datatypes.KindNotFound, "participant %q not in session %q", participantID, code)
		}
		pt.Connected = true
		pt.LastSeen = e.now()
		return nil
	})
	return err
}

// MarkDisconnected clears a participant's liveness flag. The swarm
// keeps the participant until the next step's prune pass.
func (e *Engine) MarkDisconnected(ctx context.Context, code, participantID string) {
	rec, err := e.withRetry(ctx, code, func(rec *datatypes.SessionRecord) error {
		pt := rec.FindParticipant(participantID)
		if pt == nil {
			return datatypes.E(datatypes.KindNotFound, "participant %q not in session %q", participantID, code)
		}
		pt.Connected = false
		pt.LastSeen = e.now()
		return nil
	})
	if err != nil {
		// Best effort: the participant may already be pruned or the
		// session gone.
		e.logger.Debug("mark disconnected failed", "session", code, "participant", participantID, "error", err)
		return
	}
	e.broadcastState(rec)
}

// Status returns the current record for a session.
func (e *Engine) Status(ctx context.Context, code string) (*datatypes.SessionRecord, error) {
	return e.get(ctx, code)
}

// List returns every live session record.
func (e *Engine) List(ctx context.Context) ([]*datatypes.SessionRecord, error) {
	recs, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	now := e.now()
	live := recs[:0]
	for _, rec := range recs {
		if rec.Session.Expired(now) {
			continue
		}
		live = append(live, rec)
	}
	return live, nil
}
