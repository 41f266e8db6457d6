// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the shared data model of the coordinator:
// sessions, participants, swarm state, the session status machine, and
// the error taxonomy. It has no dependencies on the store, the engine,
// or the transport so every other package can import it freely.
package datatypes

import (
	"time"
)

// AlgorithmKind selects the optimizer variant for a session. The set is
// closed; unknown kinds fail validation at session creation.
type AlgorithmKind string

const (
	AlgorithmPSO AlgorithmKind = "pso"
	AlgorithmABC AlgorithmKind = "abc"
)

// Sense is the optimization direction.
type Sense string

const (
	SenseMinimize Sense = "minimize"
	SenseMaximize Sense = "maximize"
)

// SessionConfig is the landscape and algorithm configuration a session
// is created with. Zero fields are filled by ApplyDefaults before
// validation.
type SessionConfig struct {
	LandscapeType string        `json:"landscape_type" yaml:"landscape_type" validate:"required"`
	GridSize      int           `json:"grid_size" yaml:"grid_size" validate:"gte=5,lte=500"`
	Algorithm     AlgorithmKind `json:"algorithm_type" yaml:"algorithm_type" validate:"oneof=pso abc"`
	Sense         Sense         `json:"sense" yaml:"sense" validate:"oneof=minimize maximize"`

	MaxParticipants int `json:"max_participants" yaml:"max_participants" validate:"gte=1,lte=500"`
	MaxIterations   int `json:"max_iterations" yaml:"max_iterations" validate:"gte=1,lte=100000"`

	// PSO parameters.
	ExplorationProbability    float64 `json:"exploration_probability" yaml:"exploration_probability" validate:"gte=0,lte=1"`
	MinExplorationProbability float64 `json:"min_exploration_probability" yaml:"min_exploration_probability" validate:"gte=0,lte=1"`
	InertiaStart              float64 `json:"inertia_start" yaml:"inertia_start" validate:"gt=0,lte=2"`
	InertiaFloor              float64 `json:"inertia_floor" yaml:"inertia_floor" validate:"gte=0,lte=2"`
	Cognitive                 float64 `json:"cognitive" yaml:"cognitive" validate:"gte=0,lte=4"`
	Social                    float64 `json:"social" yaml:"social" validate:"gte=0,lte=4"`
	VMaxFraction              float64 `json:"vmax_fraction" yaml:"vmax_fraction" validate:"gt=0,lte=1"`

	// ABC parameters.
	ABCLimit         int     `json:"abc_limit,omitempty" yaml:"abc_limit" validate:"gte=0"`
	ABCEmployedRatio float64 `json:"abc_employed_ratio,omitempty" yaml:"abc_employed_ratio" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills unset fields with the stock configuration.
func (c *SessionConfig) ApplyDefaults() {
	if c.GridSize == 0 {
		c.GridSize = 25
	}
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmPSO
	}
	if c.Sense == "" {
		c.Sense = SenseMinimize
	}
	if c.MaxParticipants == 0 {
		c.MaxParticipants = 50
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 100
	}
	if c.ExplorationProbability == 0 {
		c.ExplorationProbability = 0.3
	}
	if c.MinExplorationProbability == 0 {
		c.MinExplorationProbability = 0.05
	}
	if c.InertiaStart == 0 {
		c.InertiaStart = 0.9
	}
	if c.InertiaFloor == 0 {
		c.InertiaFloor = 0.4
	}
	if c.Cognitive == 0 {
		c.Cognitive = 1.5
	}
	if c.Social == 0 {
		c.Social = 1.5
	}
	if c.VMaxFraction == 0 {
		c.VMaxFraction = 0.2
	}
	if c.ABCLimit == 0 {
		c.ABCLimit = 10
	}
	if c.ABCEmployedRatio == 0 {
		c.ABCEmployedRatio = 0.5
	}
}

// Session is one bounded, time-limited optimization run.
type Session struct {
	ID        string        `json:"id"`
	Code      string        `json:"code"`
	Status    Status        `json:"status"`
	Config    SessionConfig `json:"config"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// Expired reports whether the session's TTL has elapsed at the given
// instant.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Participant is one human particle in a session's swarm.
//
// Position and Velocity are nil until the session starts; the start
// transition places every participant randomly within bounds and seeds
// the personal best from that placement, so fitness fields are always
// finite once set (JSON cannot carry an Inf sentinel).
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JoinedAt time.Time `json:"joined_at"`

	Position []float64 `json:"position,omitempty"`
	Velocity []float64 `json:"velocity,omitempty"`
	Fitness  float64   `json:"fitness"`

	PersonalBest        []float64 `json:"personal_best,omitempty"`
	PersonalBestFitness float64   `json:"personal_best_fitness"`

	// Trials is the ABC abandonment counter. Unused by PSO.
	Trials int `json:"trials,omitempty"`

	Connected bool      `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// Placed reports whether the participant has been given a position yet.
func (p *Participant) Placed() bool { return len(p.Position) > 0 }

// SwarmState is the per-session optimizer state. Exactly one SwarmState
// exists per session; it is mutated only by the optimizer during a step
// or by the engine's best-bookkeeping on position submissions.
type SwarmState struct {
	GlobalBestPosition    []float64 `json:"global_best_position,omitempty"`
	GlobalBestFitness     float64   `json:"global_best_fitness"`
	GlobalBestParticipant string    `json:"global_best_participant,omitempty"`

	// Inertia and ExplorationProbability are derived from the iteration
	// counter by a fixed schedule, which makes them monotonically
	// non-increasing by construction.
	Inertia                float64 `json:"inertia"`
	ExplorationProbability float64 `json:"exploration_probability"`

	Iteration int `json:"iteration"`
}

// SessionRecord is the unit of storage and of compare-and-swap: the
// session, its swarm state, and its participants move through the store
// together under a single version stamp. A step either commits the
// whole record or none of it.
type SessionRecord struct {
	Session      Session       `json:"session"`
	Swarm        SwarmState    `json:"swarm"`
	Participants []Participant `json:"participants"`
	Version      uint64        `json:"version"`
}

// FindParticipant returns a pointer into Participants for the given id,
// or nil.
func (r *SessionRecord) FindParticipant(id string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].ID == id {
			return &r.Participants[i]
		}
	}
	return nil
}
