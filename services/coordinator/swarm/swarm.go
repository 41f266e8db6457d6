// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package swarm implements the optimizer variants that advance a
// session's swarm by one step.
//
// An Optimizer's Step is a pure in-memory transformation: it mutates
// the SwarmState and Participant slice it is handed and never touches
// the store or the network. The engine owns atomicity — it hands Step a
// private copy of the record and commits the whole result (or none of
// it) through compare-and-swap.
//
// Randomness comes from an injected *rand.Rand so tests can seed it.
package swarm

import (
	"math/rand"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/landscape"
)

// Optimizer advances swarm state by exactly one iteration per Step.
type Optimizer interface {
	// Kind returns the algorithm tag this optimizer implements.
	Kind() datatypes.AlgorithmKind

	// Step processes every placed participant independently of
	// submission order, recomputes the global best, applies the
	// parameter schedules, and increments the iteration counter by 1.
	Step(state *datatypes.SwarmState, parts []datatypes.Participant, land landscape.Landscape)
}

// New constructs the optimizer variant selected by cfg. The rng must
// not be shared with other goroutines.
func New(cfg datatypes.SessionConfig, rng *rand.Rand) (Optimizer, error) {
	switch cfg.Algorithm {
	case datatypes.AlgorithmPSO, "":
		return &pso{cfg: cfg, rng: rng}, nil
	case datatypes.AlgorithmABC:
		return &abc{cfg: cfg, rng: rng}, nil
	default:
		return nil, datatypes.E(datatypes.KindValidation, "unsupported algorithm type %q", cfg.Algorithm)
	}
}

// Better reports whether candidate is a strict improvement over
// incumbent under the given sense. Ties are never improvements, so
// older bests win and the swarm favors stability over churn.
func Better(sense datatypes.Sense, candidate, incumbent float64) bool {
	if sense == datatypes.SenseMaximize {
		return candidate > incumbent
	}
	return candidate < incumbent
}

// RecomputeGlobalBest scans all placed participants' personal bests and
// writes the winner into state. Ties break toward the lowest insertion
// index because only strict improvements displace the running winner.
func RecomputeGlobalBest(state *datatypes.SwarmState, parts []datatypes.Participant, sense datatypes.Sense) {
	best := -1
	for i := range parts {
		if len(parts[i].PersonalBest) == 0 {
			continue
		}
		if best == -1 || Better(sense, parts[i].PersonalBestFitness, parts[best].PersonalBestFitness) {
			best = i
		}
	}
	if best == -1 {
		return
	}
	state.GlobalBestPosition = append([]float64(nil), parts[best].PersonalBest...)
	state.GlobalBestFitness = parts[best].PersonalBestFitness
	state.GlobalBestParticipant = parts[best].ID
}

// linearAnneal computes v(iter) = start − (start−floor)·iter/max,
// clamped to floor. Monotonic for any non-decreasing iter.
func linearAnneal(start, floor float64, iter, maxIter int) float64 {
	if maxIter <= 0 || iter >= maxIter {
		return floor
	}
	v := start - (start-floor)*float64(iter)/float64(maxIter)
	if v < floor {
		return floor
	}
	return v
}
