// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package swarm

import (
	"math/rand"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/landscape"
)

// pso is classic particle swarm optimization with an annealed
// exploration probability: on each update a particle either takes the
// directed velocity update or, with the current exploration
// probability, a bounded random walk.
type pso struct {
	cfg datatypes.SessionConfig
	rng *rand.Rand
}

func (p *pso) Kind() datatypes.AlgorithmKind { return datatypes.AlgorithmPSO }

func (p *pso) Step(state *datatypes.SwarmState, parts []datatypes.Participant, land landscape.Landscape) {
	iter := state.Iteration + 1
	inertia := linearAnneal(p.cfg.InertiaStart, p.cfg.InertiaFloor, iter, p.cfg.MaxIterations)
	explore := linearAnneal(p.cfg.ExplorationProbability, p.cfg.MinExplorationProbability, iter, p.cfg.MaxIterations)

	bounds := land.Bounds()
	vmax := make([]float64, len(bounds))
	for d, b := range bounds {
		vmax[d] = p.cfg.VMaxFraction * b.Span()
	}

	// The social term reads the global best from before this step, so
	// every particle sees the same reference regardless of the order
	// they are processed in.
	gbest := append([]float64(nil), state.GlobalBestPosition...)

	for i := range parts {
		pt := &parts[i]
		if !pt.Placed() {
			continue
		}
		if len(pt.Velocity) != len(pt.Position) {
			pt.Velocity = make([]float64, len(pt.Position))
		}

		if p.rng.Float64() < explore {
			for d := range pt.Velocity {
				pt.Velocity[d] = (p.rng.Float64()*2 - 1) * vmax[d]
			}
		} else {
			r1, r2 := p.rng.Float64(), p.rng.Float64()
			for d := range pt.Velocity {
				v := inertia*pt.Velocity[d] + p.cfg.Cognitive*r1*(pt.PersonalBest[d]-pt.Position[d])
				if len(gbest) == len(pt.Position) {
					v += p.cfg.Social * r2 * (gbest[d] - pt.Position[d])
				}
				pt.Velocity[d] = v
			}
		}

		for d := range pt.Velocity {
			if pt.Velocity[d] > vmax[d] {
				pt.Velocity[d] = vmax[d]
			} else if pt.Velocity[d] < -vmax[d] {
				pt.Velocity[d] = -vmax[d]
			}
			pt.Position[d] += pt.Velocity[d]
		}
		pt.Position = landscape.Clamp(bounds, pt.Position)

		pt.Fitness = land.Evaluate(pt.Position)
		if Better(p.cfg.Sense, pt.Fitness, pt.PersonalBestFitness) {
			pt.PersonalBest = append([]float64(nil), pt.Position...)
			pt.PersonalBestFitness = pt.Fitness
		}
	}

	RecomputeGlobalBest(state, parts, p.cfg.Sense)
	state.Iteration = iter
	state.Inertia = inertia
	state.ExplorationProbability = explore
}
