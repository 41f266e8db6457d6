// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package swarm

import (
	"math"
	"math/rand"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/landscape"
)

// abc is artificial bee colony optimization. Each participant's
// position is a food source; the first employed-ratio share of the
// swarm forages its own source, onlookers reinforce sources
// proportionally to quality, and sources that fail to improve for more
// than the abandonment limit are scouted to a fresh random position.
// The per-source trial counter persists across steps on the
// participant record.
type abc struct {
	cfg datatypes.SessionConfig
	rng *rand.Rand
}

func (a *abc) Kind() datatypes.AlgorithmKind { return datatypes.AlgorithmABC }

func (a *abc) Step(state *datatypes.SwarmState, parts []datatypes.Participant, land landscape.Landscape) {
	iter := state.Iteration + 1
	defer func() { state.Iteration = iter }()

	placed := make([]int, 0, len(parts))
	for i := range parts {
		if parts[i].Placed() {
			placed = append(placed, i)
		}
	}
	if len(placed) == 0 {
		return
	}

	employed := int(math.Round(a.cfg.ABCEmployedRatio * float64(len(placed))))
	if employed < 1 {
		employed = 1
	}
	if employed > len(placed) {
		employed = len(placed)
	}

	bounds := land.Bounds()

	for _, i := range placed[:employed] {
		a.forage(parts, i, placed, bounds, land)
	}

	for k := 0; k < len(placed)-employed; k++ {
		i := a.roulette(parts, placed)
		a.forage(parts, i, placed, bounds, land)
	}

	for _, i := range placed {
		if parts[i].Trials <= a.cfg.ABCLimit {
			continue
		}
		pt := &parts[i]
		for d := range pt.Position {
			pt.Position[d] = bounds[d].Min + a.rng.Float64()*bounds[d].Span()
		}
		pt.Trials = 0
		pt.Fitness = land.Evaluate(pt.Position)
		if Better(a.cfg.Sense, pt.Fitness, pt.PersonalBestFitness) {
			pt.PersonalBest = append([]float64(nil), pt.Position...)
			pt.PersonalBestFitness = pt.Fitness
		}
	}

	RecomputeGlobalBest(state, parts, a.cfg.Sense)
}

// forage tries a neighbor of source i along one random dimension toward
// or away from a random partner, keeping it only on strict improvement.
func (a *abc) forage(parts []datatypes.Participant, i int, placed []int, bounds []landscape.Bound, land landscape.Landscape) {
	pt := &parts[i]

	k := i
	if len(placed) > 1 {
		for k == i {
			k = placed[a.rng.Intn(len(placed))]
		}
	}

	cand := append([]float64(nil), pt.Position...)
	d := a.rng.Intn(len(cand))
	phi := a.rng.Float64()*2 - 1
	cand[d] += phi * (pt.Position[d] - parts[k].Position[d])
	cand = landscape.Clamp(bounds, cand)

	fit := land.Evaluate(cand)
	if Better(a.cfg.Sense, fit, pt.Fitness) {
		pt.Position = cand
		pt.Fitness = fit
		pt.Trials = 0
		if Better(a.cfg.Sense, fit, pt.PersonalBestFitness) {
			pt.PersonalBest = append([]float64(nil), cand...)
			pt.PersonalBestFitness = fit
		}
		return
	}
	pt.Trials++
}

// roulette picks a placed source with probability proportional to its
// quality. Quality is 1/(1+f) for non-negative cost and 1+|f| below
// zero, inverted for maximization.
func (a *abc) roulette(parts []datatypes.Participant, placed []int) int {
	weights := make([]float64, len(placed))
	total := 0.0
	for w, i := range placed {
		f := parts[i].Fitness
		if a.cfg.Sense == datatypes.SenseMaximize {
			f = -f
		}
		if f >= 0 {
			weights[w] = 1.0 / (1.0 + f)
		} else {
			weights[w] = 1.0 + math.Abs(f)
		}
		total += weights[w]
	}
	if total <= 0 {
		return placed[a.rng.Intn(len(placed))]
	}
	r := a.rng.Float64() * total
	for w, i := range placed {
		r -= weights[w]
		if r <= 0 {
			return i
		}
	}
	return placed[len(placed)-1]
}
