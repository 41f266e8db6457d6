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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/landscape"
)

// psoConfig is a deterministic PSO setup: exploration disabled so every
// particle takes the directed update.
func psoConfig() datatypes.SessionConfig {
	return datatypes.SessionConfig{
		LandscapeType:             "quadratic",
		Algorithm:                 datatypes.AlgorithmPSO,
		Sense:                     datatypes.SenseMinimize,
		MaxIterations:             100,
		ExplorationProbability:    0,
		MinExplorationProbability: 0,
		InertiaStart:              0.9,
		InertiaFloor:              0.4,
		Cognitive:                 1.5,
		Social:                    1.5,
		VMaxFraction:              0.2,
	}
}

// bowlSwarm places two particles on the quadratic bowl with seeded
// personal bests, the way the start transition does.
func bowlSwarm(t *testing.T) (*datatypes.SwarmState, []datatypes.Participant, landscape.Landscape) {
	t.Helper()
	land, err := landscape.New(landscape.Quadratic, 25)
	require.NoError(t, err)

	parts := []datatypes.Participant{
		{ID: "a", Position: []float64{3, 3}, Velocity: []float64{0, 0}},
		{ID: "b", Position: []float64{-3, -3}, Velocity: []float64{0, 0}},
	}
	for i := range parts {
		parts[i].Fitness = land.Evaluate(parts[i].Position)
		parts[i].PersonalBest = append([]float64(nil), parts[i].Position...)
		parts[i].PersonalBestFitness = parts[i].Fitness
	}
	state := &datatypes.SwarmState{}
	RecomputeGlobalBest(state, parts, datatypes.SenseMinimize)
	return state, parts, land
}

// TestPSOStepAdvancesOneIteration verifies the iteration counter and
// schedule bookkeeping after a single step.
func TestPSOStepAdvancesOneIteration(t *testing.T) {
	state, parts, land := bowlSwarm(t)
	opt, err := New(psoConfig(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	opt.Step(state, parts, land)

	assert.Equal(t, 1, state.Iteration)
	assert.InDelta(t, 0.895, state.Inertia, 1e-9)
	assert.InDelta(t, 0.0, state.ExplorationProbability, 1e-9)
}

// TestPSOConvergesOnBowl verifies that repeated steps drive the global
// best toward the bowl's minimum.
func TestPSOConvergesOnBowl(t *testing.T) {
	state, parts, land := bowlSwarm(t)
	opt, err := New(psoConfig(), rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	initialBest := state.GlobalBestFitness
	for i := 0; i < 60; i++ {
		opt.Step(state, parts, land)
	}

	assert.Equal(t, 60, state.Iteration)
	assert.Less(t, state.GlobalBestFitness, initialBest)
	assert.Less(t, state.GlobalBestFitness, 1.0,
		"sixty steps on a bowl should get close to the minimum")
}

// TestPSOPersonalBestOnlyImproves verifies strict personal best
// bookkeeping across steps.
func TestPSOPersonalBestOnlyImproves(t *testing.T) {
	state, parts, land := bowlSwarm(t)
	opt, err := New(psoConfig(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	prev := []float64{parts[0].PersonalBestFitness, parts[1].PersonalBestFitness}
	for i := 0; i < 20; i++ {
		opt.Step(state, parts, land)
		for j := range parts {
			assert.LessOrEqual(t, parts[j].PersonalBestFitness, prev[j],
				"personal best regressed for %s at iteration %d", parts[j].ID, i+1)
			prev[j] = parts[j].PersonalBestFitness
		}
	}
}

// TestPSOGlobalBestIsMinimumPersonalBest verifies the invariant after
// every step.
func TestPSOGlobalBestIsMinimumPersonalBest(t *testing.T) {
	state, parts, land := bowlSwarm(t)
	opt, err := New(psoConfig(), rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		opt.Step(state, parts, land)
		min := math.Inf(1)
		for j := range parts {
			if parts[j].PersonalBestFitness < min {
				min = parts[j].PersonalBestFitness
			}
		}
		assert.InDelta(t, min, state.GlobalBestFitness, 1e-12)
	}
}

// TestPSOKeepsParticlesInBounds verifies positions are clipped and
// velocities clamped every step, even with full random exploration.
func TestPSOKeepsParticlesInBounds(t *testing.T) {
	cfg := psoConfig()
	cfg.ExplorationProbability = 1.0
	cfg.MinExplorationProbability = 1.0

	state, parts, land := bowlSwarm(t)
	opt, err := New(cfg, rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	bounds := land.Bounds()
	for i := 0; i < 50; i++ {
		opt.Step(state, parts, land)
		for j := range parts {
			assert.True(t, landscape.InBounds(bounds, parts[j].Position),
				"particle %s escaped at iteration %d: %v", parts[j].ID, i+1, parts[j].Position)
			for d, b := range bounds {
				vmax := cfg.VMaxFraction * b.Span()
				assert.LessOrEqual(t, math.Abs(parts[j].Velocity[d]), vmax+1e-9)
			}
		}
	}
}

// TestPSOSkipsUnplacedParticipants verifies participants without a
// position are left alone.
func TestPSOSkipsUnplacedParticipants(t *testing.T) {
	state, parts, land := bowlSwarm(t)
	parts = append(parts, datatypes.Participant{ID: "lurker"})

	opt, err := New(psoConfig(), rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	opt.Step(state, parts, land)

	assert.Nil(t, parts[2].Position)
	assert.Nil(t, parts[2].Velocity)
	assert.NotEqual(t, "lurker", state.GlobalBestParticipant)
}

// TestPSODeterministicWithSeed verifies two runs from the same seed
// produce identical trajectories.
func TestPSODeterministicWithSeed(t *testing.T) {
	run := func() *datatypes.SwarmState {
		state, parts, land := bowlSwarm(t)
		opt, err := New(psoConfig(), rand.New(rand.NewSource(1234)))
		require.NoError(t, err)
		for i := 0; i < 15; i++ {
			opt.Step(state, parts, land)
		}
		return state
	}
	a, b := run(), run()
	assert.Equal(t, a.GlobalBestFitness, b.GlobalBestFitness)
	assert.Equal(t, a.GlobalBestPosition, b.GlobalBestPosition)
}
