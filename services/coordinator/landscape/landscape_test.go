// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package landscape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew verifies the factory and its validation error.
func TestNew(t *testing.T) {
	t.Run("known kinds", func(t *testing.T) {
		for _, kind := range []Kind{Rastrigin, Quadratic, Ecological} {
			land, err := New(kind, 25)
			require.NoError(t, err, "kind %s", kind)
			assert.Equal(t, 25, land.GridResolution())
			assert.Len(t, land.Bounds(), 2)
			assert.NotEmpty(t, land.Name())
		}
	})

	t.Run("unknown kind is a validation error", func(t *testing.T) {
		_, err := New(Kind("himmelblau"), 25)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "himmelblau")
	})
}

// TestRastrigin verifies the global minimum and multimodality.
func TestRastrigin(t *testing.T) {
	land, err := New(Rastrigin, 25)
	require.NoError(t, err)

	t.Run("origin is the global minimum", func(t *testing.T) {
		assert.InDelta(t, 0.0, land.Evaluate([]float64{0, 0}), 1e-9)
	})

	t.Run("off-origin points cost more", func(t *testing.T) {
		assert.Greater(t, land.Evaluate([]float64{1.0, 1.0}), 0.0)
		assert.Greater(t, land.Evaluate([]float64{4.5, -4.5}), 0.0)
	})

	t.Run("local minima near integer lattice points", func(t *testing.T) {
		// (1, 0) sits in a local basin: cheaper than the ridge at
		// (0.5, 0) but costlier than the global minimum.
		lattice := land.Evaluate([]float64{1.0, 0.0})
		ridge := land.Evaluate([]float64{0.5, 0.0})
		assert.Less(t, lattice, ridge)
		assert.Greater(t, lattice, 0.0)
	})

	t.Run("bounds are the classic domain", func(t *testing.T) {
		for _, b := range land.Bounds() {
			assert.InDelta(t, -5.12, b.Min, 1e-9)
			assert.InDelta(t, 5.12, b.Max, 1e-9)
		}
	})
}

// TestQuadratic verifies the single-basin bowl.
func TestQuadratic(t *testing.T) {
	land, err := New(Quadratic, 25)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, land.Evaluate([]float64{0, 0}), 1e-12)
	assert.InDelta(t, 18.0, land.Evaluate([]float64{3, 3}), 1e-9)
	assert.Greater(t, land.Evaluate([]float64{-3, -3}), land.Evaluate([]float64{-1, 1}))
}

// TestEcological verifies the trap structure of the sustainability
// landscape.
func TestEcological(t *testing.T) {
	land, err := New(Ecological, 25)
	require.NoError(t, err)

	optimum := land.Evaluate([]float64{6.0, 5.5})
	pollutionTrap := land.Evaluate([]float64{9.0, 1.0})
	stagnationTrap := land.Evaluate([]float64{1.0, 9.0})

	t.Run("both traps cost more than the balanced optimum", func(t *testing.T) {
		assert.Greater(t, pollutionTrap, optimum)
		assert.Greater(t, stagnationTrap, optimum)
	})

	t.Run("traps are local basins", func(t *testing.T) {
		// Stepping out of the pollution trap toward its barrier
		// raises cost before the slope toward the optimum takes over.
		barrier := land.Evaluate([]float64{7.8, 2.5})
		assert.Greater(t, barrier, 0.0)
	})

	t.Run("descriptions label the regions", func(t *testing.T) {
		assert.Contains(t, land.Describe([]float64{9.0, 1.0}), "pollution trap")
		assert.Contains(t, land.Describe([]float64{1.0, 9.0}), "stagnation trap")
		assert.Contains(t, land.Describe([]float64{6.0, 5.5}), "balanced")
	})
}

// TestClamp verifies per-dimension clipping.
func TestClamp(t *testing.T) {
	bounds := []Bound{{Min: -5, Max: 5}, {Min: 0, Max: 10}}

	got := Clamp(bounds, []float64{-7.2, 12.0})
	assert.InDelta(t, -5.0, got[0], 1e-12)
	assert.InDelta(t, 10.0, got[1], 1e-12)

	got = Clamp(bounds, []float64{1.5, 2.5})
	assert.InDelta(t, 1.5, got[0], 1e-12)
	assert.InDelta(t, 2.5, got[1], 1e-12)

	assert.True(t, InBounds(bounds, []float64{0, 0}))
	assert.False(t, InBounds(bounds, []float64{-6, 0}))
}

// TestBoundSpan verifies the span helper used for velocity clamping.
func TestBoundSpan(t *testing.T) {
	assert.InDelta(t, 10.24, Bound{Min: -5.12, Max: 5.12}.Span(), 1e-9)
}
