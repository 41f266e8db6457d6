// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplyDefaults verifies the stock configuration and that explicit
// values survive.
func TestApplyDefaults(t *testing.T) {
	t.Run("zero config gets stock values", func(t *testing.T) {
		cfg := SessionConfig{LandscapeType: "rastrigin"}
		cfg.ApplyDefaults()

		assert.Equal(t, 25, cfg.GridSize)
		assert.Equal(t, AlgorithmPSO, cfg.Algorithm)
		assert.Equal(t, SenseMinimize, cfg.Sense)
		assert.Equal(t, 50, cfg.MaxParticipants)
		assert.Equal(t, 100, cfg.MaxIterations)
		assert.InDelta(t, 0.3, cfg.ExplorationProbability, 1e-12)
		assert.InDelta(t, 0.05, cfg.MinExplorationProbability, 1e-12)
		assert.InDelta(t, 0.9, cfg.InertiaStart, 1e-12)
		assert.InDelta(t, 0.4, cfg.InertiaFloor, 1e-12)
		assert.InDelta(t, 1.5, cfg.Cognitive, 1e-12)
		assert.InDelta(t, 1.5, cfg.Social, 1e-12)
		assert.InDelta(t, 0.2, cfg.VMaxFraction, 1e-12)
		assert.Equal(t, 10, cfg.ABCLimit)
		assert.InDelta(t, 0.5, cfg.ABCEmployedRatio, 1e-12)
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		cfg := SessionConfig{
			LandscapeType:   "quadratic",
			Algorithm:       AlgorithmABC,
			MaxParticipants: 4,
			MaxIterations:   500,
		}
		cfg.ApplyDefaults()
		assert.Equal(t, AlgorithmABC, cfg.Algorithm)
		assert.Equal(t, 4, cfg.MaxParticipants)
		assert.Equal(t, 500, cfg.MaxIterations)
	})
}

// TestSessionExpired verifies the TTL cutoff.
func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(2*time.Hour)))

	// Zero expiry means no cutoff.
	var zero Session
	assert.False(t, zero.Expired(now))
}

// TestFindParticipant verifies lookup returns a mutable pointer into
// the record.
func TestFindParticipant(t *testing.T) {
	rec := SessionRecord{
		Participants: []Participant{
			{ID: "a", Name: "ant"},
			{ID: "b", Name: "bee"},
		},
	}
	p := rec.FindParticipant("b")
	require.NotNil(t, p)
	p.Name = "wasp"
	assert.Equal(t, "wasp", rec.Participants[1].Name)

	assert.Nil(t, rec.FindParticipant("missing"))
}

// TestParticipantPlaced verifies placement detection.
func TestParticipantPlaced(t *testing.T) {
	p := Participant{}
	assert.False(t, p.Placed())
	p.Position = []float64{1, 2}
	assert.True(t, p.Placed())
}
