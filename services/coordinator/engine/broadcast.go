// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/landscape"
)

// ParticipantView is the per-participant slice of a broadcast payload.
type ParticipantView struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Position            []float64 `json:"position,omitempty"`
	Fitness             float64   `json:"fitness"`
	PersonalBestFitness float64   `json:"personal_best_fitness"`
	Connected           bool      `json:"connected"`
}

// StatePayload is the full-state broadcast message sent to every live
// observer after each accepted mutation. Full state rather than deltas:
// simpler to reason about, and swarm sessions are small.
type StatePayload struct {
	Type                   string            `json:"type"`
	Code                   string            `json:"code"`
	Status                 datatypes.Status  `json:"status"`
	Iteration              int               `json:"iteration"`
	GlobalBestPosition     []float64         `json:"global_best_position,omitempty"`
	GlobalBestFitness      float64           `json:"global_best_fitness"`
	GlobalBestLabel        string            `json:"global_best_label,omitempty"`
	Inertia                float64           `json:"inertia"`
	ExplorationProbability float64           `json:"exploration_probability"`
	Participants           []ParticipantView `json:"participants"`
}

// StatePayloadFrom builds the broadcast message for a record.
func StatePayloadFrom(rec *datatypes.SessionRecord) *StatePayload {
	payload := &StatePayload{
		Type:                   "session_state",
		Code:                   rec.Session.Code,
		Status:                 rec.Session.Status,
		Iteration:              rec.Swarm.Iteration,
		GlobalBestPosition:     rec.Swarm.GlobalBestPosition,
		GlobalBestFitness:      rec.Swarm.GlobalBestFitness,
		Inertia:                rec.Swarm.Inertia,
		ExplorationProbability: rec.Swarm.ExplorationProbability,
		Participants:           make([]ParticipantView, 0, len(rec.Participants)),
	}

	if len(rec.Swarm.GlobalBestPosition) > 0 {
		if land, err := landscape.New(landscape.Kind(rec.Session.Config.LandscapeType), rec.Session.Config.GridSize); err == nil {
			payload.GlobalBestLabel = land.Describe(rec.Swarm.GlobalBestPosition)
		}
	}

	for _, p := range rec.Participants {
		payload.Participants = append(payload.Participants, ParticipantView{
			ID:                  p.ID,
			Name:                p.Name,
			Position:            p.Position,
			Fitness:             p.Fitness,
			PersonalBestFitness: p.PersonalBestFitness,
			Connected:           p.Connected,
		})
	}
	return payload
}

// broadcastState fans the record's state out to all observers of its
// session. Never blocks and never fails the caller.
func (e *Engine) broadcastState(rec *datatypes.SessionRecord) {
	e.hub.Broadcast(rec.Session.Code, StatePayloadFrom(rec))
}
