// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swarmcraft_sessions_created_total",
		Help: "Sessions created",
	})

	participantsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swarmcraft_participants_joined_total",
		Help: "Participants joined across all sessions",
	})

	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swarmcraft_steps_total",
		Help: "Optimizer steps by algorithm",
	}, []string{"algorithm"})

	casConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swarmcraft_cas_conflicts_total",
		Help: "Compare-and-swap conflicts observed before a retry",
	})

	retriesExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swarmcraft_retries_exhausted_total",
		Help: "Mutations that gave up after the full retry budget",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swarmcraft_active_sessions",
		Help: "Live (unexpired) sessions in the store, sampled by the sweeper",
	})
)
