// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	broadcastsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swarmcraft_broadcasts_queued_total",
		Help: "Broadcast payloads queued to observer connections",
	})

	broadcastsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swarmcraft_broadcasts_dropped_total",
		Help: "Broadcast payloads dropped because an observer queue was full or its write failed",
	})
)
