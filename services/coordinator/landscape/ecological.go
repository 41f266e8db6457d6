// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package landscape

import (
	"fmt"
	"math"
)

// ecological is the "Sustainable Development Challenge": axis 0 is
// economic development, axis 1 is environmental regulation, both on
// [0, 10]. The cost surface rewards balanced development under strong
// regulation and penalizes two traps:
//
//   - pollution trap: high development, weak regulation (around 9, 1)
//   - stagnation trap: weak development, heavy regulation (around 1, 9)
type ecological struct {
	grid int
}

// optimum is the center of the balanced sustainable region.
var ecoOptimum = []float64{6.0, 5.5}

func (e *ecological) Name() string { return "Sustainable Development Challenge" }

func (e *ecological) Evaluate(pos []float64) float64 {
	dev, reg := pos[0], 0.0
	if len(pos) > 1 {
		reg = pos[1]
	}
	base := 0.6*(dev-ecoOptimum[0])*(dev-ecoOptimum[0]) +
		0.6*(reg-ecoOptimum[1])*(reg-ecoOptimum[1])
	pollution := 12.0 / (1.0 + (dev-9.0)*(dev-9.0) + (reg-1.0)*(reg-1.0))
	stagnation := 10.0 / (1.0 + (dev-1.0)*(dev-1.0) + (reg-9.0)*(reg-9.0))
	return base + pollution + stagnation
}

func (e *ecological) Bounds() []Bound {
	return []Bound{{Min: 0, Max: 10}, {Min: 0, Max: 10}}
}

func (e *ecological) GridResolution() int { return e.grid }

func (e *ecological) Describe(pos []float64) string {
	dev, reg := pos[0], 0.0
	if len(pos) > 1 {
		reg = pos[1]
	}
	switch {
	case dev > 7 && reg < 3:
		return "in the pollution trap: rapid growth with weak regulation is cheap today and costly tomorrow"
	case dev < 3 && reg > 7:
		return "in the stagnation trap: heavy regulation without development leaves the region poor"
	case math.Abs(dev-ecoOptimum[0]) < 1.5 && math.Abs(reg-ecoOptimum[1]) < 1.5:
		return "in the balanced sustainable zone: strong development matched by strong regulation"
	case dev < 3 && reg < 3:
		return fmt.Sprintf("underdeveloped and unregulated (dev %.1f, reg %.1f); both axes have room to grow", dev, reg)
	default:
		return fmt.Sprintf("between regimes (dev %.1f, reg %.1f); the sustainable zone lies near balanced high values", dev, reg)
	}
}
