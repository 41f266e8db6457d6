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

// rastrigin is f(x) = A*n + Σ (x_i² − A·cos(2πx_i)) on [-5.12, 5.12]².
// Global minimum 0 at the origin, with a dense grid of local minima.
type rastrigin struct {
	a    float64
	grid int
}

func (r *rastrigin) Name() string { return "Rastrigin Function" }

func (r *rastrigin) Evaluate(pos []float64) float64 {
	sum := r.a * float64(len(pos))
	for _, x := range pos {
		sum += x*x - r.a*math.Cos(2*math.Pi*x)
	}
	return sum
}

func (r *rastrigin) Bounds() []Bound {
	return []Bound{{Min: -5.12, Max: 5.12}, {Min: -5.12, Max: 5.12}}
}

func (r *rastrigin) GridResolution() int { return r.grid }

func (r *rastrigin) Describe(pos []float64) string {
	v := r.Evaluate(pos)
	dist := 0.0
	for _, x := range pos {
		dist += x * x
	}
	dist = math.Sqrt(dist)
	switch {
	case v < 1:
		return "in the global basin, right at the bottom of the valley"
	case dist < 1.5:
		return fmt.Sprintf("close to the global basin but caught on a ripple (cost %.1f)", v)
	case v < 25:
		return fmt.Sprintf("in a decent local valley (cost %.1f); better valleys exist toward the center", v)
	default:
		return fmt.Sprintf("high on the rippled slopes (cost %.1f); far from the global basin", v)
	}
}
