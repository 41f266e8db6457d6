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

// quadratic is the convex bowl f(x) = Σ x_i² on [-5, 5]². Minimum 0 at
// the origin. The easiest variant, used for first-time sessions.
type quadratic struct {
	grid int
}

func (q *quadratic) Name() string { return "Quadratic Bowl" }

func (q *quadratic) Evaluate(pos []float64) float64 {
	sum := 0.0
	for _, x := range pos {
		sum += x * x
	}
	return sum
}

func (q *quadratic) Bounds() []Bound {
	return []Bound{{Min: -5, Max: 5}, {Min: -5, Max: 5}}
}

func (q *quadratic) GridResolution() int { return q.grid }

func (q *quadratic) Describe(pos []float64) string {
	v := q.Evaluate(pos)
	switch {
	case v < 0.5:
		return "at the bottom of the bowl"
	case v < 10:
		return fmt.Sprintf("on the lower slope (cost %.1f); downhill leads to the center", v)
	default:
		return fmt.Sprintf("high on the rim (cost %.1f), distance %.1f from the center", v, math.Sqrt(v))
	}
}
