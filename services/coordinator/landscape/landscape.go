// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package landscape defines the fitness landscapes participants
// optimize over.
//
// A Landscape is a pure, deterministic, total function over its
// declared bounds plus grid metadata and a best-effort qualitative
// description. The set of variants is closed: new landscapes are added
// here as new kinds, and the rest of the system stays polymorphic over
// the Landscape interface — nothing outside this package may
// special-case a variant.
package landscape

import (
	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
)

// Kind tags a landscape variant.
type Kind string

const (
	// Rastrigin is the classic highly multimodal benchmark function.
	Rastrigin Kind = "rastrigin"

	// Quadratic is a simple convex bowl, useful for demonstrations and
	// as the easiest difficulty level.
	Quadratic Kind = "quadratic"

	// Ecological is a two-axis sustainable-development trade-off
	// between economic development and environmental regulation.
	Ecological Kind = "ecological"
)

// Bound is the closed [Min, Max] interval for one dimension.
type Bound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (b Bound) Span() float64 { return b.Max - b.Min }

// Landscape is the capability set the engine sees. Evaluate must be
// pure and total over the bounds domain.
type Landscape interface {
	// Name returns the human-facing landscape name.
	Name() string

	// Evaluate maps a position to a fitness value. Lower is better
	// under the default minimization sense.
	Evaluate(pos []float64) float64

	// Bounds returns the per-dimension domain.
	Bounds() []Bound

	// GridResolution returns the number of cells per axis used by
	// clients to discretize the landscape for display.
	GridResolution() int

	// Describe returns a best-effort, non-authoritative qualitative
	// label for a position.
	Describe(pos []float64) string
}

// New constructs the landscape variant for kind with the given grid
// resolution. An unknown kind is a validation error.
func New(kind Kind, grid int) (Landscape, error) {
	if grid <= 0 {
		grid = 25
	}
	switch kind {
	case Rastrigin:
		return &rastrigin{a: 10.0, grid: grid}, nil
	case Quadratic:
		return &quadratic{grid: grid}, nil
	case Ecological:
		return &ecological{grid: grid}, nil
	default:
		return nil, datatypes.E(datatypes.KindValidation, "unknown landscape type %q", kind)
	}
}

// Clamp pins pos to bounds, dimension by dimension. Out-of-bounds
// submissions are stored clamped, never raw and never rejected.
func Clamp(bounds []Bound, pos []float64) []float64 {
	out := make([]float64, len(pos))
	for i, v := range pos {
		if i >= len(bounds) {
			out[i] = v
			continue
		}
		switch {
		case v < bounds[i].Min:
			out[i] = bounds[i].Min
		case v > bounds[i].Max:
			out[i] = bounds[i].Max
		default:
			out[i] = v
		}
	}
	return out
}

// InBounds reports whether pos lies within bounds in every dimension.
func InBounds(bounds []Bound, pos []float64) bool {
	if len(pos) != len(bounds) {
		return false
	}
	for i, v := range pos {
		if v < bounds[i].Min || v > bounds[i].Max {
			return false
		}
	}
	return true
}
