// Package geom holds the small set of 3D types the scene engine works with
// (vectors, axis-aligned boxes, transforms) and the bounds math used to place
// models: measuring an instance, scaling it to a width, resting it on the
// ground and reading off an anchor edge.
package geom

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Vec3 is a position, or per-axis Euler angles in radians.
type Vec3 = mgl32.Vec3

// WorldUp is the +Y axis. The ground plane is y = 0.
var WorldUp = Vec3{0, 1, 0}

// Axis selects a component of a Vec3.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Edge selects which side of a box on an axis is used as the anchor.
type Edge int

const (
	EdgeMin Edge = iota
	EdgeCenter
	EdgeMax
)

func (e Edge) String() string {
	switch e {
	case EdgeMin:
		return "min"
	case EdgeCenter:
		return "center"
	case EdgeMax:
		return "max"
	}
	return fmt.Sprintf("Edge(%d)", int(e))
}

// ParseEdge parses "min", "center" or "max". The empty string is center.
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "min":
		return EdgeMin, nil
	case "center", "":
		return EdgeCenter, nil
	case "max":
		return EdgeMax, nil
	}
	return EdgeCenter, fmt.Errorf("geom: unknown edge %q (want min, center or max)", s)
}

// Clamp restricts v to [lo, hi].
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite reports whether f is neither NaN nor ±Inf.
func Finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// FiniteVec reports whether every component of v is finite.
func FiniteVec(v Vec3) bool {
	return Finite(v[0]) && Finite(v[1]) && Finite(v[2])
}
