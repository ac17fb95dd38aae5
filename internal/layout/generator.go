package layout

import (
	"fmt"

	"github.com/chewxy/math32"

	"oasis-map/internal/geom"
)

// Generator computes the default transform of the i-th of n oases.
// Implementations must depend only on i and n.
type Generator interface {
	Place(i, n int) geom.Transform
}

// Grid lays oases out in rows of Columns, centered on X, growing towards -Z.
type Grid struct {
	Columns int
	Spacing float32
}

// DefaultGrid is four columns six units apart.
func DefaultGrid() Grid {
	return Grid{Columns: 4, Spacing: 6}
}

func (g Grid) Place(i, n int) geom.Transform {
	cols := g.Columns
	if cols <= 0 {
		cols = 1
	}
	offset := float32(cols-1) * g.Spacing / 2
	xf := geom.Identity()
	xf.Position = geom.Vec3{
		float32(i%cols)*g.Spacing - offset,
		0,
		float32(i/cols) * -g.Spacing,
	}
	return xf
}

// Ring spaces oases evenly on a circle of Radius around the origin.
type Ring struct {
	Radius float32
}

func (r Ring) Place(i, n int) geom.Transform {
	xf := geom.Identity()
	if n <= 0 {
		return xf
	}
	a := float32(i) * 2 * math32.Pi / float32(n)
	xf.Position = geom.Vec3{math32.Cos(a) * r.Radius, 0, math32.Sin(a) * r.Radius}
	return xf
}

// NewGenerator builds a generator by policy name ("grid" or "ring").
func NewGenerator(policy string, columns int, spacing, radius float32) (Generator, error) {
	switch policy {
	case "grid", "":
		g := DefaultGrid()
		if columns > 0 {
			g.Columns = columns
		}
		if spacing > 0 {
			g.Spacing = spacing
		}
		return g, nil
	case "ring":
		if radius <= 0 {
			radius = 12
		}
		return Ring{Radius: radius}, nil
	}
	return nil, fmt.Errorf("layout: unknown policy %q", policy)
}
