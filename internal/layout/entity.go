// Package layout owns the list of oases shown in the scene and decides where
// each one sits: the remote list says which oases exist, the local cache says
// where known ones were left, and a generator places the rest.
package layout

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"oasis-map/internal/geom"
)

// Scale limits for an oasis marker.
const (
	MinScale float32 = 0.2
	MaxScale float32 = 5.0
)

// ClampScale restricts s to [MinScale, MaxScale]. Non-finite values reset to 1.
func ClampScale(s float32) float32 {
	if !geom.Finite(s) {
		return 1
	}
	return geom.Clamp(s, MinScale, MaxScale)
}

// Remote is one oasis as listed by the remote entity source.
type Remote struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Language string `json:"language,omitempty"`
}

// Placement is the cached transform of one oasis, keyed by ID.
type Placement struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Position geom.Vec3 `json:"position"`
	Rotation geom.Vec3 `json:"rotation"`
	Scale    float32   `json:"scale"`
}

// Transform converts the cached fields, repairing a missing or out of range
// scale and non-finite vectors.
func (p Placement) Transform() geom.Transform {
	xf := geom.Transform{Position: p.Position, Rotation: p.Rotation, Scale: p.Scale}
	if xf.Scale == 0 {
		xf.Scale = 1
	}
	xf.Scale = ClampScale(xf.Scale)
	if !geom.FiniteVec(xf.Position) {
		xf.Position = geom.Vec3{}
	}
	if !geom.FiniteVec(xf.Rotation) {
		xf.Rotation = geom.Vec3{}
	}
	return xf
}

// Entity is an oasis placed in the scene.
type Entity struct {
	ID        string
	Title     string
	Language  string
	Transform geom.Transform
}

// Placement returns the cache entry for e.
func (e Entity) Placement() Placement {
	return Placement{
		ID:       e.ID,
		Title:    e.Title,
		Position: e.Transform.Position,
		Rotation: e.Transform.Rotation,
		Scale:    e.Transform.Scale,
	}
}

// Label is the marker caption: the title, followed by the English name of
// the list's language when it adds something.
func (e Entity) Label() string {
	if e.Language == "" {
		return e.Title
	}
	tag, err := language.Parse(e.Language)
	if err != nil {
		return e.Title
	}
	name := display.English.Tags().Name(tag)
	if name == "" || name == e.Title {
		return e.Title
	}
	if e.Title == "" {
		return name
	}
	return e.Title + " · " + name
}
