// Package camera keeps the map camera inside its travel bounds and glides it
// between positions on directional input.
package camera

import (
	"errors"
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"oasis-map/internal/geom"
)

// Rig is the camera state shared with the renderer. The navigator moves it
// but does not own it.
type Rig struct {
	Eye    geom.Vec3
	Target geom.Vec3
}

// Bounds limits where the rig target may travel on the ground plane.
type Bounds struct {
	MinX float32 `json:"min_x" yaml:"min_x" toml:"min_x"`
	MaxX float32 `json:"max_x" yaml:"max_x" toml:"max_x"`
	MinZ float32 `json:"min_z" yaml:"min_z" toml:"min_z"`
	MaxZ float32 `json:"max_z" yaml:"max_z" toml:"max_z"`
}

// ErrBounds reports travel bounds with an empty range.
var ErrBounds = errors.New("camera: invalid travel bounds")

// Validate checks MinX < MaxX and MinZ < MaxZ.
func (b Bounds) Validate() error {
	if !(b.MinX < b.MaxX) {
		return fmt.Errorf("%w: x range [%g, %g]", ErrBounds, b.MinX, b.MaxX)
	}
	if !(b.MinZ < b.MaxZ) {
		return fmt.Errorf("%w: z range [%g, %g]", ErrBounds, b.MinZ, b.MaxZ)
	}
	return nil
}

// Contains reports whether p lies inside the bounds on X and Z.
func (b Bounds) Contains(p geom.Vec3) bool {
	return p.X() >= b.MinX && p.X() <= b.MaxX && p.Z() >= b.MinZ && p.Z() <= b.MaxZ
}

// Clamp returns p with X and Z clamped into the bounds; Y is unchanged.
func (b Bounds) Clamp(p geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		geom.Clamp(p.X(), b.MinX, b.MaxX),
		p.Y(),
		geom.Clamp(p.Z(), b.MinZ, b.MaxZ),
	}
}

// Default travel limits for the map scene.
const (
	DefaultStep     = 6
	DefaultDuration = 0.6
)

// DefaultBounds is the map scene's travel area.
func DefaultBounds() Bounds {
	return Bounds{MinX: -30, MaxX: 30, MinZ: -40, MaxZ: 10}
}

type glide struct {
	x, y, z *gween.Tween
	dest    geom.Vec3
}

// Navigator clamps and glides an attached rig. It is not safe for
// concurrent use; call it from the frame loop.
type Navigator struct {
	bounds   Bounds
	step     float32
	duration float32
	easing   ease.TweenFunc

	rig   *Rig
	glide *glide
}

// New returns a navigator. Step is the world distance of one glide step and
// duration its length in seconds; non-positive values use the defaults.
func New(bounds Bounds, step, duration float32) *Navigator {
	if step <= 0 {
		step = DefaultStep
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Navigator{bounds: bounds, step: step, duration: duration, easing: ease.InOutQuad}
}

// Bounds returns the travel bounds.
func (n *Navigator) Bounds() Bounds { return n.bounds }

// Attach starts driving r.
func (n *Navigator) Attach(r *Rig) {
	n.rig = r
	n.glide = nil
}

// Detach releases the rig and cancels any glide.
func (n *Navigator) Detach() {
	n.rig = nil
	n.glide = nil
}

// Rig returns the attached rig, or nil.
func (n *Navigator) Rig() *Rig { return n.rig }

// Gliding reports whether a glide is in progress.
func (n *Navigator) Gliding() bool { return n.glide != nil }

// Clamp pulls the target back inside the bounds, moving the eye by the same
// amount so the view direction is unchanged.
func (n *Navigator) Clamp() {
	if n.rig == nil {
		return
	}
	clamped := n.bounds.Clamp(n.rig.Target)
	delta := clamped.Sub(n.rig.Target)
	if delta.X() == 0 && delta.Z() == 0 {
		return
	}
	n.rig.Target = clamped
	n.rig.Eye = n.rig.Eye.Add(delta)
}

// Basis returns the ground-plane forward and right vectors of the rig.
// Forward falls back to -Z when the view is vertical.
func Basis(r Rig) (forward, right geom.Vec3) {
	dir := r.Target.Sub(r.Eye)
	forward = geom.Vec3{dir.X(), 0, dir.Z()}
	l := forward.Len()
	if l < 1e-6 || !geom.Finite(l) {
		forward = geom.Vec3{0, 0, -1}
	} else {
		forward = forward.Mul(1 / l)
	}
	right = forward.Cross(geom.WorldUp).Normalize()
	return forward, right
}

// Glide starts an eased move of stepX steps to the right and stepZ steps
// backwards (negative stepZ moves forward) relative to the view. Any glide in
// progress is replaced, starting from where the target is now. It returns
// the clamped destination and false when no rig is attached.
func (n *Navigator) Glide(stepX, stepZ float32) (geom.Vec3, bool) {
	if n.rig == nil {
		return geom.Vec3{}, false
	}
	forward, right := Basis(*n.rig)
	delta := right.Mul(stepX * n.step).Add(forward.Mul(-stepZ * n.step))
	start := n.rig.Target
	dest := n.bounds.Clamp(start.Add(delta))
	n.glide = &glide{
		x:    gween.New(start.X(), dest.X(), n.duration, n.easing),
		y:    gween.New(start.Y(), dest.Y(), n.duration, n.easing),
		z:    gween.New(start.Z(), dest.Z(), n.duration, n.easing),
		dest: dest,
	}
	return dest, true
}

// Update advances the glide by dt seconds and then clamps.
func (n *Navigator) Update(dt float32) {
	if n.rig == nil {
		return
	}
	if g := n.glide; g != nil {
		x, doneX := g.x.Update(dt)
		y, _ := g.y.Update(dt)
		z, _ := g.z.Update(dt)
		next := geom.Vec3{x, y, z}
		if doneX {
			next = g.dest
			n.glide = nil
		}
		n.moveTarget(next)
	}
	n.Clamp()
}

func (n *Navigator) moveTarget(to geom.Vec3) {
	delta := to.Sub(n.rig.Target)
	n.rig.Target = to
	n.rig.Eye = n.rig.Eye.Add(delta)
}

// Zoom limits for the eye distance from the target.
const (
	MinZoomDistance = 4
	MaxZoomDistance = 90
)

// Zoom scales the eye's distance from the target by factor, keeping the
// view direction, within [MinZoomDistance, MaxZoomDistance].
func (n *Navigator) Zoom(factor float32) {
	if n.rig == nil || factor <= 0 || !geom.Finite(factor) {
		return
	}
	offset := n.rig.Eye.Sub(n.rig.Target)
	d := offset.Len()
	if d < 1e-6 {
		return
	}
	nd := geom.Clamp(d*factor, MinZoomDistance, MaxZoomDistance)
	n.rig.Eye = n.rig.Target.Add(offset.Mul(nd / d))
}
