package geom

import "github.com/go-gl/mathgl/mgl32"

// Instance is a borrowed, mutable model handle: its geometry in model space
// plus the transform placing it in the world. Renderer-backed models and the
// pure [Model] both satisfy it.
type Instance interface {
	// LocalPoints returns hull points of the geometry in model space. For
	// models only known by their box, these are the eight box corners.
	LocalPoints() []Vec3
	Transform() Transform
	SetTransform(Transform)
}

// ComputeBounds returns the tightest axis-aligned box around the instance's
// geometry under its current transform. It is measured fresh on every call,
// so it reflects rotation and scale changes made since the last call.
// An instance without geometry yields an empty box.
func ComputeBounds(inst Instance) Box {
	m := inst.Transform().Matrix()
	b := EmptyBox()
	for _, p := range inst.LocalPoints() {
		b.ExpandByPoint(mgl32.TransformCoordinate(p, m))
	}
	return b
}

// ScaleFactorToWidth returns the uniform scale that makes b targetWidth wide
// on X. When the measured width is zero, negative or not finite, or the
// quotient is not finite, fallback is returned unchanged.
func ScaleFactorToWidth(b Box, targetWidth, fallback float32) float32 {
	width := b.Max[0] - b.Min[0]
	if !Finite(width) || width <= 0 {
		return fallback
	}
	f := targetWidth / width
	if !Finite(f) {
		return fallback
	}
	return f
}

// GroundOffset is the vertical shift that puts the lowest point of b at y = 0.
// Empty boxes need no shift.
func GroundOffset(b Box) float32 {
	if b.IsEmpty() || !Finite(b.Min[1]) {
		return 0
	}
	return -b.Min[1]
}

// EdgeCoordinate returns the min, midpoint or max of b on axis.
// Empty boxes report 0.
func EdgeCoordinate(b Box, axis Axis, which Edge) float32 {
	if b.IsEmpty() {
		return 0
	}
	switch which {
	case EdgeMin:
		return b.Min[axis]
	case EdgeMax:
		return b.Max[axis]
	default:
		return (b.Min[axis] + b.Max[axis]) / 2
	}
}
