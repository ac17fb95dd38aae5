// Package anchor places a single large background asset (terrain, a
// coastline, a mountain range) so that one of its edges, not its pivot, sits
// at a chosen world coordinate after scaling it to a target width.
package anchor

import (
	"oasis-map/internal/geom"
)

// Spec describes where and how big the background should be.
type Spec struct {
	// TargetWidth is the world width on X the asset is scaled to.
	TargetWidth float32
	// ScaleMultiplier is applied on top of the width fit. Zero means 1.
	ScaleMultiplier float32
	// FallbackScale is used when the asset has no measurable width. Zero means 1.
	FallbackScale float32

	// Rotation is the XYZ Euler rotation in radians.
	Rotation geom.Vec3

	// AnchorX and AnchorZ pick the box edge pinned to TargetX and TargetZ.
	AnchorX geom.Edge
	AnchorZ geom.Edge
	TargetX float32
	TargetZ float32

	// Offset is added last, for fine composition with sibling objects.
	Offset geom.Vec3

	// AnchorBeforeRotation measures grounding and edges with the asset
	// unrotated and applies Rotation afterwards. By default the asset is
	// rotated first and measured as it will be shown.
	AnchorBeforeRotation bool
}

func (s Spec) scaleMultiplier() float32 {
	if s.ScaleMultiplier == 0 {
		return 1
	}
	return s.ScaleMultiplier
}

func (s Spec) fallbackScale() float32 {
	if s.FallbackScale == 0 {
		return 1
	}
	return s.FallbackScale
}

// Place resets inst and positions it according to spec, returning the final
// transform (which is also set on inst). Each step re-measures the box
// because the previous step changed it. Because inst is reset first, calling
// Place again with the same spec yields the same transform.
func Place(inst geom.Instance, spec Spec) geom.Transform {
	// 1. reset whatever a previous mount left behind
	xf := geom.Identity()
	inst.SetTransform(xf)

	// 2. fit to width
	b := geom.ComputeBounds(inst)
	xf.Scale = geom.ScaleFactorToWidth(b, spec.TargetWidth, spec.fallbackScale()) * spec.scaleMultiplier()
	inst.SetTransform(xf)

	// 3. orient
	if !spec.AnchorBeforeRotation {
		xf.Rotation = spec.Rotation
		inst.SetTransform(xf)
	}

	// 4. rest on the ground
	b = geom.ComputeBounds(inst)
	xf.Position[1] += geom.GroundOffset(b)
	inst.SetTransform(xf)

	// 5. pin the edges
	b = geom.ComputeBounds(inst)
	if !b.IsEmpty() {
		xf.Position[0] += spec.TargetX - geom.EdgeCoordinate(b, geom.AxisX, spec.AnchorX)
		xf.Position[2] += spec.TargetZ - geom.EdgeCoordinate(b, geom.AxisZ, spec.AnchorZ)
	}
	if spec.AnchorBeforeRotation {
		xf.Rotation = spec.Rotation
	}

	// 6. composition offset
	xf.Position = xf.Position.Add(spec.Offset)
	if !geom.FiniteVec(xf.Position) {
		xf.Position = spec.Offset
	}
	inst.SetTransform(xf)
	return xf
}
