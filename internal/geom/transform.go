package geom

import "github.com/go-gl/mathgl/mgl32"

// Transform is a position, XYZ Euler rotation (radians) and uniform scale.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    float32
}

// Identity is the transform at the origin with no rotation and scale 1.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Matrix returns T * Rx * Ry * Rz * S.
func (t Transform) Matrix() mgl32.Mat4 {
	p, r, s := t.Position, t.Rotation, t.Scale
	return mgl32.Translate3D(p[0], p[1], p[2]).
		Mul4(mgl32.HomogRotate3DX(r[0])).
		Mul4(mgl32.HomogRotate3DY(r[1])).
		Mul4(mgl32.HomogRotate3DZ(r[2])).
		Mul4(mgl32.Scale3D(s, s, s))
}
