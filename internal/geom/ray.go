package geom

import "github.com/chewxy/math32"

// IntersectGround returns where the ray from origin along dir meets the
// ground plane y = 0. It reports false for rays parallel to or pointing away
// from the plane.
func IntersectGround(origin, dir Vec3) (Vec3, bool) {
	if math32.Abs(dir.Y()) < 1e-6 {
		return Vec3{}, false
	}
	t := -origin.Y() / dir.Y()
	if t < 0 || !Finite(t) {
		return Vec3{}, false
	}
	p := origin.Add(dir.Mul(t))
	p[1] = 0
	return p, true
}

// RayBox returns the distance along dir at which the ray enters b, using
// the slab method. A ray starting inside b hits at distance 0.
func RayBox(origin, dir Vec3, b Box) (float32, bool) {
	if b.IsEmpty() {
		return 0, false
	}
	tmin := math32.Inf(-1)
	tmax := math32.Inf(1)
	for i := 0; i < 3; i++ {
		if math32.Abs(dir[i]) < 1e-9 {
			if origin[i] < b.Min[i] || origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[i] - origin[i]) / dir[i]
		t2 := (b.Max[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return math32.Max(tmin, 0), true
}
