package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis-map/internal/geom"
)

const eps = 1e-4

func scenarioBounds() Bounds {
	return Bounds{MinX: -30, MaxX: 30, MinZ: -50, MaxZ: 25}
}

func assertVec(t *testing.T, want, got geom.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, eps), "want %v, got %v", want, got)
}

func TestBoundsValidate(t *testing.T) {
	require.NoError(t, scenarioBounds().Validate())
	assert.ErrorIs(t, Bounds{MinX: 1, MaxX: 1, MinZ: 0, MaxZ: 1}.Validate(), ErrBounds)
	assert.ErrorIs(t, Bounds{MinX: 0, MaxX: 1, MinZ: 2, MaxZ: -2}.Validate(), ErrBounds)
}

func TestClampSlidesEyeWithTarget(t *testing.T) {
	rig := &Rig{Eye: geom.Vec3{40, 10, 40}, Target: geom.Vec3{35, 0, 30}}
	n := New(scenarioBounds(), 2, 0.5)
	n.Attach(rig)
	n.Clamp()

	assertVec(t, geom.Vec3{30, 0, 25}, rig.Target)
	assertVec(t, geom.Vec3{35, 10, 35}, rig.Eye)
}

func TestClampInsideIsNoop(t *testing.T) {
	rig := &Rig{Eye: geom.Vec3{1, 10, 11}, Target: geom.Vec3{1, 0, 1}}
	before := *rig
	n := New(scenarioBounds(), 2, 0.5)
	n.Attach(rig)
	n.Clamp()
	assert.Equal(t, before, *rig)
}

func TestClampProperty(t *testing.T) {
	b := scenarioBounds()
	for x := float32(-100); x <= 100; x += 7.5 {
		for z := float32(-100); z <= 100; z += 7.5 {
			rig := &Rig{Eye: geom.Vec3{x + 3, 12, z + 9}, Target: geom.Vec3{x, 0, z}}
			offset := rig.Eye.Sub(rig.Target)
			n := New(b, 2, 0.5)
			n.Attach(rig)
			n.Clamp()
			require.True(t, b.Contains(rig.Target), "target %v", rig.Target)
			assertVec(t, offset, rig.Eye.Sub(rig.Target))
		}
	}
}

func TestBasis(t *testing.T) {
	forward, right := Basis(Rig{Eye: geom.Vec3{0, 10, 10}, Target: geom.Vec3{}})
	assertVec(t, geom.Vec3{0, 0, -1}, forward)
	assertVec(t, geom.Vec3{1, 0, 0}, right)

	forward, right = Basis(Rig{Eye: geom.Vec3{10, 5, 0}, Target: geom.Vec3{}})
	assertVec(t, geom.Vec3{-1, 0, 0}, forward)
	assertVec(t, geom.Vec3{0, 0, -1}, right)
}

func TestBasisVerticalFallsBack(t *testing.T) {
	forward, right := Basis(Rig{Eye: geom.Vec3{0, 20, 0}, Target: geom.Vec3{}})
	assertVec(t, geom.Vec3{0, 0, -1}, forward)
	assertVec(t, geom.Vec3{1, 0, 0}, right)
}

func TestGlideScenario(t *testing.T) {
	rig := &Rig{Eye: geom.Vec3{0, 10, 10}, Target: geom.Vec3{}}
	n := New(scenarioBounds(), 2, 0.5)
	n.Attach(rig)

	dest, ok := n.Glide(0, -1)
	require.True(t, ok)
	assertVec(t, geom.Vec3{0, 0, -2}, dest)

	for n.Gliding() {
		n.Update(1.0 / 60)
	}
	assertVec(t, dest, rig.Target)
	assertVec(t, geom.Vec3{0, 10, 8}, rig.Eye)
}

func TestGlideClampsDestination(t *testing.T) {
	rig := &Rig{Eye: geom.Vec3{0, 10, -39}, Target: geom.Vec3{0, 0, -49}}
	n := New(scenarioBounds(), 5, 0.5)
	n.Attach(rig)

	dest, ok := n.Glide(0, -1)
	require.True(t, ok)
	assert.InDelta(t, -50, dest.Z(), eps)

	for n.Gliding() {
		n.Update(0.05)
		require.True(t, n.Bounds().Contains(rig.Target))
	}
	assertVec(t, dest, rig.Target)
}

func TestGlideTerminusIndependentOfFrameRate(t *testing.T) {
	for _, dt := range []float32{1.0 / 240, 1.0 / 60, 1.0 / 7, 0.3, 2} {
		rig := &Rig{Eye: geom.Vec3{3, 8, 9}, Target: geom.Vec3{2, 0, 1}}
		n := New(scenarioBounds(), 4, 0.6)
		n.Attach(rig)
		dest, ok := n.Glide(1, -2)
		require.True(t, ok)
		for i := 0; n.Gliding() && i < 10000; i++ {
			n.Update(dt)
		}
		assert.False(t, n.Gliding())
		assertVec(t, dest, rig.Target)
	}
}

func TestGlideEases(t *testing.T) {
	rig := &Rig{Eye: geom.Vec3{0, 10, 10}, Target: geom.Vec3{}}
	n := New(scenarioBounds(), 10, 1)
	n.Attach(rig)
	n.Glide(1, 0)

	n.Update(0.25)
	assert.InDelta(t, 10*2*0.25*0.25, rig.Target.X(), eps)
	n.Update(0.25)
	assert.InDelta(t, 5, rig.Target.X(), eps)
	n.Update(0.25)
	assert.InDelta(t, 10*(1-0.25*0.25*2), rig.Target.X(), eps)
}

func TestNewGlideCancelsPrevious(t *testing.T) {
	rig := &Rig{Eye: geom.Vec3{0, 10, 10}, Target: geom.Vec3{}}
	n := New(scenarioBounds(), 10, 1)
	n.Attach(rig)
	n.Glide(1, 0)
	n.Update(0.5)
	mid := rig.Target

	dest, ok := n.Glide(0, -1)
	require.True(t, ok)
	assertVec(t, mid.Add(geom.Vec3{0, 0, -10}), dest)
	for n.Gliding() {
		n.Update(0.1)
	}
	assertVec(t, dest, rig.Target)
}

func TestNoRigIsNoop(t *testing.T) {
	n := New(scenarioBounds(), 2, 0.5)
	n.Clamp()
	n.Update(0.1)
	_, ok := n.Glide(1, 1)
	assert.False(t, ok)
	assert.False(t, n.Gliding())
}

func TestDetachCancelsGlide(t *testing.T) {
	rig := &Rig{Eye: geom.Vec3{0, 10, 10}, Target: geom.Vec3{}}
	n := New(scenarioBounds(), 2, 0.5)
	n.Attach(rig)
	n.Glide(1, 0)
	n.Update(0.1)
	n.Detach()
	at := *rig

	n.Update(1)
	assert.False(t, n.Gliding())
	assert.Equal(t, at, *rig)
}

func TestDefaults(t *testing.T) {
	n := New(DefaultBounds(), 0, 0)
	assert.Equal(t, float32(DefaultStep), n.step)
	assert.Equal(t, float32(DefaultDuration), n.duration)
	require.NoError(t, DefaultBounds().Validate())
}

func TestZoom(t *testing.T) {
	rig := &Rig{Eye: geom.Vec3{0, 6, 8}, Target: geom.Vec3{}}
	n := New(scenarioBounds(), 2, 0.5)
	n.Attach(rig)

	n.Zoom(2)
	assertVec(t, geom.Vec3{0, 12, 16}, rig.Eye)
	n.Zoom(100)
	assert.InDelta(t, MaxZoomDistance, rig.Eye.Len(), 1e-3)
	n.Zoom(0.0001)
	assert.InDelta(t, MinZoomDistance, rig.Eye.Len(), 1e-3)
	n.Zoom(-1)
	assert.InDelta(t, MinZoomDistance, rig.Eye.Len(), 1e-3)
}
