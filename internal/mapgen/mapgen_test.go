package mapgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis-map/internal/anchor"
	"oasis-map/internal/geom"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(Options{Width: 16, Depth: 12, Seed: 9})
	b := Generate(Options{Width: 16, Depth: 12, Seed: 9})
	assert.Equal(t, a, b)

	c := Generate(Options{Width: 16, Depth: 12, Seed: 10})
	assert.NotEqual(t, a.Values, c.Values)
}

func TestZeroSeedUsesDefault(t *testing.T) {
	assert.Equal(t, Generate(Options{Seed: DefaultSeed}), Generate(Options{}))
}

func TestValuesInRangeAndFalloff(t *testing.T) {
	hm := Generate(DefaultOptions())
	require.Len(t, hm.Values, hm.Width*hm.Depth)
	for _, v := range hm.Values {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
	assert.Zero(t, hm.At(0, hm.Depth/2), "edge midpoint is at sea level")
	assert.Zero(t, hm.At(-1, 0))
	assert.Zero(t, hm.At(hm.Width, 0))
}

func TestGray(t *testing.T) {
	hm := Heightmap{Width: 2, Depth: 1, Values: []float32{0, 1}}
	assert.Equal(t, []uint8{0, 255}, hm.Gray())
}

func TestModelBoundsMatchSize(t *testing.T) {
	hm := Generate(Options{Width: 9, Depth: 5, TileSize: 2, HeightScale: 4})
	b := hm.Model("terrain").Bounds()
	assert.Equal(t, geom.Vec3{0, 0, 0}, b.Min)
	assert.Equal(t, hm.Size(), b.Max)
	assert.Equal(t, geom.Vec3{16, 4, 8}, b.Max)
	pts := hm.Points()
	assert.Len(t, pts, 45)
	// last sample is the far corner of the grid
	assert.Equal(t, float32(16), pts[44].X())
	assert.Equal(t, float32(8), pts[44].Z())
}

func TestPlaceholderAnchors(t *testing.T) {
	m := Generate(Options{Width: 9, Depth: 9}).Model("terrain")
	xf := anchor.Place(m, anchor.Spec{TargetWidth: 80, AnchorZ: geom.EdgeMax, TargetZ: 15})
	assert.InDelta(t, 10, xf.Scale, 1e-5)

	b := m.Bounds()
	assert.InDelta(t, 0, b.Min.Y(), 1e-4)
	assert.InDelta(t, 15, b.Max.Z(), 1e-4)
	assert.InDelta(t, 80, b.Max.X()-b.Min.X(), 1e-3)
}
