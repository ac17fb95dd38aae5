// Package mapgen generates the placeholder island the map shows when the
// background model is missing or still loading. Output is deterministic for
// a given seed so the placeholder never changes between runs.
package mapgen

import (
	"github.com/chewxy/math32"

	"oasis-map/internal/geom"
)

// DefaultSeed is used when Options.Seed is zero.
const DefaultSeed = 1337

// Options controls height map generation.
// Width/Depth are in samples; TileSize is the world distance between samples on X/Z.
// HeightScale is the maximum height of the terrain in world units.
// Octaves, Frequency, Lacunarity, and Gain control the fractal noise shape.
// Falloff pulls the edges down to sea level so the result reads as an island;
// 0 disables it.
type Options struct {
	Width       int
	Depth       int
	TileSize    float32
	HeightScale float32

	Seed       int64
	Octaves    int
	Frequency  float32
	Lacunarity float32
	Gain       float32
	Falloff    float32
}

// DefaultOptions returns a sane default configuration.
func DefaultOptions() Options {
	return Options{
		Width:       64,
		Depth:       64,
		TileSize:    1.0,
		HeightScale: 3.0,
		Seed:        DefaultSeed,
		Octaves:     4,
		Frequency:   0.08,
		Lacunarity:  2.0,
		Gain:        0.5,
		Falloff:     1.5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 1 {
		o.Width = d.Width
	}
	if o.Depth <= 1 {
		o.Depth = d.Depth
	}
	if o.TileSize <= 0 {
		o.TileSize = d.TileSize
	}
	if o.HeightScale <= 0 {
		o.HeightScale = d.HeightScale
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.Octaves <= 0 {
		o.Octaves = d.Octaves
	}
	if o.Frequency <= 0 {
		o.Frequency = d.Frequency
	}
	if o.Lacunarity <= 0 {
		o.Lacunarity = d.Lacunarity
	}
	if o.Gain <= 0 {
		o.Gain = d.Gain
	}
	if o.Falloff < 0 {
		o.Falloff = 0
	}
	return o
}

// Heightmap holds normalized heights in [0,1], row-major by Z.
type Heightmap struct {
	Width, Depth int
	TileSize     float32
	HeightScale  float32
	Values       []float32
}

// Generate builds a height map from fractal value noise.
func Generate(opts Options) Heightmap {
	opts = opts.withDefaults()
	hm := Heightmap{
		Width:       opts.Width,
		Depth:       opts.Depth,
		TileSize:    opts.TileSize,
		HeightScale: opts.HeightScale,
		Values:      make([]float32, opts.Width*opts.Depth),
	}
	cx := float32(opts.Width-1) * 0.5
	cz := float32(opts.Depth-1) * 0.5
	for z := 0; z < opts.Depth; z++ {
		for x := 0; x < opts.Width; x++ {
			h := fractalValueNoise2D(float32(x)*opts.Frequency, float32(z)*opts.Frequency, opts.Seed, opts.Octaves, opts.Lacunarity, opts.Gain)
			if opts.Falloff > 0 {
				// normalized distance from the center: 0 in the middle, 1 at the edge midpoints
				dx := (float32(x) - cx) / cx
				dz := (float32(z) - cz) / cz
				d := geom.Clamp(math32.Sqrt(dx*dx+dz*dz), 0, 1)
				h *= 1 - math32.Pow(d, opts.Falloff)
			}
			if !geom.Finite(h) {
				h = 0
			}
			hm.Values[z*opts.Width+x] = geom.Clamp(h, 0, 1)
		}
	}
	return hm
}

// At returns the normalized height at sample (x, z), or 0 outside the map.
func (h Heightmap) At(x, z int) float32 {
	if x < 0 || z < 0 || x >= h.Width || z >= h.Depth {
		return 0
	}
	return h.Values[z*h.Width+x]
}

// Size returns the world extent of the map on X, Y and Z.
func (h Heightmap) Size() geom.Vec3 {
	return geom.Vec3{float32(h.Width-1) * h.TileSize, h.HeightScale, float32(h.Depth-1) * h.TileSize}
}

// Points returns one model-space point per sample. The map's corner sits
// at the origin and it extends along +X and +Z, the way raylib lays out a
// heightmap mesh, with sea level at y = 0.
func (h Heightmap) Points() []geom.Vec3 {
	out := make([]geom.Vec3, 0, len(h.Values))
	for z := 0; z < h.Depth; z++ {
		for x := 0; x < h.Width; x++ {
			out = append(out, geom.Vec3{
				float32(x) * h.TileSize,
				h.At(x, z) * h.HeightScale,
				float32(z) * h.TileSize,
			})
		}
	}
	return out
}

// Model returns the map as a measurable instance for anchoring. The local
// box always spans the full height scale so anchoring matches the rendered
// mesh, which raylib sizes by HeightScale regardless of the peak.
func (h Heightmap) Model(name string) *geom.Model {
	pts := append(h.Points(), geom.Vec3{}, h.Size())
	return geom.NewModel(name, pts)
}

// Gray returns the heights as 8-bit gray levels, row-major by Z.
func (h Heightmap) Gray() []uint8 {
	out := make([]uint8, len(h.Values))
	for i, v := range h.Values {
		out[i] = uint8(geom.Clamp(v, 0, 1) * 255)
	}
	return out
}

// fractalValueNoise2D is simple fractal value noise: layered smooth value noise with
// configurable octaves, lacunarity, and gain. Output is in [0,1].
func fractalValueNoise2D(x, y float32, seed int64, octaves int, lacunarity, gain float32) float32 {
	var sum float32
	var amplitude float32 = 1
	var maxAmp float32 = 0
	freq := float32(1)

	for i := 0; i < octaves; i++ {
		n := valueNoise2D(x*freq, y*freq, int32(seed)+int32(i))
		sum += n * amplitude
		maxAmp += amplitude
		amplitude *= gain
		freq *= lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return sum / maxAmp
}

// valueNoise2D is smooth value noise in [0,1] using a hash-based lattice and cubic easing.
func valueNoise2D(x, y float32, seed int32) float32 {
	x0 := int32(math32.Floor(x))
	y0 := int32(math32.Floor(y))
	tx := x - float32(x0)
	ty := y - float32(y0)

	v00 := hash2D(x0, y0, seed)
	v10 := hash2D(x0+1, y0, seed)
	v01 := hash2D(x0, y0+1, seed)
	v11 := hash2D(x0+1, y0+1, seed)

	sx := smoothStep(tx)
	sy := smoothStep(ty)

	ix0 := lerp(v00, v10, sx)
	ix1 := lerp(v01, v11, sx)
	return lerp(ix0, ix1, sy)
}

// hash2D maps integer lattice coordinates to a deterministic pseudo-random float in [0,1].
func hash2D(x, y, seed int32) float32 {
	n := x*374761393 + y*668265263 + seed*362437
	n = (n ^ (n >> 13)) * 1274126177
	n = n ^ (n >> 16)
	const invMaxInt = 1.0 / 2147483647.0
	return float32(n&0x7fffffff) * float32(invMaxInt)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// smoothStep is Perlin-style cubic easing: 3t^2 - 2t^3.
func smoothStep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
