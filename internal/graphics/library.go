package graphics

import (
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"oasis-map/internal/geom"
	"oasis-map/internal/mapgen"
)

// Asset is a loaded model plus its geometry in model space, measured once.
type Asset struct {
	Name        string
	Model       rl.Model
	Template    *geom.Model
	Placeholder bool
}

// Instance returns a fresh measurable instance of the asset. Instances
// never share transform state.
func (a *Asset) Instance() *geom.Model {
	return a.Template.Clone()
}

// Library loads and owns GPU models. Assets are loaded once per path.
type Library struct {
	assets map[string]*Asset
	log    *slog.Logger
}

// NewLibrary returns an empty library.
func NewLibrary(log *slog.Logger) *Library {
	if log == nil {
		log = slog.Default()
	}
	return &Library{assets: map[string]*Asset{}, log: log}
}

// Load returns the model at path, loading it on first use.
func (l *Library) Load(path string) (*Asset, error) {
	if a, ok := l.assets[path]; ok {
		return a, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("graphics: %w", err)
	}
	model := rl.LoadModel(path)
	if !rl.IsModelValid(model) || model.MeshCount == 0 {
		return nil, fmt.Errorf("graphics: %s: no meshes", path)
	}
	a := &Asset{Name: path, Model: model, Template: geom.NewModel(path, modelPoints(model))}
	l.assets[path] = a
	l.log.Info("graphics: loaded model", "path", path, "meshes", model.MeshCount, "bounds", a.Template.Bounds())
	return a, nil
}

// LoadOr loads path, falling back to fallback() when it cannot be loaded.
func (l *Library) LoadOr(path string, fallback func() *Asset) *Asset {
	if path != "" {
		a, err := l.Load(path)
		if err == nil {
			return a
		}
		l.log.Warn("graphics: using placeholder", "path", path, "err", err)
	}
	return fallback()
}

// Cube returns a unit cube placeholder.
func (l *Library) Cube() *Asset {
	const key = "placeholder:cube"
	if a, ok := l.assets[key]; ok {
		return a
	}
	model := rl.LoadModelFromMesh(rl.GenMeshCube(1, 1, 1))
	box := geom.Box{Min: geom.Vec3{-0.5, -0.5, -0.5}, Max: geom.Vec3{0.5, 0.5, 0.5}}
	a := &Asset{Name: key, Model: model, Template: geom.NewBoxModel(key, box), Placeholder: true}
	l.assets[key] = a
	return a
}

// Terrain builds a placeholder island mesh from a height map.
func (l *Library) Terrain(hm mapgen.Heightmap) *Asset {
	const key = "placeholder:terrain"
	if a, ok := l.assets[key]; ok {
		return a
	}
	img := rl.GenImageColor(hm.Width, hm.Depth, rl.Black)
	gray := hm.Gray()
	for z := 0; z < hm.Depth; z++ {
		for x := 0; x < hm.Width; x++ {
			v := gray[z*hm.Width+x]
			rl.ImageDrawPixel(img, int32(x), int32(z), rl.NewColor(v, v, v, 255))
		}
	}
	size := hm.Size()
	mesh := rl.GenMeshHeightmap(*img, vec3(size))
	rl.UnloadImage(img)
	model := rl.LoadModelFromMesh(mesh)
	tint := terrainTint(hm)
	rl.SetMaterialTexture(model.Materials, rl.MapDiffuse, rl.LoadTextureFromImage(tint))
	rl.UnloadImage(tint)

	a := &Asset{Name: key, Model: model, Template: hm.Model(key), Placeholder: true}
	l.assets[key] = a
	return a
}

// terrainTint colors the height map sand to grass by height.
func terrainTint(hm mapgen.Heightmap) *rl.Image {
	img := rl.GenImageColor(hm.Width, hm.Depth, sandColor)
	for z := 0; z < hm.Depth; z++ {
		for x := 0; x < hm.Width; x++ {
			h := hm.At(x, z)
			c := lerpColor(sandColor, grassColor, geom.Clamp(h*2.5, 0, 1))
			rl.ImageDrawPixel(img, int32(x), int32(z), c)
		}
	}
	return img
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	mix := func(x, y uint8) uint8 { return uint8(float32(x) + (float32(y)-float32(x))*t) }
	return rl.NewColor(mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A))
}

// Unload frees every GPU model.
func (l *Library) Unload() {
	for k, a := range l.assets {
		rl.UnloadModel(a.Model)
		delete(l.assets, k)
	}
}

// modelPoints copies every mesh vertex of model, in model space.
func modelPoints(model rl.Model) []geom.Vec3 {
	meshes := unsafe.Slice(model.Meshes, model.MeshCount)
	var pts []geom.Vec3
	for _, m := range meshes {
		if m.Vertices == nil || m.VertexCount == 0 {
			continue
		}
		v := unsafe.Slice(m.Vertices, m.VertexCount*3)
		for i := 0; i+2 < len(v); i += 3 {
			pts = append(pts, geom.Vec3{v[i], v[i+1], v[i+2]})
		}
	}
	return pts
}
