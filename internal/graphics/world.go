package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"oasis-map/internal/anchor"
	"oasis-map/internal/camera"
	"oasis-map/internal/geom"
	"oasis-map/internal/layout"
)

const (
	gridExtent     = 50
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	seaExtent      = 400
	// markerWidth is the world width of a marker at scale 1.
	markerWidth = 2
	labelSize   = 18
)

var (
	skyColor      = rl.NewColor(150, 200, 235, 255)
	seaColor      = rl.NewColor(40, 110, 170, 255)
	sandColor     = rl.NewColor(220, 200, 150, 255)
	grassColor    = rl.NewColor(90, 160, 80, 255)
	markerColor   = rl.NewColor(250, 250, 245, 255)
	selectedColor = rl.NewColor(255, 200, 40, 255)
	boundsColor   = rl.NewColor(255, 255, 255, 90)
	labelColor    = rl.NewColor(20, 30, 40, 255)
	labelBgColor  = rl.NewColor(255, 255, 255, 200)
)

// marker is the per-oasis placement of the shared marker asset.
type marker struct {
	id     string
	label  string
	matrix mgl32.Mat4
	box    geom.Box
}

// World draws the background, the oasis markers and the travel bounds.
type World struct {
	GridVisible bool

	background *Asset
	bgInst     *geom.Model
	markerBase *Asset
	// baseMatrix fits the marker asset to markerWidth, resting on the ground.
	baseMatrix mgl32.Mat4
	markers    []marker
}

// NewWorld returns a world drawing background and markerAsset.
func NewWorld(background, markerAsset *Asset) *World {
	w := &World{background: background, markerBase: markerAsset}
	base := markerAsset.Instance()
	xf := anchor.Place(base, anchor.Spec{TargetWidth: markerWidth})
	w.baseMatrix = xf.Matrix()
	return w
}

// PlaceBackground anchors the background according to spec. It may be
// called again with a new spec; the asset is reset each time.
func (w *World) PlaceBackground(spec anchor.Spec) geom.Transform {
	if w.bgInst == nil {
		w.bgInst = w.background.Instance()
	}
	return anchor.Place(w.bgInst, spec)
}

// Sync rebuilds the marker placements from the store's entities.
func (w *World) Sync(entities []layout.Entity) {
	local := w.markerBase.Template.LocalBox()
	w.markers = w.markers[:0]
	for _, e := range entities {
		m := e.Transform.Matrix().Mul4(w.baseMatrix)
		w.markers = append(w.markers, marker{
			id:     e.ID,
			label:  e.Label(),
			matrix: m,
			box:    local.Transformed(m),
		})
	}
}

// Pick returns the oasis whose marker the ray hits first.
func (w *World) Pick(origin, dir geom.Vec3) (string, bool) {
	best, hit := "", false
	var bestT float32
	for _, m := range w.markers {
		t, ok := geom.RayBox(origin, dir, m.box)
		if ok && (!hit || t < bestT) {
			best, bestT, hit = m.id, t, true
		}
	}
	return best, hit
}

// Draw renders the 3D scene from cam.
func (w *World) Draw(cam rl.Camera3D, bounds camera.Bounds, selected string) {
	rl.BeginMode3D(cam)
	rl.DrawPlane(rl.NewVector3(0, -0.02, 0), rl.NewVector2(seaExtent, seaExtent), seaColor)
	if w.bgInst != nil {
		bg := w.background.Model
		bg.Transform = matrix(w.bgInst.Transform().Matrix())
		rl.DrawModel(bg, rl.Vector3{}, 1, rl.White)
	}
	if w.GridVisible {
		drawGrid()
	}
	drawBounds(bounds)
	for _, m := range w.markers {
		// per-placement copy; GPU buffers are shared, the transform is not
		mdl := w.markerBase.Model
		mdl.Transform = matrix(m.matrix)
		tint := markerColor
		if m.id == selected {
			tint = selectedColor
			rl.DrawBoundingBox(rl.BoundingBox{Min: vec3(m.box.Min), Max: vec3(m.box.Max)}, selectedColor)
		}
		rl.DrawModel(mdl, rl.Vector3{}, 1, tint)
	}
	rl.EndMode3D()
}

// DrawLabels draws each marker's label above it, in screen space.
func (w *World) DrawLabels(cam rl.Camera3D) {
	for _, m := range w.markers {
		top := m.box.Center()
		top[1] = m.box.Max.Y() + 0.5
		p := rl.GetWorldToScreen(vec3(top), cam)
		tw := rl.MeasureText(m.label, labelSize)
		x := int32(p.X) - tw/2
		y := int32(p.Y) - labelSize
		rl.DrawRectangle(x-4, y-2, tw+8, labelSize+4, labelBgColor)
		rl.DrawText(m.label, x, y, labelSize, labelColor)
	}
}

// drawBounds outlines the travel bounds on the ground.
func drawBounds(b camera.Bounds) {
	const y = 0.05
	c := [4]rl.Vector3{
		rl.NewVector3(b.MinX, y, b.MinZ),
		rl.NewVector3(b.MaxX, y, b.MinZ),
		rl.NewVector3(b.MaxX, y, b.MaxZ),
		rl.NewVector3(b.MinX, y, b.MaxZ),
	}
	for i := range c {
		rl.DrawLine3D(c[i], c[(i+1)%4], boundsColor)
	}
}

// drawGrid draws a grid on the XZ plane with major/minor lines.
// Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func drawGrid() {
	minor := rl.NewColor(255, 255, 255, gridMinorAlpha)
	major := rl.NewColor(255, 255, 255, gridMajorAlpha)

	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), 0.01, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), 0.01, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), 0.01, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), 0.01, float32(z)
		rl.DrawLine3D(start, end, c)
	}
}
