package graphics

import (
	"context"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"oasis-map/internal/anchor"
	"oasis-map/internal/editor"
	"oasis-map/internal/geom"
	"oasis-map/internal/mapgen"
	"oasis-map/internal/scene"
)

// Edit-mode key steps.
const (
	nudgeStep   = 0.5
	rotateStep  = 15 // degrees
	scaleStep   = 1.1
	zoomPerTick = 0.9
)

// Assets names the models to load and how to place the background.
type Assets struct {
	Background string
	Marker     string
	Anchor     anchor.Spec
	Terrain    mapgen.Options
	Grid       bool
}

// App runs a mounted scene in the window: it maps input to scene calls,
// keeps the world in sync with the store and draws everything.
type App struct {
	Scene   *scene.Scene
	World   *World
	Console *Console
	HUD     *HUD

	assets Assets
	lib    *Library
	ctx    context.Context
	log    *slog.Logger
}

// NewApp returns an app driving s. ctx bounds the remote calls it starts.
// Models are loaded by Load, once the window exists.
func NewApp(ctx context.Context, s *scene.Scene, c *Console, assets Assets, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{Scene: s, Console: c, HUD: &HUD{}, assets: assets, lib: NewLibrary(log), ctx: ctx, log: log}
}

// Load loads the models, falling back to placeholders, and anchors the
// background.
func (a *App) Load() {
	bg := a.lib.LoadOr(a.assets.Background, func() *Asset {
		return a.lib.Terrain(mapgen.Generate(a.assets.Terrain))
	})
	mk := a.lib.LoadOr(a.assets.Marker, a.lib.Cube)
	a.World = NewWorld(bg, mk)
	a.World.GridVisible = a.assets.Grid
	xf := a.World.PlaceBackground(a.assets.Anchor)
	a.log.Info("graphics: background placed", "asset", bg.Name, "position", xf.Position, "scale", xf.Scale)
}

// Reanchor places the background again with a new spec.
func (a *App) Reanchor(spec anchor.Spec) {
	a.assets.Anchor = spec
	if a.World != nil {
		a.World.PlaceBackground(spec)
	}
}

// Unload frees GPU resources.
func (a *App) Unload() {
	a.lib.Unload()
}

// Update runs one frame of input and scene logic.
func (a *App) Update(dt float32) {
	a.Console.Update()
	if !a.Console.IsOpen() {
		a.handleKeys()
		a.handleMouse()
	}
	a.Scene.Frame(dt)
	a.World.Sync(a.Scene.Store.Entities())
}

func (a *App) handleKeys() {
	s := a.Scene
	switch {
	case rl.IsKeyPressed(rl.KeyLeft):
		s.Glide(-1, 0)
	case rl.IsKeyPressed(rl.KeyRight):
		s.Glide(1, 0)
	case rl.IsKeyPressed(rl.KeyUp):
		s.Glide(0, -1)
	case rl.IsKeyPressed(rl.KeyDown):
		s.Glide(0, 1)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		if s.Mode() == scene.ModeEdit {
			s.SetMode(scene.ModeMap)
		} else {
			s.SetMode(scene.ModeEdit)
		}
		a.log.Info("graphics: mode", "mode", s.Mode())
	}
	if s.Mode() != scene.ModeEdit || s.Editor.State() != editor.Selected {
		return
	}
	ed := s.Editor
	var err error
	switch {
	case rl.IsKeyPressed(rl.KeyW):
		err = ed.Nudge(0, -nudgeStep)
	case rl.IsKeyPressed(rl.KeyS):
		err = ed.Nudge(0, nudgeStep)
	case rl.IsKeyPressed(rl.KeyA):
		err = ed.Nudge(-nudgeStep, 0)
	case rl.IsKeyPressed(rl.KeyD):
		err = ed.Nudge(nudgeStep, 0)
	case rl.IsKeyPressed(rl.KeyQ):
		err = ed.Rotate(mgl32.DegToRad(rotateStep))
	case rl.IsKeyPressed(rl.KeyE):
		err = ed.Rotate(-mgl32.DegToRad(rotateStep))
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		err = ed.ScaleBy(scaleStep)
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		err = ed.ScaleBy(1 / scaleStep)
	case rl.IsKeyPressed(rl.KeyDelete), rl.IsKeyPressed(rl.KeyBackspace):
		err = s.DeleteSelected(a.ctx)
	}
	if err != nil {
		a.log.Warn("graphics: edit", "err", err)
	}
}

func (a *App) handleMouse() {
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		f := float32(zoomPerTick)
		if wheel < 0 {
			f = 1 / f
		}
		a.Scene.Nav.Zoom(f)
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), Camera3D(*a.Scene.Rig))
	origin, dir := fromVec3(ray.Position), fromVec3(ray.Direction)
	if id, ok := a.World.Pick(origin, dir); ok {
		if err := a.Scene.ClickEntity(id); err != nil {
			a.log.Warn("graphics: click", "id", id, "err", err)
		}
		return
	}
	if p, ok := geom.IntersectGround(origin, dir); ok {
		if err := a.Scene.ClickGround(p); err != nil {
			a.log.Warn("graphics: ground click", "err", err)
		}
	}
}

// Draw renders the scene, labels, HUD and console.
func (a *App) Draw() {
	cam := Camera3D(*a.Scene.Rig)
	selected, _ := a.Scene.Editor.Selection()
	a.World.Draw(cam, a.Scene.Nav.Bounds(), selected)
	a.World.DrawLabels(cam)
	a.HUD.Draw(a.status(), a.Scene.Notices().Active())
	a.Console.Draw()
}

func (a *App) status() []string {
	s := a.Scene
	lines := []string{fmt.Sprintf("%s mode, %d oases  [Tab] switch  [arrows] move  [wheel] zoom  [Esc] console", s.Mode(), s.Store.Len())}
	if s.Mode() == scene.ModeEdit {
		if id, ok := s.Editor.Selection(); ok {
			e, _ := s.Store.Get(id)
			lines = append(lines, fmt.Sprintf("selected %s  [WASD] nudge  [Q/E] rotate  [+/-] scale %.2f  [Del] delete", e.Label(), e.Transform.Scale))
		} else {
			lines = append(lines, "click an oasis to select it")
		}
	}
	return lines
}
