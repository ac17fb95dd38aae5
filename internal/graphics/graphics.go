// Package graphics hosts the oasis map in a raylib window: it loads the
// background and marker models, draws the scene with its HUD and console,
// and turns mouse and keyboard input into scene operations.
package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"oasis-map/internal/camera"
	"oasis-map/internal/geom"
)

// Window sizes used when the window is created.
const (
	DefaultWidth  = 1280
	DefaultHeight = 800
)

// Loop is what Run drives. Load runs once the window and GL context exist;
// Unload runs before the window closes.
type Loop interface {
	Load()
	Update(dt float32)
	Draw()
	Unload()
}

// Run opens the window and runs the main loop. Each frame it calls Update with
// the frame time in seconds, then clears the screen and calls Draw.
// ESC toggles the console; close the window with its close button.
func Run(title string, loop Loop) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(DefaultWidth, DefaultHeight, title)
	defer rl.CloseWindow()

	loop.Load()
	defer loop.Unload()

	rl.SetExitKey(rl.KeyNull) // ESC is used to toggle the console, not to quit
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		loop.Update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(skyColor)
		loop.Draw()
		rl.EndDrawing()
	}
}

func vec3(v geom.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X(), v.Y(), v.Z())
}

func fromVec3(v rl.Vector3) geom.Vec3 {
	return geom.Vec3{v.X, v.Y, v.Z}
}

// matrix converts a column-major mgl32 matrix to raylib's layout, which is
// also column-major (M0..M3 is the first column).
func matrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

// Camera3D converts the rig to a raylib perspective camera.
func Camera3D(r camera.Rig) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(r.Eye),
		Target:     vec3(r.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
