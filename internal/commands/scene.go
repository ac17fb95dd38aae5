package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"oasis-map/internal/scene"
)

// RegisterScene adds the map and editor commands driving s. Replies such as
// the current selection are passed to out.
func RegisterScene(ctx context.Context, r *Registry, s *scene.Scene, out func(string)) {
	if out == nil {
		out = func(string) {}
	}

	fs := NewFlagSet("mode")
	r.Register("mode", "mode map|edit", fs, func() error {
		m, err := scene.ParseMode(fs.Arg(0))
		if err != nil {
			return err
		}
		s.SetMode(m)
		out("mode " + m.String())
		return nil
	})

	selectFS := NewFlagSet("select")
	r.Register("select", "select <id>", selectFS, func() error {
		id := selectFS.Arg(0)
		if id == "" {
			return errors.New("select: id required")
		}
		if s.Mode() != scene.ModeEdit {
			return fmt.Errorf("select: %w", scene.ErrMapMode)
		}
		return s.ClickEntity(id)
	})

	nudgeFS := NewFlagSet("nudge")
	dx := nudgeFS.Float64("dx", 0, "move along x")
	dz := nudgeFS.Float64("dz", 0, "move along z")
	r.Register("nudge", "nudge -dx 1 -dz -1", nudgeFS, func() error {
		return s.Editor.Nudge(float32(*dx), float32(*dz))
	})

	placeFS := NewFlagSet("place")
	px := placeFS.Float64("x", 0, "ground x")
	pz := placeFS.Float64("z", 0, "ground z")
	r.Register("place", "place -x 3 -z 4", placeFS, func() error {
		if s.Mode() != scene.ModeEdit {
			return fmt.Errorf("place: %w", scene.ErrMapMode)
		}
		return s.Editor.ClickGround(mgl32.Vec3{float32(*px), 0, float32(*pz)})
	})

	rotateFS := NewFlagSet("rotate")
	deg := rotateFS.Float64("deg", 15, "degrees about the vertical axis")
	r.Register("rotate", "rotate -deg 15", rotateFS, func() error {
		return s.Editor.Rotate(mgl32.DegToRad(float32(*deg)))
	})

	scaleFS := NewFlagSet("scale")
	factor := scaleFS.Float64("f", 1.1, "scale factor")
	r.Register("scale", "scale -f 1.1", scaleFS, func() error {
		return s.Editor.ScaleBy(float32(*factor))
	})

	r.Register("delete", "delete (the selected oasis)", NewFlagSet("delete"), func() error {
		return s.DeleteSelected(ctx)
	})

	createFS := NewFlagSet("create")
	title := createFS.String("title", "", "oasis title")
	lang := createFS.String("lang", "", "BCP-47 language tag")
	r.Register("create", "create -title Spanish -lang es", createFS, func() error {
		return s.Create(ctx, *title, *lang)
	})

	glideFS := NewFlagSet("glide")
	gx := glideFS.Float64("x", 0, "steps right")
	gz := glideFS.Float64("z", 0, "steps back (negative is forward)")
	r.Register("glide", "glide -x 1 -z -1", glideFS, func() error {
		s.Glide(float32(*gx), float32(*gz))
		return nil
	})

	r.Register("list", "list oases", NewFlagSet("list"), func() error {
		for _, e := range s.Store.Entities() {
			p := e.Transform.Position
			out(fmt.Sprintf("%s %q at (%.1f, %.1f) scale %.2f", e.ID, e.Label(), p.X(), p.Z(), e.Transform.Scale))
		}
		return nil
	})

	r.Register("refresh", "refresh the oasis list", NewFlagSet("refresh"), func() error {
		s.Refresh(ctx)
		return nil
	})

	r.Register("help", "list commands", NewFlagSet("help"), func() error {
		for _, line := range r.Help() {
			out(line)
		}
		return nil
	})
}
