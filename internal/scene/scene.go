// Package scene ties the oasis map together for one mount: the layout store,
// the camera navigator and, in edit mode, the selection editor. Everything
// here runs on the frame loop; background work reports back through Post.
package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"oasis-map/internal/camera"
	"oasis-map/internal/editor"
	"oasis-map/internal/geom"
	"oasis-map/internal/layout"
	"oasis-map/internal/notice"
)

// ErrMapMode is returned by editing operations while in map mode.
var ErrMapMode = errors.New("scene: switch to edit mode first")

// Mode selects read-only map browsing or editing.
type Mode int

const (
	ModeMap Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "map"
}

// ParseMode parses "map" or "edit".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "map", "":
		return ModeMap, nil
	case "edit":
		return ModeEdit, nil
	}
	return ModeMap, fmt.Errorf("scene: unknown mode %q (want map or edit)", s)
}

// DetailRouter opens the detail screen of an oasis.
type DetailRouter interface {
	OpenDetail(id string)
}

// Source lists the oases of the current user.
type Source interface {
	List(ctx context.Context) ([]layout.Remote, error)
}

// Options configures a mount. Zero values pick defaults.
type Options struct {
	Mode      Mode
	Generator layout.Generator
	// Cache is the snapshot read once at mount.
	Cache  map[string]layout.Placement
	Saver  layout.Saver
	Source Source
	Remote editor.Remote
	Router DetailRouter

	Bounds   camera.Bounds
	Step     float32
	Duration float32
	Rig      camera.Rig

	Notices *notice.Board
	Log     *slog.Logger
}

// Scene is one mounted oasis map.
type Scene struct {
	Store  *layout.Store
	Rig    *camera.Rig
	Nav    *camera.Navigator
	Editor *editor.Editor

	mode    Mode
	source  Source
	router  DetailRouter
	saver   layout.Saver
	notices *notice.Board
	log     *slog.Logger

	mu    sync.Mutex
	queue []func()
	bg    sync.WaitGroup

	// refreshes numbers Refresh calls; applied is the newest list applied,
	// owned by the frame loop.
	refreshes atomic.Uint64
	applied   uint64
}

// New mounts a scene and attaches its rig to the navigator.
func New(opts Options) *Scene {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	bounds := opts.Bounds
	if bounds.Validate() != nil {
		bounds = camera.DefaultBounds()
	}
	notices := opts.Notices
	if notices == nil {
		notices = notice.NewBoard(0, 0)
	}
	store := layout.NewStore(opts.Generator, opts.Cache, opts.Saver, log)
	rig := opts.Rig
	s := &Scene{
		Store:   store,
		Rig:     &rig,
		Nav:     camera.New(bounds, opts.Step, opts.Duration),
		Editor:  editor.New(store, opts.Remote, notices, log),
		mode:    opts.Mode,
		source:  opts.Source,
		router:  opts.Router,
		saver:   opts.Saver,
		notices: notices,
		log:     log,
	}
	s.Nav.Attach(s.Rig)
	return s
}

// Mode returns the current mode.
func (s *Scene) Mode() Mode { return s.mode }

// SetMode switches modes. Leaving edit mode clears the selection.
func (s *Scene) SetMode(m Mode) {
	if m != ModeEdit {
		s.Editor.Deselect()
	}
	s.mode = m
}

// Notices returns the notice board.
func (s *Scene) Notices() *notice.Board { return s.notices }

// Post queues fn to run on the frame loop at the start of the next Frame.
// It is safe to call from any goroutine.
func (s *Scene) Post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Frame runs posted work, then advances the glide and clamps the camera.
func (s *Scene) Frame(dt float32) {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
	s.Nav.Update(dt)
}

// ApplyRemote reconciles the store with a fresh remote list and drops a
// selection whose oasis disappeared. It reports whether membership changed.
func (s *Scene) ApplyRemote(list []layout.Remote) bool {
	changed := s.Store.Sync(list)
	s.Editor.Prune()
	return changed
}

// Refresh fetches the remote list in the background and applies it on the
// frame loop. Lists are applied in the order they were requested: a list
// from an older Refresh that answers late is dropped.
func (s *Scene) Refresh(ctx context.Context) {
	if s.source == nil {
		return
	}
	seq := s.refreshes.Add(1)
	s.goBackground(func() {
		list, err := s.source.List(ctx)
		if err != nil {
			s.log.Warn("scene: listing oases", "err", err)
			s.notices.Error("Could not load oases", err)
			return
		}
		s.Post(func() {
			if seq < s.applied {
				s.log.Debug("scene: dropped stale oasis list", "seq", seq, "applied", s.applied)
				return
			}
			s.applied = seq
			s.ApplyRemote(list)
		})
	})
}

// ClickEntity opens the oasis detail in map mode and selects it in edit mode.
func (s *Scene) ClickEntity(id string) error {
	if s.mode == ModeEdit {
		return s.Editor.ClickEntity(id)
	}
	if _, ok := s.Store.Get(id); !ok {
		return fmt.Errorf("%w: %q", editor.ErrUnknownEntity, id)
	}
	if s.router != nil {
		s.router.OpenDetail(id)
	}
	return nil
}

// ClickGround moves the selected oasis in edit mode; it does nothing in map
// mode or when nothing is selected.
func (s *Scene) ClickGround(p geom.Vec3) error {
	if s.mode != ModeEdit || s.Editor.State() != editor.Selected {
		return nil
	}
	return s.Editor.ClickGround(p)
}

// Glide starts a camera glide in view-relative steps.
func (s *Scene) Glide(stepX, stepZ float32) {
	s.Nav.Glide(stepX, stepZ)
}

// DeleteSelected removes the selected oasis now and deletes it remotely in
// the background, refreshing afterwards.
func (s *Scene) DeleteSelected(ctx context.Context) error {
	if s.mode != ModeEdit {
		return ErrMapMode
	}
	id, err := s.Editor.RemoveSelected()
	if err != nil {
		return err
	}
	s.goBackground(func() {
		if s.Editor.DeleteRemote(ctx, id) == nil {
			s.Refresh(ctx)
		}
	})
	return nil
}

// Create asks the server for a new oasis in the background and refreshes
// once it exists. It needs edit mode; a blank title is rejected immediately.
func (s *Scene) Create(ctx context.Context, title, language string) error {
	if s.mode != ModeEdit {
		return ErrMapMode
	}
	if strings.TrimSpace(title) == "" {
		return editor.ErrEmptyTitle
	}
	s.goBackground(func() {
		if s.Editor.Create(ctx, title, language) == nil {
			s.Refresh(ctx)
		}
	})
	return nil
}

func (s *Scene) goBackground(fn func()) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn()
	}()
}

// Wait blocks until background requests started so far have finished.
func (s *Scene) Wait() { s.bg.Wait() }

type flusher interface{ Flush() }

// Unmount cancels any glide, releases the rig and flushes the pending save.
func (s *Scene) Unmount() {
	s.Nav.Detach()
	if f, ok := s.saver.(flusher); ok {
		f.Flush()
	}
}
