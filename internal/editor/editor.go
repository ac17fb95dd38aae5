// Package editor is the selection state machine of the map editor. It
// mutates oasis transforms in the layout store and forwards create and
// delete requests to the remote oasis source.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"oasis-map/internal/geom"
	"oasis-map/internal/layout"
	"oasis-map/internal/notice"
)

var (
	// ErrNoSelection is returned by transform edits while nothing is selected.
	ErrNoSelection = errors.New("editor: no oasis selected")
	// ErrUnknownEntity is returned when an id is not in the store.
	ErrUnknownEntity = errors.New("editor: unknown oasis")
	// ErrInvalidTransform is returned when an edit would leave a
	// non-finite position, rotation or scale. The oasis is left unchanged.
	ErrInvalidTransform = errors.New("editor: invalid transform")
	// ErrEmptyTitle is returned by Create for a blank title.
	ErrEmptyTitle = errors.New("editor: title is required")
)

// Remote creates and deletes oases on the server. Calls block; run them off
// the frame loop.
type Remote interface {
	Create(ctx context.Context, title, language string) error
	Delete(ctx context.Context, id string) error
}

// State is the selection state.
type State int

const (
	Idle State = iota
	Selected
)

func (s State) String() string {
	if s == Selected {
		return "selected"
	}
	return "idle"
}

// Editor tracks the selected oasis. Selection and transform edits must run
// on the frame loop; DeleteRemote and Create may run on any goroutine.
type Editor struct {
	store   *layout.Store
	remote  Remote
	notices *notice.Board
	log     *slog.Logger

	selected string
}

// New returns an idle editor over store. remote and notices may be nil.
func New(store *layout.Store, remote Remote, notices *notice.Board, log *slog.Logger) *Editor {
	if log == nil {
		log = slog.Default()
	}
	return &Editor{store: store, remote: remote, notices: notices, log: log}
}

// State returns Idle or Selected.
func (e *Editor) State() State {
	if e.selected == "" {
		return Idle
	}
	return Selected
}

// Selection returns the selected id.
func (e *Editor) Selection() (string, bool) {
	return e.selected, e.selected != ""
}

// ClickEntity selects id. Clicking the selected oasis keeps it selected.
func (e *Editor) ClickEntity(id string) error {
	if _, ok := e.store.Get(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	e.selected = id
	return nil
}

// ClickGround moves the selected oasis to p on the ground plane.
func (e *Editor) ClickGround(p geom.Vec3) error {
	return e.edit(func(xf *geom.Transform) {
		xf.Position = geom.Vec3{p.X(), 0, p.Z()}
	})
}

// Nudge moves the selected oasis by dx, dz.
func (e *Editor) Nudge(dx, dz float32) error {
	return e.edit(func(xf *geom.Transform) {
		xf.Position = xf.Position.Add(geom.Vec3{dx, 0, dz})
	})
}

// Rotate turns the selected oasis by dy radians about the vertical axis.
func (e *Editor) Rotate(dy float32) error {
	return e.edit(func(xf *geom.Transform) {
		xf.Rotation[1] += dy
	})
}

// ScaleBy multiplies the selected oasis scale by f; the store clamps it.
func (e *Editor) ScaleBy(f float32) error {
	return e.edit(func(xf *geom.Transform) {
		xf.Scale *= f
	})
}

func (e *Editor) edit(fn func(xf *geom.Transform)) error {
	if e.selected == "" {
		return ErrNoSelection
	}
	if _, ok := e.store.Get(e.selected); !ok {
		id := e.selected
		e.selected = ""
		return fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	if !e.store.Update(e.selected, fn) {
		return fmt.Errorf("%w: %q", ErrInvalidTransform, e.selected)
	}
	return nil
}

// Deselect returns to Idle.
func (e *Editor) Deselect() { e.selected = "" }

// Prune drops the selection if its oasis is no longer in the store.
func (e *Editor) Prune() {
	if e.selected == "" {
		return
	}
	if _, ok := e.store.Get(e.selected); !ok {
		e.log.Debug("editor: selection vanished", "id", e.selected)
		e.selected = ""
	}
}

// RemoveSelected removes the selected oasis locally, returns to Idle and
// returns its id. The store schedules the save.
func (e *Editor) RemoveSelected() (string, error) {
	id := e.selected
	if id == "" {
		return "", ErrNoSelection
	}
	e.selected = ""
	if !e.store.Remove(id) {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	return id, nil
}

// DeleteRemote asks the server to delete id. A failure is posted as a notice
// and returned; the local removal is not rolled back, so the oasis comes back
// on the next sync if the server still lists it.
func (e *Editor) DeleteRemote(ctx context.Context, id string) error {
	if e.remote == nil {
		return nil
	}
	if err := e.remote.Delete(ctx, id); err != nil {
		err = fmt.Errorf("editor: delete %s: %w", id, err)
		e.fail("Could not delete oasis", err)
		return err
	}
	e.log.Info("editor: deleted", "id", id)
	return nil
}

// Delete removes the selected oasis locally and then remotely.
func (e *Editor) Delete(ctx context.Context) error {
	id, err := e.RemoveSelected()
	if err != nil {
		return err
	}
	return e.DeleteRemote(ctx, id)
}

// Create asks the server to create an oasis. Nothing is added locally; the
// new oasis appears when the remote list next syncs.
func (e *Editor) Create(ctx context.Context, title, language string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if e.remote == nil {
		return nil
	}
	if err := e.remote.Create(ctx, title, language); err != nil {
		err = fmt.Errorf("editor: create %q: %w", title, err)
		e.fail("Could not create oasis", err)
		return err
	}
	e.log.Info("editor: created", "title", title, "language", language)
	return nil
}

func (e *Editor) fail(msg string, err error) {
	e.log.Warn(msg, "err", err)
	if e.notices != nil {
		e.notices.Error(msg, err)
	}
}
