package scene

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis-map/internal/camera"
	"oasis-map/internal/editor"
	"oasis-map/internal/geom"
	"oasis-map/internal/layout"
)

type router struct{ opened []string }

func (r *router) OpenDetail(id string) { r.opened = append(r.opened, id) }

type server struct {
	mu     sync.Mutex
	list   []layout.Remote
	delErr error
	nextID int
}

func (s *server) List(context.Context) ([]layout.Remote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]layout.Remote(nil), s.list...), nil
}

func (s *server) Create(_ context.Context, title, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.list = append(s.list, layout.Remote{ID: title, Title: title, Language: language})
	return nil
}

func (s *server) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	for i, r := range s.list {
		if r.ID == id {
			s.list = append(s.list[:i], s.list[i+1:]...)
			break
		}
	}
	return nil
}

type flushSaver struct {
	scheduled int
	flushed   int
}

func (f *flushSaver) Schedule([]layout.Entity) { f.scheduled++ }
func (f *flushSaver) Flush()                   { f.flushed++ }

func mount(t *testing.T, mode Mode) (*Scene, *server, *router, *flushSaver) {
	t.Helper()
	srv := &server{list: []layout.Remote{{ID: "a", Title: "Spanish", Language: "es"}, {ID: "b", Title: "French", Language: "fr"}}}
	r := &router{}
	saver := &flushSaver{}
	s := New(Options{
		Mode:   mode,
		Source: srv,
		Remote: srv,
		Router: r,
		Saver:  saver,
		Bounds: camera.Bounds{MinX: -30, MaxX: 30, MinZ: -50, MaxZ: 25},
		Step:   2,
		Rig:    camera.Rig{Eye: geom.Vec3{0, 10, 10}},
	})
	s.Refresh(context.Background())
	s.Wait()
	s.Frame(0)
	require.Equal(t, 2, s.Store.Len())
	return s, srv, r, saver
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("edit")
	require.NoError(t, err)
	assert.Equal(t, ModeEdit, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, "map", m.String())
	_, err = ParseMode("fly")
	assert.Error(t, err)
}

func TestMapModeOpensDetail(t *testing.T) {
	s, _, r, _ := mount(t, ModeMap)
	require.NoError(t, s.ClickEntity("b"))
	assert.Equal(t, []string{"b"}, r.opened)
	assert.Equal(t, editor.Idle, s.Editor.State())

	assert.ErrorIs(t, s.ClickEntity("nope"), editor.ErrUnknownEntity)
}

func TestMapModeIgnoresGround(t *testing.T) {
	s, _, _, saver := mount(t, ModeMap)
	before := saver.scheduled
	require.NoError(t, s.ClickGround(geom.Vec3{1, 0, 1}))
	assert.Equal(t, before, saver.scheduled)
}

func TestEditModeSelectsAndMoves(t *testing.T) {
	s, _, r, _ := mount(t, ModeEdit)
	require.NoError(t, s.ClickEntity("a"))
	assert.Empty(t, r.opened)
	require.NoError(t, s.ClickGround(geom.Vec3{5, 2, 6}))

	e, _ := s.Store.Get("a")
	assert.Equal(t, geom.Vec3{5, 0, 6}, e.Transform.Position)
}

func TestSetModeClearsSelection(t *testing.T) {
	s, _, _, _ := mount(t, ModeEdit)
	require.NoError(t, s.ClickEntity("a"))
	s.SetMode(ModeMap)
	assert.Equal(t, editor.Idle, s.Editor.State())
}

func TestDeleteScenario(t *testing.T) {
	s, srv, _, _ := mount(t, ModeEdit)
	require.NoError(t, s.ClickEntity("a"))
	require.NoError(t, s.DeleteSelected(context.Background()))

	_, ok := s.Store.Get("a")
	assert.False(t, ok, "removed before the server answers")
	assert.Equal(t, editor.Idle, s.Editor.State())

	s.Wait()
	s.Frame(0)
	_, ok = s.Store.Get("a")
	assert.False(t, ok)
	assert.Len(t, srv.list, 1)
}

func TestDeleteFailureRestoresOnNextSync(t *testing.T) {
	s, srv, _, _ := mount(t, ModeEdit)
	srv.delErr = errors.New("boom")
	require.NoError(t, s.ClickEntity("a"))
	require.NoError(t, s.DeleteSelected(context.Background()))
	s.Wait()
	s.Frame(0)
	assert.Len(t, s.Notices().Active(), 1)

	s.Refresh(context.Background())
	s.Wait()
	s.Frame(0)
	_, ok := s.Store.Get("a")
	assert.True(t, ok)
}

func TestEditingNeedsEditMode(t *testing.T) {
	s, srv, _, _ := mount(t, ModeMap)
	assert.ErrorIs(t, s.DeleteSelected(context.Background()), ErrMapMode)
	assert.ErrorIs(t, s.Create(context.Background(), "German", "de"), ErrMapMode)
	s.Wait()
	assert.Len(t, srv.list, 2, "nothing sent to the server")
}

func TestCreateAppearsAfterRefresh(t *testing.T) {
	s, _, _, _ := mount(t, ModeEdit)
	assert.ErrorIs(t, s.Create(context.Background(), " ", "de"), editor.ErrEmptyTitle)

	require.NoError(t, s.Create(context.Background(), "German", "de"))
	assert.Equal(t, 2, s.Store.Len(), "no local placeholder")
	s.Wait()
	s.Frame(0)
	e, ok := s.Store.Get("German")
	require.True(t, ok)
	assert.Equal(t, layout.DefaultGrid().Place(2, 3), e.Transform)
}

// slowFirstSource holds its first List call until release is closed.
type slowFirstSource struct {
	mu      sync.Mutex
	calls   int
	lists   [][]layout.Remote
	started chan struct{}
	release chan struct{}
}

func (s *slowFirstSource) List(context.Context) ([]layout.Remote, error) {
	s.mu.Lock()
	n := s.calls
	s.calls++
	s.mu.Unlock()
	if n == 0 {
		close(s.started)
		<-s.release
	}
	return s.lists[n], nil
}

func TestLateListDoesNotOverwriteNewer(t *testing.T) {
	src := &slowFirstSource{
		lists: [][]layout.Remote{
			{{ID: "a", Title: "Spanish"}, {ID: "b", Title: "French"}},
			{{ID: "b", Title: "French"}},
		},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := New(Options{Source: src})
	ctx := context.Background()

	s.Refresh(ctx)
	<-src.started
	s.Refresh(ctx)
	require.Eventually(t, func() bool {
		s.Frame(0)
		return s.Store.Len() == 1
	}, time.Second, time.Millisecond)

	close(src.release)
	s.Wait()
	s.Frame(0)
	_, ok := s.Store.Get("a")
	assert.False(t, ok, "older list must not bring a back")
	assert.Equal(t, 1, s.Store.Len())
}

func TestListsQueuedInOneFrameKeepRequestOrder(t *testing.T) {
	src := &slowFirstSource{
		lists: [][]layout.Remote{
			{{ID: "a"}, {ID: "b"}},
			{{ID: "b"}},
		},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := New(Options{Source: src})
	ctx := context.Background()

	s.Refresh(ctx)
	<-src.started
	s.Refresh(ctx)
	// let the newer answer queue first, then the older one, before any frame
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.queue) == 1
	}, time.Second, time.Millisecond)
	close(src.release)
	s.Wait()
	s.Frame(0)

	assert.Equal(t, 1, s.Store.Len())
	_, ok := s.Store.Get("b")
	assert.True(t, ok)
}

func TestApplyRemotePrunesSelection(t *testing.T) {
	s, _, _, _ := mount(t, ModeEdit)
	require.NoError(t, s.ClickEntity("b"))
	assert.True(t, s.ApplyRemote([]layout.Remote{{ID: "a", Title: "Spanish"}}))
	assert.Equal(t, editor.Idle, s.Editor.State())
}

func TestFrameGlidesAndClamps(t *testing.T) {
	s, _, _, _ := mount(t, ModeMap)
	s.Glide(0, -1)
	for i := 0; i < 120; i++ {
		s.Frame(1.0 / 60)
	}
	assert.InDelta(t, -2, s.Rig.Target.Z(), 1e-4)

	s.Rig.Target = geom.Vec3{100, 0, 0}
	s.Frame(1.0 / 60)
	assert.Equal(t, float32(30), s.Rig.Target.X())
}

func TestPostRunsOnFrame(t *testing.T) {
	s, _, _, _ := mount(t, ModeMap)
	ran := false
	s.Post(func() { ran = true })
	assert.False(t, ran)
	s.Frame(0)
	assert.True(t, ran)
}

func TestUnmount(t *testing.T) {
	s, _, _, saver := mount(t, ModeMap)
	s.Glide(1, 0)
	s.Unmount()
	assert.False(t, s.Nav.Gliding())
	assert.Nil(t, s.Nav.Rig())
	assert.Equal(t, 1, saver.flushed)

	at := *s.Rig
	s.Frame(1)
	assert.Equal(t, at, *s.Rig)
}
