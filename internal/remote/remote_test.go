package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis-map/internal/backend"
	"oasis-map/internal/layout"
)

func newClient(t *testing.T) (*Client, *backend.Store) {
	t.Helper()
	store := backend.NewStore(layout.Remote{ID: "a", Title: "Spanish", Language: "es"})
	srv := httptest.NewServer(backend.NewHandler(store, nil).Routes())
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", nil, nil)
	require.NoError(t, err)
	c.MinBackoff = 10 * time.Millisecond
	return c, store
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://x", nil, nil)
	assert.Error(t, err)
	_, err = New("://", nil, nil)
	assert.Error(t, err)
}

func TestListCreateDelete(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []layout.Remote{{ID: "a", Title: "Spanish", Language: "es"}}, list)

	require.NoError(t, c.Create(ctx, "German", "de"))
	require.NoError(t, c.Delete(ctx, "a"))

	list, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "German", list[0].Title)
}

func TestErrorsWrapStatus(t *testing.T) {
	c, _ := newClient(t)
	err := c.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")

	assert.ErrorIs(t, c.Create(context.Background(), "", ""), ErrStatus)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := New(srv.URL, nil, nil)
	require.NoError(t, err)
	_, err = c.List(context.Background())
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	c, store := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Watch(ctx, func() { changes <- struct{}{} })
	}()

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial change after connect")
	}

	deadline := time.After(5 * time.Second)
	for seen := false; !seen; {
		_, err := store.Create("ping", "")
		require.NoError(t, err)
		select {
		case <-changes:
			seen = true
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("no change pushed")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
