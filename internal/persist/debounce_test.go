package persist

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis-map/internal/layout"
)

type countingWriter struct {
	mu    sync.Mutex
	saves [][]layout.Entity
	err   error
}

func (w *countingWriter) Save(entities []layout.Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saves = append(w.saves, entities)
	return w.err
}

func (w *countingWriter) snapshot() [][]layout.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]layout.Entity(nil), w.saves...)
}

func ids(entities []layout.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.ID)
	}
	return out
}

func TestDebouncerCoalesces(t *testing.T) {
	w := &countingWriter{}
	d := NewDebouncer(w, 20*time.Millisecond, nil)
	d.Schedule([]layout.Entity{{ID: "a"}})
	d.Schedule([]layout.Entity{{ID: "a"}, {ID: "b"}})
	d.Schedule([]layout.Entity{{ID: "c"}})

	require.Eventually(t, func() bool { return len(w.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"c"}, ids(w.snapshot()[0]))

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, w.snapshot(), 1)
}

func TestDebouncerFlush(t *testing.T) {
	w := &countingWriter{}
	d := NewDebouncer(w, time.Hour, nil)
	d.Schedule([]layout.Entity{{ID: "a"}})
	assert.Empty(t, w.snapshot())

	d.Flush()
	saves := w.snapshot()
	require.Len(t, saves, 1)
	assert.Equal(t, []string{"a"}, ids(saves[0]))

	d.Flush()
	assert.Len(t, w.snapshot(), 1, "nothing pending")
}

func TestDebouncerClose(t *testing.T) {
	w := &countingWriter{}
	d := NewDebouncer(w, time.Hour, nil)
	d.Schedule([]layout.Entity{{ID: "a"}})
	d.Close()
	require.Len(t, w.snapshot(), 1)

	d.Schedule([]layout.Entity{{ID: "b"}})
	d.Flush()
	assert.Len(t, w.snapshot(), 1)
}

func TestDebouncerWriteErrorIsLogged(t *testing.T) {
	w := &countingWriter{err: errors.New("disk full")}
	d := NewDebouncer(w, time.Hour, nil)
	d.Schedule([]layout.Entity{{ID: "a"}})
	assert.NotPanics(t, d.Flush)
	assert.Len(t, w.snapshot(), 1)
}

func TestDebouncerFeedsCache(t *testing.T) {
	c, _ := newMemCache(t, "")
	d := NewDebouncer(c, time.Millisecond, nil)
	store := layout.NewStore(nil, c.Load(), d, nil)
	store.Sync([]layout.Remote{{ID: "a", Title: "Spanish"}, {ID: "b", Title: "French"}})
	d.Flush()

	got := c.Load()
	assert.Len(t, got, 2)
	assert.Contains(t, got, "a")
}
