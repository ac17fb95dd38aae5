package persist

import (
	"log/slog"
	"sync"
	"time"

	"oasis-map/internal/layout"
)

// DefaultDelay coalesces everything scheduled within roughly one frame.
const DefaultDelay = 16 * time.Millisecond

// Writer is the durable side of a Debouncer.
type Writer interface {
	Save(entities []layout.Entity) error
}

// Debouncer coalesces rapid snapshot requests into one write after the
// schedule calls go quiet for Delay. Only the latest snapshot is written.
// Writes happen on a timer goroutine, never on the caller's.
// It implements layout.Saver.
type Debouncer struct {
	w     Writer
	delay time.Duration
	log   *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	pending  []layout.Entity
	dirty    bool
	closed   bool
	seq      uint64
	writeMu  sync.Mutex
	written  uint64
	inflight sync.WaitGroup
}

// NewDebouncer returns a debouncer writing to w. A zero delay uses DefaultDelay.
func NewDebouncer(w Writer, delay time.Duration, log *slog.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Debouncer{w: w, delay: delay, log: log}
}

// Schedule replaces any pending snapshot with entities and restarts the timer.
func (d *Debouncer) Schedule(entities []layout.Entity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = entities
	d.dirty = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	snap, seq, ok := d.take()
	if !ok {
		return
	}
	defer d.inflight.Done()
	d.write(snap, seq)
}

// take claims the pending snapshot. The caller must call inflight.Done after
// writing it.
func (d *Debouncer) take() ([]layout.Entity, uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if !d.dirty {
		return nil, 0, false
	}
	snap := d.pending
	d.pending, d.dirty = nil, false
	d.seq++
	d.inflight.Add(1)
	return snap, d.seq, true
}

// write saves snap unless a newer snapshot has already been written.
func (d *Debouncer) write(snap []layout.Entity, seq uint64) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if seq < d.written {
		return
	}
	d.written = seq
	if err := d.w.Save(snap); err != nil {
		d.log.Warn("persist: saving layout", "err", err)
	}
}

// Flush writes the pending snapshot now, if any, and waits until every
// write started so far has finished.
func (d *Debouncer) Flush() {
	if snap, seq, ok := d.take(); ok {
		d.write(snap, seq)
		d.inflight.Done()
	}
	d.inflight.Wait()
}

// Close flushes and stops accepting new snapshots.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Flush()
}
