// Package notice holds short-lived messages shown over the scene, such as a
// failed remote delete. Notices may be posted from any goroutine.
package notice

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 4 * time.Second

// Level tells the renderer how to color a notice.
type Level int

const (
	Info Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "info"
}

// Notice is one message with its expiry.
type Notice struct {
	Level   Level
	Text    string
	Expires time.Time
}

// Board keeps the visible notices, oldest first.
type Board struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	now   func() time.Time
	items []Notice
}

// NewBoard returns a board keeping at most max notices (0 means 5) for ttl
// (0 means DefaultTTL) each.
func NewBoard(ttl time.Duration, max int) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if max <= 0 {
		max = 5
	}
	return &Board{ttl: ttl, max: max, now: time.Now}
}

// Post adds a notice. The oldest notice is dropped when the board is full.
func (b *Board) Post(level Level, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, Notice{Level: level, Text: text, Expires: b.now().Add(b.ttl)})
	if over := len(b.items) - b.max; over > 0 {
		b.items = append(b.items[:0:0], b.items[over:]...)
	}
}

// Error is a shortcut for posting err as an Error notice with a prefix.
func (b *Board) Error(prefix string, err error) {
	if err == nil {
		return
	}
	b.Post(Error, prefix+": "+err.Error())
}

// Active prunes expired notices and returns the rest.
func (b *Board) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	kept := b.items[:0]
	for _, n := range b.items {
		if now.Before(n.Expires) {
			kept = append(kept, n)
		}
	}
	b.items = kept
	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}
