// Package backend is a small development server for the oasis list: list,
// create and delete over JSON, with a websocket that announces changes.
package backend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"oasis-map/internal/layout"
)

var (
	// ErrNotFound is returned when deleting an unknown id.
	ErrNotFound = errors.New("backend: oasis not found")
	// ErrInvalid is returned for a create request that fails validation.
	ErrInvalid = errors.New("backend: invalid oasis")
)

// Store is an in-memory oasis list that notifies subscribers on change.
type Store struct {
	mu    sync.Mutex
	items []layout.Remote
	next  int
	subs  map[int]chan struct{}
	subID int
}

// NewStore returns a store holding seed.
func NewStore(seed ...layout.Remote) *Store {
	s := &Store{subs: map[int]chan struct{}{}}
	s.items = append(s.items, seed...)
	return s
}

// List returns the oases in creation order.
func (s *Store) List() []layout.Remote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]layout.Remote, len(s.items))
	copy(out, s.items)
	return out
}

// Create adds an oasis. The language, if given, must be a valid BCP-47 tag
// and is stored in canonical form.
func (s *Store) Create(title, lang string) (layout.Remote, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return layout.Remote{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if lang != "" {
		tag, err := language.Parse(lang)
		if err != nil {
			return layout.Remote{}, fmt.Errorf("%w: language %q: %v", ErrInvalid, lang, err)
		}
		lang = tag.String()
	}
	s.mu.Lock()
	id := s.newIDLocked()
	r := layout.Remote{ID: id, Title: title, Language: lang}
	s.items = append(s.items, r)
	s.mu.Unlock()
	s.notify()
	return r, nil
}

func (s *Store) newIDLocked() string {
	for {
		s.next++
		id := "oasis-" + strconv.Itoa(s.next)
		if s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexLocked(id string) int {
	for i, r := range s.items {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Delete removes id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe returns a channel that receives a value after each change, and
// a cancel func. Bursts of changes may collapse into one value.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subID++
	id := s.subID
	s.subs[id] = ch
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
