package layout

import (
	"log/slog"
	"maps"

	"oasis-map/internal/geom"
)

// Saver persists a full snapshot of the entity list, typically debounced.
type Saver interface {
	Schedule(entities []Entity)
}

// Store holds the entities of one mounted scene. It is not safe for
// concurrent use; the frame loop owns it.
type Store struct {
	gen      Generator
	cache    map[string]Placement
	saver    Saver
	log      *slog.Logger
	entities []Entity
}

// NewStore returns an empty store. cache is the snapshot read at mount and
// is never re-read; saver may be nil.
func NewStore(gen Generator, cache map[string]Placement, saver Saver, log *slog.Logger) *Store {
	if gen == nil {
		gen = DefaultGrid()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{gen: gen, cache: cache, saver: saver, log: log}
}

// Sync reconciles the store against a fresh remote list. Ids already on
// screen keep their live transform, even if unsaved; ids only known to the
// cache get their cached transform; new ids get a default placement.
// It reports whether the set of ids changed, and schedules a save if so.
func (s *Store) Sync(remote []Remote) bool {
	known := make(map[string]Placement, len(s.cache)+len(s.entities))
	maps.Copy(known, s.cache)
	for _, e := range s.entities {
		known[e.ID] = e.Placement()
	}

	next := Reconcile(remote, known, s.gen)
	changed := !sameIDs(s.entities, next)
	s.entities = next
	if changed {
		s.log.Debug("layout: membership changed", "count", len(next))
		s.save()
	}
	return changed
}

func sameIDs(a, b []Entity) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[string]struct{}, len(a))
	for _, e := range a {
		ids[e.ID] = struct{}{}
	}
	for _, e := range b {
		if _, ok := ids[e.ID]; !ok {
			return false
		}
	}
	return true
}

// Entities returns a copy of the current list, in remote order.
func (s *Store) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Len returns the number of entities.
func (s *Store) Len() int { return len(s.entities) }

func (s *Store) find(id string) int {
	for i := range s.entities {
		if s.entities[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the entity with the given id.
func (s *Store) Get(id string) (Entity, bool) {
	i := s.find(id)
	if i < 0 {
		return Entity{}, false
	}
	return s.entities[i], true
}

// Update applies fn to the transform of id and schedules a save. Scale is
// clamped afterwards. It reports false, leaving the entity unchanged, if id
// is unknown or fn produced a non-finite transform.
func (s *Store) Update(id string, fn func(xf *geom.Transform)) bool {
	i := s.find(id)
	if i < 0 {
		return false
	}
	xf := s.entities[i].Transform
	fn(&xf)
	if !geom.FiniteVec(xf.Position) || !geom.FiniteVec(xf.Rotation) || !geom.Finite(xf.Scale) {
		s.log.Warn("layout: dropped non-finite transform", "id", id)
		return false
	}
	xf.Scale = ClampScale(xf.Scale)
	s.entities[i].Transform = xf
	s.save()
	return true
}

// Remove drops id from the list and schedules a save.
func (s *Store) Remove(id string) bool {
	i := s.find(id)
	if i < 0 {
		return false
	}
	s.entities = append(s.entities[:i:i], s.entities[i+1:]...)
	s.save()
	return true
}

func (s *Store) save() {
	if s.saver == nil {
		return
	}
	s.saver.Schedule(s.Entities())
}
