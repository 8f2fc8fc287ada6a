// Package sim provides the entity registry at the heart of the simulation:
// generational entity identity, per-subsystem component tables, and the
// outbound event queue drained by the driver after each tick.
package sim

import (
	"sort"

	"github.com/threadbaregames/lash/vec"
)

type slot struct {
	entity Entity
	gen    uint32
	live   bool
}

// Registry owns entity identity. All other subsystems hold EntityIDs, never
// direct references; a lookup with a stale ID simply misses.
//
// The registry is single-threaded by design: one logical thread of control
// mutates it per tick, in the fixed stage order the driver enforces.
type Registry struct {
	slots  []slot
	free   []uint32
	byKind map[string][]EntityID

	onRemove []func(EntityID)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKind: make(map[string][]EntityID),
	}
}

// OnRemove registers a hook invoked whenever an entity is removed. Subsystems
// use this to drop per-entity state keyed by the ID in the same tick.
func (r *Registry) OnRemove(fn func(EntityID)) {
	r.onRemove = append(r.onRemove, fn)
}

// Register creates a new entity with a fresh unique ID.
func (r *Registry) Register(kind string, pos vec.Vec2) EntityID {
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		index = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}

	s := &r.slots[index]
	s.gen++ // generation 0 is reserved for "never used"
	s.live = true

	id := NewEntityID(s.gen, index)
	s.entity = Entity{ID: id, Kind: kind, Pos: pos, Active: true}

	r.byKind[kind] = append(r.byKind[kind], id)
	return id
}

// Remove destroys an entity and notifies removal hooks. Removing an absent
// or stale ID is a no-op, not an error.
func (r *Registry) Remove(id EntityID) {
	s := r.slot(id)
	if s == nil {
		return
	}
	s.live = false
	r.free = append(r.free, id.Index())

	for _, fn := range r.onRemove {
		fn(id)
	}
}

// Get returns the entity for the given ID. The pointer is valid until the
// next Register call; callers must not retain it across ticks.
func (r *Registry) Get(id EntityID) (*Entity, bool) {
	s := r.slot(id)
	if s == nil {
		return nil, false
	}
	return &s.entity, true
}

// Alive reports whether the ID refers to a live entity.
func (r *Registry) Alive(id EntityID) bool {
	return r.slot(id) != nil
}

// UpdatePosition moves an entity to the given position. Moving a removed
// entity is a no-op.
func (r *Registry) UpdatePosition(id EntityID, pos vec.Vec2) {
	if s := r.slot(id); s != nil {
		s.entity.Pos = pos
	}
}

// ByKind returns the live entities of the given kind in insertion order.
// The returned slice is a snapshot: removing or registering entities while
// iterating it is safe.
func (r *Registry) ByKind(kind string) []EntityID {
	ids := r.byKind[kind]
	out := make([]EntityID, 0, len(ids))
	for _, id := range ids {
		if r.Alive(id) {
			out = append(out, id)
		}
	}

	// Compact the stored list once most of it is dead, so kinds with heavy
	// churn (projectiles) do not accumulate stale IDs forever.
	if len(ids) > 32 && len(out) < len(ids)/2 {
		r.byKind[kind] = append(ids[:0], out...)
	}
	return out
}

// Count returns the number of live entities of the given kind.
func (r *Registry) Count(kind string) int {
	n := 0
	for _, id := range r.byKind[kind] {
		if r.Alive(id) {
			n++
		}
	}
	return n
}

// Len returns the total number of live entities.
func (r *Registry) Len() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].live {
			n++
		}
	}
	return n
}

// Each calls fn for every live entity in slot order until fn returns false.
func (r *Registry) Each(fn func(*Entity) bool) {
	for i := range r.slots {
		if !r.slots[i].live {
			continue
		}
		if !fn(&r.slots[i].entity) {
			return
		}
	}
}

// Kinds returns the kind tags seen so far. Intended for inspection tooling.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.byKind))
	for kind := range r.byKind {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) slot(id EntityID) *slot {
	index := id.Index()
	if int(index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[index]
	if !s.live || s.gen != id.Generation() {
		return nil
	}
	return s
}
