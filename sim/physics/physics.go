// Package physics owns per-entity kinetic state (velocity and impulse
// accumulators) and applies motion plus boundary policy once per tick.
//
// Kinetic state is deliberately separate from the registry: a component
// table describes capability, these maps describe current motion. An entity
// with kinetic state but no registry record is a dangling record and is
// pruned silently.
package physics

import (
	"math"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"

	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/vec"
)

// Policy is the rule applied when an entity's projected position leaves the
// play-field.
type Policy uint8

const (
	// PolicyWrap modulo-wraps both axes into [0,width) x [0,height).
	PolicyWrap Policy = iota
	// PolicyBounce reflects the violated axis' velocity, damped, and clamps
	// the position to the boundary.
	PolicyBounce
	// PolicyStop clamps the position to the boundary and zeroes the violated
	// axis' velocity.
	PolicyStop
	// PolicyDestroy removes the entity from the registry entirely.
	PolicyDestroy
)

// bounceDamping is the factor applied to the reflected velocity component.
const bounceDamping = 0.8

// Resolver applies motion and boundary resolution for entities with a
// velocity entry. Entities without one do not participate.
type Resolver struct {
	reg *sim.Registry

	vel      *intmap.Map[sim.EntityID, vec.Vec2]
	impulse  *intmap.Map[sim.EntityID, vec.Vec2]
	policies *intmap.Map[sim.EntityID, Policy]

	// order keeps velocity entries in insertion order so ticks are
	// deterministic; intmap iteration order is not. ordered mirrors its
	// membership so a clear-then-set cannot enqueue an entity twice.
	order   []sim.EntityID
	ordered *intmap.Map[sim.EntityID, bool]

	width, height float64

	log *zap.Logger
}

// NewResolver creates a resolver bound to the registry. Removal of an entity
// purges its kinetic state in the same tick via the registry hook.
func NewResolver(reg *sim.Registry, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		reg:      reg,
		vel:      intmap.New[sim.EntityID, vec.Vec2](256),
		impulse:  intmap.New[sim.EntityID, vec.Vec2](64),
		policies: intmap.New[sim.EntityID, Policy](256),
		ordered:  intmap.New[sim.EntityID, bool](256),
		log:      log,
	}
	reg.OnRemove(r.purge)
	return r
}

// SetBounds sets the rectangular play-field. Must be called again whenever
// the play-field resizes.
func (r *Resolver) SetBounds(width, height float64) {
	r.width = width
	r.height = height
}

// SetVelocity sets an entity's velocity, creating its kinetic record if
// needed.
func (r *Resolver) SetVelocity(id sim.EntityID, v vec.Vec2) {
	if _, ok := r.ordered.Get(id); !ok {
		r.ordered.Put(id, true)
		r.order = append(r.order, id)
	}
	r.vel.Put(id, v)
}

// ClearVelocity removes an entity's velocity record; the entity no longer
// moves or participates in boundary resolution.
func (r *Resolver) ClearVelocity(id sim.EntityID) {
	r.vel.Del(id)
	r.impulse.Del(id)
}

// Velocity returns the entity's current velocity.
func (r *Resolver) Velocity(id sim.EntityID) (vec.Vec2, bool) {
	return r.vel.Get(id)
}

// ApplyImpulse accumulates a force folded into the velocity on the next
// Update. Impulses do not overwrite each other.
func (r *Resolver) ApplyImpulse(id sim.EntityID, force vec.Vec2) {
	acc, _ := r.impulse.Get(id)
	r.impulse.Put(id, acc.Add(force))
}

// SetPolicy sets the entity's boundary policy. Entities default to
// PolicyWrap.
func (r *Resolver) SetPolicy(id sim.EntityID, p Policy) {
	r.policies.Put(id, p)
}

// Update advances every entity with a velocity record by dtMs milliseconds
// and resolves boundary policy. Stale records are pruned, never errors:
// combat-driven removal routinely leaves them behind.
func (r *Resolver) Update(dtMs float64) {
	dt := dtMs / 1000.0

	live := r.order[:0]
	for _, id := range r.order {
		v, ok := r.vel.Get(id)
		if !ok {
			r.ordered.Del(id)
			continue // cleared since last tick
		}
		e, ok := r.reg.Get(id)
		if !ok {
			r.vel.Del(id)
			r.impulse.Del(id)
			r.policies.Del(id)
			r.ordered.Del(id)
			continue
		}
		if f, ok := r.impulse.Get(id); ok {
			v = v.Add(f)
			r.impulse.Del(id)
			r.vel.Put(id, v)
		}

		newPos := e.Pos.Add(v.Scale(dt))

		policy, _ := r.policies.Get(id)
		pos, vel, removed := r.resolveBoundary(id, newPos, v, policy)
		if removed {
			r.ordered.Del(id)
			continue
		}
		live = append(live, id)
		if vel != v {
			r.vel.Put(id, vel)
		}
		r.reg.UpdatePosition(id, pos)
	}
	r.order = live
}

// resolveBoundary applies the entity's boundary policy to the projected
// position, returning the settled position and velocity. The removed flag
// is set when PolicyDestroy took the entity out of the registry.
func (r *Resolver) resolveBoundary(id sim.EntityID, newPos, v vec.Vec2, policy Policy) (vec.Vec2, vec.Vec2, bool) {
	inX := newPos.X >= 0 && newPos.X < r.width
	inY := newPos.Y >= 0 && newPos.Y < r.height
	if inX && inY {
		return newPos, v, false
	}

	switch policy {
	case PolicyWrap:
		return vec.Vec2{
			X: wrap(newPos.X, r.width),
			Y: wrap(newPos.Y, r.height),
		}, v, false

	case PolicyBounce:
		pos := newPos
		if !inX {
			pos.X = clamp(newPos.X, 0, r.width-1)
			v.X = -v.X * bounceDamping
		}
		if !inY {
			pos.Y = clamp(newPos.Y, 0, r.height-1)
			v.Y = -v.Y * bounceDamping
		}
		return pos, v, false

	case PolicyStop:
		pos := newPos
		if !inX {
			pos.X = clamp(newPos.X, 0, r.width-1)
			v.X = 0
		}
		if !inY {
			pos.Y = clamp(newPos.Y, 0, r.height-1)
			v.Y = 0
		}
		return pos, v, false

	case PolicyDestroy:
		r.log.Debug("entity crossed boundary, destroying",
			zap.Uint64("entity", uint64(id)))
		r.reg.Remove(id) // removal hook purges kinetic state
		return newPos, v, true
	}

	return newPos, v, false
}

// purge drops all kinetic state for a removed entity. Registered as a
// registry removal hook.
func (r *Resolver) purge(id sim.EntityID) {
	r.vel.Del(id)
	r.impulse.Del(id)
	r.policies.Del(id)
}

func wrap(x, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	m := math.Mod(x, limit)
	if m < 0 {
		m += limit
	}
	return m
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
