// Package combat resolves damage: projectile lifecycle, enemy behavior
// dispatch, melee whip damage derived from body-segment motion, health
// application and death notification.
//
// Nothing here raises a hard failure during normal operation. Stale IDs,
// healthless targets and unknown behaviors are silent no-ops: a single bad
// tick must never crash the interactive loop.
package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/sim/physics"
	"github.com/threadbaregames/lash/vec"
)

// Health is the component owned by the combat resolver. Current never drops
// below zero and never exceeds Max.
type Health struct {
	Current, Max int
}

// ProjectileSpec is the caller-supplied tuning for one projectile.
type ProjectileSpec struct {
	Damage   int
	Speed    float64
	Lifetime time.Duration
}

// projectile is the per-projectile record. Lifetime is wall-clock relative
// to createdAt and is checked every tick, not event-driven.
type projectile struct {
	damage    int
	lifetime  time.Duration
	createdAt time.Time
	owner     sim.EntityID
}

// Config holds the combat-wide constants from the tuning tables.
type Config struct {
	// HitRadius is the circular hit test radius for projectiles, in cells.
	HitRadius float64
	// WhipThreshold is the segment speed estimate above which a segment
	// deals damage.
	WhipThreshold float64
	// WhipBaseDamage is scaled by the speed estimate and floored.
	WhipBaseDamage int
}

// Resolver owns the health, behavior, projectile and segment state tables.
type Resolver struct {
	reg    *sim.Registry
	phys   *physics.Resolver
	events *sim.Events
	cfg    Config

	health      *sim.Table[Health]
	behaviors   *sim.Table[Behavior]
	projectiles *sim.Table[projectile]
	segments    *sim.Table[SegmentState]
	effects     *effectStore

	// clock supplies creation timestamps for projectiles and effects; tests
	// pin it to control expiry.
	clock func() time.Time

	log *zap.Logger
}

// NewResolver creates a combat resolver. Entity removal cascades into every
// table it owns via the registry hook.
func NewResolver(reg *sim.Registry, phys *physics.Resolver, events *sim.Events, cfg Config, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		reg:         reg,
		phys:        phys,
		events:      events,
		cfg:         cfg,
		health:      sim.NewTable[Health](),
		behaviors:   sim.NewTable[Behavior](),
		projectiles: sim.NewTable[projectile](),
		segments:    sim.NewTable[SegmentState](),
		effects:     newEffectStore(),
		clock:       time.Now,
		log:         log,
	}
	reg.OnRemove(r.purge)
	return r
}

// SetClock overrides the wall clock. Intended for tests.
func (r *Resolver) SetClock(clock func() time.Time) {
	r.clock = clock
}

// SetHealth attaches or replaces an entity's health component.
func (r *Resolver) SetHealth(id sim.EntityID, current, max int) {
	r.health.Put(id, Health{Current: current, Max: max})
}

// HealthOf returns the entity's health component, if it has one.
func (r *Resolver) HealthOf(id sim.EntityID) (Health, bool) {
	h, ok := r.health.Get(id)
	if !ok {
		return Health{}, false
	}
	return *h, true
}

// SetBehavior attaches a behavior to an enemy.
func (r *Resolver) SetBehavior(id sim.EntityID, b Behavior) {
	r.behaviors.Put(id, b)
}

// BehaviorOf returns the entity's behavior, if it has one.
func (r *Resolver) BehaviorOf(id sim.EntityID) (Behavior, bool) {
	b, ok := r.behaviors.Get(id)
	if !ok {
		return Behavior{}, false
	}
	return *b, true
}

// CreateProjectile spawns a projectile entity moving at dir*speed. dir must
// already be unit-length; callers are responsible for normalization.
func (r *Resolver) CreateProjectile(owner sim.EntityID, pos vec.Vec2, dir vec.Vec2, spec ProjectileSpec) sim.EntityID {
	id := r.reg.Register(sim.KindProjectile, pos)
	r.projectiles.Put(id, projectile{
		damage:    spec.Damage,
		lifetime:  spec.Lifetime,
		createdAt: r.clock(),
		owner:     owner,
	})
	r.phys.SetVelocity(id, dir.Scale(spec.Speed))
	r.phys.SetPolicy(id, physics.PolicyDestroy)
	return id
}

// ApplyDamage clamps the entity's health to max(0, current-amount). Damaging
// an entity with no health component is a no-op. Zero damage still emits the
// visual-impact event but never triggers defeat. At zero health the entity
// is removed after an EventEntityDefeated carrying its last known position
// and kind.
func (r *Resolver) ApplyDamage(id sim.EntityID, amount int) {
	h, ok := r.health.Get(id)
	if !ok {
		return
	}
	e, ok := r.reg.Get(id)
	if !ok {
		return
	}

	r.events.Push(sim.Event{
		Type:   sim.EventImpact,
		Entity: id,
		Kind:   e.Kind,
		Pos:    e.Pos,
		Damage: amount,
	})
	if amount <= 0 {
		return
	}

	h.Current -= amount
	if h.Current > 0 {
		return
	}
	h.Current = 0

	r.events.Push(sim.Event{
		Type:   sim.EventEntityDefeated,
		Entity: id,
		Kind:   e.Kind,
		Pos:    e.Pos,
	})
	r.reg.Remove(id)
}

// Update runs one combat tick: projectile expiry, behavior dispatch, status
// effect expiry, whip recomputation, then projectile hit resolution. player
// is a read reference to the caller-owned player entity.
func (r *Resolver) Update(now time.Time, player sim.EntityID) {
	r.expireProjectiles(now)

	playerPos := vec.Vec2{}
	if p, ok := r.reg.Get(player); ok {
		playerPos = p.Pos
	}
	r.dispatchBehaviors(now, playerPos)

	r.effects.expire(now)
	r.updateWhip()
	r.resolveProjectileHits(player)
}

func (r *Resolver) expireProjectiles(now time.Time) {
	for _, id := range r.reg.ByKind(sim.KindProjectile) {
		p, ok := r.projectiles.Get(id)
		if !ok {
			continue // already removed this tick
		}
		if now.Sub(p.createdAt) >= p.lifetime {
			r.reg.Remove(id)
		}
	}
}

// resolveProjectileHits checks every live projectile against enemies and the
// player, skipping self-hits by owner. A projectile is consumed by its first
// hit.
func (r *Resolver) resolveProjectileHits(player sim.EntityID) {
	targets := r.reg.ByKind(sim.KindEnemy)
	if r.reg.Alive(player) {
		targets = append(targets, player)
	}

	for _, pid := range r.reg.ByKind(sim.KindProjectile) {
		p, ok := r.projectiles.Get(pid)
		if !ok {
			continue
		}
		pe, ok := r.reg.Get(pid)
		if !ok {
			continue
		}
		pos := pe.Pos

		for _, tid := range targets {
			if tid == p.owner || tid == pid {
				continue
			}
			te, ok := r.reg.Get(tid)
			if !ok {
				continue // defeated earlier in this scan
			}
			if vec.DistSq(pos, te.Pos) > r.cfg.HitRadius*r.cfg.HitRadius {
				continue
			}

			r.events.Push(sim.Event{
				Type:   sim.EventProjectileHit,
				Entity: tid,
				Kind:   te.Kind,
				Pos:    te.Pos,
				Damage: p.damage,
			})
			damage := p.damage
			r.reg.Remove(pid)
			r.ApplyDamage(tid, damage)
			break
		}
	}
}

// purge drops all combat state for a removed entity. Registered as a
// registry removal hook.
func (r *Resolver) purge(id sim.EntityID) {
	r.health.Delete(id)
	r.behaviors.Delete(id)
	r.projectiles.Delete(id)
	r.segments.Delete(id)
	r.effects.purge(id)
}
