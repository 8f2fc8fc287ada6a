package combat

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/vec"
)

// BehaviorKind is the closed set of enemy steering strategies. A closed enum
// matched exhaustively replaces a string-keyed callback table: coverage is
// checked at compile time and an unknown kind degrades to a silent skip.
type BehaviorKind uint8

const (
	// BehaviorChaser moves straight at the player while within detection
	// range.
	BehaviorChaser BehaviorKind = iota + 1
	// BehaviorPatrol walks back and forth around its spawn point.
	BehaviorPatrol
	// BehaviorShooter holds position and fires projectiles at the player on
	// a cooldown.
	BehaviorShooter
)

// ParseBehaviorKind maps a config tag to its kind.
func ParseBehaviorKind(tag string) (BehaviorKind, error) {
	switch tag {
	case "chaser":
		return BehaviorChaser, nil
	case "patrol":
		return BehaviorPatrol, nil
	case "shooter":
		return BehaviorShooter, nil
	}
	return 0, fmt.Errorf("unknown behavior tag %q", tag)
}

// Behavior carries an enemy's strategy and its variant-specific tuning.
// Behaviors steer through the physics resolver; they never write positions
// directly.
type Behavior struct {
	Kind BehaviorKind

	Speed  float64
	Damage int

	// Chaser / Shooter
	DetectionRange float64

	// Patrol
	PatrolOrigin   vec.Vec2
	PatrolDistance float64
	patrolDir      float64

	// Shooter
	ShootCooldown  time.Duration
	ProjectileSpec ProjectileSpec
	lastShot       time.Time
	hasEverShot    bool
}

func (r *Resolver) dispatchBehaviors(now time.Time, playerPos vec.Vec2) {
	for _, id := range r.reg.ByKind(sim.KindEnemy) {
		b, ok := r.behaviors.Get(id)
		if !ok {
			continue // enemy without a behavior is inert, not an error
		}
		e, ok := r.reg.Get(id)
		if !ok {
			continue
		}

		switch b.Kind {
		case BehaviorChaser:
			r.steerChaser(id, e.Pos, playerPos, b)
		case BehaviorPatrol:
			r.steerPatrol(id, e.Pos, b)
		case BehaviorShooter:
			r.steerShooter(now, id, e.Pos, playerPos, b)
		default:
			r.log.Debug("skipping enemy with unregistered behavior",
				zap.Uint64("entity", uint64(id)))
		}
	}
}

func (r *Resolver) steerChaser(id sim.EntityID, pos, playerPos vec.Vec2, b *Behavior) {
	if vec.DistSq(pos, playerPos) > b.DetectionRange*b.DetectionRange {
		r.phys.SetVelocity(id, vec.Vec2{})
		return
	}
	dir := playerPos.Sub(pos).Normalized()
	r.phys.SetVelocity(id, dir.Scale(b.Speed))
}

func (r *Resolver) steerPatrol(id sim.EntityID, pos vec.Vec2, b *Behavior) {
	if b.patrolDir == 0 {
		b.patrolDir = 1
	}
	if pos.X >= b.PatrolOrigin.X+b.PatrolDistance {
		b.patrolDir = -1
	} else if pos.X <= b.PatrolOrigin.X-b.PatrolDistance {
		b.patrolDir = 1
	}
	r.phys.SetVelocity(id, vec.Vec2{X: b.patrolDir * b.Speed})
}

func (r *Resolver) steerShooter(now time.Time, id sim.EntityID, pos, playerPos vec.Vec2, b *Behavior) {
	r.phys.SetVelocity(id, vec.Vec2{})

	if vec.DistSq(pos, playerPos) > b.DetectionRange*b.DetectionRange {
		return
	}
	if b.hasEverShot && now.Sub(b.lastShot) < b.ShootCooldown {
		return
	}

	dir := playerPos.Sub(pos).Normalized()
	if dir == (vec.Vec2{}) {
		return // on top of the player; contact rules handle this
	}
	r.CreateProjectile(id, pos, dir, b.ProjectileSpec)
	b.lastShot = now
	b.hasEverShot = true
}
