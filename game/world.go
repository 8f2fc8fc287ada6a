package game

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/threadbaregames/lash/config"
	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/sim/collision"
	"github.com/threadbaregames/lash/sim/combat"
	"github.com/threadbaregames/lash/sim/physics"
	"github.com/threadbaregames/lash/sim/spawn"
	"github.com/threadbaregames/lash/vec"
)

// contactCooldownTicks throttles enemy contact damage so an overlapping
// enemy chews on the player roughly twice a second at 60 ticks/s.
const contactCooldownTicks = 30

// Params configures a World.
type Params struct {
	Tuning     *config.Tuning
	Grid       config.Grid
	Difficulty string
	// Seed fixes the spawner RNG; 0 seeds randomly.
	Seed   uint64
	Logger *zap.Logger
}

// World is a fully wired simulation: registry, the four subsystems, the
// standard collision rules and the tick loop.
type World struct {
	Loop   *Loop
	Tuning *config.Tuning
	Grid   config.Grid
}

// NewWorld builds and wires a world. It fails only on malformed tuning.
func NewWorld(p Params) (*World, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if p.Difficulty == "" {
		p.Difficulty = "normal"
	}

	reg := sim.NewRegistry()
	events := sim.NewEvents()

	phys := physics.NewResolver(reg, log)
	phys.SetBounds(float64(p.Grid.Width), float64(p.Grid.Height))

	col := collision.NewEngine(reg, log)

	cr := combat.NewResolver(reg, phys, events, combat.Config{
		HitRadius:      p.Tuning.Combat.HitRadius,
		WhipThreshold:  p.Tuning.Combat.Whip.Threshold,
		WhipBaseDamage: p.Tuning.Combat.Whip.BaseDamage,
	}, log)

	var rng *rand.Rand
	if p.Seed != 0 {
		rng = rand.New(rand.NewPCG(p.Seed, p.Seed^0x9E3779B97F4A7C15))
	}
	sp := spawn.NewSpawner(reg, cr, phys, events, rng, log)
	if err := sp.Initialize(p.Tuning, p.Grid); err != nil {
		return nil, err
	}

	loop := NewLoop(reg, phys, col, cr, sp, events)
	loop.Difficulty = p.Difficulty

	// A damaging segment strikes enemies it sweeps over.
	col.Register(sim.KindSegment, sim.KindEnemy, collision.ModeRadius, p.Tuning.Combat.WhipRadius, func(seg, enemy sim.EntityID) {
		state, ok := cr.SegmentStateOf(seg)
		if !ok || !state.Damaging {
			return
		}
		cr.ApplyDamage(enemy, state.Damage)
	})

	// Enemy bodies deal contact damage to the player, throttled per enemy.
	lastTouch := sim.NewTable[int64]()
	col.Register(sim.KindEnemy, sim.KindPlayer, collision.ModeRadius, p.Tuning.Combat.ContactRadius, func(enemy, player sim.EntityID) {
		if last, ok := lastTouch.Get(enemy); ok && loop.ticks-*last < contactCooldownTicks {
			return
		}
		b, ok := cr.BehaviorOf(enemy)
		if !ok || b.Damage <= 0 {
			return
		}
		lastTouch.Put(enemy, loop.ticks)
		cr.ApplyDamage(player, b.Damage)
	})
	reg.OnRemove(lastTouch.Delete)

	return &World{Loop: loop, Tuning: p.Tuning, Grid: p.Grid}, nil
}

// SpawnPlayer registers the player head plus trailing body segments in a
// horizontal line and attaches health. It returns the player and segment
// IDs; movement of the chain is the caller's concern.
func (w *World) SpawnPlayer(segments int, health int) (sim.EntityID, []sim.EntityID) {
	reg := w.Loop.Registry
	center := vec.Vec2{X: float64(w.Grid.Width) / 2, Y: float64(w.Grid.Height) / 2}

	player := reg.Register(sim.KindPlayer, center)
	w.Loop.Combat.SetHealth(player, health, health)
	w.Loop.Physics.SetPolicy(player, physics.PolicyStop)
	w.Loop.Player = player

	ids := make([]sim.EntityID, 0, segments)
	for i := 0; i < segments; i++ {
		pos := center
		pos.X -= float64(i + 1)
		ids = append(ids, reg.Register(sim.KindSegment, pos))
	}
	return player, ids
}

// Drain returns the events emitted since the last tick.
func (w *World) Drain() []sim.Event {
	return w.Loop.Events.Drain()
}
