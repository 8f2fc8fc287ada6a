// Package spawn procedurally creates enemies on the play-field perimeter,
// under spatial and difficulty constraints. It runs last in the tick so the
// population counts it checks are post-combat-resolution.
package spawn

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/threadbaregames/lash/config"
	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/sim/combat"
	"github.com/threadbaregames/lash/sim/physics"
	"github.com/threadbaregames/lash/vec"
)

// typeWeightEpsilon keeps the inverse-frequency weights finite when a type
// has zero live instances.
const typeWeightEpsilon = 0.1

// Spawner creates enemy entities. The spawn-point set is generated once from
// the grid dimensions at Initialize and is immutable until the grid changes.
type Spawner struct {
	reg    *sim.Registry
	combat *combat.Resolver
	phys   *physics.Resolver
	events *sim.Events

	tuning *config.Tuning
	points []vec.Vec2

	// typeNames is the enemy table in sorted order so the weighted draw is
	// reproducible for a given RNG seed.
	typeNames []string

	// types tags each live enemy with its table entry, for the
	// inverse-frequency draw.
	types *sim.Table[string]

	lastSpawn  time.Time
	hasSpawned bool

	rng *rand.Rand
	log *zap.Logger
}

// NewSpawner creates a spawner over the given subsystems. A nil rng seeds
// from crypto-random as math/rand/v2 does by default.
func NewSpawner(reg *sim.Registry, cr *combat.Resolver, phys *physics.Resolver, events *sim.Events, rng *rand.Rand, log *zap.Logger) *Spawner {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Spawner{
		reg:    reg,
		combat: cr,
		phys:   phys,
		events: events,
		types:  sim.NewTable[string](),
		rng:    rng,
		log:    log,
	}
	reg.OnRemove(s.types.Delete)
	return s
}

// Initialize validates the tuning tables and (re)computes the spawn-point
// set as every perimeter cell of the grid. This is the only place in the
// core that fails hard: a malformed table must surface now, not mid-tick.
func (s *Spawner) Initialize(tuning *config.Tuning, grid config.Grid) error {
	if err := tuning.Validate(); err != nil {
		return fmt.Errorf("spawner tuning: %w", err)
	}
	if grid.Width < 2 || grid.Height < 2 {
		return fmt.Errorf("grid %dx%d too small for a perimeter", grid.Width, grid.Height)
	}

	s.tuning = tuning
	s.typeNames = s.typeNames[:0]
	for name := range tuning.Enemies {
		s.typeNames = append(s.typeNames, name)
	}
	slices.Sort(s.typeNames)

	s.points = s.points[:0]
	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.Height; y++ {
			if x == 0 || x == grid.Width-1 || y == 0 || y == grid.Height-1 {
				s.points = append(s.points, vec.Vec2{X: float64(x), Y: float64(y)})
			}
		}
	}
	return nil
}

// SpawnPoints returns the perimeter point set. Intended for inspection
// tooling; the slice must not be mutated.
func (s *Spawner) SpawnPoints() []vec.Vec2 {
	return s.points
}

// EnemyTypeOf returns the table entry an enemy was spawned from.
func (s *Spawner) EnemyTypeOf(id sim.EntityID) (string, bool) {
	tag, ok := s.types.Get(id)
	if !ok {
		return "", false
	}
	return *tag, true
}

// Update spawns at most one enemy when the difficulty-scaled interval has
// elapsed and the population cap allows it.
func (s *Spawner) Update(now time.Time, player sim.EntityID, difficulty string) {
	if s.tuning == nil {
		return // not initialized; nothing sane to do mid-tick
	}
	mult, ok := s.tuning.Difficulties[difficulty]
	if !ok {
		s.log.Debug("unknown difficulty label, skipping spawn",
			zap.String("difficulty", difficulty))
		return
	}

	interval := time.Duration(60000/(s.tuning.Spawn.BaseRate*mult.SpawnRate)) * time.Millisecond
	if s.hasSpawned && now.Sub(s.lastSpawn) < interval {
		return
	}

	maxAllowed := int(float64(s.tuning.Spawn.BaseMax) * mult.MaxEnemies)
	if s.reg.Count(sim.KindEnemy) >= maxAllowed {
		return
	}

	playerPos := vec.Vec2{}
	if p, ok := s.reg.Get(player); ok {
		playerPos = p.Pos
	}

	point := s.pickPoint(playerPos)
	name := s.pickType()
	stats := s.tuning.Enemies[name]

	health := int(float64(stats.Health) * mult.Health)
	if health < 1 {
		health = 1
	}
	speed := stats.Speed * mult.Speed
	damage := int(float64(stats.Damage) * mult.Damage)

	id := s.reg.Register(sim.KindEnemy, point)
	s.types.Put(id, name)
	s.combat.SetHealth(id, health, health)
	s.phys.SetPolicy(id, physics.PolicyStop)

	kind, err := combat.ParseBehaviorKind(stats.Behavior)
	if err != nil {
		// Validate guarantees this cannot happen; keep the enemy inert
		// rather than failing the tick.
		s.log.Debug("enemy type with unknown behavior", zap.String("type", name))
	} else {
		s.combat.SetBehavior(id, combat.Behavior{
			Kind:           kind,
			Speed:          speed,
			Damage:         damage,
			DetectionRange: stats.DetectionRange,
			PatrolOrigin:   point,
			PatrolDistance: stats.PatrolDistance,
			ShootCooldown:  time.Duration(stats.ShootCooldownMs) * time.Millisecond,
			ProjectileSpec: combat.ProjectileSpec{
				Damage:   damage,
				Speed:    stats.ProjectileSpeed,
				Lifetime: time.Duration(stats.ProjectileLifetimeMs) * time.Millisecond,
			},
		})
	}

	s.lastSpawn = now
	s.hasSpawned = true
	s.events.Push(sim.Event{
		Type:      sim.EventEnemySpawned,
		Entity:    id,
		Kind:      sim.KindEnemy,
		Pos:       point,
		EnemyType: name,
	})
}

// pickPoint selects a spawn point at least MinPlayerDistance cells from the
// player, falling back to any random point when none qualify.
func (s *Spawner) pickPoint(playerPos vec.Vec2) vec.Vec2 {
	minSq := s.tuning.Spawn.MinPlayerDistance * s.tuning.Spawn.MinPlayerDistance

	candidates := make([]vec.Vec2, 0, len(s.points))
	for _, p := range s.points {
		if vec.DistSq(p, playerPos) >= minSq {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = s.points
	}
	return candidates[s.rng.IntN(len(candidates))]
}

// pickType draws an enemy type with inverse-frequency weighting: each type's
// weight is 1/(liveCount+epsilon), so underrepresented types are
// proportionally more likely. This is a weighted draw over cumulative
// weights, not uniform selection.
func (s *Spawner) pickType() string {
	counts := make(map[string]int, len(s.typeNames))
	for _, id := range s.reg.ByKind(sim.KindEnemy) {
		if tag, ok := s.types.Get(id); ok {
			counts[*tag]++
		}
	}

	weights := make([]float64, len(s.typeNames))
	total := 0.0
	for i, name := range s.typeNames {
		w := 1.0 / (float64(counts[name]) + typeWeightEpsilon)
		weights[i] = w
		total += w
	}

	draw := s.rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if draw < acc {
			return s.typeNames[i]
		}
	}
	return s.typeNames[len(s.typeNames)-1]
}
