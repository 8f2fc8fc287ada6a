package spawn_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadbaregames/lash/config"
	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/sim/combat"
	"github.com/threadbaregames/lash/sim/physics"
	"github.com/threadbaregames/lash/sim/spawn"
	"github.com/threadbaregames/lash/vec"
)

type world struct {
	reg     *sim.Registry
	combat  *combat.Resolver
	events  *sim.Events
	spawner *spawn.Spawner
}

func newWorld(t *testing.T, tuning *config.Tuning, grid config.Grid) *world {
	t.Helper()
	reg := sim.NewRegistry()
	phys := physics.NewResolver(reg, nil)
	phys.SetBounds(float64(grid.Width), float64(grid.Height))
	events := sim.NewEvents()
	cr := combat.NewResolver(reg, phys, events, combat.Config{HitRadius: 0.75, WhipThreshold: 1.5, WhipBaseDamage: 2}, nil)

	rng := rand.New(rand.NewPCG(42, 7))
	sp := spawn.NewSpawner(reg, cr, phys, events, rng, nil)
	require.NoError(t, sp.Initialize(tuning, grid))

	return &world{reg: reg, combat: cr, events: events, spawner: sp}
}

func onPerimeter(p vec.Vec2, grid config.Grid) bool {
	x, y := int(p.X), int(p.Y)
	return x == 0 || x == grid.Width-1 || y == 0 || y == grid.Height-1
}

func TestInitializeFailsFastOnBadTables(t *testing.T) {
	reg := sim.NewRegistry()
	phys := physics.NewResolver(reg, nil)
	events := sim.NewEvents()
	cr := combat.NewResolver(reg, phys, events, combat.Config{WhipThreshold: 1}, nil)
	sp := spawn.NewSpawner(reg, cr, phys, events, nil, nil)

	tuning := config.Default()
	delete(tuning.Difficulties, "normal")

	err := sp.Initialize(tuning, config.Grid{Width: 20, Height: 20, CellSize: 16})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingDifficulty)

	assert.Error(t, sp.Initialize(config.Default(), config.Grid{Width: 1, Height: 20}))
}

func TestSpawnPointsCoverPerimeterOnly(t *testing.T) {
	grid := config.Grid{Width: 20, Height: 20, CellSize: 16}
	w := newWorld(t, config.Default(), grid)

	points := w.spawner.SpawnPoints()
	// 20x20 grid: 2*20 + 2*18 perimeter cells.
	assert.Len(t, points, 76)
	for _, p := range points {
		assert.True(t, onPerimeter(p, grid))
	}
}

// Grid 20x20, zero enemies, first update past the interval: exactly one
// enemy appears, on the perimeter, and the zero-count type draw must not
// divide by zero.
func TestFirstSpawnOnEmptyField(t *testing.T) {
	grid := config.Grid{Width: 20, Height: 20, CellSize: 16}
	w := newWorld(t, config.Default(), grid)

	player := w.reg.Register(sim.KindPlayer, vec.Vec2{X: 10, Y: 10})
	w.spawner.Update(time.Unix(1000, 0), player, "normal")

	enemies := w.reg.ByKind(sim.KindEnemy)
	require.Len(t, enemies, 1)

	e, _ := w.reg.Get(enemies[0])
	assert.True(t, onPerimeter(e.Pos, grid))

	name, ok := w.spawner.EnemyTypeOf(enemies[0])
	require.True(t, ok)
	assert.Contains(t, []string{"chaser", "patrol", "shooter"}, name)

	h, ok := w.combat.HealthOf(enemies[0])
	require.True(t, ok)
	assert.Positive(t, h.Current)

	events := w.events.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, sim.EventEnemySpawned, events[0].Type)
	assert.Equal(t, name, events[0].EnemyType)
}

func TestSpawnIntervalGate(t *testing.T) {
	grid := config.Grid{Width: 20, Height: 20, CellSize: 16}
	tuning := config.Default()
	tuning.Spawn.BaseRate = 60 // one per second at normal
	w := newWorld(t, tuning, grid)

	player := w.reg.Register(sim.KindPlayer, vec.Vec2{X: 10, Y: 10})
	start := time.Unix(1000, 0)

	w.spawner.Update(start, player, "normal")
	assert.Equal(t, 1, w.reg.Count(sim.KindEnemy))

	// Too early.
	w.spawner.Update(start.Add(400*time.Millisecond), player, "normal")
	assert.Equal(t, 1, w.reg.Count(sim.KindEnemy))

	// Interval elapsed.
	w.spawner.Update(start.Add(time.Second), player, "normal")
	assert.Equal(t, 2, w.reg.Count(sim.KindEnemy))
}

// After any sequence of updates, count(enemies) <= floor(baseMax * mult).
func TestSpawnLimitInvariant(t *testing.T) {
	grid := config.Grid{Width: 20, Height: 20, CellSize: 16}
	tuning := config.Default()
	tuning.Spawn.BaseRate = 6000 // effectively no interval gate
	tuning.Spawn.BaseMax = 5
	w := newWorld(t, tuning, grid)

	player := w.reg.Register(sim.KindPlayer, vec.Vec2{X: 10, Y: 10})

	now := time.Unix(1000, 0)
	for i := 0; i < 100; i++ {
		now = now.Add(time.Second)
		w.spawner.Update(now, player, "easy")
	}

	maxAllowed := int(float64(tuning.Spawn.BaseMax) * tuning.Difficulties["easy"].MaxEnemies)
	assert.LessOrEqual(t, w.reg.Count(sim.KindEnemy), maxAllowed)
	assert.Equal(t, maxAllowed, w.reg.Count(sim.KindEnemy), "spawner fills up to the cap")
}

func TestSpawnKeepsDistanceFromPlayer(t *testing.T) {
	grid := config.Grid{Width: 30, Height: 30, CellSize: 16}
	tuning := config.Default()
	tuning.Spawn.BaseRate = 6000
	tuning.Spawn.BaseMax = 40
	tuning.Spawn.MinPlayerDistance = 10
	w := newWorld(t, tuning, grid)

	// Player sits in a corner so plenty of points qualify.
	player := w.reg.Register(sim.KindPlayer, vec.Vec2{X: 2, Y: 2})

	now := time.Unix(1000, 0)
	minSq := tuning.Spawn.MinPlayerDistance * tuning.Spawn.MinPlayerDistance
	for i := 0; i < 30; i++ {
		now = now.Add(time.Second)
		w.spawner.Update(now, player, "normal")
	}

	for _, id := range w.reg.ByKind(sim.KindEnemy) {
		e, _ := w.reg.Get(id)
		assert.GreaterOrEqual(t, vec.DistSq(e.Pos, vec.Vec2{X: 2, Y: 2}), minSq)
	}
}

func TestSpawnFallsBackWhenNoPointQualifies(t *testing.T) {
	grid := config.Grid{Width: 10, Height: 10, CellSize: 16}
	tuning := config.Default()
	tuning.Spawn.MinPlayerDistance = 1000 // nothing qualifies
	w := newWorld(t, tuning, grid)

	player := w.reg.Register(sim.KindPlayer, vec.Vec2{X: 5, Y: 5})
	w.spawner.Update(time.Unix(1000, 0), player, "normal")

	assert.Equal(t, 1, w.reg.Count(sim.KindEnemy), "falls back to an unconstrained point")
}

func TestInverseFrequencyDrawFavorsUnderrepresented(t *testing.T) {
	grid := config.Grid{Width: 40, Height: 40, CellSize: 16}
	tuning := config.Default()
	tuning.Spawn.BaseRate = 6000
	tuning.Spawn.BaseMax = 60
	w := newWorld(t, tuning, grid)

	player := w.reg.Register(sim.KindPlayer, vec.Vec2{X: 20, Y: 20})

	now := time.Unix(1000, 0)
	for i := 0; i < 60; i++ {
		now = now.Add(time.Second)
		w.spawner.Update(now, player, "normal")
	}

	counts := map[string]int{}
	for _, id := range w.reg.ByKind(sim.KindEnemy) {
		name, ok := w.spawner.EnemyTypeOf(id)
		require.True(t, ok)
		counts[name]++
	}

	// The draw self-balances: with 60 spawns across 3 types, every type must
	// be present and roughly even.
	for _, name := range []string{"chaser", "patrol", "shooter"} {
		assert.GreaterOrEqual(t, counts[name], 15, name)
	}
}

func TestUnknownDifficultyIsSkipped(t *testing.T) {
	grid := config.Grid{Width: 20, Height: 20, CellSize: 16}
	w := newWorld(t, config.Default(), grid)

	player := w.reg.Register(sim.KindPlayer, vec.Vec2{X: 10, Y: 10})
	w.spawner.Update(time.Unix(1000, 0), player, "nightmare")

	assert.Zero(t, w.reg.Count(sim.KindEnemy))
}

func TestDifficultyScalesStats(t *testing.T) {
	grid := config.Grid{Width: 20, Height: 20, CellSize: 16}
	tuning := config.Default()
	w := newWorld(t, tuning, grid)

	player := w.reg.Register(sim.KindPlayer, vec.Vec2{X: 10, Y: 10})
	w.spawner.Update(time.Unix(1000, 0), player, "hard")

	enemies := w.reg.ByKind(sim.KindEnemy)
	require.Len(t, enemies, 1)

	name, _ := w.spawner.EnemyTypeOf(enemies[0])
	base := tuning.Enemies[name]
	mult := tuning.Difficulties["hard"]

	h, _ := w.combat.HealthOf(enemies[0])
	assert.Equal(t, int(float64(base.Health)*mult.Health), h.Max)
}
