package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadbaregames/lash/config"
	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/sim/combat"
	"github.com/threadbaregames/lash/vec"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(Params{
		Tuning:     config.Default(),
		Grid:       config.Grid{Width: 40, Height: 40, CellSize: 16},
		Difficulty: "normal",
		Seed:       7,
	})
	require.NoError(t, err)
	return w
}

func eventsOfType(events []sim.Event, typ sim.EventType) []sim.Event {
	var out []sim.Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestWorldRejectsBrokenTuning(t *testing.T) {
	tuning := config.Default()
	delete(tuning.Difficulties, "hard")

	_, err := NewWorld(Params{
		Tuning: tuning,
		Grid:   config.Grid{Width: 40, Height: 40, CellSize: 16},
	})
	require.ErrorIs(t, err, config.ErrMissingDifficulty)
}

// A projectile that physics moves into hit range must be resolved by combat
// in the same tick, since combat runs after physics.
func TestProjectileHitResolvedSameTick(t *testing.T) {
	w := newTestWorld(t)
	player, _ := w.SpawnPlayer(0, 10)

	reg := w.Loop.Registry
	cr := w.Loop.Combat

	enemy := reg.Register(sim.KindEnemy, vec.Vec2{X: 24, Y: 20})
	cr.SetHealth(enemy, 3, 3)

	proj := cr.CreateProjectile(player, vec.Vec2{X: 20, Y: 20}, vec.Vec2{X: 1}, combat.ProjectileSpec{
		Damage:   2,
		Speed:    4,
		Lifetime: 5 * time.Second,
	})

	// 4 cells/s over one simulated second lands the projectile exactly on
	// the enemy.
	w.Loop.Once(time.Now(), 1000)

	h, ok := cr.HealthOf(enemy)
	require.True(t, ok)
	assert.Equal(t, 1, h.Current)
	assert.False(t, reg.Alive(proj), "projectile is consumed by its first hit")

	hits := eventsOfType(w.Drain(), sim.EventProjectileHit)
	require.Len(t, hits, 1)
	assert.Equal(t, enemy, hits[0].Entity)
	assert.Equal(t, 2, hits[0].Damage)
}

// Whip damage takes effect one tick after the segment starts moving fast:
// combat marks the segment damaging, and the next tick's collision pass
// applies it.
func TestWhipDamageLandsNextTick(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPlayer(2, 10)

	reg := w.Loop.Registry
	cr := w.Loop.Combat

	segs := reg.ByKind(sim.KindSegment)
	require.Len(t, segs, 2)

	enemy := reg.Register(sim.KindEnemy, vec.Vec2{X: 23.5, Y: 20})
	cr.SetHealth(enemy, 20, 20)

	// Yank the tail segment 4 cells from its predecessor at (19,20): above
	// the 1.5 threshold, damage floor(2*4) = 8.
	reg.UpdatePosition(segs[1], vec.Vec2{X: 23, Y: 20})

	now := time.Now()
	w.Loop.Once(now, 16)

	h, ok := cr.HealthOf(enemy)
	require.True(t, ok)
	assert.Equal(t, 20, h.Current, "collision ran before the segment was marked damaging")

	state, ok := cr.SegmentStateOf(segs[1])
	require.True(t, ok)
	assert.True(t, state.Damaging)
	assert.Equal(t, 8, state.Damage)

	w.Loop.Once(now.Add(16*time.Millisecond), 16)

	h, ok = cr.HealthOf(enemy)
	require.True(t, ok)
	assert.Equal(t, 12, h.Current)
}

func TestContactDamageThrottled(t *testing.T) {
	w := newTestWorld(t)
	player, _ := w.SpawnPlayer(0, 10)

	reg := w.Loop.Registry
	cr := w.Loop.Combat

	enemy := reg.Register(sim.KindEnemy, vec.Vec2{X: 20.5, Y: 20})
	cr.SetHealth(enemy, 5, 5)
	cr.SetBehavior(enemy, combat.Behavior{
		Kind:   combat.BehaviorChaser,
		Damage: 2,
	})

	now := time.Now()
	w.Loop.Once(now, 16)
	w.Loop.Once(now.Add(16*time.Millisecond), 16)

	h, ok := cr.HealthOf(player)
	require.True(t, ok)
	assert.Equal(t, 8, h.Current, "second overlapping tick is inside the cooldown window")
}

func TestFirstTickSpawnsEnemy(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPlayer(0, 10)

	assert.Equal(t, 0, w.Loop.Registry.Count(sim.KindEnemy))

	// First tick on an empty field spawns immediately.
	w.Loop.Once(time.Now(), 16)
	assert.Equal(t, 1, w.Loop.Registry.Count(sim.KindEnemy))

	spawned := eventsOfType(w.Drain(), sim.EventEnemySpawned)
	require.Len(t, spawned, 1)
	assert.NotEmpty(t, spawned[0].EnemyType)
}

func TestLoopStats(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPlayer(1, 10)

	now := time.Now()
	for i := 0; i < 3; i++ {
		w.Loop.Once(now.Add(time.Duration(i)*16*time.Millisecond), 16)
	}

	stats := w.Loop.Stats()
	assert.Equal(t, int64(3), stats.TickCount)
	require.Len(t, stats.Stages, 4)

	names := make([]string, 0, 4)
	for _, s := range stats.Stages {
		names = append(names, s.Name)
		assert.Equal(t, int64(3), s.ExecutionCount)
		assert.GreaterOrEqual(t, s.MaxDuration, s.MinDuration)
	}
	assert.Equal(t, []string{"physics", "collision", "combat", "spawn"}, names)
}
