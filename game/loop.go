// Package game drives the simulation core: one Once call per tick, stages in
// fixed order, per-stage timing statistics. Physics settles positions before
// collision tests run; collision and combat finish removing dead entities
// before the spawner evaluates the enemy count.
package game

import (
	"context"
	"time"

	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/sim/collision"
	"github.com/threadbaregames/lash/sim/combat"
	"github.com/threadbaregames/lash/sim/physics"
	"github.com/threadbaregames/lash/sim/spawn"
)

// StageStats provides execution statistics for a single stage.
type StageStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// LoopStats provides statistics about loop execution.
type LoopStats struct {
	TickCount int64
	Stages    []StageStats
}

type stageStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Loop composes the four subsystems and the registry into one tick unit.
// Single-threaded: callers must not invoke Once concurrently.
type Loop struct {
	Registry  *sim.Registry
	Physics   *physics.Resolver
	Collision *collision.Engine
	Combat    *combat.Resolver
	Spawner   *spawn.Spawner
	Events    *sim.Events

	// Player is the caller-owned player entity the core reads each tick.
	Player sim.EntityID
	// Difficulty selects the multiplier row used by the spawner.
	Difficulty string

	stats [4]*stageStatsInternal
	ticks int64
}

var stageNames = [4]string{"physics", "collision", "combat", "spawn"}

// NewLoop wires a loop over already-constructed subsystems.
func NewLoop(reg *sim.Registry, phys *physics.Resolver, col *collision.Engine, cr *combat.Resolver, sp *spawn.Spawner, events *sim.Events) *Loop {
	l := &Loop{
		Registry:   reg,
		Physics:    phys,
		Collision:  col,
		Combat:     cr,
		Spawner:    sp,
		Events:     events,
		Difficulty: "normal",
	}
	for i, name := range stageNames {
		l.stats[i] = &stageStatsInternal{
			name:        name,
			minDuration: time.Duration(1<<63 - 1),
		}
	}
	return l
}

// Once executes one simulation tick at the given wall-clock time with dtMs
// milliseconds of simulated time.
func (l *Loop) Once(now time.Time, dtMs float64) {
	l.runStage(0, func() { l.Physics.Update(dtMs) })
	l.runStage(1, func() { l.Collision.Update() })
	l.runStage(2, func() { l.Combat.Update(now, l.Player) })
	l.runStage(3, func() { l.Spawner.Update(now, l.Player, l.Difficulty) })
	l.ticks++
}

func (l *Loop) runStage(i int, fn func()) {
	start := time.Now()
	fn()
	duration := time.Since(start)

	stats := l.stats[i]
	stats.executionCount++
	stats.lastDuration = duration
	stats.totalDuration += duration
	if duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// Run executes ticks at the given interval until the context is cancelled.
// Pausing is just cancelling: nothing spans more than one synchronous Once.
func (l *Loop) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dtMs := float64(now.Sub(lastTime)) / float64(time.Millisecond)
			lastTime = now
			l.Once(now, dtMs)
		}
	}
}

// Stats returns statistics about stage execution.
func (l *Loop) Stats() *LoopStats {
	out := &LoopStats{
		TickCount: l.ticks,
		Stages:    make([]StageStats, len(l.stats)),
	}
	for i, internal := range l.stats {
		avg := time.Duration(0)
		if internal.executionCount > 0 {
			avg = internal.totalDuration / time.Duration(internal.executionCount)
		}
		out.Stages[i] = StageStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avg,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
	}
	return out
}
