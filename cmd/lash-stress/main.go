// Command lash-stress runs headless simulation worlds in parallel and
// reports aggregate tick timings. Each world drives an autopilot player so
// the whip, collision and spawner paths all stay hot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/threadbaregames/lash/config"
	"github.com/threadbaregames/lash/game"
	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/vec"
)

const (
	gridWidth  = 40
	gridHeight = 30

	segmentCount = 6
	playerHealth = 1 << 30 // the autopilot never dies
	playerSpeed  = 9.0

	tickMs = 1000.0 / 60.0
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	worlds := flag.Int("worlds", runtime.NumCPU(), "The number of worlds to simulate in parallel.")
	difficulty := flag.String("difficulty", "hard", "Difficulty label driving the spawner.")
	seed := flag.Uint64("seed", 1, "Base RNG seed; world i uses seed+i.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger.Info("starting stress run",
		zap.String("run", runID),
		zap.Int("worlds", *worlds),
		zap.Duration("duration", *duration),
		zap.String("difficulty", *difficulty))

	report := &Report{
		RunID:          runID,
		Duration:       *duration,
		Worlds:         *worlds,
		Difficulty:     *difficulty,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	results := make([]WorldResult, *worlds)
	startTime := time.Now()

	var g errgroup.Group
	for i := 0; i < *worlds; i++ {
		g.Go(func() error {
			res, err := runWorld(ctx, *difficulty, *seed+uint64(i))
			if err != nil {
				return fmt.Errorf("world %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("stress run failed", zap.Error(err))
	}

	report.TotalTime = time.Since(startTime)
	report.Aggregate(results)
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info("stress run finished",
		zap.Int64("ticks", report.TotalTicks),
		zap.Int64("spawned", report.EnemiesSpawned),
		zap.Int64("defeated", report.EnemiesDefeated))

	fmt.Println("\n--- Stress Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

// runWorld ticks one world as fast as possible until the context expires.
func runWorld(ctx context.Context, difficulty string, seed uint64) (WorldResult, error) {
	w, err := game.NewWorld(game.Params{
		Tuning:     config.Default(),
		Grid:       config.Grid{Width: gridWidth, Height: gridHeight, CellSize: 16},
		Difficulty: difficulty,
		Seed:       seed,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		return WorldResult{}, err
	}

	player, segments := w.SpawnPlayer(segmentCount, playerHealth)
	rng := rand.New(rand.NewPCG(seed, seed<<1|1))

	var res WorldResult
	heading := randomHeading(rng)
	now := time.Now()
	tickStep := float64(time.Millisecond)

	for {
		select {
		case <-ctx.Done():
			res.Stats = w.Loop.Stats()
			return res, nil
		default:
		}

		// Jink every half second or so; sharp turns arm the whip.
		if res.Ticks%30 == 0 {
			heading = randomHeading(rng)
		}
		w.Loop.Physics.SetVelocity(player, heading.Scale(playerSpeed))

		w.Loop.Once(now, tickMs)
		now = now.Add(time.Duration(tickMs * tickStep))
		res.Ticks++

		followSegments(w, player, segments)

		for _, e := range w.Drain() {
			switch e.Type {
			case sim.EventEnemySpawned:
				res.Spawned++
			case sim.EventEntityDefeated:
				if e.Kind == sim.KindEnemy {
					res.Defeated++
				}
			}
		}

		if n := w.Loop.Registry.Len(); n > res.PeakEntities {
			res.PeakEntities = n
		}
	}
}

func followSegments(w *game.World, player sim.EntityID, segments []sim.EntityID) {
	const spacing = 1.1
	reg := w.Loop.Registry

	head, ok := reg.Get(player)
	if !ok {
		return
	}
	prev := head.Pos

	for _, id := range segments {
		e, ok := reg.Get(id)
		if !ok {
			continue
		}
		offset := e.Pos.Sub(prev)
		if offset.Len() > spacing {
			pos := prev.Add(offset.Normalized().Scale(spacing))
			reg.UpdatePosition(id, pos)
			prev = pos
		} else {
			prev = e.Pos
		}
	}
}

func randomHeading(rng *rand.Rand) vec.Vec2 {
	return vec.Vec2{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}.Normalized()
}
