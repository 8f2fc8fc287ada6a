// Command lash runs the playable demo: steer a chain of segments around the
// arena and crack it like a whip to defeat the enemies the spawner throws in.
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/threadbaregames/lash/config"
)

func main() {
	configPath := flag.String("config", "", "Path to a tuning YAML file; empty uses the built-in tuning.")
	difficulty := flag.String("difficulty", "normal", "Difficulty label: easy, normal or hard.")
	seed := flag.Uint64("seed", 0, "Spawner RNG seed; 0 seeds randomly.")
	debug := flag.Bool("debug", false, "Show the ImGui inspection overlay.")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	tuning := config.Default()
	if *configPath != "" {
		tuning, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal("load tuning", zap.String("path", *configPath), zap.Error(err))
		}
	}

	logger.Info("starting session",
		zap.String("session", uuid.NewString()),
		zap.String("difficulty", *difficulty),
		zap.Uint64("seed", *seed),
		zap.Bool("debug", *debug))

	g, err := newGame(gameOptions{
		Tuning:     tuning,
		Difficulty: *difficulty,
		Seed:       *seed,
		Debug:      *debug,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("build world", zap.Error(err))
	}

	ebiten.SetWindowSize(gridWidth*cellSize, gridHeight*cellSize)
	ebiten.SetWindowTitle("Lash")

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal("game loop", zap.Error(err))
	}
}
