// Package config supplies the static tuning tables the core consumes:
// difficulty multipliers, per-type enemy stats, spawn and combat constants.
// The core never defines balance values; it fails fast here, at load time,
// on a malformed table rather than mid-tick.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrMissingDifficulty is returned when the difficulty table lacks one of
// the required labels.
var ErrMissingDifficulty = errors.New("difficulty table missing required label")

// Difficulties is the closed set of difficulty labels the tables must cover.
var Difficulties = []string{"easy", "normal", "hard"}

// Grid describes the play-field in cells. Spawn points and physics bounds
// are derived from it and must be recomputed whenever it changes.
type Grid struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	CellSize int `yaml:"cell_size"`
}

// Multipliers scale base stats per difficulty label.
type Multipliers struct {
	SpawnRate  float64 `yaml:"spawn_rate"`
	MaxEnemies float64 `yaml:"max_enemies"`
	Health     float64 `yaml:"health"`
	Speed      float64 `yaml:"speed"`
	Damage     float64 `yaml:"damage"`
}

// EnemyStats is the base tuning for one enemy type, before difficulty
// multipliers are applied.
type EnemyStats struct {
	Behavior             string  `yaml:"behavior"` // chaser | patrol | shooter
	Health               int     `yaml:"health"`
	Speed                float64 `yaml:"speed"`
	Damage               int     `yaml:"damage"`
	DetectionRange       float64 `yaml:"detection_range"`
	PatrolDistance       float64 `yaml:"patrol_distance"`
	ShootCooldownMs      int     `yaml:"shoot_cooldown_ms"`
	ProjectileSpeed      float64 `yaml:"projectile_speed"`
	ProjectileLifetimeMs int     `yaml:"projectile_lifetime_ms"`
}

// Spawn holds the base spawning constants scaled by difficulty.
type Spawn struct {
	// BaseRate is spawns per minute at multiplier 1.0.
	BaseRate float64 `yaml:"base_rate"`
	// BaseMax is the enemy population cap at multiplier 1.0.
	BaseMax int `yaml:"base_max"`
	// MinPlayerDistance is the minimum spawn distance to the player, in
	// cells. Spawning falls back to any random point when no spawn point is
	// far enough.
	MinPlayerDistance float64 `yaml:"min_player_distance"`
}

// Whip tunes melee damage derived from body-segment motion.
type Whip struct {
	// Threshold is the segment speed estimate above which the segment
	// becomes damaging, in cells per tick.
	Threshold float64 `yaml:"threshold"`
	// BaseDamage is multiplied by the speed estimate and floored.
	BaseDamage int `yaml:"base_damage"`
}

// Combat holds combat-wide constants.
type Combat struct {
	// HitRadius is the circular hit test radius for projectiles, in cells.
	HitRadius float64 `yaml:"hit_radius"`
	// WhipRadius is the segment-to-enemy strike radius, in cells.
	WhipRadius float64 `yaml:"whip_radius"`
	// ContactRadius is the enemy-to-player touch damage radius, in cells.
	ContactRadius float64 `yaml:"contact_radius"`
	Whip          Whip    `yaml:"whip"`
}

// Tuning is the full table set handed to the core at initialize time.
type Tuning struct {
	Spawn        Spawn                  `yaml:"spawn"`
	Combat       Combat                 `yaml:"combat"`
	Difficulties map[string]Multipliers `yaml:"difficulties"`
	Enemies      map[string]EnemyStats  `yaml:"enemies"`
}

// Default returns the built-in tuning, used when no file is supplied.
func Default() *Tuning {
	return &Tuning{
		Spawn: Spawn{
			BaseRate:          20,
			BaseMax:           12,
			MinPlayerDistance: 8,
		},
		Combat: Combat{
			HitRadius:     0.75,
			WhipRadius:    1.0,
			ContactRadius: 0.8,
			Whip: Whip{
				Threshold:  1.5,
				BaseDamage: 2,
			},
		},
		Difficulties: map[string]Multipliers{
			"easy":   {SpawnRate: 0.75, MaxEnemies: 0.75, Health: 0.8, Speed: 0.9, Damage: 0.75},
			"normal": {SpawnRate: 1.0, MaxEnemies: 1.0, Health: 1.0, Speed: 1.0, Damage: 1.0},
			"hard":   {SpawnRate: 1.5, MaxEnemies: 1.5, Health: 1.4, Speed: 1.15, Damage: 1.5},
		},
		Enemies: map[string]EnemyStats{
			"chaser": {
				Behavior:       "chaser",
				Health:         3,
				Speed:          4,
				Damage:         1,
				DetectionRange: 14,
			},
			"patrol": {
				Behavior:       "patrol",
				Health:         5,
				Speed:          2.5,
				Damage:         2,
				PatrolDistance: 6,
			},
			"shooter": {
				Behavior:             "shooter",
				Health:               2,
				Speed:                1.5,
				Damage:               1,
				DetectionRange:       18,
				ShootCooldownMs:      1800,
				ProjectileSpeed:      10,
				ProjectileLifetimeMs: 2500,
			},
		},
	}
}

// Load reads and validates a tuning file.
func Load(path string) (*Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning file: %w", err)
	}

	var t Tuning
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the tables for the conditions the core cannot recover
// from mid-tick.
func (t *Tuning) Validate() error {
	if t.Spawn.BaseRate <= 0 {
		return fmt.Errorf("spawn.base_rate must be positive, got %v", t.Spawn.BaseRate)
	}
	if t.Spawn.BaseMax <= 0 {
		return fmt.Errorf("spawn.base_max must be positive, got %d", t.Spawn.BaseMax)
	}
	if t.Combat.Whip.Threshold <= 0 {
		return fmt.Errorf("combat.whip.threshold must be positive, got %v", t.Combat.Whip.Threshold)
	}
	if t.Combat.WhipRadius <= 0 {
		return fmt.Errorf("combat.whip_radius must be positive, got %v", t.Combat.WhipRadius)
	}
	if t.Combat.ContactRadius <= 0 {
		return fmt.Errorf("combat.contact_radius must be positive, got %v", t.Combat.ContactRadius)
	}

	for _, label := range Difficulties {
		m, ok := t.Difficulties[label]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingDifficulty, label)
		}
		if m.SpawnRate <= 0 || m.MaxEnemies <= 0 {
			return fmt.Errorf("difficulty %q: spawn_rate and max_enemies multipliers must be positive", label)
		}
	}

	if len(t.Enemies) == 0 {
		return errors.New("enemy table is empty")
	}
	for name, s := range t.Enemies {
		switch s.Behavior {
		case "chaser", "patrol", "shooter":
		default:
			return fmt.Errorf("enemy %q: unknown behavior %q", name, s.Behavior)
		}
		if s.Health <= 0 {
			return fmt.Errorf("enemy %q: health must be positive, got %d", name, s.Health)
		}
		if s.Behavior == "shooter" && s.ShootCooldownMs <= 0 {
			return fmt.Errorf("enemy %q: shooter needs a positive shoot_cooldown_ms", name)
		}
	}
	return nil
}
