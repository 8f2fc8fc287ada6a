package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadbaregames/lash/config"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestValidateRejectsMissingDifficulty(t *testing.T) {
	tuning := config.Default()
	delete(tuning.Difficulties, "hard")

	err := tuning.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingDifficulty)
}

func TestValidateRejectsBadTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Tuning)
	}{
		{"zero spawn rate", func(t *config.Tuning) { t.Spawn.BaseRate = 0 }},
		{"zero max enemies", func(t *config.Tuning) { t.Spawn.BaseMax = 0 }},
		{"zero whip threshold", func(t *config.Tuning) { t.Combat.Whip.Threshold = 0 }},
		{"zero whip radius", func(t *config.Tuning) { t.Combat.WhipRadius = 0 }},
		{"zero contact radius", func(t *config.Tuning) { t.Combat.ContactRadius = 0 }},
		{"empty enemy table", func(t *config.Tuning) { t.Enemies = nil }},
		{"unknown behavior", func(t *config.Tuning) {
			s := t.Enemies["chaser"]
			s.Behavior = "lurker"
			t.Enemies["chaser"] = s
		}},
		{"zero enemy health", func(t *config.Tuning) {
			s := t.Enemies["patrol"]
			s.Health = 0
			t.Enemies["patrol"] = s
		}},
		{"shooter without cooldown", func(t *config.Tuning) {
			s := t.Enemies["shooter"]
			s.ShootCooldownMs = 0
			t.Enemies["shooter"] = s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := config.Default()
			tt.mutate(tuning)
			assert.Error(t, tuning.Validate())
		})
	}
}

func TestLoadRoundTrip(t *testing.T) {
	const doc = `
spawn:
  base_rate: 30
  base_max: 8
  min_player_distance: 5
combat:
  hit_radius: 0.5
  whip_radius: 1.2
  contact_radius: 0.6
  whip:
    threshold: 2.0
    base_damage: 3
difficulties:
  easy:   {spawn_rate: 0.5, max_enemies: 0.5, health: 0.8, speed: 0.9, damage: 0.8}
  normal: {spawn_rate: 1.0, max_enemies: 1.0, health: 1.0, speed: 1.0, damage: 1.0}
  hard:   {spawn_rate: 2.0, max_enemies: 2.0, health: 1.5, speed: 1.2, damage: 1.5}
enemies:
  chaser:
    behavior: chaser
    health: 4
    speed: 5
    damage: 2
    detection_range: 10
`
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tuning, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30.0, tuning.Spawn.BaseRate)
	assert.Equal(t, 8, tuning.Spawn.BaseMax)
	assert.Equal(t, 3, tuning.Combat.Whip.BaseDamage)
	assert.Equal(t, 1.2, tuning.Combat.WhipRadius)
	assert.Equal(t, 0.6, tuning.Combat.ContactRadius)
	assert.Equal(t, 2.0, tuning.Difficulties["hard"].SpawnRate)
	assert.Equal(t, 4, tuning.Enemies["chaser"].Health)
}

func TestLoadFailsFastOnBadFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spawn: [not a map"), 0o644))
	_, err = config.Load(path)
	assert.Error(t, err)
}
