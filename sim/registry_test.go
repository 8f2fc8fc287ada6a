package sim_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/vec"
)

// Test EntityID encoding/decoding
func TestEntityIDEncoding(t *testing.T) {
	generation := uint32(12345)
	index := uint32(67890)

	id := sim.NewEntityID(generation, index)

	assert.Equal(t, generation, id.Generation())
	assert.Equal(t, index, id.Index())
}

func TestEntityIDEdgeCases(t *testing.T) {
	tests := []struct {
		generation uint32
		index      uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("gen=%d,index=%d", tt.generation, tt.index), func(t *testing.T) {
			id := sim.NewEntityID(tt.generation, tt.index)
			assert.Equal(t, tt.generation, id.Generation())
			assert.Equal(t, tt.index, id.Index())
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := sim.NewRegistry()

	id := reg.Register("enemy", vec.Vec2{X: 3, Y: 4})
	require.NotEqual(t, sim.EntityID(0), id)

	e, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, "enemy", e.Kind)
	assert.Equal(t, vec.Vec2{X: 3, Y: 4}, e.Pos)
	assert.True(t, e.Active)
}

func TestRemoveIsIdempotent(t *testing.T) {
	reg := sim.NewRegistry()
	id := reg.Register("enemy", vec.Vec2{})

	reg.Remove(id)
	assert.False(t, reg.Alive(id))
	assert.Equal(t, 0, reg.Count("enemy"))

	// Removing again must not panic or change anything.
	reg.Remove(id)
	assert.False(t, reg.Alive(id))
	assert.Equal(t, 0, reg.Count("enemy"))
}

func TestStaleIDAfterSlotReuse(t *testing.T) {
	reg := sim.NewRegistry()

	first := reg.Register("enemy", vec.Vec2{})
	reg.Remove(first)

	// The slot is reused under a new generation; the old ID must stay dead.
	second := reg.Register("enemy", vec.Vec2{})
	assert.Equal(t, first.Index(), second.Index())
	assert.NotEqual(t, first.Generation(), second.Generation())

	assert.False(t, reg.Alive(first))
	assert.True(t, reg.Alive(second))

	_, ok := reg.Get(first)
	assert.False(t, ok)
}

func TestByKindInsertionOrderAndSnapshot(t *testing.T) {
	reg := sim.NewRegistry()

	a := reg.Register("enemy", vec.Vec2{X: 1})
	b := reg.Register("enemy", vec.Vec2{X: 2})
	reg.Register("projectile", vec.Vec2{})
	c := reg.Register("enemy", vec.Vec2{X: 3})

	require.Equal(t, []sim.EntityID{a, b, c}, reg.ByKind("enemy"))

	// The snapshot must tolerate removal during iteration.
	for _, id := range reg.ByKind("enemy") {
		reg.Remove(id)
	}
	assert.Empty(t, reg.ByKind("enemy"))
	assert.Equal(t, 1, reg.Count("projectile"))
}

func TestOnRemoveHookCascade(t *testing.T) {
	reg := sim.NewRegistry()

	var removed []sim.EntityID
	reg.OnRemove(func(id sim.EntityID) {
		removed = append(removed, id)
	})

	id := reg.Register("enemy", vec.Vec2{})
	reg.Remove(id)
	reg.Remove(id) // idempotent: hook must fire once

	assert.Equal(t, []sim.EntityID{id}, removed)
}

func TestUpdatePosition(t *testing.T) {
	reg := sim.NewRegistry()
	id := reg.Register("player", vec.Vec2{})

	reg.UpdatePosition(id, vec.Vec2{X: 7, Y: 9})
	e, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, vec.Vec2{X: 7, Y: 9}, e.Pos)

	// No-op on a stale ID.
	reg.Remove(id)
	reg.UpdatePosition(id, vec.Vec2{X: 1, Y: 1})
}

func TestByKindCompaction(t *testing.T) {
	reg := sim.NewRegistry()

	ids := make([]sim.EntityID, 0, 64)
	for i := 0; i < 64; i++ {
		ids = append(ids, reg.Register("projectile", vec.Vec2{X: float64(i)}))
	}
	for _, id := range ids[:48] {
		reg.Remove(id)
	}

	got := reg.ByKind("projectile")
	assert.Len(t, got, 16)
	assert.Equal(t, ids[48:], got)

	// A second call runs against the compacted list and must agree.
	assert.Equal(t, got, reg.ByKind("projectile"))
}
