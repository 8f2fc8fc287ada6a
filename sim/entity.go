package sim

import "github.com/threadbaregames/lash/vec"

// EntityID encodes both the slot generation (upper 32 bits) and the slot
// index (lower 32 bits). A stale ID fails its generation check in O(1)
// instead of hitting a map miss.
type EntityID uint64

// NewEntityID creates an EntityID from a generation and a slot index.
func NewEntityID(generation uint32, index uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the generation from the entity ID.
func (e EntityID) Generation() uint32 {
	return uint32(e >> 32)
}

// Index extracts the slot index from the entity ID.
func (e EntityID) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Entity is a unique identity with a kind tag and a position. Capability
// data lives in per-subsystem Tables keyed by the entity's ID, never on the
// entity itself.
type Entity struct {
	ID     EntityID
	Kind   string
	Pos    vec.Vec2
	Active bool
}
