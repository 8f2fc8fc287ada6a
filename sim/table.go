package sim

import "iter"

const tableBlockSize = 64

// Table is a dense arena of component slots addressed by the entity's slot
// index. Each slot is stamped with the generation of the ID that wrote it,
// so a lookup with a stale ID misses without any hashing.
//
// Each subsystem owns the Tables for the component types it is responsible
// for; a missing entry means the entity does not participate in that
// subsystem.
type Table[T any] struct {
	blocks [][tableBlockSize]T
	gens   [][tableBlockSize]uint32 // 0 = empty slot
	count  int
}

// NewTable creates an empty component table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{}
}

// Put stores a component value for the given entity, overwriting any
// previous value at that slot.
func (t *Table[T]) Put(id EntityID, v T) {
	blockIdx := int(id.Index()) / tableBlockSize
	slotIdx := int(id.Index()) % tableBlockSize

	for blockIdx >= len(t.blocks) {
		t.blocks = append(t.blocks, [tableBlockSize]T{})
		t.gens = append(t.gens, [tableBlockSize]uint32{})
	}

	if t.gens[blockIdx][slotIdx] == 0 {
		t.count++
	}
	t.blocks[blockIdx][slotIdx] = v
	t.gens[blockIdx][slotIdx] = id.Generation()
}

// Get returns a pointer to the component for the given entity, or false if
// the entity has no entry or the slot was reused by a newer generation.
func (t *Table[T]) Get(id EntityID) (*T, bool) {
	blockIdx := int(id.Index()) / tableBlockSize
	slotIdx := int(id.Index()) % tableBlockSize

	if blockIdx >= len(t.blocks) {
		return nil, false
	}
	if t.gens[blockIdx][slotIdx] != id.Generation() {
		return nil, false
	}
	return &t.blocks[blockIdx][slotIdx], true
}

// Has reports whether the entity has a live entry.
func (t *Table[T]) Has(id EntityID) bool {
	_, ok := t.Get(id)
	return ok
}

// Delete clears the entity's slot. Deleting an absent entry is a no-op.
func (t *Table[T]) Delete(id EntityID) {
	blockIdx := int(id.Index()) / tableBlockSize
	slotIdx := int(id.Index()) % tableBlockSize

	if blockIdx >= len(t.blocks) {
		return
	}
	if t.gens[blockIdx][slotIdx] != id.Generation() {
		return
	}
	var zero T
	t.blocks[blockIdx][slotIdx] = zero
	t.gens[blockIdx][slotIdx] = 0
	t.count--
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	return t.count
}

// All iterates live entries in slot order. Mutating the table during
// iteration is not supported; callers that remove entries mid-scan should
// iterate a snapshot of IDs instead.
func (t *Table[T]) All() iter.Seq2[EntityID, *T] {
	return func(yield func(EntityID, *T) bool) {
		for blockIdx := range t.blocks {
			for slotIdx := 0; slotIdx < tableBlockSize; slotIdx++ {
				gen := t.gens[blockIdx][slotIdx]
				if gen == 0 {
					continue
				}
				id := NewEntityID(gen, uint32(blockIdx*tableBlockSize+slotIdx))
				if !yield(id, &t.blocks[blockIdx][slotIdx]) {
					return
				}
			}
		}
	}
}
