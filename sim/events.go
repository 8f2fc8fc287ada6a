package sim

import "github.com/threadbaregames/lash/vec"

// EventType identifies an outbound notification produced by the core.
type EventType int

const (
	// EventEnemySpawned is emitted by the spawner after an enemy is created.
	EventEnemySpawned EventType = iota + 1

	// EventEntityDefeated is emitted when damage drops an entity's health to
	// zero, carrying its last known position and kind.
	EventEntityDefeated

	// EventProjectileHit is emitted when a projectile strikes a target.
	EventProjectileHit

	// EventImpact is the visual-impact hook: emitted for every damage
	// application, including zero damage, without implying a defeat.
	EventImpact
)

func (t EventType) String() string {
	switch t {
	case EventEnemySpawned:
		return "enemy-spawned"
	case EventEntityDefeated:
		return "entity-defeated"
	case EventProjectileHit:
		return "projectile-hit"
	case EventImpact:
		return "impact"
	}
	return "unknown"
}

// Event is a notification consumed by external collaborators (rendering,
// audio, score keeping). The core never calls those directly; the driver
// drains the queue after each tick.
type Event struct {
	Type   EventType
	Entity EntityID
	Kind   string
	Pos    vec.Vec2

	// Damage is set on EventProjectileHit and EventImpact.
	Damage int
	// EnemyType is set on EventEnemySpawned.
	EnemyType string
}

// eventQueueCap bounds the pending queue; on overflow the oldest events are
// dropped, since a renderer that is ticks behind has no use for them.
const eventQueueCap = 1024

// Events is the outbound FIFO queue. Single-producer, single-consumer,
// within one logical thread; no locking.
type Events struct {
	pending []Event
}

// NewEvents creates an empty queue.
func NewEvents() *Events {
	return &Events{pending: make([]Event, 0, 64)}
}

// Push appends an event, dropping the oldest entries if the queue is full.
func (q *Events) Push(e Event) {
	if len(q.pending) >= eventQueueCap {
		copy(q.pending, q.pending[1:])
		q.pending = q.pending[:len(q.pending)-1]
	}
	q.pending = append(q.pending, e)
}

// Drain returns all pending events in FIFO order and empties the queue.
func (q *Events) Drain() []Event {
	if len(q.pending) == 0 {
		return nil
	}
	out := make([]Event, len(q.pending))
	copy(out, q.pending)
	q.pending = q.pending[:0]
	return out
}

// Len returns the number of pending events.
func (q *Events) Len() int {
	return len(q.pending)
}
