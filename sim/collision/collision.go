// Package collision evaluates registered kind-pair rules against current
// entity positions, once per tick, after physics has settled positions.
package collision

import (
	"math"

	"go.uber.org/zap"

	"github.com/threadbaregames/lash/sim"
	"github.com/threadbaregames/lash/vec"
)

// Mode selects the collision test for a rule. Grid-based entities compare
// cells exactly; continuous-space entities use a circular distance test.
type Mode uint8

const (
	ModeCell Mode = iota
	ModeRadius
)

// Handler reacts to a colliding pair. Handlers are the sole side effect
// channel: they apply damage, remove entities, or emit events. A handler may
// remove either argument; the engine iterates snapshots and tolerates it.
type Handler func(a, b sim.EntityID)

type rule struct {
	kindA, kindB string
	mode         Mode
	radius       float64
	handler      Handler
}

// Engine holds the registered rules. Rules are registered once, at setup,
// and evaluated every tick against the live cross-product of the two kinds.
type Engine struct {
	reg   *sim.Registry
	rules []rule
	log   *zap.Logger
}

// NewEngine creates a collision engine over the registry.
func NewEngine(reg *sim.Registry, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{reg: reg, log: log}
}

// Register adds a rule for the (kindA, kindB) pair. radius is only used by
// ModeRadius.
func (e *Engine) Register(kindA, kindB string, mode Mode, radius float64, h Handler) {
	e.rules = append(e.rules, rule{
		kindA:   kindA,
		kindB:   kindB,
		mode:    mode,
		radius:  radius,
		handler: h,
	})
}

// Update evaluates every rule. Both kind lists are snapshotted before the
// pairwise scan so a handler removing entities cannot corrupt iteration;
// entities removed mid-scan are skipped on their next appearance.
func (e *Engine) Update() {
	for _, r := range e.rules {
		as := e.reg.ByKind(r.kindA)
		bs := e.reg.ByKind(r.kindB)

		for _, a := range as {
			ea, ok := e.reg.Get(a)
			if !ok {
				continue
			}
			posA := ea.Pos

			for _, b := range bs {
				if a == b {
					continue
				}
				eb, ok := e.reg.Get(b)
				if !ok {
					continue
				}
				if !hit(posA, eb.Pos, r.mode, r.radius) {
					continue
				}
				r.handler(a, b)
				if !e.reg.Alive(a) {
					break // handler removed a; remaining pairs are moot
				}
				// a may have been repositioned by the handler
				if ea, ok = e.reg.Get(a); ok {
					posA = ea.Pos
				}
			}
		}
	}
}

func hit(a, b vec.Vec2, mode Mode, radius float64) bool {
	switch mode {
	case ModeCell:
		// Floor, not truncate: positions can be transiently negative, and
		// truncation folds (-1,0) into cell 0.
		return math.Floor(a.X) == math.Floor(b.X) && math.Floor(a.Y) == math.Floor(b.Y)
	case ModeRadius:
		return vec.DistSq(a, b) <= radius*radius
	}
	return false
}
