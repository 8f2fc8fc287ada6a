package combat

import (
	"math"

	"github.com/threadbaregames/lash/sim"
)

// SegmentState marks a body segment as currently damaging. The collision
// layer reads it to decide whether a segment-enemy contact deals damage.
type SegmentState struct {
	Damaging bool
	Damage   int
}

// SegmentStateOf returns the whip state of a body segment.
func (r *Resolver) SegmentStateOf(id sim.EntityID) (SegmentState, bool) {
	s, ok := r.segments.Get(id)
	if !ok {
		return SegmentState{}, false
	}
	return *s, true
}

// updateWhip recomputes whip-damage state for the player's body segments.
// For each pair of consecutive segments (the head excluded), the vector
// difference between a segment and its predecessor serves as a velocity
// estimate. The positional delta is a deliberate proxy for "whip crack"
// speed, not a simulated elastic rope; damage thresholds are tuned against
// it, so it must not be replaced with true per-frame velocity.
func (r *Resolver) updateWhip() {
	segs := r.reg.ByKind(sim.KindSegment)

	for i := 1; i < len(segs); i++ {
		id := segs[i]
		cur, ok := r.reg.Get(id)
		if !ok {
			continue
		}
		prev, ok := r.reg.Get(segs[i-1])
		if !ok {
			continue
		}

		speed := cur.Pos.Sub(prev.Pos).Len()
		if speed > r.cfg.WhipThreshold {
			r.segments.Put(id, SegmentState{
				Damaging: true,
				Damage:   int(math.Floor(float64(r.cfg.WhipBaseDamage) * speed)),
			})
		} else {
			r.segments.Put(id, SegmentState{})
		}
	}
}
