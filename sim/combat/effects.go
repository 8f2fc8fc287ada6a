package combat

import (
	"time"

	"github.com/kamstrup/intmap"

	"github.com/threadbaregames/lash/sim"
)

// Effect is a time-bounded status effect (slow, stun, ...). The store is a
// stable extension point: the core expires effects every tick but no
// built-in system applies them; callers and future mechanics do.
type Effect struct {
	Kind      string
	Magnitude float64
	ExpiresAt time.Time
}

type effectStore struct {
	byEntity *intmap.Map[sim.EntityID, []Effect]
	order    []sim.EntityID
}

func newEffectStore() *effectStore {
	return &effectStore{
		byEntity: intmap.New[sim.EntityID, []Effect](32),
	}
}

// ApplyEffect attaches a status effect to an entity until now+duration.
func (r *Resolver) ApplyEffect(id sim.EntityID, kind string, magnitude float64, duration time.Duration) {
	if !r.reg.Alive(id) {
		return
	}
	s := r.effects
	effects, ok := s.byEntity.Get(id)
	if !ok {
		s.order = append(s.order, id)
	}
	s.byEntity.Put(id, append(effects, Effect{
		Kind:      kind,
		Magnitude: magnitude,
		ExpiresAt: r.clock().Add(duration),
	}))
}

// ActiveEffects returns the entity's unexpired effects.
func (r *Resolver) ActiveEffects(id sim.EntityID) []Effect {
	effects, _ := r.effects.byEntity.Get(id)
	return effects
}

// expire drops effects whose time has elapsed and prunes entries for
// entities that no longer exist.
func (s *effectStore) expire(now time.Time) {
	live := s.order[:0]
	for _, id := range s.order {
		effects, ok := s.byEntity.Get(id)
		if !ok {
			continue
		}
		kept := effects[:0]
		for _, e := range effects {
			if now.Before(e.ExpiresAt) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			s.byEntity.Del(id)
			continue
		}
		s.byEntity.Put(id, kept)
		live = append(live, id)
	}
	s.order = live
}

func (s *effectStore) purge(id sim.EntityID) {
	s.byEntity.Del(id)
}
