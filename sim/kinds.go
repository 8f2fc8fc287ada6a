package sim

// Kind tags used by the core subsystems. Callers may register entities of
// other kinds; these are the ones with built-in behavior.
const (
	KindPlayer     = "player"
	KindEnemy      = "enemy"
	KindProjectile = "projectile"
	KindSegment    = "segment"
)
