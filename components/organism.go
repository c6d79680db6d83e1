package components

// Mode is the coarse motion state of a blob, recomputed every tick from its timers.
type Mode uint8

const (
	ModeRoaming Mode = iota
	ModeFleeing
	ModePursuing
	ModeHeld
)

// Vitals holds a blob's health and energy state.
type Vitals struct {
	Health    float64
	MaxHealth float64
	Energy    float64
	MaxEnergy float64
	Starving  float64 // seconds spent at zero energy
	Age       float64 // seconds alive
}

// HealthFraction returns health as a fraction of max health in [0, 1].
func (v *Vitals) HealthFraction() float64 {
	if v.MaxHealth <= 0 {
		return 0
	}
	f := v.Health / v.MaxHealth
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// EnergyFraction returns energy as a fraction of max energy in [0, 1].
func (v *Vitals) EnergyFraction() float64 {
	if v.MaxEnergy <= 0 {
		return 0
	}
	f := v.Energy / v.MaxEnergy
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Dead reports whether health has been exhausted.
func (v *Vitals) Dead() bool {
	return v.Health <= 0
}

// Genome holds the immutable per-blob attributes drawn at spawn.
type Genome struct {
	Speed         float64 // world units per second
	RotationSpeed float64 // radians per second
	Sight         float64 // perception distance
	FOV           float64 // full field of view in radians
	Attack        float64
	Defence       float64 // fraction of incoming damage blocked, [0, 1]
	HungerRate    float64 // energy drained per second
	Fear          float64 // [0, 1], willingness to flee from stronger blobs
	Attraction    float64 // weight for liked colors
	Repulsion     float64 // weight for disliked colors
	Color         HSV
	FavoriteColor HSV
	Camouflage    float64 // [0, 1], chance of going unseen
	Archetype     int
}

// Behavior holds the mutable steering state of a blob.
type Behavior struct {
	Mode        Mode
	Heading     float64 // radians
	FleeFrom    uint64
	FleeTimer   float64
	Target      uint64
	PursueTimer float64
	Held        bool
	HoldX       float64
	HoldY       float64
	WanderSeed  float64 // per-blob offset into the wander noise
}
