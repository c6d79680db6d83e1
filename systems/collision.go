package systems

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/config"
)

// Contact is a confirmed circle overlap. Normal points from A to B.
type Contact struct {
	A, B         uint64
	KindA, KindB components.Kind
	Normal       mgl64.Vec2
	Depth        float64 // rA + rB - dist, zero when exactly touching
	Dist         float64
}

// Touching reports whether two circles overlap or touch.
func Touching(ax, ay, ar, bx, by, br float64) bool {
	r := ar + br
	return distanceSq(ax, ay, bx, by) <= r*r
}

// TestPair runs the exact circle test on a candidate pair.
// Coincident centers get the +X normal.
func TestPair(a, b Collider) (Contact, bool) {
	if !Touching(a.X, a.Y, a.Radius, b.X, b.Y, b.Radius) {
		return Contact{}, false
	}
	if a.ID > b.ID {
		a, b = b, a
	}
	d := mgl64.Vec2{b.X - a.X, b.Y - a.Y}
	dist := d.Len()
	normal := mgl64.Vec2{1, 0}
	if dist > 0 {
		normal = d.Mul(1 / dist)
	}
	return Contact{
		A:      a.ID,
		B:      b.ID,
		KindA:  a.Kind,
		KindB:  b.Kind,
		Normal: normal,
		Depth:  math.Max(0, a.Radius+b.Radius-dist),
		Dist:   dist,
	}, true
}

// NarrowPhase appends the contacts among pairs to dst, preserving pair order.
// Pairs naming ids missing from colliders are dropped.
func NarrowPhase(dst []Contact, pairs []Pair, colliders map[uint64]Collider) []Contact {
	for _, p := range pairs {
		a, okA := colliders[p.A]
		b, okB := colliders[p.B]
		if !okA || !okB {
			continue
		}
		if c, ok := TestPair(a, b); ok {
			dst = append(dst, c)
		}
	}
	return dst
}

// BlobState is the resolver's mutable view of a live blob.
type BlobState struct {
	ID       uint64
	Pos      *components.Position
	Body     *components.Body
	Vitals   *components.Vitals
	Genome   *components.Genome
	Behavior *components.Behavior
}

// FoodState is the resolver's mutable view of a food particle.
type FoodState struct {
	ID        uint64
	Pos       *components.Position
	Body      *components.Body
	Nutrition *components.Nutrition
}

// Participants indexes the entities a resolution pass may touch.
type Participants struct {
	Blobs map[uint64]*BlobState
	Foods map[uint64]*FoodState
}

// NewParticipants creates empty lookup tables.
func NewParticipants() *Participants {
	return &Participants{
		Blobs: make(map[uint64]*BlobState),
		Foods: make(map[uint64]*FoodState),
	}
}

// Reset empties the tables for reuse.
func (p *Participants) Reset() {
	clear(p.Blobs)
	clear(p.Foods)
}

// DeathCause says how a blob left the world.
type DeathCause uint8

const (
	DeathConverted DeathCause = iota // killed, body becomes food
	DeathSwallowed                   // killed and eaten whole, no food left
	DeathStarved                     // ran out of energy, body becomes food
)

func (c DeathCause) String() string {
	switch c {
	case DeathConverted:
		return "killed"
	case DeathSwallowed:
		return "swallowed"
	case DeathStarved:
		return "starved"
	}
	return "unknown"
}

// Death records a blob killed this tick.
type Death struct {
	ID        uint64
	Cause     DeathCause
	Killer    uint64
	X, Y      float64
	Radius    float64
	Nutrition float64 // value of the food left behind, zero when swallowed
}

// Outcome lists everything a resolution pass changed structurally.
type Outcome struct {
	Eaten       []uint64 // food ids consumed
	EatenBy     []uint64 // blob id for each entry of Eaten
	Deaths      []Death
	Feeds       int
	Fights      int
	Flees       int
	Separations int
}

// Reset empties the outcome for reuse.
func (o *Outcome) Reset() {
	o.Eaten = o.Eaten[:0]
	o.EatenBy = o.EatenBy[:0]
	o.Deaths = o.Deaths[:0]
	o.Feeds = 0
	o.Fights = 0
	o.Flees = 0
	o.Separations = 0
}

// Resolver applies interaction rules to contacts in order.
type Resolver struct {
	combat        config.CombatConfig
	separation    config.SeparationConfig
	food          config.FoodConfig
	width, height float64

	eaten map[uint64]bool
	dead  map[uint64]bool
}

// NewResolver creates a resolver for a plane of the configured size.
func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		combat:     cfg.Combat,
		separation: cfg.Separation,
		food:       cfg.Food,
		width:      cfg.Derived.WorldW,
		height:     cfg.Derived.WorldH,
		eaten:      make(map[uint64]bool),
		dead:       make(map[uint64]bool),
	}
}

// Resolve walks contacts in order and mutates participants. Contacts are
// expected sorted by (A, B), which makes the lowest blob id win shared food.
// The rng drives perception rolls only.
func (r *Resolver) Resolve(contacts []Contact, p *Participants, dt float64, rng *rand.Rand, out *Outcome) {
	clear(r.eaten)
	clear(r.dead)

	for i := range contacts {
		c := &contacts[i]
		switch {
		case c.KindA == components.KindBlob && c.KindB == components.KindBlob:
			r.blobBlob(c, p, dt, rng, out)
		case c.KindA == components.KindBlob && c.KindB == components.KindFood:
			r.blobFood(c.A, c.B, p, out)
		case c.KindA == components.KindFood && c.KindB == components.KindBlob:
			r.blobFood(c.B, c.A, p, out)
		case c.KindA == components.KindFood && c.KindB == components.KindFood:
			// Excluded by the default matrix; nothing to do if enabled.
		}
	}
}

func (r *Resolver) alive(b *BlobState) bool {
	return !r.dead[b.ID] && !b.Vitals.Dead()
}

func (r *Resolver) blobFood(blobID, foodID uint64, p *Participants, out *Outcome) {
	blob, ok := p.Blobs[blobID]
	if !ok || !r.alive(blob) {
		return
	}
	food, ok := p.Foods[foodID]
	if !ok || r.eaten[foodID] {
		return
	}

	blob.Vitals.Energy = math.Min(blob.Vitals.Energy+food.Nutrition.Value, blob.Vitals.MaxEnergy)
	r.eaten[foodID] = true
	out.Eaten = append(out.Eaten, foodID)
	out.EatenBy = append(out.EatenBy, blobID)
	out.Feeds++
}

// Strength scores a blob for fights. It grows with attack, size and health.
func (r *Resolver) Strength(b *BlobState) float64 {
	size := math.Pow(b.Body.Radius/r.combat.RefRadius, r.combat.SizeWeight)
	return b.Genome.Attack * size * b.Vitals.HealthFraction() * (0.5 + 0.5*b.Vitals.EnergyFraction())
}

func (r *Resolver) blobBlob(c *Contact, p *Participants, dt float64, rng *rand.Rand, out *Outcome) {
	a, okA := p.Blobs[c.A]
	b, okB := p.Blobs[c.B]
	if !okA || !okB || !r.alive(a) || !r.alive(b) {
		return
	}

	kin := a.Genome.Color.Similarity(b.Genome.Color) >= r.combat.KinSimilarity
	sa, sb := r.Strength(a), r.Strength(b)
	if kin || math.Abs(sa-sb) <= r.combat.TieMargin*math.Max(sa, sb) {
		r.separate(a, b, out)
		return
	}

	strong, weak := a, b
	sStrong, sWeak := sa, sb
	if sb > sa {
		strong, weak = b, a
		sStrong, sWeak = sb, sa
	}

	if r.detects(weak, strong, rng) && weak.Genome.Fear >= 1-sWeak/sStrong {
		weak.Behavior.FleeFrom = strong.ID
		weak.Behavior.FleeTimer = r.combat.FleeDuration
		out.Flees++
		r.separate(a, b, out)
		return
	}

	damage := strong.Genome.Attack * r.combat.DamageScale * dt * (1 - clamp01(weak.Genome.Defence))
	weak.Vitals.Health -= damage
	strong.Behavior.Target = weak.ID
	strong.Behavior.PursueTimer = r.combat.PursueDuration
	out.Fights++

	if weak.Vitals.Dead() {
		r.kill(strong, weak, out)
		return
	}
	r.separate(a, b, out)
}

// detects reports whether observer notices other: other must lie inside the
// observer's field of view and survive a camouflage roll.
func (r *Resolver) detects(observer, other *BlobState, rng *rand.Rand) bool {
	if !InFieldOfView(observer.Behavior.Heading, observer.Genome.FOV,
		other.Pos.X-observer.Pos.X, other.Pos.Y-observer.Pos.Y) {
		return false
	}
	return rng.Float64() >= other.Genome.Camouflage
}

// InFieldOfView reports whether offset (dx, dy) lies within fov radians centered on heading.
// A zero offset is always visible.
func InFieldOfView(heading, fov, dx, dy float64) bool {
	if fov >= 2*math.Pi || (dx == 0 && dy == 0) {
		return true
	}
	bearing := normalizeAngle(math.Atan2(dy, dx) - heading)
	return math.Abs(bearing) <= fov/2
}

// CorpseNutrition is the food value of a dead blob's body plus its stored energy.
func CorpseNutrition(b *BlobState, food config.FoodConfig) float64 {
	v := food.CorpseNutritionPerArea*b.Body.Area() + math.Max(0, b.Vitals.Energy)
	if food.MaxCorpseNutrition > 0 {
		v = math.Min(v, food.MaxCorpseNutrition)
	}
	return v
}

func (r *Resolver) kill(winner, loser *BlobState, out *Outcome) {
	r.dead[loser.ID] = true
	nutrition := CorpseNutrition(loser, r.food)
	d := Death{
		ID:     loser.ID,
		Killer: winner.ID,
		X:      loser.Pos.X,
		Y:      loser.Pos.Y,
		Radius: loser.Body.Radius,
	}

	gain := nutrition * r.combat.WinnerShare
	if r.combat.SwallowRatio > 0 && winner.Body.Radius >= r.combat.SwallowRatio*loser.Body.Radius {
		d.Cause = DeathSwallowed
		gain = nutrition
	} else {
		d.Cause = DeathConverted
		d.Nutrition = nutrition - gain
	}
	winner.Vitals.Energy = math.Min(winner.Vitals.Energy+gain, winner.Vitals.MaxEnergy)
	winner.Behavior.Target = 0
	winner.Behavior.PursueTimer = 0

	out.Deaths = append(out.Deaths, d)
}

// separate pushes two blobs apart along their current center line, split by mass.
// Geometry is re-read here because earlier contacts may already have moved them.
func (r *Resolver) separate(a, b *BlobState, out *Outcome) {
	d := mgl64.Vec2{b.Pos.X - a.Pos.X, b.Pos.Y - a.Pos.Y}
	dist := d.Len()
	depth := a.Body.Radius + b.Body.Radius - dist
	if depth < 0 {
		return
	}
	normal := mgl64.Vec2{1, 0}
	if dist > 0 {
		normal = d.Mul(1 / dist)
	}

	correction := depth*r.separation.Stiffness + r.separation.Slop
	ma, mb := a.Body.Mass(), b.Body.Mass()
	total := ma + mb
	if total <= 0 {
		return
	}

	moveA := normal.Mul(-correction * mb / total)
	moveB := normal.Mul(correction * ma / total)

	// Whatever a wall takes from one body's share goes to the other.
	lostA := moveA.Sub(r.shift(a.Pos, moveA))
	lostB := moveB.Sub(lostA).Sub(r.shift(b.Pos, moveB.Sub(lostA)))
	if lostB.Len() > 0 {
		r.shift(a.Pos, lostB.Mul(-1))
	}
	out.Separations++
}

// shift moves pos by d, clamped to the plane, and returns the applied move.
func (r *Resolver) shift(pos *components.Position, d mgl64.Vec2) mgl64.Vec2 {
	x := clamp(pos.X+d.X(), 0, r.width)
	y := clamp(pos.Y+d.Y(), 0, r.height)
	applied := mgl64.Vec2{x - pos.X, y - pos.Y}
	pos.X, pos.Y = x, y
	return applied
}
