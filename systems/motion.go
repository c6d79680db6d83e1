package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/config"
)

// Agent is a read-only copy of a blob taken before steering.
type Agent struct {
	ID       uint64
	X, Y     float64
	Radius   float64
	Age      float64
	Genome   components.Genome
	Behavior components.Behavior
}

// Steer is the result of one steering computation.
type Steer struct {
	Heading float64
	Speed   float64
	Mode    components.Mode
}

// Locator finds the current position of an entity by id.
type Locator func(id uint64) (x, y float64, ok bool)

// Steering turns perception into a heading and speed. It holds no per-tick
// state and is safe to call from several goroutines.
type Steering struct {
	cfg    config.SteeringConfig
	wander *Wander
}

// NewSteering creates a steering system.
func NewSteering(cfg config.SteeringConfig, wander *Wander) *Steering {
	return &Steering{cfg: cfg, wander: wander}
}

// Compute picks the desired direction for a blob and turns toward it,
// limited by the blob's rotation speed.
func (s *Steering) Compute(a *Agent, neighbors []Neighbor, seen []Seen, locate Locator, dt float64) Steer {
	g := &a.Genome
	b := &a.Behavior

	var desired mgl64.Vec2
	mode := components.ModeRoaming
	speed := g.Speed

	if b.FleeTimer > 0 && b.FleeFrom != 0 {
		if x, y, ok := locate(b.FleeFrom); ok {
			away := mgl64.Vec2{a.X - x, a.Y - y}
			if away.Len() > 0 {
				desired = away.Normalize()
			}
			mode = components.ModeFleeing
			speed = g.Speed * s.cfg.FleeSpeedBoost
		}
	}
	if mode == components.ModeRoaming && b.PursueTimer > 0 && b.Target != 0 {
		if x, y, ok := locate(b.Target); ok {
			toward := mgl64.Vec2{x - a.X, y - a.Y}
			if toward.Len() > 0 {
				desired = toward.Normalize()
			}
			mode = components.ModePursuing
			speed = g.Speed * s.cfg.PursueSpeedMult
		}
	}
	if mode == components.ModeRoaming {
		desired = s.colorDirection(a, neighbors, seen)
	}

	target := b.Heading
	if desired.Len() > 0 {
		target = math.Atan2(desired.Y(), desired.X())
	}
	if mode == components.ModeRoaming && s.wander != nil {
		target += s.wander.Offset(b.WanderSeed, a.Age) * s.cfg.WanderStrength
	}

	maxTurn := g.RotationSpeed * dt
	turn := clamp(normalizeAngle(target-b.Heading), -maxTurn, maxTurn)

	return Steer{
		Heading: normalizeAngle(b.Heading + turn),
		Speed:   speed,
		Mode:    mode,
	}
}

// colorDirection averages unit directions to visible entities weighted by how
// much the blob likes their color. Liked colors attract, disliked ones repel.
func (s *Steering) colorDirection(a *Agent, neighbors []Neighbor, seen []Seen) mgl64.Vec2 {
	g := &a.Genome
	var sum mgl64.Vec2
	var weight float64
	for _, n := range neighbors {
		if n.DistSq == 0 || !InFieldOfView(a.Behavior.Heading, g.FOV, n.DX, n.DY) {
			continue
		}
		v := g.FavoriteColor.Similarity(seen[n.Index].Color)
		if v > 0 {
			v *= g.Attraction
		} else {
			v *= g.Repulsion
		}
		dir := mgl64.Vec2{n.DX, n.DY}.Mul(1 / math.Sqrt(n.DistSq))
		sum = sum.Add(dir.Mul(v))
		weight += math.Abs(v)
	}
	if weight == 0 || sum.Len() == 0 {
		return mgl64.Vec2{}
	}
	return sum.Mul(s.cfg.ColorWeight / weight)
}

// Integrate advances a position along heading and keeps it inside the plane.
// A blob hitting a wall is clamped to it and its heading is reflected.
func Integrate(pos *components.Position, vel *components.Velocity, heading *float64, speed, dt, width, height float64) {
	vel.X = math.Cos(*heading) * speed
	vel.Y = math.Sin(*heading) * speed
	pos.X += vel.X * dt
	pos.Y += vel.Y * dt

	reflectX, reflectY := false, false
	if pos.X < 0 {
		pos.X = 0
		reflectX = true
	} else if pos.X > width {
		pos.X = width
		reflectX = true
	}
	if pos.Y < 0 {
		pos.Y = 0
		reflectY = true
	} else if pos.Y > height {
		pos.Y = height
		reflectY = true
	}
	if reflectX {
		*heading = normalizeAngle(math.Pi - *heading)
		vel.X = -vel.X
	}
	if reflectY {
		*heading = normalizeAngle(-*heading)
		vel.Y = -vel.Y
	}
}

// Metabolize drains energy and tracks starvation. It returns true when the
// blob has been at zero energy for longer than grace and has died.
func Metabolize(v *components.Vitals, hungerRate, grace, dt float64) bool {
	v.Age += dt
	v.Energy -= hungerRate * dt
	if v.Energy > 0 {
		v.Starving = 0
		return false
	}
	v.Energy = 0
	v.Starving += dt
	if v.Starving >= grace {
		v.Health = 0
		return true
	}
	return false
}

// TickTimers counts down flee and pursue timers and clears expired targets.
func TickTimers(b *components.Behavior, dt float64) {
	if b.FleeTimer > 0 {
		b.FleeTimer = math.Max(0, b.FleeTimer-dt)
		if b.FleeTimer == 0 {
			b.FleeFrom = 0
		}
	}
	if b.PursueTimer > 0 {
		b.PursueTimer = math.Max(0, b.PursueTimer-dt)
		if b.PursueTimer == 0 {
			b.Target = 0
		}
	}
}
