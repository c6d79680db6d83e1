package ui

import (
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/blobs/camera"
	"github.com/pthm-cable/blobs/game"
)

// particle is a short-lived visual marker in world coordinates.
type particle struct {
	x, y          float64
	vx, vy        float64
	life, maxLife int32
	size          float64
	kind          game.EffectKind
}

// Effects turns frame effects into fading particle bursts.
// Particles never feed back into the simulation.
type Effects struct {
	particles    []particle
	maxParticles int
	rng          *rand.Rand
	lastTick     uint64
}

// NewEffects creates an effect system holding at most maxParticles.
func NewEffects(maxParticles int, seed int64) *Effects {
	return &Effects{
		particles:    make([]particle, 0, maxParticles),
		maxParticles: maxParticles,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Consume emits bursts for a frame's effects. A frame is only consumed once.
func (e *Effects) Consume(f *game.Frame) {
	if f.Tick == e.lastTick {
		return
	}
	e.lastTick = f.Tick
	for _, fx := range f.Effects {
		switch fx.Kind {
		case game.EffectFeed:
			e.burst(fx, 4, 0.3, 20)
		case game.EffectDeath:
			e.burst(fx, 10, 0.4, 60)
		case game.EffectSwallow:
			e.burst(fx, 14, 0.8, 35)
		}
	}
}

func (e *Effects) burst(fx game.Effect, count int, speed float64, life int32) {
	for range count {
		if len(e.particles) >= e.maxParticles {
			return
		}
		angle := e.rng.Float64() * 2 * math.Pi
		v := speed * (0.5 + e.rng.Float64())
		l := life + e.rng.Int31n(life/2+1)
		e.particles = append(e.particles, particle{
			x:       fx.X + (e.rng.Float64()-0.5)*fx.Size,
			y:       fx.Y + (e.rng.Float64()-0.5)*fx.Size,
			vx:      math.Cos(angle) * v,
			vy:      math.Sin(angle) * v,
			life:    l,
			maxLife: l,
			size:    1.5 + e.rng.Float64(),
			kind:    fx.Kind,
		})
	}
}

// Update ages and moves particles, compacting dead ones out in place.
func (e *Effects) Update() {
	alive := 0
	for i := range e.particles {
		p := &e.particles[i]
		p.life--
		if p.life <= 0 {
			continue
		}
		switch p.kind {
		case game.EffectDeath:
			// Sink
			p.vy += 0.02
		case game.EffectFeed:
			p.vy -= 0.01
		}
		p.vx *= 0.95
		p.vy *= 0.95
		p.x += p.vx
		p.y += p.vy
		e.particles[alive] = *p
		alive++
	}
	e.particles = e.particles[:alive]
}

// Count returns the number of live particles.
func (e *Effects) Count() int {
	return len(e.particles)
}

// Draw renders visible particles, fading them out over their life.
func (e *Effects) Draw(cam *camera.Camera) {
	for i := range e.particles {
		p := &e.particles[i]
		if !cam.IsVisible(p.x, p.y, p.size) {
			continue
		}
		sx, sy := cam.WorldToScreen(p.x, p.y)
		c := effectColor(p.kind)
		c.A = uint8(float64(c.A) * float64(p.life) / float64(p.maxLife))
		r := float32(max(p.size*cam.Zoom, 1))
		rl.DrawCircleV(rl.Vector2{X: float32(sx), Y: float32(sy)}, r, c)
	}
}

func effectColor(k game.EffectKind) rl.Color {
	switch k {
	case game.EffectFeed:
		return rl.Color{R: 140, G: 230, B: 120, A: 200}
	case game.EffectSwallow:
		return rl.Color{R: 240, G: 120, B: 60, A: 220}
	default:
		return rl.Color{R: 200, G: 200, B: 210, A: 180}
	}
}
