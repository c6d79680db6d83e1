package systems

import (
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Perlin parameters for wander noise.
const (
	wanderAlpha = 2.0
	wanderBeta  = 2.0
	wanderN     = 3
)

// Wander produces smooth per-blob heading jitter over time.
type Wander struct {
	noise     *perlin.Perlin
	frequency float64
}

// NewWander creates a wander source. Frequency is noise cycles per second.
func NewWander(seed int64, frequency float64) *Wander {
	return &Wander{
		noise:     perlin.NewPerlin(wanderAlpha, wanderBeta, wanderN, seed),
		frequency: frequency,
	}
}

// Offset returns a heading offset in roughly [-1, 1] radians for a blob with
// the given noise offset at the given age.
func (w *Wander) Offset(seed, age float64) float64 {
	return w.noise.Noise1D(seed + age*w.frequency)
}

// FertilityField biases where food appears. Fertile patches come from
// normalized simplex noise, with a floor so barren ground still grows some food.
type FertilityField struct {
	noise         opensimplex.Noise
	scale         float64
	floor         float64
	attempts      int
	width, height float64
}

// NewFertilityField creates a field over a width x height plane.
func NewFertilityField(seed int64, scale, floor float64, attempts int, width, height float64) *FertilityField {
	if attempts < 1 {
		attempts = 1
	}
	return &FertilityField{
		noise:    opensimplex.NewNormalized(seed),
		scale:    scale,
		floor:    floor,
		attempts: attempts,
		width:    width,
		height:   height,
	}
}

// At returns the acceptance probability at (x, y) in [floor, 1].
func (f *FertilityField) At(x, y float64) float64 {
	n := f.noise.Eval2(x*f.scale, y*f.scale)
	return f.floor + (1-f.floor)*clamp01(n)
}

// Sample draws a position by rejection against the field. If every attempt
// is rejected the last candidate is used.
func (f *FertilityField) Sample(rng *rand.Rand) (x, y float64) {
	for i := 0; i < f.attempts; i++ {
		x = rng.Float64() * f.width
		y = rng.Float64() * f.height
		if rng.Float64() < f.At(x, y) {
			return x, y
		}
	}
	return x, y
}
