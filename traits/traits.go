// Package traits draws blob attributes from weighted archetypes.
package traits

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/config"
)

// Sample is one freshly drawn set of blob attributes.
type Sample struct {
	Radius float64
	Genome components.Genome
}

// Generator samples blob traits. All randomness comes from the supplied source,
// so two generators fed identically seeded sources produce identical sequences.
type Generator struct {
	archetypes []config.ArchetypeConfig
	picker     distuv.Categorical

	background      components.HSV
	camouflageScale float64

	rng *rand.Rand
}

// NewGenerator builds a generator over the configured archetypes.
func NewGenerator(cfg config.TraitsConfig, rng *rand.Rand) (*Generator, error) {
	if rng == nil {
		return nil, fmt.Errorf("traits: nil random source")
	}
	if len(cfg.Archetypes) == 0 {
		return nil, &config.ConfigError{Field: "traits.archetypes", Reason: "at least one archetype is required"}
	}

	g := &Generator{
		archetypes:      cfg.Archetypes,
		background:      components.HSV{H: cfg.Background.H, S: cfg.Background.S, V: cfg.Background.V},
		camouflageScale: cfg.CamouflageScale,
		rng:             rng,
	}
	weights := make([]float64, len(cfg.Archetypes))
	total := 0.0
	for i, arch := range cfg.Archetypes {
		if arch.Weight < 0 || math.IsNaN(arch.Weight) || math.IsInf(arch.Weight, 0) {
			return nil, &config.ConfigError{
				Field:  fmt.Sprintf("traits.archetypes[%d].weight", i),
				Reason: "must be non-negative and finite",
			}
		}
		weights[i] = arch.Weight
		total += arch.Weight
	}
	if !(total > 0) {
		return nil, &config.ConfigError{Field: "traits.archetypes", Reason: "weights must sum to a positive value"}
	}
	// Only the CDF is used; draws come from rng.
	g.picker = distuv.NewCategorical(weights, nil)
	return g, nil
}

// Sample draws an archetype by weight, then every attribute uniformly from that archetype's ranges.
func (g *Generator) Sample() Sample {
	idx := g.pickArchetype()
	arch := &g.archetypes[idx]

	genome := components.Genome{
		Speed:         g.uniform(arch.Speed),
		RotationSpeed: g.uniform(arch.RotationSpeed),
		Sight:         g.uniform(arch.Sight),
		FOV:           g.uniform(arch.FOV) * math.Pi / 180,
		Attack:        g.uniform(arch.Attack),
		Defence:       g.uniform(arch.Defence),
		HungerRate:    g.uniform(arch.HungerRate),
		Fear:          g.uniform(arch.Fear),
		Attraction:    g.uniform(arch.Attraction),
		Repulsion:     g.uniform(arch.Repulsion),
		Color:         g.color(arch.Color),
		FavoriteColor: g.color(arch.FavoriteColor),
		Archetype:     idx,
	}
	genome.Camouflage = Camouflage(genome.Color, g.background, g.camouflageScale)

	return Sample{
		Radius: g.uniform(arch.Radius),
		Genome: genome,
	}
}

// Archetype returns the configured archetype at idx.
func (g *Generator) Archetype(idx int) config.ArchetypeConfig {
	return g.archetypes[idx]
}

// Camouflage returns the chance in [0, scale] that a blob of color c goes
// unseen against background. Only positive similarity hides.
func Camouflage(c, background components.HSV, scale float64) float64 {
	s := c.Similarity(background)
	if s <= 0 {
		return 0
	}
	return s * scale
}

// Similarity compares two colors in [-1, 1].
func Similarity(a, b components.HSV) float64 {
	return a.Similarity(b)
}

func (g *Generator) pickArchetype() int {
	u := g.rng.Float64()
	last := len(g.archetypes) - 1
	for i := range last {
		if u < g.picker.CDF(float64(i)) {
			return i
		}
	}
	return last
}

func (g *Generator) uniform(r config.Range) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + g.rng.Float64()*(r.Max-r.Min)
}

// hue samples a hue in degrees. A range with Min > Max wraps through 360.
func (g *Generator) hue(r config.Range) float64 {
	span := r.Max - r.Min
	if r.Min > r.Max {
		span = 360 - r.Min + r.Max
	}
	h := math.Mod(r.Min+g.rng.Float64()*span, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func (g *Generator) color(r config.HSVRange) components.HSV {
	return components.HSV{
		H: g.hue(r.Hue),
		S: clamp01(g.uniform(r.Saturation)),
		V: clamp01(g.uniform(r.Value)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
