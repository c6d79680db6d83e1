package main

import (
	"github.com/pthm-cable/blobs/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
// Blob spawning is locked off during tuning so survival reflects the food economy.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Food
			{Name: "food_spawn_rate", Path: "food.spawn_rate", Min: 0.5, Max: 30, Default: 4},
			{Name: "nutrition_per_area", Path: "food.nutrition_per_area", Min: 0.1, Max: 2, Default: 0.5},
			{Name: "corpse_nutrition_per_area", Path: "food.corpse_nutrition_per_area", Min: 0, Max: 1, Default: 0.3},
			// Energy
			{Name: "capacity_per_area", Path: "energy.capacity_per_area", Min: 0.3, Max: 3, Default: 1},
			{Name: "starvation_grace", Path: "energy.starvation_grace", Min: 0, Max: 10, Default: 3},
			// Combat
			{Name: "damage_scale", Path: "combat.damage_scale", Min: 0.5, Max: 10, Default: 4},
			{Name: "winner_share", Path: "combat.winner_share", Min: 0, Max: 1, Default: 0.5},
			{Name: "swallow_ratio", Path: "combat.swallow_ratio", Min: 1.5, Max: 5, Default: 2.5},
			// Steering
			{Name: "wander_strength", Path: "steering.wander_strength", Min: 0, Max: 2, Default: 0.6},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	cfg.Population.BlobSpawnChance = 0
	cfg.Population.RespawnThreshold = 0

	cfg.Food.SpawnRate = c[0]
	cfg.Food.NutritionPerArea = c[1]
	cfg.Food.CorpseNutritionPerArea = c[2]
	cfg.Energy.CapacityPerArea = c[3]
	cfg.Energy.StarvationGrace = c[4]
	cfg.Combat.DamageScale = c[5]
	cfg.Combat.WinnerShare = c[6]
	cfg.Combat.SwallowRatio = c[7]
	cfg.Steering.WanderStrength = c[8]
}

// ExtractFromConfig reads current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Food.SpawnRate,
		cfg.Food.NutritionPerArea,
		cfg.Food.CorpseNutritionPerArea,
		cfg.Energy.CapacityPerArea,
		cfg.Energy.StarvationGrace,
		cfg.Combat.DamageScale,
		cfg.Combat.WinnerShare,
		cfg.Combat.SwallowRatio,
		cfg.Steering.WanderStrength,
	}
}
