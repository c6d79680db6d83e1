package config

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
)

// ConfigError describes a single invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks every section and returns all problems found, or nil.
func (c *Config) Validate() error {
	var result *multierror.Error
	add := func(field, reason string) {
		result = multierror.Append(result, &ConfigError{Field: field, Reason: reason})
	}
	positive := func(field string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			add(field, fmt.Sprintf("must be positive and finite, got %v", v))
		}
	}
	nonNegative := func(field string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			add(field, fmt.Sprintf("must be non-negative and finite, got %v", v))
		}
	}
	unit := func(field string, v float64) {
		if !(v >= 0 && v <= 1) {
			add(field, fmt.Sprintf("must be in [0, 1], got %v", v))
		}
	}

	positive("world.width", c.Derived.WorldW)
	positive("world.height", c.Derived.WorldH)

	positive("physics.dt", c.Physics.DT)
	switch c.Physics.SweepAxis {
	case "", "auto", "x", "y":
	default:
		add("physics.sweep_axis", fmt.Sprintf("unknown axis %q (want auto, x or y)", c.Physics.SweepAxis))
	}
	if c.Physics.ParallelThreshold < 0 {
		add("physics.parallel_threshold", "must not be negative")
	}
	positive("physics.perception_cell_size", c.Physics.PerceptionCellSize)

	p := c.Population
	if p.InitialBlobs < 0 || p.InitialFood < 0 {
		add("population.initial", "initial counts must not be negative")
	}
	if p.MaxBlobs < p.InitialBlobs {
		add("population.max_blobs", fmt.Sprintf("%d is below initial_blobs %d", p.MaxBlobs, p.InitialBlobs))
	}
	if p.MaxFood < p.InitialFood {
		add("population.max_food", fmt.Sprintf("%d is below initial_food %d", p.MaxFood, p.InitialFood))
	}
	unit("population.blob_spawn_chance", p.BlobSpawnChance)
	if p.RespawnThreshold < 0 || p.RespawnCount < 0 {
		add("population.respawn", "threshold and count must not be negative")
	}

	f := c.Food
	positive("food.radius", f.Radius)
	if f.LargeChance > 0 {
		positive("food.large_radius", f.LargeRadius)
	}
	unit("food.large_chance", f.LargeChance)
	nonNegative("food.nutrition_per_area", f.NutritionPerArea)
	nonNegative("food.corpse_nutrition_per_area", f.CorpseNutritionPerArea)
	nonNegative("food.max_corpse_nutrition", f.MaxCorpseNutrition)
	nonNegative("food.spawn_rate", f.SpawnRate)
	positive("food.fertility_scale", f.FertilityScale)
	unit("food.fertility_floor", f.FertilityFloor)
	if f.SpawnAttempts < 1 {
		add("food.spawn_attempts", "must be at least 1")
	}

	unit("energy.initial_fraction", c.Energy.InitialFraction)
	positive("energy.capacity_per_area", c.Energy.CapacityPerArea)
	nonNegative("energy.starvation_grace", c.Energy.StarvationGrace)
	positive("energy.max_health_per_area", c.Energy.MaxHealthPerArea)

	cb := c.Combat
	positive("combat.ref_radius", cb.RefRadius)
	nonNegative("combat.size_weight", cb.SizeWeight)
	nonNegative("combat.tie_margin", cb.TieMargin)
	if !(cb.KinSimilarity >= -1 && cb.KinSimilarity <= 1.000001) {
		add("combat.kin_similarity", fmt.Sprintf("must be in [-1, 1], got %v", cb.KinSimilarity))
	}
	nonNegative("combat.damage_scale", cb.DamageScale)
	unit("combat.winner_share", cb.WinnerShare)
	nonNegative("combat.swallow_ratio", cb.SwallowRatio)
	nonNegative("combat.flee_duration", cb.FleeDuration)
	nonNegative("combat.pursue_duration", cb.PursueDuration)

	unit("separation.stiffness", c.Separation.Stiffness)
	nonNegative("separation.slop", c.Separation.Slop)

	unit("traits.camouflage_scale", c.Traits.CamouflageScale)
	if len(c.Traits.Archetypes) == 0 {
		add("traits.archetypes", "at least one archetype is required")
	}
	var totalWeight float64
	for i, arch := range c.Traits.Archetypes {
		prefix := fmt.Sprintf("traits.archetypes[%d]", i)
		if arch.Name != "" {
			prefix = fmt.Sprintf("traits.archetypes[%s]", arch.Name)
		}
		nonNegative(prefix+".weight", arch.Weight)
		totalWeight += arch.Weight
		ranges := []struct {
			name string
			r    Range
			min  float64
		}{
			{"radius", arch.Radius, math.SmallestNonzeroFloat64},
			{"speed", arch.Speed, 0},
			{"rotation_speed", arch.RotationSpeed, 0},
			{"sight", arch.Sight, 0},
			{"fov", arch.FOV, 0},
			{"attack", arch.Attack, 0},
			{"defence", arch.Defence, 0},
			{"hunger_rate", arch.HungerRate, 0},
			{"fear", arch.Fear, 0},
			{"attraction", arch.Attraction, 0},
			{"repulsion", arch.Repulsion, 0},
		}
		for _, r := range ranges {
			if msg := r.r.check(r.min); msg != "" {
				add(prefix+"."+r.name, msg)
			}
		}
		if arch.FOV.Max > 360 {
			add(prefix+".fov", "must not exceed 360 degrees")
		}
		if arch.Defence.Max > 1 {
			add(prefix+".defence", "must not exceed 1")
		}
		if arch.Fear.Max > 1 {
			add(prefix+".fear", "must not exceed 1")
		}
	}
	if len(c.Traits.Archetypes) > 0 && !(totalWeight > 0) {
		add("traits.archetypes", "weights must sum to a positive value")
	}

	if c.Telemetry.StatsWindow < 0 {
		add("telemetry.stats_window", "must not be negative")
	}

	return result.ErrorOrNil()
}

func (r Range) check(min float64) string {
	switch {
	case math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0):
		return "bounds must be finite"
	case r.Min > r.Max:
		return fmt.Sprintf("min %v exceeds max %v", r.Min, r.Max)
	case r.Min < min:
		return fmt.Sprintf("min %v is below %v", r.Min, min)
	}
	return ""
}
