// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Food       FoodConfig       `yaml:"food"`
	Energy     EnergyConfig     `yaml:"energy"`
	Combat     CombatConfig     `yaml:"combat"`
	Separation SeparationConfig `yaml:"separation"`
	Steering   SteeringConfig   `yaml:"steering"`
	Traits     TraitsConfig     `yaml:"traits"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the bounded plane dimensions.
type WorldConfig struct {
	Width  float64 `yaml:"width"`  // 0 = use screen width
	Height float64 `yaml:"height"` // 0 = use screen height
}

// PhysicsConfig holds stepping and broad-phase parameters.
type PhysicsConfig struct {
	DT                 float64 `yaml:"dt"`
	SweepAxis          string  `yaml:"sweep_axis"`           // auto, x or y
	ParallelThreshold  int     `yaml:"parallel_threshold"`   // below this, phases run single-threaded
	PerceptionCellSize float64 `yaml:"perception_cell_size"` // grid cell size for sight queries
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	InitialBlobs     int     `yaml:"initial_blobs"`
	InitialFood      int     `yaml:"initial_food"`
	MaxBlobs         int     `yaml:"max_blobs"`
	MaxFood          int     `yaml:"max_food"`
	BlobSpawnChance  float64 `yaml:"blob_spawn_chance"` // per tick
	RespawnThreshold int     `yaml:"respawn_threshold"` // respawn when blobs fall below
	RespawnCount     int     `yaml:"respawn_count"`
}

// FoodConfig holds food particle parameters.
type FoodConfig struct {
	Radius                 float64 `yaml:"radius"`
	LargeRadius            float64 `yaml:"large_radius"`
	LargeChance            float64 `yaml:"large_chance"`
	NutritionPerArea       float64 `yaml:"nutrition_per_area"`        // nutrition = this * pi r^2
	CorpseNutritionPerArea float64 `yaml:"corpse_nutrition_per_area"` // dead blob body value
	MaxCorpseNutrition     float64 `yaml:"max_corpse_nutrition"`
	SpawnRate              float64 `yaml:"spawn_rate"` // expected food per second
	FertilityScale         float64 `yaml:"fertility_scale"`
	FertilityFloor         float64 `yaml:"fertility_floor"` // minimum acceptance probability
	SpawnAttempts          int     `yaml:"spawn_attempts"`
}

// EnergyConfig holds hunger and starvation parameters.
type EnergyConfig struct {
	InitialFraction  float64 `yaml:"initial_fraction"`  // of max energy at spawn
	CapacityPerArea  float64 `yaml:"capacity_per_area"` // max energy = this * pi r^2
	StarvationGrace  float64 `yaml:"starvation_grace"`  // seconds at zero energy before death
	MaxHealthPerArea float64 `yaml:"max_health_per_area"`
}

// CombatConfig holds blob-blob interaction parameters.
type CombatConfig struct {
	RefRadius       float64 `yaml:"ref_radius"`
	SizeWeight      float64 `yaml:"size_weight"`
	TieMargin       float64 `yaml:"tie_margin"` // relative strength difference treated as equal
	KinSimilarity   float64 `yaml:"kin_similarity"`
	DamageScale     float64 `yaml:"damage_scale"`
	WinnerShare     float64 `yaml:"winner_share"`
	SwallowRatio    float64 `yaml:"swallow_ratio"` // 0 disables swallowing
	FleeDuration    float64 `yaml:"flee_duration"`
	PursueDuration  float64 `yaml:"pursue_duration"`
}

// SeparationConfig holds overlap correction parameters.
type SeparationConfig struct {
	Stiffness float64 `yaml:"stiffness"` // fraction of depth corrected per contact
	Slop      float64 `yaml:"slop"`      // extra distance added to the correction
}

// SteeringConfig holds motion parameters.
type SteeringConfig struct {
	WanderStrength  float64 `yaml:"wander_strength"`
	WanderFrequency float64 `yaml:"wander_frequency"`
	ColorWeight     float64 `yaml:"color_weight"`
	FleeSpeedBoost  float64 `yaml:"flee_speed_boost"`
	PursueSpeedMult float64 `yaml:"pursue_speed_mult"`
}

// Range is an inclusive sampling interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// HSVRange bounds sampled colors. Hue is in degrees and may wrap (min > max).
type HSVRange struct {
	Hue        Range `yaml:"hue"`
	Saturation Range `yaml:"saturation"`
	Value      Range `yaml:"value"`
}

// ArchetypeConfig defines a weighted founder template for blobs.
type ArchetypeConfig struct {
	Name          string   `yaml:"name"`
	Weight        float64  `yaml:"weight"`
	Radius        Range    `yaml:"radius"`
	Speed         Range    `yaml:"speed"`
	RotationSpeed Range    `yaml:"rotation_speed"`
	Sight         Range    `yaml:"sight"`
	FOV           Range    `yaml:"fov"` // full field of view in degrees
	Attack        Range    `yaml:"attack"`
	Defence       Range    `yaml:"defence"`
	HungerRate    Range    `yaml:"hunger_rate"`
	Fear          Range    `yaml:"fear"`
	Attraction    Range    `yaml:"attraction"`
	Repulsion     Range    `yaml:"repulsion"`
	Color         HSVRange `yaml:"color"`
	FavoriteColor HSVRange `yaml:"favorite_color"`
}

// TraitsConfig holds trait generation parameters.
type TraitsConfig struct {
	Background      HSVColor          `yaml:"background"`       // blobs similar to this are harder to see
	CamouflageScale float64           `yaml:"camouflage_scale"` // max chance of going unseen
	Archetypes      []ArchetypeConfig `yaml:"archetypes"`
}

// HSVColor is a plain HSV triple.
type HSVColor struct {
	H float64 `yaml:"h"`
	S float64 `yaml:"s"`
	V float64 `yaml:"v"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW         float64        // Effective world width
	WorldH         float64        // Effective world height
	ArchetypeIndex map[string]int // name -> index for archetype lookup
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WorldW = c.World.Width
	if c.Derived.WorldW == 0 {
		c.Derived.WorldW = float64(c.Screen.Width)
	}
	c.Derived.WorldH = c.World.Height
	if c.Derived.WorldH == 0 {
		c.Derived.WorldH = float64(c.Screen.Height)
	}

	c.Derived.ArchetypeIndex = make(map[string]int, len(c.Traits.Archetypes))
	for i, arch := range c.Traits.Archetypes {
		c.Derived.ArchetypeIndex[arch.Name] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
