package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Blobs int `csv:"blobs"`
	Food  int `csv:"food"`

	// Events during window
	BlobSpawns int     `csv:"blob_spawns"`
	FoodSpawns int     `csv:"food_spawns"`
	Feeds      int     `csv:"feeds"`
	Fights     int     `csv:"fights"`
	Flees      int     `csv:"flees"`
	Kills      int     `csv:"kills"`
	Swallows   int     `csv:"swallows"`
	Starved    int     `csv:"starved"`
	Removed    int     `csv:"removed"`
	FightRate  float64 `csv:"fight_rate"` // fights per living blob

	// Energy distribution (sampled at window end, as fraction of max)
	EnergyEaten float64 `csv:"energy_eaten"`
	EnergyMean  float64 `csv:"energy_mean"`
	EnergyP10   float64 `csv:"energy_p10"`
	EnergyP50   float64 `csv:"energy_p50"`
	EnergyP90   float64 `csv:"energy_p90"`

	RadiusMean   float64 `csv:"radius_mean"`
	LifespanMean float64 `csv:"lifespan_mean"` // age in seconds of blobs that died this window
	LifespanP50  float64 `csv:"lifespan_p50"`
}

// Percentile returns the p-th empirical quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeEnergyStats calculates mean and percentiles from a set of values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("blobs", s.Blobs),
		slog.Int("food", s.Food),
		slog.Int("blob_spawns", s.BlobSpawns),
		slog.Int("food_spawns", s.FoodSpawns),
		slog.Int("feeds", s.Feeds),
		slog.Int("fights", s.Fights),
		slog.Int("flees", s.Flees),
		slog.Int("kills", s.Kills),
		slog.Int("swallows", s.Swallows),
		slog.Int("starved", s.Starved),
		slog.Int("removed", s.Removed),
		slog.Float64("fight_rate", s.FightRate),
		slog.Float64("energy_eaten", s.EnergyEaten),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("lifespan_mean", s.LifespanMean),
		slog.Float64("lifespan_p50", s.LifespanP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"blobs", s.Blobs,
		"food", s.Food,
		"blob_spawns", s.BlobSpawns,
		"food_spawns", s.FoodSpawns,
		"feeds", s.Feeds,
		"fights", s.Fights,
		"flees", s.Flees,
		"kills", s.Kills,
		"swallows", s.Swallows,
		"starved", s.Starved,
		"removed", s.Removed,
		"energy_mean", s.EnergyMean,
		"energy_p50", s.EnergyP50,
		"radius_mean", s.RadiusMean,
		"lifespan_mean", s.LifespanMean,
	)
}
