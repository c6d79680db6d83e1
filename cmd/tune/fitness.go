package main

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/game"
	"github.com/pthm-cable/blobs/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    uint64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks uint64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks uint64                  // ticks until every blob died, or maxTicks
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Seeds run in parallel; each gets its own game.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	quality := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality[idx] = computeQuality(result.windowStats)
			fitness[idx] = computeFitness(result.survivalTicks, quality[idx])
		}(i, seed)
	}
	wg.Wait()

	fe.mu.Lock()
	fe.lastQuality = stat.Mean(quality, nil)
	fe.mu.Unlock()

	return stat.Mean(fitness, nil)
}

// runSimulation executes a single headless simulation run.
// Runs until the blob population dies out or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{survivalTicks: fe.maxTicks}

	g, err := game.NewGame(cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		// Parameters are clamped into valid ranges, so this is a base config problem.
		result.survivalTicks = 0
		return result
	}
	defer g.Close()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
		if blobs, _ := g.Counts(); blobs == 0 {
			result.survivalTicks = g.Tick()
			break
		}
	}
	return result
}

// copyConfig returns a copy of the base config that tuning can modify.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Traits.Archetypes = slices.Clone(fe.baseConfig.Traits.Archetypes)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality separates configs with similar survival.
func computeFitness(survivalTicks uint64, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightEnergy    = 0.4
	qualityWeightStability = 0.3
	qualityWeightConflict  = 0.3

	qualityWarmupWindows = 2 // skip first N windows
	qualityMinBlobs      = 3 // ignore windows with fewer blobs

	targetEnergyP50 = 0.5 // median fraction of max energy
	targetFightRate = 1.0 // fights per blob per window
)

// computeQuality scores an ecosystem in [0, 1] from window stats: median
// energy near half full, a steady food stock and some but not constant fighting.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var energySum, conflictSum float64
	var n int
	foodCounts := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Blobs < qualityMinBlobs {
			continue
		}
		energySum += gaussian(w.EnergyP50, targetEnergyP50, 0.2)
		conflictSum += gaussian(w.FightRate, targetFightRate, 1.0)
		foodCounts = append(foodCounts, float64(w.Food))
		n++
	}
	if n == 0 {
		return 0
	}

	stability := 0.0
	if len(foodCounts) >= 2 {
		c := cv(foodCounts)
		stability = math.Exp(-c * c)
	}

	q := qualityWeightEnergy*energySum/float64(n) +
		qualityWeightStability*stability +
		qualityWeightConflict*conflictSum/float64(n)
	return min(max(q, 0), 1)
}

// gaussian is 1 at target and falls off with the given width.
func gaussian(v, target, width float64) float64 {
	d := (v - target) / width
	return math.Exp(-d * d)
}

// cv is the coefficient of variation (std/mean), 0 for a zero mean.
func cv(values []float64) float64 {
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
