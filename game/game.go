// Package game wires the world, the collision core and telemetry into a stepped simulation.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/systems"
	"github.com/pthm-cable/blobs/telemetry"
	"github.com/pthm-cable/blobs/traits"
)

// Options configures a game instance.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // empty disables CSV output
	Headless       bool
	StepsPerUpdate int

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// StepReport counts what one tick changed. The entity total always satisfies
// After = Before - FoodEaten - BlobDeaths + Corpses - RemovedInvalid + Spawned.
type StepReport struct {
	Tick           uint64 // tick number after the step
	Before, After  int
	FoodEaten      int
	BlobDeaths     int
	Swallowed      int // subset of BlobDeaths that left no food
	Corpses        int
	RemovedInvalid int
	Spawned        int
	Fights         int
	Flees          int
	Separations    int
}

// Balanced reports whether the entity count adds up.
func (r StepReport) Balanced() bool {
	return r.After == r.Before-r.FoodEaten-r.BlobDeaths+r.Corpses-r.RemovedInvalid+r.Spawned
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	opts  Options
	rng   *rand.Rand
	world *World

	// Systems
	traits      *traits.Generator
	sweep       *systems.SweepAndPrune
	resolver    *systems.Resolver
	steering    *systems.Steering
	fertility   *systems.FertilityField
	spatialGrid *systems.SpatialGrid

	// Per-tick scratch, reused across steps
	blobRefs     []BlobRef
	foodRefs     []FoodRef
	seen         []systems.Seen
	seenIndex    map[uint64]int
	colliders    []systems.Collider
	colliderByID map[uint64]systems.Collider
	pairs        []systems.Pair
	contacts     []systems.Contact
	participants *systems.Participants
	outcome      systems.Outcome
	deadSet      map[uint64]bool
	commandBuf   []Command
	effects      []Effect

	parallel *parallelState
	commands CommandQueue
	frame    atomic.Pointer[Frame]

	// Telemetry
	collector        *telemetry.Collector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	lastStats        telemetry.WindowStats
	hasStats         bool

	tick   uint64
	paused bool
	closed bool

	worldWidth, worldHeight float64
}

// NewGame creates a game from a validated config and seeds the initial population.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		return nil, fmt.Errorf("game: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	axisMode, err := systems.ParseAxisMode(cfg.Physics.SweepAxis)
	if err != nil {
		return nil, &config.ConfigError{Field: "physics.sweep_axis", Reason: err.Error()}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	gen, err := traits.NewGenerator(cfg.Traits, rng)
	if err != nil {
		return nil, fmt.Errorf("creating trait generator: %w", err)
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	w, h := cfg.Derived.WorldW, cfg.Derived.WorldH
	g := &Game{
		cfg:          cfg,
		opts:         opts,
		rng:          rng,
		world:        NewWorld(),
		traits:       gen,
		sweep:        systems.NewSweepAndPrune(axisMode, systems.DefaultCollisionMatrix()),
		resolver:     systems.NewResolver(cfg),
		steering:     systems.NewSteering(cfg.Steering, systems.NewWander(opts.Seed, cfg.Steering.WanderFrequency)),
		fertility:    systems.NewFertilityField(opts.Seed, cfg.Food.FertilityScale, cfg.Food.FertilityFloor, cfg.Food.SpawnAttempts, w, h),
		spatialGrid:  systems.NewSpatialGrid(w, h, cfg.Physics.PerceptionCellSize),
		seenIndex:    make(map[uint64]int),
		colliderByID: make(map[uint64]systems.Collider),
		participants: systems.NewParticipants(),
		deadSet:      make(map[uint64]bool),
		parallel:     newParallelState(),

		collector:        telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,

		worldWidth:  w,
		worldHeight: h,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.spawnInitialPopulation()
	g.publishFrame()

	return g, nil
}

// Config returns the game's configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Tick returns the number of completed steps.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Counts returns the number of live blobs and food particles.
func (g *Game) Counts() (blobs, food int) {
	return g.world.Counts()
}

// Paused reports whether Update skips stepping.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused pauses or resumes Update.
func (g *Game) SetPaused(p bool) {
	g.paused = p
}

// Step advances the simulation by dt seconds and returns what changed.
// Step must not be called concurrently with itself.
func (g *Game) Step(dt float64) StepReport {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = g.cfg.Physics.DT
	}

	var report StepReport
	report.Before = g.world.Len()

	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseCommands)
	g.applyCommands(&report)

	g.perfCollector.StartPhase(telemetry.PhaseMotion)
	g.updateMotion(dt, &report)

	g.perfCollector.StartPhase(telemetry.PhaseBroadPhase)
	pairs := g.updateBroadPhase()

	g.perfCollector.StartPhase(telemetry.PhaseNarrowPhase)
	g.narrowPhase(pairs)

	g.perfCollector.StartPhase(telemetry.PhaseResolve)
	g.resolveContacts(dt, &report)

	g.perfCollector.StartPhase(telemetry.PhaseLifecycle)
	g.updateLifecycle(&report)

	g.perfCollector.StartPhase(telemetry.PhaseSpawn)
	g.updateSpawning(dt, &report)

	g.tick++
	report.Tick = g.tick
	report.After = g.world.Len()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.publishFrame()
	g.flushTelemetry()

	g.perfCollector.EndTick()

	if !report.Balanced() {
		slog.Error("entity count mismatch", "tick", g.tick, "report", report)
	}
	return report
}

// UpdateHeadless runs StepsPerUpdate fixed steps unless paused.
func (g *Game) UpdateHeadless() {
	if g.paused {
		return
	}
	steps := max(g.opts.StepsPerUpdate, 1)
	for i := 0; i < steps; i++ {
		g.Step(g.cfg.Physics.DT)
	}
}

// Update is called once per rendered frame. Commands queued while paused
// wait for the next unpaused frame.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.UpdateHeadless()
}

// SetStepsPerUpdate changes how many ticks each Update runs.
func (g *Game) SetStepsPerUpdate(n int) {
	g.opts.StepsPerUpdate = max(n, 1)
}

// StepsPerUpdate returns how many ticks each Update runs.
func (g *Game) StepsPerUpdate() int {
	return max(g.opts.StepsPerUpdate, 1)
}

// PerfStats returns timing over the recent ticks.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() (telemetry.WindowStats, bool) {
	return g.lastStats, g.hasStats
}

// WriteRunInfo records run metadata next to the CSV output, if enabled.
func (g *Game) WriteRunInfo(info telemetry.RunInfo) error {
	info.Seed = g.opts.Seed
	info.Ticks = g.tick
	info.Headless = g.opts.Headless
	return g.outputManager.WriteRunInfo(info)
}

// Close stops the worker pool and flushes output. It is safe to call more than once.
func (g *Game) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.stopParallelWorkers()
	return g.outputManager.Close()
}

// randomPosition returns a uniform point on the plane.
func (g *Game) randomPosition() (x, y float64) {
	return g.rng.Float64() * g.worldWidth, g.rng.Float64() * g.worldHeight
}

func (g *Game) clampToWorld(x, y float64) (float64, float64) {
	return min(max(x, 0), g.worldWidth), min(max(y, 0), g.worldHeight)
}

// foodColor is how food is drawn and how blobs perceive it.
var foodColor = components.HSV{H: 100, S: 0.55, V: 0.85}
