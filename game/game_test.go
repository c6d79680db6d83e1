package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/telemetry"
)

// quietConfig returns defaults with no automatic population changes.
func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Population.InitialBlobs = 0
	cfg.Population.InitialFood = 0
	cfg.Population.BlobSpawnChance = 0
	cfg.Population.RespawnThreshold = 0
	cfg.Food.SpawnRate = 0
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, seed int64) *Game {
	t.Helper()
	g, err := NewGame(cfg, Options{Seed: seed})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// stillBlob inserts a blob that does not move, age or get hungry.
func stillBlob(t *testing.T, g *Game, x, y, r float64) uint64 {
	t.Helper()
	id, err := g.world.InsertBlob(BlobSpec{
		X:      x,
		Y:      y,
		Radius: r,
		Vitals: components.Vitals{Health: 100, MaxHealth: 100, Energy: 10, MaxEnergy: 100},
		Genome: components.Genome{
			RotationSpeed: 1,
			Sight:         50,
			FOV:           2 * math.Pi,
			Attack:        1,
			Color:         components.HSV{H: 200, S: 0.8, V: 0.8},
			FavoriteColor: components.HSV{H: 200, S: 0.8, V: 0.8},
		},
	})
	if err != nil {
		t.Fatalf("InsertBlob: %v", err)
	}
	return id
}

func TestBlobEatsOverlappingFood(t *testing.T) {
	g := newTestGame(t, quietConfig(), 1)
	blob := stillBlob(t, g, 0, 0, 5)
	food, err := g.world.InsertFood(FoodSpec{X: 6, Y: 0, Radius: 2, Nutrition: 5})
	if err != nil {
		t.Fatalf("InsertFood: %v", err)
	}

	report := g.Step(g.cfg.Physics.DT)

	if report.FoodEaten != 1 {
		t.Errorf("FoodEaten = %d, want 1", report.FoodEaten)
	}
	if _, ok := g.world.Kind(food); ok {
		t.Error("food still present after being eaten")
	}
	b, ok := g.world.Blob(blob)
	if !ok {
		t.Fatal("blob missing")
	}
	if math.Abs(b.Vitals.Energy-15) > 1e-9 {
		t.Errorf("energy = %v, want 15", b.Vitals.Energy)
	}

	effects := g.Frame().Effects
	if len(effects) != 1 || effects[0].Kind != EffectFeed || effects[0].X != 6 {
		t.Errorf("effects = %+v, want one feed at x=6", effects)
	}
	g.Step(g.cfg.Physics.DT)
	if n := len(g.Frame().Effects); n != 0 {
		t.Errorf("effects carried into the next frame: %d", n)
	}
}

func TestEqualBlobsSeparate(t *testing.T) {
	g := newTestGame(t, quietConfig(), 1)
	a := stillBlob(t, g, 100, 100, 5)
	b := stillBlob(t, g, 106, 100, 5)

	report := g.Step(g.cfg.Physics.DT)

	if report.BlobDeaths != 0 {
		t.Fatalf("equal kin blobs should not kill each other, got %d deaths", report.BlobDeaths)
	}
	pa, pb := g.world.Position(a), g.world.Position(b)
	dist := math.Hypot(pb.X-pa.X, pb.Y-pa.Y)
	if dist < 10 {
		t.Errorf("distance after separation = %v, want >= 10", dist)
	}
	if math.Abs(pa.Y-100) > 1e-9 || math.Abs(pb.Y-100) > 1e-9 {
		t.Errorf("separation should act along the center line, got %v and %v", pa, pb)
	}
}

func TestStarvedBlobBecomesFood(t *testing.T) {
	cfg := quietConfig()
	cfg.Energy.StarvationGrace = 0
	g := newTestGame(t, cfg, 1)

	id := stillBlob(t, g, 200, 200, 12)
	b, _ := g.world.Blob(id)
	b.Genome.HungerRate = 1000

	report := g.Step(cfg.Physics.DT)

	if report.BlobDeaths != 1 || report.Corpses != 1 {
		t.Fatalf("deaths = %d corpses = %d, want 1 and 1", report.BlobDeaths, report.Corpses)
	}
	if !report.Balanced() {
		t.Errorf("report does not balance: %+v", report)
	}
	blobs, food := g.Counts()
	if blobs != 0 || food != 1 {
		t.Fatalf("counts = %d blobs %d food, want 0 and 1", blobs, food)
	}
	v := g.Snapshot()[0]
	if v.Kind != components.KindFood || v.X != 200 || v.Y != 200 {
		t.Errorf("corpse view = %+v", v)
	}
	if math.Abs(v.Radius-6) > 1e-9 {
		t.Errorf("corpse radius = %v, want 6", v.Radius)
	}
	effects := g.Frame().Effects
	if len(effects) != 1 || effects[0].Kind != EffectDeath || effects[0].Size != 12 {
		t.Errorf("effects = %+v, want one death of size 12", effects)
	}
}

func TestConservationEveryTick(t *testing.T) {
	g := newTestGame(t, config.Default(), 7)

	prev := g.world.Len()
	for i := 0; i < 600; i++ {
		if i%50 == 0 {
			g.RequestSpawn(components.KindBlob, nil)
			g.RequestSpawn(components.KindFood, &components.Position{X: 10, Y: 10})
		}
		r := g.Step(g.cfg.Physics.DT)
		if r.Before != prev {
			t.Fatalf("tick %d: Before = %d, want %d", r.Tick, r.Before, prev)
		}
		if !r.Balanced() {
			t.Fatalf("tick %d: unbalanced report %+v", r.Tick, r)
		}
		if r.After != g.world.Len() {
			t.Fatalf("tick %d: After = %d, world has %d", r.Tick, r.After, g.world.Len())
		}
		prev = r.After
	}
}

func TestEnergyNeverExceedsMax(t *testing.T) {
	cfg := config.Default()
	cfg.Population.InitialFood = 500
	cfg.Population.MaxFood = 600
	g := newTestGame(t, cfg, 3)

	for i := 0; i < 400; i++ {
		g.Step(cfg.Physics.DT)
		for _, b := range g.world.Blobs(nil) {
			if b.Vitals.Energy > b.Vitals.MaxEnergy+1e-9 {
				t.Fatalf("tick %d: blob %d energy %v exceeds max %v",
					g.Tick(), b.ID, b.Vitals.Energy, b.Vitals.MaxEnergy)
			}
			if b.Vitals.Energy < 0 {
				t.Fatalf("tick %d: blob %d has negative energy %v", g.Tick(), b.ID, b.Vitals.Energy)
			}
		}
	}
}

func runFrames(t *testing.T, cfg *config.Config, seed int64, ticks int) []byte {
	t.Helper()
	g := newTestGame(t, cfg, seed)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := 0; i < ticks; i++ {
		g.Step(cfg.Physics.DT)
		if err := enc.Encode(g.Frame()); err != nil {
			t.Fatalf("encoding frame: %v", err)
		}
	}
	return buf.Bytes()
}

func TestDeterministicFrames(t *testing.T) {
	a := runFrames(t, config.Default(), 42, 300)
	b := runFrames(t, config.Default(), 42, 300)
	if !bytes.Equal(a, b) {
		t.Fatal("same seed produced different frames")
	}

	c := runFrames(t, config.Default(), 43, 300)
	if bytes.Equal(a, c) {
		t.Error("different seeds produced identical frames")
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	serial := config.Default()
	serial.Physics.ParallelThreshold = math.MaxInt32
	parallel := config.Default()
	parallel.Physics.ParallelThreshold = 0

	a := runFrames(t, serial, 9, 200)
	b := runFrames(t, parallel, 9, 200)
	if !bytes.Equal(a, b) {
		t.Fatal("parallel phases changed the result")
	}
}

func TestThousandEntities(t *testing.T) {
	cfg := config.Default()
	cfg.Population.InitialBlobs = 250
	cfg.Population.MaxBlobs = 300
	cfg.Population.InitialFood = 750
	cfg.Population.MaxFood = 1000
	g := newTestGame(t, cfg, 5)

	if n := g.world.Len(); n != 1000 {
		t.Fatalf("initial entities = %d, want 1000", n)
	}
	for i := 0; i < 60; i++ {
		if r := g.Step(cfg.Physics.DT); !r.Balanced() {
			t.Fatalf("tick %d: unbalanced report %+v", r.Tick, r)
		}
	}
	if got := len(g.Snapshot()); got != g.world.Len() {
		t.Errorf("snapshot has %d entities, world has %d", got, g.world.Len())
	}
}

func TestSnapshotOrderedByID(t *testing.T) {
	g := newTestGame(t, config.Default(), 11)
	for i := 0; i < 30; i++ {
		g.Step(g.cfg.Physics.DT)
	}
	views := g.Snapshot()
	for i := 1; i < len(views); i++ {
		if views[i-1].ID >= views[i].ID {
			t.Fatalf("snapshot not ordered: %d before %d", views[i-1].ID, views[i].ID)
		}
	}
	for _, v := range views {
		if v.Kind == components.KindFood && v.HealthFraction != 1 {
			t.Errorf("food %d health fraction = %v, want 1", v.ID, v.HealthFraction)
		}
	}
}

func TestNewGameRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Physics.DT = 0
	_, err := NewGame(cfg, Options{})
	var ce *config.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("NewGame error = %v, want a ConfigError", err)
	}
	if ce.Field != "physics.dt" {
		t.Errorf("field = %q, want physics.dt", ce.Field)
	}
}

func TestInspect(t *testing.T) {
	g := newTestGame(t, quietConfig(), 1)
	blob := stillBlob(t, g, 100, 100, 5)
	food, _ := g.world.InsertFood(FoodSpec{X: 400, Y: 400, Radius: 2, Nutrition: 7})
	g.publishFrame()

	in, ok := g.Inspect(blob)
	if !ok {
		t.Fatal("blob not inspectable")
	}
	if in.View.Kind != components.KindBlob || in.Vitals.MaxHealth != 100 || in.Genome.Attack != 1 {
		t.Errorf("blob inspection = %+v", in)
	}

	in, ok = g.Inspect(food)
	if !ok || in.Nutrition != 7 {
		t.Errorf("food inspection = %+v, %v", in, ok)
	}

	if _, ok := g.Inspect(999); ok {
		t.Error("unknown id should not be inspectable")
	}
}

func TestUpdateRespectsPauseAndSpeed(t *testing.T) {
	g := newTestGame(t, quietConfig(), 1)

	g.SetPaused(true)
	g.Update()
	if g.Tick() != 0 {
		t.Errorf("paused update advanced to tick %d", g.Tick())
	}

	g.SetPaused(false)
	g.SetStepsPerUpdate(4)
	g.Update()
	if g.Tick() != 4 {
		t.Errorf("tick = %d after one update at 4 steps, want 4", g.Tick())
	}
}

func TestStatsCallbackReceivesWindows(t *testing.T) {
	cfg := quietConfig()
	var windows int
	g, err := NewGame(cfg, Options{
		Seed:           1,
		StatsWindowSec: 1,
		StatsCallback:  func(telemetry.WindowStats) { windows++ },
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Close()

	ticks := int(math.Ceil(3 / cfg.Physics.DT))
	for i := 0; i < ticks; i++ {
		g.Step(cfg.Physics.DT)
	}
	if windows != 3 {
		t.Errorf("got %d windows, want 3", windows)
	}
	if _, ok := g.LastStats(); !ok {
		t.Error("LastStats should be set after a flush")
	}
}
