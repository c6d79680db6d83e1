package game

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/systems"
	"github.com/pthm-cable/blobs/telemetry"
)

// spawnInitialPopulation creates the starting entities.
func (g *Game) spawnInitialPopulation() {
	pop := g.cfg.Population
	for i := 0; i < pop.InitialBlobs && i < pop.MaxBlobs; i++ {
		x, y := g.randomPosition()
		if _, err := g.spawnBlob(x, y); err != nil {
			slog.Warn("initial blob rejected", "error", err)
		}
	}
	for i := 0; i < pop.InitialFood && i < pop.MaxFood; i++ {
		x, y := g.fertility.Sample(g.rng)
		if _, err := g.spawnFood(x, y); err != nil {
			slog.Warn("initial food rejected", "error", err)
		}
	}
}

// spawnBlob creates a blob with freshly generated traits at (x, y).
func (g *Game) spawnBlob(x, y float64) (uint64, error) {
	sample := g.traits.Sample()
	energyCfg := g.cfg.Energy
	body := components.Body{Radius: sample.Radius}
	maxEnergy := energyCfg.CapacityPerArea * body.Area()
	maxHealth := energyCfg.MaxHealthPerArea * body.Area()

	id, err := g.world.InsertBlob(BlobSpec{
		X:       x,
		Y:       y,
		Radius:  sample.Radius,
		Heading: g.rng.Float64() * 2 * math.Pi,
		Vitals: components.Vitals{
			Health:    maxHealth,
			MaxHealth: maxHealth,
			Energy:    energyCfg.InitialFraction * maxEnergy,
			MaxEnergy: maxEnergy,
		},
		Genome: sample.Genome,
		Wander: g.rng.Float64() * 1000,
	})
	if err != nil {
		return 0, err
	}

	g.lifetimeTracker.Register(id, g.tick, sample.Genome.Archetype)
	g.recordEvent(telemetry.Event{Type: telemetry.EventBlobSpawn, Tick: g.tick, EntityID: id})
	return id, nil
}

// spawnFood creates a regular food particle at (x, y). A fraction of them are large.
func (g *Game) spawnFood(x, y float64) (uint64, error) {
	foodCfg := g.cfg.Food
	radius := foodCfg.Radius
	if foodCfg.LargeRadius > 0 && g.rng.Float64() < foodCfg.LargeChance {
		radius = foodCfg.LargeRadius
	}
	body := components.Body{Radius: radius}

	id, err := g.world.InsertFood(FoodSpec{
		X:         x,
		Y:         y,
		Radius:    radius,
		Nutrition: foodCfg.NutritionPerArea * body.Area(),
	})
	if err != nil {
		return 0, err
	}
	g.recordEvent(telemetry.Event{Type: telemetry.EventFoodSpawn, Tick: g.tick, EntityID: id})
	return id, nil
}

// corpseRadius is the size of the food left by a dead blob.
func (g *Game) corpseRadius(blobRadius float64) float64 {
	return math.Max(g.cfg.Food.Radius, 0.5*blobRadius)
}

// updateLifecycle removes eaten food and dead blobs, then drops corpses
// where converted blobs died.
func (g *Game) updateLifecycle(report *StepReport) {
	// Blobs that died outside combat this tick starved.
	clear(g.deadSet)
	for _, d := range g.outcome.Deaths {
		g.deadSet[d.ID] = true
	}
	for _, b := range g.blobRefs {
		if g.deadSet[b.ID] || !b.Vitals.Dead() {
			continue
		}
		state := g.participants.Blobs[b.ID]
		g.outcome.Deaths = append(g.outcome.Deaths, systems.Death{
			ID:        b.ID,
			Cause:     systems.DeathStarved,
			X:         b.Pos.X,
			Y:         b.Pos.Y,
			Radius:    b.Body.Radius,
			Nutrition: systems.CorpseNutrition(state, g.cfg.Food),
		})
		g.deadSet[b.ID] = true
	}

	// Record deaths while component pointers are still valid.
	type corpse struct {
		x, y, radius, nutrition float64
	}
	var corpses []corpse
	for _, d := range g.outcome.Deaths {
		var age float64
		if b, ok := g.world.Blob(d.ID); ok {
			age = b.Vitals.Age
		}
		switch d.Cause {
		case systems.DeathStarved:
			g.recordEvent(telemetry.NewStarveEvent(g.tick, d.ID, age))
		default:
			g.recordEvent(telemetry.NewKillEvent(g.tick, d.Killer, d.ID, d.Cause == systems.DeathSwallowed, age))
		}
		effect := Effect{Kind: EffectDeath, X: d.X, Y: d.Y, Size: d.Radius}
		if d.Cause == systems.DeathSwallowed {
			effect.Kind = EffectSwallow
		} else {
			corpses = append(corpses, corpse{d.X, d.Y, g.corpseRadius(d.Radius), d.Nutrition})
		}
		g.effects = append(g.effects, effect)
		g.logDeath(d, age)
	}

	for _, id := range g.outcome.Eaten {
		if err := g.world.Remove(id); err != nil {
			slog.Error("failed to remove eaten food", "id", id, "error", err)
			continue
		}
		report.FoodEaten++
	}

	for _, d := range g.outcome.Deaths {
		if err := g.world.Remove(d.ID); err != nil {
			slog.Error("failed to remove dead blob", "id", d.ID, "error", err)
			continue
		}
		g.lifetimeTracker.Remove(d.ID)
		report.BlobDeaths++
		if d.Cause == systems.DeathSwallowed {
			report.Swallowed++
		}
	}

	for _, c := range corpses {
		if _, err := g.world.InsertFood(FoodSpec{X: c.x, Y: c.y, Radius: c.radius, Nutrition: c.nutrition}); err != nil {
			slog.Warn("corpse food rejected", "error", err)
			continue
		}
		report.Corpses++
	}
}

// updateSpawning adds food from the fertility field and new blobs, up to the caps.
func (g *Game) updateSpawning(dt float64, report *StepReport) {
	pop := g.cfg.Population

	// Expected food per tick; the fractional part becomes a probability.
	expected := g.cfg.Food.SpawnRate * dt
	count := int(expected)
	if g.rng.Float64() < expected-float64(count) {
		count++
	}
	for i := 0; i < count; i++ {
		if _, food := g.world.Counts(); food >= pop.MaxFood {
			break
		}
		x, y := g.fertility.Sample(g.rng)
		if _, err := g.spawnFood(x, y); err == nil {
			report.Spawned++
		}
	}

	blobs, _ := g.world.Counts()
	if blobs < pop.MaxBlobs && g.rng.Float64() < pop.BlobSpawnChance {
		x, y := g.randomPosition()
		if _, err := g.spawnBlob(x, y); err == nil {
			report.Spawned++
		}
	}

	// Respawn if population drops too low
	if blobs, _ = g.world.Counts(); blobs < pop.RespawnThreshold {
		spawned := 0
		for i := 0; i < pop.RespawnCount && blobs+spawned < pop.MaxBlobs; i++ {
			x, y := g.randomPosition()
			if _, err := g.spawnBlob(x, y); err == nil {
				spawned++
			}
		}
		report.Spawned += spawned
		if spawned > 0 {
			slog.Info("respawn", "tick", g.tick, "population_before", blobs, "spawned", spawned)
		}
	}
}
