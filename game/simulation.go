package game

import (
	"log/slog"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/systems"
	"github.com/pthm-cable/blobs/telemetry"
)

// buildPerception fills the perception entries and grid from the current
// positions. Steering reads only these, so all blobs see the same moment.
func (g *Game) buildPerception() {
	g.seen = g.seen[:0]
	clear(g.seenIndex)
	for _, b := range g.blobRefs {
		g.seenIndex[b.ID] = len(g.seen)
		g.seen = append(g.seen, systems.Seen{
			ID:     b.ID,
			Kind:   components.KindBlob,
			X:      b.Pos.X,
			Y:      b.Pos.Y,
			Radius: b.Body.Radius,
			Color:  b.Genome.Color,
		})
	}
	for _, f := range g.foodRefs {
		g.seenIndex[f.ID] = len(g.seen)
		g.seen = append(g.seen, systems.Seen{
			ID:     f.ID,
			Kind:   components.KindFood,
			X:      f.Pos.X,
			Y:      f.Pos.Y,
			Radius: f.Body.Radius,
			Color:  foodColor,
		})
	}
	g.spatialGrid.Build(g.seen)
}

// updateMotion steers, moves and feeds the metabolism of every blob.
// Blobs whose position stops being finite are removed.
func (g *Game) updateMotion(dt float64, report *StepReport) {
	g.blobRefs = g.world.Blobs(g.blobRefs)
	g.foodRefs = g.world.Foods(g.foodRefs)
	if len(g.blobRefs) == 0 {
		return
	}

	// Phase A: snapshots
	g.buildPerception()
	p := g.parallel
	p.agents = p.agents[:0]
	for _, b := range g.blobRefs {
		p.agents = append(p.agents, systems.Agent{
			ID:       b.ID,
			X:        b.Pos.X,
			Y:        b.Pos.Y,
			Radius:   b.Body.Radius,
			Age:      b.Vitals.Age,
			Genome:   *b.Genome,
			Behavior: *b.Behavior,
		})
	}
	n := len(p.agents)
	if cap(p.intents) < n {
		p.intents = make([]systems.Steer, n)
	}
	p.intents = p.intents[:n]

	// Phase B: steering, parallel above the threshold
	g.dispatch(workSteering, n, dt)

	// Phase C: apply in id order
	grace := g.cfg.Energy.StarvationGrace
	var invalid []uint64
	for i, b := range g.blobRefs {
		steer := &p.intents[i]
		beh := b.Behavior

		if beh.Held {
			b.Pos.X, b.Pos.Y = beh.HoldX, beh.HoldY
			b.Vel.X, b.Vel.Y = 0, 0
			beh.Mode = components.ModeHeld
		} else {
			beh.Heading = steer.Heading
			beh.Mode = steer.Mode
			systems.Integrate(b.Pos, b.Vel, &beh.Heading, steer.Speed, dt, g.worldWidth, g.worldHeight)
		}
		systems.TickTimers(beh, dt)

		if systems.Metabolize(b.Vitals, b.Genome.HungerRate, grace, dt) {
			slog.Debug("blob starving to death", "id", b.ID, "age", b.Vitals.Age)
		}

		if !systems.Finite(b.Pos.X, b.Pos.Y) {
			invalid = append(invalid, b.ID)
		}
	}

	// Removal invalidates component pointers, so it waits until the loop is done.
	for _, id := range invalid {
		slog.Warn("removing blob with invalid position", "id", id, "tick", g.tick)
		if err := g.world.Remove(id); err != nil {
			slog.Error("failed to remove blob", "id", id, "error", err)
			continue
		}
		g.lifetimeTracker.Remove(id)
		g.recordEvent(telemetry.Event{Type: telemetry.EventRemoved, Tick: g.tick, EntityID: id})
		report.RemovedInvalid++
	}
}
