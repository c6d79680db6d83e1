package game

import (
	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/systems"
	"github.com/pthm-cable/blobs/telemetry"
)

// updateBroadPhase feeds current geometry to the sweep and returns candidate pairs.
func (g *Game) updateBroadPhase() []systems.Pair {
	g.blobRefs = g.world.Blobs(g.blobRefs)
	g.foodRefs = g.world.Foods(g.foodRefs)

	g.colliders = g.colliders[:0]
	clear(g.colliderByID)
	for _, b := range g.blobRefs {
		c := systems.Collider{ID: b.ID, Kind: components.KindBlob, X: b.Pos.X, Y: b.Pos.Y, Radius: b.Body.Radius}
		g.colliders = append(g.colliders, c)
		g.colliderByID[b.ID] = c
	}
	for _, f := range g.foodRefs {
		c := systems.Collider{ID: f.ID, Kind: components.KindFood, X: f.Pos.X, Y: f.Pos.Y, Radius: f.Body.Radius}
		g.colliders = append(g.colliders, c)
		g.colliderByID[f.ID] = c
	}

	g.sweep.Update(g.colliders)
	return g.sweep.QueryOverlaps()
}

// narrowPhase runs exact circle tests over the candidate pairs. Chunks are
// concatenated in order, so contacts keep the pairs' (A, B) order.
func (g *Game) narrowPhase(pairs []systems.Pair) {
	g.pairs = pairs
	chunks := g.dispatch(workNarrowPhase, len(pairs), 0)

	g.contacts = g.contacts[:0]
	for i := 0; i < chunks; i++ {
		g.contacts = append(g.contacts, g.parallel.contactChunks[i]...)
	}
}

// resolveContacts applies interaction rules to the contacts in order.
func (g *Game) resolveContacts(dt float64, report *StepReport) {
	g.participants.Reset()
	for _, b := range g.blobRefs {
		g.participants.Blobs[b.ID] = &systems.BlobState{
			ID:       b.ID,
			Pos:      b.Pos,
			Body:     b.Body,
			Vitals:   b.Vitals,
			Genome:   b.Genome,
			Behavior: b.Behavior,
		}
	}
	for _, f := range g.foodRefs {
		g.participants.Foods[f.ID] = &systems.FoodState{
			ID:        f.ID,
			Pos:       f.Pos,
			Body:      f.Body,
			Nutrition: f.Nutrition,
		}
	}

	g.outcome.Reset()
	g.resolver.Resolve(g.contacts, g.participants, dt, g.rng, &g.outcome)

	for i, foodID := range g.outcome.Eaten {
		var amount float64
		if f, ok := g.participants.Foods[foodID]; ok {
			amount = f.Nutrition.Value
			g.effects = append(g.effects, Effect{Kind: EffectFeed, X: f.Pos.X, Y: f.Pos.Y, Size: f.Body.Radius})
		}
		g.recordEvent(telemetry.Event{
			Type:     telemetry.EventFeed,
			Tick:     g.tick,
			EntityID: g.outcome.EatenBy[i],
			TargetID: foodID,
			Amount:   amount,
		})
	}
	for i := 0; i < g.outcome.Fights; i++ {
		g.recordEvent(telemetry.Event{Type: telemetry.EventFight, Tick: g.tick})
	}
	for i := 0; i < g.outcome.Flees; i++ {
		g.recordEvent(telemetry.Event{Type: telemetry.EventFlee, Tick: g.tick})
	}
	report.Fights = g.outcome.Fights
	report.Flees = g.outcome.Flees
	report.Separations = g.outcome.Separations
}
