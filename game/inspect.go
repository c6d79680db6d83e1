package game

import (
	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/telemetry"
)

// Inspection is a copy of one entity's full state for display.
// Blob-only fields are zero for food.
type Inspection struct {
	View      EntityView
	Vitals    components.Vitals
	Genome    components.Genome
	Behavior  components.Behavior
	Nutrition float64 // food only
	Archetype string
	Lifetime  telemetry.LifetimeStats
}

// Inspect copies the current state of id. It must be called from the
// goroutine that steps the game.
func (g *Game) Inspect(id uint64) (Inspection, bool) {
	view, ok := g.Frame().Find(id)
	if !ok {
		return Inspection{}, false
	}
	in := Inspection{View: view}

	if b, ok := g.world.Blob(id); ok {
		in.Vitals = *b.Vitals
		in.Genome = *b.Genome
		in.Behavior = *b.Behavior
		if a := b.Genome.Archetype; a >= 0 && a < len(g.cfg.Traits.Archetypes) {
			in.Archetype = g.cfg.Traits.Archetypes[a].Name
		}
		if lt := g.lifetimeTracker.Get(id); lt != nil {
			in.Lifetime = *lt
		}
		return in, true
	}
	if f, ok := g.world.Food(id); ok {
		in.Nutrition = f.Nutrition.Value
		return in, true
	}
	return Inspection{}, false
}
