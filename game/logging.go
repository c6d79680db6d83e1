package game

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/blobs/systems"
)

// logDeath logs a blob death with its lifetime record, at debug level.
func (g *Game) logDeath(d systems.Death, age float64) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs := []any{
		"id", d.ID,
		"cause", d.Cause.String(),
		"tick", g.tick,
		"age", age,
		"radius", d.Radius,
	}
	if d.Killer != 0 {
		attrs = append(attrs, "killer", d.Killer)
	}
	if s := g.lifetimeTracker.Get(d.ID); s != nil {
		attrs = append(attrs,
			"archetype", g.cfg.Traits.Archetypes[s.Archetype].Name,
			"food_eaten", s.FoodEaten,
			"energy_eaten", s.EnergyEaten,
			"kills", s.Kills,
		)
	}
	slog.Debug("blob died", attrs...)
}

// LogWorldState logs population counts and sweep counters.
func (g *Game) LogWorldState() {
	blobs, food := g.world.Counts()
	sweep := g.sweep.Stats()
	slog.Info("world",
		"tick", g.tick,
		"blobs", blobs,
		"food", food,
		"tracked", g.lifetimeTracker.Count(),
		"sweep_axis", sweep.Axis.String(),
		"intervals", sweep.Intervals,
		"excluded", sweep.Excluded,
		"swaps", sweep.Swaps,
		"candidates", sweep.Candidates,
		"contacts", len(g.contacts),
	)
}
