package game

import (
	"log/slog"

	"github.com/pthm-cable/blobs/telemetry"
)

// recordEvent feeds an event to the window collector and the lifetime tracker.
func (g *Game) recordEvent(ev telemetry.Event) {
	g.collector.Record(ev)
	g.lifetimeTracker.Record(ev)
}

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.samplePopulation())
	perfStats := g.perfCollector.Stats()
	g.lastStats, g.hasStats = stats, true

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// samplePopulation reads energy and size distributions from the published frame's refs.
func (g *Game) samplePopulation() telemetry.Population {
	blobs, food := g.world.Counts()
	pop := telemetry.Population{
		Blobs:    blobs,
		Food:     food,
		Energies: make([]float64, 0, len(g.blobRefs)),
		Radii:    make([]float64, 0, len(g.blobRefs)),
	}
	for _, b := range g.blobRefs {
		pop.Energies = append(pop.Energies, b.Vitals.EnergyFraction())
		pop.Radii = append(pop.Radii, b.Body.Radius)
	}
	return pop
}
