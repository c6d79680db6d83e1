package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks uint64
	dt                  float64

	windowStartTick uint64

	// Event counters for current window
	blobSpawns int
	foodSpawns int
	feeds      int
	fights     int
	flees      int
	kills      int
	swallows   int
	starved    int
	removed    int

	energyEaten float64
	lifespans   []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := uint64(1)
	if dt > 0 && windowDurationSec/dt >= 1 {
		ticksPerWindow = uint64(windowDurationSec / dt)
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts one event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBlobSpawn:
		c.blobSpawns++
	case EventFoodSpawn:
		c.foodSpawns++
	case EventFeed:
		c.feeds++
		c.energyEaten += ev.Amount
	case EventFight:
		c.fights++
	case EventFlee:
		c.flees++
	case EventKill:
		c.kills++
		c.lifespans = append(c.lifespans, ev.Amount)
	case EventSwallow:
		c.swallows++
		c.lifespans = append(c.lifespans, ev.Amount)
	case EventStarve:
		c.starved++
		c.lifespans = append(c.lifespans, ev.Amount)
	case EventRemoved:
		c.removed++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Population is the state sampled at the end of a window.
type Population struct {
	Blobs    int
	Food     int
	Energies []float64 // fraction of max energy per blob
	Radii    []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick uint64, pop Population) WindowStats {
	var fightRate float64
	if pop.Blobs > 0 {
		fightRate = float64(c.fights) / float64(pop.Blobs)
	}

	energyMean, energyP10, energyP50, energyP90 := ComputeEnergyStats(pop.Energies)
	radiusMean, _, _, _ := ComputeEnergyStats(pop.Radii)
	lifespanMean, _, lifespanP50, _ := ComputeEnergyStats(c.lifespans)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Blobs: pop.Blobs,
		Food:  pop.Food,

		BlobSpawns: c.blobSpawns,
		FoodSpawns: c.foodSpawns,
		Feeds:      c.feeds,
		Fights:     c.fights,
		Flees:      c.flees,
		Kills:      c.kills,
		Swallows:   c.swallows,
		Starved:    c.starved,
		Removed:    c.removed,
		FightRate:  fightRate,

		EnergyEaten: c.energyEaten,
		EnergyMean:  energyMean,
		EnergyP10:   energyP10,
		EnergyP50:   energyP50,
		EnergyP90:   energyP90,

		RadiusMean:   radiusMean,
		LifespanMean: lifespanMean,
		LifespanP50:  lifespanP50,
	}

	c.windowStartTick = currentTick
	c.blobSpawns = 0
	c.foodSpawns = 0
	c.feeds = 0
	c.fights = 0
	c.flees = 0
	c.kills = 0
	c.swallows = 0
	c.starved = 0
	c.removed = 0
	c.energyEaten = 0
	c.lifespans = c.lifespans[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() uint64 {
	return c.windowDurationTicks
}
