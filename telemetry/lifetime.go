package telemetry

// LifetimeStats tracks per-blob statistics over its lifetime.
type LifetimeStats struct {
	BirthTick uint64
	Archetype int

	FoodEaten   int
	EnergyEaten float64
	Kills       int
}

// LifetimeTracker manages per-blob lifetime statistics.
type LifetimeTracker struct {
	stats map[uint64]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint64]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new blob.
func (lt *LifetimeTracker) Register(id, birthTick uint64, archetype int) {
	lt.stats[id] = &LifetimeStats{BirthTick: birthTick, Archetype: archetype}
}

// Get returns the stats for a blob, or nil.
func (lt *LifetimeTracker) Get(id uint64) *LifetimeStats {
	return lt.stats[id]
}

// Remove drops a blob's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint64) *LifetimeStats {
	s := lt.stats[id]
	delete(lt.stats, id)
	return s
}

// Count returns the number of tracked blobs.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// Record folds an event into the stats of the blob it names.
func (lt *LifetimeTracker) Record(ev Event) {
	s := lt.stats[ev.EntityID]
	if s == nil {
		return
	}
	switch ev.Type {
	case EventFeed:
		s.FoodEaten++
		s.EnergyEaten += ev.Amount
	case EventKill, EventSwallow:
		s.Kills++
	}
}
