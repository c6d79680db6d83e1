package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 0.1)
	if got := c.WindowDurationTicks(); got != 10 {
		t.Fatalf("WindowDurationTicks = %d, want 10", got)
	}
	if c.ShouldFlush(9) {
		t.Error("ShouldFlush(9) = true before window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("ShouldFlush(10) = false at window end")
	}
}

func TestCollectorWindowMinimumOneTick(t *testing.T) {
	c := NewCollector(0.001, 0.1)
	if got := c.WindowDurationTicks(); got != 1 {
		t.Errorf("WindowDurationTicks = %d, want 1", got)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.1)

	c.Record(Event{Type: EventBlobSpawn})
	c.Record(Event{Type: EventFoodSpawn})
	c.Record(Event{Type: EventFoodSpawn})
	c.Record(Event{Type: EventFeed, EntityID: 1, Amount: 2.5})
	c.Record(Event{Type: EventFeed, EntityID: 2, Amount: 1.5})
	c.Record(Event{Type: EventFight})
	c.Record(Event{Type: EventFight})
	c.Record(Event{Type: EventFlee})
	c.Record(NewKillEvent(5, 1, 3, false, 4))
	c.Record(NewKillEvent(5, 1, 4, true, 8))
	c.Record(NewStarveEvent(6, 2, 12))
	c.Record(Event{Type: EventRemoved})

	s := c.Flush(10, Population{
		Blobs:    4,
		Food:     7,
		Energies: []float64{0.2, 0.4, 0.6, 0.8},
		Radii:    []float64{5, 15},
	})

	checks := []struct {
		name      string
		got, want int
	}{
		{"blobs", s.Blobs, 4},
		{"food", s.Food, 7},
		{"blob_spawns", s.BlobSpawns, 1},
		{"food_spawns", s.FoodSpawns, 2},
		{"feeds", s.Feeds, 2},
		{"fights", s.Fights, 2},
		{"flees", s.Flees, 1},
		{"kills", s.Kills, 1},
		{"swallows", s.Swallows, 1},
		{"starved", s.Starved, 1},
		{"removed", s.Removed, 1},
	}
	for _, tt := range checks {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if math.Abs(s.EnergyEaten-4) > 1e-9 {
		t.Errorf("EnergyEaten = %v, want 4", s.EnergyEaten)
	}
	if math.Abs(s.FightRate-0.5) > 1e-9 {
		t.Errorf("FightRate = %v, want 0.5", s.FightRate)
	}
	if math.Abs(s.EnergyMean-0.5) > 1e-9 {
		t.Errorf("EnergyMean = %v, want 0.5", s.EnergyMean)
	}
	if math.Abs(s.RadiusMean-10) > 1e-9 {
		t.Errorf("RadiusMean = %v, want 10", s.RadiusMean)
	}
	if math.Abs(s.LifespanMean-8) > 1e-9 {
		t.Errorf("LifespanMean = %v, want 8", s.LifespanMean)
	}
	if math.Abs(s.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("SimTimeSec = %v, want 1.0", s.SimTimeSec)
	}

	// Counters reset for the next window.
	next := c.Flush(20, Population{})
	if next.WindowStartTick != 10 {
		t.Errorf("next window start = %d, want 10", next.WindowStartTick)
	}
	if next.Feeds != 0 || next.Kills != 0 || next.EnergyEaten != 0 || next.LifespanMean != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(7, 100, 2)

	lt.Record(Event{Type: EventFeed, EntityID: 7, Amount: 3})
	lt.Record(NewKillEvent(120, 7, 9, true, 1))
	lt.Record(Event{Type: EventFeed, EntityID: 99, Amount: 3}) // untracked

	s := lt.Get(7)
	if s == nil {
		t.Fatal("stats missing for registered blob")
	}
	if s.BirthTick != 100 || s.Archetype != 2 {
		t.Errorf("birth = %d archetype = %d, want 100, 2", s.BirthTick, s.Archetype)
	}
	if s.FoodEaten != 1 || s.EnergyEaten != 3 || s.Kills != 1 {
		t.Errorf("unexpected stats %+v", s)
	}

	if lt.Remove(7) == nil || lt.Count() != 0 {
		t.Error("Remove should return stats and drop the entry")
	}
	if lt.Get(7) != nil {
		t.Error("Get after Remove should be nil")
	}
}
