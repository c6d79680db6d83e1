// Package telemetry provides population statistics, performance tracking and CSV output.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBlobSpawn EventType = iota
	EventFoodSpawn
	EventFeed
	EventFight
	EventFlee
	EventKill
	EventSwallow
	EventStarve
	EventRemoved // dropped for an invalid position
)

// String returns the snake_case event name used in logs.
func (t EventType) String() string {
	switch t {
	case EventBlobSpawn:
		return "blob_spawn"
	case EventFoodSpawn:
		return "food_spawn"
	case EventFeed:
		return "feed"
	case EventFight:
		return "fight"
	case EventFlee:
		return "flee"
	case EventKill:
		return "kill"
	case EventSwallow:
		return "swallow"
	case EventStarve:
		return "starve"
	case EventRemoved:
		return "removed"
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Tick     uint64
	EntityID uint64

	// Optional fields depending on event type
	TargetID uint64  // victim of a kill or swallow
	Amount   float64 // energy gained, or age at death
}

// NewKillEvent creates an event for a blob killed by another.
func NewKillEvent(tick, killerID, victimID uint64, swallowed bool, victimAge float64) Event {
	t := EventKill
	if swallowed {
		t = EventSwallow
	}
	return Event{Type: t, Tick: tick, EntityID: killerID, TargetID: victimID, Amount: victimAge}
}

// NewStarveEvent creates an event for a blob that starved.
func NewStarveEvent(tick, id uint64, age float64) Event {
	return Event{Type: EventStarve, Tick: tick, EntityID: id, Amount: age}
}
