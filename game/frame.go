package game

import (
	"cmp"
	"image/color"
	"slices"

	"github.com/pthm-cable/blobs/components"
)

// EntityView is the read-only state of one entity as shown to observers.
type EntityView struct {
	ID             uint64          `json:"id"`
	Kind           components.Kind `json:"kind"`
	X              float64         `json:"x"`
	Y              float64         `json:"y"`
	Radius         float64         `json:"radius"`
	Color          color.RGBA      `json:"color"`
	HealthFraction float64         `json:"health"` // always 1 for food
	Mode           components.Mode `json:"mode"`
	Held           bool            `json:"held,omitempty"`
}

// EffectKind classifies a momentary event worth showing.
type EffectKind uint8

const (
	EffectFeed EffectKind = iota
	EffectDeath
	EffectSwallow
)

// Effect marks where something happened during the tick.
type Effect struct {
	Kind EffectKind `json:"kind"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
	Size float64    `json:"size"`
}

// Frame is an immutable picture of the world after a tick.
type Frame struct {
	Tick     uint64       `json:"tick"`
	Blobs    int          `json:"blobs"`
	Food     int          `json:"food"`
	Entities []EntityView `json:"entities"` // ordered by id
	Effects  []Effect     `json:"effects,omitempty"`
}

// EntityAt returns the entity whose circle contains (x, y) with the nearest
// center. Ties go to the lowest id.
func (f *Frame) EntityAt(x, y float64) (uint64, bool) {
	best := -1
	bestDist := 0.0
	for i := range f.Entities {
		e := &f.Entities[i]
		dx, dy := e.X-x, e.Y-y
		d := dx*dx + dy*dy
		if d > e.Radius*e.Radius {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return 0, false
	}
	return f.Entities[best].ID, true
}

// Find returns the view for id.
func (f *Frame) Find(id uint64) (EntityView, bool) {
	i, ok := slices.BinarySearchFunc(f.Entities, id, func(e EntityView, id uint64) int {
		return cmp.Compare(e.ID, id)
	})
	if !ok {
		return EntityView{}, false
	}
	return f.Entities[i], true
}

// Frame returns the most recently published frame. It is safe to call from
// any goroutine; the frame must not be modified.
func (g *Game) Frame() *Frame {
	return g.frame.Load()
}

// Snapshot returns the entities of the latest frame.
func (g *Game) Snapshot() []EntityView {
	return g.Frame().Entities
}

// SelectEntityAt picks an entity under a world point on the latest frame.
func (g *Game) SelectEntityAt(x, y float64) (uint64, bool) {
	return g.Frame().EntityAt(x, y)
}

// publishFrame builds a fresh frame from the world and swaps it in.
// Published frames are never mutated, so readers need no lock.
func (g *Game) publishFrame() {
	g.blobRefs = g.world.Blobs(g.blobRefs)
	g.foodRefs = g.world.Foods(g.foodRefs)

	blobs, food := g.world.Counts()
	f := &Frame{
		Tick:     g.tick,
		Blobs:    blobs,
		Food:     food,
		Entities: make([]EntityView, 0, len(g.blobRefs)+len(g.foodRefs)),
		Effects:  slices.Clone(g.effects),
	}
	g.effects = g.effects[:0]
	for _, b := range g.blobRefs {
		f.Entities = append(f.Entities, EntityView{
			ID:             b.ID,
			Kind:           components.KindBlob,
			X:              b.Pos.X,
			Y:              b.Pos.Y,
			Radius:         b.Body.Radius,
			Color:          b.Genome.Color.RGBA(),
			HealthFraction: b.Vitals.HealthFraction(),
			Mode:           b.Behavior.Mode,
			Held:           b.Behavior.Held,
		})
	}
	foodRGBA := foodColor.RGBA()
	for _, fd := range g.foodRefs {
		f.Entities = append(f.Entities, EntityView{
			ID:             fd.ID,
			Kind:           components.KindFood,
			X:              fd.Pos.X,
			Y:              fd.Pos.Y,
			Radius:         fd.Body.Radius,
			Color:          foodRGBA,
			HealthFraction: 1,
		})
	}
	slices.SortFunc(f.Entities, func(a, b EntityView) int { return cmp.Compare(a.ID, b.ID) })
	g.frame.Store(f)
}
