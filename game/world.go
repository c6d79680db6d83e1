package game

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobs/components"
)

var (
	// ErrUnknownEntity is returned for ids that are not, or no longer, in the world.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrInvalidEntity is returned when an entity has a non-finite position or a bad radius.
	ErrInvalidEntity = errors.New("invalid entity")
)

// BlobSpec describes a blob to insert.
type BlobSpec struct {
	X, Y    float64
	Radius  float64
	Heading float64
	Vitals  components.Vitals
	Genome  components.Genome
	Wander  float64
}

// FoodSpec describes a food particle to insert.
type FoodSpec struct {
	X, Y      float64
	Radius    float64
	Nutrition float64
}

// World owns the ECS storage for blobs and food and hands out stable ids.
// Ids start at 1 and are never reused.
type World struct {
	ecs *ecs.World

	blobMapper *ecs.Map7[
		components.Identity,
		components.Position,
		components.Velocity,
		components.Body,
		components.Vitals,
		components.Genome,
		components.Behavior,
	]
	blobFilter *ecs.Filter7[
		components.Identity,
		components.Position,
		components.Velocity,
		components.Body,
		components.Vitals,
		components.Genome,
		components.Behavior,
	]
	foodMapper *ecs.Map4[
		components.Identity,
		components.Position,
		components.Body,
		components.Nutrition,
	]
	foodFilter *ecs.Filter4[
		components.Identity,
		components.Position,
		components.Body,
		components.Nutrition,
	]

	// Individual component mappers for lookups
	idMap        *ecs.Map1[components.Identity]
	posMap       *ecs.Map1[components.Position]
	velMap       *ecs.Map1[components.Velocity]
	bodyMap      *ecs.Map1[components.Body]
	vitalsMap    *ecs.Map1[components.Vitals]
	genomeMap    *ecs.Map1[components.Genome]
	behaviorMap  *ecs.Map1[components.Behavior]
	nutritionMap *ecs.Map1[components.Nutrition]

	entities map[uint64]ecs.Entity
	nextID   uint64
	blobs    int
	food     int
}

// NewWorld creates an empty world.
func NewWorld() *World {
	w := ecs.NewWorld()
	return &World{
		ecs: w,
		blobMapper: ecs.NewMap7[
			components.Identity,
			components.Position,
			components.Velocity,
			components.Body,
			components.Vitals,
			components.Genome,
			components.Behavior,
		](w),
		blobFilter: ecs.NewFilter7[
			components.Identity,
			components.Position,
			components.Velocity,
			components.Body,
			components.Vitals,
			components.Genome,
			components.Behavior,
		](w),
		foodMapper: ecs.NewMap4[
			components.Identity,
			components.Position,
			components.Body,
			components.Nutrition,
		](w),
		foodFilter: ecs.NewFilter4[
			components.Identity,
			components.Position,
			components.Body,
			components.Nutrition,
		](w),
		idMap:        ecs.NewMap1[components.Identity](w),
		posMap:       ecs.NewMap1[components.Position](w),
		velMap:       ecs.NewMap1[components.Velocity](w),
		bodyMap:      ecs.NewMap1[components.Body](w),
		vitalsMap:    ecs.NewMap1[components.Vitals](w),
		genomeMap:    ecs.NewMap1[components.Genome](w),
		behaviorMap:  ecs.NewMap1[components.Behavior](w),
		nutritionMap: ecs.NewMap1[components.Nutrition](w),
		entities:     make(map[uint64]ecs.Entity),
		nextID:       1,
	}
}

func validCircle(x, y, r float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return fmt.Errorf("%w: position (%v, %v)", ErrInvalidEntity, x, y)
	}
	if !(r > 0) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: radius %v", ErrInvalidEntity, r)
	}
	return nil
}

// InsertBlob adds a blob and returns its id.
func (w *World) InsertBlob(s BlobSpec) (uint64, error) {
	if err := validCircle(s.X, s.Y, s.Radius); err != nil {
		return 0, err
	}
	id := w.nextID
	w.nextID++

	ident := components.Identity{ID: id, Kind: components.KindBlob}
	pos := components.Position{X: s.X, Y: s.Y}
	vel := components.Velocity{}
	body := components.Body{Radius: s.Radius}
	vitals := s.Vitals
	genome := s.Genome
	behavior := components.Behavior{Heading: s.Heading, WanderSeed: s.Wander}

	w.entities[id] = w.blobMapper.NewEntity(&ident, &pos, &vel, &body, &vitals, &genome, &behavior)
	w.blobs++
	return id, nil
}

// InsertFood adds a food particle and returns its id.
func (w *World) InsertFood(s FoodSpec) (uint64, error) {
	if err := validCircle(s.X, s.Y, s.Radius); err != nil {
		return 0, err
	}
	if math.IsNaN(s.Nutrition) || s.Nutrition < 0 {
		return 0, fmt.Errorf("%w: nutrition %v", ErrInvalidEntity, s.Nutrition)
	}
	id := w.nextID
	w.nextID++

	ident := components.Identity{ID: id, Kind: components.KindFood}
	pos := components.Position{X: s.X, Y: s.Y}
	body := components.Body{Radius: s.Radius}
	nut := components.Nutrition{Value: s.Nutrition}

	w.entities[id] = w.foodMapper.NewEntity(&ident, &pos, &body, &nut)
	w.food++
	return id, nil
}

// Remove deletes an entity by id. Must not be called while a query is open.
func (w *World) Remove(id uint64) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	switch w.idMap.Get(e).Kind {
	case components.KindBlob:
		w.blobMapper.Remove(e)
		w.blobs--
	case components.KindFood:
		w.foodMapper.Remove(e)
		w.food--
	}
	delete(w.entities, id)
	return nil
}

// Kind returns the kind of a live entity.
func (w *World) Kind(id uint64) (components.Kind, bool) {
	e, ok := w.entities[id]
	if !ok {
		return 0, false
	}
	return w.idMap.Get(e).Kind, true
}

// Position returns a pointer to the position of a live entity, or nil.
// The pointer is valid until the next insert or removal.
func (w *World) Position(id uint64) *components.Position {
	e, ok := w.entities[id]
	if !ok {
		return nil
	}
	return w.posMap.Get(e)
}

// Blob returns pointers to a live blob's components.
func (w *World) Blob(id uint64) (BlobRef, bool) {
	e, ok := w.entities[id]
	if !ok || w.idMap.Get(e).Kind != components.KindBlob {
		return BlobRef{}, false
	}
	return BlobRef{
		ID:       id,
		Pos:      w.posMap.Get(e),
		Vel:      w.velMap.Get(e),
		Body:     w.bodyMap.Get(e),
		Vitals:   w.vitalsMap.Get(e),
		Genome:   w.genomeMap.Get(e),
		Behavior: w.behaviorMap.Get(e),
	}, true
}

// Food returns pointers to a live food particle's components.
func (w *World) Food(id uint64) (FoodRef, bool) {
	e, ok := w.entities[id]
	if !ok || w.idMap.Get(e).Kind != components.KindFood {
		return FoodRef{}, false
	}
	return FoodRef{
		ID:        id,
		Pos:       w.posMap.Get(e),
		Body:      w.bodyMap.Get(e),
		Nutrition: w.nutritionMap.Get(e),
	}, true
}

// BlobRef holds component pointers for one blob.
type BlobRef struct {
	ID       uint64
	Pos      *components.Position
	Vel      *components.Velocity
	Body     *components.Body
	Vitals   *components.Vitals
	Genome   *components.Genome
	Behavior *components.Behavior
}

// FoodRef holds component pointers for one food particle.
type FoodRef struct {
	ID        uint64
	Pos       *components.Position
	Body      *components.Body
	Nutrition *components.Nutrition
}

// Blobs collects every blob, ordered by id. The refs are valid until the
// next insert or removal.
func (w *World) Blobs(dst []BlobRef) []BlobRef {
	dst = dst[:0]
	query := w.blobFilter.Query()
	for query.Next() {
		ident, pos, vel, body, vitals, genome, behavior := query.Get()
		dst = append(dst, BlobRef{
			ID:       ident.ID,
			Pos:      pos,
			Vel:      vel,
			Body:     body,
			Vitals:   vitals,
			Genome:   genome,
			Behavior: behavior,
		})
	}
	slices.SortFunc(dst, func(a, b BlobRef) int { return cmp.Compare(a.ID, b.ID) })
	return dst
}

// Foods collects every food particle, ordered by id.
func (w *World) Foods(dst []FoodRef) []FoodRef {
	dst = dst[:0]
	query := w.foodFilter.Query()
	for query.Next() {
		ident, pos, body, nut := query.Get()
		dst = append(dst, FoodRef{ID: ident.ID, Pos: pos, Body: body, Nutrition: nut})
	}
	slices.SortFunc(dst, func(a, b FoodRef) int { return cmp.Compare(a.ID, b.ID) })
	return dst
}

// Counts returns the number of live blobs and food particles.
func (w *World) Counts() (blobs, food int) {
	return w.blobs, w.food
}

// Len returns the total number of live entities.
func (w *World) Len() int {
	return w.blobs + w.food
}

// NextID returns the id the next inserted entity will receive.
func (w *World) NextID() uint64 {
	return w.nextID
}
