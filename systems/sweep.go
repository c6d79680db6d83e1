package systems

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/blobs/components"
)

// Axis is a sweep direction.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// AxisMode selects how the sweep axis is chosen each tick.
type AxisMode uint8

const (
	AxisAuto AxisMode = iota // greater positional variance, ties go to X
	AxisFixedX
	AxisFixedY
)

// ParseAxisMode maps the config spelling to an AxisMode.
func ParseAxisMode(s string) (AxisMode, error) {
	switch s {
	case "", "auto":
		return AxisAuto, nil
	case "x":
		return AxisFixedX, nil
	case "y":
		return AxisFixedY, nil
	}
	return AxisAuto, fmt.Errorf("unknown sweep axis %q", s)
}

// Collider is the per-tick geometric view of one entity.
type Collider struct {
	ID     uint64
	Kind   components.Kind
	X, Y   float64
	Radius float64
}

// valid reports whether the collider has a usable extent.
func (c Collider) valid() bool {
	return c.Radius > 0 && finite(c.X, c.Y, c.Radius)
}

// Interval is a collider's projection on the sweep axis plus its extent on the other axis.
type Interval struct {
	ID       uint64
	Kind     components.Kind
	Min, Max float64
	CrossMin float64
	CrossMax float64
}

// Pair is an unordered candidate pair stored with A < B.
type Pair struct {
	A, B uint64
}

// MakePair orders two ids into a Pair.
func MakePair(a, b uint64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func comparePairs(p, q Pair) int {
	if c := cmp.Compare(p.A, q.A); c != 0 {
		return c
	}
	return cmp.Compare(p.B, q.B)
}

// CollisionMatrix records which kinds may collide, as a bitmask per kind.
type CollisionMatrix [components.NumKinds]uint8

// DefaultCollisionMatrix lets blobs touch blobs and food. Food never touches food.
func DefaultCollisionMatrix() CollisionMatrix {
	var m CollisionMatrix
	m.Set(components.KindBlob, components.KindBlob, true)
	m.Set(components.KindBlob, components.KindFood, true)
	return m
}

// Set enables or disables collisions between a and b in both directions.
func (m *CollisionMatrix) Set(a, b components.Kind, on bool) {
	if on {
		m[a] |= 1 << b
		m[b] |= 1 << a
	} else {
		m[a] &^= 1 << b
		m[b] &^= 1 << a
	}
}

// Collides reports whether kinds a and b interact.
func (m *CollisionMatrix) Collides(a, b components.Kind) bool {
	return m[a]&(1<<b) != 0
}

// SweepStats describes the last Update and QueryOverlaps.
type SweepStats struct {
	Axis       Axis
	Intervals  int
	Excluded   int  // colliders dropped for degenerate extent
	Swaps      int  // insertion sort moves; small under coherent motion
	Resorted   bool // order rebuilt with a full sort instead
	Candidates int
}

const (
	// axisHysteresis is how much larger the other axis variance must be
	// before the auto mode switches.
	axisHysteresis = 1.1
	// resortFraction caps newcomers, relative to survivors, that the
	// insertion sort absorbs before a full sort is cheaper.
	resortFraction = 8
)

// SweepAndPrune is a broad phase that keeps intervals sorted across ticks.
// Under coherent motion the previous order is nearly sorted, so the
// insertion sort in Update stays close to linear.
type SweepAndPrune struct {
	mode   AxisMode
	matrix CollisionMatrix
	axis   Axis

	order  []Interval
	next   []Interval
	fresh  map[uint64]Interval
	xs, ys []float64
	active []int
	pairs  []Pair
	stats  SweepStats
}

// NewSweepAndPrune creates an empty index.
func NewSweepAndPrune(mode AxisMode, matrix CollisionMatrix) *SweepAndPrune {
	s := &SweepAndPrune{
		mode:   mode,
		matrix: matrix,
		fresh:  make(map[uint64]Interval, 256),
		order:  make([]Interval, 0, 256),
		next:   make([]Interval, 0, 256),
		active: make([]int, 0, 64),
		pairs:  make([]Pair, 0, 256),
	}
	if mode == AxisFixedY {
		s.axis = AxisY
	}
	return s
}

// Axis returns the axis used by the last Update.
func (s *SweepAndPrune) Axis() Axis {
	return s.axis
}

// Stats returns counters from the last Update and QueryOverlaps.
func (s *SweepAndPrune) Stats() SweepStats {
	return s.stats
}

// Len returns the number of intervals currently indexed.
func (s *SweepAndPrune) Len() int {
	return len(s.order)
}

// Update replaces the indexed set with colliders. Colliders with a
// non-finite position or non-positive radius are left out.
func (s *SweepAndPrune) Update(colliders []Collider) {
	clear(s.fresh)
	s.xs = s.xs[:0]
	s.ys = s.ys[:0]
	excluded := 0
	for _, c := range colliders {
		if !c.valid() {
			excluded++
			continue
		}
		s.xs = append(s.xs, c.X)
		s.ys = append(s.ys, c.Y)
	}

	prevAxis := s.axis
	s.axis = s.chooseAxis()

	for _, c := range colliders {
		if !c.valid() {
			continue
		}
		along, cross := c.X, c.Y
		if s.axis == AxisY {
			along, cross = c.Y, c.X
		}
		s.fresh[c.ID] = Interval{
			ID:       c.ID,
			Kind:     c.Kind,
			Min:      along - c.Radius,
			Max:      along + c.Radius,
			CrossMin: cross - c.Radius,
			CrossMax: cross + c.Radius,
		}
	}

	// Survivors keep last tick's relative order, newcomers go to the back.
	s.next = s.next[:0]
	for _, iv := range s.order {
		if upd, ok := s.fresh[iv.ID]; ok {
			s.next = append(s.next, upd)
			delete(s.fresh, iv.ID)
		}
	}
	survivors := len(s.next)
	newcomers := len(s.fresh)
	for _, c := range colliders {
		if iv, ok := s.fresh[c.ID]; ok {
			s.next = append(s.next, iv)
			delete(s.fresh, c.ID)
		}
	}
	s.order, s.next = s.next, s.order

	// A new axis leaves the old order meaningless, and many newcomers
	// would each walk far down the slice.
	resort := s.axis != prevAxis || newcomers*resortFraction > survivors
	swaps := 0
	if resort {
		slices.SortFunc(s.order, compareIntervals)
	} else {
		swaps = insertionSort(s.order)
	}

	s.stats = SweepStats{
		Axis:      s.axis,
		Intervals: len(s.order),
		Excluded:  excluded,
		Swaps:     swaps,
		Resorted:  resort,
	}
}

func (s *SweepAndPrune) chooseAxis() Axis {
	switch s.mode {
	case AxisFixedX:
		return AxisX
	case AxisFixedY:
		return AxisY
	}
	if len(s.xs) < 2 {
		return s.axis
	}
	vx, vy := stat.Variance(s.xs, nil), stat.Variance(s.ys, nil)
	if len(s.order) == 0 {
		if vy > vx {
			return AxisY
		}
		return AxisX
	}
	switch s.axis {
	case AxisX:
		if vy > vx*axisHysteresis {
			return AxisY
		}
	case AxisY:
		if vx > vy*axisHysteresis {
			return AxisX
		}
	}
	return s.axis
}

func compareIntervals(a, b Interval) int {
	if c := cmp.Compare(a.Min, b.Min); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func intervalLess(a, b *Interval) bool {
	if a.Min != b.Min {
		return a.Min < b.Min
	}
	return a.ID < b.ID
}

// insertionSort orders by (Min, ID) and returns how many element moves it made.
func insertionSort(ivs []Interval) int {
	moves := 0
	for i := 1; i < len(ivs); i++ {
		cur := ivs[i]
		j := i - 1
		for j >= 0 && intervalLess(&cur, &ivs[j]) {
			ivs[j+1] = ivs[j]
			j--
			moves++
		}
		ivs[j+1] = cur
	}
	return moves
}

// QueryOverlaps returns every pair whose boxes overlap on both axes and whose
// kinds collide, sorted by (A, B). Touching boxes count as overlapping.
// The returned slice is reused by the next call.
func (s *SweepAndPrune) QueryOverlaps() []Pair {
	s.pairs = s.pairs[:0]
	s.active = s.active[:0]

	for i := range s.order {
		cur := &s.order[i]

		n := 0
		for _, j := range s.active {
			if s.order[j].Max >= cur.Min {
				s.active[n] = j
				n++
			}
		}
		s.active = s.active[:n]

		for _, j := range s.active {
			other := &s.order[j]
			if other.CrossMax < cur.CrossMin || cur.CrossMax < other.CrossMin {
				continue
			}
			if !s.matrix.Collides(other.Kind, cur.Kind) {
				continue
			}
			s.pairs = append(s.pairs, MakePair(other.ID, cur.ID))
		}
		s.active = append(s.active, i)
	}

	slices.SortFunc(s.pairs, comparePairs)
	s.stats.Candidates = len(s.pairs)
	return s.pairs
}

// Intervals returns the current sorted intervals. The slice must not be modified.
func (s *SweepAndPrune) Intervals() []Interval {
	return s.order
}

// BruteForcePairs compares every collider against every other by bounding box.
// It is the reference the sweep must agree with.
func BruteForcePairs(colliders []Collider, matrix CollisionMatrix) []Pair {
	var pairs []Pair
	for i := range colliders {
		a := colliders[i]
		if !a.valid() {
			continue
		}
		for j := i + 1; j < len(colliders); j++ {
			b := colliders[j]
			if !b.valid() || !matrix.Collides(a.Kind, b.Kind) {
				continue
			}
			if a.X+a.Radius < b.X-b.Radius || b.X+b.Radius < a.X-a.Radius {
				continue
			}
			if a.Y+a.Radius < b.Y-b.Radius || b.Y+b.Radius < a.Y-a.Radius {
				continue
			}
			pairs = append(pairs, MakePair(a.ID, b.ID))
		}
	}
	slices.SortFunc(pairs, comparePairs)
	return pairs
}
