package systems

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/pthm-cable/blobs/components"
)

func randomColliders(rng *rand.Rand, n int, width, height float64) []Collider {
	cs := make([]Collider, n)
	for i := range cs {
		kind := components.KindBlob
		if rng.Intn(3) == 0 {
			kind = components.KindFood
		}
		cs[i] = Collider{
			ID:     uint64(i + 1),
			Kind:   kind,
			X:      rng.Float64() * width,
			Y:      rng.Float64() * height,
			Radius: 1 + rng.Float64()*19,
		}
	}
	return cs
}

func TestSweepMatchesBruteForce(t *testing.T) {
	modes := []struct {
		name string
		mode AxisMode
	}{
		{"auto", AxisAuto},
		{"x", AxisFixedX},
		{"y", AxisFixedY},
	}

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(11))
			matrix := DefaultCollisionMatrix()
			sap := NewSweepAndPrune(m.mode, matrix)
			cs := randomColliders(rng, 400, 600, 300)
			nextID := uint64(len(cs) + 1)

			for tick := 0; tick < 30; tick++ {
				sap.Update(cs)
				got := slices.Clone(sap.QueryOverlaps())
				want := BruteForcePairs(cs, matrix)
				if !slices.Equal(got, want) {
					t.Fatalf("tick %d: sweep found %d pairs, brute force %d", tick, len(got), len(want))
				}
				for i := 1; i < len(got); i++ {
					if comparePairs(got[i-1], got[i]) >= 0 {
						t.Fatalf("tick %d: pairs not strictly sorted at %d: %v %v", tick, i, got[i-1], got[i])
					}
				}

				// Drift, remove a few and add newcomers
				for i := range cs {
					cs[i].X += rng.NormFloat64() * 3
					cs[i].Y += rng.NormFloat64() * 3
				}
				cs = cs[3:]
				for i := 0; i < 3; i++ {
					c := randomColliders(rng, 1, 600, 300)[0]
					c.ID = nextID
					nextID++
					cs = append(cs, c)
				}
			}
		})
	}
}

func TestSweepTouchingIntervals(t *testing.T) {
	sap := NewSweepAndPrune(AxisFixedX, DefaultCollisionMatrix())
	sap.Update([]Collider{
		{ID: 1, Kind: components.KindBlob, X: 0, Y: 0, Radius: 5},
		{ID: 2, Kind: components.KindBlob, X: 10, Y: 0, Radius: 5},
		{ID: 3, Kind: components.KindBlob, X: 20.5, Y: 0, Radius: 5},
	})

	got := sap.QueryOverlaps()
	want := []Pair{{1, 2}}
	if !slices.Equal(got, want) {
		t.Errorf("pairs = %v, want %v", got, want)
	}
}

func TestSweepCrossAxisFilter(t *testing.T) {
	sap := NewSweepAndPrune(AxisFixedX, DefaultCollisionMatrix())
	// Same x interval, far apart on y
	sap.Update([]Collider{
		{ID: 1, Kind: components.KindBlob, X: 50, Y: 0, Radius: 5},
		{ID: 2, Kind: components.KindBlob, X: 50, Y: 100, Radius: 5},
	})

	if got := sap.QueryOverlaps(); len(got) != 0 {
		t.Errorf("expected no pairs, got %v", got)
	}
}

func TestSweepExcludesDegenerate(t *testing.T) {
	sap := NewSweepAndPrune(AxisAuto, DefaultCollisionMatrix())
	sap.Update([]Collider{
		{ID: 1, Kind: components.KindBlob, X: 0, Y: 0, Radius: 5},
		{ID: 2, Kind: components.KindBlob, X: 1, Y: 0, Radius: 0},
		{ID: 3, Kind: components.KindBlob, X: math.NaN(), Y: 0, Radius: 5},
		{ID: 4, Kind: components.KindBlob, X: 2, Y: 0, Radius: -1},
		{ID: 5, Kind: components.KindBlob, X: 3, Y: math.Inf(1), Radius: 5},
		{ID: 6, Kind: components.KindBlob, X: 4, Y: 0, Radius: 5},
	})

	got := sap.QueryOverlaps()
	if want := []Pair{{1, 6}}; !slices.Equal(got, want) {
		t.Errorf("pairs = %v, want %v", got, want)
	}
	st := sap.Stats()
	if st.Intervals != 2 || st.Excluded != 4 {
		t.Errorf("stats = %+v, want 2 intervals and 4 excluded", st)
	}
}

func TestSweepCollisionMatrix(t *testing.T) {
	colliders := []Collider{
		{ID: 1, Kind: components.KindFood, X: 0, Y: 0, Radius: 5},
		{ID: 2, Kind: components.KindFood, X: 1, Y: 0, Radius: 5},
		{ID: 3, Kind: components.KindBlob, X: 2, Y: 0, Radius: 5},
	}

	sap := NewSweepAndPrune(AxisAuto, DefaultCollisionMatrix())
	sap.Update(colliders)
	if got, want := sap.QueryOverlaps(), []Pair{{1, 3}, {2, 3}}; !slices.Equal(got, want) {
		t.Errorf("default matrix pairs = %v, want %v", got, want)
	}

	m := DefaultCollisionMatrix()
	m.Set(components.KindFood, components.KindFood, true)
	m.Set(components.KindBlob, components.KindFood, false)
	if m.Collides(components.KindFood, components.KindBlob) {
		t.Error("Set should be symmetric")
	}
	sap = NewSweepAndPrune(AxisAuto, m)
	sap.Update(colliders)
	if got, want := sap.QueryOverlaps(), []Pair{{1, 2}}; !slices.Equal(got, want) {
		t.Errorf("custom matrix pairs = %v, want %v", got, want)
	}
}

func TestSweepAxisSelection(t *testing.T) {
	tall := []Collider{
		{ID: 1, Kind: components.KindBlob, X: 10, Y: 0, Radius: 1},
		{ID: 2, Kind: components.KindBlob, X: 12, Y: 300, Radius: 1},
		{ID: 3, Kind: components.KindBlob, X: 11, Y: 600, Radius: 1},
	}

	sap := NewSweepAndPrune(AxisAuto, DefaultCollisionMatrix())
	sap.Update(tall)
	if sap.Axis() != AxisY {
		t.Errorf("auto axis for vertical spread = %v, want y", sap.Axis())
	}

	// Once chosen, the axis holds until the other spread is clearly larger.
	square := []Collider{
		{ID: 1, Kind: components.KindBlob, X: 0, Y: 0, Radius: 1},
		{ID: 2, Kind: components.KindBlob, X: 10, Y: 10, Radius: 1},
	}
	sap.Update(square)
	if sap.Axis() != AxisY {
		t.Errorf("auto axis after a tie = %v, want y kept", sap.Axis())
	}
	wide := []Collider{
		{ID: 1, Kind: components.KindBlob, X: 0, Y: 0, Radius: 1},
		{ID: 2, Kind: components.KindBlob, X: 12, Y: 10, Radius: 1},
	}
	sap.Update(wide)
	if sap.Axis() != AxisX {
		t.Errorf("auto axis for a clearly wider spread = %v, want x", sap.Axis())
	}

	// Equal variance on an empty index goes to X
	fresh := NewSweepAndPrune(AxisAuto, DefaultCollisionMatrix())
	fresh.Update(square)
	if fresh.Axis() != AxisX {
		t.Errorf("auto axis on tie = %v, want x", fresh.Axis())
	}

	fixed := NewSweepAndPrune(AxisFixedX, DefaultCollisionMatrix())
	fixed.Update(tall)
	if fixed.Axis() != AxisX {
		t.Errorf("fixed axis = %v, want x", fixed.Axis())
	}
}

func TestParseAxisMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AxisMode
		wantErr bool
	}{
		{"", AxisAuto, false},
		{"auto", AxisAuto, false},
		{"x", AxisFixedX, false},
		{"y", AxisFixedY, false},
		{"z", AxisAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseAxisMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAxisMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestSweepCoherentMotionIsCheap(t *testing.T) {
	const n = 1000
	rng := rand.New(rand.NewSource(3))
	cs := randomColliders(rng, n, 10000, 10000)

	sap := NewSweepAndPrune(AxisFixedX, DefaultCollisionMatrix())
	sap.Update(cs)
	if st := sap.Stats(); !st.Resorted || st.Swaps != 0 {
		t.Errorf("cold start stats = %+v, want a full sort", st)
	}

	for i := range cs {
		cs[i].X += rng.Float64() - 0.5
		cs[i].Y += rng.Float64() - 0.5
	}
	sap.Update(cs)
	warm := sap.Stats()

	if warm.Resorted {
		t.Error("coherent update should reuse the previous order")
	}
	if warm.Swaps > n {
		t.Errorf("coherent update made %d moves for %d intervals, want at most %d", warm.Swaps, n, n)
	}

	got := slices.Clone(sap.QueryOverlaps())
	if want := BruteForcePairs(cs, DefaultCollisionMatrix()); !slices.Equal(got, want) {
		t.Errorf("sweep disagrees with brute force after coherent update")
	}
}

// squareColliders places n colliders whose x and y coordinates are the same
// values in a different order, so both axes have exactly equal variance.
func squareColliders(rng *rand.Rand, n int, size float64) []Collider {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = rng.Float64() * size
	}
	perm := rng.Perm(n)
	cs := make([]Collider, n)
	for i := range cs {
		cs[i] = Collider{
			ID:     uint64(i + 1),
			Kind:   components.KindBlob,
			X:      vals[i],
			Y:      vals[perm[i]],
			Radius: 1 + rng.Float64()*4,
		}
	}
	return cs
}

// stretch scales one coordinate about its mean.
func stretch(cs []Collider, axis Axis, factor float64) {
	coord := func(c *Collider) *float64 {
		if axis == AxisY {
			return &c.Y
		}
		return &c.X
	}
	mean := 0.0
	for i := range cs {
		mean += *coord(&cs[i])
	}
	mean /= float64(len(cs))
	for i := range cs {
		p := coord(&cs[i])
		*p = mean + (*p-mean)*factor
	}
}

func TestSweepBalancedSpreadStaysLinear(t *testing.T) {
	const n = 1000
	rng := rand.New(rand.NewSource(9))
	cs := squareColliders(rng, n, 600)
	matrix := DefaultCollisionMatrix()

	sap := NewSweepAndPrune(AxisAuto, matrix)
	sap.Update(cs)
	first := sap.Axis()

	// Each tick widens the other axis slightly; every body moves well under one unit.
	for tick := 1; tick <= 12; tick++ {
		axis := AxisX
		if tick%2 == 1 {
			axis = AxisY
		}
		stretch(cs, axis, 1.001)
		sap.Update(cs)

		st := sap.Stats()
		if st.Axis != first {
			t.Errorf("tick %d: axis flipped to %v on a 0.1%% spread change", tick, st.Axis)
		}
		if st.Resorted || st.Swaps > n {
			t.Errorf("tick %d: stats = %+v, want an insertion sort of at most %d moves", tick, st, n)
		}
	}

	got := slices.Clone(sap.QueryOverlaps())
	if want := BruteForcePairs(cs, matrix); !slices.Equal(got, want) {
		t.Errorf("sweep disagrees with brute force: %d vs %d pairs", len(got), len(want))
	}
}

func TestSweepAxisFlipResorts(t *testing.T) {
	const n = 1000
	rng := rand.New(rand.NewSource(4))
	base := squareColliders(rng, n, 600)
	matrix := DefaultCollisionMatrix()

	sap := NewSweepAndPrune(AxisAuto, matrix)
	sap.Update(base)

	// Alternately make one axis dominant so the auto mode must switch every tick.
	for tick := 1; tick <= 6; tick++ {
		dominant := AxisY
		if sap.Axis() == AxisY {
			dominant = AxisX
		}
		cs := slices.Clone(base)
		stretch(cs, dominant, 1.5)
		sap.Update(cs)

		st := sap.Stats()
		if st.Axis != dominant {
			t.Fatalf("tick %d: axis = %v, want %v", tick, st.Axis, dominant)
		}
		if !st.Resorted || st.Swaps != 0 {
			t.Errorf("tick %d: stats = %+v, want a full sort on the axis change", tick, st)
		}
		got := slices.Clone(sap.QueryOverlaps())
		if want := BruteForcePairs(cs, matrix); !slices.Equal(got, want) {
			t.Fatalf("tick %d: sweep disagrees with brute force", tick)
		}
	}
}

func TestSweepBulkArrivalsResort(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	cs := randomColliders(rng, 1000, 2000, 2000)

	sap := NewSweepAndPrune(AxisFixedX, DefaultCollisionMatrix())
	sap.Update(cs[:100])
	sap.Update(cs)

	if st := sap.Stats(); !st.Resorted || st.Intervals != 1000 {
		t.Errorf("stats = %+v, want a full sort of 1000 intervals", st)
	}
	ivs := sap.Intervals()
	for i := 1; i < len(ivs); i++ {
		if intervalLess(&ivs[i], &ivs[i-1]) {
			t.Fatalf("intervals out of order at %d", i)
		}
	}
}

func TestSweepTiesOrderedByID(t *testing.T) {
	ids := func(sap *SweepAndPrune) []uint64 {
		var out []uint64
		for _, iv := range sap.Intervals() {
			out = append(out, iv.ID)
		}
		return out
	}

	// Same Min on a cold start
	sap := NewSweepAndPrune(AxisFixedX, DefaultCollisionMatrix())
	sap.Update([]Collider{
		{ID: 5, Kind: components.KindBlob, X: 10, Y: 0, Radius: 2},
		{ID: 2, Kind: components.KindFood, X: 10, Y: 50, Radius: 2},
		{ID: 9, Kind: components.KindBlob, X: 10, Y: 90, Radius: 2},
		{ID: 1, Kind: components.KindBlob, X: 10, Y: 30, Radius: 2},
	})
	if got, want := ids(sap), []uint64{1, 2, 5, 9}; !slices.Equal(got, want) {
		t.Errorf("cold tie order = %v, want %v", got, want)
	}

	// Reverse order last tick, then all Min equal: the insertion sort must break ties by id.
	sap = NewSweepAndPrune(AxisFixedX, DefaultCollisionMatrix())
	spread := []Collider{
		{ID: 4, Kind: components.KindBlob, X: 0, Y: 0, Radius: 1},
		{ID: 3, Kind: components.KindBlob, X: 10, Y: 0, Radius: 1},
		{ID: 2, Kind: components.KindBlob, X: 20, Y: 0, Radius: 1},
		{ID: 1, Kind: components.KindBlob, X: 30, Y: 0, Radius: 1},
	}
	sap.Update(spread)
	if got, want := ids(sap), []uint64{4, 3, 2, 1}; !slices.Equal(got, want) {
		t.Fatalf("spread order = %v, want %v", got, want)
	}
	for i := range spread {
		spread[i].X = 15
	}
	sap.Update(spread)
	if st := sap.Stats(); st.Resorted {
		t.Fatalf("stats = %+v, want the insertion path", st)
	}
	if got, want := ids(sap), []uint64{1, 2, 3, 4}; !slices.Equal(got, want) {
		t.Errorf("warm tie order = %v, want %v", got, want)
	}
}

func BenchmarkSweepCoherent1000(b *testing.B) {
	rng := rand.New(rand.NewSource(5))
	cs := randomColliders(rng, 1000, 1040, 680)
	sap := NewSweepAndPrune(AxisAuto, DefaultCollisionMatrix())
	sap.Update(cs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range cs {
			cs[j].X += rng.Float64() - 0.5
			cs[j].Y += rng.Float64() - 0.5
		}
		sap.Update(cs)
		sap.QueryOverlaps()
	}
}
