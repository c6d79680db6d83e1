package systems

import (
	"math/rand"
	"sort"
	"testing"
)

func TestSpatialGridMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	entries := make([]Seen, 200)
	for i := range entries {
		entries[i] = Seen{ID: uint64(i + 1), X: rng.Float64() * 400, Y: rng.Float64() * 300, Radius: 3}
	}

	grid := NewSpatialGrid(400, 300, 32)
	grid.Build(entries)

	for q := 0; q < 50; q++ {
		x, y := rng.Float64()*400, rng.Float64()*300
		radius := 10 + rng.Float64()*50
		exclude := entries[q].ID

		got := grid.QueryRadiusInto(nil, x, y, radius, exclude, entries)
		gotIdx := make([]int, len(got))
		for i, n := range got {
			gotIdx[i] = n.Index
		}
		sort.Ints(gotIdx)

		var want []int
		for i, e := range entries {
			if e.ID != exclude && distanceSq(x, y, e.X, e.Y) <= radius*radius {
				want = append(want, i)
			}
		}
		if len(want) > MaxQueryResults {
			continue
		}

		if len(gotIdx) != len(want) {
			t.Fatalf("query %d: got %d neighbors, want %d", q, len(gotIdx), len(want))
		}
		for i := range want {
			if gotIdx[i] != want[i] {
				t.Fatalf("query %d: neighbor %d = %d, want %d", q, i, gotIdx[i], want[i])
			}
		}
	}
}

func TestSpatialGridNoWrap(t *testing.T) {
	entries := []Seen{{ID: 1, X: 395, Y: 150}}
	grid := NewSpatialGrid(400, 300, 32)
	grid.Build(entries)

	// Near the opposite edge; a toroidal grid would find it
	if got := grid.QueryRadiusInto(nil, 5, 150, 20, 0, entries); len(got) != 0 {
		t.Errorf("bounded grid wrapped: %+v", got)
	}
	if got := grid.QueryRadiusInto(nil, 390, 150, 20, 0, entries); len(got) != 1 || got[0].DX != 5 {
		t.Errorf("expected one neighbor at dx 5, got %+v", got)
	}
}
