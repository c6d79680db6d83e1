package systems

import (
	"math/rand"
	"testing"
)

func TestFertilityFieldRange(t *testing.T) {
	f := NewFertilityField(3, 0.01, 0.2, 4, 500, 300)
	for x := 0.0; x <= 500; x += 25 {
		for y := 0.0; y <= 300; y += 25 {
			p := f.At(x, y)
			if p < 0.2 || p > 1 {
				t.Fatalf("At(%v, %v) = %v, want in [0.2, 1]", x, y, p)
			}
		}
	}
}

func TestFertilityFieldSampleInBounds(t *testing.T) {
	f := NewFertilityField(3, 0.01, 0.1, 8, 500, 300)
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 500; i++ {
		x, y := f.Sample(rng)
		if x < 0 || x > 500 || y < 0 || y > 300 {
			t.Fatalf("sample (%v, %v) out of bounds", x, y)
		}
	}
}

func TestFertilityFieldDeterministic(t *testing.T) {
	a := NewFertilityField(5, 0.01, 0.1, 8, 500, 300)
	b := NewFertilityField(5, 0.01, 0.1, 8, 500, 300)
	ra := rand.New(rand.NewSource(1))
	rb := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		ax, ay := a.Sample(ra)
		bx, by := b.Sample(rb)
		if ax != bx || ay != by {
			t.Fatalf("sample %d differs: (%v, %v) vs (%v, %v)", i, ax, ay, bx, by)
		}
	}
}

func TestWanderDeterministic(t *testing.T) {
	a := NewWander(42, 0.5)
	b := NewWander(42, 0.5)
	for i := 0; i < 20; i++ {
		age := float64(i) * 0.37
		if a.Offset(1.5, age) != b.Offset(1.5, age) {
			t.Fatalf("wander differs at age %v", age)
		}
	}
}
