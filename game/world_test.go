package game

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/blobs/components"
)

func TestWorldIDs(t *testing.T) {
	w := NewWorld()

	a, err := w.InsertFood(FoodSpec{X: 1, Y: 1, Radius: 2, Nutrition: 1})
	if err != nil {
		t.Fatalf("InsertFood: %v", err)
	}
	b, err := w.InsertBlob(BlobSpec{X: 5, Y: 5, Radius: 3})
	if err != nil {
		t.Fatalf("InsertBlob: %v", err)
	}
	if a != 1 || b != 2 {
		t.Fatalf("ids = %d, %d; want 1, 2", a, b)
	}

	if err := w.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	c, _ := w.InsertFood(FoodSpec{X: 1, Y: 1, Radius: 2})
	if c != 3 {
		t.Errorf("id after removal = %d, want 3 (ids are never reused)", c)
	}

	if blobs, food := w.Counts(); blobs != 1 || food != 1 {
		t.Errorf("counts = %d, %d; want 1, 1", blobs, food)
	}
	if k, ok := w.Kind(b); !ok || k != components.KindBlob {
		t.Errorf("Kind(%d) = %v, %v", b, k, ok)
	}
	if _, ok := w.Food(b); ok {
		t.Error("Food() should not return a blob")
	}
}

func TestWorldRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		x, y, r float64
	}{
		{"nan x", math.NaN(), 0, 1},
		{"inf y", 0, math.Inf(1), 1},
		{"zero radius", 0, 0, 0},
		{"negative radius", 0, 0, -2},
		{"nan radius", 0, 0, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			if _, err := w.InsertBlob(BlobSpec{X: tt.x, Y: tt.y, Radius: tt.r}); !errors.Is(err, ErrInvalidEntity) {
				t.Errorf("InsertBlob error = %v, want ErrInvalidEntity", err)
			}
			if _, err := w.InsertFood(FoodSpec{X: tt.x, Y: tt.y, Radius: tt.r}); !errors.Is(err, ErrInvalidEntity) {
				t.Errorf("InsertFood error = %v, want ErrInvalidEntity", err)
			}
			if w.Len() != 0 {
				t.Errorf("rejected entity was stored")
			}
		})
	}
}

func TestWorldRemoveUnknown(t *testing.T) {
	w := NewWorld()
	if err := w.Remove(99); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Remove error = %v, want ErrUnknownEntity", err)
	}
}

func TestWorldQueriesOrderedByID(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			w.InsertBlob(BlobSpec{X: float64(i), Y: 0, Radius: 1})
		} else {
			w.InsertFood(FoodSpec{X: float64(i), Y: 0, Radius: 1})
		}
	}
	w.Remove(3)
	w.Remove(4)

	blobs := w.Blobs(nil)
	var ids []uint64
	for _, b := range blobs {
		ids = append(ids, b.ID)
	}
	wantBlobs := []uint64{1, 5, 7, 9}
	if len(ids) != len(wantBlobs) {
		t.Fatalf("blob ids = %v, want %v", ids, wantBlobs)
	}
	for i := range ids {
		if ids[i] != wantBlobs[i] {
			t.Fatalf("blob ids = %v, want %v", ids, wantBlobs)
		}
	}

	foods := w.Foods(nil)
	wantFood := []uint64{2, 6, 8, 10}
	if len(foods) != len(wantFood) {
		t.Fatalf("got %d food, want %d", len(foods), len(wantFood))
	}
	for i, f := range foods {
		if f.ID != wantFood[i] {
			t.Errorf("food[%d] = %d, want %d", i, f.ID, wantFood[i])
		}
	}
}
