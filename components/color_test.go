package components

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b HSV
		want float64
	}{
		{"identical", HSV{120, 0.8, 0.9}, HSV{120, 0.8, 0.9}, 1},
		{"opposite hue", HSV{0, 1, 1}, HSV{180, 1, 1}, -1},
		{"quarter turn", HSV{0, 1, 1}, HSV{90, 1, 1}, 0},
		{"hue wraps", HSV{350, 1, 1}, HSV{10, 1, 1}, 1 - 2*20.0/180},
		{"saturation scales", HSV{0, 1, 1}, HSV{0, 0.5, 1}, 0.5},
		{"value scales", HSV{0, 1, 1}, HSV{0, 1, 0.75}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Similarity(tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if back := tt.b.Similarity(tt.a); math.Abs(back-got) > 1e-9 {
				t.Errorf("similarity is not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestRGBA(t *testing.T) {
	red := HSV{0, 1, 1}.RGBA()
	if red.R != 255 || red.G != 0 || red.B != 0 || red.A != 255 {
		t.Errorf("HSV red = %v, want {255 0 0 255}", red)
	}

	black := HSV{200, 0.5, 0}.RGBA()
	if black.R != 0 || black.G != 0 || black.B != 0 {
		t.Errorf("zero value should be black, got %v", black)
	}
}

func TestVitalsFractions(t *testing.T) {
	v := Vitals{Health: 5, MaxHealth: 10, Energy: 15, MaxEnergy: 10}
	if got := v.HealthFraction(); got != 0.5 {
		t.Errorf("HealthFraction = %v, want 0.5", got)
	}
	if got := v.EnergyFraction(); got != 1 {
		t.Errorf("EnergyFraction = %v, want clamped 1", got)
	}

	v.Health = -3
	if !v.Dead() || v.HealthFraction() != 0 {
		t.Errorf("negative health: Dead=%v fraction=%v", v.Dead(), v.HealthFraction())
	}
}
