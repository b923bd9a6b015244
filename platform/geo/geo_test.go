package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	if d := Distance(48.8566, 2.3522, 48.8566, 2.3522); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestDistanceParisLyon(t *testing.T) {
	// Paris to Lyon is roughly 392 km as the crow flies.
	d := Distance(48.8566, 2.3522, 45.7640, 4.8357)
	if d < 380 || d > 405 {
		t.Fatalf("expected roughly 392 km, got %f", d)
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Distance(48.8566, 2.3522, 43.2965, 5.3698)
	b := Distance(43.2965, 5.3698, 48.8566, 2.3522)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric distances, got %f and %f", a, b)
	}
}

func TestWorkforceMidpoint(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"00", 0},
		{"02", 4},
		{"12", 35},
		{"53", 15000},
		{"", 0},
		{"99", 0},
	}
	for _, tc := range cases {
		if got := WorkforceMidpoint(tc.code); got != tc.want {
			t.Errorf("WorkforceMidpoint(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
