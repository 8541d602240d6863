package pipeline

import (
	"math"
	"testing"
)

func TestFitScalerBounds(t *testing.T) {
	t.Parallel()

	state := FitScaler([]float64{1, 2, 3, 4, 5})
	if state.Min != 1 || state.Max != 5 {
		t.Fatalf("expected bounds (1,5), got (%v,%v)", state.Min, state.Max)
	}

	applied := state.Apply([]float64{3})
	if applied[0] != 0.5 {
		t.Errorf("apply(3) with bounds (1,5) should be 0.5, got %v", applied[0])
	}
	inverted := state.Invert([]float64{0.5})
	if inverted[0] != 3 {
		t.Errorf("invert(0.5) should be 3, got %v", inverted[0])
	}
}

func TestScalerRoundTrip(t *testing.T) {
	t.Parallel()

	train := []float64{13.7, 42.01, 8.5, 99.99, 57.3, 8.5}
	state := FitScaler(train)
	back := state.Invert(state.Apply(train))
	for i, v := range train {
		if math.Abs(back[i]-v) > 1e-9 {
			t.Errorf("round trip drifted at %d: %v != %v", i, back[i], v)
		}
	}
}

func TestScalerUnclampedOutOfRange(t *testing.T) {
	t.Parallel()

	state := FitScaler([]float64{10, 20})
	out := state.Apply([]float64{5, 25})
	if out[0] >= 0 {
		t.Errorf("value below fitted min should map below 0, got %v", out[0])
	}
	if out[1] <= 1 {
		t.Errorf("value above fitted max should map above 1, got %v", out[1])
	}
}

func TestScalerDegenerateRange(t *testing.T) {
	t.Parallel()

	state := FitScaler([]float64{7, 7, 7, 7, 7})
	out := state.Apply([]float64{7, 7, 7})
	for i, v := range out {
		if v != 0 {
			t.Errorf("degenerate fit should map to constant zero, index %d got %v", i, v)
		}
	}
	back := state.Invert(out)
	for i, v := range back {
		if v != 7 {
			t.Errorf("degenerate invert should return the bound, index %d got %v", i, v)
		}
	}
}

func TestFitScalerEmpty(t *testing.T) {
	t.Parallel()

	state := FitScaler(nil)
	if out := state.Apply([]float64{1, 2}); out[0] != 0 || out[1] != 0 {
		t.Errorf("empty fit should behave as degenerate, got %v", out)
	}
}
