package direction

import (
	"testing"
)

// Alternating rising and falling windows give both classes a clear shape.
func dataset() ([][]float64, []int) {
	windows := make([][]float64, 0, 120)
	labels := make([]int, 0, 120)
	for i := 0; i < 60; i++ {
		base := 0.2 + float64(i)/300.0
		windows = append(windows, []float64{base, base + 0.01, base + 0.02, base + 0.03})
		labels = append(labels, 1)
	}
	for i := 0; i < 60; i++ {
		base := 0.8 - float64(i)/300.0
		windows = append(windows, []float64{base, base - 0.01, base - 0.02, base - 0.03})
		labels = append(labels, 0)
	}
	return windows, labels
}

func TestLabels(t *testing.T) {
	t.Parallel()

	windows := [][]float64{{1, 2, 3}, {3, 2, 1}, {5, 5, 5}}
	targets := []float64{4, 0.5, 5}
	labels := Labels(windows, targets)
	if labels[0] != 1 {
		t.Error("rising target should label 1")
	}
	if labels[1] != 0 {
		t.Error("falling target should label 0")
	}
	if labels[2] != 0 {
		t.Error("flat target should label 0")
	}
}

func TestTrainPredictAndRoundTrip(t *testing.T) {
	windows, labels := dataset()
	model, err := Train(windows, labels, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}

	up := model.ProbUp([]float64{0.3, 0.31, 0.32, 0.33})
	down := model.ProbUp([]float64{0.7, 0.69, 0.68, 0.67})
	if up < 0 || up > 1 || down < 0 || down > 1 {
		t.Fatalf("probabilities out of range: up=%.4f down=%.4f", up, down)
	}
	if up <= down {
		t.Fatalf("rising window should score higher than falling one: %.4f <= %.4f", up, down)
	}

	blob, err := model.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored, err := UnmarshalBinary(blob)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if restored.Window() != 4 {
		t.Fatalf("expected window 4, got %d", restored.Window())
	}
	if p := restored.ProbUp([]float64{0.3, 0.31, 0.32, 0.33}); p < 0 || p > 1 {
		t.Fatalf("roundtrip probability out of range: %.4f", p)
	}
}

func TestTrainRequiresBothClasses(t *testing.T) {
	t.Parallel()

	windows := [][]float64{{1, 2}, {2, 3}, {3, 4}}
	labels := []int{1, 1, 1}
	if _, err := Train(windows, labels, DefaultTrainOptions()); err == nil {
		t.Error("expected error when only one class is present")
	}
}

func TestProbUpShapeMismatch(t *testing.T) {
	windows, labels := dataset()
	model, err := Train(windows, labels, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if p := model.ProbUp([]float64{1}); p != 0.5 {
		t.Fatalf("mismatched window should return neutral 0.5, got %.4f", p)
	}
}
