package pipeline

import (
	"errors"
	"testing"

	"stock-sage/internal/domain"
)

func sequential(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestSplitLengths(t *testing.T) {
	t.Parallel()

	for _, n := range []int{21, 40, 100, 365} {
		train, test, err := Split(sequential(n), domain.HoldoutSize)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if len(train) != n-domain.HoldoutSize {
			t.Errorf("n=%d: expected train length %d, got %d", n, n-domain.HoldoutSize, len(train))
		}
		if len(test) != domain.HoldoutSize {
			t.Errorf("n=%d: expected test length %d, got %d", n, domain.HoldoutSize, len(test))
		}
		if len(train)+len(test) != n {
			t.Errorf("n=%d: partitions do not cover the series", n)
		}
	}
}

func TestSplitTakesTrailingValues(t *testing.T) {
	t.Parallel()

	train, test, err := Split(sequential(40), domain.HoldoutSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if train[0] != 1 || train[len(train)-1] != 20 {
		t.Errorf("train should be the prefix 1..20, got [%v..%v]", train[0], train[len(train)-1])
	}
	if test[0] != 21 || test[len(test)-1] != 40 {
		t.Errorf("test should be the suffix 21..40, got [%v..%v]", test[0], test[len(test)-1])
	}
}

func TestSplitInsufficientData(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 5, 19, 20} {
		if _, _, err := Split(sequential(n), domain.HoldoutSize); !errors.Is(err, domain.ErrInsufficientData) {
			t.Errorf("n=%d: expected ErrInsufficientData, got %v", n, err)
		}
	}
}

func TestSplitCopiesInput(t *testing.T) {
	t.Parallel()

	values := sequential(25)
	train, _, err := Split(values, domain.HoldoutSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values[0] = -99
	if train[0] != 1 {
		t.Error("train partition aliases the input slice")
	}
}
