// Package pipeline implements the deterministic data shaping used by the
// forecaster: holdout splitting, range normalization, sliding-window
// sequencing and prediction-to-timeline realignment. The index arithmetic
// here is contractual; tests pin every boundary.
package pipeline

import (
	"fmt"

	"stock-sage/internal/domain"
)

// Split partitions values into a training prefix and a trailing test
// suffix of exactly holdout elements. The holdout size is consulted
// nowhere else in the pipeline.
func Split(values []float64, holdout int) (train, test []float64, err error) {
	if holdout <= 0 {
		return nil, nil, fmt.Errorf("invalid holdout size %d", holdout)
	}
	if len(values) <= holdout {
		return nil, nil, fmt.Errorf("%w: have %d points, need more than %d", domain.ErrInsufficientData, len(values), holdout)
	}
	boundary := len(values) - holdout
	train = append([]float64(nil), values[:boundary]...)
	test = append([]float64(nil), values[boundary:]...)
	return train, test, nil
}
