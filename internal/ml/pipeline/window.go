package pipeline

import (
	"fmt"

	"stock-sage/internal/domain"
)

// Sequence converts a flat normalized series into supervised
// (window, next value) pairs: X[i] = s[i:i+window], y[i] = s[i+window],
// for i in [0, len(s)-window-2]. The loop deliberately stops one index
// early, reserving the final element, so len(X) == len(s)-window-1.
// That bound is contractual and matched by the alignment offsets.
func Sequence(s []float64, window int) (x [][]float64, y []float64, err error) {
	if window <= 0 {
		return nil, nil, fmt.Errorf("invalid window size %d", window)
	}
	pairs := len(s) - window - 1
	if pairs <= 0 {
		return nil, nil, fmt.Errorf("%w: %d points cannot fill a window of %d plus target", domain.ErrWindowTooLarge, len(s), window)
	}
	x = make([][]float64, pairs)
	y = make([]float64, pairs)
	for i := 0; i < pairs; i++ {
		x[i] = append([]float64(nil), s[i:i+window]...)
		y[i] = s[i+window]
	}
	return x, y, nil
}
