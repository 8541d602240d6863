package pipeline

import "slices"

// ScalerState holds min-max bounds fitted on a training partition. It is
// an explicit per-request value: the same state scales and inverts both
// partitions, and it is never refit from test data.
type ScalerState struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FitScaler derives min-max bounds from the training partition only.
func FitScaler(train []float64) ScalerState {
	if len(train) == 0 {
		return ScalerState{}
	}
	return ScalerState{
		Min: slices.Min(train),
		Max: slices.Max(train),
	}
}

// Apply maps values into [0,1] using the fitted bounds. Test values
// outside the fitted range land outside [0,1]; no clamping. A degenerate
// fit (min == max) maps everything to zero rather than dividing by zero.
func (s ScalerState) Apply(values []float64) []float64 {
	out := make([]float64, len(values))
	span := s.Max - s.Min
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - s.Min) / span
	}
	return out
}

// Invert is the algebraic inverse of Apply. Under a degenerate fit every
// normalized value inverts to the constant bound.
func (s ScalerState) Invert(values []float64) []float64 {
	out := make([]float64, len(values))
	span := s.Max - s.Min
	for i, v := range values {
		out[i] = v*span + s.Min
	}
	return out
}
