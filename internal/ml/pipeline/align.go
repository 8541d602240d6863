package pipeline

import "math"

// Aligned overlays use NaN for "no value" so plotting and forecast
// extraction can distinguish absent positions from real prices.

// EmptyAligned returns an all-NaN series of the raw series length.
func EmptyAligned(rawLen int) []float64 {
	out := make([]float64, rawLen)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// AlignTrain writes train-region predictions onto the raw timeline.
// A prediction for the window starting at raw index k lands at k+window,
// so the block occupies [window, window+len(preds)).
func AlignTrain(rawLen int, preds []float64, window int) []float64 {
	out := EmptyAligned(rawLen)
	for i, v := range preds {
		idx := window + i
		if idx >= rawLen {
			break
		}
		out[idx] = v
	}
	return out
}

// AlignTest writes test-region predictions onto the raw timeline. The
// block starts at window*2 + trainPredCount + 1 and ends exclusively at
// rawLen-1, so train and test overlays never collide and both terminate
// strictly inside the raw bounds. The extra +1 mirrors the one-element
// reservation in Sequence and is contractual.
func AlignTest(rawLen int, preds []float64, window, trainPredCount int) []float64 {
	out := EmptyAligned(rawLen)
	start := window*2 + trainPredCount + 1
	end := rawLen - 1
	for i, v := range preds {
		idx := start + i
		if idx >= end {
			break
		}
		out[idx] = v
	}
	return out
}

// LastAligned returns the value at rawLen-2, the final position AlignTest
// can write, which carries the most recent out-of-sample forecast.
func LastAligned(aligned []float64) (float64, bool) {
	if len(aligned) < 2 {
		return 0, false
	}
	v := aligned[len(aligned)-2]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
