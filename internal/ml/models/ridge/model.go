// Package ridge implements the next-value regressor: an L2-regularized
// linear map from a fixed-width window of normalized closes to the next
// normalized close, solved in closed form via the normal equations.
package ridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type TrainOptions struct {
	L2 float64
}

type Artifact struct {
	Window  int       `json:"window"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	L2      float64   `json:"l2"`
}

type Model struct {
	artifact Artifact
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{L2: 0.001}
}

func Train(windows [][]float64, targets []float64, opts TrainOptions) (*Model, error) {
	if len(windows) == 0 || len(windows) != len(targets) {
		return nil, errors.New("invalid training dataset")
	}
	width := len(windows[0])
	if width == 0 {
		return nil, errors.New("empty input windows")
	}
	for i := range windows {
		if len(windows[i]) != width {
			return nil, fmt.Errorf("ragged window at index %d: %d != %d", i, len(windows[i]), width)
		}
	}
	if opts.L2 < 0 {
		opts.L2 = DefaultTrainOptions().L2
	}

	// Design matrix with a trailing bias column of ones.
	n := len(windows)
	cols := width + 1
	x := mat.NewDense(n, cols, nil)
	for i := range windows {
		x.SetRow(i, append(append(make([]float64, 0, cols), windows[i]...), 1))
	}
	y := mat.NewVecDense(n, append([]float64(nil), targets...))

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j := 0; j < width; j++ {
		xtx.Set(j, j, xtx.At(j, j)+opts.L2)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}

	weights := make([]float64, width)
	for j := 0; j < width; j++ {
		weights[j] = w.AtVec(j)
	}
	return &Model{artifact: Artifact{
		Window:  width,
		Weights: weights,
		Bias:    w.AtVec(width),
		L2:      opts.L2,
	}}, nil
}

// Predict returns the forecast for one window. Deterministic for a fixed
// model; a malformed window yields zero rather than a panic.
func (m *Model) Predict(window []float64) float64 {
	if m == nil || len(window) != len(m.artifact.Weights) {
		return 0
	}
	sum := m.artifact.Bias
	for i, v := range window {
		sum += m.artifact.Weights[i] * v
	}
	return sum
}

func (m *Model) PredictBatch(windows [][]float64) []float64 {
	out := make([]float64, len(windows))
	for i := range windows {
		out[i] = m.Predict(windows[i])
	}
	return out
}

func (m *Model) Window() int {
	if m == nil {
		return 0
	}
	return m.artifact.Window
}

func (m *Model) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	return json.Marshal(m.artifact)
}

func UnmarshalBinary(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, errors.New("empty artifact")
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if a.Window <= 0 || len(a.Weights) != a.Window {
		return nil, errors.New("invalid artifact")
	}
	return &Model{artifact: a}, nil
}
