// Package direction implements a gradient-boosted classifier over the
// same sliding windows as the regressor, predicting whether the next
// close rises above the final value of the window.
package direction

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"github.com/rmera/boo"
	"github.com/rmera/boo/utils"
)

type TrainOptions struct {
	Rounds       int
	LearningRate float64
	MaxDepth     int
}

type artifact struct {
	Window    int    `json:"window"`
	ModelText string `json:"model_text"`
}

type Model struct {
	window int
	boost  *boo.MultiClass
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Rounds:       30,
		LearningRate: 0.1,
		MaxDepth:     3,
	}
}

// Labels converts regression targets back into up/down classes: 1 when
// the target exceeds the final window element, else 0.
func Labels(windows [][]float64, targets []float64) []int {
	labels := make([]int, len(targets))
	for i := range targets {
		if len(windows[i]) > 0 && targets[i] > windows[i][len(windows[i])-1] {
			labels[i] = 1
		}
	}
	return labels
}

func Train(windows [][]float64, labels []int, opts TrainOptions) (*Model, error) {
	if len(windows) == 0 || len(windows) != len(labels) {
		return nil, errors.New("invalid training dataset")
	}
	width := len(windows[0])
	if width == 0 {
		return nil, errors.New("empty input windows")
	}
	classSet := make(map[int]struct{}, 2)
	for _, l := range labels {
		classSet[l] = struct{}{}
	}
	if len(classSet) < 2 {
		return nil, errors.New("direction model requires both classes in the training data")
	}
	if opts.Rounds <= 0 {
		opts.Rounds = DefaultTrainOptions().Rounds
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultTrainOptions().LearningRate
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultTrainOptions().MaxDepth
	}

	keys := make([]string, width)
	for i := range keys {
		keys[i] = "lag"
	}

	o := boo.DefaultXOptions()
	o.Rounds = opts.Rounds
	o.LearningRate = opts.LearningRate
	o.MaxDepth = opts.MaxDepth
	o.Verbose = false
	o.EarlyStop = 0

	data := &utils.DataBunch{
		Data:   windows,
		Labels: labels,
		Keys:   keys,
	}
	model := boo.NewMultiClass(data, o)
	if model == nil {
		return nil, errors.New("failed to train direction model")
	}
	return &Model{window: width, boost: model}, nil
}

// ProbUp returns the probability that the next close rises.
func (m *Model) ProbUp(window []float64) float64 {
	if m == nil || m.boost == nil || len(window) != m.window {
		return 0.5
	}
	probs := m.boost.PredictSingle(window)
	labels := m.boost.ClassLabels()
	for i := range labels {
		if labels[i] == 1 {
			return clamp01(probs[i])
		}
	}
	if len(probs) == 0 {
		return 0.5
	}
	return clamp01(probs[len(probs)-1])
}

func (m *Model) Window() int {
	if m == nil {
		return 0
	}
	return m.window
}

func (m *Model) MarshalBinary() ([]byte, error) {
	if m == nil || m.boost == nil {
		return nil, errors.New("nil model")
	}
	var buf bytes.Buffer
	if err := boo.JSONMultiClass(m.boost, "softmax", &buf); err != nil {
		return nil, err
	}
	return json.Marshal(artifact{
		Window:    m.window,
		ModelText: buf.String(),
	})
}

func UnmarshalBinary(blob []byte) (*Model, error) {
	if len(blob) == 0 {
		return nil, errors.New("empty artifact")
	}
	var a artifact
	if err := json.Unmarshal(blob, &a); err != nil {
		return nil, err
	}
	reader := bufio.NewReader(bytes.NewReader([]byte(a.ModelText)))
	model, err := boo.UnJSONMultiClass(reader)
	if err != nil {
		return nil, err
	}
	return &Model{window: a.Window, boost: model}, nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
