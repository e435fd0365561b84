package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KindLogisticRegression identifies logistic regression artifacts
const KindLogisticRegression = "logistic_regression"

var ErrEmptyTrainingSet = errors.New("empty training set")

// LogisticConfig controls gradient descent
type LogisticConfig struct {
	Iterations   int
	LearningRate float64
	L2           float64
}

func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		Iterations:   2000,
		LearningRate: 0.1,
		L2:           0.001,
	}
}

// LogisticRegression is a standardized-input logistic model
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Scales  []float64 `json:"scales"`
}

func init() {
	Register(KindLogisticRegression, decodeLogistic)
}

func decodeLogistic(payload json.RawMessage) (Classifier, error) {
	var m LogisticRegression
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("decode logistic regression: %w", err)
	}
	n := len(m.Weights)
	if n == 0 || len(m.Means) != n || len(m.Scales) != n {
		return nil, fmt.Errorf("logistic regression: inconsistent dimensions (weights=%d means=%d scales=%d)",
			n, len(m.Means), len(m.Scales))
	}
	return &m, nil
}

// FitLogistic trains on rows X with labels y (true = home win) using batch
// gradient descent on standardized inputs.
func FitLogistic(X [][]float64, y []bool, cfg LogisticConfig) (*LogisticRegression, error) {
	if len(X) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("rows (%d) and labels (%d) differ", len(X), len(y))
	}
	dim := len(X[0])
	for i, row := range X {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), dim)
		}
	}
	if cfg.Iterations <= 0 {
		cfg = DefaultLogisticConfig()
	}

	m := &LogisticRegression{
		Weights: make([]float64, dim),
		Means:   make([]float64, dim),
		Scales:  make([]float64, dim),
	}

	col := make([]float64, len(X))
	for j := 0; j < dim; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.Means[j] = mean
		m.Scales[j] = std
	}

	xs := make([][]float64, len(X))
	for i, row := range X {
		xs[i] = m.standardize(row, make([]float64, dim))
	}
	labels := make([]float64, len(y))
	for i, won := range y {
		if won {
			labels[i] = 1
		}
	}

	n := float64(len(xs))
	grad := make([]float64, dim)
	for iter := 0; iter < cfg.Iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64
		for i, x := range xs {
			p := sigmoid(floats.Dot(m.Weights, x) + m.Bias)
			e := p - labels[i]
			floats.AddScaled(grad, e, x)
			gradBias += e
		}
		floats.Scale(1/n, grad)
		floats.AddScaled(grad, cfg.L2, m.Weights)
		floats.AddScaled(m.Weights, -cfg.LearningRate, grad)
		m.Bias -= cfg.LearningRate * gradBias / n
	}
	return m, nil
}

func (m *LogisticRegression) Kind() string { return KindLogisticRegression }

func (m *LogisticRegression) PredictProba(x []float64) (float64, float64, error) {
	if len(x) != len(m.Weights) {
		return 0, 0, fmt.Errorf("got %d features, model expects %d", len(x), len(m.Weights))
	}
	z := floats.Dot(m.Weights, m.standardize(x, make([]float64, len(x)))) + m.Bias
	pHome := sigmoid(z)
	return 1 - pHome, pHome, nil
}

// FeatureImportances are the absolute standardized coefficients
func (m *LogisticRegression) FeatureImportances() []float64 {
	out := make([]float64, len(m.Weights))
	for i, w := range m.Weights {
		out[i] = math.Abs(w)
	}
	return out
}

func (m *LogisticRegression) standardize(x, dst []float64) []float64 {
	for j, v := range x {
		dst[j] = (v - m.Means[j]) / m.Scales[j]
	}
	return dst
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}
