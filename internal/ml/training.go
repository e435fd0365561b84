package ml

import (
	"fmt"
	"time"

	"github.com/betbot/analytics-api/internal/models"
)

// DefaultTestFraction is the share of the most recent rows held out
const DefaultTestFraction = 0.2

// Example is one labelled training row in feature order
type Example struct {
	Features []float64
	HomeWon  bool
}

// TrainResult is a fitted model with its hold-out evaluation
type TrainResult struct {
	Model    *LogisticRegression
	Metadata models.ModelMetadata
}

// ChronologicalSplit keeps the input order and holds out the trailing
// fraction. Rows must already be sorted oldest first.
func ChronologicalSplit(rows []Example, testFraction float64) (train, test []Example, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction %v must be in (0, 1)", testFraction)
	}
	cut := len(rows) - int(float64(len(rows))*testFraction)
	if cut <= 0 || cut >= len(rows) {
		return nil, nil, fmt.Errorf("%d rows cannot be split with test fraction %v", len(rows), testFraction)
	}
	return rows[:cut], rows[cut:], nil
}

// TrainLogistic fits on the older rows, scores the held-out ones and fills
// in the metadata sidecar.
func TrainLogistic(rows []Example, testFraction float64, cfg LogisticConfig, version string, now time.Time) (*TrainResult, error) {
	train, test, err := ChronologicalSplit(rows, testFraction)
	if err != nil {
		return nil, err
	}

	X := make([][]float64, len(train))
	y := make([]bool, len(train))
	for i, r := range train {
		X[i], y[i] = r.Features, r.HomeWon
	}
	model, err := FitLogistic(X, y, cfg)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	actual := make([]bool, len(test))
	scores := make([]float64, len(test))
	for i, r := range test {
		_, pHome, err := model.PredictProba(r.Features)
		if err != nil {
			return nil, fmt.Errorf("score test row %d: %w", i, err)
		}
		actual[i], scores[i] = r.HomeWon, pHome
	}
	metrics := Evaluate(actual, scores)
	metrics.TrainSize = len(train)
	metrics.TestSize = len(test)

	importances := make(map[string]float64, len(models.FeatureNames))
	for i, w := range model.FeatureImportances() {
		if i < len(models.FeatureNames) {
			importances[models.FeatureNames[i]] = w
		}
	}

	return &TrainResult{
		Model: model,
		Metadata: models.ModelMetadata{
			ModelType:          KindLogisticRegression,
			Version:            version,
			TrainedDate:        now.UTC().Format(time.RFC3339),
			Features:           append([]string(nil), models.FeatureNames...),
			Metrics:            metrics,
			FeatureImportances: importances,
		},
	}, nil
}
