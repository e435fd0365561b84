package models

import "time"

// Prediction provenance
const (
	SourceMachineLearning = "machine_learning"
	SourceRuleBased       = "rule_based"
)

// Confidence labels
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// Side of a matchup
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// GamePrediction is the analytics response for a scheduled game
type GamePrediction struct {
	ID              string            `json:"id"`
	HomeTeam        string            `json:"home_team"`
	AwayTeam        string            `json:"away_team"`
	PredictedWinner string            `json:"predicted_winner"`
	WinProbability  float64           `json:"win_probability"`
	HomeAnalytics   *TeamAnalytics    `json:"home_analytics,omitempty"`
	AwayAnalytics   *TeamAnalytics    `json:"away_analytics,omitempty"`
	KeyFactors      map[string]string `json:"key_factors,omitempty"`
	ConfidenceLevel string            `json:"confidence_level"`
	// PredictionSource is either machine_learning or rule_based
	PredictionSource string `json:"prediction_source"`

	// Populated only for machine_learning predictions
	MLModelName        string             `json:"ml_model_name,omitempty"`
	ModelConfidence    string             `json:"model_confidence,omitempty"`
	HomeWinProbability *float64           `json:"home_win_probability,omitempty"`
	AwayWinProbability *float64           `json:"away_win_probability,omitempty"`
	FeatureImportance  map[string]float64 `json:"feature_importance,omitempty"`
}

// ModelMetrics are the hold-out scores recorded at training time
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
	TrainSize int     `json:"train_size,omitempty"`
	TestSize  int     `json:"test_size,omitempty"`
}

// ModelMetadata is the JSON sidecar written next to a model artifact
type ModelMetadata struct {
	ModelType          string             `json:"model_type" validate:"required"`
	Version            string             `json:"version" validate:"required"`
	TrainedDate        string             `json:"trained_date"`
	Features           []string           `json:"features" validate:"required,min=1,dive,required"`
	Metrics            ModelMetrics       `json:"metrics"`
	FeatureImportances map[string]float64 `json:"feature_importances,omitempty"`
	ModelFilename      string             `json:"model_filename,omitempty"`
}

// ModelInfo describes the configured model for operators
type ModelInfo struct {
	MLModelName   string        `json:"ml_model_name"`
	MLModelType   string        `json:"ml_model_type"`
	Version       string        `json:"version"`
	TrainedDate   string        `json:"trained_date"`
	Metrics       *ModelMetrics `json:"metrics,omitempty"`
	FeaturesCount int           `json:"features_count"`
	IsLoaded      bool          `json:"is_loaded"`
	IsAvailable   bool          `json:"is_available"`
	Error         string        `json:"error,omitempty"`
}

// PredictionAudit is one row of the prediction audit trail
type PredictionAudit struct {
	ID               string
	GameID           string
	CreatedAt        time.Time
	HomeTeam         string
	AwayTeam         string
	PredictedWinner  string
	WinProbability   float64
	ConfidenceLevel  string
	PredictionSource string
	ModelName        string
	Features         map[string]float64
	Defaulted        []string
}
