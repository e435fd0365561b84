package ml

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/betbot/analytics-api/internal/models"
)

// DefaultMinConfidence is the winning-side probability needed to use a model prediction
const DefaultMinConfidence = 0.55

const topImportances = 5

var (
	modelLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betbot_model_loads_total",
		Help: "Model load attempts by status",
	}, []string{"status"})

	modelPredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betbot_model_predictions_total",
		Help: "Model prediction attempts by outcome",
	}, []string{"outcome"})
)

// SkipReason explains why the model produced no prediction
type SkipReason string

const (
	SkipUnavailable      SkipReason = "unavailable"
	SkipInvalidFeatures  SkipReason = "invalid_features"
	SkipPredictionFailed SkipReason = "prediction_failed"
)

// Prediction is a model result for one matchup
type Prediction struct {
	Winner          models.Side
	Probability     float64
	HomeProbability float64
	AwayProbability float64
	Margin          float64
	Confidence      string
	ModelName       string
	// UseML is set when Probability reaches the configured minimum
	UseML             bool
	FeatureImportance map[string]float64
}

// Outcome is either a Prediction or the reason there is none
type Outcome struct {
	Prediction *Prediction
	Reason     SkipReason
}

// Usable reports whether the caller should adopt the model result
func (o Outcome) Usable() bool {
	return o.Prediction != nil && o.Prediction.UseML
}

func skipped(reason SkipReason) Outcome {
	modelPredictionsTotal.WithLabelValues(string(reason)).Inc()
	return Outcome{Reason: reason}
}

type Config struct {
	Dir           string
	Name          string
	Version       string
	ModelType     string
	MinConfidence float64
	Logger        *zap.Logger
}

// Service owns the cached classifier. It loads the artifact at most once
// until Reload is called; concurrent first callers share a single load.
type Service struct {
	modelPath     string
	metadataPath  string
	version       string
	modelType     string
	minConfidence float64
	logger        *zap.SugaredLogger

	group singleflight.Group

	mu       sync.RWMutex
	model    Classifier
	metadata *models.ModelMetadata
	loaded   bool
	loadErr  string
}

func NewService(cfg Config) *Service {
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultMinConfidence
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	modelPath, metadataPath := ArtifactPaths(cfg.Dir, cfg.Name, cfg.Version)
	return &Service{
		modelPath:     modelPath,
		metadataPath:  metadataPath,
		version:       cfg.Version,
		modelType:     cfg.ModelType,
		minConfidence: cfg.MinConfidence,
		logger:        cfg.Logger.Sugar(),
	}
}

// ModelName is the model type and version, e.g. logistic_regression-v1.0.
// Loaded metadata takes precedence over the configured values.
func (s *Service) ModelName() string {
	modelType, version := s.modelType, s.version
	s.mu.RLock()
	if s.metadata != nil {
		modelType, version = s.metadata.ModelType, s.metadata.Version
	}
	s.mu.RUnlock()
	return fmt.Sprintf("%s-v%s", modelType, version)
}

// IsAvailable reports whether a model artifact exists on disk
func (s *Service) IsAvailable() bool {
	_, err := os.Stat(s.modelPath)
	return err == nil
}

func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Load loads the model if it is not cached yet. Failures are recorded and
// reported through Info, never returned.
func (s *Service) Load() bool {
	if s.IsLoaded() {
		return true
	}
	return s.loadShared()
}

// Reload discards the cached model and reads it from disk again
func (s *Service) Reload() bool {
	s.logger.Infow("Reloading model", "path", s.modelPath)
	s.mu.Lock()
	s.model, s.metadata, s.loaded, s.loadErr = nil, nil, false, ""
	s.mu.Unlock()
	return s.loadShared()
}

func (s *Service) loadShared() bool {
	v, _, _ := s.group.Do("load", func() (interface{}, error) {
		return s.load(), nil
	})
	return v.(bool)
}

func (s *Service) load() bool {
	if s.IsLoaded() {
		return true
	}

	model, metadata, err := s.readFromDisk()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = err.Error()
		modelLoadsTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warnw("Model artifact not available", "path", s.modelPath)
		} else {
			s.logger.Errorw("Failed to load model", "path", s.modelPath, "error", err)
		}
		return false
	}

	s.model, s.metadata, s.loaded, s.loadErr = model, metadata, true, ""
	modelLoadsTotal.WithLabelValues("success").Inc()
	s.logger.Infow("Model loaded", "type", metadata.ModelType, "version", metadata.Version, "trained", metadata.TrainedDate)
	return true
}

func (s *Service) readFromDisk() (c Classifier, md *models.ModelMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, md, err = nil, nil, fmt.Errorf("panic while loading model: %v", r)
		}
	}()

	if _, err := os.Stat(s.modelPath); err != nil {
		return nil, nil, fmt.Errorf("model file not found: %w", err)
	}
	c, err = LoadArtifact(s.modelPath)
	if err != nil {
		return nil, nil, err
	}

	md, err = LoadMetadata(s.metadataPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Warnw("Metadata sidecar not found, using configured values", "path", s.metadataPath)
		md = &models.ModelMetadata{
			ModelType:   s.modelType,
			Version:     s.version,
			TrainedDate: "unknown",
			Features:    append([]string(nil), models.FeatureNames...),
		}
	case err != nil:
		return nil, nil, err
	}
	return c, md, nil
}

// Predict runs the classifier on a complete feature vector
func (s *Service) Predict(v models.FeatureVector) Outcome {
	if err := v.Validate(); err != nil {
		s.logger.Warnw("Rejected feature vector", "error", err)
		return skipped(SkipInvalidFeatures)
	}
	if !s.Load() {
		return skipped(SkipUnavailable)
	}

	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model == nil {
		return skipped(SkipUnavailable)
	}

	pred, err := s.run(model, v.Values())
	if err != nil {
		s.logger.Errorw("Model prediction failed", "error", err)
		return skipped(SkipPredictionFailed)
	}
	modelPredictionsTotal.WithLabelValues("ok").Inc()
	return Outcome{Prediction: pred}
}

// PredictMap accepts named features. Any missing name rejects the input.
func (s *Service) PredictMap(features map[string]float64) Outcome {
	v, err := models.FeatureVectorFromMap(features)
	if err != nil {
		s.logger.Warnw("Rejected feature map", "error", err)
		return skipped(SkipInvalidFeatures)
	}
	return s.Predict(v)
}

func (s *Service) run(model Classifier, x []float64) (pred *Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			pred, err = nil, fmt.Errorf("classifier panic: %v", r)
		}
	}()

	pAway, pHome, err := model.PredictProba(x)
	if err != nil {
		return nil, err
	}
	if !validProbability(pAway) || !validProbability(pHome) {
		return nil, fmt.Errorf("classifier returned invalid probabilities (%v, %v)", pAway, pHome)
	}

	pred = &Prediction{
		Winner:          models.SideAway,
		Probability:     pAway,
		HomeProbability: round3(pHome),
		AwayProbability: round3(pAway),
		Margin:          round3(math.Abs(pHome - pAway)),
		ModelName:       s.ModelName(),
	}
	if pHome > 0.5 {
		pred.Winner = models.SideHome
		pred.Probability = pHome
	}
	pred.Confidence = confidenceLabel(math.Abs(pHome - pAway))
	pred.UseML = pred.Probability >= s.minConfidence
	pred.Probability = round3(pred.Probability)

	if imp, ok := model.(Importancer); ok {
		pred.FeatureImportance = topFeatures(imp.FeatureImportances(), topImportances)
	}
	return pred, nil
}

// Info describes the configured model, loading it first if needed
func (s *Service) Info() models.ModelInfo {
	s.Load()

	s.mu.RLock()
	md, loaded, loadErr := s.metadata, s.loaded, s.loadErr
	s.mu.RUnlock()

	if md == nil {
		if loadErr == "" {
			loadErr = "Model not configured"
		}
		return models.ModelInfo{
			MLModelName: "none",
			MLModelType: "unknown",
			Version:     "unknown",
			TrainedDate: "unknown",
			IsAvailable: s.IsAvailable(),
			Error:       loadErr,
		}
	}

	metrics := md.Metrics
	return models.ModelInfo{
		MLModelName:   s.ModelName(),
		MLModelType:   md.ModelType,
		Version:       md.Version,
		TrainedDate:   md.TrainedDate,
		Metrics:       &metrics,
		FeaturesCount: len(md.Features),
		IsLoaded:      loaded,
		IsAvailable:   s.IsAvailable(),
	}
}

func confidenceLabel(margin float64) string {
	switch {
	case margin > 0.3:
		return models.ConfidenceHigh
	case margin > 0.15:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// topFeatures pairs weights with feature names and keeps the n largest
func topFeatures(weights []float64, n int) map[string]float64 {
	if len(weights) != len(models.FeatureNames) {
		return nil
	}
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return weights[idx[a]] > weights[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make(map[string]float64, len(idx))
	for _, i := range idx {
		out[models.FeatureNames[i]] = round3(weights[i])
	}
	return out
}

func validProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
