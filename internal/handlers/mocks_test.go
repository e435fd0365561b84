package handlers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/betbot/analytics-api/internal/ml"
	"github.com/betbot/analytics-api/internal/models"
)

// MockPredictionService
type MockPredictionService struct {
	PredictGameFunc          func(ctx context.Context, gameID string) (*models.GamePrediction, error)
	ComputeFeatureVectorFunc func(ctx context.Context, home, away int, at time.Time) (*models.FeatureSet, error)
	InvalidateCacheFunc      func(ctx context.Context) error
}

func (m *MockPredictionService) PredictGame(ctx context.Context, gameID string) (*models.GamePrediction, error) {
	if m.PredictGameFunc != nil {
		return m.PredictGameFunc(ctx, gameID)
	}
	return &models.GamePrediction{ID: gameID}, nil
}

func (m *MockPredictionService) ComputeFeatureVector(ctx context.Context, home, away int, at time.Time) (*models.FeatureSet, error) {
	if m.ComputeFeatureVectorFunc != nil {
		return m.ComputeFeatureVectorFunc(ctx, home, away, at)
	}
	return &models.FeatureSet{}, nil
}

func (m *MockPredictionService) InvalidateCache(ctx context.Context) error {
	if m.InvalidateCacheFunc != nil {
		return m.InvalidateCacheFunc(ctx)
	}
	return nil
}

// MockTrendService
type MockTrendService struct {
	BoardFunc func(ctx context.Context) (*models.TrendBoard, error)
}

func (m *MockTrendService) Board(ctx context.Context) (*models.TrendBoard, error) {
	if m.BoardFunc != nil {
		return m.BoardFunc(ctx)
	}
	return &models.TrendBoard{}, nil
}

func (m *MockTrendService) Refresh(ctx context.Context) (*models.TrendBoard, error) {
	return m.Board(ctx)
}

// MockModel
type MockModel struct {
	InfoFunc   func() models.ModelInfo
	ReloadFunc func() bool
}

func (m *MockModel) Predict(v models.FeatureVector) ml.Outcome {
	return ml.Outcome{Reason: ml.SkipUnavailable}
}

func (m *MockModel) Info() models.ModelInfo {
	if m.InfoFunc != nil {
		return m.InfoFunc()
	}
	return models.ModelInfo{MLModelName: "none"}
}

func (m *MockModel) Reload() bool {
	if m.ReloadFunc != nil {
		return m.ReloadFunc()
	}
	return true
}

type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error { return m.Err }

type MockRedisPinger struct {
	Err error
}

func (m *MockRedisPinger) Ping(ctx context.Context) *redis.StatusCmd {
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	return redis.NewStatusResult("PONG", nil)
}

type MockAuditQueue struct {
	Depth int
}

func (m *MockAuditQueue) QueueDepth() int { return m.Depth }
