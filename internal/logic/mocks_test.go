package logic

import (
	"context"
	"sync"
	"time"

	"github.com/betbot/analytics-api/internal/ml"
	"github.com/betbot/analytics-api/internal/models"
)

// MockGameStore serves History from memory and the rest from function fields
type MockGameStore struct {
	*MemoryHistory
	ScheduledGameFunc func(ctx context.Context, id string) (*models.ScheduledGame, error)
	TeamByNameFunc    func(ctx context.Context, name string) (*models.Team, error)
	TeamByIDFunc      func(ctx context.Context, id int) (*models.Team, error)
	TeamsFunc         func(ctx context.Context) ([]models.Team, error)
	GameLogFunc       func(ctx context.Context, from, to time.Time) ([]models.GameRecord, error)
}

func (m *MockGameStore) ScheduledGame(ctx context.Context, id string) (*models.ScheduledGame, error) {
	if m.ScheduledGameFunc != nil {
		return m.ScheduledGameFunc(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *MockGameStore) TeamByName(ctx context.Context, name string) (*models.Team, error) {
	if m.TeamByNameFunc != nil {
		return m.TeamByNameFunc(ctx, name)
	}
	return nil, ErrNotFound
}

func (m *MockGameStore) TeamByID(ctx context.Context, id int) (*models.Team, error) {
	if m.TeamByIDFunc != nil {
		return m.TeamByIDFunc(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *MockGameStore) Teams(ctx context.Context) ([]models.Team, error) {
	if m.TeamsFunc != nil {
		return m.TeamsFunc(ctx)
	}
	return nil, nil
}

func (m *MockGameStore) GameLog(ctx context.Context, from, to time.Time) ([]models.GameRecord, error) {
	if m.GameLogFunc != nil {
		return m.GameLogFunc(ctx, from, to)
	}
	return m.MemoryHistory.Games(), nil
}

type MockModel struct {
	PredictFunc func(v models.FeatureVector) ml.Outcome
}

func (m *MockModel) Predict(v models.FeatureVector) ml.Outcome {
	if m.PredictFunc != nil {
		return m.PredictFunc(v)
	}
	return ml.Outcome{Reason: ml.SkipUnavailable}
}

func (m *MockModel) Info() models.ModelInfo { return models.ModelInfo{} }
func (m *MockModel) Reload() bool           { return false }

// MockCache is an in-memory PredictionCache
type MockCache struct {
	mu          sync.Mutex
	predictions map[string]*models.GamePrediction
	board       *models.TrendBoard
	sets        int
}

func NewMockCache() *MockCache {
	return &MockCache{predictions: make(map[string]*models.GamePrediction)}
}

func (m *MockCache) GetPrediction(_ context.Context, gameID string) (*models.GamePrediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions[gameID], nil
}

func (m *MockCache) SetPrediction(_ context.Context, p *models.GamePrediction, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ID] = p
	m.sets++
	return nil
}

func (m *MockCache) InvalidatePredictions(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.predictions)
	m.predictions = make(map[string]*models.GamePrediction)
	return n, nil
}

func (m *MockCache) GetTrendBoard(context.Context) (*models.TrendBoard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board, nil
}

func (m *MockCache) SetTrendBoard(_ context.Context, b *models.TrendBoard, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.board = b
	m.sets++
	return nil
}

type MockAudit struct {
	mu      sync.Mutex
	records []*models.PredictionAudit
}

func (m *MockAudit) Enqueue(rec *models.PredictionAudit) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return true
}
