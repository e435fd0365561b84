package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/betbot/analytics-api/internal/ml"
	"github.com/betbot/analytics-api/internal/models"
)

var (
	yankees = &models.Team{ID: 1, Name: "New York Yankees", WinningPercentage: 0.62}
	orioles = &models.Team{ID: 2, Name: "Baltimore Orioles", WinningPercentage: 0.48}
)

func newTestStore() *MockGameStore {
	games := series("g", 0, 12, 1, 2, func(i int) bool { return i%4 != 0 })
	history := NewMemoryHistory(games,
		[]models.OffensiveStats{
			{TeamID: 1, Date: dayN(0), BattingAverage: 0.27, OnBasePercentage: 0.34, SluggingPercentage: 0.46},
			{TeamID: 2, Date: dayN(0), BattingAverage: 0.24, OnBasePercentage: 0.30, SluggingPercentage: 0.39},
		},
		[]models.DefensiveStats{
			{TeamID: 1, Date: dayN(0), ERA: 3.5, WHIP: 1.15},
			{TeamID: 2, Date: dayN(0), ERA: 4.6, WHIP: 1.4},
		},
	)
	return &MockGameStore{
		MemoryHistory: history,
		ScheduledGameFunc: func(ctx context.Context, id string) (*models.ScheduledGame, error) {
			if id != "game-1" {
				return nil, ErrNotFound
			}
			return &models.ScheduledGame{ID: id, Time: dayN(14).Add(23 * time.Hour), HomeTeam: yankees.Name, AwayTeam: orioles.Name}, nil
		},
		TeamByNameFunc: func(ctx context.Context, name string) (*models.Team, error) {
			switch name {
			case yankees.Name:
				return yankees, nil
			case orioles.Name:
				return orioles, nil
			}
			return nil, ErrNotFound
		},
		TeamByIDFunc: func(ctx context.Context, id int) (*models.Team, error) {
			switch id {
			case yankees.ID:
				return yankees, nil
			case orioles.ID:
				return orioles, nil
			}
			return nil, ErrNotFound
		},
	}
}

func newTestPredictionService(store GameStore, model ModelPredictor, cache PredictionCache, audit AuditSink) PredictionService {
	cfg := PredictionConfig{
		Store:     store,
		Assembler: NewFeatureAssembler(store, NewRollingEngine(10), 5, zap.NewNop()),
		CacheTTL:  time.Minute,
		Logger:    zap.NewNop(),
	}
	if model != nil {
		cfg.Model = model
	}
	if cache != nil {
		cfg.Cache = cache
	}
	if audit != nil {
		cfg.Audit = audit
	}
	return NewPredictionService(cfg)
}

func TestPredictGame_NotFound(t *testing.T) {
	svc := newTestPredictionService(newTestStore(), nil, nil, nil)
	_, err := svc.PredictGame(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPredictGame_RuleBasedWhenModelUnavailable(t *testing.T) {
	audit := &MockAudit{}
	svc := newTestPredictionService(newTestStore(), &MockModel{}, nil, audit)

	resp, err := svc.PredictGame(context.Background(), "game-1")
	require.NoError(t, err)

	assert.Equal(t, models.SourceRuleBased, resp.PredictionSource)
	assert.Equal(t, yankees.Name, resp.PredictedWinner)
	assert.Equal(t, models.ConfidenceHigh, resp.ConfidenceLevel)
	assert.NotEmpty(t, resp.KeyFactors)
	assert.Empty(t, resp.MLModelName)
	assert.Nil(t, resp.HomeWinProbability)

	require.NotNil(t, resp.HomeAnalytics)
	assert.InDelta(t, 0.8, *resp.HomeAnalytics.RollingWinPct, 1e-9)
	assert.Equal(t, 3, *resp.HomeAnalytics.DaysRest)
	require.NotNil(t, resp.AwayAnalytics)
	assert.NotNil(t, resp.AwayAnalytics.MomentumScore)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, "game-1", rec.GameID)
	assert.Len(t, rec.Features, 26)
	assert.NotEmpty(t, rec.ID)
}

func TestPredictGame_MachineLearning(t *testing.T) {
	var seen models.FeatureVector
	model := &MockModel{PredictFunc: func(v models.FeatureVector) ml.Outcome {
		seen = v
		return ml.Outcome{Prediction: &ml.Prediction{
			Winner:            models.SideAway,
			Probability:       0.71,
			HomeProbability:   0.29,
			AwayProbability:   0.71,
			Confidence:        models.ConfidenceHigh,
			ModelName:         "logistic_regression-v1.0",
			UseML:             true,
			FeatureImportance: map[string]float64{"home_era": 0.4},
		}}
	}}
	svc := newTestPredictionService(newTestStore(), model, nil, nil)

	resp, err := svc.PredictGame(context.Background(), "game-1")
	require.NoError(t, err)

	assert.Equal(t, models.SourceMachineLearning, resp.PredictionSource)
	assert.Equal(t, orioles.Name, resp.PredictedWinner)
	assert.Equal(t, 0.71, resp.WinProbability)
	assert.Equal(t, models.ConfidenceHigh, resp.ModelConfidence)
	assert.Equal(t, models.ConfidenceHigh, resp.ConfidenceLevel)
	assert.Equal(t, "logistic_regression-v1.0", resp.MLModelName)
	assert.Equal(t, 0.29, *resp.HomeWinProbability)
	assert.Equal(t, 0.71, *resp.AwayWinProbability)
	assert.Equal(t, map[string]float64{"home_era": 0.4}, resp.FeatureImportance)
	assert.Contains(t, resp.KeyFactors, FactorSeasonRecord, "rule factors explain ML predictions too")

	assert.Equal(t, 3.5, seen.HomeERA)
	assert.Equal(t, 4.6, seen.AwayERA)
}

func TestPredictGame_LowConfidenceModelFallsBack(t *testing.T) {
	model := &MockModel{PredictFunc: func(v models.FeatureVector) ml.Outcome {
		return ml.Outcome{Prediction: &ml.Prediction{Winner: models.SideAway, Probability: 0.53, UseML: false}}
	}}
	svc := newTestPredictionService(newTestStore(), model, nil, nil)

	resp, err := svc.PredictGame(context.Background(), "game-1")
	require.NoError(t, err)
	assert.Equal(t, models.SourceRuleBased, resp.PredictionSource)
	assert.Equal(t, yankees.Name, resp.PredictedWinner)
}

func TestPredictGame_MissingTeamUsesBasicPrediction(t *testing.T) {
	store := newTestStore()
	store.TeamByNameFunc = func(ctx context.Context, name string) (*models.Team, error) {
		if name == yankees.Name {
			return yankees, nil
		}
		return nil, ErrNotFound
	}
	called := false
	model := &MockModel{PredictFunc: func(models.FeatureVector) ml.Outcome {
		called = true
		return ml.Outcome{}
	}}
	svc := newTestPredictionService(store, model, nil, nil)

	resp, err := svc.PredictGame(context.Background(), "game-1")
	require.NoError(t, err)
	assert.False(t, called, "model must be skipped without team data")
	assert.Equal(t, models.SourceRuleBased, resp.PredictionSource)
	assert.Equal(t, yankees.Name, resp.PredictedWinner)
	assert.Equal(t, 0.5, resp.WinProbability)
	assert.Equal(t, models.ConfidenceLow, resp.ConfidenceLevel)
	assert.Nil(t, resp.HomeAnalytics)
}

func TestPredictGame_StoreErrorPropagates(t *testing.T) {
	store := newTestStore()
	store.TeamByNameFunc = func(ctx context.Context, name string) (*models.Team, error) {
		return nil, errors.New("pool closed")
	}
	svc := newTestPredictionService(store, nil, nil, nil)

	_, err := svc.PredictGame(context.Background(), "game-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPredictGame_Cache(t *testing.T) {
	cache := NewMockCache()
	store := newTestStore()
	lookups := 0
	inner := store.ScheduledGameFunc
	store.ScheduledGameFunc = func(ctx context.Context, id string) (*models.ScheduledGame, error) {
		lookups++
		return inner(ctx, id)
	}
	svc := newTestPredictionService(store, nil, cache, nil)

	first, err := svc.PredictGame(context.Background(), "game-1")
	require.NoError(t, err)
	second, err := svc.PredictGame(context.Background(), "game-1")
	require.NoError(t, err)

	assert.Equal(t, 1, lookups)
	assert.Equal(t, first, second)
}

func TestInvalidateCacheForcesRecompute(t *testing.T) {
	cache := NewMockCache()
	store := newTestStore()
	lookups := 0
	inner := store.ScheduledGameFunc
	store.ScheduledGameFunc = func(ctx context.Context, id string) (*models.ScheduledGame, error) {
		lookups++
		return inner(ctx, id)
	}
	svc := newTestPredictionService(store, nil, cache, nil)
	ctx := context.Background()

	_, err := svc.PredictGame(ctx, "game-1")
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateCache(ctx))
	_, err = svc.PredictGame(ctx, "game-1")
	require.NoError(t, err)

	assert.Equal(t, 2, lookups)
}

func TestInvalidateCacheWithoutCache(t *testing.T) {
	svc := newTestPredictionService(newTestStore(), nil, nil, nil)
	assert.NoError(t, svc.InvalidateCache(context.Background()))
}

func TestComputeFeatureVector(t *testing.T) {
	svc := newTestPredictionService(newTestStore(), nil, nil, nil)

	set, err := svc.ComputeFeatureVector(context.Background(), 1, 2, dayN(14))
	require.NoError(t, err)
	assert.Len(t, set.Vector.Map(), 26)
	assert.Equal(t, 0.27, set.Vector.HomeBattingAvg)
	assert.Equal(t, 5.0, set.Vector.H2HGamesPlayed)
}

func TestComputeFeatureVector_UnknownTeam(t *testing.T) {
	svc := newTestPredictionService(newTestStore(), nil, nil, nil)

	tests := []struct {
		name       string
		home, away int
	}{
		{"both unknown", 998, 999},
		{"home unknown", 998, 2},
		{"away unknown", 1, 999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := svc.ComputeFeatureVector(context.Background(), tt.home, tt.away, dayN(14))
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Nil(t, set)
		})
	}
}

func TestComputeFeatureVector_StoreError(t *testing.T) {
	boom := errors.New("connection reset")
	store := newTestStore()
	store.TeamByIDFunc = func(ctx context.Context, id int) (*models.Team, error) {
		return nil, boom
	}
	svc := newTestPredictionService(store, nil, nil, nil)

	_, err := svc.ComputeFeatureVector(context.Background(), 1, 2, dayN(14))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}
