package logic

import (
	"context"
	"time"

	"github.com/betbot/analytics-api/internal/ml"
	"github.com/betbot/analytics-api/internal/models"
)

// History is read-only access to completed games and season stat snapshots.
// Implementations must only return games with a final status.
type History interface {
	// TeamGames returns the team's most recent final games played on days
	// strictly before the cutoff, newest first.
	TeamGames(ctx context.Context, teamID int, before time.Time, limit int) ([]models.GameRecord, error)
	// Matchups returns the most recent decisive final games between two teams
	// played on days strictly before the cutoff, newest first, regardless of
	// venue. Tied scores are excluded.
	Matchups(ctx context.Context, teamA, teamB int, before time.Time, limit int) ([]models.GameRecord, error)
	// OffenseAsOf returns the latest snapshot dated on or before at, or nil.
	OffenseAsOf(ctx context.Context, teamID int, at time.Time) (*models.OffensiveStats, error)
	// DefenseAsOf returns the latest snapshot dated on or before at, or nil.
	DefenseAsOf(ctx context.Context, teamID int, at time.Time) (*models.DefensiveStats, error)
}

// GameStore resolves the games and teams referenced by requests
type GameStore interface {
	History
	ScheduledGame(ctx context.Context, id string) (*models.ScheduledGame, error)
	TeamByName(ctx context.Context, name string) (*models.Team, error)
	TeamByID(ctx context.Context, id int) (*models.Team, error)
	Teams(ctx context.Context) ([]models.Team, error)
	GameLog(ctx context.Context, from, to time.Time) ([]models.GameRecord, error)
}

// PredictionCache stores computed responses between requests
type PredictionCache interface {
	GetPrediction(ctx context.Context, gameID string) (*models.GamePrediction, error)
	SetPrediction(ctx context.Context, p *models.GamePrediction, ttl time.Duration) error
	InvalidatePredictions(ctx context.Context) (int, error)
	GetTrendBoard(ctx context.Context) (*models.TrendBoard, error)
	SetTrendBoard(ctx context.Context, b *models.TrendBoard, ttl time.Duration) error
}

// AuditSink receives a record of every prediction served
type AuditSink interface {
	Enqueue(rec *models.PredictionAudit) bool
}

// ModelPredictor is the learned-model tier of the prediction engine
type ModelPredictor interface {
	Predict(v models.FeatureVector) ml.Outcome
	Info() models.ModelInfo
	Reload() bool
}

// PredictionService produces matchup predictions and their inputs
type PredictionService interface {
	PredictGame(ctx context.Context, gameID string) (*models.GamePrediction, error)
	ComputeFeatureVector(ctx context.Context, homeTeamID, awayTeamID int, at time.Time) (*models.FeatureSet, error)
	// InvalidateCache drops cached predictions, e.g. after a model reload
	InvalidateCache(ctx context.Context) error
}

// TrendService serves the hot/cold and rest-impact board
type TrendService interface {
	Board(ctx context.Context) (*models.TrendBoard, error)
	Refresh(ctx context.Context) (*models.TrendBoard, error)
}
