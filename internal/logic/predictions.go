package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/betbot/analytics-api/internal/models"
)

// PredictionConfig wires the orchestrator. Model, Cache and Audit are optional.
type PredictionConfig struct {
	Store     GameStore
	Assembler *FeatureAssembler
	Model     ModelPredictor
	Cache     PredictionCache
	Audit     AuditSink
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

type predictionService struct {
	store     GameStore
	assembler *FeatureAssembler
	model     ModelPredictor
	cache     PredictionCache
	audit     AuditSink
	cacheTTL  time.Duration
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewPredictionService(cfg PredictionConfig) PredictionService {
	return &predictionService{
		store:     cfg.Store,
		assembler: cfg.Assembler,
		model:     cfg.Model,
		cache:     cfg.Cache,
		audit:     cfg.Audit,
		cacheTTL:  cfg.CacheTTL,
		logger:    cfg.Logger.Sugar(),
		now:       time.Now,
	}
}

// PredictGame runs the full pipeline for a scheduled game. Only a missing
// game is an error the caller sees; everything else degrades to a rule-based
// answer.
func (s *predictionService) PredictGame(ctx context.Context, gameID string) (*models.GamePrediction, error) {
	if cached := s.cached(ctx, gameID); cached != nil {
		return cached, nil
	}

	start := time.Now()
	defer func() { predictionDuration.Observe(time.Since(start).Seconds()) }()

	game, err := s.store.ScheduledGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}

	home, err := s.lookupTeam(ctx, game.HomeTeam)
	if err != nil {
		return nil, err
	}
	away, err := s.lookupTeam(ctx, game.AwayTeam)
	if err != nil {
		return nil, err
	}

	if home == nil || away == nil {
		s.logger.Warnw("Team reference missing, using basic prediction",
			"gameID", game.ID, "homeTeam", game.HomeTeam, "awayTeam", game.AwayTeam,
			"homeFound", home != nil, "awayFound", away != nil)
		basic := BasicPrediction(home, away)
		resp := &models.GamePrediction{
			ID:               game.ID,
			HomeTeam:         game.HomeTeam,
			AwayTeam:         game.AwayTeam,
			PredictedWinner:  basic.WinnerName(game.HomeTeam, game.AwayTeam),
			WinProbability:   basic.Probability,
			ConfidenceLevel:  basic.Confidence,
			PredictionSource: models.SourceRuleBased,
		}
		s.finish(ctx, resp, nil)
		return resp, nil
	}

	in, err := s.assembler.Load(ctx, home.ID, away.ID, game.Time)
	if err != nil {
		return nil, fmt.Errorf("load analytics for game %s: %w", game.ID, err)
	}

	homeAnalytics := BuildTeamAnalytics(home, in.Home)
	awayAnalytics := BuildTeamAnalytics(away, in.Away)
	features := s.assembler.Features(in)
	rules := PredictByRules(homeAnalytics, awayAnalytics)

	resp := &models.GamePrediction{
		ID:            game.ID,
		HomeTeam:      game.HomeTeam,
		AwayTeam:      game.AwayTeam,
		HomeAnalytics: &homeAnalytics,
		AwayAnalytics: &awayAnalytics,
		KeyFactors:    rules.KeyFactors,
	}

	if s.model != nil {
		outcome := s.model.Predict(features.Vector)
		if outcome.Usable() {
			p := outcome.Prediction
			resp.PredictedWinner = game.HomeTeam
			if p.Winner == models.SideAway {
				resp.PredictedWinner = game.AwayTeam
			}
			resp.WinProbability = p.Probability
			resp.ConfidenceLevel = p.Confidence
			resp.PredictionSource = models.SourceMachineLearning
			resp.MLModelName = p.ModelName
			resp.ModelConfidence = p.Confidence
			homeProb, awayProb := p.HomeProbability, p.AwayProbability
			resp.HomeWinProbability = &homeProb
			resp.AwayWinProbability = &awayProb
			resp.FeatureImportance = p.FeatureImportance
			s.finish(ctx, resp, &features)
			return resp, nil
		}
		if outcome.Prediction != nil {
			s.logger.Infow("Model below confidence threshold, using rules",
				"gameID", game.ID, "probability", outcome.Prediction.Probability)
		} else {
			s.logger.Debugw("No model prediction, using rules", "gameID", game.ID, "reason", outcome.Reason)
		}
	}

	resp.PredictedWinner = rules.WinnerName(game.HomeTeam, game.AwayTeam)
	resp.WinProbability = rules.Probability
	resp.ConfidenceLevel = rules.Confidence
	resp.PredictionSource = models.SourceRuleBased
	s.finish(ctx, resp, &features)
	return resp, nil
}

// ComputeFeatureVector assembles the model input for an arbitrary matchup.
// Both teams must exist; an unknown id is ErrNotFound.
func (s *predictionService) ComputeFeatureVector(ctx context.Context, homeTeamID, awayTeamID int, at time.Time) (*models.FeatureSet, error) {
	for _, id := range []int{homeTeamID, awayTeamID} {
		if _, err := s.store.TeamByID(ctx, id); err != nil {
			return nil, fmt.Errorf("team %d: %w", id, err)
		}
	}
	return s.assembler.Assemble(ctx, homeTeamID, awayTeamID, at)
}

func (s *predictionService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	n, err := s.cache.InvalidatePredictions(ctx)
	if err != nil {
		return fmt.Errorf("invalidate predictions: %w", err)
	}
	s.logger.Infow("Invalidated cached predictions", "count", n)
	return nil
}

// lookupTeam returns nil without error when the team does not exist
func (s *predictionService) lookupTeam(ctx context.Context, name string) (*models.Team, error) {
	team, err := s.store.TeamByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("team %q: %w", name, err)
	}
	return team, nil
}

func (s *predictionService) cached(ctx context.Context, gameID string) *models.GamePrediction {
	if s.cache == nil {
		return nil
	}
	p, err := s.cache.GetPrediction(ctx, gameID)
	if err != nil {
		predictionCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warnw("Prediction cache read failed", "gameID", gameID, "error", err)
		return nil
	}
	if p == nil {
		predictionCacheTotal.WithLabelValues("miss").Inc()
		return nil
	}
	predictionCacheTotal.WithLabelValues("hit").Inc()
	return p
}

// finish records metrics, the audit row and the cache entry for a response
func (s *predictionService) finish(ctx context.Context, resp *models.GamePrediction, features *models.FeatureSet) {
	predictionsTotal.WithLabelValues(resp.PredictionSource).Inc()

	if s.audit != nil {
		rec := &models.PredictionAudit{
			ID:               uuid.NewString(),
			GameID:           resp.ID,
			CreatedAt:        s.now().UTC(),
			HomeTeam:         resp.HomeTeam,
			AwayTeam:         resp.AwayTeam,
			PredictedWinner:  resp.PredictedWinner,
			WinProbability:   resp.WinProbability,
			ConfidenceLevel:  resp.ConfidenceLevel,
			PredictionSource: resp.PredictionSource,
			ModelName:        resp.MLModelName,
		}
		if features != nil {
			rec.Features = features.Vector.Map()
			rec.Defaulted = features.Defaulted
		}
		if !s.audit.Enqueue(rec) {
			s.logger.Warnw("Audit queue full, dropping record", "gameID", resp.ID)
		}
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetPrediction(ctx, resp, s.cacheTTL); err != nil {
			s.logger.Warnw("Prediction cache write failed", "gameID", resp.ID, "error", err)
		}
	}
}
