package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/betbot/analytics-api/internal/logic"
)

// AuditQueue is the prediction audit worker pool as seen by the readiness check
type AuditQueue interface {
	QueueDepth() int
}

// Pinger is satisfied by *pgxpool.Pool and the ClickHouse driver.Conn
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger is satisfied by *redis.Client
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Config struct {
	AuditQueue AuditQueue
	Postgres   Pinger
	ClickHouse Pinger
	Redis      RedisPinger
	Logger     *zap.Logger
	// Services
	Prediction logic.PredictionService
	Trends     logic.TrendService
	Model      logic.ModelPredictor
}

type Handler struct {
	audit      AuditQueue
	pg         Pinger
	ch         Pinger
	redis      RedisPinger
	logger     *zap.SugaredLogger
	validator  *validator.Validate
	prediction logic.PredictionService
	trends     logic.TrendService
	model      logic.ModelPredictor
}

func New(cfg Config) *Handler {
	return &Handler{
		audit:      cfg.AuditQueue,
		pg:         cfg.Postgres,
		ch:         cfg.ClickHouse,
		redis:      cfg.Redis,
		logger:     cfg.Logger.Sugar(),
		validator:  validator.New(),
		prediction: cfg.Prediction,
		trends:     cfg.Trends,
		model:      cfg.Model,
	}
}
