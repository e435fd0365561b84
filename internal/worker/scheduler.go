package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/betbot/analytics-api/internal/logic"
)

// DefaultTrendSchedule refreshes the trend board every six hours
const DefaultTrendSchedule = "0 */6 * * *"

// Scheduler runs the periodic trend board refresh
type Scheduler struct {
	cron    *cron.Cron
	trends  logic.TrendService
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// NewScheduler registers the refresh job. An invalid schedule is returned as an error.
func NewScheduler(trends logic.TrendService, schedule string, logger *zap.Logger) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultTrendSchedule
	}
	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		trends:  trends,
		timeout: 2 * time.Minute,
		logger:  logger.Sugar(),
	}
	if _, err := s.cron.AddFunc(schedule, s.RefreshTrends); err != nil {
		return nil, fmt.Errorf("invalid trend schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infow("Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RefreshTrends recomputes the trend board once
func (s *Scheduler) RefreshTrends() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	board, err := s.trends.Refresh(ctx)
	if err != nil {
		s.logger.Errorw("Trend refresh failed", "error", err)
		return
	}
	s.logger.Infow("Trend board refreshed",
		"hot", len(board.HotTeams),
		"cold", len(board.ColdTeams),
		"duration", time.Since(start),
	)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
