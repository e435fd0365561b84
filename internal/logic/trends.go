package logic

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/betbot/analytics-api/internal/models"
)

// DefaultTrendTeamCount is how many teams each side of the board lists
const DefaultTrendTeamCount = 5

// Rest buckets
const (
	RestBackToBack = "Back-to-back"
	RestOneDay     = "1 day"
	RestTwoDays    = "2 days"
	RestThreePlus  = "3+ days"
)

type TrendConfig struct {
	Store     GameStore
	Cache     PredictionCache
	Rolling   RollingEngine
	TeamCount int
	// Lookback is how far back the game log reaches
	Lookback time.Duration
	CacheTTL time.Duration
	Logger   *zap.Logger
}

type trendService struct {
	store     GameStore
	cache     PredictionCache
	rolling   RollingEngine
	teamCount int
	lookback  time.Duration
	cacheTTL  time.Duration
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewTrendService(cfg TrendConfig) TrendService {
	if cfg.TeamCount <= 0 {
		cfg.TeamCount = DefaultTrendTeamCount
	}
	return &trendService{
		store:     cfg.Store,
		cache:     cfg.Cache,
		rolling:   cfg.Rolling,
		teamCount: cfg.TeamCount,
		lookback:  cfg.Lookback,
		cacheTTL:  cfg.CacheTTL,
		logger:    cfg.Logger.Sugar(),
		now:       time.Now,
	}
}

// Board returns the cached board, computing it on a miss
func (s *trendService) Board(ctx context.Context) (*models.TrendBoard, error) {
	if s.cache != nil {
		board, err := s.cache.GetTrendBoard(ctx)
		if err != nil {
			s.logger.Warnw("Trend cache read failed", "error", err)
		} else if board != nil {
			return board, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the board from the game log and caches it
func (s *trendService) Refresh(ctx context.Context) (*models.TrendBoard, error) {
	now := s.now()
	games, err := s.store.GameLog(ctx, now.Add(-s.lookback), now)
	if err != nil {
		trendRefreshTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("load game log: %w", err)
	}
	teams, err := s.store.Teams(ctx)
	if err != nil {
		trendRefreshTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("load teams: %w", err)
	}

	engine := s.rolling
	engine.Now = func() time.Time { return now }
	board := BuildTrendBoard(engine.Compute(games), teams, s.teamCount, now)

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetTrendBoard(ctx, &board, s.cacheTTL); err != nil {
			s.logger.Warnw("Trend cache write failed", "error", err)
		}
	}
	trendRefreshTotal.WithLabelValues("success").Inc()
	s.logger.Infow("Trend board refreshed", "games", len(games), "hot", len(board.HotTeams), "cold", len(board.ColdTeams))
	return &board, nil
}

// BuildTrendBoard ranks teams by their latest rolling win percentage and
// buckets every windowed record by days of rest.
func BuildTrendBoard(stats map[int][]models.RollingStat, teams []models.Team, n int, now time.Time) models.TrendBoard {
	hot, cold := HotColdTeams(stats, teams, n)
	return models.TrendBoard{
		HotTeams:    hot,
		ColdTeams:   cold,
		RestImpact:  RestImpact(stats),
		GeneratedAt: now.UTC(),
	}
}

// HotColdTeams returns the n best and n worst teams by latest rolling win
// percentage. Teams without a full window are left out.
func HotColdTeams(stats map[int][]models.RollingStat, teams []models.Team, n int) (hot, cold []models.TeamTrend) {
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	var trends []models.TeamTrend
	for teamID, rows := range stats {
		if len(rows) == 0 {
			continue
		}
		last := rows[len(rows)-1]
		if last.RollingWinPct == nil {
			continue
		}
		name, ok := names[teamID]
		if !ok {
			continue
		}
		trend := models.TeamTrend{
			TeamID:        teamID,
			Name:          name,
			RollingWinPct: round3(*last.RollingWinPct),
			LastGameDate:  last.Date,
		}
		if last.Streak != nil {
			trend.Streak = *last.Streak
		}
		trends = append(trends, trend)
	}

	// best first, team id breaks ties so the board is stable
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].RollingWinPct != trends[j].RollingWinPct {
			return trends[i].RollingWinPct > trends[j].RollingWinPct
		}
		return trends[i].TeamID < trends[j].TeamID
	})

	if n > len(trends) {
		n = len(trends)
	}
	hot = append([]models.TeamTrend{}, trends[:n]...)
	cold = make([]models.TeamTrend, 0, n)
	for i := len(trends) - 1; i >= len(trends)-n; i-- {
		cold = append(cold, trends[i])
	}
	return hot, cold
}

// RestImpact is the mean rolling win percentage per rest bucket. A team's
// latest record is bucketed by days since its last game.
func RestImpact(stats map[int][]models.RollingStat) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rows := range stats {
		for i, r := range rows {
			if r.RollingWinPct == nil {
				continue
			}
			rest := r.DaysRest
			if i == len(rows)-1 && r.DaysSinceLastGame != nil {
				rest = r.DaysSinceLastGame
			}
			if rest == nil {
				continue
			}
			bucket := restBucket(*rest)
			sums[bucket] += *r.RollingWinPct
			counts[bucket]++
		}
	}

	out := make(map[string]float64, len(sums))
	for bucket, sum := range sums {
		out[bucket] = round3(sum / float64(counts[bucket]))
	}
	return out
}

func restBucket(days int) string {
	switch {
	case days <= 0:
		return RestBackToBack
	case days == 1:
		return RestOneDay
	case days == 2:
		return RestTwoDays
	default:
		return RestThreePlus
	}
}
