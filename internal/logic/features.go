package logic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/betbot/analytics-api/internal/models"
)

// Defaults substituted for missing source statistics
const (
	DefaultRollingValue = 0.0
	DefaultDaysRest     = 1.0
	DefaultBattingAvg   = 0.25
	DefaultOBP          = 0.32
	DefaultSLG          = 0.40
	DefaultERA          = 4.5
	DefaultWHIP         = 1.3
	DefaultStrikeouts   = 0.0
	DefaultHeadToHead   = 0.0
)

// SideInputs is what is known about one team going into a game. Every field
// is optional.
type SideInputs struct {
	Rolling *models.RollingStat
	Offense *models.OffensiveStats
	Defense *models.DefensiveStats
}

// MatchupInputs are the raw signals behind one feature vector
type MatchupInputs struct {
	Home       SideInputs
	Away       SideInputs
	HeadToHead models.HeadToHead
	At         time.Time
}

// FeatureAssembler loads matchup signals from History and turns them into
// model-ready feature vectors.
type FeatureAssembler struct {
	history   History
	rolling   RollingEngine
	h2hWindow int
	logger    *zap.SugaredLogger
}

func NewFeatureAssembler(history History, rolling RollingEngine, h2hWindow int, logger *zap.Logger) *FeatureAssembler {
	if h2hWindow <= 0 {
		h2hWindow = DefaultHeadToHeadWindow
	}
	return &FeatureAssembler{
		history:   history,
		rolling:   rolling,
		h2hWindow: h2hWindow,
		logger:    logger.Sugar(),
	}
}

// Load fetches both sides and the head-to-head record concurrently
func (a *FeatureAssembler) Load(ctx context.Context, homeID, awayID int, at time.Time) (MatchupInputs, error) {
	in := MatchupInputs{At: at}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		side, err := a.loadSide(gctx, homeID, at)
		in.Home = side
		return err
	})
	g.Go(func() error {
		side, err := a.loadSide(gctx, awayID, at)
		in.Away = side
		return err
	})
	g.Go(func() error {
		games, err := a.history.Matchups(gctx, homeID, awayID, at, a.h2hWindow)
		if err != nil {
			return fmt.Errorf("head-to-head %d vs %d: %w", homeID, awayID, err)
		}
		in.HeadToHead = HeadToHead(games, homeID, awayID, at, a.h2hWindow)
		return nil
	})

	if err := g.Wait(); err != nil {
		return MatchupInputs{}, err
	}
	return in, nil
}

func (a *FeatureAssembler) loadSide(ctx context.Context, teamID int, at time.Time) (SideInputs, error) {
	var side SideInputs

	games, err := a.history.TeamGames(ctx, teamID, at, a.rolling.window())
	if err != nil {
		return side, fmt.Errorf("team %d games: %w", teamID, err)
	}
	side.Rolling = a.rolling.AsOf(games, teamID, at)

	if side.Offense, err = a.history.OffenseAsOf(ctx, teamID, at); err != nil {
		return side, fmt.Errorf("team %d offense: %w", teamID, err)
	}
	if side.Defense, err = a.history.DefenseAsOf(ctx, teamID, at); err != nil {
		return side, fmt.Errorf("team %d defense: %w", teamID, err)
	}
	return side, nil
}

// Assemble computes the feature vector for homeID hosting awayID at the given time
func (a *FeatureAssembler) Assemble(ctx context.Context, homeID, awayID int, at time.Time) (*models.FeatureSet, error) {
	in, err := a.Load(ctx, homeID, awayID, at)
	if err != nil {
		return nil, err
	}
	set := a.Features(in)
	return &set, nil
}

// Features builds the vector and records every default that was applied
func (a *FeatureAssembler) Features(in MatchupInputs) models.FeatureSet {
	set := BuildFeatureSet(in)
	if len(set.Defaulted) > 0 {
		for _, name := range set.Defaulted {
			featureDefaultsTotal.WithLabelValues(name).Inc()
		}
		a.logger.Debugw("Feature defaults applied", "defaulted", set.Defaulted, "at", in.At)
	}
	return set
}

// BuildFeatureSet fills all 26 features, substituting the documented default
// for anything missing and listing the substituted names.
func BuildFeatureSet(in MatchupInputs) models.FeatureSet {
	var set models.FeatureSet
	v := &set.Vector

	pick := func(name string, value *float64, def float64) float64 {
		if value == nil {
			set.Defaulted = append(set.Defaulted, name)
			return def
		}
		return *value
	}

	var homeRolling, awayRolling models.RollingStat
	if in.Home.Rolling != nil {
		homeRolling = *in.Home.Rolling
	}
	if in.Away.Rolling != nil {
		awayRolling = *in.Away.Rolling
	}

	v.HomeRollingWinPct = pick("home_rolling_win_pct", homeRolling.RollingWinPct, DefaultRollingValue)
	v.AwayRollingWinPct = pick("away_rolling_win_pct", awayRolling.RollingWinPct, DefaultRollingValue)
	v.HomeRollingRunsScored = pick("home_rolling_runs_scored", homeRolling.RollingRunsScored, DefaultRollingValue)
	v.AwayRollingRunsScored = pick("away_rolling_runs_scored", awayRolling.RollingRunsScored, DefaultRollingValue)
	v.HomeRollingRunsAllowed = pick("home_rolling_runs_allowed", homeRolling.RollingRunsAllowed, DefaultRollingValue)
	v.AwayRollingRunsAllowed = pick("away_rolling_runs_allowed", awayRolling.RollingRunsAllowed, DefaultRollingValue)
	v.HomeDaysRest = pick("home_days_rest", intPtrToFloat(homeRolling.DaysSinceLastGame), DefaultDaysRest)
	v.AwayDaysRest = pick("away_days_rest", intPtrToFloat(awayRolling.DaysSinceLastGame), DefaultDaysRest)

	homeOff, awayOff := in.Home.Offense, in.Away.Offense
	v.HomeBattingAvg = pick("home_batting_avg", offenseField(homeOff, func(s *models.OffensiveStats) float64 { return s.BattingAverage }), DefaultBattingAvg)
	v.AwayBattingAvg = pick("away_batting_avg", offenseField(awayOff, func(s *models.OffensiveStats) float64 { return s.BattingAverage }), DefaultBattingAvg)
	v.HomeOBP = pick("home_obp", offenseField(homeOff, func(s *models.OffensiveStats) float64 { return s.OnBasePercentage }), DefaultOBP)
	v.AwayOBP = pick("away_obp", offenseField(awayOff, func(s *models.OffensiveStats) float64 { return s.OnBasePercentage }), DefaultOBP)
	v.HomeSLG = pick("home_slg", offenseField(homeOff, func(s *models.OffensiveStats) float64 { return s.SluggingPercentage }), DefaultSLG)
	v.AwaySLG = pick("away_slg", offenseField(awayOff, func(s *models.OffensiveStats) float64 { return s.SluggingPercentage }), DefaultSLG)

	homeDef, awayDef := in.Home.Defense, in.Away.Defense
	v.HomeERA = pick("home_era", defenseField(homeDef, func(s *models.DefensiveStats) float64 { return s.ERA }), DefaultERA)
	v.AwayERA = pick("away_era", defenseField(awayDef, func(s *models.DefensiveStats) float64 { return s.ERA }), DefaultERA)
	v.HomeWHIP = pick("home_whip", defenseField(homeDef, func(s *models.DefensiveStats) float64 { return s.WHIP }), DefaultWHIP)
	v.AwayWHIP = pick("away_whip", defenseField(awayDef, func(s *models.DefensiveStats) float64 { return s.WHIP }), DefaultWHIP)
	v.HomeStrikeouts = pick("home_strikeouts", defenseField(homeDef, func(s *models.DefensiveStats) float64 { return float64(s.Strikeouts) }), DefaultStrikeouts)
	v.AwayStrikeouts = pick("away_strikeouts", defenseField(awayDef, func(s *models.DefensiveStats) float64 { return float64(s.Strikeouts) }), DefaultStrikeouts)

	// the 0/0/0 sentinel counts as defaulted
	h2h := in.HeadToHead
	if h2h.GamesPlayed == 0 {
		set.Defaulted = append(set.Defaulted, "h2h_home_win_pct", "h2h_away_win_pct", "h2h_games_played")
		v.H2HHomeWinPct = DefaultHeadToHead
		v.H2HAwayWinPct = DefaultHeadToHead
		v.H2HGamesPlayed = DefaultHeadToHead
	} else {
		v.H2HHomeWinPct = h2h.TeamAWinPct
		v.H2HAwayWinPct = h2h.TeamBWinPct
		v.H2HGamesPlayed = float64(h2h.GamesPlayed)
	}

	month, dow, weekend := calendarFeatures(in.At)
	v.Month = month
	v.DayOfWeek = dow
	v.IsWeekend = weekend

	return set
}

// calendarFeatures returns month (1-12), day of week (Monday=0) and a
// weekend flag.
func calendarFeatures(t time.Time) (month, dayOfWeek, isWeekend float64) {
	dow := (int(t.Weekday()) + 6) % 7
	weekend := 0.0
	if dow >= 5 {
		weekend = 1.0
	}
	return float64(t.Month()), float64(dow), weekend
}

func intPtrToFloat(p *int) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}

func offenseField(s *models.OffensiveStats, get func(*models.OffensiveStats) float64) *float64 {
	if s == nil {
		return nil
	}
	f := get(s)
	return &f
}

func defenseField(s *models.DefensiveStats, get func(*models.DefensiveStats) float64) *float64 {
	if s == nil {
		return nil
	}
	f := get(s)
	return &f
}
