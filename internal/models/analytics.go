package models

import "time"

// RollingStat is a team's trailing-window form as of one of its games.
// Windowed fields stay nil until the team has played a full window.
type RollingStat struct {
	TeamID             int       `json:"team_id"`
	GameID             string    `json:"game_id"`
	Date               time.Time `json:"date"`
	RollingWinPct      *float64  `json:"rolling_win_pct,omitempty"`
	RollingRunsScored  *float64  `json:"rolling_runs_scored,omitempty"`
	RollingRunsAllowed *float64  `json:"rolling_runs_allowed,omitempty"`
	// Streak is the number of wins inside the window
	Streak            *int `json:"streak,omitempty"`
	DaysRest          *int `json:"days_rest,omitempty"`
	DaysSinceLastGame *int `json:"days_since_last_game,omitempty"`
}

// HeadToHead summarises the most recent meetings of two teams
type HeadToHead struct {
	TeamAWinPct float64 `json:"team_a_win_pct"`
	TeamBWinPct float64 `json:"team_b_win_pct"`
	GamesPlayed int     `json:"games_played"`
}

// TeamAnalytics is one side of a matchup. Only WinningPercentage is guaranteed;
// every other metric is nil when the underlying data is insufficient.
type TeamAnalytics struct {
	Name              string   `json:"name"`
	WinningPercentage float64  `json:"winning_percentage"`
	RollingWinPct     *float64 `json:"rolling_win_percentage,omitempty"`
	OffensiveRating   *float64 `json:"offensive_rating,omitempty"`
	DefensiveRating   *float64 `json:"defensive_rating,omitempty"`
	DaysRest          *int     `json:"days_rest,omitempty"`
	MomentumScore     *float64 `json:"momentum_score,omitempty"`
}

// TeamTrend is a team's current form used by the hot/cold board
type TeamTrend struct {
	TeamID        int       `json:"team_id"`
	Name          string    `json:"name"`
	RollingWinPct float64   `json:"rolling_win_pct"`
	Streak        int       `json:"streak"`
	LastGameDate  time.Time `json:"last_game_date"`
}

// TrendBoard lists the hottest and coldest teams plus the rest-day breakdown
type TrendBoard struct {
	HotTeams    []TeamTrend        `json:"hot_teams"`
	ColdTeams   []TeamTrend        `json:"cold_teams"`
	RestImpact  map[string]float64 `json:"rest_impact"`
	GeneratedAt time.Time          `json:"generated_at"`
}
