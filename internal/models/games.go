package models

import "time"

// GameStatus values as stored by the schedule ingester
const (
	StatusScheduled = "Scheduled"
	StatusFinal     = "Final"
)

// GameRecord is a historical schedule row. Only final games feed statistics.
type GameRecord struct {
	GameID     string    `json:"game_id"`
	Date       time.Time `json:"date"`
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	Status     string    `json:"status"`
}

// IsFinal reports whether the game has a final result
func (g GameRecord) IsFinal() bool {
	return g.Status == StatusFinal
}

// Involves reports whether teamID played in the game
func (g GameRecord) Involves(teamID int) bool {
	return g.HomeTeamID == teamID || g.AwayTeamID == teamID
}

// Result returns the game from teamID's point of view.
func (g GameRecord) Result(teamID int) (won bool, scored, allowed int) {
	if g.HomeTeamID == teamID {
		return g.HomeScore > g.AwayScore, g.HomeScore, g.AwayScore
	}
	return g.AwayScore > g.HomeScore, g.AwayScore, g.HomeScore
}

// ScheduledGame is an upcoming matchup requested for prediction.
// Teams are referenced by display name, matching the odds feed.
type ScheduledGame struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
}

// Team is the season record of a club
type Team struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Division          string  `json:"division"`
	GamesPlayed       int     `json:"games_played"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	WinningPercentage float64 `json:"winning_percentage"`
}

// OffensiveStats is a dated snapshot of cumulative season batting metrics
type OffensiveStats struct {
	TeamID             int       `json:"team_id"`
	Date               time.Time `json:"date"`
	BattingAverage     float64   `json:"team_batting_average"`
	RunsScored         int       `json:"runs_scored"`
	HomeRuns           int       `json:"home_runs"`
	OnBasePercentage   float64   `json:"on_base_percentage"`
	SluggingPercentage float64   `json:"slugging_percentage"`
}

// DefensiveStats is a dated snapshot of cumulative season pitching metrics
type DefensiveStats struct {
	TeamID             int       `json:"team_id"`
	Date               time.Time `json:"date"`
	ERA                float64   `json:"team_era"`
	RunsAllowed        int       `json:"runs_allowed"`
	WHIP               float64   `json:"whip"`
	Strikeouts         int       `json:"strikeouts"`
	FieldingPercentage float64   `json:"fielding_percentage"`
}
