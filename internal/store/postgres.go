package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/betbot/analytics-api/internal/logic"
	"github.com/betbot/analytics-api/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements logic.GameStore on top of the schedule and stats tables
type Postgres struct {
	pg PgPool
}

var _ logic.GameStore = (*Postgres)(nil)

func NewPostgres(pg PgPool) *Postgres {
	return &Postgres{pg: pg}
}

const gameColumns = `game_id, game_date, home_team_id, away_team_id,
	COALESCE(home_score, 0), COALESCE(away_score, 0), status`

func (p *Postgres) TeamGames(ctx context.Context, teamID int, before time.Time, limit int) ([]models.GameRecord, error) {
	rows, err := p.pg.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE status = $1
		  AND (home_team_id = $2 OR away_team_id = $2)
		  AND game_date < $3
		ORDER BY game_date DESC, game_id DESC
		LIMIT $4
	`, models.StatusFinal, teamID, calendarDay(before), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query team games: %w", err)
	}
	return scanGames(rows)
}

func (p *Postgres) Matchups(ctx context.Context, teamA, teamB int, before time.Time, limit int) ([]models.GameRecord, error) {
	rows, err := p.pg.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE status = $1
		  AND ((home_team_id = $2 AND away_team_id = $3) OR (home_team_id = $3 AND away_team_id = $2))
		  AND home_score <> away_score
		  AND game_date < $4
		ORDER BY game_date DESC, game_id DESC
		LIMIT $5
	`, models.StatusFinal, teamA, teamB, calendarDay(before), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchups: %w", err)
	}
	return scanGames(rows)
}

// GameLog returns final games dated within [from, to], oldest first
func (p *Postgres) GameLog(ctx context.Context, from, to time.Time) ([]models.GameRecord, error) {
	rows, err := p.pg.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE status = $1 AND game_date BETWEEN $2 AND $3
		ORDER BY game_date, game_id
	`, models.StatusFinal, calendarDay(from), calendarDay(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query game log: %w", err)
	}
	return scanGames(rows)
}

func (p *Postgres) OffenseAsOf(ctx context.Context, teamID int, at time.Time) (*models.OffensiveStats, error) {
	var s models.OffensiveStats
	err := p.pg.QueryRow(ctx, `
		SELECT `+offenseColumns+`
		FROM team_offensive_stats
		WHERE team_id = $1 AND stat_date <= $2
		ORDER BY stat_date DESC
		LIMIT 1
	`, teamID, calendarDay(at)).Scan(offenseDest(&s)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query offensive stats: %w", err)
	}
	return &s, nil
}

func (p *Postgres) DefenseAsOf(ctx context.Context, teamID int, at time.Time) (*models.DefensiveStats, error) {
	var s models.DefensiveStats
	err := p.pg.QueryRow(ctx, `
		SELECT `+defenseColumns+`
		FROM team_defensive_stats
		WHERE team_id = $1 AND stat_date <= $2
		ORDER BY stat_date DESC
		LIMIT 1
	`, teamID, calendarDay(at)).Scan(defenseDest(&s)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query defensive stats: %w", err)
	}
	return &s, nil
}

func (p *Postgres) ScheduledGame(ctx context.Context, id string) (*models.ScheduledGame, error) {
	var g models.ScheduledGame
	err := p.pg.QueryRow(ctx, `
		SELECT id, commence_time, home_team, away_team
		FROM scheduled_games
		WHERE id = $1
	`, id).Scan(&g.ID, &g.Time, &g.HomeTeam, &g.AwayTeam)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, logic.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled game: %w", err)
	}
	return &g, nil
}

func (p *Postgres) TeamByName(ctx context.Context, name string) (*models.Team, error) {
	return p.team(ctx, "name = $1", name)
}

func (p *Postgres) TeamByID(ctx context.Context, id int) (*models.Team, error) {
	return p.team(ctx, "id = $1", id)
}

func (p *Postgres) team(ctx context.Context, where string, arg any) (*models.Team, error) {
	var t models.Team
	err := p.pg.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE `+where, arg).Scan(teamDest(&t)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, logic.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query team: %w", err)
	}
	return &t, nil
}

func (p *Postgres) Teams(ctx context.Context) ([]models.Team, error) {
	rows, err := p.pg.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(teamDest(&t)...); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// LoadHistory bulk-loads every final game and stat snapshot in [from, to]
// into memory for training.
func (p *Postgres) LoadHistory(ctx context.Context, from, to time.Time) (*logic.MemoryHistory, error) {
	games, err := p.GameLog(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rows, err := p.pg.Query(ctx, `
		SELECT `+offenseColumns+`
		FROM team_offensive_stats
		WHERE stat_date <= $1
		ORDER BY team_id, stat_date
	`, calendarDay(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query offensive snapshots: %w", err)
	}
	var offense []models.OffensiveStats
	for rows.Next() {
		var s models.OffensiveStats
		if err := rows.Scan(offenseDest(&s)...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan offensive snapshot: %w", err)
		}
		offense = append(offense, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = p.pg.Query(ctx, `
		SELECT `+defenseColumns+`
		FROM team_defensive_stats
		WHERE stat_date <= $1
		ORDER BY team_id, stat_date
	`, calendarDay(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query defensive snapshots: %w", err)
	}
	var defense []models.DefensiveStats
	for rows.Next() {
		var s models.DefensiveStats
		if err := rows.Scan(defenseDest(&s)...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan defensive snapshot: %w", err)
		}
		defense = append(defense, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logic.NewMemoryHistory(games, offense, defense), nil
}

const teamColumns = `id, name, COALESCE(division, ''), games_played, wins, losses, winning_percentage`

func teamDest(t *models.Team) []any {
	return []any{&t.ID, &t.Name, &t.Division, &t.GamesPlayed, &t.Wins, &t.Losses, &t.WinningPercentage}
}

const offenseColumns = `team_id, stat_date, batting_average, runs_scored, home_runs,
	on_base_percentage, slugging_percentage`

func offenseDest(s *models.OffensiveStats) []any {
	return []any{&s.TeamID, &s.Date, &s.BattingAverage, &s.RunsScored, &s.HomeRuns,
		&s.OnBasePercentage, &s.SluggingPercentage}
}

const defenseColumns = `team_id, stat_date, era, runs_allowed, whip, strikeouts,
	fielding_percentage`

func defenseDest(s *models.DefensiveStats) []any {
	return []any{&s.TeamID, &s.Date, &s.ERA, &s.RunsAllowed, &s.WHIP, &s.Strikeouts,
		&s.FieldingPercentage}
}

func scanGames(rows pgx.Rows) ([]models.GameRecord, error) {
	defer rows.Close()

	var games []models.GameRecord
	for rows.Next() {
		var g models.GameRecord
		if err := rows.Scan(&g.GameID, &g.Date, &g.HomeTeamID, &g.AwayTeamID,
			&g.HomeScore, &g.AwayScore, &g.Status); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read games: %w", err)
	}
	return games, nil
}

// calendarDay truncates to the UTC calendar date compared against DATE columns
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
