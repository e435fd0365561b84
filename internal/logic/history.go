package logic

import (
	"context"
	"sort"
	"time"

	"github.com/betbot/analytics-api/internal/models"
)

// MemoryHistory serves History queries from preloaded slices. The trainer
// uses it to assemble features for a whole season without a query per game.
type MemoryHistory struct {
	games   []models.GameRecord
	offense map[int][]models.OffensiveStats
	defense map[int][]models.DefensiveStats
}

func NewMemoryHistory(games []models.GameRecord, offense []models.OffensiveStats, defense []models.DefensiveStats) *MemoryHistory {
	h := &MemoryHistory{
		offense: make(map[int][]models.OffensiveStats),
		defense: make(map[int][]models.DefensiveStats),
	}
	for _, g := range games {
		if g.IsFinal() {
			h.games = append(h.games, g)
		}
	}
	sort.SliceStable(h.games, func(i, j int) bool {
		return h.games[i].Date.Before(h.games[j].Date)
	})

	for _, s := range offense {
		h.offense[s.TeamID] = append(h.offense[s.TeamID], s)
	}
	for id := range h.offense {
		rows := h.offense[id]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	}
	for _, s := range defense {
		h.defense[s.TeamID] = append(h.defense[s.TeamID], s)
	}
	for id := range h.defense {
		rows := h.defense[id]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	}
	return h
}

// Games returns every final game, oldest first
func (h *MemoryHistory) Games() []models.GameRecord {
	return h.games
}

func (h *MemoryHistory) TeamGames(_ context.Context, teamID int, before time.Time, limit int) ([]models.GameRecord, error) {
	return h.collect(limit, func(g models.GameRecord) bool {
		return g.Involves(teamID) && playedBefore(g.Date, before)
	}), nil
}

func (h *MemoryHistory) Matchups(_ context.Context, teamA, teamB int, before time.Time, limit int) ([]models.GameRecord, error) {
	return h.collect(limit, func(g models.GameRecord) bool {
		return g.Involves(teamA) && g.Involves(teamB) && g.HomeScore != g.AwayScore && playedBefore(g.Date, before)
	}), nil
}

// collect walks newest first
func (h *MemoryHistory) collect(limit int, keep func(models.GameRecord) bool) []models.GameRecord {
	var out []models.GameRecord
	for i := len(h.games) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if keep(h.games[i]) {
			out = append(out, h.games[i])
		}
	}
	return out
}

func (h *MemoryHistory) OffenseAsOf(_ context.Context, teamID int, at time.Time) (*models.OffensiveStats, error) {
	rows := h.offense[teamID]
	i := sort.Search(len(rows), func(i int) bool { return day(rows[i].Date).After(day(at)) })
	if i == 0 {
		return nil, nil
	}
	s := rows[i-1]
	return &s, nil
}

func (h *MemoryHistory) DefenseAsOf(_ context.Context, teamID int, at time.Time) (*models.DefensiveStats, error) {
	rows := h.defense[teamID]
	i := sort.Search(len(rows), func(i int) bool { return day(rows[i].Date).After(day(at)) })
	if i == 0 {
		return nil, nil
	}
	s := rows[i-1]
	return &s, nil
}
