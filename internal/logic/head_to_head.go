package logic

import (
	"sort"
	"time"

	"github.com/betbot/analytics-api/internal/models"
)

// DefaultHeadToHeadWindow is the number of recent meetings considered
const DefaultHeadToHeadWindow = 5

// HeadToHead summarises the most recent decisive meetings of teamA and teamB
// played on days strictly before cutoff, regardless of venue. Tied scores are
// skipped. With no qualifying games the zero value is returned.
func HeadToHead(games []models.GameRecord, teamA, teamB int, cutoff time.Time, window int) models.HeadToHead {
	if window <= 0 {
		window = DefaultHeadToHeadWindow
	}

	meetings := make([]models.GameRecord, 0, window)
	for _, g := range games {
		if !g.IsFinal() || g.HomeScore == g.AwayScore {
			continue
		}
		if !g.Involves(teamA) || !g.Involves(teamB) || teamA == teamB {
			continue
		}
		if !playedBefore(g.Date, cutoff) {
			continue
		}
		meetings = append(meetings, g)
	}

	// newest first
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Date.After(meetings[j].Date)
	})
	if len(meetings) > window {
		meetings = meetings[:window]
	}
	if len(meetings) == 0 {
		return models.HeadToHead{}
	}

	winsA := 0
	for _, g := range meetings {
		if won, _, _ := g.Result(teamA); won {
			winsA++
		}
	}
	n := len(meetings)
	return models.HeadToHead{
		TeamAWinPct: float64(winsA) / float64(n),
		TeamBWinPct: float64(n-winsA) / float64(n),
		GamesPlayed: n,
	}
}
