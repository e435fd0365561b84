package logic

import (
	"fmt"
	"time"

	"github.com/betbot/analytics-api/internal/models"
)

var seasonStart = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

func dayN(n int) time.Time {
	return seasonStart.AddDate(0, 0, n)
}

func final(id string, date time.Time, home, away, homeScore, awayScore int) models.GameRecord {
	return models.GameRecord{
		GameID:     id,
		Date:       date,
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		Status:     models.StatusFinal,
	}
}

// series plays n daily games between home and away starting on day first;
// homeWins decides the result of game i.
func series(prefix string, first, n, home, away int, homeWins func(i int) bool) []models.GameRecord {
	games := make([]models.GameRecord, 0, n)
	for i := 0; i < n; i++ {
		hs, as := 3, 5
		if homeWins(i) {
			hs, as = 5, 3
		}
		games = append(games, final(fmt.Sprintf("%s-%d", prefix, i), dayN(first+i), home, away, hs, as))
	}
	return games
}

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }
