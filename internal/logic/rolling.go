package logic

import (
	"sort"
	"time"

	"github.com/betbot/analytics-api/internal/models"
)

// DefaultRollingWindow is the number of trailing games in a rolling window
const DefaultRollingWindow = 10

// RollingEngine derives trailing-window form from a game log
type RollingEngine struct {
	Window int
	// Now anchors DaysSinceLastGame; defaults to time.Now
	Now func() time.Time
}

func NewRollingEngine(window int) RollingEngine {
	return RollingEngine{Window: window}
}

func (e RollingEngine) window() int {
	if e.Window <= 0 {
		return DefaultRollingWindow
	}
	return e.Window
}

func (e RollingEngine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// teamWindow is the ring of a team's last N results
type teamWindow struct {
	wins     []bool
	scored   []int
	allowed  []int
	lastGame time.Time
	played   int
}

func (w *teamWindow) push(size int, won bool, scored, allowed int) {
	w.wins = append(w.wins, won)
	w.scored = append(w.scored, scored)
	w.allowed = append(w.allowed, allowed)
	if len(w.wins) > size {
		w.wins = w.wins[1:]
		w.scored = w.scored[1:]
		w.allowed = w.allowed[1:]
	}
	w.played++
}

// Compute returns, per team, one RollingStat for each of its final games in
// chronological order. Windowed values include the game itself and stay nil
// until the team has played a full window. Games with equal dates keep their
// input order.
func (e RollingEngine) Compute(games []models.GameRecord) map[int][]models.RollingStat {
	final := make([]models.GameRecord, 0, len(games))
	for _, g := range games {
		if g.IsFinal() {
			final = append(final, g)
		}
	}
	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Date.Before(final[j].Date)
	})

	size := e.window()
	windows := make(map[int]*teamWindow)
	out := make(map[int][]models.RollingStat)

	for _, g := range final {
		for _, teamID := range [2]int{g.HomeTeamID, g.AwayTeamID} {
			w, ok := windows[teamID]
			if !ok {
				w = &teamWindow{}
				windows[teamID] = w
			}

			stat := models.RollingStat{
				TeamID: teamID,
				GameID: g.GameID,
				Date:   g.Date,
			}
			if w.played > 0 {
				rest := daysBetween(w.lastGame, g.Date)
				stat.DaysRest = &rest
			}

			won, scored, allowed := g.Result(teamID)
			w.push(size, won, scored, allowed)
			w.lastGame = g.Date

			if len(w.wins) == size {
				wins, runsFor, runsAgainst := 0, 0, 0
				for i := range w.wins {
					if w.wins[i] {
						wins++
					}
					runsFor += w.scored[i]
					runsAgainst += w.allowed[i]
				}
				pct := float64(wins) / float64(size)
				avgFor := float64(runsFor) / float64(size)
				avgAgainst := float64(runsAgainst) / float64(size)
				stat.RollingWinPct = &pct
				stat.RollingRunsScored = &avgFor
				stat.RollingRunsAllowed = &avgAgainst
				stat.Streak = &wins
			}

			out[teamID] = append(out[teamID], stat)
		}
	}

	now := e.now()
	for teamID := range out {
		stats := out[teamID]
		last := &stats[len(stats)-1]
		since := daysBetween(last.Date, now)
		last.DaysSinceLastGame = &since
	}

	return out
}

// Latest returns the newest record dated strictly before the cutoff, or nil
func Latest(stats []models.RollingStat, before time.Time) *models.RollingStat {
	for i := len(stats) - 1; i >= 0; i-- {
		if playedBefore(stats[i].Date, before) {
			s := stats[i]
			return &s
		}
	}
	return nil
}

// AsOf returns a team's form going into a game at the given time. Only games
// played on earlier days count; DaysSinceLastGame is measured to at.
func (e RollingEngine) AsOf(games []models.GameRecord, teamID int, at time.Time) *models.RollingStat {
	prior := make([]models.GameRecord, 0, len(games))
	for _, g := range games {
		if g.Involves(teamID) && playedBefore(g.Date, at) {
			prior = append(prior, g)
		}
	}

	anchored := e
	anchored.Now = func() time.Time { return at }
	return Latest(anchored.Compute(prior)[teamID], at)
}

// day truncates t to its calendar date
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(day(to).Sub(day(from)).Hours() / 24)
}

// playedBefore reports whether a game dated played falls on a day before cutoff
func playedBefore(played, cutoff time.Time) bool {
	return day(played).Before(day(cutoff))
}
