package logic

import (
	"math"

	"github.com/betbot/analytics-api/internal/models"
)

// Momentum blend weights
const (
	momentumRollingWeight = 0.5
	momentumOffenseWeight = 0.25
	momentumDefenseWeight = 0.25
)

// OffensiveRating blends batting average, OBP and SLG (0.3/0.4/0.3).
// Returns nil when no snapshot exists.
func OffensiveRating(s *models.OffensiveStats) *float64 {
	if s == nil {
		return nil
	}
	r := round3(s.BattingAverage*0.3 + s.OnBasePercentage*0.4 + s.SluggingPercentage*0.3)
	return &r
}

// DefensiveRating maps ERA and WHIP onto a higher-is-better scale, each
// floored at zero, and blends them 0.6/0.4.
func DefensiveRating(s *models.DefensiveStats) *float64 {
	if s == nil {
		return nil
	}
	era := math.Max(0, 6.0-s.ERA) / 6.0
	whip := math.Max(0, 2.0-s.WHIP) / 2.0
	r := round3(era*0.6 + whip*0.4)
	return &r
}

// MomentumScore is the weighted mean of whichever components are present
func MomentumScore(rollingWinPct, offense, defense *float64) *float64 {
	var sum, weights float64
	if rollingWinPct != nil {
		sum += *rollingWinPct * momentumRollingWeight
		weights += momentumRollingWeight
	}
	if offense != nil {
		sum += *offense * momentumOffenseWeight
		weights += momentumOffenseWeight
	}
	if defense != nil {
		sum += *defense * momentumDefenseWeight
		weights += momentumDefenseWeight
	}
	if weights == 0 {
		return nil
	}
	m := round3(sum / weights)
	return &m
}

// BuildTeamAnalytics bundles one side's metrics for the rule-based predictor
func BuildTeamAnalytics(team *models.Team, in SideInputs) models.TeamAnalytics {
	a := models.TeamAnalytics{
		Name:              team.Name,
		WinningPercentage: team.WinningPercentage,
		OffensiveRating:   OffensiveRating(in.Offense),
		DefensiveRating:   DefensiveRating(in.Defense),
	}
	if in.Rolling != nil {
		if in.Rolling.RollingWinPct != nil {
			pct := round3(*in.Rolling.RollingWinPct)
			a.RollingWinPct = &pct
		}
		a.DaysRest = in.Rolling.DaysSinceLastGame
	}
	a.MomentumScore = MomentumScore(a.RollingWinPct, a.OffensiveRating, a.DefensiveRating)
	return a
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
