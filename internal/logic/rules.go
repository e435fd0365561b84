package logic

import (
	"fmt"
	"math"

	"github.com/betbot/analytics-api/internal/models"
)

const (
	minRuleProbability = 0.45
	maxRuleProbability = 0.75
	// restThresholdDays is the rest gap needed before rest counts as an edge
	restThresholdDays = 2
)

// Key factor names
const (
	FactorSeasonRecord = "season_record"
	FactorMomentum     = "momentum"
	FactorOffense      = "offense"
	FactorDefense      = "defense"
	FactorRest         = "rest"
)

var levelAspect = map[string]string{
	FactorMomentum: "recent form",
	FactorOffense:  "offense",
	FactorDefense:  "defense",
}

// RulePrediction is the outcome of the rule-based predictor
type RulePrediction struct {
	Winner      models.Side
	Probability float64
	Confidence  string
	KeyFactors  map[string]string
}

// WinnerName resolves the predicted side to a team name
func (p RulePrediction) WinnerName(home, away string) string {
	if p.Winner == models.SideAway {
		return away
	}
	return home
}

// PredictByRules compares the two sides head to head on season record,
// recent form, offense, defense and rest. Season record always counts and a
// tie goes to the home side. The other comparisons fire only when both sides
// have a value and a tie there goes to the away side. When none of them fire
// the season record alone decides.
func PredictByRules(home, away models.TeamAnalytics) RulePrediction {
	factors := make(map[string]string)
	homePoints, fired := 0, 0

	compare := func(key string, h, a *float64, aspect string) {
		if h == nil || a == nil {
			return
		}
		fired++
		switch {
		case *h > *a:
			homePoints++
			factors[key] = fmt.Sprintf("%s has %s", home.Name, aspect)
		case *a > *h:
			factors[key] = fmt.Sprintf("%s has %s", away.Name, aspect)
		default:
			factors[key] = fmt.Sprintf("%s and %s are level on %s", home.Name, away.Name, levelAspect[key])
		}
	}

	compare(FactorMomentum, home.RollingWinPct, away.RollingWinPct, "better recent form")
	compare(FactorOffense, home.OffensiveRating, away.OffensiveRating, "stronger offense")
	compare(FactorDefense, home.DefensiveRating, away.DefensiveRating, "stronger defense")

	if home.DaysRest != nil && away.DaysRest != nil {
		diff := *home.DaysRest - *away.DaysRest
		switch {
		case diff >= restThresholdDays:
			fired++
			homePoints++
			factors[FactorRest] = fmt.Sprintf("%s has rest advantage (%d vs %d days)", home.Name, *home.DaysRest, *away.DaysRest)
		case diff <= -restThresholdDays:
			fired++
			factors[FactorRest] = fmt.Sprintf("%s has rest advantage (%d vs %d days)", away.Name, *away.DaysRest, *home.DaysRest)
		}
	}

	switch {
	case home.WinningPercentage > away.WinningPercentage:
		factors[FactorSeasonRecord] = fmt.Sprintf("%s has better season record", home.Name)
	case away.WinningPercentage > home.WinningPercentage:
		factors[FactorSeasonRecord] = fmt.Sprintf("%s has better season record", away.Name)
	default:
		factors[FactorSeasonRecord] = fmt.Sprintf("%s and %s have identical season records", home.Name, away.Name)
	}

	if fired == 0 {
		p := seasonOnly(home.WinningPercentage, away.WinningPercentage)
		p.KeyFactors = factors
		return p
	}

	if home.WinningPercentage >= away.WinningPercentage {
		homePoints++
	}
	total := fired + 1
	homeScore := float64(homePoints) / float64(total)

	p := RulePrediction{KeyFactors: factors}
	switch {
	case homeScore > 0.6:
		p.Winner = models.SideHome
		p.Probability = 0.55 + (homeScore-0.5)*0.3
		p.Confidence = models.ConfidenceHigh
	case homeScore < 0.4:
		p.Winner = models.SideAway
		p.Probability = 0.55 + (0.5-homeScore)*0.3
		p.Confidence = models.ConfidenceHigh
	default:
		p.Winner = models.SideHome
		if homeScore < 0.5 {
			p.Winner = models.SideAway
		}
		p.Probability = 0.52
		p.Confidence = models.ConfidenceMedium
	}
	p.Probability = round3(clamp(p.Probability, minRuleProbability, maxRuleProbability))
	return p
}

// BasicPrediction is the last-resort tier used when team reference data is
// missing. Either team may be nil.
func BasicPrediction(home, away *models.Team) RulePrediction {
	if home == nil || away == nil {
		return RulePrediction{
			Winner:      models.SideHome,
			Probability: 0.5,
			Confidence:  models.ConfidenceLow,
		}
	}
	return seasonOnly(home.WinningPercentage, away.WinningPercentage)
}

func seasonOnly(homePct, awayPct float64) RulePrediction {
	p := RulePrediction{Confidence: models.ConfidenceLow}
	switch {
	case homePct > awayPct:
		p.Winner, p.Probability = models.SideHome, 0.55
	case awayPct > homePct:
		p.Winner, p.Probability = models.SideAway, 0.55
	default:
		p.Winner, p.Probability = models.SideHome, 0.5
	}
	return p
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
