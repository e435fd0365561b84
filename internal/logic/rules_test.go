package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/betbot/analytics-api/internal/models"
)

func analytics(name string, pct float64) models.TeamAnalytics {
	return models.TeamAnalytics{Name: name, WinningPercentage: pct}
}

func TestPredictByRules_HomeDominant(t *testing.T) {
	home := analytics("Home", 0.70)
	home.RollingWinPct, home.OffensiveRating, home.DefensiveRating, home.DaysRest = fptr(0.80), fptr(0.75), fptr(0.70), iptr(2)
	away := analytics("Away", 0.40)
	away.RollingWinPct, away.OffensiveRating, away.DefensiveRating, away.DaysRest = fptr(0.30), fptr(0.50), fptr(0.40), iptr(1)

	p := PredictByRules(home, away)
	assert.Equal(t, models.SideHome, p.Winner)
	assert.Equal(t, models.ConfidenceHigh, p.Confidence)
	assert.Greater(t, p.Probability, 0.55)
	assert.Equal(t, 0.7, p.Probability)
	assert.NotContains(t, p.KeyFactors, FactorRest, "a one day gap is not a rest edge")
	for _, key := range []string{FactorSeasonRecord, FactorMomentum, FactorOffense, FactorDefense} {
		assert.Contains(t, p.KeyFactors, key)
	}
	assert.Equal(t, "Home", p.WinnerName("Home", "Away"))
}

func TestPredictByRules_NoComparisons(t *testing.T) {
	tests := []struct {
		name       string
		home, away float64
		winner     models.Side
		prob       float64
	}{
		{"equal records favour home", 0.5, 0.5, models.SideHome, 0.5},
		{"better home record", 0.6, 0.5, models.SideHome, 0.55},
		{"better away record", 0.45, 0.52, models.SideAway, 0.55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PredictByRules(analytics("H", tt.home), analytics("A", tt.away))
			assert.Equal(t, tt.winner, p.Winner)
			assert.Equal(t, tt.prob, p.Probability)
			assert.Equal(t, models.ConfidenceLow, p.Confidence)
			assert.Contains(t, p.KeyFactors, FactorSeasonRecord)
		})
	}
}

func TestPredictByRules_Scoring(t *testing.T) {
	tests := []struct {
		name       string
		home, away models.TeamAnalytics
		winner     models.Side
		prob       float64
		confidence string
	}{
		{
			// away takes momentum and rest, home only the season point: 1/3
			name: "away edge",
			home: models.TeamAnalytics{Name: "H", WinningPercentage: 0.5, RollingWinPct: fptr(0.3), DaysRest: iptr(0)},
			away: models.TeamAnalytics{Name: "A", WinningPercentage: 0.5, RollingWinPct: fptr(0.6), DaysRest: iptr(3)},
			winner: models.SideAway, prob: 0.6, confidence: models.ConfidenceHigh,
		},
		{
			// home takes season record, away takes offense: 1/2
			name: "split",
			home: models.TeamAnalytics{Name: "H", WinningPercentage: 0.6, OffensiveRating: fptr(0.30)},
			away: models.TeamAnalytics{Name: "A", WinningPercentage: 0.5, OffensiveRating: fptr(0.32)},
			winner: models.SideHome, prob: 0.52, confidence: models.ConfidenceMedium,
		},
		{
			// away takes season, momentum and offense; home takes defense: 1/4
			name: "away strong",
			home: models.TeamAnalytics{Name: "H", WinningPercentage: 0.4, RollingWinPct: fptr(0.2), OffensiveRating: fptr(0.2), DefensiveRating: fptr(0.6)},
			away: models.TeamAnalytics{Name: "A", WinningPercentage: 0.6, RollingWinPct: fptr(0.8), OffensiveRating: fptr(0.4), DefensiveRating: fptr(0.5)},
			winner: models.SideAway, prob: 0.625, confidence: models.ConfidenceHigh,
		},
		{
			// a defined zero still competes
			name: "zero rolling pct compared",
			home: models.TeamAnalytics{Name: "H", WinningPercentage: 0.4, RollingWinPct: fptr(0)},
			away: models.TeamAnalytics{Name: "A", WinningPercentage: 0.6, RollingWinPct: fptr(0.1)},
			winner: models.SideAway, prob: 0.7, confidence: models.ConfidenceHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PredictByRules(tt.home, tt.away)
			assert.Equal(t, tt.winner, p.Winner)
			assert.InDelta(t, tt.prob, p.Probability, 1e-9)
			assert.Equal(t, tt.confidence, p.Confidence)
			assert.GreaterOrEqual(t, p.Probability, 0.45)
			assert.LessOrEqual(t, p.Probability, 0.75)
		})
	}
}

func TestPredictByRules_LevelComparisonsGoAway(t *testing.T) {
	home := models.TeamAnalytics{Name: "H", WinningPercentage: 0.40, RollingWinPct: fptr(0.5), OffensiveRating: fptr(0.3), DefensiveRating: fptr(0.6)}
	away := models.TeamAnalytics{Name: "A", WinningPercentage: 0.60, RollingWinPct: fptr(0.5), OffensiveRating: fptr(0.3), DefensiveRating: fptr(0.6)}

	p := PredictByRules(home, away)
	assert.Equal(t, models.SideAway, p.Winner)
	assert.Equal(t, 0.7, p.Probability)
	assert.Equal(t, models.ConfidenceHigh, p.Confidence)
	assert.Equal(t, "H and A are level on recent form", p.KeyFactors[FactorMomentum])
	assert.Equal(t, "H and A are level on offense", p.KeyFactors[FactorOffense])
	assert.Equal(t, "H and A are level on defense", p.KeyFactors[FactorDefense])
	for _, text := range p.KeyFactors {
		assert.NotContains(t, text, "H has")
	}
}

func TestPredictByRules_LevelComparisonWithHomeRecord(t *testing.T) {
	// season to home, level offense to away: 1/2
	home := models.TeamAnalytics{Name: "H", WinningPercentage: 0.6, OffensiveRating: fptr(0.31)}
	away := models.TeamAnalytics{Name: "A", WinningPercentage: 0.5, OffensiveRating: fptr(0.31)}

	p := PredictByRules(home, away)
	assert.Equal(t, models.SideHome, p.Winner)
	assert.Equal(t, 0.52, p.Probability)
	assert.Equal(t, models.ConfidenceMedium, p.Confidence)
}

func TestPredictByRules_RestFactorText(t *testing.T) {
	home := models.TeamAnalytics{Name: "Cubs", WinningPercentage: 0.5, DaysRest: iptr(4)}
	away := models.TeamAnalytics{Name: "Mets", WinningPercentage: 0.5, DaysRest: iptr(1)}

	p := PredictByRules(home, away)
	assert.Equal(t, "Cubs has rest advantage (4 vs 1 days)", p.KeyFactors[FactorRest])
	assert.Equal(t, models.SideHome, p.Winner)
}

func TestBasicPrediction(t *testing.T) {
	strong := &models.Team{Name: "A", WinningPercentage: 0.6}
	weak := &models.Team{Name: "B", WinningPercentage: 0.4}

	tests := []struct {
		name       string
		home, away *models.Team
		winner     models.Side
		prob       float64
	}{
		{"home missing", nil, strong, models.SideHome, 0.5},
		{"both missing", nil, nil, models.SideHome, 0.5},
		{"home better", strong, weak, models.SideHome, 0.55},
		{"away better", weak, strong, models.SideAway, 0.55},
		{"equal", strong, strong, models.SideHome, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BasicPrediction(tt.home, tt.away)
			assert.Equal(t, tt.winner, p.Winner)
			assert.Equal(t, tt.prob, p.Probability)
			assert.Equal(t, models.ConfidenceLow, p.Confidence)
		})
	}
}
