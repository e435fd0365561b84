package models

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrMissingFeature = errors.New("missing required feature")
	ErrInvalidFeature = errors.New("invalid feature value")
)

// FeatureNames is the model input contract. Names and order must match the
// feature list recorded in a model's metadata sidecar.
var FeatureNames = []string{
	"home_rolling_win_pct",
	"away_rolling_win_pct",
	"home_rolling_runs_scored",
	"away_rolling_runs_scored",
	"home_rolling_runs_allowed",
	"away_rolling_runs_allowed",
	"home_days_rest",
	"away_days_rest",
	"home_batting_avg",
	"away_batting_avg",
	"home_obp",
	"away_obp",
	"home_slg",
	"away_slg",
	"home_era",
	"away_era",
	"home_whip",
	"away_whip",
	"home_strikeouts",
	"away_strikeouts",
	"h2h_home_win_pct",
	"h2h_away_win_pct",
	"h2h_games_played",
	"month",
	"day_of_week",
	"is_weekend",
}

// FeatureVector is the fixed-shape input of the learned model for one matchup
type FeatureVector struct {
	HomeRollingWinPct      float64 `json:"home_rolling_win_pct"`
	AwayRollingWinPct      float64 `json:"away_rolling_win_pct"`
	HomeRollingRunsScored  float64 `json:"home_rolling_runs_scored"`
	AwayRollingRunsScored  float64 `json:"away_rolling_runs_scored"`
	HomeRollingRunsAllowed float64 `json:"home_rolling_runs_allowed"`
	AwayRollingRunsAllowed float64 `json:"away_rolling_runs_allowed"`
	HomeDaysRest           float64 `json:"home_days_rest"`
	AwayDaysRest           float64 `json:"away_days_rest"`
	HomeBattingAvg         float64 `json:"home_batting_avg"`
	AwayBattingAvg         float64 `json:"away_batting_avg"`
	HomeOBP                float64 `json:"home_obp"`
	AwayOBP                float64 `json:"away_obp"`
	HomeSLG                float64 `json:"home_slg"`
	AwaySLG                float64 `json:"away_slg"`
	HomeERA                float64 `json:"home_era"`
	AwayERA                float64 `json:"away_era"`
	HomeWHIP               float64 `json:"home_whip"`
	AwayWHIP               float64 `json:"away_whip"`
	HomeStrikeouts         float64 `json:"home_strikeouts"`
	AwayStrikeouts         float64 `json:"away_strikeouts"`
	H2HHomeWinPct          float64 `json:"h2h_home_win_pct"`
	H2HAwayWinPct          float64 `json:"h2h_away_win_pct"`
	H2HGamesPlayed         float64 `json:"h2h_games_played"`
	Month                  float64 `json:"month"`
	DayOfWeek              float64 `json:"day_of_week"`
	IsWeekend              float64 `json:"is_weekend"`
}

// fields maps every feature name to its slot; the order follows FeatureNames.
func (v *FeatureVector) fields() []*float64 {
	return []*float64{
		&v.HomeRollingWinPct, &v.AwayRollingWinPct,
		&v.HomeRollingRunsScored, &v.AwayRollingRunsScored,
		&v.HomeRollingRunsAllowed, &v.AwayRollingRunsAllowed,
		&v.HomeDaysRest, &v.AwayDaysRest,
		&v.HomeBattingAvg, &v.AwayBattingAvg,
		&v.HomeOBP, &v.AwayOBP,
		&v.HomeSLG, &v.AwaySLG,
		&v.HomeERA, &v.AwayERA,
		&v.HomeWHIP, &v.AwayWHIP,
		&v.HomeStrikeouts, &v.AwayStrikeouts,
		&v.H2HHomeWinPct, &v.H2HAwayWinPct, &v.H2HGamesPlayed,
		&v.Month, &v.DayOfWeek, &v.IsWeekend,
	}
}

// Values returns the features in FeatureNames order
func (v FeatureVector) Values() []float64 {
	ptrs := v.fields()
	out := make([]float64, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out
}

// Map returns the features keyed by name
func (v FeatureVector) Map() map[string]float64 {
	values := v.Values()
	out := make(map[string]float64, len(values))
	for i, name := range FeatureNames {
		out[name] = values[i]
	}
	return out
}

// Validate rejects vectors carrying NaN or infinite values
func (v FeatureVector) Validate() error {
	for i, x := range v.Values() {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidFeature, FeatureNames[i], x)
		}
	}
	return nil
}

// FeatureVectorFromMap builds a vector from named values. Every name in
// FeatureNames must be present; extra keys are ignored.
func FeatureVectorFromMap(m map[string]float64) (FeatureVector, error) {
	var v FeatureVector
	ptrs := v.fields()
	var missing []string
	for i, name := range FeatureNames {
		x, ok := m[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		*ptrs[i] = x
	}
	if len(missing) > 0 {
		return FeatureVector{}, fmt.Errorf("%w: %v", ErrMissingFeature, missing)
	}
	if err := v.Validate(); err != nil {
		return FeatureVector{}, err
	}
	return v, nil
}

// FeatureSet is an assembled vector plus the names that fell back to defaults
type FeatureSet struct {
	Vector    FeatureVector `json:"features"`
	Defaulted []string      `json:"defaulted,omitempty"`
}
