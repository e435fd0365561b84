package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/betbot/analytics-api/internal/ml"
	"github.com/betbot/analytics-api/internal/models"
)

// MinTrainingGames is the smallest game log a model is trained on
const MinTrainingGames = 100

// TrainingRow is one historical game with the features known before it
type TrainingRow struct {
	GameID   string
	Date     time.Time
	Features models.FeatureVector
	HomeWon  bool
}

// BuildTrainingSet assembles one row per decisive final game dated within
// [from, to], using the same feature assembly as live predictions. Rows come
// back oldest first.
func BuildTrainingSet(ctx context.Context, history *MemoryHistory, assembler *FeatureAssembler, from, to time.Time) ([]TrainingRow, error) {
	var rows []TrainingRow
	for _, g := range history.Games() {
		if g.HomeScore == g.AwayScore {
			continue
		}
		if day(g.Date).Before(day(from)) || day(g.Date).After(day(to)) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in, err := assembler.Load(ctx, g.HomeTeamID, g.AwayTeamID, g.Date)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", g.GameID, err)
		}
		rows = append(rows, TrainingRow{
			GameID:   g.GameID,
			Date:     g.Date,
			Features: BuildFeatureSet(in).Vector,
			HomeWon:  g.HomeScore > g.AwayScore,
		})
	}

	if len(rows) < MinTrainingGames {
		return nil, fmt.Errorf("%w: %d games, need %d", ErrInsufficientHistory, len(rows), MinTrainingGames)
	}
	return rows, nil
}

// Examples converts rows into classifier inputs in feature order
func Examples(rows []TrainingRow) []ml.Example {
	out := make([]ml.Example, len(rows))
	for i, r := range rows {
		out[i] = ml.Example{Features: r.Features.Values(), HomeWon: r.HomeWon}
	}
	return out
}
