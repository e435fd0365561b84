// Command trainer fits the game-outcome classifier from the historical game
// log and writes the model artifact and metadata sidecar used by the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/betbot/analytics-api/internal/config"
	"github.com/betbot/analytics-api/internal/logic"
	"github.com/betbot/analytics-api/internal/ml"
	"github.com/betbot/analytics-api/internal/store"
)

type options struct {
	postgresURL   string
	start, end    time.Time
	historyStart  time.Time
	modelDir      string
	modelName     string
	modelVersion  string
	testFraction  float64
	rollingWindow int
	h2hWindow     int
	logistic      ml.LogisticConfig
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainer: %v\n", err)
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := train(ctx, opts, logger); err != nil {
		logger.Sugar().Fatalw("Training failed", "error", err)
	}
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	defaults := ml.DefaultLogisticConfig()

	var o options
	var start, end, history string
	fs.StringVar(&o.postgresURL, "postgres", config.GetEnv("POSTGRES_URL", ""), "Postgres connection URL")
	fs.StringVar(&start, "start", "", "first game date to train on (YYYY-MM-DD)")
	fs.StringVar(&end, "end", "", "last game date to train on (YYYY-MM-DD)")
	fs.StringVar(&history, "history-start", "", "earliest game loaded for rolling statistics, defaults to -start")
	fs.StringVar(&o.modelDir, "model-dir", config.GetEnv("MODEL_DIR", config.DefaultModelDir), "directory for the model artifact")
	fs.StringVar(&o.modelName, "model-name", config.GetEnv("MODEL_NAME", config.DefaultModelName), "model name")
	fs.StringVar(&o.modelVersion, "model-version", config.GetEnv("MODEL_VERSION", config.DefaultModelVersion), "model version")
	fs.Float64Var(&o.testFraction, "test-fraction", ml.DefaultTestFraction, "share of the most recent games held out")
	fs.IntVar(&o.rollingWindow, "rolling-window", logic.DefaultRollingWindow, "rolling window in games")
	fs.IntVar(&o.h2hWindow, "h2h-window", logic.DefaultHeadToHeadWindow, "head-to-head window in games")
	fs.IntVar(&o.logistic.Iterations, "iterations", defaults.Iterations, "gradient descent iterations")
	fs.Float64Var(&o.logistic.LearningRate, "learning-rate", defaults.LearningRate, "gradient descent step size")
	fs.Float64Var(&o.logistic.L2, "l2", defaults.L2, "L2 penalty")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.postgresURL == "" {
		return o, errors.New("-postgres or POSTGRES_URL is required")
	}
	var err error
	if o.start, err = time.Parse("2006-01-02", start); err != nil {
		return o, fmt.Errorf("invalid -start: %w", err)
	}
	if o.end, err = time.Parse("2006-01-02", end); err != nil {
		return o, fmt.Errorf("invalid -end: %w", err)
	}
	if o.end.Before(o.start) {
		return o, errors.New("-end is before -start")
	}
	o.historyStart = o.start
	if history != "" {
		if o.historyStart, err = time.Parse("2006-01-02", history); err != nil {
			return o, fmt.Errorf("invalid -history-start: %w", err)
		}
		if o.historyStart.After(o.start) {
			return o, errors.New("-history-start is after -start")
		}
	}
	return o, nil
}

func train(ctx context.Context, o options, logger *zap.Logger) error {
	sugar := logger.Sugar()

	pg, err := pgxpool.New(ctx, o.postgresURL)
	if err != nil {
		return fmt.Errorf("postgres pool: %w", err)
	}
	defer pg.Close()

	history, err := store.NewPostgres(pg).LoadHistory(ctx, o.historyStart, o.end)
	if err != nil {
		return err
	}
	sugar.Infow("Loaded game history", "games", len(history.Games()), "from", o.historyStart, "to", o.end)

	assembler := logic.NewFeatureAssembler(history, logic.NewRollingEngine(o.rollingWindow), o.h2hWindow, logger)
	rows, err := logic.BuildTrainingSet(ctx, history, assembler, o.start, o.end)
	if err != nil {
		return err
	}
	sugar.Infow("Built training set", "rows", len(rows))

	result, err := ml.TrainLogistic(logic.Examples(rows), o.testFraction, o.logistic, o.modelVersion, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(o.modelDir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	modelPath, metadataPath := ml.ArtifactPaths(o.modelDir, o.modelName, o.modelVersion)
	result.Metadata.ModelFilename = filepath.Base(modelPath)
	if err := ml.SaveArtifact(modelPath, result.Model); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := ml.SaveMetadata(metadataPath, result.Metadata); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	m := result.Metadata.Metrics
	sugar.Infow("Model trained",
		"path", modelPath,
		"train", m.TrainSize,
		"test", m.TestSize,
		"accuracy", m.Accuracy,
		"precision", m.Precision,
		"recall", m.Recall,
		"f1", m.F1,
		"rocAUC", m.ROCAUC,
	)
	return nil
}
