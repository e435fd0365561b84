package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/betbot/analytics-api/internal/config"
	"github.com/betbot/analytics-api/internal/handlers"
	"github.com/betbot/analytics-api/internal/logic"
	"github.com/betbot/analytics-api/internal/ml"
	"github.com/betbot/analytics-api/internal/store"
	"github.com/betbot/analytics-api/internal/worker"
)

// trendCacheTTL exceeds the default refresh interval
const trendCacheTTL = 7 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := run(cfg, logger); err != nil {
		sugar.Fatalw("Server exited with error", "error", err)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("postgres pool: %w", err)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	sugar.Info("Connected to Postgres")

	// Redis
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	sugar.Info("Connected to Redis")

	// ClickHouse audit trail (optional)
	var (
		ch    driver.Conn
		pool  *worker.Pool
		audit logic.AuditSink
	)
	if cfg.ClickHouseURL != "" {
		chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
		if err != nil {
			return fmt.Errorf("invalid CLICKHOUSE_URL: %w", err)
		}
		if ch, err = clickhouse.Open(chOpts); err != nil {
			return fmt.Errorf("clickhouse open: %w", err)
		}
		defer ch.Close()
		if err := ch.Ping(ctx); err != nil {
			return fmt.Errorf("clickhouse ping: %w", err)
		}

		pool = worker.NewPool(worker.PoolConfig{
			WorkerCount:   cfg.WorkerCount,
			QueueSize:     cfg.QueueSize,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			ClickHouse:    ch,
			Logger:        logger,
		})
		pool.Start(ctx)
		defer pool.Stop()
		audit = pool
		sugar.Info("Prediction audit trail enabled")
	} else {
		sugar.Warn("CLICKHOUSE_URL not set, prediction audit trail disabled")
	}

	games := store.NewPostgres(pg)
	cache := store.NewRedisCache(rdb)
	rolling := logic.NewRollingEngine(cfg.RollingWindow)

	model := ml.NewService(ml.Config{
		Dir:           cfg.ModelDir,
		Name:          cfg.ModelName,
		Version:       cfg.ModelVersion,
		ModelType:     cfg.ModelType,
		MinConfidence: cfg.MLMinConfidence,
		Logger:        logger,
	})
	if !model.Load() {
		sugar.Warnw("Model not loaded, serving rule-based predictions", "model", model.ModelName())
	}

	prediction := logic.NewPredictionService(logic.PredictionConfig{
		Store:     games,
		Assembler: logic.NewFeatureAssembler(games, rolling, cfg.HeadToHeadWindow, logger),
		Model:     model,
		Cache:     cache,
		Audit:     audit,
		CacheTTL:  cfg.PredictionCacheTTL,
		Logger:    logger,
	})
	trends := logic.NewTrendService(logic.TrendConfig{
		Store:     games,
		Cache:     cache,
		Rolling:   rolling,
		TeamCount: cfg.TrendTeamCount,
		Lookback:  cfg.TrendLookback,
		CacheTTL:  trendCacheTTL,
		Logger:    logger,
	})

	scheduler, err := worker.NewScheduler(trends, cfg.TrendRefreshSchedule, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()
	go scheduler.RefreshTrends()

	hcfg := handlers.Config{
		Postgres:   pg,
		Redis:      rdb,
		Logger:     logger,
		Prediction: prediction,
		Trends:     trends,
		Model:      model,
	}
	if pool != nil {
		hcfg.AuditQueue = pool
		hcfg.ClickHouse = ch
	}
	h := handlers.New(hcfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Handle("/metrics", promhttp.Handler())
	h.Register(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("HTTP server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
