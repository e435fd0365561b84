// Package worker runs background jobs outside the request path: batched
// prediction-audit writes to ClickHouse and the scheduled trend refresh.
package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/betbot/analytics-api/internal/models"
)

// Prometheus metrics
var (
	auditsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betbot_audit_enqueued_total",
		Help: "Total number of prediction audit records enqueued",
	})

	auditsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betbot_audit_written_total",
		Help: "Total number of prediction audit records written to ClickHouse",
	})

	auditsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betbot_audit_failed_total",
		Help: "Total number of prediction audit records that failed to write",
	})

	auditsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betbot_audit_dropped_total",
		Help: "Total number of audit records dropped because the queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "betbot_audit_queue_depth",
		Help: "Current depth of the audit queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "betbot_audit_batch_insert_duration_seconds",
		Help:    "Duration of audit batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

const insertAudit = `
	INSERT INTO betbot.prediction_audit (
		id, game_id, created_at, home_team, away_team, predicted_winner,
		win_probability, confidence_level, prediction_source, model_name,
		feature_names, feature_values, defaulted
	)
`

// PoolConfig configures the audit pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool buffers prediction audit records and writes them to ClickHouse in
// batches. Enqueue never blocks; records are dropped when the queue is full.
type Pool struct {
	config   PoolConfig
	jobQueue chan *models.PredictionAudit
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan *models.PredictionAudit, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Audit pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop drains the queue and waits for in-flight batches
func (p *Pool) Stop() {
	p.logger.Info("Stopping audit pool...")
	close(p.jobQueue)
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Audit pool stopped")
}

// Enqueue adds a record without blocking and reports whether it was accepted
func (p *Pool) Enqueue(rec *models.PredictionAudit) (ok bool) {
	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue audit record (pool stopped)", "error", r)
			ok = false
		}
	}()

	select {
	case p.jobQueue <- rec:
		auditsEnqueued.Inc()
		return true
	default:
		auditsDropped.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker writes records from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]*models.PredictionAudit, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Audit batch failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			auditsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Audit batch written", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			auditsWritten.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case rec, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rec)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

func (p *Pool) processBatch(batch []*models.PredictionAudit) error {
	if len(batch) == 0 {
		return nil
	}

	// the pool context is cancelled on shutdown but the final flush must still land
	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, insertAudit)
	if err != nil {
		return err
	}

	for _, rec := range batch {
		if err := chBatch.Append(auditRow(rec)...); err != nil {
			p.logger.Warnw("Failed to append audit record", "error", err, "gameID", rec.GameID)
			continue
		}
	}

	return chBatch.Send()
}

// auditRow flattens a record into insert column order. Features are stored
// as parallel name/value arrays sorted by name.
func auditRow(rec *models.PredictionAudit) []any {
	names := make([]string, 0, len(rec.Features))
	for name := range rec.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = rec.Features[name]
	}

	defaulted := rec.Defaulted
	if defaulted == nil {
		defaulted = []string{}
	}

	return []any{
		rec.ID,
		rec.GameID,
		rec.CreatedAt,
		rec.HomeTeam,
		rec.AwayTeam,
		rec.PredictedWinner,
		rec.WinProbability,
		rec.ConfidenceLevel,
		rec.PredictionSource,
		rec.ModelName,
		names,
		values,
		defaulted,
	}
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
