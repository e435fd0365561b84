package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	featureDefaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betbot_feature_defaults_total",
		Help: "Features substituted with a default value during assembly",
	}, []string{"feature"})

	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betbot_predictions_total",
		Help: "Predictions served by provenance",
	}, []string{"source"})

	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "betbot_prediction_duration_seconds",
		Help:    "Time to produce an uncached prediction",
		Buckets: prometheus.DefBuckets,
	})

	predictionCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betbot_prediction_cache_total",
		Help: "Prediction cache lookups by result",
	}, []string{"result"})

	trendRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betbot_trend_refresh_total",
		Help: "Trend board refreshes by status",
	}, []string{"status"})
)
