package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "date_selections_total",
	Help: "Images selected for classification, by source",
}, []string{"source"})

var CompressionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "date_compression_seconds",
	Help:    "Time spent decoding, resizing and re-encoding an image",
	Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
})

var PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "date_predictions_total",
	Help: "Submissions by outcome",
}, []string{"outcome"})

var PredictionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "date_prediction_seconds",
	Help:    "Round trip to the prediction service",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
})

const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)
