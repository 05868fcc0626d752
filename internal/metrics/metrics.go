// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "method", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"},
	)
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Predictions served, by class",
		}, []string{"class"},
	)
	ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "1 if the classifier was loaded at startup",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestCount, RequestDuration, Predictions, ModelLoaded)
}

// SetModelLoaded records the outcome of model loading.
func SetModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
		return
	}
	ModelLoaded.Set(0)
}
