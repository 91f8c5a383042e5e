package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess      = "success"
	outcomeFailed       = "failed"
	outcomeInvalid      = "invalid"
	outcomeUnconfigured = "unconfigured"
	outcomeError        = "error"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "consultation",
		Subsystem: "dispatch",
		Name:      "submissions_total",
		Help:      "Consultation submissions broken down by outcome.",
	}, []string{"outcome"})

	dispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "consultation",
		Subsystem: "dispatch",
		Name:      "webhook_duration_seconds",
		Help:      "Latency of the outbound webhook call.",
		Buckets: []float64{
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10, 30,
		},
	})
)
