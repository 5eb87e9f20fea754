package adjoint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adjoint_jacobian_evaluations_total",
		Help: "Total number of completed Jacobian evaluations",
	})

	evalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adjoint_jacobian_duration_seconds",
		Help:    "Wall time of single-device Jacobian evaluations",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
)
