package gates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adjoint_gate_cache_hits_total",
		Help: "Total number of device gate-cache lookups that found an entry",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adjoint_gate_cache_misses_total",
		Help: "Total number of device gate-cache lookups that failed",
	})

	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "adjoint_gate_cache_entries",
		Help: "Current number of device-resident gate matrices",
	})

	cacheAllocBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "adjoint_gate_cache_alloc_bytes",
		Help: "Cumulative bytes uploaded to devices for gate matrices",
	})
)
