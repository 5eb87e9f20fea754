package device

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	poolAcquires = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adjoint_device_pool_acquires_total",
		Help: "Total number of device slot acquisitions",
	})

	devicesInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "adjoint_device_pool_in_use",
		Help: "Current number of device slots held by workers",
	})
)
