package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_backend_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"path", "status"},
	)

	VerificationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_backend_verifications_total",
			Help: "Payment verifications by resulting status.",
		},
		[]string{"status"},
	)

	SweepCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_backend_sweeps_total",
			Help: "Verify-all sweeps by outcome.",
		},
		[]string{"outcome"},
	)
)

func registerMetrics() {
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(VerificationCount)
	prometheus.MustRegister(SweepCount)
}

func countRequest(path string, status int) {
	RequestCount.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
