// Package metrics defines the Prometheus instruments exported on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelaysTotal counts relayed transfers by direction and outcome.
	RelaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_relays_total",
			Help: "Relayed transfers by direction and status",
		},
		[]string{"direction", "status"},
	)

	// RelayDuration observes end-to-end handling time per direction.
	RelayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relayer_relay_duration_seconds",
			Help:    "Time spent handling a relay request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	// PendingRedemptionsGauge tracks how many attested transfers are
	// waiting for the redemption worker.
	PendingRedemptionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relayer_pending_redemptions",
			Help: "Attested transfers awaiting redemption",
		},
	)

	// HTTPRequestsTotal counts API requests by method, path and code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_http_requests_total",
			Help: "HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes API latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relayer_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DatabaseConnectionsGauge mirrors sql.DBStats pool counters.
	DatabaseConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relayer_database_connections",
			Help: "Database connection pool state",
		},
		[]string{"state"},
	)
)

// RecordRelay bumps the relay counter for one handled transfer.
func RecordRelay(direction, status string) {
	RelaysTotal.WithLabelValues(direction, status).Inc()
}
