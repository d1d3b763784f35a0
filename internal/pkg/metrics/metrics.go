package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sheetsync"

// 同步请求结果
const (
	OutcomeAccepted      = "accepted"
	OutcomeQuotaExceeded = "quota_exceeded"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeError         = "error"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
	SyncEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_events_total",
			Help:      "Usage events received from the addon, by outcome.",
		},
		[]string{"outcome"},
	)
	DecryptFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_key_decrypt_failures_total",
			Help:      "Stored API keys that could not be decrypted.",
		},
	)
	CycleRollovers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_cycle_rollovers_total",
			Help:      "Profiles whose billing cycle was rolled over.",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, SyncEvents, DecryptFailures, CycleRollovers)
}

// Handler Prometheus 抓取接口
func Handler() http.Handler {
	return promhttp.Handler()
}
