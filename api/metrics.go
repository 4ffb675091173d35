package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are the server's Prometheus instruments.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	notifications   *prometheus.CounterVec
	stageErrors     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enrich_http_requests_total",
			Help: "HTTP requests by path and status code.",
		}, []string{"path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enrich_http_request_duration_seconds",
			Help:    "HTTP request latency by path.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"path"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enrich_notifications_total",
			Help: "Notification decisions by outcome.",
		}, []string{"notify"}),
		stageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enrich_stage_errors_total",
			Help: "Partial-stage errors recorded on records, by stage.",
		}, []string{"stage"}),
	}
}
