// Package metrics содержит метрики Prometheus сервиса учёта баллов.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Значения метки result.
const (
	ResultOK                  = "ok"
	ResultNotFound            = "not_found"
	ResultInvalidTransition   = "invalid_transition"
	ResultInsufficientBalance = "insufficient_balance"
	ResultValidation          = "validation"
	ResultError               = "error"
)

var (
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "choreledger_settlements_total",
			Help: "Total number of chore assignment settlements",
		},
		[]string{"status", "result"},
	)

	RedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "choreledger_redemptions_total",
			Help: "Total number of reward redemptions",
		},
		[]string{"result"},
	)

	PointsAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "choreledger_points_awarded_total",
			Help: "Points credited to kids for completed chores",
		},
	)

	PointsSpentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "choreledger_points_spent_total",
			Help: "Points debited from kids for redeemed rewards",
		},
	)

	StreaksResetTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "choreledger_streaks_reset_total",
			Help: "Kid streaks reset by the scheduled job",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Handler возвращает HTTP-обработчик для выдачи метрик.
func Handler() http.Handler {
	return promhttp.Handler()
}
