// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transaction outcomes
const (
	OutcomeCommitted = "committed"
	OutcomeAborted   = "aborted"
	OutcomeConflict  = "conflict"
	OutcomeDirect    = "non_transactional"
)

// MetricsCollector holds the Prometheus collectors of the storage and vote engine.
type MetricsCollector struct {
	Transactions        *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	FloorClamps         *prometheus.CounterVec
	Votes               *prometheus.CounterVec
	ReconcileRuns       *prometheus.CounterVec
	ReconcileDrift      *prometheus.CounterVec
	ReconcileDuration   prometheus.Histogram
	Notifications       *prometheus.CounterVec
	NotificationQueue   prometheus.Gauge
}

var (
	globalMetrics *MetricsCollector
	once          sync.Once
)

// NewMetricsCollector creates collectors registered with reg.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		Transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_db_transactions_total",
				Help: "Database units of work by outcome",
			},
			[]string{"outcome"},
		),
		TransactionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forum_db_transaction_duration_seconds",
				Help:    "Duration of database units of work in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"outcome"},
		),
		FloorClamps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_counter_floor_clamps_total",
				Help: "Counter decrements that would have gone negative and were clamped at zero",
			},
			[]string{"entity", "field"},
		),
		Votes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_votes_total",
				Help: "Vote transitions applied",
			},
			[]string{"target_type", "transition"},
		),
		ReconcileRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_reconcile_runs_total",
				Help: "Reconciliation passes by result",
			},
			[]string{"result"},
		),
		ReconcileDrift: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_reconcile_drift_total",
				Help: "Stored counters found to differ from the vote ledger",
			},
			[]string{"target_type", "field"},
		),
		ReconcileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forum_reconcile_duration_seconds",
				Help:    "Duration of reconciliation passes in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_notifications_total",
				Help: "Notifications by delivery outcome",
			},
			[]string{"outcome"},
		),
		NotificationQueue: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "forum_notification_queue_depth",
				Help: "Notifications waiting for a dispatcher worker",
			},
		),
	}
}

// GetGlobalMetrics returns the collector registered with the default Prometheus registry.
func GetGlobalMetrics() *MetricsCollector {
	once.Do(func() {
		globalMetrics = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

// ObserveTransaction records one unit of work that started at start.
func (mc *MetricsCollector) ObserveTransaction(outcome string, start time.Time) {
	mc.Transactions.WithLabelValues(outcome).Inc()
	mc.TransactionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// RecordClamp records a floor clamp on entity.field.
func (mc *MetricsCollector) RecordClamp(entity, field string) {
	mc.FloorClamps.WithLabelValues(entity, field).Inc()
}

// RecordVote records an applied transition.
func (mc *MetricsCollector) RecordVote(targetType, transition string) {
	mc.Votes.WithLabelValues(targetType, transition).Inc()
}

// RecordDrift records a counter rewritten by reconciliation.
func (mc *MetricsCollector) RecordDrift(targetType, field string) {
	mc.ReconcileDrift.WithLabelValues(targetType, field).Inc()
}

// RecordNotification records a notification outcome.
func (mc *MetricsCollector) RecordNotification(outcome string) {
	mc.Notifications.WithLabelValues(outcome).Inc()
}
