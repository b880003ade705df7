// Package metrics exposes the reminder's operational counters on a private
// Prometheus registry served at /metrics by the caregiver feed.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// Metrics groups the counters. A nil *Metrics is valid and records nothing,
// which keeps call sites free of nil checks in tests.
type Metrics struct {
	registry *prometheus.Registry

	alarmsTriggered  prometheus.Counter
	acknowledgments  *prometheus.CounterVec
	storeWriteErrors *prometheus.CounterVec
	alertFailures    *prometheus.CounterVec
}

// New registers the counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		alarmsTriggered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricAlarmsTriggered,
			Help:      "Number of alarms raised by the scheduler.",
		}),
		acknowledgments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricAcknowledgments,
			Help:      "Number of acknowledged alarms, by outcome.",
		}, []string{config.MetricLabelStatus}),
		storeWriteErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricStoreWriteErrors,
			Help:      "Number of failed record writes, by record name.",
		}, []string{config.MetricLabelRecord}),
		alertFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricAlertFailures,
			Help:      "Number of failed speech or tone attempts, by channel.",
		}, []string{config.MetricLabelChannel}),
	}
}

func (m *Metrics) AlarmTriggered() {
	if m == nil {
		return
	}
	m.alarmsTriggered.Inc()
}

func (m *Metrics) Acknowledged(status string) {
	if m == nil {
		return
	}
	m.acknowledgments.WithLabelValues(status).Inc()
}

func (m *Metrics) StoreWriteFailed(record string) {
	if m == nil {
		return
	}
	m.storeWriteErrors.WithLabelValues(record).Inc()
}

func (m *Metrics) AlertFailed(channel string) {
	if m == nil {
		return
	}
	m.alertFailures.WithLabelValues(channel).Inc()
}

// Registry returns the underlying registry, nil for a nil receiver.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
