// Package metrics holds the Prometheus metrics of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Purge run outcomes.
const (
	PurgeStatusSuccess = "success"
	PurgeStatusFailed  = "failed"
)

// AppMetrics contains the Prometheus metrics of the API and the worker.
type AppMetrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	UsersDeleted        prometheus.Counter
	UserDeletesRefused  prometheus.Counter
	PurgeRuns           *prometheus.CounterVec
	PurgeDuration       prometheus.Histogram
	OrphanOwners        prometheus.Gauge
	ImagesPurged        prometheus.Counter
}

// NewAppMetrics creates and registers the metrics with the given registerer.
func NewAppMetrics(registerer prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imghost_http_requests_total",
				Help: "Total number of handled HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imghost_http_request_duration_seconds",
				Help:    "Time spent handling HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		UsersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imghost_users_deleted_total",
			Help: "Total number of deleted users",
		}),
		UserDeletesRefused: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imghost_user_deletes_refused_total",
			Help: "Total number of refused deletions of undeletable users",
		}),
		PurgeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imghost_purge_runs_total",
				Help: "Total number of orphan image purge runs",
			},
			[]string{"status"},
		),
		PurgeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "imghost_purge_duration_seconds",
			Help:    "Duration of orphan image purge runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		OrphanOwners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "imghost_purge_orphan_owners",
			Help: "Number of deleted users still owning images at the last purge run",
		}),
		ImagesPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imghost_images_purged_total",
			Help: "Total number of images removed because their owner was deleted",
		}),
	}

	registerer.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.UsersDeleted,
		m.UserDeletesRefused,
		m.PurgeRuns,
		m.PurgeDuration,
		m.OrphanOwners,
		m.ImagesPurged,
	)

	return m
}

// UserDeleted counts a successful user deletion.
func (m *AppMetrics) UserDeleted() {
	m.UsersDeleted.Inc()
}

// UserDeleteRefused counts a refused deletion.
func (m *AppMetrics) UserDeleteRefused() {
	m.UserDeletesRefused.Inc()
}

// ObservePurge records one purge run.
func (m *AppMetrics) ObservePurge(orphans, purged int, elapsed time.Duration, err error) {
	m.PurgeDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.PurgeRuns.WithLabelValues(PurgeStatusFailed).Inc()
		return
	}
	m.PurgeRuns.WithLabelValues(PurgeStatusSuccess).Inc()
	m.OrphanOwners.Set(float64(orphans))
	m.ImagesPurged.Add(float64(purged))
}

// ObserveRequest records one handled HTTP request.
func (m *AppMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
