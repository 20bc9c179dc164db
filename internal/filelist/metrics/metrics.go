// Package metrics exposes Prometheus collectors for the refresh pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh metrics
var (
	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filelist_refreshes_total",
			Help: "Total refresh attempts by trigger source and outcome",
		},
		[]string{"source", "result"},
	)

	RefreshDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filelist_refresh_duration_seconds",
			Help:    "Time to list, filter, serialize and publish one snapshot",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"source"},
	)

	DirectoryEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filelist_directory_entries",
			Help: "Entries found in the watched directory by the last successful listing",
		},
	)

	MatchedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filelist_matched_entries",
			Help: "Entries retained by the filter in the last successful listing",
		},
	)

	SnapshotBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filelist_snapshot_bytes",
			Help: "Valid length of the published snapshot",
		},
	)

	SnapshotSequence = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filelist_snapshot_sequence",
			Help: "Sequence number of the published snapshot",
		},
	)
)

// Watch metrics
var (
	WatchEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filelist_watch_events_total",
			Help: "Filesystem notifications delivered to the watch supervisor",
		},
		[]string{"op"},
	)

	RetargetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filelist_retargets_total",
			Help: "Watch retarget requests processed",
		},
		[]string{"result"},
	)

	WatchArmed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filelist_watch_armed",
			Help: "1 when a watch is armed, 0 otherwise",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filelist_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filelist_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		RefreshesTotal,
		RefreshDuration,
		DirectoryEntries,
		MatchedEntries,
		SnapshotBytes,
		SnapshotSequence,
		WatchEventsTotal,
		RetargetsTotal,
		WatchArmed,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ObserveRefresh records one refresh attempt. result is an error kind label,
// "ok" on success.
func ObserveRefresh(source, result string, duration time.Duration) {
	RefreshesTotal.WithLabelValues(source, result).Inc()
	RefreshDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// ObservePublish records the shape of a successfully published snapshot
func ObservePublish(entries, matches, length int, sequence uint64) {
	DirectoryEntries.Set(float64(entries))
	MatchedEntries.Set(float64(matches))
	SnapshotBytes.Set(float64(length))
	SnapshotSequence.Set(float64(sequence))
}

// ObserveRetarget records a processed retarget request
func ObserveRetarget(err error) {
	if err != nil {
		RetargetsTotal.WithLabelValues("failed").Inc()
		WatchArmed.Set(0)
		return
	}
	RetargetsTotal.WithLabelValues("armed").Inc()
	WatchArmed.Set(1)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// EchoMiddleware returns Echo middleware that instruments HTTP requests.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			HTTPRequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
