/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SchedulerTicksTotal counts alarm-check ticks.
	SchedulerTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heimdall_scheduler_ticks_total",
		Help: "Number of alarm check ticks executed.",
	})

	// AlarmMatchesTotal counts ticks on which an alarm fired.
	AlarmMatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heimdall_alarm_matches_total",
		Help: "Number of ticks on which an alarm matched and fired.",
	})

	// StoreErrorsTotal counts persistence failures by operation.
	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdall_store_errors_total",
		Help: "Number of alarm store failures.",
	}, []string{"operation"})

	// PlaybackStartsTotal counts successfully started playback sessions.
	PlaybackStartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdall_playback_starts_total",
		Help: "Number of playback sessions started.",
	}, []string{"kind"})

	// PlaybackFailuresTotal counts sessions that never reached Playing.
	PlaybackFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdall_playback_failures_total",
		Help: "Number of playback starts that failed before playing.",
	}, []string{"kind"})

	// APIRequestsTotal counts HTTP API requests.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdall_api_requests_total",
		Help: "Number of HTTP API requests.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes HTTP API latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "heimdall_api_request_duration_seconds",
		Help:    "HTTP API request duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heimdall_api_active_connections",
		Help: "In-flight HTTP API requests.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
