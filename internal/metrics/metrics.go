// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the engine:
// - Store operation latency and errors (BadgerDB)
// - Entity cache sizes and refresh outcomes
// - Outbox depth, drain outcomes, evictions
// - Connectivity and drain triggers
// - Remote API latency and circuit breaker state
// - Local HTTP API and WebSocket traffic

var (
	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"operation", "collection"},
	)

	StoreSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_size_bytes",
			Help: "Estimated on-disk size of the store",
		},
	)

	StorageAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storage_available",
			Help: "Whether durable storage passed the capability probe (0=no, 1=yes)",
		},
	)

	// Entity Cache Metrics
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entities",
		},
		[]string{"cache"}, // "tracks", "playlists", "smart_playlists", "favorites", "profile"
	)

	CacheRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_refresh_duration_seconds",
			Help:    "Duration of cache refreshes in seconds, fetch included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"cache"},
	)

	CacheRefreshErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_refresh_errors_total",
			Help: "Total number of failed cache refreshes",
		},
		[]string{"cache"},
	)

	CacheLastRefresh = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_last_refresh_timestamp",
			Help: "Unix timestamp of the last successful refresh per cache",
		},
		[]string{"cache"},
	)

	// Outbox Metrics
	OutboxPendingActions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbox_pending_actions",
			Help: "Current number of actions waiting in the outbox",
		},
	)

	OutboxEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_enqueued_total",
			Help: "Total number of actions enqueued",
		},
		[]string{"type"}, // "scrobble", "now_playing", "sync_remote", "favorite_toggle"
	)

	OutboxDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outbox_dropped_total",
			Help: "Total number of actions dropped because storage was unavailable",
		},
	)

	OutboxProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outbox_processed_total",
			Help: "Total number of actions delivered and removed from the outbox",
		},
	)

	OutboxFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outbox_failed_total",
			Help: "Total number of action execution failures, retried or not",
		},
	)

	OutboxEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outbox_evicted_total",
			Help: "Total number of actions evicted after exhausting retries",
		},
	)

	OutboxDrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outbox_drain_duration_seconds",
			Help:    "Duration of outbox drain passes in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Sync Orchestrator Metrics
	SyncDrains = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_drains_total",
			Help: "Total number of drain passes by trigger",
		},
		[]string{"trigger"}, // "startup", "connectivity", "manual"
	)

	SyncDrainsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_drains_skipped_total",
			Help: "Total number of drain triggers ignored because a drain was running",
		},
	)

	ConnectivityOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connectivity_online",
			Help: "Whether the remote service is reachable (0=offline, 1=online)",
		},
	)

	ConnectivityTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connectivity_transitions_total",
			Help: "Total number of connectivity transitions",
		},
		[]string{"direction"}, // "online", "offline"
	)

	// Remote API Metrics
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_request_duration_seconds",
			Help:    "Duration of remote service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RemoteRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_request_errors_total",
			Help: "Total number of failed remote service calls",
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker by outcome",
		},
		[]string{"name", "outcome"}, // "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures seen by the circuit breaker",
		},
		[]string{"name"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	// Backup Metrics
	BackupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_duration_seconds",
			Help:    "Duration of store backups in seconds",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_last_success_timestamp",
			Help: "Unix timestamp of the last successful backup",
		},
	)

	BackupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backup_errors_total",
			Help: "Total number of failed backups",
		},
	)

	// Identity Metrics
	IdentityResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_resets_total",
			Help: "Total number of device identity resets",
		},
	)
)

// RecordStoreOperation records one store operation.
func RecordStoreOperation(operation, collection string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation, collection).Inc()
	}
}

// SetStorageAvailable records the capability probe verdict.
func SetStorageAvailable(available bool) {
	if available {
		StorageAvailable.Set(1)
	} else {
		StorageAvailable.Set(0)
	}
}

// RecordCacheRefresh records one cache refresh attempt.
func RecordCacheRefresh(cache string, count int, duration time.Duration, err error) {
	CacheRefreshDuration.WithLabelValues(cache).Observe(duration.Seconds())
	if err != nil {
		CacheRefreshErrors.WithLabelValues(cache).Inc()
		return
	}
	CacheEntries.WithLabelValues(cache).Set(float64(count))
	CacheLastRefresh.WithLabelValues(cache).Set(float64(time.Now().Unix()))
}

// RecordEnqueue records one enqueued action.
func RecordEnqueue(actionType string) {
	OutboxEnqueued.WithLabelValues(actionType).Inc()
}

// RecordDrain records the outcome of one drain pass. processed counts
// delivered actions, failed counts execution failures whether retried or
// not, evicted counts actions removed at the retry ceiling.
func RecordDrain(processed, failed, evicted int, duration time.Duration) {
	OutboxDrainDuration.Observe(duration.Seconds())
	OutboxProcessed.Add(float64(processed))
	OutboxFailed.Add(float64(failed))
	OutboxEvicted.Add(float64(evicted))
}

// RecordDrainTrigger counts one drain attempt by what set it off.
func RecordDrainTrigger(trigger string) {
	SyncDrains.WithLabelValues(trigger).Inc()
}

// SetConnectivity records a connectivity verdict and counts transitions.
func SetConnectivity(online, transitioned bool) {
	if online {
		ConnectivityOnline.Set(1)
	} else {
		ConnectivityOnline.Set(0)
	}
	if transitioned {
		direction := "offline"
		if online {
			direction = "online"
		}
		ConnectivityTransitions.WithLabelValues(direction).Inc()
	}
}

// RecordRemoteRequest records one remote service call.
func RecordRemoteRequest(operation string, duration time.Duration, err error) {
	RemoteRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		RemoteRequestErrors.WithLabelValues(operation).Inc()
	}
}

// SetCircuitBreakerState records a breaker state change.
// State mapping: 0=closed, 1=half-open, 2=open.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBackup records one backup attempt.
func RecordBackup(duration time.Duration, err error) {
	BackupDuration.Observe(duration.Seconds())
	if err != nil {
		BackupErrors.Inc()
		return
	}
	BackupLastSuccess.Set(float64(time.Now().Unix()))
}
