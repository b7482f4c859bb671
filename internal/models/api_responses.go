// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package models

import (
	"time"
)

// APIResponse is the standardized wrapper used by every HTTP endpoint. It
// gives successful and failed responses one structure, with metadata for
// observability.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"total": 1204, "tracks": [...]},
//	  "metadata": {
//	    "timestamp": "2026-08-22T12:00:00Z",
//	    "query_time_ms": 3
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "Field validation failed",
//	    "details": {"field": "limit"}
//	  },
//	  "metadata": {"timestamp": "2026-08-22T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
//
// QueryTimeMS is the handler's end-to-end processing time; for cache-backed
// reads this is typically 0-2ms. Cached reports whether the payload came from
// an in-memory cache view rather than the persistent store or the remote.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the structured error payload inside APIResponse.
//
// Common codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - NOT_FOUND: resource does not exist
//   - AUTHENTICATION_ERROR: invalid or missing credentials
//   - STORAGE_UNAVAILABLE: persistent store is degraded
//   - DRAIN_IN_PROGRESS: a drain pass is already running
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the liveness/readiness payload.
type HealthStatus struct {
	Status           string `json:"status"`
	StorageAvailable bool   `json:"storage_available"`
	Online           bool   `json:"online"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
}

// StorageStatus describes the persistent store for the status endpoint.
// With storage degraded only Available is meaningful.
type StorageStatus struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// StatusResponse is the full engine status: connectivity, drain state, queue
// depth, storage, and per-cache record counts with snapshot ages.
type StatusResponse struct {
	Version        string               `json:"version"`
	StartedAt      time.Time            `json:"started_at"`
	UptimeSeconds  int64                `json:"uptime_seconds"`
	Online         bool                 `json:"online"`
	Draining       bool                 `json:"draining"`
	PendingActions int                  `json:"pending_actions"`
	Storage        StorageStatus        `json:"storage"`
	Caches         map[string]CacheInfo `json:"caches"`
}

// TracksResponse wraps a track listing.
type TracksResponse struct {
	Total  int           `json:"total"`
	Tracks []CachedTrack `json:"tracks"`
}

// SuggestResponse wraps typeahead suggestions for one track field.
type SuggestResponse struct {
	Field       string   `json:"field"`
	Prefix      string   `json:"prefix"`
	Suggestions []string `json:"suggestions"`
}

// OutboxPendingResponse wraps the pending-action listing.
type OutboxPendingResponse struct {
	Total   int             `json:"total"`
	Actions []PendingAction `json:"actions"`
}

// EnqueueResponse acknowledges a queued action. Pending is the queue depth
// after the enqueue.
type EnqueueResponse struct {
	Queued  bool       `json:"queued"`
	Type    ActionType `json:"type"`
	Pending int        `json:"pending"`
}

// DrainResponse reports the outcome of a manual drain trigger. Triggered is
// false when a drain was already in flight; Result is zero-valued in that
// case.
type DrainResponse struct {
	Triggered bool        `json:"triggered"`
	Result    DrainResult `json:"result"`
}

// ConnectivityResponse reports the watcher's current verdict.
type ConnectivityResponse struct {
	Online    bool      `json:"online"`
	CheckedAt time.Time `json:"checked_at"`
}
