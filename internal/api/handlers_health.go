// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"
	"time"

	"github.com/phonotheca/phonotheca/internal/models"
)

// HealthLive handles liveness probes.
//
// @Summary Liveness probe
// @Description Returns 200 OK if the process is alive, regardless of storage or remote reachability.
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.healthStatus(r, "alive"), start, false)
}

// HealthReady handles readiness probes. The engine is ready once it can
// serve reads; a degraded store still counts as ready because every read
// endpoint falls back to in-memory snapshots, but the status payload says
// so. Only a nil cache manager (startup not finished) reports not ready.
//
// @Summary Readiness probe
// @Description Returns 200 OK when the engine can serve reads. Storage degradation is reported in the payload, not as a 503: reads keep working from memory.
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Service is ready"
// @Failure 503 {object} models.APIResponse "Engine still assembling"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.caches == nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Engine is still starting", nil)
		return
	}

	respondSuccess(w, h.healthStatus(r, "ready"), start, false)
}

func (h *Handler) healthStatus(r *http.Request, status string) models.HealthStatus {
	online := false
	if h.watcher != nil {
		online = h.watcher.Online()
	}
	return models.HealthStatus{
		Status:           status,
		StorageAvailable: h.store != nil,
		Online:           online,
		UptimeSeconds:    int64(time.Since(h.startTime).Seconds()),
	}
}
