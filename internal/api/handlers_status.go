// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"
	"time"

	"github.com/phonotheca/phonotheca/internal/middleware"
	"github.com/phonotheca/phonotheca/internal/models"
)

// statusData extends the status snapshot with per-endpoint latency stats
// from the performance monitor.
type statusData struct {
	models.StatusResponse
	Endpoints []middleware.EndpointStats `json:"endpoints,omitempty"`
}

// Status handles GET /api/v1/status.
//
// @Summary Engine status snapshot
// @Description Returns connectivity, drain state, outbox depth, storage availability, per-cache record counts with snapshot ages, and per-endpoint latency percentiles.
// @Tags Status
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.StatusResponse} "Status retrieved"
// @Router /status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	status := models.StatusResponse{
		Version:       h.version,
		StartedAt:     h.startTime.UTC(),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Storage:       models.StorageStatus{Available: h.store != nil},
	}

	if h.store != nil {
		status.Storage.Path = h.store.Path()
		status.Storage.SizeBytes = h.store.SizeBytes()
	}
	if h.watcher != nil {
		status.Online = h.watcher.Online()
	}
	if h.orch != nil {
		status.Draining = h.orch.Draining()
	}
	if h.queue != nil {
		status.PendingActions = h.queue.PendingCount(ctx)
	}
	if h.caches != nil {
		status.Caches = h.caches.InfoAll(ctx)
	}

	respondSuccess(w, statusData{
		StatusResponse: status,
		Endpoints:      h.perfMon.GetStats(),
	}, start, false)
}
