// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"
	"time"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/models"
)

// ConnectivityGet handles GET /api/v1/connectivity.
//
// @Summary Get connectivity state
// @Description Returns the watcher's current online/offline verdict without probing the remote server. The verdict reflects the most recent probe or assertion.
// @Tags Connectivity
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ConnectivityResponse} "Connectivity state"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /connectivity [get]
func (h *Handler) ConnectivityGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	respondSuccess(w, models.ConnectivityResponse{
		Online:    h.watcher.Online(),
		CheckedAt: time.Now().UTC(),
	}, start, false)
}

// ConnectivityCheck handles POST /api/v1/connectivity/check.
//
// @Summary Probe connectivity now
// @Description Runs an immediate reachability probe against the remote server instead of waiting for the next scheduled check, and returns the resulting verdict. An offline-to-online transition triggers an outbox drain.
// @Tags Connectivity
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ConnectivityResponse} "Fresh connectivity verdict"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /connectivity/check [post]
func (h *Handler) ConnectivityCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	online := h.watcher.Check(r.Context())

	respondSuccess(w, models.ConnectivityResponse{
		Online:    online,
		CheckedAt: time.Now().UTC(),
	}, start, false)
}

// ConnectivityAssert handles POST /api/v1/connectivity/assert.
//
// @Summary Assert connectivity state
// @Description Overrides the watcher's verdict, bypassing the probe. Asserting online while the server is unreachable makes subsequent remote calls fail fast; the next scheduled probe corrects the verdict.
// @Tags Connectivity
// @Accept json
// @Produce json
// @Param state body ConnectivityAssertRequest true "Asserted state"
// @Success 200 {object} models.APIResponse{data=models.ConnectivityResponse} "Asserted connectivity state"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /connectivity/assert [post]
func (h *Handler) ConnectivityAssert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req ConnectivityAssertRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	h.watcher.Assert(ctx, *req.Online)

	logging.Info().
		Bool("online", *req.Online).
		Msg("connectivity asserted via api")

	respondSuccess(w, models.ConnectivityResponse{
		Online:    h.watcher.Online(),
		CheckedAt: time.Now().UTC(),
	}, start, false)
}
