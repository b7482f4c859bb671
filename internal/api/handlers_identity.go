// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"
	"time"

	"github.com/phonotheca/phonotheca/internal/logging"
)

// IdentityGet handles GET /api/v1/identity.
//
// @Summary Get device identity
// @Description Returns the device ID and the profile ID bound to it. The identity is created and registered with the remote server on first call; the profile ID stays empty until registration has succeeded once.
// @Tags Identity
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.DeviceIdentity} "Device identity"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /identity [get]
func (h *Handler) IdentityGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := h.identity.GetOrCreate(r.Context())
	respondSuccess(w, id, start, false)
}

// IdentityReset handles POST /api/v1/identity/reset.
//
// @Summary Reset device identity
// @Description Deletes the stored identity, mints a new device ID, and re-registers against the remote server. Queued outbox actions for the old profile remain untouched.
// @Tags Identity
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.DeviceIdentity} "New device identity"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /identity/reset [post]
func (h *Handler) IdentityReset(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	h.identity.Reset(ctx)
	id := h.identity.GetOrCreate(ctx)

	logging.Info().
		Str("device_id", id.DeviceID).
		Msg("device identity reset via api")

	respondSuccess(w, id, start, false)
}
