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
	syncpkg "github.com/phonotheca/phonotheca/internal/sync"
)

// OutboxPending handles GET /api/v1/outbox.
//
// @Summary List pending outbox actions
// @Description Returns every action queued while offline for the active profile, oldest first. Actions leave the outbox only after a successful drain against the remote server.
// @Tags Outbox
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.OutboxPendingResponse} "Pending actions"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /outbox [get]
func (h *Handler) OutboxPending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	profileID := h.identity.ProfileID(ctx)
	actions := h.queue.ListPending(ctx, profileID)

	respondSuccess(w, models.OutboxPendingResponse{
		Total:   len(actions),
		Actions: actions,
	}, start, false)
}

// OutboxEnqueue handles POST /api/v1/outbox. Enqueue always succeeds
// locally, even while the remote server is unreachable; the action is
// replayed on the next drain.
//
// @Summary Enqueue an offline action
// @Description Appends an action to the outbox for later replay against the remote server. Returns 202 with the post-enqueue queue depth.
// @Tags Outbox
// @Accept json
// @Produce json
// @Param action body EnqueueActionRequest true "Action to queue"
// @Success 202 {object} models.APIResponse{data=models.EnqueueResponse} "Action queued"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /outbox [post]
func (h *Handler) OutboxEnqueue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req EnqueueActionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	profileID := h.identity.ProfileID(ctx)
	actionType := models.ActionType(req.Type)
	h.queue.Enqueue(ctx, profileID, actionType, req.Payload)

	logging.Debug().
		Str("type", string(actionType)).
		Str("profile_id", profileID).
		Msg("action accepted into outbox")

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data: models.EnqueueResponse{
			Queued:  true,
			Type:    actionType,
			Pending: h.queue.PendingCount(ctx),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// OutboxDrain handles POST /api/v1/outbox/drain.
//
// @Summary Drain the outbox
// @Description Replays queued actions against the remote server in FIFO order and returns the drain result. When a drain is already in flight the trigger is dropped and the response reports triggered=false with an empty result.
// @Tags Outbox
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.DrainResponse} "Drain result"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /outbox/drain [post]
func (h *Handler) OutboxDrain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	result, triggered := h.orch.TriggerDrain(ctx, syncpkg.TriggerManual)
	if !triggered {
		logging.Debug().Msg("manual drain dropped, drain already in flight")
	}

	respondSuccess(w, models.DrainResponse{
		Triggered: triggered,
		Result:    result,
	}, start, false)
}
