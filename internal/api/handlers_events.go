// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"

	"github.com/phonotheca/phonotheca/internal/logging"
	ws "github.com/phonotheca/phonotheca/internal/websocket"
)

// Events handles GET /api/v1/events, upgrading to a WebSocket event stream.
//
// @Summary Subscribe to engine events
// @Description Upgrades to a WebSocket and streams engine events as JSON messages: connectivity transitions, cache refreshes, outbox enqueues and drains, and identity changes. The server answers application-level {"type":"ping"} messages with a pong.
// @Tags Events
// @Success 101 {string} string "Switching protocols"
// @Failure 403 {object} models.APIResponse "Origin not allowed"
// @Failure 503 {object} models.APIResponse "Event hub unavailable"
// @Router /events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Event hub is not running", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own response.
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()

	logging.Debug().
		Uint64("client_id", client.ID()).
		Str("remote_addr", sanitizeLogValue(r.RemoteAddr)).
		Msg("websocket client connected")
}
