// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phonotheca/phonotheca/internal/cache"
	"github.com/phonotheca/phonotheca/internal/config"
	"github.com/phonotheca/phonotheca/internal/identity"
	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/middleware"
	"github.com/phonotheca/phonotheca/internal/outbox"
	"github.com/phonotheca/phonotheca/internal/store"
	syncpkg "github.com/phonotheca/phonotheca/internal/sync"
	ws "github.com/phonotheca/phonotheca/internal/websocket"
)

// Handler carries the engine components the HTTP layer serves from.
//
// Handler methods are split across topical files:
//   - handlers.go: struct, constructor, websocket upgrader (this file)
//   - handlers_helpers.go: response envelope and param helpers
//   - handlers_health.go: liveness/readiness probes
//   - handlers_status.go: engine status snapshot
//   - handlers_cache.go: cache info and refresh
//   - handlers_tracks.go: search, browse, resolve, suggest
//   - handlers_library.go: playlists, favorites, profile
//   - handlers_outbox.go: pending, enqueue, drain
//   - handlers_identity.go: identity get/reset
//   - handlers_connectivity.go: watcher verdict and assertion
//   - handlers_events.go: WebSocket upgrade
//
// store may be nil when the capability probe failed at startup; handlers
// that touch it must degrade rather than panic.
type Handler struct {
	store     *store.Store
	caches    *cache.Manager
	queue     *outbox.Queue
	orch      *syncpkg.Orchestrator
	watcher   *syncpkg.Watcher
	identity  *identity.Manager
	config    *config.Config
	wsHub     *ws.Hub
	perfMon   *middleware.PerformanceMonitor
	version   string
	startTime time.Time
}

// HandlerDeps bundles the constructor arguments; every field except store is
// required.
type HandlerDeps struct {
	Store    *store.Store
	Caches   *cache.Manager
	Queue    *outbox.Queue
	Orch     *syncpkg.Orchestrator
	Watcher  *syncpkg.Watcher
	Identity *identity.Manager
	Config   *config.Config
	WSHub    *ws.Hub
	Version  string
}

// NewHandler creates the API handler. The performance monitor tracks the
// last 1000 requests for the status endpoint's latency percentiles.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		store:     deps.Store,
		caches:    deps.Caches,
		queue:     deps.Queue,
		orch:      deps.Orch,
		watcher:   deps.Watcher,
		identity:  deps.Identity,
		config:    deps.Config,
		wsHub:     deps.WSHub,
		perfMon:   middleware.NewPerformanceMonitor(1000),
		version:   deps.Version,
		startTime: time.Now(),
	}
}

// PerformanceMonitor exposes the request monitor so the router can install
// its middleware.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// getUpgrader builds the WebSocket upgrader with origin checking.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// configured CORS origins. Browser WebSockets always send Origin; requests
// without one are non-browser clients (curl, the CLI) and are allowed since
// CORS cannot protect them anyway.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}
