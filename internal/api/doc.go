// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

/*
Package api exposes the engine's local control surface over HTTP.

The daemon binds to localhost by default and serves a small JSON API for the
media-library UI and for operators: engine status, cache inspection and
refresh, offline track search and browse, outbox inspection and drain
triggers, identity lifecycle, and connectivity assertion. A WebSocket
endpoint at /api/v1/events streams engine events to connected clients.

Routing is Chi with a conventional middleware stack: request IDs, panic
recovery, CORS for the configured UI origin, per-group rate limits
(go-chi/httprate), optional Basic auth, Prometheus request metrics, and gzip
compression for the large track listings.

Responses use a uniform envelope (models.APIResponse) with a status string,
payload, error details, and timing metadata. Request parameters are bound to
structs in requests.go and validated with go-playground/validator before any
handler logic runs.

Endpoint groups:

  - /api/v1/health: liveness and readiness (also aliased at /healthz, /readyz)
  - /api/v1/status: full engine status snapshot
  - /api/v1/cache: per-cache info and refresh triggers
  - /api/v1/tracks: search, browse by artist/album, id resolution, typeahead
  - /api/v1/playlists, /smart-playlists, /favorites, /profile: cached entities
  - /api/v1/outbox: pending actions, enqueue, manual drain
  - /api/v1/identity: device identity get/reset
  - /api/v1/connectivity: watcher verdict, assertion, forced check
  - /api/v1/events: WebSocket event stream
  - /metrics: Prometheus exposition
  - /swagger/*: interactive API documentation

The handlers never talk to the remote media service directly; everything is
served from the caches, the store, and the engine components, so every read
endpoint keeps working offline.
*/
package api
