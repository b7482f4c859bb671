// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package main provides the Phonotheca control API server
//
// The control API is the loopback surface the media-library UI talks to.
// Every read is answered from the local cache; writes are queued in the
// outbox and drained to the remote service when connectivity allows.
//
// @title Phonotheca Control API
// @version 1.0
// @description Offline synchronization and local cache engine for personal media libraries
// @description
// @description ## Features
// @description
// @description - **Offline-first reads**: Tracks, playlists, smart playlists, favorites, and profile served from a durable local cache
// @description - **Write outbox**: Scrobbles, favorites, and now-playing updates queued while offline and replayed in order
// @description - **Connectivity watcher**: Background probing with hysteresis, plus manual check and assert operations
// @description - **Sync orchestration**: Automatic drain-then-refresh when the remote becomes reachable
// @description - **Local search**: Substring search, artist/album rollups, and prefix suggestions over the cached library
// @description - **Real-time events**: WebSocket feed of connectivity, sync, cache, and outbox transitions
// @description
// @description ## Degraded Modes
// @description
// @description The engine stays up without a remote (reads serve the last cached
// @description snapshot, the outbox accumulates) and without durable storage
// @description (caches are memory-only, queued writes are dropped and counted).
// @description The `/status` endpoint reports which mode the engine is in.
// @description
// @description ## Authentication
// @description
// @description The API binds to loopback by default and requires no authentication.
// @description When exposed beyond loopback, set AUTH_MODE=basic and provide
// @description ADMIN_USERNAME and ADMIN_PASSWORD; all /api/v1 endpoints except
// @description health checks then require HTTP Basic credentials.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address, with
// @description tighter buckets for write and sync-trigger endpoints. Rate limit
// @description headers are included in responses: `X-RateLimit-Limit`, `X-RateLimit-Remaining`, `X-RateLimit-Reset`.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-22T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/phonotheca/phonotheca/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:7466
// @BasePath /api/v1
// @schemes http
//
// @securityDefinitions.basic BasicAuth
// @description HTTP Basic credentials, required only when AUTH_MODE=basic.
//
// @tag.name Health
// @tag.description Liveness and readiness probes (never rate limited, never authenticated)
//
// @tag.name Status
// @tag.description Engine status: connectivity, cache freshness, outbox depth, device identity
//
// @tag.name Tracks
// @tag.description Cached track listing, search, artist/album rollups, prefix suggestions, and ID resolution
//
// @tag.name Library
// @tag.description Cached playlists, smart playlists, favorites, and the active profile
//
// @tag.name Cache
// @tag.description Cache inspection and manual refresh of the local library mirror
//
// @tag.name Outbox
// @tag.description Queued offline actions: enqueue, inspect, and manual drain
//
// @tag.name Identity
// @tag.description Device identity and registration lifecycle
//
// @tag.name Connectivity
// @tag.description Reachability state, manual probe, and manual online/offline assertion
//
// @tag.name Events
// @tag.description Real-time WebSocket feed of engine state transitions
package main
