// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

/*
Package websocket pushes engine state changes to connected UI clients.

The engine runs headless on the user's machine; a local UI (or any other
consumer) connects to /api/v1/events and receives a live feed of what the
engine is doing: caches refreshing, actions entering and leaving the outbox,
connectivity flapping, the device identity changing. Without this feed a UI
would have to poll the status endpoint.

Key Components:

  - Hub: central broker that manages client connections and broadcasts
  - Client: a single WebSocket connection with read/write goroutines
  - EventBridge: subscribes to the internal event bus and forwards every
    event to the hub as a typed message

Architecture:

The package implements a hub-and-spoke pattern:

	┌──────────────┐     ┌──────────┐
	│ events.Bus   │ ──► │   Hub    │ ──► broadcasts to all clients
	└──────────────┘     └────┬─────┘
	     EventBridge          │
	                 ┌────────┴┬─────────┐
	                 │         │         │
	                 │ Client1 │ Client2 │ Client3
	                 └─────────┴─────────┘

Each client has two goroutines:
  - readPump: reads from the WebSocket, replies to application pings
  - writePump: writes hub messages, sends protocol pings on a timer

Message Types:

  - connectivity_changed: online/offline transition observed by the watcher
  - cache_refreshed: an entity cache swapped in a fresh snapshot
  - outbox_enqueued: an action was recorded in the outbox
  - outbox_drained: a drain pass finished (processed/failed counts)
  - identity_changed: device identity created, reset, or flagged for
    re-registration
  - ping/pong: application-level liveness for clients behind proxies that
    strip protocol pings

Determinism:

The hub processes shutdown, client lifecycle, and broadcasts in strict
priority order, and always iterates clients sorted by their monotonic IDs.
Message delivery order is therefore reproducible, which keeps supervised
restarts and tests predictable.

Supervision:

Hub.RunWithContext and EventBridge.Run both block until their context is
canceled and then return ctx.Err(), so the supervisor tree can restart
either independently without orphaning connections.

See Also:

  - github.com/gorilla/websocket: underlying WebSocket library
  - internal/events: bus topics and event payloads
  - internal/api: the /api/v1/events upgrade handler
*/
package websocket
