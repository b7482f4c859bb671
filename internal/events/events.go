// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package events carries the engine's in-process change notifications.
//
// Components publish facts about what just happened (connectivity changed,
// a cache was refreshed, the outbox drained) and interested parties
// subscribe by topic: the sync orchestrator reacts to connectivity
// transitions, the websocket hub forwards everything to connected UIs.
// The bus is a Watermill GoChannel pub/sub, so handlers stay decoupled from
// publishers without a broker in the middle.
package events

import "time"

// Topics. Subscribers receive only the topics they ask for.
const (
	// TopicConnectivity carries ConnectivityChanged events.
	TopicConnectivity = "connectivity"

	// TopicCacheRefreshed carries CacheRefreshed events.
	TopicCacheRefreshed = "cache.refreshed"

	// TopicOutboxEnqueued carries OutboxEnqueued events.
	TopicOutboxEnqueued = "outbox.enqueued"

	// TopicOutboxDrained carries OutboxDrained events.
	TopicOutboxDrained = "outbox.drained"

	// TopicIdentity carries IdentityChanged events.
	TopicIdentity = "identity"
)

// ConnectivityChanged is published on every online/offline transition
// observed by the connectivity watcher, never for steady state.
type ConnectivityChanged struct {
	Online bool      `json:"online"`
	At     time.Time `json:"at"`
}

// CacheRefreshed is published after one entity cache atomically swapped in
// a fresh snapshot.
type CacheRefreshed struct {
	Cache string    `json:"cache"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

// OutboxEnqueued is published when an action lands in the outbox.
type OutboxEnqueued struct {
	ID        uint64    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Type      string    `json:"type"`
	At        time.Time `json:"at"`
}

// OutboxDrained is published after a drain pass finishes, whatever the
// outcome.
type OutboxDrained struct {
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	At        time.Time `json:"at"`
}

// IdentityChanged is published when the device identity is created, reset,
// or flagged for re-registration by the remote service.
type IdentityChanged struct {
	Kind      string    `json:"kind"`
	ProfileID string    `json:"profile_id,omitempty"`
	At        time.Time `json:"at"`
}

// IdentityChanged kinds.
const (
	IdentityCreated            = "created"
	IdentityReset              = "reset"
	IdentityReRegisterRequired = "reregister_required"
)
