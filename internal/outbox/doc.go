// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package outbox is the durable queue of pending remote actions: scrobbles,
// now-playing pings, favorite toggles and remote-sync triggers recorded
// locally before they are attempted, so they survive crashes and offline
// periods.
//
// # Ordering
//
// The queue is strictly FIFO by enqueue order. Every action gets a
// monotonic sequence id at enqueue time and drains replay actions in that
// order; action types interleave exactly as the user produced them and are
// never reordered by type or priority.
//
// # Retry Accounting
//
// A drain snapshots the pending list once, then walks it a single time.
// Actions enqueued while the pass runs wait for the next trigger. Each
// action either executes and is deleted, or fails and has its retry count
// incremented; at MaxRetries the record is deleted anyway and counted as a
// permanent failure. Transient and permanent failures are deliberately not
// distinguished by error kind - only the retry count decides eviction.
//
// # Degraded Mode
//
// With storage unavailable the queue drops writes silently and reads return
// empty. There is no in-memory fallback: a queue that cannot outlive a
// process reload cannot do the one job the outbox exists for.
package outbox
