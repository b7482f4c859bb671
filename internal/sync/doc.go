// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package sync decides when the engine talks to the remote service.
//
// The Watcher probes the remote on an interval and publishes online/offline
// transitions on the event bus. The Orchestrator consumes them and runs the
// outbox drain: once at process start when online, once per
// offline-to-online transition, and on explicit manual triggers. Nothing
// drains periodically; a device that stays offline generates no speculative
// network or battery churn.
//
// Drains are single-flight. The orchestrator holds a mutex-guarded
// Idle/Draining flag; a trigger that fires while a drain is in flight is
// dropped, not queued, and the drain always returns to Idle whatever the
// outcome. After a successful trigger the orchestrator also freshens any
// stale entity caches, since the remote is known reachable at that moment.
package sync
