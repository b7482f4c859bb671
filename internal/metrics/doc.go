// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package metrics exposes the engine's Prometheus instrumentation.
//
// All metrics are registered with the default registry via promauto and
// served on /metrics by the local API. Components record through the
// helper functions rather than touching collectors directly, so label
// conventions stay in one place.
package metrics
