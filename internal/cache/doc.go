// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package cache maintains the five read-through entity caches: tracks,
// playlists, smart playlists, favorites, and the user profile.
//
// # Refresh Model
//
// Each cache is replaced wholesale on refresh: fetch the authoritative list
// from the remote service, stamp every record with the snapshot time, then
// atomically swap the durable collection. A failed fetch leaves the prior
// snapshot untouched, so readers always see a complete snapshot (last known
// good or newer), never a partial mix. Playlists and favorites additionally
// support single-record upserts between refreshes.
//
// # Read Model
//
// Reads are served from an in-memory view mirroring the durable collection.
// The view is warmed from the store on startup and updated in lockstep with
// every committed write, so GetAll, GetByID and Search never touch the
// network or block on disk. Staleness checks and cache info derive from the
// stored records themselves (newest snapshot timestamp via the cached_at
// index), not from a separately maintained counter.
//
// # Degraded Mode
//
// When durable storage is unavailable the manager is constructed without a
// store: reads return empty values, refreshes and upserts are dropped, and
// nothing errors. Cache-miss and cache-unavailable are observationally
// identical to callers; no public method on this package propagates a
// storage failure.
package cache
