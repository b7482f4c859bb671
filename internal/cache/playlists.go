// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package cache

import (
	"context"
	"time"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

// PlaylistCache serves the playlist snapshot. Playlists support single-record
// upserts between refreshes, so a local playlist edit is visible immediately
// without a full resync.
type PlaylistCache struct {
	col *collection[models.CachedPlaylist]
	now func() time.Time
	mgr *Manager
}

func newPlaylistCache(st *store.Store, now func() time.Time, mgr *Manager) *PlaylistCache {
	return &PlaylistCache{
		col: newCollection[models.CachedPlaylist](store.CollectionPlaylists, CachePlaylists, st),
		now: now,
		mgr: mgr,
	}
}

// GetAll returns every cached playlist ordered by id.
func (pc *PlaylistCache) GetAll() []models.CachedPlaylist {
	return pc.col.view.all()
}

// GetByID returns one cached playlist.
func (pc *PlaylistCache) GetByID(id string) (models.CachedPlaylist, bool) {
	return pc.col.view.get(id)
}

// Search returns the playlists matching pred, ordered by id.
func (pc *PlaylistCache) Search(pred func(models.CachedPlaylist) bool) []models.CachedPlaylist {
	return pc.col.view.filter(pred)
}

// Upsert writes one playlist into the cache, leaving the rest of the
// snapshot alone. The record is stamped with the write time. Storage
// failures are swallowed; with storage unavailable the write is dropped.
func (pc *PlaylistCache) Upsert(ctx context.Context, p models.CachedPlaylist) {
	if p.ID == "" {
		logging.Debug().Str("cache", CachePlaylists).Msg("upsert without id dropped")
		return
	}

	p.CachedAt = pc.now()
	if err := pc.col.upsert(ctx, p); err != nil {
		logging.Debug().Str("cache", CachePlaylists).Str("id", p.ID).Err(err).Msg("cache upsert dropped")
		return
	}
	pc.mgr.publishChanged(ctx, CachePlaylists, pc.col.view.size())
}

// Stale reports whether the playlist snapshot is missing or older than
// maxAgeHours.
func (pc *PlaylistCache) Stale(ctx context.Context, maxAgeHours int) bool {
	return pc.col.stale(ctx, pc.now(), maxAgeHours)
}

// Info returns {count, lastCachedAt} for the playlist snapshot.
func (pc *PlaylistCache) Info(ctx context.Context) models.CacheInfo {
	return pc.col.info(ctx)
}

// SmartPlaylistCache serves the smart playlist snapshot. Smart playlists
// are evaluated remotely, so the cache is refresh-only: no upserts.
type SmartPlaylistCache struct {
	col *collection[models.CachedSmartPlaylist]
	now func() time.Time
}

func newSmartPlaylistCache(st *store.Store, now func() time.Time) *SmartPlaylistCache {
	return &SmartPlaylistCache{
		col: newCollection[models.CachedSmartPlaylist](store.CollectionSmartPlaylists, CacheSmartPlaylists, st),
		now: now,
	}
}

// GetAll returns every cached smart playlist ordered by id.
func (sc *SmartPlaylistCache) GetAll() []models.CachedSmartPlaylist {
	return sc.col.view.all()
}

// GetByID returns one cached smart playlist.
func (sc *SmartPlaylistCache) GetByID(id string) (models.CachedSmartPlaylist, bool) {
	return sc.col.view.get(id)
}

// Search returns the smart playlists matching pred, ordered by id.
func (sc *SmartPlaylistCache) Search(pred func(models.CachedSmartPlaylist) bool) []models.CachedSmartPlaylist {
	return sc.col.view.filter(pred)
}

// Stale reports whether the smart playlist snapshot is missing or older
// than maxAgeHours.
func (sc *SmartPlaylistCache) Stale(ctx context.Context, maxAgeHours int) bool {
	return sc.col.stale(ctx, sc.now(), maxAgeHours)
}

// Info returns {count, lastCachedAt} for the smart playlist snapshot.
func (sc *SmartPlaylistCache) Info(ctx context.Context) models.CacheInfo {
	return sc.col.info(ctx)
}
