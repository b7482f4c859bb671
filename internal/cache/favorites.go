// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package cache

import (
	"context"
	"slices"
	"time"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

// FavoritesCache serves the favorite sets, keyed by profile id. Favorites
// support upserts so an optimistic local toggle is visible before the
// queued action reaches the remote service.
type FavoritesCache struct {
	col *collection[models.CachedFavorites]
	now func() time.Time
	mgr *Manager
}

func newFavoritesCache(st *store.Store, now func() time.Time, mgr *Manager) *FavoritesCache {
	return &FavoritesCache{
		col: newCollection[models.CachedFavorites](store.CollectionFavorites, CacheFavorites, st),
		now: now,
		mgr: mgr,
	}
}

// For returns the favorite set of one profile.
func (fc *FavoritesCache) For(profileID string) (models.CachedFavorites, bool) {
	return fc.col.view.get(profileID)
}

// GetAll returns every cached favorite set ordered by profile id.
func (fc *FavoritesCache) GetAll() []models.CachedFavorites {
	return fc.col.view.all()
}

// IsFavorite reports whether a track is in a profile's favorite set.
func (fc *FavoritesCache) IsFavorite(profileID, trackID string) bool {
	f, ok := fc.col.view.get(profileID)
	if !ok {
		return false
	}
	return slices.Contains(f.TrackIDs, trackID)
}

// Toggle flips one track in a profile's cached favorite set and upserts
// the result. It is the optimistic local half of a favorite_toggle action;
// the authoritative set arrives with the next favorites refresh.
func (fc *FavoritesCache) Toggle(ctx context.Context, profileID, trackID string) {
	if profileID == "" || trackID == "" {
		return
	}

	f, ok := fc.col.view.get(profileID)
	if !ok {
		f = models.CachedFavorites{ProfileID: profileID}
	}

	if i := slices.Index(f.TrackIDs, trackID); i >= 0 {
		f.TrackIDs = slices.Delete(slices.Clone(f.TrackIDs), i, i+1)
	} else {
		f.TrackIDs = append(slices.Clone(f.TrackIDs), trackID)
	}

	fc.Upsert(ctx, f)
}

// Upsert writes one profile's favorite set into the cache. The record is
// stamped with the write time. Storage failures are swallowed; with
// storage unavailable the write is dropped.
func (fc *FavoritesCache) Upsert(ctx context.Context, f models.CachedFavorites) {
	if f.ProfileID == "" {
		logging.Debug().Str("cache", CacheFavorites).Msg("upsert without profile id dropped")
		return
	}

	f.CachedAt = fc.now()
	if err := fc.col.upsert(ctx, f); err != nil {
		logging.Debug().Str("cache", CacheFavorites).Str("profile_id", f.ProfileID).Err(err).Msg("cache upsert dropped")
		return
	}
	fc.mgr.publishChanged(ctx, CacheFavorites, fc.col.view.size())
}

// Stale reports whether the favorites snapshot is missing or older than
// maxAgeHours.
func (fc *FavoritesCache) Stale(ctx context.Context, maxAgeHours int) bool {
	return fc.col.stale(ctx, fc.now(), maxAgeHours)
}

// Info returns {count, lastCachedAt} for the favorites snapshot.
func (fc *FavoritesCache) Info(ctx context.Context) models.CacheInfo {
	return fc.col.info(ctx)
}

// ProfileCache serves the user profile snapshot. Refresh-only: the profile
// is edited on the remote service, never locally.
type ProfileCache struct {
	col *collection[models.CachedProfile]
	now func() time.Time
}

func newProfileCache(st *store.Store, now func() time.Time) *ProfileCache {
	return &ProfileCache{
		col: newCollection[models.CachedProfile](store.CollectionProfiles, CacheProfile, st),
		now: now,
	}
}

// GetAll returns every cached profile ordered by id.
func (pc *ProfileCache) GetAll() []models.CachedProfile {
	return pc.col.view.all()
}

// GetByID returns one cached profile.
func (pc *ProfileCache) GetByID(id string) (models.CachedProfile, bool) {
	return pc.col.view.get(id)
}

// Stale reports whether the profile snapshot is missing or older than
// maxAgeHours.
func (pc *ProfileCache) Stale(ctx context.Context, maxAgeHours int) bool {
	return pc.col.stale(ctx, pc.now(), maxAgeHours)
}

// Info returns {count, lastCachedAt} for the profile snapshot.
func (pc *ProfileCache) Info(ctx context.Context) models.CacheInfo {
	return pc.col.info(ctx)
}
