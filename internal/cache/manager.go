// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phonotheca/phonotheca/internal/events"
	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

// Cache names used in logs, metrics labels and events.
const (
	CacheTracks         = "tracks"
	CachePlaylists      = "playlists"
	CacheSmartPlaylists = "smart_playlists"
	CacheFavorites      = "favorites"
	CacheProfile        = "profile"
)

// ErrRefreshFetchFailed marks a refresh whose remote fetch failed. The prior
// snapshot is preserved and the error never leaves this package; it exists
// for logs and metrics.
var ErrRefreshFetchFailed = errors.New("cache refresh fetch failed")

// Fetcher is the slice of the remote client the caches need.
type Fetcher interface {
	FetchTracks(ctx context.Context) ([]models.CachedTrack, error)
	FetchPlaylists(ctx context.Context) ([]models.CachedPlaylist, error)
	FetchSmartPlaylists(ctx context.Context) ([]models.CachedSmartPlaylist, error)
	FetchFavorites(ctx context.Context, profileID string) (models.CachedFavorites, error)
	FetchProfile(ctx context.Context, profileID string) (models.CachedProfile, error)
}

// ProfileSource supplies the registered profile id, or "" when the device
// has not registered yet.
type ProfileSource interface {
	ProfileID(ctx context.Context) string
}

// Manager owns the five entity caches and coordinates their refreshes.
type Manager struct {
	fetcher Fetcher
	profile ProfileSource
	bus     *events.Bus
	now     func() time.Time

	tracks    *TrackCache
	playlists *PlaylistCache
	smart     *SmartPlaylistCache
	favorites *FavoritesCache
	profiles  *ProfileCache
}

// NewManager creates the cache manager. st is nil when durable storage is
// unavailable; fetcher is nil when no remote service is configured; profile
// and bus may each be nil. All four degrade to no-ops, never to errors.
func NewManager(st *store.Store, fetcher Fetcher, profile ProfileSource, bus *events.Bus) *Manager {
	m := &Manager{
		fetcher: fetcher,
		profile: profile,
		bus:     bus,
		now:     time.Now,
	}
	// Closure rather than the func value, so a clock override on the
	// manager reaches the caches too.
	clock := func() time.Time { return m.now() }
	m.tracks = newTrackCache(st, clock)
	m.playlists = newPlaylistCache(st, clock, m)
	m.smart = newSmartPlaylistCache(st, clock)
	m.favorites = newFavoritesCache(st, clock, m)
	m.profiles = newProfileCache(st, clock)
	return m
}

// Tracks returns the track cache.
func (m *Manager) Tracks() *TrackCache { return m.tracks }

// Playlists returns the playlist cache.
func (m *Manager) Playlists() *PlaylistCache { return m.playlists }

// SmartPlaylists returns the smart playlist cache.
func (m *Manager) SmartPlaylists() *SmartPlaylistCache { return m.smart }

// Favorites returns the favorites cache.
func (m *Manager) Favorites() *FavoritesCache { return m.favorites }

// Profiles returns the profile cache.
func (m *Manager) Profiles() *ProfileCache { return m.profiles }

// Warm loads every durable collection into its in-memory view. Called once
// at startup, before the engine starts serving reads.
func (m *Manager) Warm(ctx context.Context) {
	m.tracks.col.warm(ctx)
	m.playlists.col.warm(ctx)
	m.smart.col.warm(ctx)
	m.favorites.col.warm(ctx)
	m.profiles.col.warm(ctx)
	m.tracks.rebuildSuggest()
}

// RefreshAll refreshes every cache. Refreshes are independent: one cache
// failing to fetch does not stop the others, and each failure preserves
// that cache's previous snapshot.
func (m *Manager) RefreshAll(ctx context.Context) {
	m.RefreshTracks(ctx)
	m.RefreshPlaylists(ctx)
	m.RefreshSmartPlaylists(ctx)
	m.RefreshFavorites(ctx)
	m.RefreshProfile(ctx)
}

// RefreshTracks replaces the track snapshot from the remote service.
func (m *Manager) RefreshTracks(ctx context.Context) {
	ok := refreshCollection(ctx, m, m.tracks.col, func(ctx context.Context) ([]models.CachedTrack, error) {
		items, err := m.fetcher.FetchTracks(ctx)
		if err != nil {
			return nil, err
		}
		now := m.now()
		for i := range items {
			items[i].CachedAt = now
		}
		return items, nil
	})
	if ok {
		m.tracks.rebuildSuggest()
	}
}

// RefreshPlaylists replaces the playlist snapshot from the remote service.
func (m *Manager) RefreshPlaylists(ctx context.Context) {
	refreshCollection(ctx, m, m.playlists.col, func(ctx context.Context) ([]models.CachedPlaylist, error) {
		items, err := m.fetcher.FetchPlaylists(ctx)
		if err != nil {
			return nil, err
		}
		now := m.now()
		for i := range items {
			items[i].CachedAt = now
		}
		return items, nil
	})
}

// RefreshSmartPlaylists replaces the smart playlist snapshot from the
// remote service.
func (m *Manager) RefreshSmartPlaylists(ctx context.Context) {
	refreshCollection(ctx, m, m.smart.col, func(ctx context.Context) ([]models.CachedSmartPlaylist, error) {
		items, err := m.fetcher.FetchSmartPlaylists(ctx)
		if err != nil {
			return nil, err
		}
		now := m.now()
		for i := range items {
			items[i].CachedAt = now
		}
		return items, nil
	})
}

// RefreshFavorites replaces the favorites snapshot for the registered
// profile. Skipped silently while the device has no profile yet.
func (m *Manager) RefreshFavorites(ctx context.Context) {
	profileID := m.profileID(ctx)
	if profileID == "" {
		logging.Debug().Str("cache", CacheFavorites).Msg("no profile registered, cache refresh skipped")
		return
	}

	refreshCollection(ctx, m, m.favorites.col, func(ctx context.Context) ([]models.CachedFavorites, error) {
		f, err := m.fetcher.FetchFavorites(ctx, profileID)
		if err != nil {
			return nil, err
		}
		f.CachedAt = m.now()
		return []models.CachedFavorites{f}, nil
	})
}

// RefreshProfile replaces the profile snapshot for the registered profile.
// Skipped silently while the device has no profile yet.
func (m *Manager) RefreshProfile(ctx context.Context) {
	profileID := m.profileID(ctx)
	if profileID == "" {
		logging.Debug().Str("cache", CacheProfile).Msg("no profile registered, cache refresh skipped")
		return
	}

	refreshCollection(ctx, m, m.profiles.col, func(ctx context.Context) ([]models.CachedProfile, error) {
		p, err := m.fetcher.FetchProfile(ctx, profileID)
		if err != nil {
			return nil, err
		}
		p.CachedAt = m.now()
		return []models.CachedProfile{p}, nil
	})
}

// RefreshStale refreshes only the caches whose snapshot is missing or older
// than maxAgeHours, leaving fresh snapshots alone.
func (m *Manager) RefreshStale(ctx context.Context, maxAgeHours int) {
	if m.tracks.Stale(ctx, maxAgeHours) {
		m.RefreshTracks(ctx)
	}
	if m.playlists.Stale(ctx, maxAgeHours) {
		m.RefreshPlaylists(ctx)
	}
	if m.smart.Stale(ctx, maxAgeHours) {
		m.RefreshSmartPlaylists(ctx)
	}
	if m.favorites.Stale(ctx, maxAgeHours) {
		m.RefreshFavorites(ctx)
	}
	if m.profiles.Stale(ctx, maxAgeHours) {
		m.RefreshProfile(ctx)
	}
}

// InfoAll returns the info snapshot of every cache, keyed by cache name.
func (m *Manager) InfoAll(ctx context.Context) map[string]models.CacheInfo {
	return map[string]models.CacheInfo{
		CacheTracks:         m.tracks.Info(ctx),
		CachePlaylists:      m.playlists.Info(ctx),
		CacheSmartPlaylists: m.smart.Info(ctx),
		CacheFavorites:      m.favorites.Info(ctx),
		CacheProfile:        m.profiles.Info(ctx),
	}
}

// AnyStale reports whether at least one cache is stale at the given
// threshold.
func (m *Manager) AnyStale(ctx context.Context, maxAgeHours int) bool {
	return m.tracks.Stale(ctx, maxAgeHours) ||
		m.playlists.Stale(ctx, maxAgeHours) ||
		m.smart.Stale(ctx, maxAgeHours) ||
		m.favorites.Stale(ctx, maxAgeHours) ||
		m.profiles.Stale(ctx, maxAgeHours)
}

func (m *Manager) profileID(ctx context.Context) string {
	if m.profile == nil {
		return ""
	}
	return m.profile.ProfileID(ctx)
}

// publishChanged notifies bus subscribers that a cache's contents changed.
func (m *Manager) publishChanged(ctx context.Context, label string, count int) {
	if m.bus == nil {
		return
	}
	err := m.bus.Publish(ctx, events.TopicCacheRefreshed, events.CacheRefreshed{
		Cache: label,
		Count: count,
		At:    m.now(),
	})
	if err != nil {
		logging.Debug().Str("cache", label).Err(err).Msg("cache change event publish failed")
	}
}

// refreshCollection runs one cache's fetch-and-swap cycle. Any failure
// keeps the previous snapshot and is swallowed after logging and metrics;
// the return value only signals whether a new snapshot was installed.
func refreshCollection[T Entity](ctx context.Context, m *Manager, col *collection[T], fetch func(context.Context) ([]T, error)) bool {
	if col.st == nil {
		logging.Debug().Str("cache", col.label).Msg("storage unavailable, cache refresh skipped")
		return false
	}
	if m.fetcher == nil {
		logging.Debug().Str("cache", col.label).Msg("no remote service configured, cache refresh skipped")
		return false
	}

	start := time.Now()
	items, err := fetch(ctx)
	if err != nil {
		metrics.RecordCacheRefresh(col.label, 0, time.Since(start), fmt.Errorf("%w: %v", ErrRefreshFetchFailed, err))
		logging.Warn().
			Str("cache", col.label).
			Err(err).
			Msg("cache refresh fetch failed, keeping previous snapshot")
		return false
	}

	if err := col.replaceAll(ctx, items); err != nil {
		metrics.RecordCacheRefresh(col.label, 0, time.Since(start), err)
		logging.Warn().
			Str("cache", col.label).
			Err(err).
			Msg("cache refresh swap failed, keeping previous snapshot")
		return false
	}

	metrics.RecordCacheRefresh(col.label, len(items), time.Since(start), nil)
	m.publishChanged(ctx, col.label, len(items))
	logging.Info().Str("cache", col.label).Int("count", len(items)).Msg("cache refreshed")
	return true
}
