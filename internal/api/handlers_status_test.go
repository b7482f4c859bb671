// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/phonotheca/phonotheca/internal/cache"
	"github.com/phonotheca/phonotheca/internal/models"
)

func (f *stubFetcher) setTracks(tracks []models.CachedTrack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks = tracks
}

func (f *stubFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestStatus(t *testing.T) {
	e := newTestEngine(t)

	status, env := e.get(t, "/api/v1/status")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	data := decodeData[models.StatusResponse](t, env)
	if data.Version != "test" {
		t.Errorf("version = %q, want test", data.Version)
	}
	if !data.Online {
		t.Error("online = false, want true")
	}
	if data.Draining {
		t.Error("draining = true, want false")
	}
	if !data.Storage.Available {
		t.Error("storage available = false, want true")
	}
	if data.Storage.Path == "" {
		t.Error("storage path is empty")
	}
	if data.PendingActions != 0 {
		t.Errorf("pending_actions = %d, want 0", data.PendingActions)
	}

	wantCounts := map[string]int{
		cache.CacheTracks:         4,
		cache.CachePlaylists:      2,
		cache.CacheSmartPlaylists: 1,
		cache.CacheFavorites:      1,
		cache.CacheProfile:        1,
	}
	if len(data.Caches) != len(wantCounts) {
		t.Errorf("caches = %d entries, want %d", len(data.Caches), len(wantCounts))
	}
	for name, want := range wantCounts {
		info, ok := data.Caches[name]
		if !ok {
			t.Errorf("caches missing %q", name)
			continue
		}
		if info.Count != want {
			t.Errorf("cache %s count = %d, want %d", name, info.Count, want)
		}
		if info.LastCachedAt == nil {
			t.Errorf("cache %s has no snapshot time", name)
		}
	}
}

func TestStatus_TracksQueueDepth(t *testing.T) {
	e := newTestEngine(t)

	e.post(t, "/api/v1/outbox", EnqueueActionRequest{
		Type:    "now_playing",
		Payload: models.NowPlayingPayload{TrackID: "t1"},
	})

	_, env := e.get(t, "/api/v1/status")
	data := decodeData[models.StatusResponse](t, env)
	if data.PendingActions != 1 {
		t.Errorf("pending_actions = %d, want 1", data.PendingActions)
	}
}

func TestCacheInfo(t *testing.T) {
	e := newTestEngine(t)

	status, env := e.get(t, "/api/v1/cache")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	infos := decodeData[map[string]models.CacheInfo](t, env)
	if len(infos) != 5 {
		t.Fatalf("caches = %d entries, want 5", len(infos))
	}
	if infos[cache.CacheTracks].Count != 4 {
		t.Errorf("tracks count = %d, want 4", infos[cache.CacheTracks].Count)
	}
}

func TestCacheRefresh_SingleKind(t *testing.T) {
	e := newTestEngine(t)

	now := time.Now().UTC()
	e.fetcher.setTracks([]models.CachedTrack{
		{ID: "t1", Title: "Harvest Moon", Artist: "Neil Young", Album: "Harvest Moon", CachedAt: now},
		{ID: "t5", Title: "Old Man", Artist: "Neil Young", Album: "Harvest", CachedAt: now},
	})

	status, env := e.post(t, "/api/v1/cache/refresh?kind=tracks", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if env.Metadata.Cached {
		t.Error("metadata.cached = true, want false for a refresh")
	}

	infos := decodeData[map[string]models.CacheInfo](t, env)
	if infos[cache.CacheTracks].Count != 2 {
		t.Errorf("tracks count = %d, want 2 after snapshot replace", infos[cache.CacheTracks].Count)
	}
	// Other caches are untouched by a single-kind refresh.
	if infos[cache.CachePlaylists].Count != 2 {
		t.Errorf("playlists count = %d, want 2", infos[cache.CachePlaylists].Count)
	}
}

func TestCacheRefresh_All(t *testing.T) {
	e := newTestEngine(t)

	e.fetcher.setTracks(nil)

	status, env := e.post(t, "/api/v1/cache/refresh", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	infos := decodeData[map[string]models.CacheInfo](t, env)
	if infos[cache.CacheTracks].Count != 0 {
		t.Errorf("tracks count = %d, want 0 after empty snapshot", infos[cache.CacheTracks].Count)
	}
	if infos[cache.CacheProfile].Count != 1 {
		t.Errorf("profile count = %d, want 1", infos[cache.CacheProfile].Count)
	}
}

func TestCacheRefresh_FetchFailureKeepsSnapshot(t *testing.T) {
	e := newTestEngine(t)

	e.fetcher.setErr(errors.New("remote is down"))

	status, env := e.post(t, "/api/v1/cache/refresh?kind=tracks", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (failed refresh is not an http error)", status)
	}

	infos := decodeData[map[string]models.CacheInfo](t, env)
	if infos[cache.CacheTracks].Count != 4 {
		t.Errorf("tracks count = %d, want 4 (previous snapshot preserved)", infos[cache.CacheTracks].Count)
	}
}

func TestCacheRefresh_UnknownKind(t *testing.T) {
	e := newTestEngine(t)

	status, env := e.post(t, "/api/v1/cache/refresh?kind=albums", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}
