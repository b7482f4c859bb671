// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"
	"time"

	"github.com/phonotheca/phonotheca/internal/cache"
)

// CacheInfo handles GET /api/v1/cache.
//
// @Summary Per-cache info
// @Description Returns record count and last snapshot time for every entity cache.
// @Tags Cache
// @Produce json
// @Success 200 {object} models.APIResponse{data=map[string]models.CacheInfo} "Cache info retrieved"
// @Router /cache [get]
func (h *Handler) CacheInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.caches.InfoAll(r.Context()), start, true)
}

// CacheRefresh handles POST /api/v1/cache/refresh. The refresh runs
// synchronously: the response reports the post-refresh cache info, so a
// failed fetch shows up as an unchanged snapshot age rather than an error.
//
// @Summary Refresh entity caches
// @Description Triggers a refresh of one cache (kind=tracks|playlists|smart_playlists|favorites|profile) or all of them. A fetch failure preserves the previous snapshot.
// @Tags Cache
// @Produce json
// @Param kind query string false "Cache to refresh (default all)" Enums(tracks, playlists, smart_playlists, favorites, profile, all)
// @Success 200 {object} models.APIResponse{data=map[string]models.CacheInfo} "Post-refresh cache info"
// @Failure 400 {object} models.APIResponse "Unknown cache kind"
// @Router /cache/refresh [post]
func (h *Handler) CacheRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	req := CacheRefreshRequest{Kind: r.URL.Query().Get("kind")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	switch req.Kind {
	case cache.CacheTracks:
		h.caches.RefreshTracks(ctx)
	case cache.CachePlaylists:
		h.caches.RefreshPlaylists(ctx)
	case cache.CacheSmartPlaylists:
		h.caches.RefreshSmartPlaylists(ctx)
	case cache.CacheFavorites:
		h.caches.RefreshFavorites(ctx)
	case cache.CacheProfile:
		h.caches.RefreshProfile(ctx)
	default: // "" or "all"
		h.caches.RefreshAll(ctx)
	}

	respondSuccess(w, h.caches.InfoAll(ctx), start, false)
}
