// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"
	"time"

	"github.com/phonotheca/phonotheca/internal/models"
)

// TrackSearch handles GET /api/v1/tracks/search.
//
// @Summary Search cached tracks
// @Description Case-insensitive substring search across title, artist, and album of the in-memory track cache. Works fully offline.
// @Tags Tracks
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Maximum results (default 100, max 1000)"
// @Success 200 {object} models.APIResponse{data=models.TracksResponse} "Matching tracks"
// @Failure 400 {object} models.APIResponse "Invalid parameters"
// @Router /tracks/search [get]
func (h *Handler) TrackSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := TrackSearchRequest{
		Query: r.URL.Query().Get("q"),
		Limit: getIntParam(r, "limit", 100),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	tracks := h.caches.Tracks().SearchText(req.Query)
	total := len(tracks)
	if len(tracks) > req.Limit {
		tracks = tracks[:req.Limit]
	}

	respondSuccess(w, models.TracksResponse{Total: total, Tracks: tracks}, start, true)
}

// TrackBrowse handles GET /api/v1/tracks. With an artist or album filter the
// lookup goes through the store's secondary indexes; without one it lists
// the in-memory snapshot.
//
// @Summary Browse cached tracks
// @Description Lists cached tracks, optionally filtered by exact artist or album (resolved via store indexes).
// @Tags Tracks
// @Produce json
// @Param artist query string false "Exact artist filter"
// @Param album query string false "Exact album filter"
// @Param limit query int false "Maximum results (default 500, max 5000)"
// @Success 200 {object} models.APIResponse{data=models.TracksResponse} "Tracks"
// @Failure 400 {object} models.APIResponse "Invalid parameters"
// @Router /tracks [get]
func (h *Handler) TrackBrowse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	req := TrackBrowseRequest{
		Artist: r.URL.Query().Get("artist"),
		Album:  r.URL.Query().Get("album"),
		Limit:  getIntParam(r, "limit", 500),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	var tracks []models.CachedTrack
	switch {
	case req.Artist != "":
		tracks = h.caches.Tracks().ByArtist(ctx, req.Artist)
	case req.Album != "":
		tracks = h.caches.Tracks().ByAlbum(ctx, req.Album)
	default:
		tracks = h.caches.Tracks().GetAll()
	}

	total := len(tracks)
	if len(tracks) > req.Limit {
		tracks = tracks[:req.Limit]
	}

	respondSuccess(w, models.TracksResponse{Total: total, Tracks: tracks}, start, true)
}

// TrackArtists handles GET /api/v1/tracks/artists.
//
// @Summary List distinct artists
// @Description Returns the distinct artist values from the track cache's artist index, sorted.
// @Tags Tracks
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]string} "Artists"
// @Router /tracks/artists [get]
func (h *Handler) TrackArtists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.caches.Tracks().Artists(r.Context()), start, true)
}

// TrackAlbums handles GET /api/v1/tracks/albums.
//
// @Summary List distinct albums
// @Description Returns the distinct album values from the track cache's album index, sorted.
// @Tags Tracks
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]string} "Albums"
// @Router /tracks/albums [get]
func (h *Handler) TrackAlbums(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.caches.Tracks().Albums(r.Context()), start, true)
}

// TrackSuggest handles GET /api/v1/tracks/suggest (typeahead).
//
// @Summary Typeahead suggestions
// @Description Returns prefix-matched completions for one track field from the in-memory suggestion index.
// @Tags Tracks
// @Produce json
// @Param field query string true "Field to complete" Enums(title, artist, album)
// @Param prefix query string true "Prefix to complete"
// @Param limit query int false "Maximum suggestions (default 10, max 50)"
// @Success 200 {object} models.APIResponse{data=models.SuggestResponse} "Suggestions"
// @Failure 400 {object} models.APIResponse "Invalid parameters"
// @Router /tracks/suggest [get]
func (h *Handler) TrackSuggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := TrackSuggestRequest{
		Field:  r.URL.Query().Get("field"),
		Prefix: r.URL.Query().Get("prefix"),
		Limit:  getIntParam(r, "limit", 10),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	respondSuccess(w, models.SuggestResponse{
		Field:       req.Field,
		Prefix:      req.Prefix,
		Suggestions: h.caches.Tracks().Suggest(req.Field, req.Prefix, req.Limit),
	}, start, true)
}

// TrackResolve handles POST /api/v1/tracks/resolve. Used by playlist views
// to expand ordered track-id lists into track metadata in one round trip.
//
// @Summary Resolve track ids
// @Description Resolves a list of track ids against the cache, preserving request order and skipping unknown ids.
// @Tags Tracks
// @Accept json
// @Produce json
// @Param ids body ResolveIDsRequest true "Track ids to resolve"
// @Success 200 {object} models.APIResponse{data=models.TracksResponse} "Resolved tracks"
// @Failure 400 {object} models.APIResponse "Invalid body"
// @Router /tracks/resolve [post]
func (h *Handler) TrackResolve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ResolveIDsRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	tracks := h.caches.Tracks().ResolveIDs(req.IDs)
	respondSuccess(w, models.TracksResponse{Total: len(tracks), Tracks: tracks}, start, true)
}
