// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Playlists handles GET /api/v1/playlists.
//
// @Summary List cached playlists
// @Description Returns every cached playlist (ordered track ids, no denormalized track data).
// @Tags Library
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.CachedPlaylist} "Playlists"
// @Router /playlists [get]
func (h *Handler) Playlists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.caches.Playlists().GetAll(), start, true)
}

// PlaylistByID handles GET /api/v1/playlists/{id}.
//
// @Summary Get one playlist
// @Description Returns one cached playlist by id.
// @Tags Library
// @Produce json
// @Param id path string true "Playlist id"
// @Success 200 {object} models.APIResponse{data=models.CachedPlaylist} "Playlist"
// @Failure 404 {object} models.APIResponse "Unknown playlist"
// @Router /playlists/{id} [get]
func (h *Handler) PlaylistByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	p, ok := h.caches.Playlists().GetByID(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Playlist not found in cache", nil)
		return
	}
	respondSuccess(w, p, start, true)
}

// SmartPlaylists handles GET /api/v1/smart-playlists.
//
// @Summary List cached smart playlists
// @Description Returns every cached smart playlist with its opaque rule set and resolved track ids.
// @Tags Library
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.CachedSmartPlaylist} "Smart playlists"
// @Router /smart-playlists [get]
func (h *Handler) SmartPlaylists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.caches.SmartPlaylists().GetAll(), start, true)
}

// Favorites handles GET /api/v1/favorites. Scoped to the registered
// profile; an empty favorites set and an unregistered device look the same.
//
// @Summary Get cached favorites
// @Description Returns the favorite track ids for the registered profile.
// @Tags Library
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.CachedFavorites} "Favorites"
// @Router /favorites [get]
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	profileID := ""
	if h.identity != nil {
		profileID = h.identity.ProfileID(ctx)
	}

	favs, _ := h.caches.Favorites().For(profileID)
	favs.ProfileID = profileID
	respondSuccess(w, favs, start, true)
}

// Profile handles GET /api/v1/profile.
//
// @Summary Get cached profile
// @Description Returns the cached remote profile for the registered identity.
// @Tags Library
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.CachedProfile} "Profile"
// @Failure 404 {object} models.APIResponse "No profile cached"
// @Router /profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	profileID := ""
	if h.identity != nil {
		profileID = h.identity.ProfileID(ctx)
	}

	p, ok := h.caches.Profiles().GetByID(profileID)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No profile cached yet", nil)
		return
	}
	respondSuccess(w, p, start, true)
}
