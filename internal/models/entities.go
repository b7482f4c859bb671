// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package models defines the data structures persisted and served by the engine:
// the device identity, the cached entity snapshots, and the outbox actions.

package models

import "time"

// DeviceIdentity is the single record identifying this installation.
//
// DeviceID is generated locally on first launch and never changes. ProfileID is
// issued by the remote service when the device registers and scopes every cached
// favorite and every queued action to this identity. The record is created once,
// read on every outgoing request, and destroyed only by an explicit local reset
// (typically after the remote service signals that the registration is no longer
// recognized).
type DeviceIdentity struct {
	DeviceID  string    `json:"device_id"`
	ProfileID string    `json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CachedTrack is a denormalized snapshot of one library track, carrying enough
// metadata for offline browsing and playback queueing without the canonical
// source.
type CachedTrack struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	Year        int       `json:"year,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	TrackNumber int       `json:"track_number,omitempty"`
	DiscNumber  int       `json:"disc_number,omitempty"`
	CachedAt    time.Time `json:"cached_at"`
}

// CachedPlaylist is a snapshot of a user playlist. Playlists store only ordered
// track ids, never denormalized track data; playback resolves them against the
// track cache.
type CachedPlaylist struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	TrackIDs []string  `json:"track_ids"`
	CachedAt time.Time `json:"cached_at"`
}

// CachedSmartPlaylist is a snapshot of a rule-based playlist. The rule set is
// opaque to the engine; the remote service evaluates it and the snapshot carries
// the resolved track ids alongside the rules for display.
type CachedSmartPlaylist struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Rules    string    `json:"rules,omitempty"`
	TrackIDs []string  `json:"track_ids"`
	CachedAt time.Time `json:"cached_at"`
}

// CachedFavorites is the favorite-track set for one profile. Favorites are a set
// keyed per identity rather than an entity with its own id, so the profile id is
// the primary key.
type CachedFavorites struct {
	ProfileID string    `json:"profile_id"`
	TrackIDs  []string  `json:"track_ids"`
	CachedAt  time.Time `json:"cached_at"`
}

// CachedProfile is a snapshot of the remote user profile.
type CachedProfile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	CachedAt time.Time `json:"cached_at"`
}

// CacheInfo describes one entity cache for staleness checks and status
// displays. It is derived from the cached records themselves on each call;
// there is no separately maintained counter to drift out of sync.
type CacheInfo struct {
	Count        int        `json:"count"`
	LastCachedAt *time.Time `json:"last_cached_at"`
}

// Key returns the primary key of the track.
func (t CachedTrack) Key() string { return t.ID }

// CacheTime returns the snapshot timestamp of the track.
func (t CachedTrack) CacheTime() time.Time { return t.CachedAt }

// Key returns the primary key of the playlist.
func (p CachedPlaylist) Key() string { return p.ID }

// CacheTime returns the snapshot timestamp of the playlist.
func (p CachedPlaylist) CacheTime() time.Time { return p.CachedAt }

// Key returns the primary key of the smart playlist.
func (p CachedSmartPlaylist) Key() string { return p.ID }

// CacheTime returns the snapshot timestamp of the smart playlist.
func (p CachedSmartPlaylist) CacheTime() time.Time { return p.CachedAt }

// Key returns the owning profile id, which is the primary key for a favorites set.
func (f CachedFavorites) Key() string { return f.ProfileID }

// CacheTime returns the snapshot timestamp of the favorites set.
func (f CachedFavorites) CacheTime() time.Time { return f.CachedAt }

// Key returns the primary key of the profile.
func (p CachedProfile) Key() string { return p.ID }

// CacheTime returns the snapshot timestamp of the profile.
func (p CachedProfile) CacheTime() time.Time { return p.CachedAt }
