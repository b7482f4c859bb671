// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// ActionType identifies the remote side effect a pending action represents.
// The set is closed: anything else is rejected at enqueue time.
type ActionType string

const (
	// ActionScrobble submits a completed play event (track id + timestamp).
	ActionScrobble ActionType = "scrobble"

	// ActionNowPlaying submits a "currently playing" hint (track id).
	ActionNowPlaying ActionType = "now_playing"

	// ActionSyncRemote asks the remote service to run a favorites/library
	// reconciliation pass.
	ActionSyncRemote ActionType = "sync_remote"

	// ActionFavoriteToggle submits a favorite add or remove.
	ActionFavoriteToggle ActionType = "favorite_toggle"
)

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionScrobble, ActionNowPlaying, ActionSyncRemote, ActionFavoriteToggle:
		return true
	default:
		return false
	}
}

// String returns the wire name of the action type.
func (t ActionType) String() string { return string(t) }

// PendingAction is one durably queued remote mutation.
//
// ID is assigned from a monotonic sequence at enqueue time and, together with
// CreatedAt, fixes the action's position in the strictly FIFO queue. ProfileID
// records the identity that queued the action so actions never leak across a
// profile switch. Payload is opaque to storage and only interpreted by the
// executor for the given Type.
//
// Retries starts at zero and only ever increases. An action whose retry count
// reaches the drain ceiling is evicted rather than reprocessed: a payload that
// cannot execute after repeated attempts is assumed un-executable (malformed,
// referencing deleted data) rather than transiently blocked.
type PendingAction struct {
	ID        uint64          `json:"id"`
	ProfileID string          `json:"profile_id"`
	Type      ActionType      `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Retries   int             `json:"retries"`
}

// DrainResult aggregates the outcome of one outbox drain pass.
// Processed counts actions that executed and were removed; Failed counts
// actions evicted at the retry ceiling. Actions that failed but remain queued
// appear in neither count.
type DrainResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// ScrobblePayload is the payload for ActionScrobble.
type ScrobblePayload struct {
	TrackID  string    `json:"track_id"`
	PlayedAt time.Time `json:"played_at"`
}

// NowPlayingPayload is the payload for ActionNowPlaying.
type NowPlayingPayload struct {
	TrackID string `json:"track_id"`
}

// FavoriteTogglePayload is the payload for ActionFavoriteToggle.
// Favorite true adds the track to the remote favorites, false removes it.
type FavoriteTogglePayload struct {
	TrackID  string `json:"track_id"`
	Favorite bool   `json:"favorite"`
}

// SyncRemotePayload is the payload for ActionSyncRemote. The trigger carries no
// parameters today; the struct exists so future fields stay additive.
type SyncRemotePayload struct{}
