// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// HTTP request validation structs with go-playground/validator tags. Query
// parameters and bodies are bound to these before any handler logic runs.
//
// Tag syntax follows go-playground/validator v10:
//   - required: field must be present and non-zero
//   - min,max / gte,lte: numeric or string length bounds
//   - oneof: value must be one of the listed options
//   - action: value must be a known outbox action type (custom tag)
//   - omitempty: skip validation when the field is empty/zero

package api

// TrackSearchRequest holds the validated query parameters for
// GET /tracks/search.
type TrackSearchRequest struct {
	Query string `validate:"required,min=1,max=256"`
	Limit int    `validate:"min=1,max=1000"`
}

// TrackBrowseRequest holds the validated query parameters for GET /tracks.
// Artist and Album are exact-match filters resolved via store indexes; both
// empty lists the whole cache.
type TrackBrowseRequest struct {
	Artist string `validate:"omitempty,max=512"`
	Album  string `validate:"omitempty,max=512"`
	Limit  int    `validate:"min=1,max=5000"`
}

// TrackSuggestRequest holds the validated query parameters for
// GET /tracks/suggest (typeahead).
type TrackSuggestRequest struct {
	Field  string `validate:"required,oneof=title artist album"`
	Prefix string `validate:"required,min=1,max=256"`
	Limit  int    `validate:"min=1,max=50"`
}

// ResolveIDsRequest is the body for POST /tracks/resolve. Order of the
// response follows the request; unknown ids are skipped.
type ResolveIDsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=10000,dive,min=1,max=256"`
}

// CacheRefreshRequest holds the validated query parameters for
// POST /cache/refresh.
type CacheRefreshRequest struct {
	Kind string `validate:"omitempty,oneof=tracks playlists smart_playlists favorites profile all"`
}

// EnqueueActionRequest is the body for POST /outbox. Payload is passed to
// the queue as-is; its shape is validated against Type by the executor at
// drain time.
type EnqueueActionRequest struct {
	Type    string      `json:"type" validate:"required,action"`
	Payload interface{} `json:"payload,omitempty"`
}

// ConnectivityAssertRequest is the body for POST /connectivity. External
// tooling with native reachability detection can assert the verdict instead
// of waiting for the next probe.
type ConnectivityAssertRequest struct {
	Online *bool `json:"online" validate:"required"`
}
