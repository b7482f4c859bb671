// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and user-friendly error
// messages. It integrates with the control API's error format for consistent
// error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the control API's error format
//   - Custom "action" validator for outbox action type strings
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type EnqueueActionRequest struct {
//	    Type    string          `validate:"required,action"`
//	    Payload json.RawMessage `validate:"required"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req EnqueueActionRequest
//	    if err := json.Decode(r.Body, &req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - url: Valid URL format
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lte=n: Less than or equal to n
//   - gt=n: Greater than n
//   - lt=n: Less than n
//   - min=n: Minimum value n
//   - max=n: Maximum value n
//
// Enum validations:
//   - oneof=a b c: Must be one of the specified values
//   - action: Must be a valid outbox action type
//
// # Error Types
//
// ValidationError represents a single field validation failure:
//
//	type ValidationError struct {
//	    Field()   string      // Struct field name
//	    Tag()     string      // Validation tag that failed
//	    Param()   string      // Tag parameter (e.g., "500" for max=500)
//	    Value()   interface{} // Actual value that failed
//	    Error()   string      // Human-readable message
//	}
//
// RequestValidationError aggregates multiple field errors:
//
//	type RequestValidationError struct {
//	    Errors() []ValidationError
//	    Error()  string           // Combined message
//	    ToAPIError() *APIError    // Convert to API error format
//	}
//
// # API Error Integration
//
// The ToAPIError method produces errors matching the control API format:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Type must be a valid action type (scrobble, now_playing, sync_remote, favorite_toggle)",
//	    "details": {"field": "Type", "tag": "action", "value": "like"}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Query: is required; Limit: must be at most 500",
//	    "details": {
//	        "fields": [
//	            {"field": "Query", "tag": "required", "message": "..."},
//	            {"field": "Limit", "tag": "max", "message": "..."}
//	        ]
//	    }
//	}
//
// # Error Message Translation
//
// Human-readable messages are generated for common validation tags:
//
//	required   -> "Query is required"
//	min=1      -> "Query must be at least 1 characters"
//	max=500    -> "Limit must be at most 500"
//	gte=1      -> "Limit must be greater than or equal to 1"
//	lte=500    -> "Limit must be less than or equal to 500"
//	oneof=a b  -> "Kind must be one of: a b"
//	action     -> "Type must be a valid action type (...)"
//
// # Struct Tag Examples
//
// Track search validation:
//
//	type TrackSearchRequest struct {
//	    Query string `validate:"required,min=1,max=256"`
//	    Limit int    `validate:"min=1,max=500"`
//	}
//
// Cache refresh validation:
//
//	type CacheRefreshRequest struct {
//	    Kind string `validate:"omitempty,oneof=tracks playlists smart_playlists favorites profile all"`
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # Performance
//
// The validator caches struct reflection information:
//   - First validation of a struct type: ~1ms (reflection + caching)
//   - Subsequent validations: ~10us (cached)
//   - Memory: ~500 bytes per cached struct type
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
