// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/phonotheca/phonotheca/internal/logging"
)

type contextKey string

// RequestIDKey is the context key under which the request ID is stored.
const RequestIDKey contextKey = "request_id"

// RequestID middleware generates a unique ID for each request and adds it
// to both the response header and request context. A request-scoped logger
// carrying the ID is embedded in the context so downstream handlers can log
// with zerolog's log.Ctx(r.Context()) and every line is traceable.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Honor an ID set by an upstream proxy
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// Add to response header for client visibility
		w.Header().Set("X-Request-ID", requestID)

		// Add to request context for handlers that need the raw ID
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		// Embed a request-scoped logger for structured tracing
		reqLogger := logging.With().Str("request_id", requestID).Logger()
		ctx = reqLogger.WithContext(ctx)

		next(w, r.WithContext(ctx))
	}
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
