// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/phonotheca/phonotheca/internal/logging"
)

// Mode selects how the control API authenticates requests.
type Mode string

const (
	// ModeNone disables authentication. Config validation only permits this
	// when the server binds a loopback address.
	ModeNone Mode = "none"

	// ModeBasic requires HTTP Basic credentials on every request.
	ModeBasic Mode = "basic"
)

type contextKey string

// UserContextKey is the context key under which the authenticated username
// is stored.
const UserContextKey contextKey = "auth_user"

// Middleware enforces the configured authentication mode on API handlers.
type Middleware struct {
	basic *BasicAuthManager
	mode  Mode
}

// NewMiddleware creates authentication middleware for the given mode.
// ModeBasic requires non-empty credentials; ModeNone ignores them.
func NewMiddleware(mode Mode, username, password string) (*Middleware, error) {
	switch mode {
	case ModeNone:
		return &Middleware{mode: ModeNone}, nil
	case ModeBasic:
		manager, err := NewBasicAuthManager(username, password)
		if err != nil {
			return nil, fmt.Errorf("basic auth setup: %w", err)
		}
		return &Middleware{mode: ModeBasic, basic: manager}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}

// Authenticate is middleware that enforces authentication.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.sendChallenge(w, "Unauthorized: authentication required")
			return
		}

		username, err := m.basic.ValidateCredentials(authHeader)
		if err != nil {
			logging.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("basic auth validation failed")
			m.sendChallenge(w, "Unauthorized: invalid credentials")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, username)
		next(w, r.WithContext(ctx))
	}
}

// sendChallenge sends a WWW-Authenticate challenge and error response.
func (m *Middleware) sendChallenge(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", m.basic.GetWWWAuthenticateHeader())
	http.Error(w, message, http.StatusUnauthorized)
}

// Username extracts the authenticated username from context. Empty when the
// request was not authenticated (ModeNone or middleware not applied).
func Username(ctx context.Context) string {
	if name, ok := ctx.Value(UserContextKey).(string); ok {
		return name
	}
	return ""
}
