// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package auth provides authentication for the local control API.
//
// The engine is a single-user daemon serving a UI on the same machine, so
// the surface is deliberately small: either no authentication (loopback
// binds only, enforced by config validation) or HTTP Basic with a single
// admin credential pair.
//
// Passwords are bcrypt-hashed once at startup; request validation uses
// constant-time comparison for the username and bcrypt's built-in
// timing-safe comparison for the password.
//
//	mw, err := auth.NewMiddleware(auth.ModeBasic, cfg.AdminUsername, cfg.AdminPassword)
//	if err != nil { ... }
//	protected := mw.Authenticate(handler)
//
// The authenticated username is available to handlers via auth.Username(ctx).
package auth
