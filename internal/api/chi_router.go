// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/phonotheca/phonotheca/internal/auth"
	"github.com/phonotheca/phonotheca/internal/middleware"
)

// Router wires the handler, authentication, and middleware factories into
// the Chi route tree.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates the HTTP router for the engine's control API.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		auth:          authMW,
		chiMiddleware: chiMW,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler, so the engine's middleware works with
// Chi's r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(chiMiddleware(middleware.RequestID)) // X-Request-ID header plus request-scoped logger
	r.Use(chimiddleware.RealIP)                // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)             // Recover from panics
	r.Use(router.chiMiddleware.CORS())         // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting; probes must keep working while everything
	// else degrades, so no auth here.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Conventional aliases for container orchestrators and reverse proxies.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/healthz", router.handler.HealthLive)
		r.Get("/readyz", router.handler.HealthReady)
	})

	// ========================
	// Core API Endpoints
	// ========================
	// Everything below requires authentication when an auth mode is set.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitAPI))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(router.auth.Authenticate))

		// WebSocket event stream. The upgrade needs the raw ResponseWriter
		// (http.Hijacker), so the metric wrappers stay off this route; the
		// hub maintains its own connection gauge.
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).
			Get("/events", router.handler.Events)

		// Request-instrumented endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(middleware.PrometheusMetrics))
			r.Use(router.handler.PerformanceMonitor().Middleware)

			// Engine status
			r.Get("/status", router.handler.Status)

			// Library reads, served from the local cache. Track and
			// playlist listings compress well.
			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware(middleware.Compression))

				r.Get("/tracks", router.handler.TrackBrowse)
				r.Get("/tracks/search", router.handler.TrackSearch)
				r.Get("/tracks/artists", router.handler.TrackArtists)
				r.Get("/tracks/albums", router.handler.TrackAlbums)
				r.Get("/tracks/suggest", router.handler.TrackSuggest)
				r.Post("/tracks/resolve", router.handler.TrackResolve)

				r.Get("/playlists", router.handler.Playlists)
				r.Get("/playlists/{id}", router.handler.PlaylistByID)
				r.Get("/smart-playlists", router.handler.SmartPlaylists)
				r.Get("/favorites", router.handler.Favorites)
				r.Get("/profile", router.handler.Profile)
			})

			// Cache management. Refresh fans out to the remote server, so
			// it gets the sync budget.
			r.Get("/cache", router.handler.CacheInfo)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitSync)).
				Post("/cache/refresh", router.handler.CacheRefresh)

			// Outbox
			r.Get("/outbox", router.handler.OutboxPending)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitWrite)).
				Post("/outbox", router.handler.OutboxEnqueue)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitSync)).
				Post("/outbox/drain", router.handler.OutboxDrain)

			// Device identity
			r.Get("/identity", router.handler.IdentityGet)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitWrite)).
				Post("/identity/reset", router.handler.IdentityReset)

			// Connectivity
			r.Get("/connectivity", router.handler.ConnectivityGet)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitSync)).
				Post("/connectivity/check", router.handler.ConnectivityCheck)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitWrite)).
				Post("/connectivity/assert", router.handler.ConnectivityAssert)
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
