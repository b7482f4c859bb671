// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package middleware provides HTTP middleware for the local control API.
//
// The middleware here uses the http.HandlerFunc wrapping style; the api
// package adapts it to Chi's func(http.Handler) http.Handler signature
// where routes are registered.
//
// # Middleware
//
//   - RequestID: assigns an X-Request-ID (or honors the upstream one) and
//     embeds a request-scoped zerolog logger in the context.
//   - PrometheusMetrics: records request counts, in-flight gauge, and
//     latency histograms via the metrics package.
//   - Compression: gzip-compresses responses for clients that accept it,
//     using a pooled writer. WebSocket upgrades pass through.
//   - PerformanceMonitor.Middleware: keeps a sliding window of request
//     timings and per-endpoint percentile stats for the status endpoint.
//
// # Ordering
//
// RequestID should run first so every later log line carries the ID.
// Compression must wrap the innermost handler that writes the body.
//
//	r.Use(chiMiddleware(middleware.RequestID))
//	r.Use(chiMiddleware(middleware.PrometheusMetrics))
//	r.Use(chiMiddleware(middleware.Compression))
package middleware
