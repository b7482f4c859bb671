// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package main is the entry point for the phonothecad daemon.
//
// Phonotheca is the offline synchronization and local cache engine for a
// personal media-library client. It keeps a durable local mirror of the
// library (tracks, playlists, smart playlists, favorites, profile), queues
// actions performed while offline, and drains them to the remote service
// when connectivity returns. The UI process talks to the engine over a
// loopback HTTP API.
//
// # Application Architecture
//
// The daemon initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Storage: capability probe, then BadgerDB store under DATA_DIR/library
//  3. Remote client: rate-limited HTTP client with a circuit breaker
//  4. Engine: event bus, device identity, entity caches, outbox queue,
//     connectivity watcher, sync orchestrator
//  5. Backups: scheduled store snapshots with retention (if enabled)
//  6. HTTP server: REST control API with Swagger documentation
//  7. Supervisor tree: every long-running component under suture
//
// # Degraded Modes
//
// Every dependency is optional. With no REMOTE_URL the engine runs fully
// offline: reads serve from whatever was last cached and the outbox
// accumulates. With the storage probe failing, caches live in memory only
// and queued actions are dropped with a metric; the API stays up either
// way.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Core settings:
//   - DATA_DIR: root directory for the store and backups
//   - REMOTE_URL, REMOTE_TOKEN: the authoritative media service
//   - SERVER_HOST, SERVER_PORT: control API binding (default 127.0.0.1:7466)
//   - AUTH_MODE: none (loopback only) or basic
//
// # Signal Handling
//
// The daemon shuts down gracefully on SIGINT and SIGTERM:
//   - stops accepting new connections
//   - waits for in-flight requests to complete (10s timeout)
//   - stops the watcher, orchestrator, and backup scheduler
//   - closes the store last, after every writer has stopped
//
// # Example Usage
//
// Offline-only (no remote configured):
//
//	export DATA_DIR=/var/lib/phonotheca
//	./phonothecad
//
// Connected to a media service:
//
//	export DATA_DIR=/var/lib/phonotheca
//	export REMOTE_URL=https://music.example.com
//	export REMOTE_TOKEN=your-device-token
//	./phonothecad
//
// Exposed beyond loopback (requires auth):
//
//	export SERVER_HOST=0.0.0.0
//	export AUTH_MODE=basic
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=secure-password
//	./phonothecad
//
// # Port 7466
//
// The default port 7466 spells PHON on a telephone keypad.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/phonotheca/phonotheca/docs" // generated swagger docs
	"github.com/phonotheca/phonotheca/internal/api"
	"github.com/phonotheca/phonotheca/internal/auth"
	"github.com/phonotheca/phonotheca/internal/backup"
	"github.com/phonotheca/phonotheca/internal/cache"
	"github.com/phonotheca/phonotheca/internal/config"
	"github.com/phonotheca/phonotheca/internal/events"
	"github.com/phonotheca/phonotheca/internal/identity"
	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
	"github.com/phonotheca/phonotheca/internal/outbox"
	"github.com/phonotheca/phonotheca/internal/remote"
	"github.com/phonotheca/phonotheca/internal/store"
	"github.com/phonotheca/phonotheca/internal/supervisor"
	"github.com/phonotheca/phonotheca/internal/supervisor/services"
	syncpkg "github.com/phonotheca/phonotheca/internal/sync"
	ws "github.com/phonotheca/phonotheca/internal/websocket"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Phonotheca engine")

	if cfg.Remote.URL != "" {
		logging.Info().
			Str("remote_url", cfg.Remote.URL).
			Str("data_dir", cfg.Storage.DataDir).
			Str("auth_mode", cfg.Security.AuthMode).
			Msg("Configuration loaded")
	} else {
		logging.Info().
			Bool("remote_configured", false).
			Str("data_dir", cfg.Storage.DataDir).
			Str("auth_mode", cfg.Security.AuthMode).
			Msg("Configuration loaded (offline-only mode)")
	}

	// Probe storage before opening: a broken disk must degrade the engine,
	// not wedge it.
	var st *store.Store
	available := store.NewProbe(cfg.Storage.DataDir).Available()
	metrics.SetStorageAvailable(available)
	if available {
		st, err = store.Open(store.Config{
			Path:       filepath.Join(cfg.Storage.DataDir, "library"),
			SyncWrites: cfg.Storage.SyncWrites,
		})
		if err != nil {
			logging.Error().Err(err).Msg("Store open failed after successful probe, continuing degraded")
			metrics.SetStorageAvailable(false)
			st = nil
		} else {
			logging.Info().Str("path", filepath.Join(cfg.Storage.DataDir, "library")).Msg("Store opened")
		}
	} else {
		logging.Warn().Msg("Durable storage unavailable - caches are memory-only and queued actions will be dropped")
	}
	defer func() {
		if st == nil {
			return
		}
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	// Remote client. A nil API is the supported offline-only mode; every
	// consumer takes its slice of the interface as possibly-nil.
	var remoteAPI remote.API
	if cfg.Remote.URL != "" {
		remoteAPI = remote.NewBreakerClient(remote.Config{
			URL:       cfg.Remote.URL,
			Token:     cfg.Remote.Token,
			Timeout:   cfg.Remote.Timeout,
			RateLimit: cfg.Remote.RateLimit,
			RateBurst: cfg.Remote.RateBurst,
		})
		logging.Info().Str("url", cfg.Remote.URL).Msg("Remote client initialized with circuit breaker")
	} else {
		logging.Info().Msg("No remote configured - running offline-only")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Engine assembly. The bus connects everything; the identity manager
	// doubles as the profile source for caches, outbox, and orchestrator.
	bus := events.NewBus(events.Config{BufferSize: cfg.Events.BufferSize})

	var registrar identity.Registrar
	var fetcher cache.Fetcher
	var executor outbox.Executor
	var pinger syncpkg.Pinger
	if remoteAPI != nil {
		registrar = remoteAPI
		fetcher = remoteAPI
		executor = remoteAPI
		pinger = remoteAPI
	}

	ident := identity.NewManager(st, registrar, bus)
	caches := cache.NewManager(st, fetcher, ident, bus)
	queue := outbox.NewQueue(st, executor, bus)
	watcher := syncpkg.NewWatcher(pinger, bus, syncpkg.WatcherConfig{
		CheckInterval: cfg.Connectivity.CheckInterval,
		ProbeTimeout:  cfg.Connectivity.ProbeTimeout,
	})
	orchestrator := syncpkg.NewOrchestrator(queue, ident, caches, watcher, bus, syncpkg.Config{
		StaleAfterHours: cfg.Cache.StaleAfterHours,
		RefreshOnStart:  cfg.Cache.RefreshOnStart,
	})

	// Mint the identity and load the cache views before serving reads.
	// Registration inside GetOrCreate may fail here; it retries on every
	// later call, so startup never blocks on the remote.
	device := ident.GetOrCreate(ctx)
	logging.Info().
		Str("device_id", device.DeviceID).
		Bool("registered", device.ProfileID != "").
		Msg("Device identity ready")

	caches.Warm(ctx)
	logging.Info().Msg("Entity caches warmed from store")

	// WebSocket hub plus the bridge that forwards bus events to UI clients.
	wsHub := ws.NewHub()
	bridge := ws.NewEventBridge(wsHub, bus)

	// Backup manager (data layer). Disabled config still constructs the
	// manager so a manual CLI snapshot path stays possible later; the
	// scheduler just idles.
	backup.AppVersion = version
	backupDir := cfg.Backup.Dir
	if backupDir == "" {
		backupDir = filepath.Join(cfg.Storage.DataDir, "backups")
	}
	backups, err := backup.NewManager(backup.Config{
		Enabled:  cfg.Backup.Enabled,
		Dir:      backupDir,
		Interval: cfg.Backup.Interval,
		Keep:     cfg.Backup.Keep,
	}, st)
	if err != nil {
		logging.Warn().Err(err).Msg("Backup manager unavailable")
		backups = nil
	} else if cfg.Backup.Enabled {
		logging.Info().
			Str("dir", backupDir).
			Dur("interval", cfg.Backup.Interval).
			Int("keep", cfg.Backup.Keep).
			Msg("Backup scheduler configured")
	} else {
		logging.Info().Msg("Scheduled backups disabled (BACKUP_ENABLED=false)")
	}

	// Control API authentication.
	authMW, err := auth.NewMiddleware(
		auth.Mode(cfg.Security.AuthMode),
		cfg.Security.AdminUsername,
		cfg.Security.AdminPassword,
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}
	if auth.Mode(cfg.Security.AuthMode) == auth.ModeNone {
		logging.Warn().Msg("Authentication disabled (AUTH_MODE=none); config validation restricts this to loopback bindings")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED - intended for test environments only")
	}

	handler := api.NewHandler(api.HandlerDeps{
		Store:    st,
		Caches:   caches,
		Queue:    queue,
		Orch:     orchestrator,
		Watcher:  watcher,
		Identity: ident,
		Config:   cfg,
		WSHub:    wsHub,
		Version:  version,
	})
	router := api.NewRouter(handler, authMW, api.NewChiMiddlewareFromConfig(cfg.Security))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree. The slog adapter bridges zerolog for sutureslog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer: store maintenance.
	if backups != nil {
		tree.AddDataService(services.NewRunnerService("backup-scheduler", backups))
	}
	if st != nil {
		tree.AddDataService(services.NewValueLogGCService(st, 10*time.Minute, 0.5))
	}

	// Messaging layer: hub, bridge, watcher, orchestrator.
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewRunnerService("event-bridge", bridge))
	tree.AddMessagingService(services.NewRunnerService("connectivity-watcher", watcher))
	tree.AddMessagingService(services.NewRunnerService("sync-orchestrator", orchestrator))

	// API layer.
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling drives the root context.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Engine stopped gracefully")
}
