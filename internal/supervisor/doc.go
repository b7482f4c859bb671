// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

/*
Package supervisor provides process supervision for Phonotheca using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of all long-running services in the engine. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation,
and graceful shutdown.

# Overview

The supervisor tree organizes services into three layers for failure
isolation:

	phonotheca (root)
	├── data-layer
	│   ├── backup-scheduler (present when a backup manager exists)
	│   └── valuelog-gc (present when the store opened)
	├── messaging-layer
	│   ├── websocket-hub
	│   ├── event-bridge
	│   ├── connectivity-watcher
	│   └── sync-orchestrator
	└── api-layer
	    └── http-server

This hierarchy ensures that:
  - a crash in the sync orchestrator doesn't drop WebSocket connections
  - store maintenance failures don't impact API availability
  - each layer restarts independently with its own failure budget

# Service Contract

Every supervised component exposes a blocking Run or Serve method that
returns ctx.Err() when its context is canceled. Components that are
disabled by configuration block idle instead of returning, so the
supervisor does not spin restarting them.

# Shutdown

Canceling the context passed to Serve triggers an orderly shutdown of
every layer. Services that fail to stop within the configured timeout
appear in UnstoppedServiceReport, which the daemon logs before exit.

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewRunnerService("connectivity-watcher", watcher))
	tree.AddDataService(services.NewRunnerService("backup-scheduler", backups))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Event logging is wired through the sutureslog adapter, so service starts,
stops, failures, and backoffs all land in the structured log.
*/
package supervisor
