// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

/*
Package services provides suture.Service adapters for Phonotheca's
long-running components.

Each adapter translates a component's native lifecycle into suture's
Serve(ctx) contract and names itself for the structured supervision log:

  - HTTPServerService wraps http.Server's blocking ListenAndServe and
    performs a bounded graceful Shutdown when the context is canceled.
  - WebSocketHubService delegates to the hub's RunWithContext.
  - RunnerService wraps anything exposing Run(ctx) error - the event
    bridge, connectivity watcher, sync orchestrator, and backup
    scheduler all follow that convention already.
  - ValueLogGCService periodically triggers the store's value-log
    garbage collection.

The adapters depend on small locally-declared interfaces rather than the
concrete packages, which keeps this package import-light and the
components trivially mockable in tests.

Every Serve implementation returns ctx.Err() on orderly shutdown so the
supervisor can tell cancellation from crashes.
*/
package services
