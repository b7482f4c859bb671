// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package services

import (
	"context"
)

// Runner matches the Run(ctx) convention shared by Phonotheca's
// long-running components.
//
// Satisfied by:
//   - *websocket.EventBridge
//   - *sync.Watcher
//   - *sync.Orchestrator
//   - *backup.Manager
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerService adapts any Runner into a supervised service.
//
// Components following the Run(ctx) convention block until their context
// is canceled and then return ctx.Err(), which is exactly suture's Serve
// contract, so the adapter only contributes the service name.
//
// Example usage:
//
//	watcher := sync.NewWatcher(pinger, bus, cfg)
//	tree.AddMessagingService(services.NewRunnerService("connectivity-watcher", watcher))
type RunnerService struct {
	runner Runner
	name   string
}

// NewRunnerService creates a named service wrapper around a Runner.
func NewRunnerService(name string, runner Runner) *RunnerService {
	return &RunnerService{
		runner: runner,
		name:   name,
	}
}

// Serve implements suture.Service.
func (r *RunnerService) Serve(ctx context.Context) error {
	return r.runner.Run(ctx)
}

// String implements fmt.Stringer; suture uses it to identify the service
// in log messages.
func (r *RunnerService) String() string {
	return r.name
}
