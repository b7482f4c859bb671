// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package sync

import (
	"context"
	"sync"
	"time"

	"github.com/phonotheca/phonotheca/internal/events"
	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
)

// Pinger is the slice of the remote client the watcher needs: one cheap,
// side-effect-free reachability probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WatcherConfig holds the connectivity watcher settings.
type WatcherConfig struct {
	// CheckInterval is how often the watcher probes the remote service.
	CheckInterval time.Duration

	// ProbeTimeout bounds one probe end to end.
	ProbeTimeout time.Duration
}

// Watcher turns remote reachability into online/offline transition events.
// It publishes only transitions, never steady state; the first verdict after
// start establishes the baseline silently so that process-start behavior
// stays the orchestrator's decision.
type Watcher struct {
	pinger   Pinger // nil when no remote is configured
	bus      *events.Bus
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	known  bool
	online bool
}

// NewWatcher creates the connectivity watcher. pinger and bus may each be
// nil; without a pinger every verdict is offline.
func NewWatcher(pinger Pinger, bus *events.Bus, cfg WatcherConfig) *Watcher {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 30 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return &Watcher{
		pinger:   pinger,
		bus:      bus,
		interval: cfg.CheckInterval,
		timeout:  cfg.ProbeTimeout,
		now:      time.Now,
	}
}

// Online returns the last connectivity verdict, false before any verdict.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Check probes the remote service once and records the verdict, publishing
// a transition event if it changed.
func (w *Watcher) Check(ctx context.Context) bool {
	if w.pinger == nil {
		return w.record(ctx, false)
	}

	probeCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := w.pinger.Ping(probeCtx)
	if err != nil {
		logging.Debug().Err(err).Msg("connectivity probe failed")
	}
	return w.record(ctx, err == nil)
}

// Assert records an externally observed connectivity verdict. Environments
// with native connectivity detection push their state through this instead
// of waiting for the next probe.
func (w *Watcher) Assert(ctx context.Context, online bool) {
	w.record(ctx, online)
}

// Run probes immediately and then on every interval tick until ctx ends.
// It is the watcher's supervision entry point.
func (w *Watcher) Run(ctx context.Context) error {
	logging.Info().
		Dur("interval", w.interval).
		Dur("timeout", w.timeout).
		Msg("connectivity watcher started")

	w.Check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("connectivity watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// record stores a verdict and publishes the transition, if any.
func (w *Watcher) record(ctx context.Context, online bool) bool {
	w.mu.Lock()
	transitioned := w.known && w.online != online
	first := !w.known
	w.known = true
	w.online = online
	w.mu.Unlock()

	metrics.SetConnectivity(online, transitioned)

	switch {
	case first:
		logging.Info().Bool("online", online).Msg("connectivity baseline established")
	case transitioned:
		logging.Info().Bool("online", online).Msg("connectivity changed")
	default:
		return online
	}

	if transitioned && w.bus != nil {
		err := w.bus.Publish(ctx, events.TopicConnectivity, events.ConnectivityChanged{
			Online: online,
			At:     w.now(),
		})
		if err != nil {
			logging.Warn().Err(err).Msg("connectivity event publish failed")
		}
	}
	return online
}
