// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package sync

import (
	"context"
	"sync"

	"github.com/phonotheca/phonotheca/internal/events"
	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
	"github.com/phonotheca/phonotheca/internal/models"
)

// Drain triggers, used as log context and metrics labels.
const (
	TriggerStartup      = "startup"
	TriggerConnectivity = "connectivity"
	TriggerManual       = "manual"
)

// Drainer is the slice of the outbox the orchestrator needs.
type Drainer interface {
	Drain(ctx context.Context, profileID string) models.DrainResult
}

// ProfileSource supplies the registered profile id, or "" when the device
// has not registered yet.
type ProfileSource interface {
	ProfileID(ctx context.Context) string
}

// Refresher is the slice of the cache manager the orchestrator needs.
type Refresher interface {
	RefreshAll(ctx context.Context)
	RefreshStale(ctx context.Context, maxAgeHours int)
}

// Config holds the orchestrator settings.
type Config struct {
	// StaleAfterHours is the staleness window consulted before refreshing
	// caches on a drain trigger.
	StaleAfterHours int

	// RefreshOnStart forces a full cache refresh on the startup trigger
	// even when no cache is stale yet.
	RefreshOnStart bool
}

// Orchestrator owns the engine's two-state drain machine: Idle and
// Draining. Drains run on process start (when online), on offline-to-online
// transitions, and on explicit manual triggers; there is no periodic drain
// polling. A trigger that arrives while a drain is in flight is ignored
// outright, not queued.
type Orchestrator struct {
	outbox  Drainer
	profile ProfileSource
	caches  Refresher // nil when no cache refresh on trigger is wanted
	watcher *Watcher
	bus     *events.Bus
	cfg     Config

	// drainMu guards the Idle/Draining flag, not the drain itself: triggers
	// check-and-set under the lock and release it before any I/O.
	drainMu  sync.Mutex
	draining bool
}

// NewOrchestrator creates the sync orchestrator.
func NewOrchestrator(outbox Drainer, profile ProfileSource, caches Refresher, watcher *Watcher, bus *events.Bus, cfg Config) *Orchestrator {
	if cfg.StaleAfterHours <= 0 {
		cfg.StaleAfterHours = 24
	}
	return &Orchestrator{
		outbox:  outbox,
		profile: profile,
		caches:  caches,
		watcher: watcher,
		bus:     bus,
		cfg:     cfg,
	}
}

// Draining reports whether a drain pass is in flight.
func (o *Orchestrator) Draining() bool {
	o.drainMu.Lock()
	defer o.drainMu.Unlock()
	return o.draining
}

// TriggerDrain runs one drain pass unless one is already in flight, in
// which case the trigger is dropped and the second return value is false.
func (o *Orchestrator) TriggerDrain(ctx context.Context, trigger string) (models.DrainResult, bool) {
	o.drainMu.Lock()
	if o.draining {
		o.drainMu.Unlock()
		metrics.SyncDrainsSkipped.Inc()
		logging.Debug().Str("trigger", trigger).Msg("drain already in flight, trigger ignored")
		return models.DrainResult{}, false
	}
	o.draining = true
	o.drainMu.Unlock()

	defer func() {
		o.drainMu.Lock()
		o.draining = false
		o.drainMu.Unlock()
	}()

	metrics.RecordDrainTrigger(trigger)

	// Resolving the profile may finish a deferred device registration now
	// that the remote is reachable again.
	profileID := o.profile.ProfileID(ctx)
	if profileID == "" {
		logging.Debug().Str("trigger", trigger).Msg("no profile registered, drain found nothing to do")
		return models.DrainResult{}, true
	}

	logging.Info().Str("trigger", trigger).Msg("drain triggered")
	return o.outbox.Drain(ctx, profileID), true
}

// Run is the orchestrator's supervision entry point. It establishes the
// startup behavior, then reacts to connectivity transitions until ctx ends.
func (o *Orchestrator) Run(ctx context.Context) error {
	msgs, err := o.bus.Subscribe(ctx, events.TopicConnectivity)
	if err != nil {
		return err
	}

	logging.Info().
		Int("stale_after_hours", o.cfg.StaleAfterHours).
		Bool("refresh_on_start", o.cfg.RefreshOnStart).
		Msg("sync orchestrator started")

	// Process start: one drain attempt, but only when the environment is
	// online. This covers actions queued in a previous offline session that
	// ended before connectivity returned.
	if o.watcher.Check(ctx) {
		o.drainAndRefresh(ctx, TriggerStartup)
	}

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("sync orchestrator stopped")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				logging.Info().Msg("sync orchestrator stopped, event bus closed")
				return nil
			}

			event, err := events.Decode[events.ConnectivityChanged](msg)
			msg.Ack()
			if err != nil {
				logging.Warn().Err(err).Msg("orchestrator dropping undecodable connectivity event")
				continue
			}
			if !event.Online {
				continue
			}

			// Handled off the loop so a transition arriving mid-drain is
			// dropped by the single-flight guard instead of waiting in the
			// channel and re-triggering afterward.
			go o.drainAndRefresh(ctx, TriggerConnectivity)
		}
	}
}

// drainAndRefresh runs one drain pass and then freshens the caches while
// the remote is known reachable.
func (o *Orchestrator) drainAndRefresh(ctx context.Context, trigger string) {
	if _, ran := o.TriggerDrain(ctx, trigger); !ran {
		return
	}
	if o.caches == nil {
		return
	}

	if trigger == TriggerStartup && o.cfg.RefreshOnStart {
		o.caches.RefreshAll(ctx)
		return
	}
	o.caches.RefreshStale(ctx, o.cfg.StaleAfterHours)
}
