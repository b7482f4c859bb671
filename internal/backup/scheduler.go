// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package backup

import (
	"context"
	"time"

	"github.com/phonotheca/phonotheca/internal/logging"
)

// Run creates a snapshot every Interval and prunes afterwards, until ctx
// ends. It is the manager's supervision entry point. With snapshots disabled
// it blocks idle so a supervisor does not restart-loop it.
func (m *Manager) Run(ctx context.Context) error {
	if !m.cfg.Enabled {
		logging.Debug().Msg("snapshot scheduler disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().
		Dur("interval", m.cfg.Interval).
		Int("keep", m.cfg.Keep).
		Str("dir", m.cfg.Dir).
		Msg("snapshot scheduler started")

	m.noteNextRun(m.now().Add(m.cfg.Interval))

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("snapshot scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

// runOnce performs one scheduled snapshot-and-prune pass.
func (m *Manager) runOnce(ctx context.Context) {
	if _, err := m.CreateSnapshot(ctx, TriggerScheduled); err != nil {
		logging.Error().Err(err).Msg("scheduled snapshot failed")
	}
	if _, err := m.ApplyRetention(); err != nil {
		logging.Warn().Err(err).Msg("snapshot retention failed")
	}

	now := m.now()
	m.noteLastRun(now, now.Add(m.cfg.Interval))
}

func (m *Manager) noteNextRun(next time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger.NextRun = &next
	if err := m.saveLedgerLocked(); err != nil {
		logging.Debug().Err(err).Msg("snapshot ledger write failed")
	}
}

func (m *Manager) noteLastRun(last, next time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger.LastRun = &last
	m.ledger.NextRun = &next
	if err := m.saveLedgerLocked(); err != nil {
		logging.Debug().Err(err).Msg("snapshot ledger write failed")
	}
}
