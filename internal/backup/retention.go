// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package backup

import (
	"os"

	"github.com/phonotheca/phonotheca/internal/logging"
)

// ApplyRetention deletes completed snapshots beyond the configured Keep
// count, newest kept, and drops failed entries from the ledger entirely
// (they have no file worth keeping). Returns how many snapshot files were
// removed.
//
// A file that cannot be deleted keeps its ledger entry, so the next pass
// retries rather than leaking the file.
func (m *Manager) ApplyRetention() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	completed := 0
	removed := 0
	kept := make([]*Snapshot, 0, len(m.ledger.Snapshots))
	var firstErr error

	// Ledger order is append order, so walking newest-first means walking
	// backwards.
	for i := len(m.ledger.Snapshots) - 1; i >= 0; i-- {
		s := m.ledger.Snapshots[i]

		if s.Status != StatusCompleted {
			continue // failed entries are dropped
		}

		completed++
		if completed <= m.cfg.Keep {
			kept = append(kept, s)
			continue
		}

		if err := os.Remove(s.FilePath); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
			logging.Warn().
				Str("id", s.ID).
				Err(err).
				Msg("snapshot file delete failed, keeping ledger entry")
			kept = append(kept, s)
			continue
		}

		removed++
		logging.Debug().Str("id", s.ID).Msg("snapshot pruned")
	}

	// Restore append order (kept was built newest-first).
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	m.ledger.Snapshots = kept

	if err := m.saveLedgerLocked(); err != nil && firstErr == nil {
		firstErr = err
	}

	if removed > 0 {
		logging.Info().
			Int("removed", removed).
			Int("kept", len(kept)).
			Msg("snapshot retention applied")
	}
	return removed, firstErr
}
