// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package backup

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
	"github.com/phonotheca/phonotheca/internal/store"
)

// AppVersion is stamped into every ledger entry; set at build time.
var AppVersion = "dev"

// ErrStorageUnavailable is returned when a snapshot is requested while the
// engine runs without a store.
var ErrStorageUnavailable = errors.New("backup: storage unavailable")

const ledgerName = "ledger.json"

// Config holds the snapshot settings.
type Config struct {
	// Enabled gates the scheduler; manual snapshots work either way.
	Enabled bool

	// Dir is where snapshot files and the ledger live.
	Dir string

	// Interval between scheduled snapshots.
	Interval time.Duration

	// Keep is how many completed snapshots retention preserves.
	Keep int
}

// Manager creates store snapshots and keeps the ledger. Safe for concurrent
// use.
type Manager struct {
	cfg   Config
	store *store.Store // nil when storage is unavailable

	mu         sync.Mutex
	ledger     *Ledger
	ledgerFile string

	now func() time.Time
}

// NewManager creates the snapshot manager, ensuring the snapshot directory
// exists and loading any previous ledger. The store may be nil; snapshot
// attempts then fail with ErrStorageUnavailable.
func NewManager(cfg Config, st *store.Store) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup: snapshot directory not configured")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 7
	}

	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("backup: create snapshot directory: %w", err)
	}

	m := &Manager{
		cfg:        cfg,
		store:      st,
		ledgerFile: filepath.Join(cfg.Dir, ledgerName),
		now:        time.Now,
	}

	if err := m.loadLedger(); err != nil {
		m.ledger = &Ledger{Snapshots: make([]*Snapshot, 0)}
	}
	return m, nil
}

// CreateSnapshot exports the full store to a new snapshot file and records
// the attempt in the ledger. The export is written to a temporary file and
// renamed into place, so a crash mid-export never leaves a half snapshot
// under a final name.
func (m *Manager) CreateSnapshot(ctx context.Context, trigger Trigger) (*Snapshot, error) {
	if m.store == nil {
		return nil, ErrStorageUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := m.now().UTC()
	snap := &Snapshot{
		ID:         "phonotheca-" + start.Format("20060102T150405.000000000Z"),
		Trigger:    trigger,
		CreatedAt:  start,
		AppVersion: AppVersion,
	}
	final := filepath.Join(m.cfg.Dir, snap.ID+".badger")

	version, checksum, err := m.export(final)
	snap.Duration = m.now().Sub(start)
	metrics.RecordBackup(snap.Duration, err)

	if err != nil {
		snap.Status = StatusFailed
		snap.Error = err.Error()
		m.record(snap)
		logging.Error().
			Str("id", snap.ID).
			Err(err).
			Msg("store snapshot failed")
		return nil, err
	}

	info, statErr := os.Stat(final)
	if statErr == nil {
		snap.FileSize = info.Size()
	}
	snap.Status = StatusCompleted
	snap.FilePath = final
	snap.Checksum = checksum
	snap.UptoVersion = version
	m.record(snap)

	logging.Info().
		Str("id", snap.ID).
		Int64("size_bytes", snap.FileSize).
		Dur("elapsed", snap.Duration).
		Msg("store snapshot written")
	return snap, nil
}

// export streams the store to path via a temp file, returning the covered
// store version and the file's SHA-256.
func (m *Manager) export(path string) (uint64, string, error) {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return 0, "", fmt.Errorf("backup: create temp file: %w", err)
	}

	buf := bufio.NewWriter(f)
	hash := sha256.New()
	version, err := m.store.Backup(io.MultiWriter(buf, hash), 0)
	if err == nil {
		err = buf.Flush()
	}
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, "", err
	}
	return version, hex.EncodeToString(hash.Sum(nil)), nil
}

// List returns all ledger entries, newest first.
func (m *Manager) List() []*Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Snapshot, len(m.ledger.Snapshots))
	copy(out, m.ledger.Snapshots)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Latest returns the newest completed snapshot, nil when there is none.
func (m *Manager) Latest() *Snapshot {
	for _, s := range m.List() {
		if s.Status == StatusCompleted {
			return s
		}
	}
	return nil
}

// record appends or updates one ledger entry and persists the ledger.
func (m *Manager) record(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	for i, s := range m.ledger.Snapshots {
		if s.ID == snap.ID {
			m.ledger.Snapshots[i] = snap
			replaced = true
			break
		}
	}
	if !replaced {
		m.ledger.Snapshots = append(m.ledger.Snapshots, snap)
	}

	if err := m.saveLedgerLocked(); err != nil {
		logging.Warn().Err(err).Msg("snapshot ledger write failed")
	}
}

func (m *Manager) loadLedger() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.ledgerFile)
	if err != nil {
		return err
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return err
	}
	if ledger.Snapshots == nil {
		ledger.Snapshots = make([]*Snapshot, 0)
	}
	m.ledger = &ledger
	return nil
}

// saveLedgerLocked persists the ledger; the caller holds m.mu.
func (m *Manager) saveLedgerLocked() error {
	data, err := json.MarshalIndent(m.ledger, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.ledgerFile, data, 0o600)
}
