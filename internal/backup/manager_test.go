// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

//nolint:gochecknoinits // quiet logger for the whole test binary
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Config{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// seedStore writes the records snapshots exist to protect: the device
// identity and a couple of pending actions.
func seedStore(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()

	ident, err := json.Marshal(models.DeviceIdentity{
		DeviceID:  "device-1",
		ProfileID: "profile-1",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal identity: %v", err)
	}
	if err := st.Put(ctx, store.CollectionIdentity, "device", ident); err != nil {
		t.Fatalf("put identity: %v", err)
	}

	for i := 0; i < 2; i++ {
		seq, err := st.NextSequence(store.CollectionPendingActions)
		if err != nil {
			t.Fatalf("next sequence: %v", err)
		}
		doc, err := json.Marshal(models.PendingAction{
			ID:        seq,
			ProfileID: "profile-1",
			Type:      models.ActionScrobble,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("marshal action: %v", err)
		}
		if err := st.Put(ctx, store.CollectionPendingActions, store.EncodeSeq(seq), doc); err != nil {
			t.Fatalf("put action: %v", err)
		}
	}
}

func newTestManager(t *testing.T, st *store.Store, keep int) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Enabled:  true,
		Dir:      t.TempDir(),
		Interval: time.Hour,
		Keep:     keep,
	}, st)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestNewManager_RequiresDir(t *testing.T) {
	_, err := NewManager(Config{}, nil)
	if err == nil {
		t.Fatal("expected error for missing snapshot directory")
	}
}

func TestCreateSnapshot(t *testing.T) {
	st := setupStore(t)
	seedStore(t, st)
	m := newTestManager(t, st, 7)

	snap, err := m.CreateSnapshot(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}

	if snap.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", snap.Status)
	}
	if snap.Trigger != TriggerManual {
		t.Errorf("trigger = %q, want manual", snap.Trigger)
	}
	if snap.UptoVersion == 0 {
		t.Error("upto_version = 0, want the store's write version")
	}
	if len(snap.Checksum) != sha256.Size*2 {
		t.Errorf("checksum = %q, want %d hex chars", snap.Checksum, sha256.Size*2)
	}

	info, err := os.Stat(snap.FilePath)
	if err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	if info.Size() == 0 || info.Size() != snap.FileSize {
		t.Errorf("file size = %d, ledger says %d", info.Size(), snap.FileSize)
	}

	if got := len(m.List()); got != 1 {
		t.Errorf("ledger entries = %d, want 1", got)
	}
	latest := m.Latest()
	if latest == nil || latest.ID != snap.ID {
		t.Errorf("latest = %+v, want %s", latest, snap.ID)
	}
}

func TestCreateSnapshot_ChecksumMatchesFile(t *testing.T) {
	st := setupStore(t)
	seedStore(t, st)
	m := newTestManager(t, st, 7)

	snap, err := m.CreateSnapshot(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}

	data, err := os.ReadFile(snap.FilePath)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != snap.Checksum {
		t.Errorf("file checksum = %s, ledger says %s", got, snap.Checksum)
	}
}

func TestCreateSnapshot_NoStore(t *testing.T) {
	m := newTestManager(t, nil, 7)

	_, err := m.CreateSnapshot(context.Background(), TriggerManual)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("err = %v, want ErrStorageUnavailable", err)
	}
	if got := len(m.List()); got != 0 {
		t.Errorf("ledger entries = %d, want 0 (no attempt was made)", got)
	}
}

func TestCreateSnapshot_StoreClosedRecordsFailure(t *testing.T) {
	st, err := store.Open(store.Config{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m := newTestManager(t, st, 7)

	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	if _, err := m.CreateSnapshot(context.Background(), TriggerScheduled); err == nil {
		t.Fatal("expected error for closed store")
	}

	entries := m.List()
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1 failed attempt", len(entries))
	}
	if entries[0].Status != StatusFailed {
		t.Errorf("status = %q, want failed", entries[0].Status)
	}
	if entries[0].Error == "" {
		t.Error("failed entry carries no error message")
	}
	if m.Latest() != nil {
		t.Error("latest should skip failed attempts")
	}
}

func TestLedgerSurvivesRestart(t *testing.T) {
	st := setupStore(t)
	seedStore(t, st)

	dir := t.TempDir()
	cfg := Config{Enabled: true, Dir: dir, Interval: time.Hour, Keep: 7}

	m1, err := NewManager(cfg, st)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	snap, err := m1.CreateSnapshot(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}

	m2, err := NewManager(cfg, st)
	if err != nil {
		t.Fatalf("reopen manager: %v", err)
	}
	entries := m2.List()
	if len(entries) != 1 || entries[0].ID != snap.ID {
		t.Errorf("reloaded ledger = %+v, want the one snapshot %s", entries, snap.ID)
	}
}
