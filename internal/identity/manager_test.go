// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package identity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/phonotheca/phonotheca/internal/store"
)

// mockRegistrar counts registrations and can be switched to fail.
type mockRegistrar struct {
	calls     atomic.Int64
	profileID string
	fail      atomic.Bool
}

func (r *mockRegistrar) RegisterDevice(ctx context.Context, deviceID string) (string, error) {
	r.calls.Add(1)
	if r.fail.Load() {
		return "", errors.New("remote unreachable")
	}
	return r.profileID, nil
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{Path: t.TempDir(), SyncWrites: false})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreatePersistsSingleton(t *testing.T) {
	s := setupStore(t)
	reg := &mockRegistrar{profileID: "profile-1"}
	ctx := context.Background()

	m := NewManager(s, reg, nil)
	first := m.GetOrCreate(ctx)

	if first.DeviceID == "" {
		t.Fatal("DeviceID is empty")
	}
	if first.ProfileID != "profile-1" {
		t.Errorf("ProfileID = %q, want profile-1", first.ProfileID)
	}
	if first.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}

	// A second manager over the same store loads the same identity instead
	// of minting a new one.
	again := NewManager(s, reg, nil).GetOrCreate(ctx)
	if again.DeviceID != first.DeviceID {
		t.Errorf("DeviceID changed across managers: %q != %q", again.DeviceID, first.DeviceID)
	}
	if got := reg.calls.Load(); got != 1 {
		t.Errorf("registrar calls = %d, want 1", got)
	}
}

func TestRegistrationDeferredWhileOffline(t *testing.T) {
	s := setupStore(t)
	reg := &mockRegistrar{profileID: "profile-9"}
	reg.fail.Store(true)
	ctx := context.Background()

	m := NewManager(s, reg, nil)
	unregistered := m.GetOrCreate(ctx)
	if unregistered.ProfileID != "" {
		t.Fatalf("ProfileID = %q, want empty while offline", unregistered.ProfileID)
	}

	// Once the remote is reachable the same identity picks up a profile id
	// without changing the device id.
	reg.fail.Store(false)
	registered := m.GetOrCreate(ctx)
	if registered.DeviceID != unregistered.DeviceID {
		t.Errorf("DeviceID changed on registration: %q != %q", registered.DeviceID, unregistered.DeviceID)
	}
	if registered.ProfileID != "profile-9" {
		t.Errorf("ProfileID = %q, want profile-9", registered.ProfileID)
	}

	// And the registration is persisted, not re-attempted.
	calls := reg.calls.Load()
	m.GetOrCreate(ctx)
	if reg.calls.Load() != calls {
		t.Errorf("registrar called again after successful registration")
	}
}

func TestInMemoryFallbackWithoutStore(t *testing.T) {
	reg := &mockRegistrar{profileID: "profile-2"}
	ctx := context.Background()

	m := NewManager(nil, reg, nil)
	first := m.GetOrCreate(ctx)
	second := m.GetOrCreate(ctx)

	if first.DeviceID == "" {
		t.Fatal("DeviceID is empty")
	}
	if second.DeviceID != first.DeviceID {
		t.Errorf("in-memory identity not stable: %q != %q", second.DeviceID, first.DeviceID)
	}
}

func TestResetMintsNewIdentity(t *testing.T) {
	s := setupStore(t)
	reg := &mockRegistrar{profileID: "profile-3"}
	ctx := context.Background()

	m := NewManager(s, reg, nil)
	before := m.GetOrCreate(ctx)

	m.Reset(ctx)

	after := m.GetOrCreate(ctx)
	if after.DeviceID == before.DeviceID {
		t.Error("DeviceID unchanged after reset")
	}
	if after.ProfileID != "profile-3" {
		t.Errorf("ProfileID = %q, want re-registration after reset", after.ProfileID)
	}
}

func TestProfileIDShortcut(t *testing.T) {
	reg := &mockRegistrar{profileID: "profile-4"}
	m := NewManager(nil, reg, nil)

	if got := m.ProfileID(context.Background()); got != "profile-4" {
		t.Errorf("ProfileID() = %q, want profile-4", got)
	}
}
