// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package identity manages the device's singleton identity record: a
// locally generated device id plus the profile id issued by the remote
// service on registration.
package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/phonotheca/phonotheca/internal/events"
	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

// identityKey is the primary key of the singleton record.
const identityKey = "device"

// Registrar registers this device with the remote service and returns the
// issued profile id.
type Registrar interface {
	RegisterDevice(ctx context.Context, deviceID string) (string, error)
}

// Manager owns the device identity. All methods are safe for concurrent
// use and never fail outward: with storage unavailable the identity lives
// in memory for the process lifetime, and with the remote unreachable it
// stays unregistered until a later call can finish registration.
type Manager struct {
	store     *store.Store // nil when storage is unavailable
	registrar Registrar    // nil when no remote is configured
	bus       *events.Bus  // optional

	mu  sync.Mutex
	mem *models.DeviceIdentity
}

// NewManager creates the identity manager. store, registrar and bus may
// each be nil.
func NewManager(st *store.Store, registrar Registrar, bus *events.Bus) *Manager {
	return &Manager{store: st, registrar: registrar, bus: bus}
}

// GetOrCreate returns the device identity, creating and persisting it on
// first call. An identity persisted before the device ever reached the
// remote service has an empty ProfileID; every later call retries the
// registration until it sticks.
func (m *Manager) GetOrCreate(ctx context.Context) models.DeviceIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.load(ctx)

	created := false
	if id == nil {
		id = &models.DeviceIdentity{
			DeviceID:  uuid.New().String(),
			CreatedAt: time.Now().UTC(),
		}
		created = true
		logging.Info().Str("device_id", id.DeviceID).Msg("device identity created")
	}

	registered := false
	if id.ProfileID == "" && m.registrar != nil {
		profileID, err := m.registrar.RegisterDevice(ctx, id.DeviceID)
		if err != nil {
			logging.Warn().Err(err).Msg("device registration deferred")
		} else {
			id.ProfileID = profileID
			registered = true
			logging.Info().
				Str("device_id", id.DeviceID).
				Str("profile_id", profileID).
				Msg("device registered")
		}
	}

	if created || registered {
		m.persist(ctx, id)
	}
	m.mem = id

	if created {
		m.publish(ctx, events.IdentityCreated, id.ProfileID)
	}
	return *id
}

// ProfileID returns the current profile id, empty while unregistered.
func (m *Manager) ProfileID(ctx context.Context) string {
	return m.GetOrCreate(ctx).ProfileID
}

// Reset destroys the identity locally. The next GetOrCreate mints a fresh
// device id and registers again. Typically called after the remote service
// signals that this registration is no longer recognized.
func (m *Manager) Reset(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Delete(ctx, store.CollectionIdentity, identityKey); err != nil {
			logging.Warn().Err(err).Msg("identity reset could not remove stored record")
		}
	}
	m.mem = nil

	metrics.IdentityResets.Inc()
	logging.Info().Msg("device identity reset")
	m.publish(ctx, events.IdentityReset, "")
}

// load returns the cached or stored identity, nil when none exists yet.
// Callers hold m.mu.
func (m *Manager) load(ctx context.Context) *models.DeviceIdentity {
	if m.mem != nil {
		id := *m.mem
		return &id
	}
	if m.store == nil {
		return nil
	}

	doc, err := m.store.Get(ctx, store.CollectionIdentity, identityKey)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			logging.Warn().Err(err).Msg("identity load failed, starting fresh")
		}
		return nil
	}

	var id models.DeviceIdentity
	if err := json.Unmarshal(doc, &id); err != nil {
		logging.Warn().Err(err).Msg("identity record corrupt, starting fresh")
		return nil
	}
	return &id
}

// persist writes the identity if storage is available. Callers hold m.mu.
func (m *Manager) persist(ctx context.Context, id *models.DeviceIdentity) {
	if m.store == nil {
		return
	}
	doc, err := json.Marshal(id)
	if err != nil {
		logging.Error().Err(err).Msg("identity marshal failed")
		return
	}
	if err := m.store.Put(ctx, store.CollectionIdentity, identityKey, doc); err != nil {
		logging.Warn().Err(err).Msg("identity persist failed, keeping in memory")
	}
}

func (m *Manager) publish(ctx context.Context, kind, profileID string) {
	if m.bus == nil {
		return
	}
	err := m.bus.Publish(ctx, events.TopicIdentity, events.IdentityChanged{
		Kind:      kind,
		ProfileID: profileID,
		At:        time.Now().UTC(),
	})
	if err != nil {
		logging.Debug().Err(err).Str("kind", kind).Msg("identity event publish failed")
	}
}
