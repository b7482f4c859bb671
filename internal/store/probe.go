// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package store

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/phonotheca/phonotheca/internal/logging"
)

// probeDeadline bounds the storage probe. Broken environments (network
// filesystems, full disks, containers with missing fsync) sometimes hang on
// open instead of failing, and a hang has to count as unavailable.
const probeDeadline = time.Second

// Probe answers whether durable storage works under one data directory.
// The verdict is established on first use and memoized for the probe's
// lifetime; the daemon constructs a single Probe and shares it by
// reference, so the answer is effectively per process without hiding it
// in package state.
type Probe struct {
	dataDir string
	once    sync.Once
	result  bool
}

// NewProbe returns an unresolved probe for dataDir. No filesystem work
// happens until the first Available call.
func NewProbe(dataDir string) *Probe {
	return &Probe{dataDir: dataDir}
}

// Available reports whether durable storage works under the probe's data
// directory.
//
// The first call opens a throwaway database in a uniquely named
// subdirectory, round-trips one record with fsync, then deletes the
// directory, all raced against probeDeadline; later calls return the
// memoized verdict without re-probing. Every consumer of the store is
// expected to check this before opening and to degrade to no-ops when it
// reports false.
func (p *Probe) Available() bool {
	p.once.Do(func() {
		p.result = probe(p.dataDir)
	})
	return p.result
}

func probe(dataDir string) bool {
	start := time.Now()

	done := make(chan bool, 1)
	go func() {
		done <- runProbe(dataDir)
	}()

	select {
	case ok := <-done:
		logging.Info().
			Bool("available", ok).
			Dur("elapsed", time.Since(start)).
			Msg("storage probe finished")
		return ok
	case <-time.After(probeDeadline):
		// The probe goroutine keeps running and cleans up after itself
		// whenever the filesystem comes back; the verdict stands.
		logging.Warn().
			Dur("deadline", probeDeadline).
			Msg("storage probe timed out, treating storage as unavailable")
		return false
	}
}

func runProbe(dataDir string) bool {
	dir := filepath.Join(dataDir, "probe-"+uuid.New().String())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		logging.Warn().Err(err).Str("dir", dir).Msg("storage probe cannot create directory")
		return false
	}
	defer os.RemoveAll(dir)

	opts := badger.DefaultOptions(dir)
	opts.SyncWrites = true
	opts.Logger = nil
	// A probe round-trips one record; the default table sizes reserve far
	// more memory than that needs.
	opts.MemTableSize = 1 << 20
	opts.ValueLogFileSize = 1 << 20

	db, err := badger.Open(opts)
	if err != nil {
		logging.Warn().Err(err).Str("dir", dir).Msg("storage probe open failed")
		return false
	}

	key := []byte("probe")
	want := []byte(uuid.New().String())

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, want)
	})
	if err != nil {
		logging.Warn().Err(err).Msg("storage probe write failed")
		_ = db.Close()
		return false
	}

	var got []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		got, err = item.ValueCopy(nil)
		return err
	})
	if err != nil || !bytes.Equal(got, want) {
		logging.Warn().Err(err).Msg("storage probe read-back failed")
		_ = db.Close()
		return false
	}

	if err := db.Close(); err != nil {
		logging.Warn().Err(err).Msg("storage probe close failed")
		return false
	}
	return true
}
