// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package backup creates scheduled snapshots of the durable store and prunes
// old ones. The cached entities are refetchable from the remote service at
// any time; the device identity and queued offline actions are not, which is
// what the snapshots protect.
//
// Every snapshot is a full store export, so any single file restores the
// store on its own. Incremental chains would be smaller but a pruned link
// breaks everything after it, and the protected data is tiny.
//
// Restoring is an offline operation: stop the daemon and load a snapshot
// file with `badger restore` (or a fresh store's Load) before starting up
// again. The manager records every attempt in a JSON ledger next to the
// snapshot files.
package backup

import (
	"time"
)

// Status is the terminal state of one snapshot attempt.
type Status string

const (
	// StatusCompleted marks a snapshot that was written and renamed into place.
	StatusCompleted Status = "completed"

	// StatusFailed marks an attempt that produced no usable file.
	StatusFailed Status = "failed"
)

// Trigger records what initiated a snapshot.
type Trigger string

const (
	// TriggerManual marks an operator-requested snapshot.
	TriggerManual Trigger = "manual"

	// TriggerScheduled marks a snapshot created by the interval scheduler.
	TriggerScheduled Trigger = "scheduled"
)

// Snapshot is the ledger entry for one snapshot attempt.
type Snapshot struct {
	// ID doubles as the snapshot file's base name.
	ID string `json:"id"`

	Trigger   Trigger   `json:"trigger"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Duration of the export, in milliseconds when serialized.
	Duration time.Duration `json:"duration_ms"`

	// FilePath is the final on-disk location; empty for failed attempts.
	FilePath string `json:"file_path,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`

	// Checksum is the SHA-256 of the snapshot file, computed while writing.
	Checksum string `json:"checksum,omitempty"`

	// UptoVersion is the store version the export covers.
	UptoVersion uint64 `json:"upto_version,omitempty"`

	AppVersion string `json:"app_version"`
	Error      string `json:"error,omitempty"`
}

// Ledger is the persisted snapshot history, stored as ledger.json in the
// snapshot directory.
type Ledger struct {
	Snapshots []*Snapshot `json:"snapshots"`
	LastRun   *time.Time  `json:"last_run,omitempty"`
	NextRun   *time.Time  `json:"next_run,omitempty"`
}
