// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package store provides the durable named-collection key/value store that
// backs every cache and queue in the engine, built on BadgerDB.
//
// # Architecture
//
// A single BadgerDB database holds all collections. Collections are carved
// out of the keyspace by prefix rather than by separate databases, so one
// transaction can span a whole collection:
//
//	c\x00<collection>\x00<pk>                 → record (JSON document)
//	i\x00<collection>\x00<field>\x00<value>\x00<pk> → index entry (value: pk)
//	m\x00<name>                               → store metadata
//
// Records are opaque JSON documents. Secondary indexes are declared per
// collection in the schema; the store extracts the indexed fields from each
// document on write and maintains the index entries inside the same
// transaction, so records and their index entries never diverge.
//
// # Schema Versioning
//
// The schema is additive: each version declares the complete collection set
// and the indexed fields, and later versions may only add collections or
// indexes, never drop or rename them. On open, the store compares the
// on-disk version against the code's version and rebuilds the affected
// indexes in place. A database written by a newer version than the code
// supports fails to open.
//
// # Atomicity
//
// ReplaceAll swaps a collection's full contents in one BadgerDB transaction.
// A crash mid-swap leaves either the old snapshot or the new one, never a
// mix. Collections here are personal-library sized, so a snapshot fits
// comfortably inside a single transaction.
//
// # Capability Probe
//
// Probe reports whether durable storage works at all on this machine,
// opening a throwaway database raced against a hard deadline on first use
// and memoizing the verdict. The daemon constructs one Probe and shares it;
// callers that get false are expected to run with a nil store and degrade
// to no-ops.
//
// # Why BadgerDB
//
// BadgerDB was chosen for:
//   - Pure Go (no CGO required)
//   - ACID transactions with fsync on commit
//   - Prefix iteration in key order, ascending and descending
//   - Built-in sequences for auto-increment keys
//
// # Thread Safety
//
// All Store operations are thread-safe. Multiple goroutines can read and
// write concurrently; BadgerDB resolves conflicts with serializable
// snapshot isolation.
package store
