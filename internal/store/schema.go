// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package store

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/phonotheca/phonotheca/internal/logging"
)

// Collection names. Every component addresses the store through these
// constants; the store rejects unknown names.
const (
	CollectionIdentity       = "identity"
	CollectionTracks         = "cachedTracks"
	CollectionPlaylists      = "cachedPlaylists"
	CollectionSmartPlaylists = "cachedSmartPlaylists"
	CollectionFavorites      = "cachedFavorites"
	CollectionProfiles       = "cachedProfiles"
	CollectionPendingActions = "pendingActions"
)

// IndexKind selects how an indexed field's JSON value is encoded into the
// index key so that byte order matches the field's natural order.
type IndexKind int

const (
	// IndexString indexes a JSON string field as-is.
	IndexString IndexKind = iota

	// IndexTime indexes an RFC 3339 timestamp field as zero-padded
	// nanoseconds, so byte order is chronological order.
	IndexTime
)

// Index declares one secondary index on a collection. Field names the JSON
// field of the stored document.
type Index struct {
	Field string
	Kind  IndexKind
}

// Collection declares one named collection and its secondary indexes.
type Collection struct {
	Name    string
	Indexes []Index
}

// SchemaVersion declares the complete collection set at one schema version.
// Versions are additive: a later version repeats every earlier collection
// and may add collections or indexes, never remove or rename them.
type SchemaVersion struct {
	Version     int
	Collections []Collection
}

// schemaVersions lists every schema the store has ever shipped, oldest
// first. Open migrates any older on-disk database forward through this
// list.
var schemaVersions = []SchemaVersion{
	{
		Version: 1,
		Collections: []Collection{
			{Name: CollectionIdentity},
			{Name: CollectionTracks, Indexes: []Index{
				{Field: "artist", Kind: IndexString},
				{Field: "album", Kind: IndexString},
				{Field: "cached_at", Kind: IndexTime},
			}},
			{Name: CollectionPlaylists, Indexes: []Index{
				{Field: "cached_at", Kind: IndexTime},
			}},
			{Name: CollectionSmartPlaylists, Indexes: []Index{
				{Field: "cached_at", Kind: IndexTime},
			}},
			{Name: CollectionFavorites, Indexes: []Index{
				{Field: "cached_at", Kind: IndexTime},
			}},
			{Name: CollectionProfiles, Indexes: []Index{
				{Field: "cached_at", Kind: IndexTime},
			}},
			{Name: CollectionPendingActions, Indexes: []Index{
				{Field: "profile_id", Kind: IndexString},
				{Field: "type", Kind: IndexString},
				{Field: "created_at", Kind: IndexTime},
			}},
		},
	},
}

// CurrentSchemaVersion is the schema version this build writes.
var CurrentSchemaVersion = schemaVersions[len(schemaVersions)-1].Version

// currentSchema returns the newest schema version declaration.
func currentSchema() SchemaVersion {
	return schemaVersions[len(schemaVersions)-1]
}

// metaSchemaVersion is the metadata key holding the on-disk schema version
// as a decimal string.
const metaSchemaVersion = "schema_version"

// readSchemaVersion returns the on-disk schema version, or 0 for a fresh
// database.
func readSchemaVersion(db *badger.DB) (int, error) {
	var version int
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(metaSchemaVersion))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			v, err := strconv.Atoi(string(val))
			if err != nil {
				return fmt.Errorf("parse schema version %q: %w", val, err)
			}
			version = v
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// writeSchemaVersion records the schema version after a successful migration.
func writeSchemaVersion(db *badger.DB, version int) error {
	err := db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(metaSchemaVersion), []byte(strconv.Itoa(version)))
	})
	if err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// migrate brings an on-disk database up to the current schema version.
//
// Because the schema is additive and collections live in a shared keyspace,
// new collections need no on-disk work; only secondary indexes have to be
// materialized. Migration therefore drops and rebuilds the index entries of
// every indexed collection from its records, then stamps the new version.
// The rebuild is idempotent, so a crash mid-migration just repeats it on
// the next open.
func migrate(db *badger.DB) error {
	onDisk, err := readSchemaVersion(db)
	if err != nil {
		return err
	}

	current := CurrentSchemaVersion
	switch {
	case onDisk == current:
		return nil
	case onDisk > current:
		return fmt.Errorf("%w: database schema v%d is newer than supported v%d",
			ErrSchemaMigration, onDisk, current)
	}

	if onDisk == 0 {
		// Fresh database: nothing to rebuild, just stamp the version.
		if err := writeSchemaVersion(db, current); err != nil {
			return fmt.Errorf("%w: %v", ErrSchemaMigration, err)
		}
		logging.Info().Int("schema_version", current).Msg("store initialized")
		return nil
	}

	logging.Info().
		Int("from_version", onDisk).
		Int("to_version", current).
		Msg("store schema upgrade started")

	for _, c := range currentSchema().Collections {
		if len(c.Indexes) == 0 {
			continue
		}
		if err := rebuildIndexes(db, c); err != nil {
			return fmt.Errorf("%w: rebuild %s indexes: %v", ErrSchemaMigration, c.Name, err)
		}
	}

	if err := writeSchemaVersion(db, current); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMigration, err)
	}

	logging.Info().
		Int("from_version", onDisk).
		Int("to_version", current).
		Msg("store schema upgrade complete")
	return nil
}

// rebuildIndexes drops and re-derives every index entry of one collection
// from its stored records, in a single transaction.
func rebuildIndexes(db *badger.DB, c Collection) error {
	return db.Update(func(txn *badger.Txn) error {
		stale, err := keysWithPrefix(txn, collectionIndexPrefix(c.Name))
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := recordPrefix(c.Name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			pk := string(item.Key()[len(prefix):])

			var doc []byte
			doc, err = item.ValueCopy(nil)
			if err != nil {
				return err
			}

			entries, err := indexEntries(c, doc)
			if err != nil {
				logging.Warn().
					Str("collection", c.Name).
					Str("key", pk).
					Err(err).
					Msg("store skipping unindexable record during rebuild")
				continue
			}
			for field, value := range entries {
				if err := txn.Set(indexKey(c.Name, field, value, pk), []byte(pk)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// indexEntries extracts the declared index fields from a JSON document and
// returns them encoded for key order. Fields absent from the document are
// simply not indexed.
func indexEntries(c Collection, doc []byte) (map[string]string, error) {
	if len(c.Indexes) == 0 {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	entries := make(map[string]string, len(c.Indexes))
	for _, idx := range c.Indexes {
		raw, ok := fields[idx.Field]
		if !ok || string(raw) == "null" {
			continue
		}

		switch idx.Kind {
		case IndexTime:
			var t time.Time
			if err := json.Unmarshal(raw, &t); err != nil {
				return nil, fmt.Errorf("field %s: %w", idx.Field, err)
			}
			entries[idx.Field] = EncodeTime(t)
		default:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("field %s: %w", idx.Field, err)
			}
			entries[idx.Field] = s
		}
	}
	return entries, nil
}

// EncodeTime encodes a timestamp for use in index keys and sequence-ordered
// primary keys: zero-padded nanoseconds since the Unix epoch, so that byte
// order equals chronological order.
func EncodeTime(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixNano())
}

// EncodeSeq encodes an auto-increment sequence number as a zero-padded
// primary key, so that byte order equals assignment order.
func EncodeSeq(n uint64) string {
	return fmt.Sprintf("%020d", n)
}
