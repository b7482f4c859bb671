// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
)

// Config holds the store settings.
type Config struct {
	// Path is the directory holding the BadgerDB database.
	Path string

	// SyncWrites forces an fsync on every commit. Leave enabled outside of
	// tests; the whole point of the store is surviving a crash.
	SyncWrites bool
}

// Store is the durable named-collection store shared by the caches, the
// outbox and the identity record. All methods are safe for concurrent use.
type Store struct {
	db          *badger.DB
	path        string
	collections map[string]Collection

	mu     sync.RWMutex
	seqs   map[string]*badger.Sequence
	closed bool
}

// KV pairs a record's primary key with its serialized document.
type KV struct {
	Key   string
	Value []byte
}

// ScanOptions controls an IndexScan.
type ScanOptions struct {
	// Value restricts the scan to entries whose encoded index value equals
	// Value exactly. Empty scans the whole index in value order.
	Value string

	// Reverse iterates in descending key order.
	Reverse bool

	// Limit caps the number of returned records. Zero means no limit.
	Limit int
}

// seqBandwidth is how many sequence numbers a badger.Sequence leases at a
// time. Unused numbers in a lease are lost on close, leaving gaps; gaps are
// harmless because sequence keys only have to be monotonic.
const seqBandwidth = 64

// Open opens (or creates) the store at cfg.Path and migrates it to the
// current schema version. Any failure to open or migrate is reported as
// ErrStorageUnavailable; callers are expected to degrade to a nil store.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.Join(ErrStorageUnavailable, fmt.Errorf("store path is empty"))
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, fmt.Errorf("open badger: %w", err))
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	schema := currentSchema()
	collections := make(map[string]Collection, len(schema.Collections))
	for _, c := range schema.Collections {
		collections[c.Name] = c
	}

	s := &Store{
		db:          db,
		path:        cfg.Path,
		collections: collections,
		seqs:        make(map[string]*badger.Sequence),
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Int("schema_version", CurrentSchemaVersion).
		Msg("store opened")
	return s, nil
}

// Close releases sequences and closes the database. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for name, seq := range s.seqs {
		if err := seq.Release(); err != nil {
			logging.Warn().Str("collection", name).Err(err).Msg("store sequence release failed")
		}
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	logging.Info().Str("path", s.path).Msg("store closed")
	return nil
}

// Path returns the directory the store lives in.
func (s *Store) Path() string {
	return s.path
}

// Get returns the document stored under key, or ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, error) {
	c, err := s.ready(collection)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var doc []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(c.Name, key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, ErrKeyNotFound) {
		// A miss is a normal outcome, not a store error.
		metrics.RecordStoreOperation("get", collection, time.Since(start), nil)
		return nil, ErrKeyNotFound
	}
	metrics.RecordStoreOperation("get", collection, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

// Put upserts one document and maintains its index entries in the same
// transaction.
func (s *Store) Put(ctx context.Context, collection, key string, doc []byte) error {
	c, err := s.ready(collection)
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.db.Update(func(txn *badger.Txn) error {
		return putTxn(txn, c, key, doc)
	})
	metrics.RecordStoreOperation("put", collection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, key, err)
	}
	return nil
}

// BulkPut upserts a batch of documents in one transaction. Either every
// record lands or none does.
func (s *Store) BulkPut(ctx context.Context, collection string, recs []KV) error {
	c, err := s.ready(collection)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	start := time.Now()
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, rec := range recs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := putTxn(txn, c, rec.Key, rec.Value); err != nil {
				return err
			}
		}
		return nil
	})
	metrics.RecordStoreOperation("bulk_put", collection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("bulk put %s: %w", collection, err)
	}
	return nil
}

// Delete removes one document and its index entries. Deleting a missing key
// is not an error.
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	c, err := s.ready(collection)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return deleteTxn(txn, c, key)
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

// Clear removes every record and index entry of one collection in a single
// transaction.
func (s *Store) Clear(ctx context.Context, collection string) error {
	c, err := s.ready(collection)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return clearTxn(txn, c)
	})
	if err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	return nil
}

// ReplaceAll atomically swaps a collection's full contents for recs. The
// old snapshot stays in place until the transaction commits, so a crash
// leaves either the old contents or the new, never a mix.
func (s *Store) ReplaceAll(ctx context.Context, collection string, recs []KV) error {
	c, err := s.ready(collection)
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := clearTxn(txn, c); err != nil {
			return err
		}
		for _, rec := range recs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := insertTxn(txn, c, rec.Key, rec.Value); err != nil {
				return err
			}
		}
		return nil
	})
	metrics.RecordStoreOperation("replace_all", collection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

// All returns every record of a collection in primary-key order.
func (s *Store) All(ctx context.Context, collection string) ([]KV, error) {
	c, err := s.ready(collection)
	if err != nil {
		return nil, err
	}

	var recs []KV
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := recordPrefix(c.Name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			key := string(item.Key()[len(prefix):])
			doc, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			recs = append(recs, KV{Key: key, Value: doc})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	return recs, nil
}

// Count returns the number of records in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	c, err := s.ready(collection)
	if err != nil {
		return 0, err
	}

	count := 0
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := recordPrefix(c.Name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return count, nil
}

// IndexScan returns records ordered by one secondary index. With
// ScanOptions.Value set, only records whose indexed field equals that value
// are returned; records are always materialized from the primary keyspace,
// so a scan never observes an index entry without its record.
func (s *Store) IndexScan(ctx context.Context, collection, field string, opts ScanOptions) ([]KV, error) {
	c, err := s.ready(collection)
	if err != nil {
		return nil, err
	}
	if !c.hasIndex(field) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, collection, field)
	}

	prefix := indexPrefix(c.Name, field)
	if opts.Value != "" {
		prefix = indexValuePrefix(c.Name, field, opts.Value)
	}

	var recs []KV
	err = s.db.View(func(txn *badger.Txn) error {
		iopts := badger.DefaultIteratorOptions
		iopts.PrefetchValues = true
		iopts.Reverse = opts.Reverse
		it := txn.NewIterator(iopts)
		defer it.Close()

		seek := prefix
		if opts.Reverse {
			// Reverse iteration starts past the last key with the prefix.
			seek = append(append([]byte{}, prefix...), 0xFF)
		}

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			pk, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			item, err := txn.Get(recordKey(c.Name, string(pk)))
			if errors.Is(err, badger.ErrKeyNotFound) {
				logging.Warn().
					Str("collection", c.Name).
					Str("field", field).
					Str("key", string(pk)).
					Msg("store index entry without record, skipping")
				continue
			}
			if err != nil {
				return err
			}
			doc, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			recs = append(recs, KV{Key: string(pk), Value: doc})
			if opts.Limit > 0 && len(recs) >= opts.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index scan %s.%s: %w", collection, field, err)
	}
	return recs, nil
}

// DistinctIndexValues returns the distinct values of one secondary index in
// ascending order. Time-kind indexes return their encoded form.
func (s *Store) DistinctIndexValues(ctx context.Context, collection, field string) ([]string, error) {
	c, err := s.ready(collection)
	if err != nil {
		return nil, err
	}
	if !c.hasIndex(field) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, collection, field)
	}

	var values []string
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := indexPrefix(c.Name, field)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rest := it.Item().Key()[len(prefix):]
			sep := bytes.LastIndexByte(rest, keySep)
			if sep < 0 {
				continue
			}
			value := string(rest[:sep])
			if len(values) == 0 || values[len(values)-1] != value {
				values = append(values, value)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
	}
	return values, nil
}

// NextSequence returns the next auto-increment key for a collection.
// Sequences start at 1 and survive restarts; they may skip numbers but
// never repeat one.
func (s *Store) NextSequence(collection string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	if _, ok := s.collections[collection]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	seq, ok := s.seqs[collection]
	if !ok {
		var err error
		seq, err = s.db.GetSequence(seqKey(collection), seqBandwidth)
		if err != nil {
			return 0, fmt.Errorf("sequence %s: %w", collection, err)
		}
		s.seqs[collection] = seq
	}

	n, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("sequence %s: %w", collection, err)
	}
	return n + 1, nil
}

// SizeBytes returns the estimated on-disk size of the database.
func (s *Store) SizeBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}
	lsm, vlog := s.db.Size()
	return lsm + vlog
}

// RunGC reclaims value-log space until BadgerDB reports nothing left to
// rewrite. Safe to call while the store is in use.
func (s *Store) RunGC(ratio float64) error {
	if err := s.readyDB(); err != nil {
		return err
	}

	for {
		err := s.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run gc: %w", err)
		}
	}
}

// Backup streams a full backup of every collection to w and returns the
// version timestamp the next incremental backup should start from.
func (s *Store) Backup(w io.Writer, since uint64) (uint64, error) {
	if err := s.readyDB(); err != nil {
		return 0, err
	}

	next, err := s.db.Backup(w, since)
	if err != nil {
		return 0, fmt.Errorf("backup store: %w", err)
	}
	return next, nil
}

// ready checks the store is open and resolves a collection name.
func (s *Store) ready(collection string) (Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Collection{}, ErrStoreClosed
	}
	c, ok := s.collections[collection]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return c, nil
}

// readyDB checks the store is open for operations that span collections.
func (s *Store) readyDB() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (c Collection) hasIndex(field string) bool {
	for _, idx := range c.Indexes {
		if idx.Field == field {
			return true
		}
	}
	return false
}

// putTxn upserts one record, replacing any index entries that pointed at
// the previous version of the document.
func putTxn(txn *badger.Txn, c Collection, key string, doc []byte) error {
	if len(c.Indexes) > 0 {
		item, err := txn.Get(recordKey(c.Name, key))
		switch {
		case err == nil:
			old, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			stale, err := indexEntries(c, old)
			if err == nil {
				for field, value := range stale {
					if err := txn.Delete(indexKey(c.Name, field, value, key)); err != nil {
						return err
					}
				}
			}
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}
	}
	return insertTxn(txn, c, key, doc)
}

// insertTxn writes a record and its index entries, assuming no previous
// version exists. Callers that may be overwriting must use putTxn.
func insertTxn(txn *badger.Txn, c Collection, key string, doc []byte) error {
	if err := txn.Set(recordKey(c.Name, key), doc); err != nil {
		return err
	}

	entries, err := indexEntries(c, doc)
	if err != nil {
		return fmt.Errorf("index %s/%s: %w", c.Name, key, err)
	}
	for field, value := range entries {
		if err := txn.Set(indexKey(c.Name, field, value, key), []byte(key)); err != nil {
			return err
		}
	}
	return nil
}

// deleteTxn removes one record and its index entries.
func deleteTxn(txn *badger.Txn, c Collection, key string) error {
	if len(c.Indexes) > 0 {
		item, err := txn.Get(recordKey(c.Name, key))
		switch {
		case err == nil:
			old, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			stale, err := indexEntries(c, old)
			if err == nil {
				for field, value := range stale {
					if err := txn.Delete(indexKey(c.Name, field, value, key)); err != nil {
						return err
					}
				}
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		default:
			return err
		}
	}
	return txn.Delete(recordKey(c.Name, key))
}

// clearTxn removes every record and index entry of a collection. Keys are
// collected before deleting; BadgerDB does not allow writes under an open
// iterator in the same transaction.
func clearTxn(txn *badger.Txn, c Collection) error {
	for _, prefix := range [][]byte{recordPrefix(c.Name), collectionIndexPrefix(c.Name)} {
		keys, err := keysWithPrefix(txn, prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
	}
	return nil
}

// keysWithPrefix collects every key under a prefix without touching values.
func keysWithPrefix(txn *badger.Txn, prefix []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

// Key layout. Collections share one keyspace, separated by a kind byte and
// NUL separators. Collection and field names never contain NUL; primary
// keys are UUIDs or zero-padded sequence numbers, so the final separator is
// unambiguous.
const keySep = 0x00

func makeKey(kind byte, parts ...string) []byte {
	n := 1
	for _, p := range parts {
		n += 1 + len(p)
	}
	k := make([]byte, 0, n)
	k = append(k, kind)
	for _, p := range parts {
		k = append(k, keySep)
		k = append(k, p...)
	}
	return k
}

func recordKey(collection, pk string) []byte { return makeKey('c', collection, pk) }
func recordPrefix(collection string) []byte  { return makeKey('c', collection, "") }

func indexKey(collection, field, value, pk string) []byte {
	return makeKey('i', collection, field, value, pk)
}
func indexPrefix(collection, field string) []byte { return makeKey('i', collection, field, "") }
func indexValuePrefix(collection, field, value string) []byte {
	return makeKey('i', collection, field, value, "")
}
func collectionIndexPrefix(collection string) []byte { return makeKey('i', collection, "") }

func metaKey(name string) []byte      { return makeKey('m', name) }
func seqKey(collection string) []byte { return makeKey('m', "seq", collection) }

// Errors
var (
	// ErrStorageUnavailable is returned when the store cannot be opened or
	// migrated. Components receiving it run degraded with a nil store.
	ErrStorageUnavailable = fmt.Errorf("durable storage is unavailable")

	// ErrStoreClosed is returned when an operation races Close.
	ErrStoreClosed = fmt.Errorf("store is closed")

	// ErrKeyNotFound is returned by Get for a missing key.
	ErrKeyNotFound = fmt.Errorf("key not found")

	// ErrUnknownCollection is returned for a collection name the schema
	// does not declare.
	ErrUnknownCollection = fmt.Errorf("unknown collection")

	// ErrUnknownIndex is returned for an index scan on an undeclared field.
	ErrUnknownIndex = fmt.Errorf("unknown index")

	// ErrSchemaMigration is returned when the on-disk schema cannot be
	// upgraded to the version this build expects.
	ErrSchemaMigration = fmt.Errorf("schema migration failed")
)
