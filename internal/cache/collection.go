// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

// collection binds an in-memory view to its durable store collection.
// st is nil when storage is unavailable; every write is then dropped and
// the view stays empty for the life of the process.
//
// writeMu serializes store-commit-then-view-update pairs so the view always
// mirrors the latest committed snapshot, even when a refresh and an upsert
// race.
type collection[T Entity] struct {
	name    string // store collection name
	label   string // cache name for logs, metrics and events
	st      *store.Store
	view    *view[T]
	writeMu sync.Mutex
}

func newCollection[T Entity](name, label string, st *store.Store) *collection[T] {
	return &collection[T]{
		name:  name,
		label: label,
		st:    st,
		view:  newView[T](),
	}
}

// warm loads the durable collection into the view. Failures leave the view
// empty; the next successful refresh repopulates both layers.
func (c *collection[T]) warm(ctx context.Context) {
	if c.st == nil {
		return
	}

	recs, err := c.st.All(ctx, c.name)
	if err != nil {
		logging.Warn().Str("cache", c.label).Err(err).Msg("cache warm-up read failed")
		return
	}

	items := make([]T, 0, len(recs))
	for _, rec := range recs {
		var item T
		if err := json.Unmarshal(rec.Value, &item); err != nil {
			logging.Warn().
				Str("cache", c.label).
				Str("key", rec.Key).
				Err(err).
				Msg("cache skipping undecodable record")
			continue
		}
		items = append(items, item)
	}

	c.view.replace(items)
	logging.Debug().Str("cache", c.label).Int("count", len(items)).Msg("cache warmed from store")
}

// replaceAll swaps the durable snapshot and then the view. The store side
// is one atomic transaction; the view follows only after commit, so readers
// never observe a partial snapshot.
func (c *collection[T]) replaceAll(ctx context.Context, items []T) error {
	if c.st == nil {
		return store.ErrStorageUnavailable
	}

	recs := make([]store.KV, 0, len(items))
	for _, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode %s record %s: %w", c.label, item.Key(), err)
		}
		recs = append(recs, store.KV{Key: item.Key(), Value: doc})
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.st.ReplaceAll(ctx, c.name, recs); err != nil {
		return err
	}

	c.view.replace(items)
	return nil
}

// upsert writes one record through to the store and view.
func (c *collection[T]) upsert(ctx context.Context, item T) error {
	if c.st == nil {
		return store.ErrStorageUnavailable
	}

	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s record %s: %w", c.label, item.Key(), err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.st.Put(ctx, c.name, item.Key(), doc); err != nil {
		return err
	}

	c.view.upsert(item)
	return nil
}

// info derives {count, lastCachedAt} from the stored records: the count by
// walking the collection, the timestamp from the newest record found through
// the descending cached_at index. Any storage failure collapses to the empty
// info value.
func (c *collection[T]) info(ctx context.Context) models.CacheInfo {
	if c.st == nil {
		return models.CacheInfo{}
	}

	count, err := c.st.Count(ctx, c.name)
	if err != nil {
		logging.Debug().Str("cache", c.label).Err(err).Msg("cache info count failed")
		return models.CacheInfo{}
	}
	if count == 0 {
		return models.CacheInfo{}
	}

	newest, err := c.st.IndexScan(ctx, c.name, "cached_at", store.ScanOptions{Reverse: true, Limit: 1})
	if err != nil || len(newest) == 0 {
		logging.Debug().Str("cache", c.label).Err(err).Msg("cache info newest-record scan failed")
		return models.CacheInfo{Count: count}
	}

	var item T
	if err := json.Unmarshal(newest[0].Value, &item); err != nil {
		logging.Debug().Str("cache", c.label).Err(err).Msg("cache info newest record undecodable")
		return models.CacheInfo{Count: count}
	}

	last := item.CacheTime()
	return models.CacheInfo{Count: count, LastCachedAt: &last}
}

// stale reports whether the snapshot is too old to trust. An empty cache is
// always stale, for any threshold; the absence check runs before any age
// comparison.
func (c *collection[T]) stale(ctx context.Context, now time.Time, maxAgeHours int) bool {
	info := c.info(ctx)
	if info.Count == 0 || info.LastCachedAt == nil {
		return true
	}
	return now.Sub(*info.LastCachedAt) > time.Duration(maxAgeHours)*time.Hour
}
