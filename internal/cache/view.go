// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package cache

import (
	"sort"
	"sync"
	"time"
)

// Entity constrains the record types the caches hold. Every cached record
// has a stable primary key and carries the time it was snapshotted.
type Entity interface {
	Key() string
	CacheTime() time.Time
}

// view is the in-memory mirror of one durable collection. All reads are
// served from it; writes go through the owning collection, which updates
// the view only after the store commit succeeds.
type view[T Entity] struct {
	mu   sync.RWMutex
	byID map[string]T
}

func newView[T Entity]() *view[T] {
	return &view[T]{byID: make(map[string]T)}
}

// replace swaps the entire contents for a new snapshot.
func (v *view[T]) replace(items []T) {
	next := make(map[string]T, len(items))
	for _, item := range items {
		next[item.Key()] = item
	}

	v.mu.Lock()
	v.byID = next
	v.mu.Unlock()
}

// upsert inserts or overwrites a single record.
func (v *view[T]) upsert(item T) {
	v.mu.Lock()
	v.byID[item.Key()] = item
	v.mu.Unlock()
}

// get returns the record with the given key.
func (v *view[T]) get(id string) (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	item, ok := v.byID[id]
	return item, ok
}

// all returns every record ordered by key, matching the durable
// collection's primary-key order.
func (v *view[T]) all() []T {
	return v.filter(nil)
}

// filter returns the records matching pred (all of them when pred is nil),
// ordered by key.
func (v *view[T]) filter(pred func(T) bool) []T {
	v.mu.RLock()
	items := make([]T, 0, len(v.byID))
	for _, item := range v.byID {
		if pred == nil || pred(item) {
			items = append(items, item)
		}
	}
	v.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].Key() < items[j].Key()
	})
	return items
}

// size returns the number of records in the view.
func (v *view[T]) size() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.byID)
}

// newest returns the latest snapshot timestamp across all records, or
// false when the view is empty.
func (v *view[T]) newest() (time.Time, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var max time.Time
	found := false
	for _, item := range v.byID {
		if t := item.CacheTime(); !found || t.After(max) {
			max = t
			found = true
		}
	}
	return max, found
}
