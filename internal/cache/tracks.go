// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

// TrackCache serves the track snapshot: point reads, predicate and fuzzy
// search, artist/album browsing through the store's secondary indexes, and
// the id-list join that turns playlist track ids into playable entities.
type TrackCache struct {
	col     *collection[models.CachedTrack]
	suggest *suggestIndex
	now     func() time.Time
}

func newTrackCache(st *store.Store, now func() time.Time) *TrackCache {
	return &TrackCache{
		col:     newCollection[models.CachedTrack](store.CollectionTracks, CacheTracks, st),
		suggest: newSuggestIndex(),
		now:     now,
	}
}

// GetAll returns every cached track ordered by id.
func (tc *TrackCache) GetAll() []models.CachedTrack {
	return tc.col.view.all()
}

// GetByID returns one cached track.
func (tc *TrackCache) GetByID(id string) (models.CachedTrack, bool) {
	return tc.col.view.get(id)
}

// Search returns the tracks matching pred, ordered by id.
func (tc *TrackCache) Search(pred func(models.CachedTrack) bool) []models.CachedTrack {
	return tc.col.view.filter(pred)
}

// SearchText fuzzy-matches query against title, artist and album, best
// matches first. An empty query matches nothing.
func (tc *TrackCache) SearchText(query string) []models.CachedTrack {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	tracks := tc.col.view.all()
	if len(tracks) == 0 {
		return nil
	}

	// Haystack per track: lowercase "title artist album". Distinct tracks
	// can share a haystack, so index them by it.
	haystacks := make([]string, 0, len(tracks))
	byHaystack := make(map[string][]models.CachedTrack, len(tracks))
	for _, t := range tracks {
		h := strings.ToLower(t.Title + " " + t.Artist + " " + t.Album)
		if _, seen := byHaystack[h]; !seen {
			haystacks = append(haystacks, h)
		}
		byHaystack[h] = append(byHaystack[h], t)
	}

	matches := fuzzy.RankFindFold(query, haystacks)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	results := make([]models.CachedTrack, 0, len(matches))
	for _, match := range matches {
		results = append(results, byHaystack[match.Target]...)
	}
	return results
}

// Suggest returns up to limit autocomplete candidates for a prefix over
// one of the suggestable fields ("title", "artist", "album").
func (tc *TrackCache) Suggest(field, prefix string, limit int) []string {
	return tc.suggest.suggest(field, prefix, limit)
}

// ResolveIDs joins an ordered id list against the cache. Output preserves
// the exact input order; ids with no cached track are dropped, never
// null-padded, so the result may be shorter than the input.
func (tc *TrackCache) ResolveIDs(ids []string) []models.CachedTrack {
	results := make([]models.CachedTrack, 0, len(ids))
	for _, id := range ids {
		if t, ok := tc.col.view.get(id); ok {
			results = append(results, t)
		}
	}
	return results
}

// ByArtist returns the cached tracks of one artist (exact match) through
// the artist index, in index order.
func (tc *TrackCache) ByArtist(ctx context.Context, artist string) []models.CachedTrack {
	return tc.scanIndex(ctx, "artist", artist)
}

// ByAlbum returns the cached tracks of one album (exact match) through the
// album index, in index order.
func (tc *TrackCache) ByAlbum(ctx context.Context, album string) []models.CachedTrack {
	return tc.scanIndex(ctx, "album", album)
}

// Artists returns every distinct artist in the cache, sorted.
func (tc *TrackCache) Artists(ctx context.Context) []string {
	return tc.distinct(ctx, "artist")
}

// Albums returns every distinct album in the cache, sorted.
func (tc *TrackCache) Albums(ctx context.Context) []string {
	return tc.distinct(ctx, "album")
}

// Stale reports whether the track snapshot is missing or older than
// maxAgeHours.
func (tc *TrackCache) Stale(ctx context.Context, maxAgeHours int) bool {
	return tc.col.stale(ctx, tc.now(), maxAgeHours)
}

// Info returns {count, lastCachedAt} for the track snapshot.
func (tc *TrackCache) Info(ctx context.Context) models.CacheInfo {
	return tc.col.info(ctx)
}

// rebuildSuggest re-derives the autocomplete index from the current view.
// Called after every installed snapshot; the index is replaced wholesale,
// like the snapshot itself.
func (tc *TrackCache) rebuildSuggest() {
	tc.suggest.rebuild(tc.col.view.all())
}

func (tc *TrackCache) scanIndex(ctx context.Context, field, value string) []models.CachedTrack {
	if tc.col.st == nil || value == "" {
		return nil
	}

	recs, err := tc.col.st.IndexScan(ctx, store.CollectionTracks, field, store.ScanOptions{Value: value})
	if err != nil {
		logging.Debug().Str("field", field).Err(err).Msg("track index scan failed")
		return nil
	}

	tracks := make([]models.CachedTrack, 0, len(recs))
	for _, rec := range recs {
		var t models.CachedTrack
		if err := json.Unmarshal(rec.Value, &t); err != nil {
			logging.Debug().Str("key", rec.Key).Err(err).Msg("track record undecodable")
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks
}

func (tc *TrackCache) distinct(ctx context.Context, field string) []string {
	if tc.col.st == nil {
		return nil
	}

	values, err := tc.col.st.DistinctIndexValues(ctx, store.CollectionTracks, field)
	if err != nil {
		logging.Debug().Str("field", field).Err(err).Msg("track distinct scan failed")
		return nil
	}
	return values
}
