// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package cache

import (
	"sort"
	"strings"
	"sync"

	"github.com/phonotheca/phonotheca/internal/models"
)

// Suggestable fields of the track autocomplete index.
const (
	SuggestTitle  = "title"
	SuggestArtist = "artist"
	SuggestAlbum  = "album"
)

const defaultSuggestLimit = 10

// suggestIndex holds one prefix tree per suggestable track field. Lookups
// are O(m) in the prefix length, so the UI can query on every keystroke
// without touching the store. The index is derived data: it is rebuilt
// wholesale from the track view after each installed snapshot, never
// patched incrementally.
type suggestIndex struct {
	mu    sync.RWMutex
	trees map[string]*prefixTree
}

func newSuggestIndex() *suggestIndex {
	return &suggestIndex{trees: make(map[string]*prefixTree)}
}

// rebuild replaces the index contents from a track snapshot. Occurrence
// counts rank suggestions: an artist with forty cached tracks outranks one
// with two.
func (s *suggestIndex) rebuild(tracks []models.CachedTrack) {
	trees := map[string]*prefixTree{
		SuggestTitle:  newPrefixTree(),
		SuggestArtist: newPrefixTree(),
		SuggestAlbum:  newPrefixTree(),
	}
	for _, t := range tracks {
		trees[SuggestTitle].insert(t.Title)
		trees[SuggestArtist].insert(t.Artist)
		trees[SuggestAlbum].insert(t.Album)
	}

	s.mu.Lock()
	s.trees = trees
	s.mu.Unlock()
}

// suggest returns up to limit completions for prefix over one field,
// most frequent first, ties alphabetical. Unknown fields and empty
// prefixes return nothing.
func (s *suggestIndex) suggest(field, prefix string, limit int) []string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	s.mu.RLock()
	tree := s.trees[field]
	s.mu.RUnlock()
	if tree == nil {
		return nil
	}
	return tree.complete(prefix, limit)
}

// prefixTree is a case-insensitive trie over the values of one field.
// It is built once per snapshot and read-only afterwards, so lookups
// need no locking of their own.
type prefixTree struct {
	root *prefixNode
}

type prefixNode struct {
	children map[rune]*prefixNode
	terminal bool
	value    string // original casing of the completed value
	count    int
}

func newPrefixTree() *prefixTree {
	return &prefixTree{root: &prefixNode{children: make(map[rune]*prefixNode)}}
}

func (p *prefixTree) insert(value string) {
	if value == "" {
		return
	}

	node := p.root
	for _, ch := range strings.ToLower(value) {
		child := node.children[ch]
		if child == nil {
			child = &prefixNode{children: make(map[rune]*prefixNode)}
			node.children[ch] = child
		}
		node = child
	}
	node.terminal = true
	node.value = value
	node.count++
}

// complete returns the completions under prefix ranked by count then value.
func (p *prefixTree) complete(prefix string, limit int) []string {
	node := p.root
	for _, ch := range strings.ToLower(prefix) {
		node = node.children[ch]
		if node == nil {
			return nil
		}
	}

	type completion struct {
		value string
		count int
	}
	var found []completion

	var walk func(*prefixNode)
	walk = func(n *prefixNode) {
		if n.terminal {
			found = append(found, completion{value: n.value, count: n.count})
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(node)

	sort.Slice(found, func(i, j int) bool {
		if found[i].count != found[j].count {
			return found[i].count > found[j].count
		}
		return found[i].value < found[j].value
	})

	if len(found) > limit {
		found = found[:limit]
	}

	values := make([]string, len(found))
	for i, f := range found {
		values[i] = f.value
	}
	return values
}
