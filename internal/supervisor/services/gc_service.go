// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package services

import (
	"context"
	"time"

	"github.com/phonotheca/phonotheca/internal/logging"
)

// ValueLogGC matches the store's value-log garbage collection method.
type ValueLogGC interface {
	RunGC(ratio float64) error
}

// ValueLogGCService periodically reclaims space in the store's value log.
//
// Badger never rewrites value-log files on its own; something has to call
// RunValueLogGC while the process is otherwise quiet. For a cache engine
// that rewrites whole snapshots on every refresh this matters - stale
// track blobs accumulate until GC runs.
//
// Example usage:
//
//	svc := services.NewValueLogGCService(st, 10*time.Minute, 0.5)
//	tree.AddDataService(svc)
type ValueLogGCService struct {
	store    ValueLogGC
	interval time.Duration
	ratio    float64
	name     string
}

// NewValueLogGCService creates the GC loop service. A non-positive
// interval defaults to 10 minutes; a ratio outside (0, 1) defaults to 0.5,
// meaning a value-log file is rewritten when half of it is discardable.
func NewValueLogGCService(store ValueLogGC, interval time.Duration, ratio float64) *ValueLogGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &ValueLogGCService{
		store:    store,
		interval: interval,
		ratio:    ratio,
		name:     "valuelog-gc",
	}
}

// Serve implements suture.Service. GC failures are logged and the loop
// continues; restarting the service would not make the next attempt any
// more likely to succeed.
func (g *ValueLogGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := g.store.RunGC(g.ratio); err != nil {
				logging.Warn().Err(err).Msg("Value-log GC pass failed")
				continue
			}
			logging.Debug().Float64("ratio", g.ratio).Msg("Value-log GC pass complete")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer; suture uses it to identify the service
// in log messages.
func (g *ValueLogGCService) String() string {
	return g.name
}
