// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/phonotheca/phonotheca/internal/events"
	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

// MaxRetries is the drain ceiling: an action whose retry count reaches this
// value is evicted instead of reprocessed. A payload that cannot execute
// after this many attempts is assumed un-executable rather than transiently
// blocked; keeping it would grow the queue and fail again on every drain.
const MaxRetries = 3

// Executor delivers one queued action to the remote service. Only success
// or failure matters to the queue; transient and permanent failures count
// identically toward the retry ceiling.
type Executor interface {
	Execute(ctx context.Context, action models.PendingAction) error
}

// Queue is the durable outbox of pending remote actions. Append-only on the
// write side, strictly FIFO on the drain side, with retry accounting per
// action. All methods are safe for concurrent use and never fail outward:
// with storage unavailable, writes are dropped and reads return empty.
type Queue struct {
	store    *store.Store // nil when storage is unavailable
	executor Executor     // nil when no remote is configured
	bus      *events.Bus  // optional
	now      func() time.Time
}

// NewQueue creates the outbox queue. store, executor and bus may each be
// nil; the queue degrades accordingly.
func NewQueue(st *store.Store, executor Executor, bus *events.Bus) *Queue {
	return &Queue{
		store:    st,
		executor: executor,
		bus:      bus,
		now:      time.Now,
	}
}

// Enqueue appends one action with retries=0. Unknown action types and
// actions without a profile are rejected before touching storage. With
// storage unavailable the action is silently dropped: an in-memory fallback
// would not survive the reload that offline queueing exists to survive.
func (q *Queue) Enqueue(ctx context.Context, profileID string, actionType models.ActionType, payload any) {
	if !actionType.Valid() {
		logging.Warn().Str("type", actionType.String()).Msg("outbox rejected unknown action type")
		return
	}
	if profileID == "" {
		logging.Warn().Str("type", actionType.String()).Msg("outbox rejected action without profile")
		return
	}
	if q.store == nil {
		metrics.OutboxDropped.Inc()
		logging.Debug().Str("type", actionType.String()).Msg("storage unavailable, outbox action dropped")
		return
	}

	var raw json.RawMessage
	if payload != nil {
		doc, err := json.Marshal(payload)
		if err != nil {
			logging.Warn().Str("type", actionType.String()).Err(err).Msg("outbox payload marshal failed, action dropped")
			return
		}
		raw = doc
	}

	seq, err := q.store.NextSequence(store.CollectionPendingActions)
	if err != nil {
		metrics.OutboxDropped.Inc()
		logging.Warn().Str("type", actionType.String()).Err(err).Msg("outbox sequence failed, action dropped")
		return
	}

	action := models.PendingAction{
		ID:        seq,
		ProfileID: profileID,
		Type:      actionType,
		Payload:   raw,
		CreatedAt: q.now(),
		Retries:   0,
	}

	if err := q.put(ctx, action); err != nil {
		metrics.OutboxDropped.Inc()
		logging.Warn().Str("type", actionType.String()).Err(err).Msg("outbox write failed, action dropped")
		return
	}

	metrics.RecordEnqueue(actionType.String())
	q.updateDepthGauge(ctx)
	logging.Debug().
		Uint64("id", action.ID).
		Str("type", actionType.String()).
		Str("profile_id", profileID).
		Msg("outbox action enqueued")
	q.publishEnqueued(ctx, action)
}

// ListPending returns one profile's queued actions in creation order:
// strictly FIFO, action types interleaved exactly as they were enqueued.
// Empty when storage is unavailable or the profile has nothing queued.
func (q *Queue) ListPending(ctx context.Context, profileID string) []models.PendingAction {
	if q.store == nil || profileID == "" {
		return nil
	}

	// The profile_id index orders entries by sequence-number primary key,
	// and sequence order is enqueue order.
	recs, err := q.store.IndexScan(ctx, store.CollectionPendingActions, "profile_id", store.ScanOptions{
		Value: profileID,
	})
	if err != nil {
		logging.Warn().Str("profile_id", profileID).Err(err).Msg("outbox pending scan failed")
		return nil
	}
	return decodeActions(recs)
}

// PendingCount returns how many actions are queued across all profiles.
// This is the engine's only per-user error signal: "N actions pending sync".
func (q *Queue) PendingCount(ctx context.Context) int {
	if q.store == nil {
		return 0
	}
	count, err := q.store.Count(ctx, store.CollectionPendingActions)
	if err != nil {
		logging.Debug().Err(err).Msg("outbox pending count failed")
		return 0
	}
	return count
}

// Drain executes one profile's queued actions in FIFO order and returns the
// aggregate outcome. The pending list is snapshotted once up front, so
// actions enqueued while the pass runs wait for the next trigger.
//
// Per action: delivered successfully, the record is deleted and counted in
// Processed. On failure the retry count is incremented; when the new count
// reaches MaxRetries the record is deleted anyway and counted in Failed.
// Actions that failed but remain queued appear in neither count.
func (q *Queue) Drain(ctx context.Context, profileID string) models.DrainResult {
	var result models.DrainResult

	if q.store == nil || q.executor == nil || profileID == "" {
		return result
	}

	pending := q.ListPending(ctx, profileID)
	if len(pending) == 0 {
		return result
	}

	logging.Info().
		Int("pending", len(pending)).
		Str("profile_id", profileID).
		Msg("outbox drain started")

	start := q.now()
	failures := 0
	for _, action := range pending {
		select {
		case <-ctx.Done():
			logging.Warn().Err(ctx.Err()).Msg("outbox drain interrupted")
			q.finishDrain(ctx, result, failures, q.now().Sub(start))
			return result
		default:
		}

		outcome, failed := q.processAction(ctx, action)
		if failed {
			failures++
		}
		switch outcome {
		case actionProcessed:
			result.Processed++
		case actionEvicted:
			result.Failed++
		case actionRequeued:
			// Stays queued for the next drain; counted nowhere.
		}
	}

	q.finishDrain(ctx, result, failures, q.now().Sub(start))
	return result
}

// actionOutcome is the terminal state of one action within a drain pass.
type actionOutcome int

const (
	actionProcessed actionOutcome = iota
	actionRequeued
	actionEvicted
)

// processAction executes one action's remote side effect and settles its
// queue record. The boolean reports whether the execution itself failed,
// whatever became of the record afterward.
func (q *Queue) processAction(ctx context.Context, action models.PendingAction) (actionOutcome, bool) {
	err := q.executor.Execute(ctx, action)
	if err == nil {
		if delErr := q.delete(ctx, action.ID); delErr != nil {
			// The side effect happened but the record survived; the next
			// drain will execute it again. Exactly-once applies to queue
			// removal after a terminal outcome, not to remote delivery.
			logging.Error().
				Uint64("id", action.ID).
				Err(delErr).
				Msg("outbox could not remove delivered action")
			return actionRequeued, false
		}
		logging.Debug().
			Uint64("id", action.ID).
			Str("type", action.Type.String()).
			Msg("outbox action delivered")
		return actionProcessed, false
	}

	action.Retries++
	logging.Warn().
		Uint64("id", action.ID).
		Str("type", action.Type.String()).
		Int("retries", action.Retries).
		Err(err).
		Msg("outbox action execution failed")

	if action.Retries >= MaxRetries {
		if delErr := q.delete(ctx, action.ID); delErr != nil {
			logging.Error().
				Uint64("id", action.ID).
				Err(delErr).
				Msg("outbox could not evict exhausted action")
			return actionRequeued, true
		}
		logging.Warn().
			Uint64("id", action.ID).
			Str("type", action.Type.String()).
			Int("max_retries", MaxRetries).
			Err(ErrActionEvicted).
			Msg("outbox action evicted after exhausting retries")
		return actionEvicted, true
	}

	if putErr := q.put(ctx, action); putErr != nil {
		logging.Error().
			Uint64("id", action.ID).
			Err(putErr).
			Msg("outbox could not record retry, action keeps previous count")
	}
	return actionRequeued, true
}

// finishDrain records metrics and publishes the drain outcome.
func (q *Queue) finishDrain(ctx context.Context, result models.DrainResult, failures int, elapsed time.Duration) {
	q.updateDepthGauge(ctx)
	metrics.RecordDrain(result.Processed, failures, result.Failed, elapsed)

	logging.Info().
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Dur("elapsed", elapsed).
		Msg("outbox drain complete")

	if q.bus == nil {
		return
	}
	err := q.bus.Publish(ctx, events.TopicOutboxDrained, events.OutboxDrained{
		Processed: result.Processed,
		Failed:    result.Failed,
		At:        q.now(),
	})
	if err != nil {
		logging.Debug().Err(err).Msg("outbox drain event publish failed")
	}
}

func (q *Queue) publishEnqueued(ctx context.Context, action models.PendingAction) {
	if q.bus == nil {
		return
	}
	err := q.bus.Publish(ctx, events.TopicOutboxEnqueued, events.OutboxEnqueued{
		ID:        action.ID,
		ProfileID: action.ProfileID,
		Type:      action.Type.String(),
		At:        action.CreatedAt,
	})
	if err != nil {
		logging.Debug().Err(err).Msg("outbox enqueue event publish failed")
	}
}

func (q *Queue) put(ctx context.Context, action models.PendingAction) error {
	doc, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal action %d: %w", action.ID, err)
	}
	return q.store.Put(ctx, store.CollectionPendingActions, store.EncodeSeq(action.ID), doc)
}

func (q *Queue) delete(ctx context.Context, id uint64) error {
	return q.store.Delete(ctx, store.CollectionPendingActions, store.EncodeSeq(id))
}

func (q *Queue) updateDepthGauge(ctx context.Context) {
	metrics.OutboxPendingActions.Set(float64(q.PendingCount(ctx)))
}

func decodeActions(recs []store.KV) []models.PendingAction {
	actions := make([]models.PendingAction, 0, len(recs))
	for _, rec := range recs {
		var a models.PendingAction
		if err := json.Unmarshal(rec.Value, &a); err != nil {
			logging.Warn().Str("key", rec.Key).Err(err).Msg("outbox skipping undecodable action")
			continue
		}
		actions = append(actions, a)
	}
	return actions
}

// ErrActionEvicted marks an action removed at the retry ceiling. It never
// leaves this package; drains report evictions only in the aggregate Failed
// count.
var ErrActionEvicted = errors.New("outbox action evicted after max retries")
