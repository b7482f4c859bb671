// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phonotheca/phonotheca/internal/models"
	"github.com/phonotheca/phonotheca/internal/store"
)

const (
	profileA = "profile-a"
	profileB = "profile-b"
)

// mockExecutor records every delivered action and can be told to fail, all
// deliveries or selected action ids.
type mockExecutor struct {
	mu       sync.Mutex
	executed []models.PendingAction
	failAll  bool
	failIDs  map[uint64]bool
	onCall   func(action models.PendingAction)
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{failIDs: make(map[uint64]bool)}
}

func (e *mockExecutor) Execute(ctx context.Context, action models.PendingAction) error {
	e.mu.Lock()
	e.executed = append(e.executed, action)
	onCall := e.onCall
	fail := e.failAll || e.failIDs[action.ID]
	e.mu.Unlock()

	if onCall != nil {
		onCall(action)
	}
	if fail {
		return errors.New("remote unreachable")
	}
	return nil
}

func (e *mockExecutor) executedTypes() []models.ActionType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]models.ActionType, len(e.executed))
	for i, a := range e.executed {
		types[i] = a.Type
	}
	return types
}

func (e *mockExecutor) executedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

func openStore(t *testing.T, dir string) *store.Store {
	t.Helper()

	st, err := store.Open(store.Config{
		Path:       dir,
		SyncWrites: false, // Faster tests without fsync
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func setupQueue(t *testing.T, executor Executor) *Queue {
	t.Helper()

	st := openStore(t, t.TempDir())
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return NewQueue(st, executor, nil)
}

func checkPendingLen(t *testing.T, q *Queue, profileID string, want int) []models.PendingAction {
	t.Helper()
	pending := q.ListPending(context.Background(), profileID)
	if len(pending) != want {
		t.Fatalf("ListPending(%s) returned %d actions, want %d", profileID, len(pending), want)
	}
	return pending
}

func TestEnqueueAssignsSequenceAndDefaults(t *testing.T) {
	q := setupQueue(t, newMockExecutor())
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "t1"})
	q.Enqueue(ctx, profileA, models.ActionNowPlaying, models.NowPlayingPayload{TrackID: "t1"})

	pending := checkPendingLen(t, q, profileA, 2)
	if pending[0].Retries != 0 || pending[1].Retries != 0 {
		t.Errorf("fresh actions have retries %d and %d, want 0", pending[0].Retries, pending[1].Retries)
	}
	if pending[0].ID >= pending[1].ID {
		t.Errorf("sequence ids not increasing: %d then %d", pending[0].ID, pending[1].ID)
	}
	if pending[0].CreatedAt.IsZero() {
		t.Error("enqueue did not stamp CreatedAt")
	}
	if pending[0].ProfileID != profileA {
		t.Errorf("action profile = %q, want %q", pending[0].ProfileID, profileA)
	}
}

func TestEnqueueRejectsUnknownType(t *testing.T) {
	q := setupQueue(t, newMockExecutor())
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionType("teleport"), nil)
	q.Enqueue(ctx, "", models.ActionScrobble, nil)

	checkPendingLen(t, q, profileA, 0)
}

func TestEnqueueWithoutStorageDropsSilently(t *testing.T) {
	q := NewQueue(nil, newMockExecutor(), nil)
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "t1"})

	checkPendingLen(t, q, profileA, 0)
	if got := q.PendingCount(ctx); got != 0 {
		t.Errorf("PendingCount = %d, want 0", got)
	}
	if result := q.Drain(ctx, profileA); result.Processed != 0 || result.Failed != 0 {
		t.Errorf("drain without storage = %+v, want zero result", result)
	}
}

func TestDrainExecutesInFIFOOrder(t *testing.T) {
	executor := newMockExecutor()
	q := setupQueue(t, executor)
	ctx := context.Background()

	// Different types enqueued interleaved; drain order must be creation
	// order, never grouped by type.
	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "a"})
	q.Enqueue(ctx, profileA, models.ActionNowPlaying, models.NowPlayingPayload{TrackID: "b"})
	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "c"})

	result := q.Drain(ctx, profileA)
	if result.Processed != 3 || result.Failed != 0 {
		t.Fatalf("drain = %+v, want {Processed:3 Failed:0}", result)
	}

	want := []models.ActionType{models.ActionScrobble, models.ActionNowPlaying, models.ActionScrobble}
	got := executor.executedTypes()
	if len(got) != len(want) {
		t.Fatalf("executed %d actions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("execution order[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	checkPendingLen(t, q, profileA, 0)
}

func TestDrainRetriesThenEvictsAtCeiling(t *testing.T) {
	executor := newMockExecutor()
	executor.failAll = true
	q := setupQueue(t, executor)
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "t1"})

	// First two failures keep the action queued with a bumped retry count.
	for attempt := 1; attempt <= MaxRetries-1; attempt++ {
		result := q.Drain(ctx, profileA)
		if result.Processed != 0 || result.Failed != 0 {
			t.Fatalf("drain %d = %+v, want zero result while retries remain", attempt, result)
		}
		pending := checkPendingLen(t, q, profileA, 1)
		if pending[0].Retries != attempt {
			t.Fatalf("after drain %d retries = %d, want %d", attempt, pending[0].Retries, attempt)
		}
	}

	// The third failure reaches the ceiling: evicted and counted as failed.
	result := q.Drain(ctx, profileA)
	if result.Processed != 0 || result.Failed != 1 {
		t.Fatalf("final drain = %+v, want {Processed:0 Failed:1}", result)
	}
	checkPendingLen(t, q, profileA, 0)

	if got := executor.executedCount(); got != MaxRetries {
		t.Errorf("action executed %d times, want %d", got, MaxRetries)
	}
}

func TestDrainMixedOutcome(t *testing.T) {
	executor := newMockExecutor()
	q := setupQueue(t, executor)
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "good"})
	q.Enqueue(ctx, profileA, models.ActionNowPlaying, models.NowPlayingPayload{TrackID: "bad"})

	pending := checkPendingLen(t, q, profileA, 2)
	executor.failIDs[pending[1].ID] = true

	result := q.Drain(ctx, profileA)
	if result.Processed != 1 || result.Failed != 0 {
		t.Fatalf("drain = %+v, want {Processed:1 Failed:0}", result)
	}

	// The failed action survives with one retry on the books.
	left := checkPendingLen(t, q, profileA, 1)
	if left[0].Type != models.ActionNowPlaying {
		t.Errorf("surviving action type = %s, want %s", left[0].Type, models.ActionNowPlaying)
	}
	if left[0].Retries != 1 {
		t.Errorf("surviving action retries = %d, want 1", left[0].Retries)
	}
}

func TestDrainSinglePassSkipsActionsEnqueuedMidDrain(t *testing.T) {
	executor := newMockExecutor()
	q := setupQueue(t, executor)
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "first"})

	// The executor enqueues a new action while the drain runs. The pass
	// snapshotted the pending list already, so the newcomer must wait.
	var once sync.Once
	executor.onCall = func(models.PendingAction) {
		once.Do(func() {
			q.Enqueue(ctx, profileA, models.ActionNowPlaying, models.NowPlayingPayload{TrackID: "late"})
		})
	}

	result := q.Drain(ctx, profileA)
	if result.Processed != 1 {
		t.Fatalf("drain processed %d, want 1", result.Processed)
	}
	if got := executor.executedCount(); got != 1 {
		t.Fatalf("executed %d actions in one pass, want 1", got)
	}

	// Still there for the next trigger.
	left := checkPendingLen(t, q, profileA, 1)
	if left[0].Type != models.ActionNowPlaying {
		t.Errorf("waiting action type = %s, want %s", left[0].Type, models.ActionNowPlaying)
	}
}

func TestListPendingIsolatesProfiles(t *testing.T) {
	q := setupQueue(t, newMockExecutor())
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "a1"})
	q.Enqueue(ctx, profileB, models.ActionScrobble, models.ScrobblePayload{TrackID: "b1"})
	q.Enqueue(ctx, profileA, models.ActionSyncRemote, models.SyncRemotePayload{})

	aPending := checkPendingLen(t, q, profileA, 2)
	for _, a := range aPending {
		if a.ProfileID != profileA {
			t.Errorf("profile A list contains action for %q", a.ProfileID)
		}
	}
	checkPendingLen(t, q, profileB, 1)

	if got := q.PendingCount(ctx); got != 3 {
		t.Errorf("PendingCount = %d, want 3", got)
	}
}

func TestDrainScopedToProfile(t *testing.T) {
	executor := newMockExecutor()
	q := setupQueue(t, executor)
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "a1"})
	q.Enqueue(ctx, profileB, models.ActionScrobble, models.ScrobblePayload{TrackID: "b1"})

	result := q.Drain(ctx, profileA)
	if result.Processed != 1 {
		t.Fatalf("drain processed %d, want 1", result.Processed)
	}

	// Profile B's action is untouched.
	checkPendingLen(t, q, profileA, 0)
	checkPendingLen(t, q, profileB, 1)
}

func TestQueueSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// Session one: enqueue offline, then the process ends.
	st := openStore(t, dir)
	q := NewQueue(st, nil, nil)
	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{
		TrackID:  "x",
		PlayedAt: time.Unix(100, 0).UTC(),
	})
	checkPendingLen(t, q, profileA, 1)
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Session two: same on-disk state, connectivity back.
	st = openStore(t, dir)
	defer func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	}()

	executor := newMockExecutor()
	q = NewQueue(st, executor, nil)

	pending := checkPendingLen(t, q, profileA, 1)
	if pending[0].Retries != 0 {
		t.Errorf("reloaded action retries = %d, want 0", pending[0].Retries)
	}
	if pending[0].Type != models.ActionScrobble {
		t.Errorf("reloaded action type = %s, want %s", pending[0].Type, models.ActionScrobble)
	}

	result := q.Drain(ctx, profileA)
	if result.Processed != 1 || result.Failed != 0 {
		t.Fatalf("drain after reopen = %+v, want {Processed:1 Failed:0}", result)
	}
	checkPendingLen(t, q, profileA, 0)
}

func TestRetryCountSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st := openStore(t, dir)
	executor := newMockExecutor()
	executor.failAll = true
	q := NewQueue(st, executor, nil)

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "x"})
	q.Drain(ctx, profileA) // retries 0 -> 1
	q.Drain(ctx, profileA) // retries 1 -> 2
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	st = openStore(t, dir)
	defer func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	}()

	stillFailing := newMockExecutor()
	stillFailing.failAll = true
	q = NewQueue(st, stillFailing, nil)

	pending := checkPendingLen(t, q, profileA, 1)
	if pending[0].Retries != 2 {
		t.Fatalf("reloaded retries = %d, want 2", pending[0].Retries)
	}

	// One more failure in the new session reaches the ceiling.
	result := q.Drain(ctx, profileA)
	if result.Failed != 1 {
		t.Fatalf("drain = %+v, want {Failed:1}", result)
	}
	checkPendingLen(t, q, profileA, 0)
}

func TestDrainWithoutExecutorIsNoOp(t *testing.T) {
	q := setupQueue(t, nil)
	ctx := context.Background()

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "t1"})

	result := q.Drain(ctx, profileA)
	if result.Processed != 0 || result.Failed != 0 {
		t.Fatalf("drain without executor = %+v, want zero result", result)
	}
	// Nothing was attempted, nothing was lost.
	checkPendingLen(t, q, profileA, 1)
}

func TestDrainStopsOnContextCancel(t *testing.T) {
	executor := newMockExecutor()
	q := setupQueue(t, executor)
	ctx, cancel := context.WithCancel(context.Background())

	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "a"})
	q.Enqueue(ctx, profileA, models.ActionScrobble, models.ScrobblePayload{TrackID: "b"})

	// Cancel after the first delivery; the second waits for the next drain.
	executor.onCall = func(models.PendingAction) { cancel() }

	result := q.Drain(ctx, profileA)
	if result.Processed != 1 {
		t.Fatalf("drain processed %d before cancel, want 1", result.Processed)
	}
	checkPendingLen(t, q, profileA, 1)
}
