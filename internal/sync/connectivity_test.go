// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phonotheca/phonotheca/internal/events"
)

// mockPinger is a settable Pinger with a call counter.
type mockPinger struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (p *mockPinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail {
		return errors.New("no route to host")
	}
	return nil
}

func (p *mockPinger) setFail(fail bool) {
	p.mu.Lock()
	p.fail = fail
	p.mu.Unlock()
}

// collectConnectivity subscribes to the connectivity topic and returns a
// function that reports the transitions received so far.
func collectConnectivity(t *testing.T, bus *events.Bus) func() []events.ConnectivityChanged {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	msgs, err := bus.Subscribe(ctx, events.TopicConnectivity)
	if err != nil {
		t.Fatalf("subscribe connectivity: %v", err)
	}

	var mu sync.Mutex
	var seen []events.ConnectivityChanged
	go func() {
		for msg := range msgs {
			event, err := events.Decode[events.ConnectivityChanged](msg)
			msg.Ack()
			if err != nil {
				continue
			}
			mu.Lock()
			seen = append(seen, event)
			mu.Unlock()
		}
	}()

	return func() []events.ConnectivityChanged {
		mu.Lock()
		defer mu.Unlock()
		out := make([]events.ConnectivityChanged, len(seen))
		copy(out, seen)
		return out
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", d, msg)
}

func TestWatcherFirstVerdictIsSilent(t *testing.T) {
	bus := events.NewBus(events.Config{})
	defer func() { _ = bus.Close() }()
	transitions := collectConnectivity(t, bus)

	w := NewWatcher(&mockPinger{}, bus, WatcherConfig{})

	if !w.Check(context.Background()) {
		t.Fatal("Check = false with a healthy pinger")
	}
	if !w.Online() {
		t.Error("Online = false after a successful check")
	}

	// The baseline verdict is not a transition.
	time.Sleep(20 * time.Millisecond)
	if got := transitions(); len(got) != 0 {
		t.Errorf("first verdict published %d transition events, want 0", len(got))
	}
}

func TestWatcherPublishesTransitionsOnly(t *testing.T) {
	bus := events.NewBus(events.Config{})
	defer func() { _ = bus.Close() }()
	transitions := collectConnectivity(t, bus)

	pinger := &mockPinger{fail: true}
	w := NewWatcher(pinger, bus, WatcherConfig{})
	ctx := context.Background()

	w.Check(ctx) // baseline: offline
	w.Check(ctx) // steady: offline
	pinger.setFail(false)
	w.Check(ctx) // transition: online
	w.Check(ctx) // steady: online
	pinger.setFail(true)
	w.Check(ctx) // transition: offline

	waitFor(t, time.Second, func() bool { return len(transitions()) == 2 }, "two transitions")
	got := transitions()
	if !got[0].Online {
		t.Error("first transition should be to online")
	}
	if got[1].Online {
		t.Error("second transition should be to offline")
	}
}

func TestWatcherAssertOverridesProbe(t *testing.T) {
	bus := events.NewBus(events.Config{})
	defer func() { _ = bus.Close() }()
	transitions := collectConnectivity(t, bus)

	w := NewWatcher(&mockPinger{fail: true}, bus, WatcherConfig{})
	ctx := context.Background()

	w.Check(ctx) // baseline: offline
	w.Assert(ctx, true)

	if !w.Online() {
		t.Error("Online = false after asserting online")
	}
	waitFor(t, time.Second, func() bool { return len(transitions()) == 1 }, "asserted transition")
	if !transitions()[0].Online {
		t.Error("asserted transition should be to online")
	}
}

func TestWatcherWithoutPingerStaysOffline(t *testing.T) {
	w := NewWatcher(nil, nil, WatcherConfig{})

	if w.Check(context.Background()) {
		t.Error("Check = true without a pinger")
	}
	if w.Online() {
		t.Error("Online = true without a pinger")
	}
}

func TestWatcherRunProbesOnInterval(t *testing.T) {
	pinger := &mockPinger{}
	w := NewWatcher(pinger, nil, WatcherConfig{
		CheckInterval: 10 * time.Millisecond,
		ProbeTimeout:  time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, time.Second, func() bool {
		pinger.mu.Lock()
		defer pinger.mu.Unlock()
		return pinger.calls >= 3
	}, "at least three probes")

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}
