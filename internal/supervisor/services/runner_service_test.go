// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockRunner is a test double for the Runner interface.
type mockRunner struct {
	runCount atomic.Int32
	runErr   error
}

func (m *mockRunner) Run(ctx context.Context) error {
	m.runCount.Add(1)
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerService_Interface(t *testing.T) {
	var _ suture.Service = (*RunnerService)(nil)
}

func TestRunnerService_Serve(t *testing.T) {
	t.Run("blocks until canceled", func(t *testing.T) {
		runner := &mockRunner{}
		svc := NewRunnerService("connectivity-watcher", runner)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after cancel")
		}

		if runner.runCount.Load() != 1 {
			t.Errorf("expected 1 Run call, got %d", runner.runCount.Load())
		}
	})

	t.Run("propagates runner errors for supervised restart", func(t *testing.T) {
		runErr := errors.New("orchestrator wedged")
		runner := &mockRunner{runErr: runErr}
		svc := NewRunnerService("sync-orchestrator", runner)

		if err := svc.Serve(context.Background()); !errors.Is(err, runErr) {
			t.Errorf("expected runner error, got %v", err)
		}
	})
}

func TestRunnerService_String(t *testing.T) {
	svc := NewRunnerService("backup-scheduler", &mockRunner{})
	if svc.String() != "backup-scheduler" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestRunnerService_WithSupervisor(t *testing.T) {
	runner := &mockRunner{}
	svc := NewRunnerService("event-bridge", runner)

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for runner.runCount.Load() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("runner never started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Error("supervisor did not stop")
	}
}
