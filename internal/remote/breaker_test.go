// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/phonotheca/phonotheca/internal/models"
)

func TestBreakerClientPassesThroughSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"t1","title":"Teardrop","artist":"Massive Attack","album":"Mezzanine","duration_ms":330000}]`))
	}))
	defer server.Close()

	bc := NewBreakerClient(testConfig(server.URL))
	tracks, err := bc.FetchTracks(context.Background())

	checkNoError(t, err)
	checkSliceLen(t, "tracks", len(tracks), 1)
	checkStringEqual(t, "tracks[0].Artist", tracks[0].Artist, "Massive Attack")
	checkTrue(t, "breaker closed", bc.State() == gobreaker.StateClosed)
}

func TestBreakerClientOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	bc := NewBreakerClient(testConfig(server.URL))

	// The breaker opens at a 60% failure rate once 10 requests are seen;
	// 10 straight failures guarantee the trip.
	for i := 0; i < 10; i++ {
		err := bc.Ping(context.Background())
		checkError(t, err)
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("breaker opened early on request %d", i+1)
		}
	}

	checkTrue(t, "breaker open after 10 failures", bc.State() == gobreaker.StateOpen)

	err := bc.Ping(context.Background())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState after trip, got %v", err)
	}
}

func TestBreakerClientRejectsWithoutNetworkCall(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	bc := NewBreakerClient(testConfig(server.URL))

	for i := 0; i < 10; i++ {
		_ = bc.Ping(context.Background())
	}
	before := calls.Load()

	// Open breaker short-circuits; the server must not see these.
	for i := 0; i < 5; i++ {
		_ = bc.Ping(context.Background())
	}

	if calls.Load() != before {
		t.Errorf("expected no requests while open, server saw %d more", calls.Load()-before)
	}
}

func TestBreakerClientReRegisterNotCountedAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	bc := NewBreakerClient(testConfig(server.URL))

	// A stale registration is an answered request, not a remote outage.
	// Hammering it must not trip the circuit.
	for i := 0; i < 15; i++ {
		err := bc.Ping(context.Background())
		if !errors.Is(err, ErrReRegisterRequired) {
			t.Fatalf("request %d: expected ErrReRegisterRequired, got %v", i+1, err)
		}
	}

	checkTrue(t, "breaker still closed", bc.State() == gobreaker.StateClosed)
	checkTrue(t, "no failures recorded", bc.Counts().TotalFailures == 0)
}

func TestBreakerClientRegisterDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"profile_id":"profile-777"}`))
	}))
	defer server.Close()

	bc := NewBreakerClient(testConfig(server.URL))
	profileID, err := bc.RegisterDevice(context.Background(), "device-abc")

	checkNoError(t, err)
	checkStringEqual(t, "profileID", profileID, "profile-777")
}

func TestBreakerClientExecuteDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.Path, "/api/v1/now-playing")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	bc := NewBreakerClient(testConfig(server.URL))
	err := bc.Execute(context.Background(), models.PendingAction{
		ProfileID: "profile-123",
		Type:      models.ActionNowPlaying,
		Payload:   []byte(`{"track_id":"t4"}`),
	})
	checkNoError(t, err)
}

func TestBreakerClientName(t *testing.T) {
	bc := NewBreakerClient(Config{URL: "http://localhost:7466", Token: "key"})
	checkStringEqual(t, "name", bc.Name(), "remote-api")
	checkTrue(t, "initial state closed", bc.State() == gobreaker.StateClosed)
}

// TestBreakerStateHelpers verifies stateToFloat and stateToString helpers
func TestBreakerStateHelpers(t *testing.T) {
	tests := []struct {
		state       gobreaker.State
		expectedStr string
		expectedNum float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}

	for _, tt := range tests {
		t.Run(tt.expectedStr, func(t *testing.T) {
			if str := stateToString(tt.state); str != tt.expectedStr {
				t.Errorf("stateToString(%v) = %s, expected %s", tt.state, str, tt.expectedStr)
			}
			if num := stateToFloat(tt.state); num != tt.expectedNum {
				t.Errorf("stateToFloat(%v) = %f, expected %f", tt.state, num, tt.expectedNum)
			}
		})
	}
}
