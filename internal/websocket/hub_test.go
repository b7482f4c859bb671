// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package websocket

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/phonotheca/phonotheca/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub creates and starts a hub; it stops when the test ends.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("hub did not stop after context cancel")
		}
	})
	time.Sleep(10 * time.Millisecond)
	return hub
}

// createTestClient creates a mock client for testing
func createTestClient(hub *Hub) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, conn: nil, send: make(chan Message, 256)}
}

// registerClient registers a client and waits for registration to complete
func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}

	checks := []struct {
		name   string
		check  bool
		errMsg string
	}{
		{"clients map", hub.clients != nil, "clients map not initialized"},
		{"broadcast channel", hub.broadcast != nil, "broadcast channel not initialized"},
		{"Register channel", hub.Register != nil, "Register channel not initialized"},
		{"Unregister channel", hub.Unregister != nil, "Unregister channel not initialized"},
		{"empty clients", len(hub.clients) == 0, "clients map should be empty"},
	}

	for _, c := range checks {
		if !c.check {
			t.Error(c.errMsg)
		}
	}
}

func TestHub_GetClientCount(t *testing.T) {
	hub := NewHub()

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients initially, got %d", hub.GetClientCount())
	}

	for i := 0; i < 5; i++ {
		hub.clients[createTestClient(hub)] = true
	}

	if hub.GetClientCount() != 5 {
		t.Errorf("Expected 5 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_BroadcastJSONWithoutClients(t *testing.T) {
	hub := setupHub(t)
	hub.BroadcastJSON(MessageTypeCacheRefreshed, map[string]interface{}{"cache": "tracks", "count": 42})
	time.Sleep(10 * time.Millisecond)
}

func TestHub_ClientRegistration(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)

	registerClient(hub, client)
	if hub.GetClientCount() != 1 {
		t.Errorf("Expected 1 client after registration, got %d", hub.GetClientCount())
	}

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)
	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients after unregistration, got %d", hub.GetClientCount())
	}
}

func TestHub_UnregisterNonExistentClient(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)

	// Unregistering a client that never registered must not panic.
	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_BroadcastToClients(t *testing.T) {
	hub := setupHub(t)

	const numClients = 3
	clients := make([]*Client, numClients)
	var mu sync.Mutex
	received := make([]bool, numClients)
	var wg sync.WaitGroup

	for i := 0; i < numClients; i++ {
		clients[i] = createTestClient(hub)
		registerClient(hub, clients[i])
	}

	if hub.GetClientCount() != numClients {
		t.Fatalf("Expected %d clients, got %d", numClients, hub.GetClientCount())
	}

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(idx int, c *Client) {
			defer wg.Done()
			select {
			case msg := <-c.send:
				if msg.Type == MessageTypeOutboxDrained {
					mu.Lock()
					received[idx] = true
					mu.Unlock()
				}
			case <-time.After(500 * time.Millisecond):
			}
		}(i, clients[i])
	}

	time.Sleep(20 * time.Millisecond)
	hub.BroadcastJSON(MessageTypeOutboxDrained, map[string]int{"processed": 4, "failed": 0})
	wg.Wait()

	mu.Lock()
	for i, r := range received {
		if !r {
			t.Errorf("Client %d did not receive broadcast", i)
		}
	}
	mu.Unlock()
}

func TestHub_ConcurrentOperations(t *testing.T) {
	hub := setupHub(t)
	done := make(chan bool)

	go func() {
		for i := 0; i < 10; i++ {
			registerClient(hub, createTestClient(hub))
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 20; i++ {
			hub.BroadcastJSON(MessageTypeConnectivity, map[string]int{"i": i})
			time.Sleep(2 * time.Millisecond)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 50; i++ {
			hub.GetClientCount()
			time.Sleep(1 * time.Millisecond)
		}
		done <- true
	}()

	for i := 0; i < 3; i++ {
		<-done
	}
	time.Sleep(100 * time.Millisecond)

	if hub.GetClientCount() != 10 {
		t.Errorf("Expected 10 clients, got %d", hub.GetClientCount())
	}
}

func TestMarshalMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{
			name: "cache refreshed message",
			msg:  Message{Type: MessageTypeCacheRefreshed, Data: map[string]interface{}{"cache": "playlists", "count": 12}},
		},
		{
			name: "message with nil data",
			msg:  Message{Type: MessageTypePong, Data: nil},
		},
		{
			name: "connectivity message",
			msg:  Message{Type: MessageTypeConnectivity, Data: map[string]bool{"online": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalMessage(tt.msg)
			if (err != nil) != tt.wantErr {
				t.Errorf("MarshalMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(data) == 0 {
				t.Error("MarshalMessage() returned empty data")
			}
		})
	}
}

func TestHub_MessageTypes(t *testing.T) {
	types := map[string]string{
		MessageTypeConnectivity:   "connectivity_changed",
		MessageTypeCacheRefreshed: "cache_refreshed",
		MessageTypeOutboxEnqueued: "outbox_enqueued",
		MessageTypeOutboxDrained:  "outbox_drained",
		MessageTypeIdentity:       "identity_changed",
		MessageTypePing:           "ping",
		MessageTypePong:           "pong",
	}

	for got, want := range types {
		if got != want {
			t.Errorf("Expected message type %q, got %q", want, got)
		}
	}
}

func TestHub_ChannelFullBehavior(t *testing.T) {
	hub := setupHub(t)

	// Client with a tiny send buffer that nobody reads.
	client := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, 1)}
	registerClient(hub, client)

	// First broadcast fills the buffer; the second cannot be delivered and
	// the hub must drop the client instead of blocking.
	hub.BroadcastJSON(MessageTypeOutboxEnqueued, map[string]int{"seq": 1})
	time.Sleep(20 * time.Millisecond)
	hub.BroadcastJSON(MessageTypeOutboxEnqueued, map[string]int{"seq": 2})
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected full client to be removed, got %d clients", hub.GetClientCount())
	}
}

func TestHub_RunWithContext(t *testing.T) {
	t.Run("returns on context cancel", func(t *testing.T) {
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- hub.RunWithContext(ctx)
		}()
		time.Sleep(10 * time.Millisecond)

		cancel()

		select {
		case err := <-errCh:
			if err != context.Canceled {
				t.Errorf("Expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("RunWithContext did not return after cancel")
		}
	})

	t.Run("closes clients on shutdown", func(t *testing.T) {
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- hub.RunWithContext(ctx)
		}()
		time.Sleep(10 * time.Millisecond)

		client := createTestClient(hub)
		registerClient(hub, client)

		cancel()

		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Fatal("RunWithContext did not return after cancel")
		}

		// The client's send channel must be closed by shutdown.
		select {
		case _, ok := <-client.send:
			if ok {
				t.Error("Expected closed send channel, got a message")
			}
		case <-time.After(time.Second):
			t.Error("send channel was not closed on shutdown")
		}

		if hub.GetClientCount() != 0 {
			t.Errorf("Expected 0 clients after shutdown, got %d", hub.GetClientCount())
		}
	})

	t.Run("processes registrations before broadcasts", func(t *testing.T) {
		hub := setupHub(t)
		client := createTestClient(hub)

		registerClient(hub, client)
		hub.BroadcastJSON(MessageTypeIdentity, map[string]string{"kind": "created"})

		select {
		case msg := <-client.send:
			if msg.Type != MessageTypeIdentity {
				t.Errorf("Expected %s message, got %s", MessageTypeIdentity, msg.Type)
			}
		case <-time.After(time.Second):
			t.Error("client did not receive broadcast after registration")
		}
	})
}

func TestHub_CloseAllClients(t *testing.T) {
	hub := NewHub()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = createTestClient(hub)
		hub.clients[clients[i]] = true
	}

	hub.closeAllClients()

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients after closeAllClients, got %d", hub.GetClientCount())
	}

	for i, c := range clients {
		select {
		case _, ok := <-c.send:
			if ok {
				t.Errorf("Client %d: expected closed channel, got message", i)
			}
		default:
			t.Errorf("Client %d: send channel not closed", i)
		}
	}
}

func TestGetShutdownReason(t *testing.T) {
	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if got := getShutdownReason(ctx); got != ShutdownReasonContextCanceled {
			t.Errorf("Expected %s, got %s", ShutdownReasonContextCanceled, got)
		}
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		<-ctx.Done()
		if got := getShutdownReason(ctx); got != ShutdownReasonContextDeadline {
			t.Errorf("Expected %s, got %s", ShutdownReasonContextDeadline, got)
		}
	})
}

func TestShutdownReason_Constants(t *testing.T) {
	if ShutdownReasonContextCanceled != "context_canceled" {
		t.Errorf("unexpected value: %s", ShutdownReasonContextCanceled)
	}
	if ShutdownReasonContextDeadline != "context_deadline" {
		t.Errorf("unexpected value: %s", ShutdownReasonContextDeadline)
	}
}
