// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// setupWebSocketServer creates a test WebSocket server with a custom handler
func setupWebSocketServer(t *testing.T, handler func(t *testing.T, conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()
		handler(t, conn)
	}))
}

// dialWebSocket establishes a WebSocket connection to the test server
func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	return conn
}

// hubRunner starts the hub and returns a stop function for cleanup.
// Pumps under test unregister through the hub, so it must be running.
func hubRunner(t *testing.T, hub *Hub) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("hub did not stop")
		}
	}
}

func TestNewClient(t *testing.T) {
	hub := NewHub()

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)

	if client == nil {
		t.Fatal("NewClient returned nil")
	}
	if client.hub != hub {
		t.Error("Client hub not set correctly")
	}
	if client.conn != conn {
		t.Error("Client connection not set correctly")
	}
	if client.send == nil {
		t.Error("Client send channel not initialized")
	}
	if cap(client.send) != 256 {
		t.Errorf("Expected send channel capacity 256, got %d", cap(client.send))
	}
	if client.ID() == 0 {
		t.Error("Expected non-zero client ID")
	}
}

func TestNewClient_UniqueIDs(t *testing.T) {
	hub := NewHub()

	a := NewClient(hub, nil)
	b := NewClient(hub, nil)

	if a.ID() == b.ID() {
		t.Errorf("Expected unique client IDs, both got %d", a.ID())
	}
	if b.ID() <= a.ID() {
		t.Errorf("Expected monotonically increasing IDs, got %d then %d", a.ID(), b.ID())
	}
}

func TestClient_Constants(t *testing.T) {
	if writeWait != 10*time.Second {
		t.Errorf("Expected writeWait 10s, got %v", writeWait)
	}
	if pongWait != 60*time.Second {
		t.Errorf("Expected pongWait 60s, got %v", pongWait)
	}
	if pingPeriod != 54*time.Second {
		t.Errorf("Expected pingPeriod 54s, got %v", pingPeriod)
	}
	if maxMessageSize != 512*1024 {
		t.Errorf("Expected maxMessageSize 512KB, got %d", maxMessageSize)
	}
}

func TestClient_WritePump_SendMessage(t *testing.T) {
	hub := NewHub()
	received := make(chan Message, 1)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		received <- msg
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)

	go client.writePump()

	client.send <- Message{Type: MessageTypeCacheRefreshed, Data: map[string]interface{}{"cache": "tracks"}}

	select {
	case msg := <-received:
		if msg.Type != MessageTypeCacheRefreshed {
			t.Errorf("Expected %s message, got %s", MessageTypeCacheRefreshed, msg.Type)
		}
	case <-time.After(time.Second):
		t.Error("Server did not receive message from writePump")
	}

	close(client.send)
}

func TestClient_ReadPump_PingPong(t *testing.T) {
	hub := NewHub()
	stop := hubRunner(t, hub)
	defer stop()

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
			return
		}
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)

	go client.readPump()

	// readPump queues an application pong on the send channel.
	select {
	case msg := <-client.send:
		if msg.Type != MessageTypePong {
			t.Errorf("Expected pong reply, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Error("readPump did not reply to ping")
	}
}

func TestClient_Start(t *testing.T) {
	hub := NewHub()
	stop := hubRunner(t, hub)
	defer stop()

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)

	hub.Register <- client
	time.Sleep(20 * time.Millisecond)

	client.Start()
	time.Sleep(50 * time.Millisecond)

	if hub.GetClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.GetClientCount())
	}
}

func TestClient_ReadPump_ConnectionClose(t *testing.T) {
	hub := NewHub()
	stop := hubRunner(t, hub)
	defer stop()

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		// Close immediately to drive readPump's error path.
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)

	hub.Register <- client
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		client.readPump()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("readPump did not exit after connection close")
	}

	time.Sleep(50 * time.Millisecond)
	if hub.GetClientCount() != 0 {
		t.Errorf("Expected client to unregister on close, got %d clients", hub.GetClientCount())
	}
}

func TestClient_WritePump_ChannelClose(t *testing.T) {
	hub := NewHub()
	closeReceived := make(chan bool, 1)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
					closeReceived <- true
				}
				return
			}
		}
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)

	done := make(chan struct{})
	go func() {
		client.writePump()
		close(done)
	}()

	// Closing the send channel (as the hub does on unregister) must make
	// writePump send a close frame and exit.
	close(client.send)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writePump did not exit after channel close")
	}

	select {
	case <-closeReceived:
	case <-time.After(time.Second):
		t.Error("Server did not receive close frame")
	}
}

func TestClient_Integration(t *testing.T) {
	hub := NewHub()
	stop := hubRunner(t, hub)
	defer stop()

	received := make(chan Message, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		received <- msg
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)

	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
	client.Start()
	time.Sleep(20 * time.Millisecond)

	hub.BroadcastJSON(MessageTypeOutboxDrained, map[string]int{"processed": 3, "failed": 1})

	select {
	case msg := <-received:
		if msg.Type != MessageTypeOutboxDrained {
			t.Errorf("Expected %s, got %s", MessageTypeOutboxDrained, msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Error("Broadcast did not reach the connected client")
	}
}
