// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package events

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

func receiveOne(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("subscriber channel closed unexpectedly")
		}
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bus := NewBus(Config{BufferSize: 8})
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, TopicConnectivity)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := bus.Publish(ctx, TopicConnectivity, ConnectivityChanged{Online: true, At: at}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msg := receiveOne(t, ch)
	event, err := Decode[ConnectivityChanged](msg)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !event.Online {
		t.Error("event.Online = false, want true")
	}
	if !event.At.Equal(at) {
		t.Errorf("event.At = %v, want %v", event.At, at)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := NewBus(Config{BufferSize: 8})
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	drained, err := bus.Subscribe(ctx, TopicOutboxDrained)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, TopicConnectivity, ConnectivityChanged{Online: false}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := bus.Publish(ctx, TopicOutboxDrained, OutboxDrained{Processed: 2, Failed: 1}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msg := receiveOne(t, drained)
	event, err := Decode[OutboxDrained](msg)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if event.Processed != 2 || event.Failed != 1 {
		t.Errorf("event = %+v, want processed 2 failed 1", event)
	}

	select {
	case extra := <-drained:
		t.Errorf("unexpected extra message on drained topic: %s", extra.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEverySubscriberReceives(t *testing.T) {
	bus := NewBus(Config{BufferSize: 8})
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx, TopicCacheRefreshed)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	second, err := bus.Subscribe(ctx, TopicCacheRefreshed)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, TopicCacheRefreshed, CacheRefreshed{Cache: "tracks", Count: 10}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for _, ch := range []<-chan *message.Message{first, second} {
		msg := receiveOne(t, ch)
		event, err := Decode[CacheRefreshed](msg)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if event.Cache != "tracks" || event.Count != 10 {
			t.Errorf("event = %+v", event)
		}
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	bus := NewBus(Config{})
	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := bus.Subscribe(context.Background(), TopicIdentity); err == nil {
		t.Error("Subscribe after Close succeeded, want error")
	}
}
