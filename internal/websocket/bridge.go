// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package websocket

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/phonotheca/phonotheca/internal/events"
	"github.com/phonotheca/phonotheca/internal/logging"
)

// EventBridge forwards engine events to connected WebSocket clients.
// It subscribes to every bus topic and rebroadcasts each decoded event as a
// typed hub message, so UI clients see cache refreshes, outbox activity,
// connectivity transitions, and identity changes as they happen.
type EventBridge struct {
	hub *Hub
	bus *events.Bus
}

// NewEventBridge creates a bridge between the event bus and the hub.
func NewEventBridge(hub *Hub, bus *events.Bus) *EventBridge {
	return &EventBridge{
		hub: hub,
		bus: bus,
	}
}

// Run subscribes to all engine topics and forwards events until the context
// is canceled. It is designed for suture supervision: the subscriber
// channels close when ctx is canceled, at which point Run drains its
// goroutines and returns ctx.Err().
func (b *EventBridge) Run(ctx context.Context) error {
	topics := []string{
		events.TopicConnectivity,
		events.TopicCacheRefreshed,
		events.TopicOutboxEnqueued,
		events.TopicOutboxDrained,
		events.TopicIdentity,
	}

	var wg sync.WaitGroup
	for _, topic := range topics {
		ch, err := b.bus.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		wg.Add(1)
		go func(topic string, ch <-chan *message.Message) {
			defer wg.Done()
			for msg := range ch {
				b.forward(topic, msg)
				msg.Ack()
			}
		}(topic, ch)
	}

	logging.Info().Int("topics", len(topics)).Msg("websocket event bridge started")

	wg.Wait()
	return ctx.Err()
}

// forward decodes a bus message according to its topic and broadcasts it.
func (b *EventBridge) forward(topic string, msg *message.Message) {
	switch topic {
	case events.TopicConnectivity:
		forwardAs[events.ConnectivityChanged](b, MessageTypeConnectivity, msg)
	case events.TopicCacheRefreshed:
		forwardAs[events.CacheRefreshed](b, MessageTypeCacheRefreshed, msg)
	case events.TopicOutboxEnqueued:
		forwardAs[events.OutboxEnqueued](b, MessageTypeOutboxEnqueued, msg)
	case events.TopicOutboxDrained:
		forwardAs[events.OutboxDrained](b, MessageTypeOutboxDrained, msg)
	case events.TopicIdentity:
		forwardAs[events.IdentityChanged](b, MessageTypeIdentity, msg)
	default:
		logging.Warn().Str("topic", topic).Msg("websocket bridge received unknown topic")
	}
}

// forwardAs decodes the payload as T and broadcasts it under messageType.
// Decode failures are logged and dropped; a malformed event must not take
// down the bridge.
func forwardAs[T any](b *EventBridge, messageType string, msg *message.Message) {
	ev, err := events.Decode[T](msg)
	if err != nil {
		logging.Warn().Err(err).Str("message_type", messageType).Msg("failed to decode event for broadcast")
		return
	}
	b.hub.BroadcastJSON(messageType, ev)
}
