// Package events delivers session snapshots to rendering layers over an
// in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const (
	moduleEvents = "EVENTS"

	// SnapshotTopic carries JSON-encoded entities.Snapshot payloads.
	SnapshotTopic = "session.snapshot"
)

// SnapshotBus implements ports.StateNotifier and hands out subscriptions.
type SnapshotBus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

// NewSnapshotBus creates a bus backed by a Go channel pub/sub.
func NewSnapshotBus(log logger.ILogger) *SnapshotBus {
	return &SnapshotBus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			NewWatermillLogger(log),
		),
		logger: log,
	}
}

// Publish sends a snapshot to every current subscriber.
// Snapshots published before anyone subscribes are dropped.
func (b *SnapshotBus) Publish(ctx context.Context, snap entities.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubSub.Publish(SnapshotTopic, msg); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}

// Subscribe returns snapshots in increasing version order until ctx is done.
// Delivery may skip versions; a snapshot older than the last one delivered
// is dropped.
func (b *SnapshotBus) Subscribe(ctx context.Context) (<-chan entities.Snapshot, error) {
	messages, err := b.pubSub.Subscribe(ctx, SnapshotTopic)
	if err != nil {
		return nil, err
	}

	out := make(chan entities.Snapshot, 16)
	go func() {
		defer close(out)
		var last uint64
		delivered := false
		for msg := range messages {
			var snap entities.Snapshot
			err := json.Unmarshal(msg.Payload, &snap)
			msg.Ack()
			if err != nil {
				b.logger.Error(moduleEvents, "Failed to decode snapshot", map[string]interface{}{"error": err.Error()})
				continue
			}
			if delivered && snap.Version <= last {
				continue
			}
			last, delivered = snap.Version, true

			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the pub/sub down; every subscription channel closes.
func (b *SnapshotBus) Close() error {
	return b.pubSub.Close()
}
